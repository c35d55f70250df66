package binding

import (
	"fmt"
)

// Rewriter walks bound expressions and relations bottom up, rebuilding only the nodes
// whose children changed; an unchanged tree is returned as is.
type Rewriter struct {
	// Before is called on each expression before its children are visited; when it returns
	// true, its result replaces the expression and the children are not visited.
	Before func(be BoundExpression) (BoundExpression, bool)

	// AfterExpression and AfterRelation are called on each node after its children have
	// been rewritten.
	AfterExpression func(be BoundExpression) BoundExpression
	AfterRelation   func(br BoundRelation) BoundRelation
}

func (rw *Rewriter) RewriteExpression(be BoundExpression) BoundExpression {
	if be == nil {
		return nil
	}
	if rw.Before != nil {
		if nbe, ok := rw.Before(be); ok {
			return nbe
		}
	}

	be = rw.rewriteChildren(be)
	if rw.AfterExpression != nil {
		be = rw.AfterExpression(be)
	}
	return be
}

func (rw *Rewriter) rewriteExpressions(exprs []BoundExpression) []BoundExpression {
	var nexprs []BoundExpression
	for edx, expr := range exprs {
		nexpr := rw.RewriteExpression(expr)
		if nexpr != expr && nexprs == nil {
			nexprs = append(make([]BoundExpression, 0, len(exprs)), exprs[:edx]...)
		}
		if nexprs != nil {
			nexprs = append(nexprs, nexpr)
		}
	}
	if nexprs == nil {
		return exprs
	}
	return nexprs
}

func (rw *Rewriter) rewriteChildren(be BoundExpression) BoundExpression {
	switch be := be.(type) {
	case *BoundErrorExpression, *BoundLiteralExpression, *BoundValueSlotExpression,
		*BoundVariableExpression, *BoundRowReferenceExpression:

		return be
	case *BoundConversionExpression:
		return be.Update(rw.RewriteExpression(be.Expression))
	case *BoundUnaryExpression:
		return be.Update(rw.RewriteExpression(be.Expression))
	case *BoundBinaryExpression:
		return be.Update(rw.RewriteExpression(be.Left), rw.RewriteExpression(be.Right))
	case *BoundIsNullExpression:
		return be.Update(rw.RewriteExpression(be.Expression))
	case *BoundCaseExpression:
		labels := make([]*BoundCaseLabel, 0, len(be.Labels))
		for _, lbl := range be.Labels {
			labels = append(labels, lbl.Update(rw.RewriteExpression(lbl.Condition),
				rw.RewriteExpression(lbl.Result)))
		}
		return be.Update(labels, rw.RewriteExpression(be.Else))
	case *BoundFunctionInvocationExpression:
		return be.Update(rw.rewriteExpressions(be.Arguments))
	case *BoundMethodInvocationExpression:
		return be.Update(rw.RewriteExpression(be.Target), rw.rewriteExpressions(be.Arguments))
	case *BoundPropertyAccessExpression:
		return be.Update(rw.RewriteExpression(be.Target))
	case *BoundSingleRowSubselect:
		return be.Update(rw.RewriteRelation(be.Relation))
	case *BoundExistsSubselect:
		return be.Update(rw.RewriteRelation(be.Relation))
	case *BoundAllAnySubselect:
		return be.Update(rw.RewriteExpression(be.Left), rw.RewriteRelation(be.Relation))
	default:
		panic(fmt.Sprintf("unexpected type for BoundExpression: %T: %v", be, be))
	}
}

func (rw *Rewriter) RewriteRelation(br BoundRelation) BoundRelation {
	br = rw.rewriteRelationChildren(br)
	if rw.AfterRelation != nil {
		br = rw.AfterRelation(br)
	}
	return br
}

func (rw *Rewriter) rewriteRelationChildren(br BoundRelation) BoundRelation {
	switch br := br.(type) {
	case *BoundTableRelation, *BoundConstantRelation:
		return br
	case *BoundFilterRelation:
		return br.Update(rw.RewriteRelation(br.Input), rw.RewriteExpression(br.Condition))
	case *BoundComputeRelation:
		dvs := make([]BoundComputedValue, 0, len(br.DefinedValues))
		for _, dv := range br.DefinedValues {
			dvs = append(dvs, dv.Update(rw.RewriteExpression(dv.Expression)))
		}
		return br.Update(rw.RewriteRelation(br.Input), dvs)
	case *BoundProjectRelation:
		return br.Update(rw.RewriteRelation(br.Input))
	case *BoundJoinRelation:
		return br.Update(br.JoinType, rw.RewriteRelation(br.Left), rw.RewriteRelation(br.Right),
			rw.RewriteExpression(br.Condition))
	case *BoundAggregateRelation:
		aggs := make([]BoundAggregatedValue, 0, len(br.Aggregates))
		for _, av := range br.Aggregates {
			aggs = append(aggs, av.Update(rw.RewriteExpression(av.Argument)))
		}
		return br.Update(rw.RewriteRelation(br.Input), aggs)
	case *BoundSortRelation:
		return br.Update(rw.RewriteRelation(br.Input))
	case *BoundTopRelation:
		return br.Update(rw.RewriteRelation(br.Input))
	case *BoundUnionRelation:
		inputs := make([]BoundRelation, 0, len(br.Inputs))
		for _, input := range br.Inputs {
			inputs = append(inputs, rw.RewriteRelation(input))
		}
		return br.Update(inputs)
	case *BoundIntersectOrExceptRelation:
		return br.Update(rw.RewriteRelation(br.Left), rw.RewriteRelation(br.Right))
	default:
		panic(fmt.Sprintf("unexpected type for BoundRelation: %T: %v", br, br))
	}
}

type SimplifyFlags int

const (
	// RemoveTrueFilters drops filters whose condition is the literal TRUE.
	RemoveTrueFilters SimplifyFlags = 1 << iota

	// CrossJoinTrueJoins turns inner joins whose condition is the literal TRUE into cross
	// joins.
	CrossJoinTrueJoins

	// RemoveIdentityProjects drops projects which output exactly the values of their
	// input, in order.
	RemoveIdentityProjects

	DefaultSimplify = RemoveTrueFilters | CrossJoinTrueJoins | RemoveIdentityProjects
)

func isTrue(be BoundExpression) bool {
	ble, ok := be.(*BoundLiteralExpression)
	if !ok {
		return false
	}
	b, ok := ble.Value.(bool)
	return ok && b
}

// Simplify applies the simplifications selected by flags to a bound relation.
func Simplify(br BoundRelation, flags SimplifyFlags) BoundRelation {
	rw := Rewriter{
		AfterRelation: func(br BoundRelation) BoundRelation {
			switch br := br.(type) {
			case *BoundFilterRelation:
				if flags&RemoveTrueFilters != 0 && isTrue(br.Condition) {
					return br.Input
				}
			case *BoundJoinRelation:
				if flags&CrossJoinTrueJoins != 0 && br.JoinType == InnerJoin &&
					isTrue(br.Condition) {

					return br.Update(CrossJoin, br.Left, br.Right, nil)
				}
			case *BoundProjectRelation:
				if flags&RemoveIdentityProjects != 0 {
					outputs := br.Input.GetOutputValues()
					if len(outputs) == len(br.Outputs) {
						same := true
						for odx := range outputs {
							if outputs[odx] != br.Outputs[odx] {
								same = false
								break
							}
						}
						if same {
							return br.Input
						}
					}
				}
			}
			return br
		},
	}
	return rw.RewriteRelation(br)
}
