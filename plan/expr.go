package plan

import (
	"context"
	"fmt"

	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/sql"
)

// evalFunc evaluates a compiled expression against the current rows of the allocations
// it was compiled with.
type evalFunc func() (sql.Value, error)

func constant(v sql.Value) evalFunc {
	return func() (sql.Value, error) {
		return v, nil
	}
}

// CompileExpression compiles a bound expression which is not part of a query; tables
// read by its subqueries are read using ctx.
func CompileExpression(ctx context.Context, be binding.BoundExpression) func() (sql.Value,
	error) {

	bldr := builder{ctx: ctx}
	return bldr.compile(be, nil)
}

func (bldr builder) compileExpressions(exprs []binding.BoundExpression,
	alloc *Allocation) []evalFunc {

	efs := make([]evalFunc, 0, len(exprs))
	for _, be := range exprs {
		efs = append(efs, bldr.compile(be, alloc))
	}
	return efs
}

// evalArguments evaluates args in order; it returns false if any is NULL.
func evalArguments(efs []evalFunc) ([]sql.Value, bool, error) {
	vals := make([]sql.Value, len(efs))
	for edx, ef := range efs {
		v, err := ef()
		if err != nil {
			return nil, false, err
		} else if v == nil {
			return nil, false, nil
		}
		vals[edx] = v
	}
	return vals, true, nil
}

func evalBool(ef evalFunc, what string) (bool, bool, error) {
	v, err := ef()
	if err != nil {
		return false, false, err
	} else if v == nil {
		return false, true, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, fmt.Errorf("engine: expected boolean result from %s: %s", what,
			sql.Format(v))
	}
	return b, false, nil
}

func (bldr builder) compile(be binding.BoundExpression, alloc *Allocation) evalFunc {
	switch be := be.(type) {
	case *binding.BoundErrorExpression:
		panic("compiling an expression which did not bind")
	case *binding.BoundLiteralExpression:
		return constant(be.Value)
	case *binding.BoundValueSlotExpression:
		rb, idx := alloc.Lookup(be.ValueSlot)
		return func() (sql.Value, error) {
			return rb.Value(idx), nil
		}
	case *binding.BoundVariableExpression:
		return constant(be.Symbol.Value())
	case *binding.BoundConversionExpression:
		ef := bldr.compile(be.Expression, alloc)
		return func() (sql.Value, error) {
			v, err := ef()
			if err != nil || v == nil {
				return nil, err
			}
			return sql.Convert(v, be.Conversion, be.TargetType)
		}
	case *binding.BoundUnaryExpression:
		ef := bldr.compile(be.Expression, alloc)
		sig := be.Signature()
		return func() (sql.Value, error) {
			v, err := ef()
			if err != nil || v == nil {
				return nil, err
			}
			return sig.Func([]sql.Value{v})
		}
	case *binding.BoundBinaryExpression:
		return bldr.compileBinary(be, alloc)
	case *binding.BoundIsNullExpression:
		ef := bldr.compile(be.Expression, alloc)
		return func() (sql.Value, error) {
			v, err := ef()
			if err != nil {
				return nil, err
			}
			return (v == nil) != be.Negated, nil
		}
	case *binding.BoundCaseExpression:
		return bldr.compileCase(be, alloc)
	case *binding.BoundFunctionInvocationExpression:
		efs := bldr.compileExpressions(be.Arguments, alloc)
		fs := be.Symbol()
		return func() (sql.Value, error) {
			args, ok, err := evalArguments(efs)
			if err != nil || !ok {
				return nil, err
			}
			return fs.Invoke(args)
		}
	case *binding.BoundMethodInvocationExpression:
		tef := bldr.compile(be.Target, alloc)
		efs := bldr.compileExpressions(be.Arguments, alloc)
		ms := be.Symbol()
		return func() (sql.Value, error) {
			target, err := tef()
			if err != nil || target == nil {
				return nil, err
			}
			args, ok, err := evalArguments(efs)
			if err != nil || !ok {
				return nil, err
			}
			return ms.Invoke(target, args)
		}
	case *binding.BoundPropertyAccessExpression:
		tef := bldr.compile(be.Target, alloc)
		return func() (sql.Value, error) {
			target, err := tef()
			if err != nil || target == nil {
				return nil, err
			}
			return be.Property.Get(target)
		}
	case *binding.BoundRowReferenceExpression:
		return bldr.compileRowReference(be, alloc)
	case *binding.BoundSingleRowSubselect:
		return bldr.compileSingleRowSubselect(be, alloc)
	case *binding.BoundExistsSubselect:
		it, _ := bldr.build(be.Relation, alloc)
		return func() (sql.Value, error) {
			defer it.Close()

			err := it.Start()
			if err != nil {
				return nil, err
			}
			ok, err := it.NextRow()
			if err != nil {
				return nil, err
			}
			return ok, nil
		}
	case *binding.BoundAllAnySubselect:
		return bldr.compileAllAny(be, alloc)
	default:
		panic(fmt.Sprintf("unexpected type for binding.BoundExpression: %T: %v", be, be))
	}
}

func (bldr builder) compileBinary(be *binding.BoundBinaryExpression,
	alloc *Allocation) evalFunc {

	lef := bldr.compile(be.Left, alloc)
	ref := bldr.compile(be.Right, alloc)
	sig := be.Signature()

	switch sig.Op {
	case sql.LogicalAndOp:
		return func() (sql.Value, error) {
			l, lnull, err := evalBool(lef, "AND")
			if err != nil {
				return nil, err
			} else if !lnull && !l {
				return false, nil
			}
			r, rnull, err := evalBool(ref, "AND")
			if err != nil {
				return nil, err
			} else if !rnull && !r {
				return false, nil
			} else if lnull || rnull {
				return nil, nil
			}
			return true, nil
		}
	case sql.LogicalOrOp:
		return func() (sql.Value, error) {
			l, lnull, err := evalBool(lef, "OR")
			if err != nil {
				return nil, err
			} else if !lnull && l {
				return true, nil
			}
			r, rnull, err := evalBool(ref, "OR")
			if err != nil {
				return nil, err
			} else if !rnull && r {
				return true, nil
			} else if lnull || rnull {
				return nil, nil
			}
			return false, nil
		}
	}

	return func() (sql.Value, error) {
		l, err := lef()
		if err != nil || l == nil {
			return nil, err
		}
		r, err := ref()
		if err != nil || r == nil {
			return nil, err
		}
		return sig.Func([]sql.Value{l, r})
	}
}

func (bldr builder) compileCase(be *binding.BoundCaseExpression,
	alloc *Allocation) evalFunc {

	type label struct {
		cond   evalFunc
		result evalFunc
	}

	labels := make([]label, 0, len(be.Labels))
	for _, lbl := range be.Labels {
		labels = append(labels, label{
			cond:   bldr.compile(lbl.Condition, alloc),
			result: bldr.compile(lbl.Result, alloc),
		})
	}
	elseEF := constant(nil)
	if be.Else != nil {
		elseEF = bldr.compile(be.Else, alloc)
	}

	return func() (sql.Value, error) {
		for _, lbl := range labels {
			b, null, err := evalBool(lbl.cond, "WHEN")
			if err != nil {
				return nil, err
			} else if !null && b {
				return lbl.result()
			}
		}
		return elseEF()
	}
}

func (bldr builder) compileRowReference(be *binding.BoundRowReferenceExpression,
	alloc *Allocation) evalFunc {

	type column struct {
		rb  RowBuffer
		idx int
	}

	var names []string
	var cols []column
	for _, tcis := range be.Instance.ColumnInstances() {
		rb, idx := alloc.Lookup(tcis.ValueSlot())
		names = append(names, tcis.Name())
		cols = append(cols, column{rb: rb, idx: idx})
	}
	tblName := be.Instance.Table().Name()

	return func() (sql.Value, error) {
		row := &sql.Row{
			Table:   tblName,
			Columns: names,
			Values:  make([]sql.Value, len(cols)),
		}
		for cdx, col := range cols {
			row.Values[cdx] = col.rb.Value(col.idx)
		}
		return row, nil
	}
}

func (bldr builder) compileSingleRowSubselect(be *binding.BoundSingleRowSubselect,
	alloc *Allocation) evalFunc {

	it, salloc := bldr.build(be.Relation, alloc)
	idx := salloc.Index(be.Value)
	return func() (sql.Value, error) {
		defer it.Close()

		err := it.Start()
		if err != nil {
			return nil, err
		}
		ok, err := it.NextRow()
		if err != nil || !ok {
			return nil, err
		}
		v := it.RowBuffer().Value(idx)

		ok, err = it.NextRow()
		if err != nil {
			return nil, err
		} else if ok {
			return nil, fmt.Errorf("engine: subquery returned more than one row")
		}
		return v, nil
	}
}

// compileAllAny compiles x op ALL (subquery) and x op ANY (subquery). ALL is true when op
// is true for every row and ANY when it is true for some row; otherwise, if a comparison
// was NULL, the result is NULL.
func (bldr builder) compileAllAny(be *binding.BoundAllAnySubselect,
	alloc *Allocation) evalFunc {

	lef := bldr.compile(be.Left, alloc)
	it, salloc := bldr.build(be.Relation, alloc)
	idx := salloc.Index(be.Value)
	sig := be.Signature()

	return func() (sql.Value, error) {
		defer it.Close()

		l, err := lef()
		if err != nil {
			return nil, err
		}
		err = it.Start()
		if err != nil {
			return nil, err
		}

		var sawNull bool
		for {
			ok, err := it.NextRow()
			if err != nil {
				return nil, err
			} else if !ok {
				break
			}

			r := it.RowBuffer().Value(idx)
			if l == nil || r == nil {
				sawNull = true
				continue
			}
			v, err := sig.Func([]sql.Value{l, r})
			if err != nil {
				return nil, err
			}
			b, ok := v.(bool)
			if !ok {
				sawNull = true
			} else if b != be.IsAll {
				// A false comparison decides ALL and a true one decides ANY.
				return b, nil
			}
		}
		if sawNull {
			return nil, nil
		}
		return be.IsAll, nil
	}
}
