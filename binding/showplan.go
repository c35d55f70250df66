package binding

import (
	"fmt"
	"strings"

	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
)

func slotsString(slots []*symbols.ValueSlot) string {
	var buf strings.Builder
	for sdx, slot := range slots {
		if sdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(slot.String())
	}
	return buf.String()
}

func sortedString(values []BoundSortedValue) string {
	var buf strings.Builder
	for vdx, sv := range values {
		if vdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(sv.ValueSlot.String())
		if sv.Descending {
			buf.WriteString(" DESC")
		} else {
			buf.WriteString(" ASC")
		}
	}
	return buf.String()
}

func expressionsString(exprs []BoundExpression) string {
	var buf strings.Builder
	for edx, expr := range exprs {
		if edx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(FormatExpression(expr))
	}
	return buf.String()
}

// FormatExpression renders a bound expression as text; subselects are rendered inline in
// brackets.
func FormatExpression(be BoundExpression) string {
	switch be := be.(type) {
	case *BoundErrorExpression:
		return "<error>"
	case *BoundLiteralExpression:
		return sql.Literal(be.Value)
	case *BoundValueSlotExpression:
		return be.ValueSlot.String()
	case *BoundVariableExpression:
		return be.Symbol.String()
	case *BoundConversionExpression:
		return fmt.Sprintf("CAST(%s AS %s)", FormatExpression(be.Expression), be.TargetType)
	case *BoundUnaryExpression:
		op := be.Signature().UnaryOp
		if op == sql.LogicalNotOp {
			return fmt.Sprintf("(NOT %s)", FormatExpression(be.Expression))
		}
		return fmt.Sprintf("(%s%s)", op, FormatExpression(be.Expression))
	case *BoundBinaryExpression:
		return fmt.Sprintf("(%s %s %s)", FormatExpression(be.Left), be.Signature().Op,
			FormatExpression(be.Right))
	case *BoundIsNullExpression:
		if be.Negated {
			return fmt.Sprintf("(%s IS NOT NULL)", FormatExpression(be.Expression))
		}
		return fmt.Sprintf("(%s IS NULL)", FormatExpression(be.Expression))
	case *BoundCaseExpression:
		var buf strings.Builder
		buf.WriteString("CASE")
		for _, lbl := range be.Labels {
			fmt.Fprintf(&buf, " WHEN %s THEN %s", FormatExpression(lbl.Condition),
				FormatExpression(lbl.Result))
		}
		fmt.Fprintf(&buf, " ELSE %s END", FormatExpression(be.Else))
		return buf.String()
	case *BoundFunctionInvocationExpression:
		return fmt.Sprintf("%s(%s)", be.Symbol().Name(), expressionsString(be.Arguments))
	case *BoundMethodInvocationExpression:
		return fmt.Sprintf("%s.%s(%s)", FormatExpression(be.Target), be.Symbol().Name(),
			expressionsString(be.Arguments))
	case *BoundPropertyAccessExpression:
		return fmt.Sprintf("%s.%s", FormatExpression(be.Target), be.Property.Name())
	case *BoundRowReferenceExpression:
		return fmt.Sprintf("ROW(%s)", be.Instance.Name())
	case *BoundSingleRowSubselect:
		return fmt.Sprintf("SUBSELECT(%s)[\n%s]", be.Value, ShowPlan(be.Relation))
	case *BoundExistsSubselect:
		return fmt.Sprintf("EXISTS[\n%s]", ShowPlan(be.Relation))
	case *BoundAllAnySubselect:
		kw := "ANY"
		if be.IsAll {
			kw = "ALL"
		}
		return fmt.Sprintf("(%s %s %s(%s))[\n%s]", FormatExpression(be.Left), be.Signature().Op,
			kw, be.Value, ShowPlan(be.Relation))
	default:
		panic(fmt.Sprintf("unexpected type for BoundExpression: %T: %v", be, be))
	}
}

type planNode struct {
	name     string
	fields   []string
	children []BoundRelation
}

func describe(br BoundRelation) planNode {
	switch br := br.(type) {
	case *BoundTableRelation:
		return planNode{
			name:   fmt.Sprintf("Table %s", br.Instance),
			fields: []string{slotsString(br.DefinedValues)},
		}
	case *BoundConstantRelation:
		return planNode{name: "Constant"}
	case *BoundFilterRelation:
		return planNode{
			name:     "Filter",
			fields:   []string{FormatExpression(br.Condition)},
			children: []BoundRelation{br.Input},
		}
	case *BoundComputeRelation:
		pn := planNode{
			name:     "Compute",
			children: []BoundRelation{br.Input},
		}
		for _, dv := range br.DefinedValues {
			pn.fields = append(pn.fields,
				fmt.Sprintf("%s := %s", dv.ValueSlot, FormatExpression(dv.Expression)))
		}
		return pn
	case *BoundProjectRelation:
		return planNode{
			name:     "Project",
			fields:   []string{slotsString(br.Outputs)},
			children: []BoundRelation{br.Input},
		}
	case *BoundJoinRelation:
		pn := planNode{
			name:     fmt.Sprintf("Join %s", br.JoinType),
			children: []BoundRelation{br.Left, br.Right},
		}
		if br.Condition != nil {
			pn.fields = []string{FormatExpression(br.Condition)}
		}
		return pn
	case *BoundAggregateRelation:
		pn := planNode{
			name:     "Aggregate",
			children: []BoundRelation{br.Input},
		}
		if len(br.Groups) > 0 {
			pn.fields = append(pn.fields, fmt.Sprintf("GROUP BY %s", slotsString(br.Groups)))
		}
		for _, av := range br.Aggregates {
			pn.fields = append(pn.fields, fmt.Sprintf("%s := %s(%s)", av.Output,
				av.Aggregate.Name(), FormatExpression(av.Argument)))
		}
		return pn
	case *BoundSortRelation:
		name := "Sort"
		if br.IsDistinct {
			name = "Sort DISTINCT"
		}
		return planNode{
			name:     name,
			fields:   []string{sortedString(br.SortedValues)},
			children: []BoundRelation{br.Input},
		}
	case *BoundTopRelation:
		pn := planNode{
			name:     fmt.Sprintf("Top %d", br.Limit),
			children: []BoundRelation{br.Input},
		}
		if len(br.TieEntries) > 0 {
			pn.fields = []string{fmt.Sprintf("WITH TIES %s", sortedString(br.TieEntries))}
		}
		return pn
	case *BoundUnionRelation:
		name := "Union"
		if br.IsUnionAll {
			name = "Union ALL"
		}
		pn := planNode{
			name:     name,
			children: br.Inputs,
		}
		for _, uv := range br.DefinedValues {
			pn.fields = append(pn.fields,
				fmt.Sprintf("%s := %s", uv.ValueSlot, slotsString(uv.InputValueSlots)))
		}
		return pn
	case *BoundIntersectOrExceptRelation:
		name := "Except"
		if br.IsIntersect {
			name = "Intersect"
		}
		return planNode{
			name:     name,
			children: []BoundRelation{br.Left, br.Right},
		}
	default:
		panic(fmt.Sprintf("unexpected type for BoundRelation: %T: %v", br, br))
	}
}

func showPlan(buf *strings.Builder, br BoundRelation, depth int) {
	indent := strings.Repeat("    ", depth)
	pn := describe(br)
	buf.WriteString(indent)
	buf.WriteString(pn.name)
	buf.WriteByte('\n')
	for _, fld := range pn.fields {
		buf.WriteString(indent)
		buf.WriteString("  | ")
		buf.WriteString(fld)
		buf.WriteByte('\n')
	}
	for _, child := range pn.children {
		showPlan(buf, child, depth+1)
	}
}

// ShowPlan renders a bound relation as an indented tree, one relation per line followed
// by its details.
func ShowPlan(br BoundRelation) string {
	var buf strings.Builder
	showPlan(&buf, br, 0)
	return buf.String()
}
