package binding

import (
	"github.com/leftmike/nquery/symbols"
)

// BoundRelation is a node of the relational algebra. A relation defines the value slots
// it computes and outputs the value slots visible to its parent.
type BoundRelation interface {
	GetDefinedValues() []*symbols.ValueSlot
	GetOutputValues() []*symbols.ValueSlot
	boundRelation()
}

type BoundTableRelation struct {
	Instance      *symbols.TableInstanceSymbol
	DefinedValues []*symbols.ValueSlot
}

func (btr *BoundTableRelation) GetDefinedValues() []*symbols.ValueSlot { return btr.DefinedValues }
func (btr *BoundTableRelation) GetOutputValues() []*symbols.ValueSlot  { return btr.DefinedValues }
func (*BoundTableRelation) boundRelation()                             {}

// BoundConstantRelation produces a single row with no values; it is the input of a
// SELECT without FROM.
type BoundConstantRelation struct{}

func (*BoundConstantRelation) GetDefinedValues() []*symbols.ValueSlot { return nil }
func (*BoundConstantRelation) GetOutputValues() []*symbols.ValueSlot  { return nil }
func (*BoundConstantRelation) boundRelation()                         {}

type BoundFilterRelation struct {
	Input     BoundRelation
	Condition BoundExpression
}

func (*BoundFilterRelation) GetDefinedValues() []*symbols.ValueSlot { return nil }
func (*BoundFilterRelation) boundRelation()                         {}

func (bfr *BoundFilterRelation) GetOutputValues() []*symbols.ValueSlot {
	return bfr.Input.GetOutputValues()
}

func (bfr *BoundFilterRelation) Update(input BoundRelation,
	cond BoundExpression) *BoundFilterRelation {

	if input == bfr.Input && cond == bfr.Condition {
		return bfr
	}
	return &BoundFilterRelation{
		Input:     input,
		Condition: cond,
	}
}

type BoundComputedValue struct {
	Expression BoundExpression
	ValueSlot  *symbols.ValueSlot
}

func (bcv BoundComputedValue) Update(expr BoundExpression) BoundComputedValue {
	if expr == bcv.Expression {
		return bcv
	}
	return BoundComputedValue{
		Expression: expr,
		ValueSlot:  bcv.ValueSlot,
	}
}

// BoundComputeRelation evaluates expressions over each input row and outputs exactly the
// value slots it defines.
type BoundComputeRelation struct {
	Input         BoundRelation
	DefinedValues []BoundComputedValue
}

func (bcr *BoundComputeRelation) GetDefinedValues() []*symbols.ValueSlot {
	var slots []*symbols.ValueSlot
	for _, dv := range bcr.DefinedValues {
		slots = append(slots, dv.ValueSlot)
	}
	return slots
}

func (bcr *BoundComputeRelation) GetOutputValues() []*symbols.ValueSlot {
	return bcr.GetDefinedValues()
}

func (*BoundComputeRelation) boundRelation() {}

func (bcr *BoundComputeRelation) Update(input BoundRelation,
	definedValues []BoundComputedValue) *BoundComputeRelation {

	if input == bcr.Input && len(definedValues) == len(bcr.DefinedValues) {
		same := true
		for ddx := range definedValues {
			if definedValues[ddx] != bcr.DefinedValues[ddx] {
				same = false
				break
			}
		}
		if same {
			return bcr
		}
	}
	return &BoundComputeRelation{
		Input:         input,
		DefinedValues: definedValues,
	}
}

// BoundProjectRelation outputs a subset of the value slots of its input, in order.
type BoundProjectRelation struct {
	Input   BoundRelation
	Outputs []*symbols.ValueSlot
}

func (*BoundProjectRelation) GetDefinedValues() []*symbols.ValueSlot   { return nil }
func (bpr *BoundProjectRelation) GetOutputValues() []*symbols.ValueSlot { return bpr.Outputs }
func (*BoundProjectRelation) boundRelation()                           {}

func (bpr *BoundProjectRelation) Update(input BoundRelation) *BoundProjectRelation {
	if input == bpr.Input {
		return bpr
	}
	return &BoundProjectRelation{
		Input:   input,
		Outputs: bpr.Outputs,
	}
}

type JoinType int

const (
	InnerJoin JoinType = iota
	CrossJoin
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
)

var joinTypeNames = [...]string{
	InnerJoin:      "INNER",
	CrossJoin:      "CROSS",
	LeftOuterJoin:  "LEFT OUTER",
	RightOuterJoin: "RIGHT OUTER",
	FullOuterJoin:  "FULL OUTER",
}

func (jt JoinType) String() string {
	return joinTypeNames[jt]
}

// BoundJoinRelation outputs the value slots of Left followed by those of Right. Condition
// is nil for cross joins.
type BoundJoinRelation struct {
	JoinType  JoinType
	Left      BoundRelation
	Right     BoundRelation
	Condition BoundExpression
}

func (*BoundJoinRelation) GetDefinedValues() []*symbols.ValueSlot { return nil }
func (*BoundJoinRelation) boundRelation()                         {}

func (bjr *BoundJoinRelation) GetOutputValues() []*symbols.ValueSlot {
	left := bjr.Left.GetOutputValues()
	right := bjr.Right.GetOutputValues()
	slots := make([]*symbols.ValueSlot, 0, len(left)+len(right))
	slots = append(slots, left...)
	return append(slots, right...)
}

func (bjr *BoundJoinRelation) Update(joinType JoinType, left, right BoundRelation,
	cond BoundExpression) *BoundJoinRelation {

	if joinType == bjr.JoinType && left == bjr.Left && right == bjr.Right &&
		cond == bjr.Condition {

		return bjr
	}
	return &BoundJoinRelation{
		JoinType:  joinType,
		Left:      left,
		Right:     right,
		Condition: cond,
	}
}

// BoundAggregatedValue is one aggregate of a BoundAggregateRelation; Argument is
// evaluated against the input rows.
type BoundAggregatedValue struct {
	Output       *symbols.ValueSlot
	Aggregate    *symbols.AggregateSymbol
	Aggregatable symbols.Aggregatable
	Argument     BoundExpression
}

func (bav BoundAggregatedValue) Update(arg BoundExpression) BoundAggregatedValue {
	if arg == bav.Argument {
		return bav
	}
	return BoundAggregatedValue{
		Output:       bav.Output,
		Aggregate:    bav.Aggregate,
		Aggregatable: bav.Aggregatable,
		Argument:     arg,
	}
}

// BoundAggregateRelation groups its input by the group slots and outputs the group slots
// followed by the aggregates.
type BoundAggregateRelation struct {
	Input      BoundRelation
	Groups     []*symbols.ValueSlot
	Aggregates []BoundAggregatedValue
}

func (bar *BoundAggregateRelation) GetDefinedValues() []*symbols.ValueSlot {
	var slots []*symbols.ValueSlot
	for _, av := range bar.Aggregates {
		slots = append(slots, av.Output)
	}
	return slots
}

func (bar *BoundAggregateRelation) GetOutputValues() []*symbols.ValueSlot {
	slots := append([]*symbols.ValueSlot(nil), bar.Groups...)
	return append(slots, bar.GetDefinedValues()...)
}

func (*BoundAggregateRelation) boundRelation() {}

func (bar *BoundAggregateRelation) Update(input BoundRelation,
	aggregates []BoundAggregatedValue) *BoundAggregateRelation {

	if input == bar.Input && len(aggregates) == len(bar.Aggregates) {
		same := true
		for adx := range aggregates {
			if aggregates[adx].Argument != bar.Aggregates[adx].Argument ||
				aggregates[adx].Output != bar.Aggregates[adx].Output ||
				aggregates[adx].Aggregate != bar.Aggregates[adx].Aggregate {

				same = false
				break
			}
		}
		if same {
			return bar
		}
	}
	return &BoundAggregateRelation{
		Input:      input,
		Groups:     bar.Groups,
		Aggregates: aggregates,
	}
}

type BoundSortedValue struct {
	ValueSlot  *symbols.ValueSlot
	Descending bool
}

// BoundSortRelation sorts its input; when IsDistinct, adjacent duplicate rows are
// removed after sorting.
type BoundSortRelation struct {
	IsDistinct   bool
	Input        BoundRelation
	SortedValues []BoundSortedValue
}

func (*BoundSortRelation) GetDefinedValues() []*symbols.ValueSlot { return nil }
func (*BoundSortRelation) boundRelation()                         {}

func (bsr *BoundSortRelation) GetOutputValues() []*symbols.ValueSlot {
	return bsr.Input.GetOutputValues()
}

func (bsr *BoundSortRelation) Update(input BoundRelation) *BoundSortRelation {
	if input == bsr.Input {
		return bsr
	}
	return &BoundSortRelation{
		IsDistinct:   bsr.IsDistinct,
		Input:        input,
		SortedValues: bsr.SortedValues,
	}
}

// BoundTopRelation limits its input to the first Limit rows, plus any following rows
// equal to the last one over TieEntries.
type BoundTopRelation struct {
	Input      BoundRelation
	Limit      int64
	TieEntries []BoundSortedValue
}

func (*BoundTopRelation) GetDefinedValues() []*symbols.ValueSlot { return nil }
func (*BoundTopRelation) boundRelation()                         {}

func (btr *BoundTopRelation) GetOutputValues() []*symbols.ValueSlot {
	return btr.Input.GetOutputValues()
}

func (btr *BoundTopRelation) Update(input BoundRelation) *BoundTopRelation {
	if input == btr.Input {
		return btr
	}
	return &BoundTopRelation{
		Input:      input,
		Limit:      btr.Limit,
		TieEntries: btr.TieEntries,
	}
}

// BoundUnifiedValue defines ValueSlot as the value of InputValueSlots[i] for rows of
// input i.
type BoundUnifiedValue struct {
	ValueSlot       *symbols.ValueSlot
	InputValueSlots []*symbols.ValueSlot
}

type BoundUnionRelation struct {
	IsUnionAll    bool
	Inputs        []BoundRelation
	DefinedValues []BoundUnifiedValue
}

func (bur *BoundUnionRelation) GetDefinedValues() []*symbols.ValueSlot {
	var slots []*symbols.ValueSlot
	for _, dv := range bur.DefinedValues {
		slots = append(slots, dv.ValueSlot)
	}
	return slots
}

func (bur *BoundUnionRelation) GetOutputValues() []*symbols.ValueSlot {
	return bur.GetDefinedValues()
}

func (*BoundUnionRelation) boundRelation() {}

func (bur *BoundUnionRelation) Update(inputs []BoundRelation) *BoundUnionRelation {
	if len(inputs) == len(bur.Inputs) {
		same := true
		for idx := range inputs {
			if inputs[idx] != bur.Inputs[idx] {
				same = false
				break
			}
		}
		if same {
			return bur
		}
	}
	return &BoundUnionRelation{
		IsUnionAll:    bur.IsUnionAll,
		Inputs:        inputs,
		DefinedValues: bur.DefinedValues,
	}
}

// BoundIntersectOrExceptRelation outputs the distinct rows of Left which are (or are
// not) in Right.
type BoundIntersectOrExceptRelation struct {
	IsIntersect bool
	Left        BoundRelation
	Right       BoundRelation
}

func (*BoundIntersectOrExceptRelation) GetDefinedValues() []*symbols.ValueSlot { return nil }
func (*BoundIntersectOrExceptRelation) boundRelation()                         {}

func (bioer *BoundIntersectOrExceptRelation) GetOutputValues() []*symbols.ValueSlot {
	return bioer.Left.GetOutputValues()
}

func (bioer *BoundIntersectOrExceptRelation) Update(
	left, right BoundRelation) *BoundIntersectOrExceptRelation {

	if left == bioer.Left && right == bioer.Right {
		return bioer
	}
	return &BoundIntersectOrExceptRelation{
		IsIntersect: bioer.IsIntersect,
		Left:        left,
		Right:       right,
	}
}
