package binding

import (
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
)

// BoundExpression is a typed, resolved expression. Bound expressions are immutable: the
// Update methods return the receiver when nothing changed, and a new node otherwise.
type BoundExpression interface {
	Type() sql.Type
	boundExpression()
}

// BoundErrorExpression replaces an expression which failed to bind.
type BoundErrorExpression struct{}

func (*BoundErrorExpression) Type() sql.Type   { return sql.UnknownType }
func (*BoundErrorExpression) boundExpression() {}

type BoundLiteralExpression struct {
	Value     sql.Value
	ValueType sql.Type
}

func (ble *BoundLiteralExpression) Type() sql.Type { return ble.ValueType }
func (*BoundLiteralExpression) boundExpression()   {}

// BoundValueSlotExpression reads a value slot defined by some relation.
type BoundValueSlotExpression struct {
	ValueSlot *symbols.ValueSlot
}

func (bvse *BoundValueSlotExpression) Type() sql.Type { return bvse.ValueSlot.Type() }
func (*BoundValueSlotExpression) boundExpression()    {}

type BoundVariableExpression struct {
	Symbol *symbols.VariableSymbol
}

func (bve *BoundVariableExpression) Type() sql.Type { return bve.Symbol.Type() }
func (*BoundVariableExpression) boundExpression()   {}

type BoundConversionExpression struct {
	Expression BoundExpression
	Conversion sql.Conversion
	TargetType sql.Type
}

func (bce *BoundConversionExpression) Type() sql.Type { return bce.TargetType }
func (*BoundConversionExpression) boundExpression()   {}

func (bce *BoundConversionExpression) Update(expr BoundExpression) *BoundConversionExpression {
	if expr == bce.Expression {
		return bce
	}
	return &BoundConversionExpression{
		Expression: expr,
		Conversion: bce.Conversion,
		TargetType: bce.TargetType,
	}
}

type BoundUnaryExpression struct {
	Result     OverloadResult
	Expression BoundExpression
}

func (bue *BoundUnaryExpression) Type() sql.Type { return bue.Result.ReturnType() }
func (*BoundUnaryExpression) boundExpression()   {}

func (bue *BoundUnaryExpression) Signature() *OperatorSignature {
	os, _ := bue.Result.Selected().(*OperatorSignature)
	return os
}

func (bue *BoundUnaryExpression) Update(expr BoundExpression) *BoundUnaryExpression {
	if expr == bue.Expression {
		return bue
	}
	return &BoundUnaryExpression{
		Result:     bue.Result,
		Expression: expr,
	}
}

type BoundBinaryExpression struct {
	Left   BoundExpression
	Result OverloadResult
	Right  BoundExpression
}

func (bbe *BoundBinaryExpression) Type() sql.Type { return bbe.Result.ReturnType() }
func (*BoundBinaryExpression) boundExpression()   {}

func (bbe *BoundBinaryExpression) Signature() *OperatorSignature {
	os, _ := bbe.Result.Selected().(*OperatorSignature)
	return os
}

func (bbe *BoundBinaryExpression) Update(left, right BoundExpression) *BoundBinaryExpression {
	if left == bbe.Left && right == bbe.Right {
		return bbe
	}
	return &BoundBinaryExpression{
		Left:   left,
		Result: bbe.Result,
		Right:  right,
	}
}

type BoundIsNullExpression struct {
	Expression BoundExpression
	Negated    bool
}

func (*BoundIsNullExpression) Type() sql.Type   { return sql.BooleanType }
func (*BoundIsNullExpression) boundExpression() {}

func (bine *BoundIsNullExpression) Update(expr BoundExpression) *BoundIsNullExpression {
	if expr == bine.Expression {
		return bine
	}
	return &BoundIsNullExpression{
		Expression: expr,
		Negated:    bine.Negated,
	}
}

type BoundCaseLabel struct {
	Condition BoundExpression
	Result    BoundExpression
}

func (bcl *BoundCaseLabel) Update(cond, result BoundExpression) *BoundCaseLabel {
	if cond == bcl.Condition && result == bcl.Result {
		return bcl
	}
	return &BoundCaseLabel{
		Condition: cond,
		Result:    result,
	}
}

// BoundCaseExpression is a searched CASE; simple CASE, NULLIF, and COALESCE are bound as
// one of these.
type BoundCaseExpression struct {
	Labels   []*BoundCaseLabel
	Else     BoundExpression
	CaseType sql.Type
}

func (bce *BoundCaseExpression) Type() sql.Type { return bce.CaseType }
func (*BoundCaseExpression) boundExpression()   {}

func (bce *BoundCaseExpression) Update(labels []*BoundCaseLabel,
	els BoundExpression) *BoundCaseExpression {

	if els == bce.Else && len(labels) == len(bce.Labels) {
		same := true
		for ldx := range labels {
			if labels[ldx] != bce.Labels[ldx] {
				same = false
				break
			}
		}
		if same {
			return bce
		}
	}
	return &BoundCaseExpression{
		Labels:   labels,
		Else:     els,
		CaseType: bce.CaseType,
	}
}

type BoundFunctionInvocationExpression struct {
	Arguments []BoundExpression
	Result    OverloadResult
}

func (bfie *BoundFunctionInvocationExpression) Type() sql.Type { return bfie.Result.ReturnType() }
func (*BoundFunctionInvocationExpression) boundExpression()    {}

func (bfie *BoundFunctionInvocationExpression) Symbol() *symbols.FunctionSymbol {
	fs, _ := bfie.Result.Selected().(*symbols.FunctionSymbol)
	return fs
}

func (bfie *BoundFunctionInvocationExpression) Update(
	args []BoundExpression) *BoundFunctionInvocationExpression {

	if sameExpressions(args, bfie.Arguments) {
		return bfie
	}
	return &BoundFunctionInvocationExpression{
		Arguments: args,
		Result:    bfie.Result,
	}
}

type BoundMethodInvocationExpression struct {
	Target    BoundExpression
	Arguments []BoundExpression
	Result    OverloadResult
}

func (bmie *BoundMethodInvocationExpression) Type() sql.Type { return bmie.Result.ReturnType() }
func (*BoundMethodInvocationExpression) boundExpression()    {}

func (bmie *BoundMethodInvocationExpression) Symbol() *symbols.MethodSymbol {
	ms, _ := bmie.Result.Selected().(*symbols.MethodSymbol)
	return ms
}

func (bmie *BoundMethodInvocationExpression) Update(target BoundExpression,
	args []BoundExpression) *BoundMethodInvocationExpression {

	if target == bmie.Target && sameExpressions(args, bmie.Arguments) {
		return bmie
	}
	return &BoundMethodInvocationExpression{
		Target:    target,
		Arguments: args,
		Result:    bmie.Result,
	}
}

type BoundPropertyAccessExpression struct {
	Target   BoundExpression
	Property *symbols.PropertySymbol
}

func (bpae *BoundPropertyAccessExpression) Type() sql.Type { return bpae.Property.Type() }
func (*BoundPropertyAccessExpression) boundExpression()    {}

func (bpae *BoundPropertyAccessExpression) Update(
	target BoundExpression) *BoundPropertyAccessExpression {

	if target == bpae.Target {
		return bpae
	}
	return &BoundPropertyAccessExpression{
		Target:   target,
		Property: bpae.Property,
	}
}

// BoundRowReferenceExpression is the row object of a physical table instance, built from
// the value slots of its columns.
type BoundRowReferenceExpression struct {
	Instance *symbols.TableInstanceSymbol
}

func (*BoundRowReferenceExpression) Type() sql.Type   { return sql.ObjectType }
func (*BoundRowReferenceExpression) boundExpression() {}

type BoundSingleRowSubselect struct {
	Relation BoundRelation
	Value    *symbols.ValueSlot
}

func (bsrs *BoundSingleRowSubselect) Type() sql.Type { return bsrs.Value.Type() }
func (*BoundSingleRowSubselect) boundExpression()    {}

func (bsrs *BoundSingleRowSubselect) Update(rel BoundRelation) *BoundSingleRowSubselect {
	if rel == bsrs.Relation {
		return bsrs
	}
	return &BoundSingleRowSubselect{
		Relation: rel,
		Value:    bsrs.Value,
	}
}

type BoundExistsSubselect struct {
	Relation BoundRelation
}

func (*BoundExistsSubselect) Type() sql.Type   { return sql.BooleanType }
func (*BoundExistsSubselect) boundExpression() {}

func (bes *BoundExistsSubselect) Update(rel BoundRelation) *BoundExistsSubselect {
	if rel == bes.Relation {
		return bes
	}
	return &BoundExistsSubselect{
		Relation: rel,
	}
}

// BoundAllAnySubselect compares Left with Value of every row of Relation using the
// resolved comparison operator.
type BoundAllAnySubselect struct {
	Left     BoundExpression
	Relation BoundRelation
	Value    *symbols.ValueSlot
	Result   OverloadResult
	IsAll    bool
}

func (baas *BoundAllAnySubselect) Type() sql.Type { return baas.Result.ReturnType() }
func (*BoundAllAnySubselect) boundExpression()    {}

func (baas *BoundAllAnySubselect) Signature() *OperatorSignature {
	os, _ := baas.Result.Selected().(*OperatorSignature)
	return os
}

func (baas *BoundAllAnySubselect) Update(left BoundExpression,
	rel BoundRelation) *BoundAllAnySubselect {

	if left == baas.Left && rel == baas.Relation {
		return baas
	}
	return &BoundAllAnySubselect{
		Left:     left,
		Relation: rel,
		Value:    baas.Value,
		Result:   baas.Result,
		IsAll:    baas.IsAll,
	}
}

func sameExpressions(x, y []BoundExpression) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// ExpressionsEqual compares two bound expressions structurally. Subselects are equal only
// if they are the same node.
func ExpressionsEqual(x, y BoundExpression) bool {
	if x == y {
		return true
	}

	switch x := x.(type) {
	case *BoundLiteralExpression:
		y, ok := y.(*BoundLiteralExpression)
		return ok && x.ValueType == y.ValueType && sql.Equal(x.Value, y.Value)
	case *BoundValueSlotExpression:
		y, ok := y.(*BoundValueSlotExpression)
		return ok && x.ValueSlot == y.ValueSlot
	case *BoundVariableExpression:
		y, ok := y.(*BoundVariableExpression)
		return ok && x.Symbol == y.Symbol
	case *BoundConversionExpression:
		y, ok := y.(*BoundConversionExpression)
		return ok && x.TargetType == y.TargetType && ExpressionsEqual(x.Expression, y.Expression)
	case *BoundUnaryExpression:
		y, ok := y.(*BoundUnaryExpression)
		return ok && x.Result.Selected() == y.Result.Selected() &&
			ExpressionsEqual(x.Expression, y.Expression)
	case *BoundBinaryExpression:
		y, ok := y.(*BoundBinaryExpression)
		return ok && x.Result.Selected() == y.Result.Selected() &&
			ExpressionsEqual(x.Left, y.Left) && ExpressionsEqual(x.Right, y.Right)
	case *BoundIsNullExpression:
		y, ok := y.(*BoundIsNullExpression)
		return ok && x.Negated == y.Negated && ExpressionsEqual(x.Expression, y.Expression)
	case *BoundCaseExpression:
		y, ok := y.(*BoundCaseExpression)
		if !ok || len(x.Labels) != len(y.Labels) || !ExpressionsEqual(x.Else, y.Else) {
			return false
		}
		for ldx := range x.Labels {
			if !ExpressionsEqual(x.Labels[ldx].Condition, y.Labels[ldx].Condition) ||
				!ExpressionsEqual(x.Labels[ldx].Result, y.Labels[ldx].Result) {

				return false
			}
		}
		return true
	case *BoundFunctionInvocationExpression:
		y, ok := y.(*BoundFunctionInvocationExpression)
		return ok && x.Result.Selected() == y.Result.Selected() &&
			expressionListsEqual(x.Arguments, y.Arguments)
	case *BoundMethodInvocationExpression:
		y, ok := y.(*BoundMethodInvocationExpression)
		return ok && x.Result.Selected() == y.Result.Selected() &&
			ExpressionsEqual(x.Target, y.Target) &&
			expressionListsEqual(x.Arguments, y.Arguments)
	case *BoundPropertyAccessExpression:
		y, ok := y.(*BoundPropertyAccessExpression)
		return ok && x.Property == y.Property && ExpressionsEqual(x.Target, y.Target)
	case *BoundRowReferenceExpression:
		y, ok := y.(*BoundRowReferenceExpression)
		return ok && x.Instance == y.Instance
	}
	return false
}

func expressionListsEqual(x, y []BoundExpression) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !ExpressionsEqual(x[i], y[i]) {
			return false
		}
	}
	return true
}
