package binding

import (
	"fmt"

	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/syntax"
)

var binaryOps = map[syntax.Kind]sql.BinaryOp{
	syntax.MultiplyExpressionKind:       sql.MultiplyOp,
	syntax.DivideExpressionKind:         sql.DivideOp,
	syntax.ModuloExpressionKind:         sql.ModulusOp,
	syntax.PowerExpressionKind:          sql.PowerOp,
	syntax.AddExpressionKind:            sql.AddOp,
	syntax.SubExpressionKind:            sql.SubtractOp,
	syntax.BitwiseAndExpressionKind:     sql.BitAndOp,
	syntax.BitwiseOrExpressionKind:      sql.BitOrOp,
	syntax.ExclusiveOrExpressionKind:    sql.BitXorOp,
	syntax.LeftShiftExpressionKind:      sql.LeftShiftOp,
	syntax.RightShiftExpressionKind:     sql.RightShiftOp,
	syntax.EqualExpressionKind:          sql.EqualOp,
	syntax.NotEqualExpressionKind:       sql.NotEqualOp,
	syntax.LessExpressionKind:           sql.LessOp,
	syntax.LessOrEqualExpressionKind:    sql.LessOrEqualOp,
	syntax.GreaterExpressionKind:        sql.GreaterOp,
	syntax.GreaterOrEqualExpressionKind: sql.GreaterOrEqualOp,
	syntax.LogicalAndExpressionKind:     sql.LogicalAndOp,
	syntax.LogicalOrExpressionKind:      sql.LogicalOrOp,
}

var unaryOps = map[syntax.Kind]sql.UnaryOp{
	syntax.IdentityExpressionKind:   sql.IdentityOp,
	syntax.NegationExpressionKind:   sql.NegationOp,
	syntax.ComplementExpressionKind: sql.ComplementOp,
	syntax.LogicalNotExpressionKind: sql.LogicalNotOp,
}

// comparisonOps maps the operator token of an ALL, ANY, or SOME subselect.
var comparisonOps = map[syntax.Kind]sql.BinaryOp{
	syntax.EqualsToken:            sql.EqualOp,
	syntax.ExclamationEqualsToken: sql.NotEqualOp,
	syntax.LessGreaterToken:       sql.NotEqualOp,
	syntax.LessToken:              sql.LessOp,
	syntax.LessEqualToken:         sql.LessOrEqualOp,
	syntax.GreaterToken:           sql.GreaterOp,
	syntax.GreaterEqualToken:      sql.GreaterOrEqualOp,
}

func (b *binder) bindExpression(e syntax.Expression) BoundExpression {
	be := b.bindExpressionKind(e)
	b.recordExpression(e, be)
	return be
}

func (b *binder) bindExpressionKind(e syntax.Expression) BoundExpression {
	switch e := e.(type) {
	case *syntax.LiteralExpression:
		return b.bindLiteral(e)
	case *syntax.VariableExpression:
		return b.bindVariable(e)
	case *syntax.NameExpression:
		return b.bindName(e)
	case *syntax.ParenthesizedExpression:
		return b.bindExpression(e.Expression)
	case *syntax.UnaryExpression:
		operand := b.bindExpression(e.Operand)
		return b.bindUnaryOperator(e, unaryOps[e.Kind()], operand)
	case *syntax.BinaryExpression:
		left := b.bindExpression(e.Left)
		right := b.bindExpression(e.Right)
		return b.bindBinaryOperator(e, binaryOps[e.Kind()], left, right)
	case *syntax.LikeExpression:
		left := b.bindExpression(e.Left)
		right := b.bindExpression(e.Right)
		return b.negate(e, e.Not, b.bindBinaryOperator(e, sql.LikeOp, left, right))
	case *syntax.SimilarToExpression:
		left := b.bindExpression(e.Left)
		right := b.bindExpression(e.Right)
		return b.negate(e, e.Not, b.bindBinaryOperator(e, sql.SimilarToOp, left, right))
	case *syntax.BetweenExpression:
		return b.bindBetween(e)
	case *syntax.IsNullExpression:
		expr := b.bindExpression(e.Expression)
		if isError(expr) {
			return errorExpression()
		}
		return &BoundIsNullExpression{
			Expression: expr,
			Negated:    e.Not != nil,
		}
	case *syntax.CastExpression:
		return b.bindCast(e)
	case *syntax.CaseExpression:
		return b.bindCase(e)
	case *syntax.CoalesceExpression:
		return b.bindCoalesce(e)
	case *syntax.NullIfExpression:
		return b.bindNullIf(e)
	case *syntax.InExpression:
		return b.bindIn(e)
	case *syntax.InQueryExpression:
		expr := b.bindExpression(e.Expression)
		return b.negate(e, e.Not, b.bindAllAny(e, expr, sql.EqualOp, false, e.Query))
	case *syntax.PropertyAccessExpression:
		return b.bindPropertyAccess(e)
	case *syntax.MethodInvocationExpression:
		return b.bindMethodInvocation(e)
	case *syntax.FunctionInvocationExpression:
		return b.bindFunctionInvocation(e)
	case *syntax.CountAllExpression:
		return b.bindCountAll(e)
	case *syntax.SingleRowSubselect:
		bq := b.bindQueryIn(e.Query, b.scope)
		if len(bq.OutputColumns) != 1 {
			b.reportNode(syntax.TooManyExpressionsInSelectListOfSubquery, e)
			return errorExpression()
		}
		return &BoundSingleRowSubselect{
			Relation: bq.Relation,
			Value:    bq.OutputColumns[0].ValueSlot(),
		}
	case *syntax.ExistsSubselect:
		bq := b.bindQueryIn(e.Query, b.scope)
		return &BoundExistsSubselect{
			Relation: bq.Relation,
		}
	case *syntax.AllAnySubselect:
		left := b.bindExpression(e.Left)
		op, ok := comparisonOps[e.Operator.Kind()]
		if !ok {
			panic(fmt.Sprintf("unexpected all any operator: %s", e.Operator.Kind()))
		}
		return b.bindAllAny(e, left, op, e.Keyword.Kind() == syntax.AllKeyword, e.Query)
	default:
		panic(fmt.Sprintf("unexpected type for syntax.Expression: %T: %v", e, e))
	}
}

func (b *binder) bindLiteral(le *syntax.LiteralExpression) BoundExpression {
	t := le.Token
	if t.IsMissing() {
		return errorExpression()
	}

	switch t.Kind() {
	case syntax.TrueKeyword:
		return &BoundLiteralExpression{Value: true, ValueType: sql.BooleanType}
	case syntax.FalseKeyword:
		return &BoundLiteralExpression{Value: false, ValueType: sql.BooleanType}
	case syntax.NullKeyword:
		return &BoundLiteralExpression{ValueType: sql.NullType}
	case syntax.NumericLiteralToken, syntax.StringLiteralToken:
		return &BoundLiteralExpression{Value: t.Value(), ValueType: sql.TypeOf(t.Value())}
	}
	panic(fmt.Sprintf("unexpected literal token: %s", t.Kind()))
}

func (b *binder) bindVariable(ve *syntax.VariableExpression) BoundExpression {
	if ve.Name.IsMissing() {
		return errorExpression()
	}
	vs, ok := b.scope.LookupVariable(ve.Name.ValueText())
	if !ok {
		b.reportNode(syntax.UndeclaredVariable, ve, ve.Name.ValueText())
		return errorExpression()
	}
	b.recordSymbol(ve, vs)
	return &BoundVariableExpression{
		Symbol: vs,
	}
}

func (b *binder) bindName(ne *syntax.NameExpression) BoundExpression {
	if ne.Name.IsMissing() {
		return errorExpression()
	}

	name := ne.Name.ValueText()
	cols, tables := b.lookupName(name)
	if len(cols)+len(tables) == 0 {
		b.reportToken(syntax.UndeclaredIdentifier, ne.Name, name)
		return errorExpression()
	} else if len(cols)+len(tables) > 1 {
		var syms []symbols.Symbol
		for _, col := range cols {
			syms = append(syms, col)
		}
		for _, tis := range tables {
			syms = append(syms, tis)
		}
		b.reportToken(syntax.AmbiguousReference, ne.Name, name, symbolsString(syms))
		return errorExpression()
	}

	if len(cols) == 1 {
		return b.bindColumnInstance(ne, cols[0])
	}
	return b.bindRowReference(ne, ne.Name, tables[0])
}

func (b *binder) bindColumnInstance(n syntax.Node,
	col *symbols.TableColumnInstanceSymbol) BoundExpression {

	b.recordSymbol(n, col)
	b.recordSlotRef(col.ValueSlot(), n)
	return &BoundValueSlotExpression{
		ValueSlot: col.ValueSlot(),
	}
}

// bindRowReference binds a table instance used as a value; only instances of schema
// tables have row objects.
func (b *binder) bindRowReference(n syntax.Node, name *syntax.Token,
	tis *symbols.TableInstanceSymbol) BoundExpression {

	b.recordSymbol(n, tis)
	if _, ok := tis.Table().(*symbols.SchemaTableSymbol); !ok {
		b.reportToken(syntax.InvalidRowReference, name, tis.Name())
		return errorExpression()
	}
	for _, col := range tis.ColumnInstances() {
		b.recordSlotRef(col.ValueSlot(), n)
	}
	return &BoundRowReferenceExpression{
		Instance: tis,
	}
}

func (b *binder) bindPropertyAccess(pae *syntax.PropertyAccessExpression) BoundExpression {
	if ne, ok := pae.Target.(*syntax.NameExpression); ok && !ne.Name.IsMissing() {
		cols, tables := b.lookupName(ne.Name.ValueText())
		if len(cols) == 0 && len(tables) == 1 {
			tis := tables[0]
			b.recordSymbol(ne, tis)
			if pae.Name.IsMissing() {
				return errorExpression()
			}

			name := pae.Name.ValueText()
			cis := tis.LookupColumnInstance(name)
			if len(cis) == 0 {
				b.reportNode(syntax.UndeclaredIdentifier, pae,
					fmt.Sprintf("%s.%s", tis.Name(), name))
				return errorExpression()
			} else if len(cis) > 1 {
				var syms []symbols.Symbol
				for _, ci := range cis {
					syms = append(syms, ci)
				}
				b.reportToken(syntax.AmbiguousReference, pae.Name, name, symbolsString(syms))
				return errorExpression()
			}
			return b.bindColumnInstance(pae, cis[0])
		}
	}

	target := b.bindExpression(pae.Target)
	if pae.Name.IsMissing() || isError(target) {
		return errorExpression()
	}

	name := pae.Name.ValueText()
	props := b.dc.LookupProperties(target.Type(), name)
	if len(props) == 0 {
		b.reportToken(syntax.UndeclaredProperty, pae.Name, target.Type(), name)
		return errorExpression()
	} else if len(props) > 1 {
		var syms []symbols.Symbol
		for _, ps := range props {
			syms = append(syms, ps)
		}
		b.reportToken(syntax.AmbiguousReference, pae.Name, name, symbolsString(syms))
		return errorExpression()
	}

	b.recordSymbol(pae, props[0])
	return &BoundPropertyAccessExpression{
		Target:   target,
		Property: props[0],
	}
}

func (b *binder) bindArguments(al *syntax.ArgumentList) []BoundExpression {
	var args []BoundExpression
	for _, arg := range al.Arguments.Items {
		args = append(args, b.bindExpression(arg))
	}
	return args
}

func argumentTypes(args []BoundExpression) []sql.Type {
	types := make([]sql.Type, 0, len(args))
	for _, arg := range args {
		types = append(types, arg.Type())
	}
	return types
}

func convertArguments(args []BoundExpression, sig Signature) []BoundExpression {
	cargs := make([]BoundExpression, 0, len(args))
	for adx, arg := range args {
		cargs = append(cargs, convert(arg, sig.ParameterType(adx)))
	}
	return cargs
}

// checkInvocation reports why an invocation did not resolve to a single signature. No
// diagnostic is reported when an argument already failed to bind.
func (b *binder) checkInvocation(or OverloadResult, n syntax.Node, name string) bool {
	switch or.Status() {
	case Selected:
		return true
	case Ambiguous:
		if !or.HasUnknownArgument() {
			b.reportNode(syntax.AmbiguousInvocation, n, name, signaturesString(or.Candidates()))
		}
	case NoApplicableCandidate:
		if !or.HasUnknownArgument() {
			b.reportNode(syntax.NoApplicableOverload, n, name, typesString(or.ArgumentTypes()))
		}
	}
	return false
}

func (b *binder) bindMethodInvocation(mie *syntax.MethodInvocationExpression) BoundExpression {
	target := b.bindExpression(mie.Target)
	args := b.bindArguments(mie.Arguments)
	if mie.Name.IsMissing() || isError(target) {
		return errorExpression()
	}

	name := mie.Name.ValueText()
	methods := b.dc.LookupMethods(target.Type(), name)
	if len(methods) == 0 {
		b.reportToken(syntax.UndeclaredMethod, mie.Name, target.Type(), name)
		return errorExpression()
	}

	sigs := make([]Signature, 0, len(methods))
	for _, ms := range methods {
		sigs = append(sigs, ms)
	}
	or := ResolveOverloads(argumentTypes(args), sigs)
	if !b.checkInvocation(or, mie, name) {
		return errorExpression()
	}

	b.recordSymbol(mie, or.Selected().(*symbols.MethodSymbol))
	return &BoundMethodInvocationExpression{
		Target:    target,
		Arguments: convertArguments(args, or.Selected()),
		Result:    or,
	}
}

func (b *binder) bindFunctionInvocation(fie *syntax.FunctionInvocationExpression) BoundExpression {
	name := fie.Name.ValueText()
	if b.query != nil {
		if as, ok := b.scope.LookupAggregate(name); ok {
			return b.bindAggregate(fie, as, fie.Arguments.Arguments.Items)
		}
	}

	args := b.bindArguments(fie.Arguments)
	fns := b.scope.LookupFunctions(name)
	if len(fns) == 0 {
		b.reportToken(syntax.UndeclaredFunction, fie.Name, name)
		return errorExpression()
	}

	sigs := make([]Signature, 0, len(fns))
	for _, fs := range fns {
		sigs = append(sigs, fs)
	}
	or := ResolveOverloads(argumentTypes(args), sigs)
	if !b.checkInvocation(or, fie, name) {
		return errorExpression()
	}

	b.recordSymbol(fie, or.Selected().(*symbols.FunctionSymbol))
	return &BoundFunctionInvocationExpression{
		Arguments: convertArguments(args, or.Selected()),
		Result:    or,
	}
}

func (b *binder) bindCountAll(cae *syntax.CountAllExpression) BoundExpression {
	name := cae.Name.ValueText()
	if b.query != nil {
		if as, ok := b.scope.LookupAggregate(name); ok {
			return b.bindAggregate(cae, as, nil)
		}
	}
	b.reportToken(syntax.UndeclaredFunction, cae.Name, name)
	return errorExpression()
}

// bindAggregate binds an aggregate of the current query block; the aggregate is computed
// by the aggregate relation of the block and the expression reads its value slot. args
// is nil for name(*).
func (b *binder) bindAggregate(n syntax.Node, as *symbols.AggregateSymbol,
	args []syntax.Expression) BoundExpression {

	qc := b.query
	var id syntax.DiagnosticID
	switch qc.clause {
	case whereClause:
		id = syntax.AggregateInWhere
	case onClause:
		id = syntax.AggregateInOn
	case groupByClause:
		id = syntax.AggregateInGroupBy
	}
	if id != 0 {
		b.reportNode(id, n, as.Name())
		return errorExpression()
	}
	if qc.aggregate != nil {
		b.reportNode(syntax.AggregateCannotContainAggregate, n, qc.aggregate.Name())
		return errorExpression()
	}

	var bargs []BoundExpression
	qc.aggregate = as
	for _, arg := range args {
		bargs = append(bargs, b.bindExpression(arg))
	}
	qc.aggregate = nil

	var arg BoundExpression
	if args == nil {
		arg = &BoundLiteralExpression{Value: int32(1), ValueType: sql.IntType}
	} else if len(bargs) != 1 {
		b.reportNode(syntax.NoApplicableOverload, n, as.Name(),
			typesString(argumentTypes(bargs)))
		return errorExpression()
	} else {
		arg = bargs[0]
	}
	if isError(arg) {
		return errorExpression()
	}

	agg, ok := as.Bind(arg.Type())
	if !ok {
		b.reportNode(syntax.NoApplicableOverload, n, as.Name(), arg.Type())
		return errorExpression()
	}

	b.recordSymbol(n, as)
	for _, av := range qc.aggregates {
		if av.Aggregate == as && ExpressionsEqual(av.Argument, arg) {
			return &BoundValueSlotExpression{
				ValueSlot: av.Output,
			}
		}
	}

	slot := b.vsf.New(as.Name(), agg.ReturnType())
	qc.aggregates = append(qc.aggregates, BoundAggregatedValue{
		Output:       slot,
		Aggregate:    as,
		Aggregatable: agg,
		Argument:     arg,
	})
	return &BoundValueSlotExpression{
		ValueSlot: slot,
	}
}

func (b *binder) bindUnaryOperator(n syntax.Node, op sql.UnaryOp,
	operand BoundExpression) BoundExpression {

	if isError(operand) {
		return errorExpression()
	}
	if sql.IsNull(operand.Type()) {
		if op == sql.LogicalNotOp {
			return &BoundLiteralExpression{ValueType: sql.BooleanType}
		}
		return &BoundLiteralExpression{ValueType: sql.NullType}
	}

	or := ResolveUnaryOperator(op, operand.Type())
	switch or.Status() {
	case NoApplicableCandidate:
		b.reportNode(syntax.OperatorNotApplicable, n, op, operand.Type())
		return errorExpression()
	case Ambiguous:
		b.reportNode(syntax.AmbiguousOperator, n, op, operand.Type())
		return errorExpression()
	}

	return &BoundUnaryExpression{
		Result:     or,
		Expression: convert(operand, or.Selected().ParameterType(0)),
	}
}

func (b *binder) bindBinaryOperator(n syntax.Node, op sql.BinaryOp,
	left, right BoundExpression) BoundExpression {

	if isError(left) || isError(right) {
		return errorExpression()
	}
	if sql.IsNull(left.Type()) && sql.IsNull(right.Type()) {
		if op.IsComparison() {
			return &BoundLiteralExpression{ValueType: sql.BooleanType}
		} else if op == sql.LogicalAndOp || op == sql.LogicalOrOp {
			left = convert(left, sql.BooleanType)
			right = convert(right, sql.BooleanType)
		} else {
			return &BoundLiteralExpression{ValueType: sql.NullType}
		}
	}

	or := ResolveBinaryOperator(op, left.Type(), right.Type())
	switch or.Status() {
	case NoApplicableCandidate:
		b.reportNode(syntax.OperatorNotApplicable, n, op,
			fmt.Sprintf("%s and %s", left.Type(), right.Type()))
		return errorExpression()
	case Ambiguous:
		b.reportNode(syntax.AmbiguousOperator, n, op,
			fmt.Sprintf("%s and %s", left.Type(), right.Type()))
		return errorExpression()
	}

	sig := or.Selected()
	return &BoundBinaryExpression{
		Left:   convert(left, sig.ParameterType(0)),
		Result: or,
		Right:  convert(right, sig.ParameterType(1)),
	}
}

// negate applies NOT when not is present.
func (b *binder) negate(n syntax.Node, not *syntax.Token, be BoundExpression) BoundExpression {
	if not == nil {
		return be
	}
	return b.bindUnaryOperator(n, sql.LogicalNotOp, be)
}

func (b *binder) bindBetween(be *syntax.BetweenExpression) BoundExpression {
	// e BETWEEN lower AND upper is e >= lower AND e <= upper
	expr := b.bindExpression(be.Expression)
	lower := b.bindExpression(be.Lower)
	upper := b.bindExpression(be.Upper)

	ge := b.bindBinaryOperator(be, sql.GreaterOrEqualOp, expr, lower)
	le := b.bindBinaryOperator(be, sql.LessOrEqualOp, expr, upper)
	return b.negate(be, be.Not, b.bindBinaryOperator(be, sql.LogicalAndOp, ge, le))
}

func (b *binder) bindIn(ie *syntax.InExpression) BoundExpression {
	// e IN (a, b, ...) is e = a OR e = b OR ...
	expr := b.bindExpression(ie.Expression)
	var in BoundExpression
	for _, arg := range ie.Arguments.Items {
		eq := b.bindBinaryOperator(arg, sql.EqualOp, expr, b.bindExpression(arg))
		if in == nil {
			in = eq
		} else {
			in = b.bindBinaryOperator(ie, sql.LogicalOrOp, in, eq)
		}
	}
	return b.negate(ie, ie.Not, in)
}

func (b *binder) bindAllAny(n syntax.Node, left BoundExpression, op sql.BinaryOp,
	isAll bool, q syntax.Query) BoundExpression {

	bq := b.bindQueryIn(q, b.scope)
	if len(bq.OutputColumns) != 1 {
		b.reportNode(syntax.TooManyExpressionsInSelectListOfSubquery, q)
		return errorExpression()
	}
	slot := bq.OutputColumns[0].ValueSlot()
	if isError(left) || sql.IsUnknown(slot.Type()) {
		return errorExpression()
	}

	or := ResolveBinaryOperator(op, left.Type(), slot.Type())
	switch or.Status() {
	case NoApplicableCandidate:
		b.reportNode(syntax.OperatorNotApplicable, n, op,
			fmt.Sprintf("%s and %s", left.Type(), slot.Type()))
		return errorExpression()
	case Ambiguous:
		b.reportNode(syntax.AmbiguousOperator, n, op,
			fmt.Sprintf("%s and %s", left.Type(), slot.Type()))
		return errorExpression()
	}

	sig := or.Selected()
	rel := bq.Relation
	if slot.Type() != sig.ParameterType(1) {
		cs := b.vsf.New(slot.Name(), sig.ParameterType(1))
		rel = &BoundComputeRelation{
			Input: rel,
			DefinedValues: []BoundComputedValue{
				{
					Expression: convert(&BoundValueSlotExpression{ValueSlot: slot},
						sig.ParameterType(1)),
					ValueSlot: cs,
				},
			},
		}
		slot = cs
	}

	return &BoundAllAnySubselect{
		Left:     convert(left, sig.ParameterType(0)),
		Relation: rel,
		Value:    slot,
		Result:   or,
		IsAll:    isAll,
	}
}

func (b *binder) bindCast(ce *syntax.CastExpression) BoundExpression {
	expr := b.bindExpression(ce.Expression)
	if ce.TypeName.IsMissing() {
		return errorExpression()
	}

	typ, ok := sql.LookupType(ce.TypeName.ValueText())
	if !ok {
		b.reportToken(syntax.UndeclaredType, ce.TypeName, ce.TypeName.ValueText())
		return errorExpression()
	}
	if isError(expr) {
		return errorExpression()
	}

	if !sql.Classify(expr.Type(), typ).Exists() {
		b.reportNode(syntax.CannotConvert, ce, expr.Type(), typ)
		return errorExpression()
	}
	return convert(expr, typ)
}

// commonType returns the first of typs to which all of the others implicitly convert.
// NULL does not take part in choosing the type. nodes are the syntax for each of typs, or
// nil where there is none, and are used to report an error.
func (b *binder) commonType(n syntax.Node, nodes []syntax.Node,
	typs []sql.Type) (sql.Type, bool) {

	var types []sql.Type
	var first []int
	for tdx, typ := range typs {
		if sql.IsUnknown(typ) {
			return nil, false
		} else if sql.IsNull(typ) {
			continue
		}

		found := false
		for _, t := range types {
			if t == typ {
				found = true
				break
			}
		}
		if !found {
			types = append(types, typ)
			first = append(first, tdx)
		}
	}
	if len(types) == 0 {
		return sql.NullType, true
	}

	for _, ct := range types {
		all := true
		for _, t := range types {
			if !sql.Classify(t, ct).IsImplicit() {
				all = false
				break
			}
		}
		if all {
			return ct, true
		}
	}

	if len(types) == 2 {
		var at syntax.Node
		if nodes != nil {
			at = nodes[first[1]]
		}
		if at == nil {
			at = n
		}
		b.reportNode(syntax.CannotConvert, at, types[1], types[0])
	} else {
		b.reportNode(syntax.NoCommonType, n, typesString(types))
	}
	return nil, false
}

// bindBooleanCondition binds a CASE WHEN condition; it must be boolean.
func (b *binder) bindBooleanCondition(e syntax.Expression) BoundExpression {
	cond := b.bindExpression(e)
	if isError(cond) {
		return cond
	}
	if sql.IsNull(cond.Type()) {
		return convert(cond, sql.BooleanType)
	}
	if cond.Type() != sql.BooleanType {
		b.reportNode(syntax.CannotConvert, e, cond.Type(), sql.BooleanType)
		return errorExpression()
	}
	return cond
}

func (b *binder) bindCase(ce *syntax.CaseExpression) BoundExpression {
	var input BoundExpression
	if ce.Input != nil {
		input = b.bindExpression(ce.Input)
	}

	var conds []BoundExpression
	var nodes []syntax.Node
	var results []BoundExpression
	for _, lbl := range ce.Labels {
		var cond BoundExpression
		if input != nil {
			cond = b.bindBinaryOperator(lbl.WhenExpression, sql.EqualOp, input,
				b.bindExpression(lbl.WhenExpression))
		} else {
			cond = b.bindBooleanCondition(lbl.WhenExpression)
		}
		conds = append(conds, cond)
		nodes = append(nodes, lbl.ThenExpression)
		results = append(results, b.bindExpression(lbl.ThenExpression))
	}

	var els BoundExpression
	if ce.ElseExpression != nil {
		els = b.bindExpression(ce.ElseExpression)
		nodes = append(nodes, ce.ElseExpression)
	} else {
		els = &BoundLiteralExpression{ValueType: sql.NullType}
		nodes = append(nodes, nil)
	}

	typ, ok := b.commonType(ce, nodes, argumentTypes(append(results, els)))
	if !ok {
		return errorExpression()
	}
	bce := &BoundCaseExpression{
		Else:     convert(els, typ),
		CaseType: typ,
	}
	for cdx, cond := range conds {
		if isError(cond) {
			return errorExpression()
		}
		bce.Labels = append(bce.Labels, &BoundCaseLabel{
			Condition: convert(cond, sql.BooleanType),
			Result:    convert(results[cdx], typ),
		})
	}
	return bce
}

func (b *binder) bindCoalesce(ce *syntax.CoalesceExpression) BoundExpression {
	// COALESCE(a, b, c) is CASE WHEN a IS NOT NULL THEN a WHEN b IS NOT NULL THEN b
	// ELSE c END
	var nodes []syntax.Node
	var args []BoundExpression
	for _, arg := range ce.Arguments.Items {
		nodes = append(nodes, arg)
		args = append(args, b.bindExpression(arg))
	}

	typ, ok := b.commonType(ce, nodes, argumentTypes(args))
	if !ok {
		return errorExpression()
	}
	if len(args) == 1 {
		return convert(args[0], typ)
	}

	bce := &BoundCaseExpression{
		Else:     convert(args[len(args)-1], typ),
		CaseType: typ,
	}
	for _, arg := range args[:len(args)-1] {
		bce.Labels = append(bce.Labels, &BoundCaseLabel{
			Condition: &BoundIsNullExpression{
				Expression: arg,
				Negated:    true,
			},
			Result: convert(arg, typ),
		})
	}
	return bce
}

func (b *binder) bindNullIf(nie *syntax.NullIfExpression) BoundExpression {
	// NULLIF(a, b) is CASE WHEN a = b THEN NULL ELSE a END
	left := b.bindExpression(nie.Left)
	right := b.bindExpression(nie.Right)
	typ, ok := b.commonType(nie, []syntax.Node{nie.Left, nie.Right},
		[]sql.Type{left.Type(), right.Type()})
	if !ok {
		return errorExpression()
	}

	left = convert(left, typ)
	cond := b.bindBinaryOperator(nie, sql.EqualOp, left, convert(right, typ))
	if isError(cond) {
		return errorExpression()
	}
	return &BoundCaseExpression{
		Labels: []*BoundCaseLabel{
			{
				Condition: convert(cond, sql.BooleanType),
				Result:    &BoundLiteralExpression{ValueType: typ},
			},
		},
		Else:     left,
		CaseType: typ,
	}
}
