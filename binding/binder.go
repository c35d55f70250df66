package binding

import (
	"strings"

	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/syntax"
)

type clause int

const (
	selectClause clause = iota
	whereClause
	onClause
	groupByClause
	havingClause
	orderByClause
)

// queryContext is the state of one query block: the aggregates found in its select list,
// HAVING, and ORDER BY, and the clause currently being bound.
type queryContext struct {
	parent     *queryContext
	scope      *symbols.Scope
	clause     clause
	aggregate  *symbols.AggregateSymbol
	aggregates []BoundAggregatedValue
}

type binder struct {
	tree        *syntax.SyntaxTree
	dc          *symbols.DataContext
	vsf         *symbols.ValueSlotFactory
	bt          *BoundTree
	diagnostics []syntax.Diagnostic
	quiet       int

	scope *symbols.Scope
	query *queryContext

	// Column references outside of aggregate arguments, used to report
	// ColumnNotInGroupByClause at each offending reference.
	slotRefs map[*symbols.ValueSlot][]syntax.Node
	reported map[syntax.Node]struct{}

	// Each common table expression is bound again, in the scope it was declared in, for
	// every reference to it.
	cteScopes map[*symbols.CommonTableExpressionSymbol]*symbols.Scope
}

// Bind binds a syntax tree against a catalog. Binding never fails: constructs which do
// not bind are reported as diagnostics and replaced by error expressions and empty
// relations so that the rest of the tree is still bound.
func Bind(dc *symbols.DataContext, tree *syntax.SyntaxTree) *BoundTree {
	bt := &BoundTree{
		Syntax:       tree,
		symbols:      map[syntax.Node]symbols.Symbol{},
		declarations: map[syntax.Node]symbols.Symbol{},
		expressions:  map[syntax.Node]BoundExpression{},
		queries:      map[syntax.Node]*BoundQuery{},
	}
	b := &binder{
		tree:      tree,
		dc:        dc,
		vsf:       &symbols.ValueSlotFactory{},
		bt:        bt,
		scope:     symbols.NewRootScope(dc),
		slotRefs:  map[*symbols.ValueSlot][]syntax.Node{},
		reported:  map[syntax.Node]struct{}{},
		cteScopes: map[*symbols.CommonTableExpressionSymbol]*symbols.Scope{},
	}

	switch root := tree.Root().Root.(type) {
	case syntax.Query:
		bt.Query = b.bindQueryIn(root, b.scope)
	case syntax.Expression:
		bt.Expression = b.bindExpression(root)
	}

	syntax.SortDiagnostics(b.diagnostics)
	bt.Diagnostics = b.diagnostics
	return bt
}

func (b *binder) report(id syntax.DiagnosticID, span syntax.Span, args ...interface{}) {
	if b.quiet > 0 {
		return
	}
	b.diagnostics = append(b.diagnostics, syntax.NewDiagnostic(id, span, args...))
}

func (b *binder) reportNode(id syntax.DiagnosticID, n syntax.Node, args ...interface{}) {
	b.report(id, syntax.NodeSpan(n), args...)
}

func (b *binder) reportToken(id syntax.DiagnosticID, t *syntax.Token, args ...interface{}) {
	b.report(id, t.Span(), args...)
}

func (b *binder) recordSymbol(n syntax.Node, sym symbols.Symbol) {
	if b.quiet == 0 {
		b.bt.symbols[n] = sym
	}
}

func (b *binder) recordDeclaration(n syntax.Node, sym symbols.Symbol) {
	if b.quiet == 0 {
		b.bt.declarations[n] = sym
	}
}

func (b *binder) recordExpression(n syntax.Node, be BoundExpression) {
	if b.quiet == 0 {
		b.bt.expressions[n] = be
	}
}

func (b *binder) recordQuery(n syntax.Node, bq *BoundQuery) {
	if b.quiet == 0 {
		b.bt.queries[n] = bq
	}
}

func (b *binder) recordSlotRef(slot *symbols.ValueSlot, n syntax.Node) {
	if b.quiet == 0 && (b.query == nil || b.query.aggregate == nil) {
		b.slotRefs[slot] = append(b.slotRefs[slot], n)
	}
}

// text returns the source text of n, for use in diagnostics.
func (b *binder) text(n syntax.Node) string {
	return syntax.Text(n, b.tree.Text())
}

// lookupName finds the column instances and table instances named name in the nearest
// scope which has any.
func (b *binder) lookupName(name string) ([]*symbols.TableColumnInstanceSymbol,
	[]*symbols.TableInstanceSymbol) {

	for s := b.scope; s != nil; s = s.Parent() {
		var cols []*symbols.TableColumnInstanceSymbol
		var tables []*symbols.TableInstanceSymbol
		for _, tis := range s.TableInstances() {
			cols = append(cols, tis.LookupColumnInstance(name)...)
			if strings.EqualFold(tis.Name(), name) {
				tables = append(tables, tis)
			}
		}
		if len(cols) > 0 || len(tables) > 0 {
			return cols, tables
		}
	}
	return nil, nil
}

func symbolsString(syms []symbols.Symbol) string {
	var buf strings.Builder
	for sdx, sym := range syms {
		if sdx > 0 {
			buf.WriteString(" and ")
		}
		buf.WriteString(sym.String())
	}
	return buf.String()
}

func errorExpression() BoundExpression {
	return &BoundErrorExpression{}
}

func isError(be BoundExpression) bool {
	return sql.IsUnknown(be.Type())
}

// convert converts be to typ; the conversion must exist.
func convert(be BoundExpression, typ sql.Type) BoundExpression {
	if be.Type() == typ {
		return be
	}
	if ble, ok := be.(*BoundLiteralExpression); ok && ble.Value == nil {
		return &BoundLiteralExpression{
			ValueType: typ,
		}
	}
	return &BoundConversionExpression{
		Expression: be,
		Conversion: sql.Classify(be.Type(), typ),
		TargetType: typ,
	}
}

func (b *binder) withClause(c clause, fn func()) {
	prev := b.query.clause
	b.query.clause = c
	fn()
	b.query.clause = prev
}
