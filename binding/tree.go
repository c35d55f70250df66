package binding

import (
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/syntax"
)

// BoundQuery is a bound query: a relation and the columns of its select list, in order.
type BoundQuery struct {
	Relation      BoundRelation
	OutputColumns []*symbols.QueryColumnInstanceSymbol
}

// BoundTree is the result of binding a syntax tree. Exactly one of Query and Expression
// is set, depending on whether the syntax tree is a query or an expression.
type BoundTree struct {
	Syntax      *syntax.SyntaxTree
	Query       *BoundQuery
	Expression  BoundExpression
	Diagnostics []syntax.Diagnostic

	symbols      map[syntax.Node]symbols.Symbol
	declarations map[syntax.Node]symbols.Symbol
	expressions  map[syntax.Node]BoundExpression
	queries      map[syntax.Node]*BoundQuery
}

// GetSymbol returns the symbol a name, property access, method or function invocation,
// or table reference resolved to, or nil.
func (bt *BoundTree) GetSymbol(n syntax.Node) symbols.Symbol {
	return bt.symbols[n]
}

// GetDeclaredSymbol returns the symbol declared by a table reference, common table
// expression, or select column, or nil.
func (bt *BoundTree) GetDeclaredSymbol(n syntax.Node) symbols.Symbol {
	return bt.declarations[n]
}

func (bt *BoundTree) GetExpression(n syntax.Node) BoundExpression {
	return bt.expressions[n]
}

func (bt *BoundTree) GetQuery(n syntax.Node) *BoundQuery {
	return bt.queries[n]
}

// GetExpressionType returns the type of a bound expression, or nil if n is not an
// expression or did not bind.
func (bt *BoundTree) GetExpressionType(n syntax.Node) sql.Type {
	if be, ok := bt.expressions[n]; ok {
		return be.Type()
	}
	return nil
}
