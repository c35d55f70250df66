package binding

import (
	"fmt"

	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/syntax"
)

// bindFrom cross joins the table references of a FROM clause, left to right.
func (b *binder) bindFrom(fc *syntax.FromClause) BoundRelation {
	var rel BoundRelation
	for _, tr := range fc.TableReferences.Items {
		trel := b.bindTableReference(tr)
		if rel == nil {
			rel = trel
		} else {
			rel = &BoundJoinRelation{
				JoinType: CrossJoin,
				Left:     rel,
				Right:    trel,
			}
		}
	}
	if rel == nil {
		return &BoundConstantRelation{}
	}
	return rel
}

func (b *binder) bindTableReference(tr syntax.TableReference) BoundRelation {
	switch tr := tr.(type) {
	case *syntax.NamedTableReference:
		return b.bindNamedTable(tr)
	case *syntax.DerivedTableReference:
		return b.bindDerivedTable(tr)
	case *syntax.ParenthesizedTableReference:
		return b.bindTableReference(tr.TableReference)
	case *syntax.CrossJoinedTableReference:
		return &BoundJoinRelation{
			JoinType: CrossJoin,
			Left:     b.bindTableReference(tr.Left),
			Right:    b.bindTableReference(tr.Right),
		}
	case *syntax.InnerJoinedTableReference:
		left := b.bindTableReference(tr.Left)
		right := b.bindTableReference(tr.Right)
		return &BoundJoinRelation{
			JoinType:  InnerJoin,
			Left:      left,
			Right:     right,
			Condition: b.bindOnCondition(tr.Condition),
		}
	case *syntax.OuterJoinedTableReference:
		var jt JoinType
		switch tr.TypeKeyword.Kind() {
		case syntax.LeftKeyword:
			jt = LeftOuterJoin
		case syntax.RightKeyword:
			jt = RightOuterJoin
		case syntax.FullKeyword:
			jt = FullOuterJoin
		default:
			panic(fmt.Sprintf("unexpected outer join keyword: %s", tr.TypeKeyword.Kind()))
		}
		left := b.bindTableReference(tr.Left)
		right := b.bindTableReference(tr.Right)
		return &BoundJoinRelation{
			JoinType:  jt,
			Left:      left,
			Right:     right,
			Condition: b.bindOnCondition(tr.Condition),
		}
	default:
		panic(fmt.Sprintf("unexpected type for syntax.TableReference: %T: %v", tr, tr))
	}
}

func (b *binder) bindOnCondition(e syntax.Expression) BoundExpression {
	var cond BoundExpression
	b.withClause(onClause, func() {
		cond = b.bindExpression(e)
	})
	if !b.checkBoolean(cond, e, syntax.OnClauseMustEvaluateToBool) {
		return &BoundLiteralExpression{Value: true, ValueType: sql.BooleanType}
	}
	return convert(cond, sql.BooleanType)
}

// checkBoolean reports id unless cond is boolean or NULL. It returns false if cond can
// not be used as a condition.
func (b *binder) checkBoolean(cond BoundExpression, n syntax.Node,
	id syntax.DiagnosticID) bool {

	typ := cond.Type()
	if sql.IsUnknown(typ) {
		return false
	} else if typ != sql.BooleanType && !sql.IsNull(typ) {
		b.reportNode(id, n, typ)
		return false
	}
	return true
}

// declareInstance declares a table instance in the scope of the current query block.
func (b *binder) declareInstance(tr syntax.TableReference, name *syntax.Token,
	tis *symbols.TableInstanceSymbol) {

	if err := b.scope.Declare(tis); err != nil {
		b.reportToken(syntax.SymbolAlreadyDeclared, name, tis.Name())
		return
	}
	b.recordDeclaration(tr, tis)
}

func (b *binder) bindNamedTable(ntr *syntax.NamedTableReference) BoundRelation {
	if ntr.TableName.IsMissing() {
		return &BoundConstantRelation{}
	}

	tblName := ntr.TableName.ValueText()
	name, nameToken := tblName, ntr.TableName
	if ntr.Alias != nil && !ntr.Alias.Identifier.IsMissing() {
		name, nameToken = ntr.Alias.Identifier.ValueText(), ntr.Alias.Identifier
	}

	ts := b.scope.LookupTable(tblName)
	if ts == nil {
		b.reportToken(syntax.UndeclaredTable, ntr.TableName, tblName)
		return &BoundConstantRelation{}
	}
	b.recordSymbol(ntr, ts)

	var rel BoundRelation
	var tis *symbols.TableInstanceSymbol
	switch ts := ts.(type) {
	case *symbols.SchemaTableSymbol:
		btr := &BoundTableRelation{}
		tis = symbols.NewTableInstanceSymbol(name, ts, ntr,
			func(col *symbols.ColumnSymbol) *symbols.ValueSlot {
				slot := b.vsf.New(col.Name(), col.Type())
				btr.DefinedValues = append(btr.DefinedValues, slot)
				return slot
			})
		btr.Instance = tis
		rel = btr
	case *symbols.CommonTableExpressionSymbol:
		// Each reference to a common table expression gets its own relation and value
		// slots; diagnostics were reported when it was declared.
		b.quiet += 1
		bq := b.bindQueryIn(ts.Syntax().Query, b.cteScopes[ts])
		b.quiet -= 1

		tis = symbols.NewTableInstanceSymbol(name, ts, ntr,
			func(col *symbols.ColumnSymbol) *symbols.ValueSlot {
				return bq.OutputColumns[col.Ordinal()].ValueSlot()
			})
		rel = bq.Relation
	default:
		panic(fmt.Sprintf("unexpected type for symbols.TableSymbol: %T: %v", ts, ts))
	}

	b.declareInstance(ntr, nameToken, tis)
	return rel
}

func (b *binder) bindDerivedTable(dtr *syntax.DerivedTableReference) BoundRelation {
	// Derived tables do not see the other table references of the same FROM clause.
	bq := b.bindQueryIn(dtr.Query, b.scope.Parent())
	if dtr.Name.IsMissing() {
		return bq.Relation
	}

	var cols []*symbols.ColumnSymbol
	for cdx, qc := range bq.OutputColumns {
		cols = append(cols, symbols.NewColumnSymbol(qc.Name(), qc.Type(), cdx))
	}
	dts := symbols.NewDerivedTableSymbol(dtr.Name.ValueText(), cols)
	tis := symbols.NewTableInstanceSymbol(dtr.Name.ValueText(), dts, dtr,
		func(col *symbols.ColumnSymbol) *symbols.ValueSlot {
			return bq.OutputColumns[col.Ordinal()].ValueSlot()
		})
	b.declareInstance(dtr, dtr.Name, tis)
	return bq.Relation
}
