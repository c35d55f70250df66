package binding

import (
	"fmt"
	"strings"

	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/syntax"
)

// bindQueryIn binds q as a new query block whose scope is a child of scope.
func (b *binder) bindQueryIn(q syntax.Query, scope *symbols.Scope) *BoundQuery {
	prevScope, prevQuery := b.scope, b.query
	b.scope = symbols.NewScope(scope)
	b.query = &queryContext{
		parent: prevQuery,
		scope:  b.scope,
	}
	bq := b.bindQuery(q)
	b.scope, b.query = prevScope, prevQuery

	b.recordQuery(q, bq)
	return bq
}

func (b *binder) bindQuery(q syntax.Query) *BoundQuery {
	switch q := q.(type) {
	case *syntax.SelectQuery:
		return b.bindSelect(q, nil)
	case *syntax.OrderedQuery:
		if sq, ok := q.Query.(*syntax.SelectQuery); ok {
			return b.bindSelect(sq, q)
		}
		return b.bindOrderedSetQuery(q)
	case *syntax.UnionQuery:
		return b.bindUnion(q)
	case *syntax.IntersectQuery:
		return b.bindIntersectOrExcept(q, true, q.Left, q.Right, q.Intersect)
	case *syntax.ExceptQuery:
		return b.bindIntersectOrExcept(q, false, q.Left, q.Right, q.Except)
	case *syntax.ParenthesizedQuery:
		return b.bindQueryIn(q.Query, b.scope)
	case *syntax.CommonTableExpressionQuery:
		return b.bindCommonTableExpressions(q)
	default:
		panic(fmt.Sprintf("unexpected type for syntax.Query: %T: %v", q, q))
	}
}

type selectColumn struct {
	name   string
	expr   BoundExpression
	node   syntax.Node
	decl   *syntax.ExpressionSelectColumn
	hidden bool
	slot   *symbols.ValueSlot
}

type orderByItem struct {
	column     int
	descending bool
}

func (b *binder) bindSelect(sq *syntax.SelectQuery, oq *syntax.OrderedQuery) *BoundQuery {
	var rel BoundRelation
	if sq.From != nil {
		rel = b.bindFrom(sq.From)
	} else {
		rel = &BoundConstantRelation{}
	}
	fromSlots := rel.GetOutputValues()

	if sq.Where != nil {
		var cond BoundExpression
		b.withClause(whereClause, func() {
			cond = b.bindExpression(sq.Where.Predicate)
		})
		if b.checkBoolean(cond, sq.Where.Predicate, syntax.WhereClauseMustEvaluateToBool) {
			rel = &BoundFilterRelation{
				Input:     rel,
				Condition: convert(cond, sql.BooleanType),
			}
		}
	}

	var groups []BoundExpression
	if sq.GroupBy != nil {
		b.withClause(groupByClause, func() {
			for _, gbc := range sq.GroupBy.Columns.Items {
				groups = append(groups, b.bindExpression(gbc.Expression))
			}
		})
	}

	cols := b.bindSelectColumns(sq)

	var having BoundExpression
	if sq.Having != nil {
		b.withClause(havingClause, func() {
			having = b.bindExpression(sq.Having.Predicate)
		})
		if !b.checkBoolean(having, sq.Having.Predicate, syntax.HavingClauseMustEvaluateToBool) {
			having = nil
		} else {
			having = convert(having, sql.BooleanType)
		}
	}

	distinct := sq.Select.Distinct != nil && sq.Select.Distinct.Kind() == syntax.DistinctKeyword
	var orderBy []orderByItem
	if oq != nil {
		orderBy, cols = b.bindSelectOrderBy(oq, cols, distinct)
	}

	if sq.GroupBy != nil || sq.Having != nil || len(b.query.aggregates) > 0 {
		var havingNode syntax.Node
		if sq.Having != nil {
			havingNode = sq.Having.Predicate
		}
		rel = b.bindAggregation(rel, fromSlots, groups, cols, &having, havingNode)
	}
	if having != nil {
		rel = &BoundFilterRelation{
			Input:     rel,
			Condition: having,
		}
	}

	compute := &BoundComputeRelation{
		Input: rel,
	}
	hidden := false
	for cdx := range cols {
		col := &cols[cdx]
		col.slot = b.vsf.New(col.name, col.expr.Type())
		compute.DefinedValues = append(compute.DefinedValues, BoundComputedValue{
			Expression: col.expr,
			ValueSlot:  col.slot,
		})
		if col.hidden {
			hidden = true
		}
	}
	rel = compute

	var sorted []BoundSortedValue
	for _, obi := range orderBy {
		sorted = append(sorted, BoundSortedValue{
			ValueSlot:  cols[obi.column].slot,
			Descending: obi.descending,
		})
	}
	if oq != nil || distinct {
		values := sorted
		if distinct {
			for _, col := range cols {
				found := false
				for _, sv := range sorted {
					if sv.ValueSlot == col.slot {
						found = true
						break
					}
				}
				if !found {
					values = append(values, BoundSortedValue{ValueSlot: col.slot})
				}
			}
		}
		rel = &BoundSortRelation{
			IsDistinct:   distinct,
			Input:        rel,
			SortedValues: values,
		}
	}

	if sq.Select.Top != nil {
		if limit, withTies, ok := b.bindTop(sq.Select.Top, oq != nil); ok {
			btr := &BoundTopRelation{
				Input: rel,
				Limit: limit,
			}
			if withTies {
				btr.TieEntries = sorted
			}
			rel = btr
		}
	}

	bq := &BoundQuery{}
	var outputs []*symbols.ValueSlot
	for _, col := range cols {
		if col.hidden {
			continue
		}
		qcis := symbols.NewQueryColumnInstanceSymbol(col.name, col.slot)
		bq.OutputColumns = append(bq.OutputColumns, qcis)
		outputs = append(outputs, col.slot)
		if col.decl != nil {
			b.recordDeclaration(col.decl, qcis)
		}
	}
	if hidden {
		rel = &BoundProjectRelation{
			Input:   rel,
			Outputs: outputs,
		}
	}
	bq.Relation = rel
	return bq
}

func (b *binder) bindSelectColumns(sq *syntax.SelectQuery) []selectColumn {
	var cols []selectColumn
	b.withClause(selectClause, func() {
		for _, sc := range sq.Select.Columns.Items {
			switch sc := sc.(type) {
			case *syntax.ExpressionSelectColumn:
				expr := b.bindExpression(sc.Expression)
				cols = append(cols, selectColumn{
					name: selectColumnName(sc),
					expr: expr,
					node: sc.Expression,
					decl: sc,
				})
			case *syntax.WildcardSelectColumn:
				cols = append(cols, b.bindWildcard(sq, sc)...)
			default:
				panic(fmt.Sprintf("unexpected type for syntax.SelectColumn: %T: %v", sc, sc))
			}
		}
	})
	return cols
}

func selectColumnName(esc *syntax.ExpressionSelectColumn) string {
	if esc.Alias != nil {
		if esc.Alias.Identifier.IsMissing() {
			return ""
		}
		return esc.Alias.Identifier.ValueText()
	}

	switch e := esc.Expression.(type) {
	case *syntax.NameExpression:
		if !e.Name.IsMissing() {
			return e.Name.ValueText()
		}
	case *syntax.PropertyAccessExpression:
		if !e.Name.IsMissing() {
			return e.Name.ValueText()
		}
	}
	return ""
}

func (b *binder) bindWildcard(sq *syntax.SelectQuery,
	wsc *syntax.WildcardSelectColumn) []selectColumn {

	var tables []*symbols.TableInstanceSymbol
	if wsc.TableName == nil {
		if sq.From == nil {
			b.reportNode(syntax.MustSpecifyTableToSelectFrom, wsc)
			return nil
		}
		tables = b.scope.TableInstances()
	} else {
		if wsc.TableName.IsMissing() {
			return nil
		}
		name := wsc.TableName.ValueText()
		for _, tis := range b.scope.TableInstances() {
			if strings.EqualFold(tis.Name(), name) {
				tables = append(tables, tis)
				break
			}
		}
		if len(tables) == 0 {
			b.reportToken(syntax.UndeclaredTable, wsc.TableName, name)
			return nil
		}
		b.recordSymbol(wsc, tables[0])
	}

	var cols []selectColumn
	for _, tis := range tables {
		for _, ci := range tis.ColumnInstances() {
			b.recordSlotRef(ci.ValueSlot(), wsc)
			cols = append(cols, selectColumn{
				name: ci.Name(),
				expr: &BoundValueSlotExpression{ValueSlot: ci.ValueSlot()},
				node: wsc,
			})
		}
	}
	return cols
}

// orderByColumn resolves an ORDER BY item which is a column position or one of names.
// It returns false if the item is neither; a position which is out of range is reported
// and returns -1.
func (b *binder) orderByColumn(sel syntax.Expression, names []string) (int, bool) {
	switch sel := sel.(type) {
	case *syntax.LiteralExpression:
		var pos int64
		switch v := sel.Token.Value().(type) {
		case int32:
			pos = int64(v)
		case int64:
			pos = v
		default:
			return 0, false
		}
		if pos < 1 || pos > int64(len(names)) {
			b.reportNode(syntax.OrderByColumnPositionIsOutOfRange, sel, b.text(sel))
			return -1, true
		}
		return int(pos - 1), true
	case *syntax.NameExpression:
		if sel.Name.IsMissing() {
			return 0, false
		}
		name := sel.Name.ValueText()
		for ndx, n := range names {
			if n != "" && strings.EqualFold(n, name) {
				return ndx, true
			}
		}
	}
	return 0, false
}

func orderByDescending(obc *syntax.OrderByColumn) bool {
	return obc.Modifier != nil && obc.Modifier.Kind() == syntax.DescKeyword
}

func (b *binder) bindSelectOrderBy(oq *syntax.OrderedQuery, cols []selectColumn,
	distinct bool) ([]orderByItem, []selectColumn) {

	// Only aliases are matched by name; any other name is bound as an expression.
	var aliases []string
	for _, col := range cols {
		if col.decl != nil && col.decl.Alias != nil {
			aliases = append(aliases, col.name)
		} else {
			aliases = append(aliases, "")
		}
	}

	var items []orderByItem
	for _, obc := range oq.Columns.Items {
		desc := orderByDescending(obc)
		if cdx, ok := b.orderByColumn(obc.ColumnSelector, aliases); ok {
			if cdx >= 0 {
				items = append(items, orderByItem{column: cdx, descending: desc})
			}
			continue
		}

		var expr BoundExpression
		b.withClause(orderByClause, func() {
			expr = b.bindExpression(obc.ColumnSelector)
		})
		found := -1
		for cdx, col := range cols {
			if ExpressionsEqual(col.expr, expr) {
				found = cdx
				break
			}
		}
		if found >= 0 {
			items = append(items, orderByItem{column: found, descending: desc})
		} else if distinct {
			b.reportNode(syntax.OrderByItemsMustBeInSelectListIfDistinctSpecified, obc)
		} else {
			cols = append(cols, selectColumn{
				expr:   expr,
				node:   obc.ColumnSelector,
				hidden: true,
			})
			items = append(items, orderByItem{column: len(cols) - 1, descending: desc})
		}
	}
	return items, cols
}

// bindTop returns the limit of a TOP clause and whether it is WITH TIES; it returns false
// if there is no usable limit.
func (b *binder) bindTop(tc *syntax.TopClause, hasOrderBy bool) (int64, bool, bool) {
	withTies := tc.With != nil && tc.Ties != nil && !tc.With.IsMissing() &&
		!tc.Ties.IsMissing()
	if withTies && !hasOrderBy {
		b.reportNode(syntax.TopWithTiesRequiresOrderBy, tc)
	}

	if tc.Value.IsMissing() {
		return 0, false, false
	}
	var limit int64
	switch v := tc.Value.Value().(type) {
	case int32:
		limit = int64(v)
	case int64:
		limit = v
	default:
		b.reportToken(syntax.InvalidInteger, tc.Value, tc.Value.Text())
		return 0, false, false
	}
	return limit, withTies && hasOrderBy, true
}

func containsSlot(slots []*symbols.ValueSlot, slot *symbols.ValueSlot) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

// bindAggregation groups rel by groups and computes the aggregates of the query block.
// The select columns and having are rewritten to read the group and aggregate values;
// any remaining reference to a value of the FROM clause is reported.
func (b *binder) bindAggregation(rel BoundRelation, fromSlots []*symbols.ValueSlot,
	groups []BoundExpression, cols []selectColumn, having *BoundExpression,
	havingNode syntax.Node) BoundRelation {

	qc := b.query

	var groupExprs []BoundExpression
	for _, g := range groups {
		if isError(g) {
			continue
		}
		dup := false
		for _, ge := range groupExprs {
			if ExpressionsEqual(g, ge) {
				dup = true
				break
			}
		}
		if !dup {
			groupExprs = append(groupExprs, g)
		}
	}

	computed := false
	for _, g := range groupExprs {
		if _, ok := g.(*BoundValueSlotExpression); !ok {
			computed = true
			break
		}
	}

	aggs := qc.aggregates
	groupSlots := make([]*symbols.ValueSlot, 0, len(groupExprs))
	if computed {
		// Group expressions and aggregate arguments are computed into value slots before
		// aggregating.
		compute := &BoundComputeRelation{
			Input: rel,
		}
		for _, g := range groupExprs {
			slot := b.vsf.New("", g.Type())
			compute.DefinedValues = append(compute.DefinedValues, BoundComputedValue{
				Expression: g,
				ValueSlot:  slot,
			})
			groupSlots = append(groupSlots, slot)
		}
		aggs = make([]BoundAggregatedValue, 0, len(qc.aggregates))
		for _, av := range qc.aggregates {
			slot := b.vsf.New("", av.Argument.Type())
			compute.DefinedValues = append(compute.DefinedValues, BoundComputedValue{
				Expression: av.Argument,
				ValueSlot:  slot,
			})
			aggs = append(aggs, av.Update(&BoundValueSlotExpression{ValueSlot: slot}))
		}
		rel = compute
	} else {
		for _, g := range groupExprs {
			groupSlots = append(groupSlots, g.(*BoundValueSlotExpression).ValueSlot)
		}
	}

	rel = &BoundAggregateRelation{
		Input:      rel,
		Groups:     groupSlots,
		Aggregates: aggs,
	}

	var bad []*symbols.ValueSlot
	rw := Rewriter{
		Before: func(be BoundExpression) (BoundExpression, bool) {
			for gdx, g := range groupExprs {
				if ExpressionsEqual(be, g) {
					return &BoundValueSlotExpression{ValueSlot: groupSlots[gdx]}, true
				}
			}

			switch be := be.(type) {
			case *BoundValueSlotExpression:
				if containsSlot(fromSlots, be.ValueSlot) {
					bad = append(bad, be.ValueSlot)
				}
			case *BoundRowReferenceExpression:
				for _, ci := range be.Instance.ColumnInstances() {
					if containsSlot(fromSlots, ci.ValueSlot()) {
						bad = append(bad, ci.ValueSlot())
					}
				}
			}
			return be, false
		},
	}

	for cdx := range cols {
		bad = bad[:0]
		cols[cdx].expr = rw.RewriteExpression(cols[cdx].expr)
		b.reportNotGrouped(cols[cdx].node, bad)
	}
	if *having != nil {
		bad = bad[:0]
		*having = rw.RewriteExpression(*having)
		b.reportNotGrouped(havingNode, bad)
	}
	return rel
}

// reportNotGrouped reports each reference within n to one of slots.
func (b *binder) reportNotGrouped(n syntax.Node, slots []*symbols.ValueSlot) {
	span := syntax.NodeSpan(n)
	for _, slot := range slots {
		for _, ref := range b.slotRefs[slot] {
			rs := syntax.NodeSpan(ref)
			if rs.Start < span.Start || rs.End() > span.End() {
				continue
			}
			if _, ok := b.reported[ref]; ok {
				continue
			}
			b.reported[ref] = struct{}{}
			b.reportNode(syntax.ColumnNotInGroupByClause, ref, b.text(ref))
		}
	}
}

func (b *binder) bindOrderedSetQuery(oq *syntax.OrderedQuery) *BoundQuery {
	bq := b.bindQueryIn(oq.Query, b.scope)

	var names []string
	for _, qc := range bq.OutputColumns {
		names = append(names, qc.Name())
	}
	var sorted []BoundSortedValue
	for _, obc := range oq.Columns.Items {
		cdx, ok := b.orderByColumn(obc.ColumnSelector, names)
		if !ok {
			b.reportNode(syntax.OrderByItemsMustBeInSelectListIfUnionSpecified, obc)
			continue
		} else if cdx < 0 {
			continue
		}
		sorted = append(sorted, BoundSortedValue{
			ValueSlot:  bq.OutputColumns[cdx].ValueSlot(),
			Descending: orderByDescending(obc),
		})
	}

	return &BoundQuery{
		Relation: &BoundSortRelation{
			Input:        bq.Relation,
			SortedValues: sorted,
		},
		OutputColumns: bq.OutputColumns,
	}
}

// unifyQueries converts the columns of each of bqs to the common type of the column
// across all of them. It returns the output slots of each query after conversion.
func (b *binder) unifyQueries(n syntax.Node, op string, opToken *syntax.Token,
	bqs []*BoundQuery) ([]BoundRelation, [][]*symbols.ValueSlot, bool) {

	cnt := len(bqs[0].OutputColumns)
	for _, bq := range bqs[1:] {
		if len(bq.OutputColumns) != cnt {
			b.reportToken(syntax.DifferentExpressionCountInBinaryQuery, opToken, op)
			return nil, nil, false
		}
	}

	types := make([]sql.Type, cnt)
	for cdx := 0; cdx < cnt; cdx++ {
		var typs []sql.Type
		for _, bq := range bqs {
			typs = append(typs, bq.OutputColumns[cdx].Type())
		}
		typ, ok := b.commonType(n, nil, typs)
		if !ok {
			return nil, nil, false
		}
		types[cdx] = typ
	}

	var rels []BoundRelation
	var slots [][]*symbols.ValueSlot
	for _, bq := range bqs {
		var outputs []*symbols.ValueSlot
		same := true
		for cdx, qc := range bq.OutputColumns {
			outputs = append(outputs, qc.ValueSlot())
			if qc.Type() != types[cdx] {
				same = false
			}
		}
		if same {
			rels = append(rels, bq.Relation)
			slots = append(slots, outputs)
			continue
		}

		compute := &BoundComputeRelation{
			Input: bq.Relation,
		}
		for cdx, slot := range outputs {
			cs := b.vsf.New(slot.Name(), types[cdx])
			compute.DefinedValues = append(compute.DefinedValues, BoundComputedValue{
				Expression: convert(&BoundValueSlotExpression{ValueSlot: slot}, types[cdx]),
				ValueSlot:  cs,
			})
			outputs[cdx] = cs
		}
		rels = append(rels, compute)
		slots = append(slots, outputs)
	}
	return rels, slots, true
}

func (b *binder) bindUnion(uq *syntax.UnionQuery) *BoundQuery {
	all := uq.All != nil

	var sides []syntax.Query
	var flatten func(q syntax.Query)
	flatten = func(q syntax.Query) {
		if u, ok := q.(*syntax.UnionQuery); ok && (u.All != nil) == all {
			flatten(u.Left)
			flatten(u.Right)
		} else {
			sides = append(sides, q)
		}
	}
	flatten(uq)

	var bqs []*BoundQuery
	for _, side := range sides {
		bqs = append(bqs, b.bindQueryIn(side, b.scope))
	}
	rels, slots, ok := b.unifyQueries(uq, "UNION", uq.Union, bqs)
	if !ok {
		return bqs[0]
	}

	bur := &BoundUnionRelation{
		IsUnionAll: all,
		Inputs:     rels,
	}
	bq := &BoundQuery{}
	for cdx, qc := range bqs[0].OutputColumns {
		uv := BoundUnifiedValue{
			ValueSlot: b.vsf.New(qc.Name(), slots[0][cdx].Type()),
		}
		for sdx := range slots {
			uv.InputValueSlots = append(uv.InputValueSlots, slots[sdx][cdx])
		}
		bur.DefinedValues = append(bur.DefinedValues, uv)
		bq.OutputColumns = append(bq.OutputColumns,
			symbols.NewQueryColumnInstanceSymbol(qc.Name(), uv.ValueSlot))
	}

	if all {
		bq.Relation = bur
	} else {
		var sorted []BoundSortedValue
		for _, uv := range bur.DefinedValues {
			sorted = append(sorted, BoundSortedValue{ValueSlot: uv.ValueSlot})
		}
		bq.Relation = &BoundSortRelation{
			IsDistinct:   true,
			Input:        bur,
			SortedValues: sorted,
		}
	}
	return bq
}

func (b *binder) bindIntersectOrExcept(q syntax.Query, isIntersect bool, left,
	right syntax.Query, opToken *syntax.Token) *BoundQuery {

	op := "EXCEPT"
	if isIntersect {
		op = "INTERSECT"
	}

	bqs := []*BoundQuery{
		b.bindQueryIn(left, b.scope),
		b.bindQueryIn(right, b.scope),
	}
	rels, slots, ok := b.unifyQueries(q, op, opToken, bqs)
	if !ok {
		return bqs[0]
	}

	bq := &BoundQuery{
		Relation: &BoundIntersectOrExceptRelation{
			IsIntersect: isIntersect,
			Left:        rels[0],
			Right:       rels[1],
		},
	}
	for cdx, qc := range bqs[0].OutputColumns {
		bq.OutputColumns = append(bq.OutputColumns,
			symbols.NewQueryColumnInstanceSymbol(qc.Name(), slots[0][cdx]))
	}
	return bq
}

func (b *binder) bindCommonTableExpressions(cteq *syntax.CommonTableExpressionQuery) *BoundQuery {
	scope := b.scope
	declared := map[string]struct{}{}
	for _, cte := range cteq.CommonTableExpressions.Items {
		if cte.Name.IsMissing() {
			continue
		}

		name := cte.Name.ValueText()
		bq := b.bindQueryIn(cte.Query, scope)

		var cols []*symbols.ColumnSymbol
		for cdx, qc := range bq.OutputColumns {
			colName := qc.Name()
			if cte.ColumnList != nil {
				names := cte.ColumnList.ColumnNames.Items
				if cdx < len(names) && !names[cdx].Identifier.IsMissing() {
					colName = names[cdx].Identifier.ValueText()
				}
			}
			cols = append(cols, symbols.NewColumnSymbol(colName, qc.Type(), cdx))
		}
		if cte.ColumnList != nil {
			specified := cte.ColumnList.ColumnNames.Len()
			if specified > len(bq.OutputColumns) {
				b.reportToken(syntax.CteHasFewerColumnsThanSpecified, cte.Name, name)
			} else if specified < len(bq.OutputColumns) {
				b.reportToken(syntax.CteHasMoreColumnsThanSpecified, cte.Name, name)
			}
		}

		key := strings.ToLower(name)
		if _, ok := declared[key]; ok {
			b.reportToken(syntax.SymbolAlreadyDeclared, cte.Name, name)
			continue
		}
		declared[key] = struct{}{}

		sym := symbols.NewCommonTableExpressionSymbol(name, cols, cte)
		next := symbols.NewScope(scope)
		next.Declare(sym)
		b.cteScopes[sym] = scope
		b.recordDeclaration(cte, sym)
		scope = next
	}

	return b.bindQueryIn(cteq.Query, scope)
}
