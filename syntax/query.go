package syntax

type CompilationUnit struct {
	Root      Node
	EndOfFile *Token
}

type SelectQuery struct {
	Select  *SelectClause
	From    *FromClause
	Where   *WhereClause
	GroupBy *GroupByClause
	Having  *HavingClause
}

type SelectClause struct {
	Select   *Token
	Distinct *Token // DISTINCT or ALL
	Top      *TopClause
	Columns  SeparatedList[SelectColumn]
}

// TopClause is `TOP n [WITH TIES]`; With and Ties are nil when neither is present and
// missing tokens when only one of them is.
type TopClause struct {
	Top   *Token
	Value *Token
	With  *Token
	Ties  *Token
}

type ExpressionSelectColumn struct {
	Expression Expression
	Alias      *Alias
}

// WildcardSelectColumn is `*` or `table.*`.
type WildcardSelectColumn struct {
	TableName *Token
	Dot       *Token
	Asterisk  *Token
}

type Alias struct {
	As         *Token
	Identifier *Token
}

type FromClause struct {
	From            *Token
	TableReferences SeparatedList[TableReference]
}

type NamedTableReference struct {
	TableName *Token
	Alias     *Alias
}

type DerivedTableReference struct {
	LeftParen  *Token
	Query      Query
	RightParen *Token
	As         *Token
	Name       *Token
}

type ParenthesizedTableReference struct {
	LeftParen      *Token
	TableReference TableReference
	RightParen     *Token
}

type CrossJoinedTableReference struct {
	Left  TableReference
	Cross *Token
	Join  *Token
	Right TableReference
}

type InnerJoinedTableReference struct {
	Left      TableReference
	Inner     *Token
	Join      *Token
	Right     TableReference
	On        *Token
	Condition Expression
}

// OuterJoinedTableReference is a LEFT, RIGHT, or FULL [OUTER] JOIN; TypeKeyword is one of
// LeftKeyword, RightKeyword, or FullKeyword.
type OuterJoinedTableReference struct {
	Left        TableReference
	TypeKeyword *Token
	Outer       *Token
	Join        *Token
	Right       TableReference
	On          *Token
	Condition   Expression
}

type WhereClause struct {
	Where     *Token
	Predicate Expression
}

type GroupByClause struct {
	Group   *Token
	By      *Token
	Columns SeparatedList[*GroupByColumn]
}

type GroupByColumn struct {
	Expression Expression
}

type HavingClause struct {
	Having    *Token
	Predicate Expression
}

type OrderedQuery struct {
	Query   Query
	Order   *Token
	By      *Token
	Columns SeparatedList[*OrderByColumn]
}

type OrderByColumn struct {
	ColumnSelector Expression
	Modifier       *Token // ASC or DESC
}

type UnionQuery struct {
	Left  Query
	Union *Token
	All   *Token
	Right Query
}

type IntersectQuery struct {
	Left      Query
	Intersect *Token
	Right     Query
}

type ExceptQuery struct {
	Left   Query
	Except *Token
	Right  Query
}

type ParenthesizedQuery struct {
	LeftParen  *Token
	Query      Query
	RightParen *Token
}

type CommonTableExpressionQuery struct {
	With                   *Token
	CommonTableExpressions SeparatedList[*CommonTableExpression]
	Query                  Query
}

type CommonTableExpression struct {
	Name       *Token
	ColumnList *CommonTableExpressionColumnNameList
	As         *Token
	LeftParen  *Token
	Query      Query
	RightParen *Token
}

type CommonTableExpressionColumnNameList struct {
	LeftParen   *Token
	ColumnNames SeparatedList[*CommonTableExpressionColumnName]
	RightParen  *Token
}

type CommonTableExpressionColumnName struct {
	Identifier *Token
}

func (*CompilationUnit) Kind() Kind                     { return CompilationUnitKind }
func (*SelectQuery) Kind() Kind                         { return SelectQueryKind }
func (*SelectClause) Kind() Kind                        { return SelectClauseKind }
func (*TopClause) Kind() Kind                           { return TopClauseKind }
func (*ExpressionSelectColumn) Kind() Kind              { return ExpressionSelectColumnKind }
func (*WildcardSelectColumn) Kind() Kind                { return WildcardSelectColumnKind }
func (*Alias) Kind() Kind                               { return AliasKind }
func (*FromClause) Kind() Kind                          { return FromClauseKind }
func (*NamedTableReference) Kind() Kind                 { return NamedTableReferenceKind }
func (*DerivedTableReference) Kind() Kind               { return DerivedTableReferenceKind }
func (*ParenthesizedTableReference) Kind() Kind         { return ParenthesizedTableReferenceKind }
func (*CrossJoinedTableReference) Kind() Kind           { return CrossJoinedTableReferenceKind }
func (*InnerJoinedTableReference) Kind() Kind           { return InnerJoinedTableReferenceKind }
func (*OuterJoinedTableReference) Kind() Kind           { return OuterJoinedTableReferenceKind }
func (*WhereClause) Kind() Kind                         { return WhereClauseKind }
func (*GroupByClause) Kind() Kind                       { return GroupByClauseKind }
func (*GroupByColumn) Kind() Kind                       { return GroupByColumnKind }
func (*HavingClause) Kind() Kind                        { return HavingClauseKind }
func (*OrderedQuery) Kind() Kind                        { return OrderedQueryKind }
func (*OrderByColumn) Kind() Kind                       { return OrderByColumnKind }
func (*UnionQuery) Kind() Kind                          { return UnionQueryKind }
func (*IntersectQuery) Kind() Kind                      { return IntersectQueryKind }
func (*ExceptQuery) Kind() Kind                         { return ExceptQueryKind }
func (*ParenthesizedQuery) Kind() Kind                  { return ParenthesizedQueryKind }
func (*CommonTableExpressionQuery) Kind() Kind          { return CommonTableExpressionQueryKind }
func (*CommonTableExpression) Kind() Kind               { return CommonTableExpressionKind }
func (*CommonTableExpressionColumnNameList) Kind() Kind { return CommonTableExpressionColumnNameListKind }
func (*CommonTableExpressionColumnName) Kind() Kind     { return CommonTableExpressionColumnNameKind }

func (cu *CompilationUnit) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(cu.Root).token(cu.EndOfFile)
}

func (sq *SelectQuery) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(sq.Select).node(sq.From).node(sq.Where).node(sq.GroupBy).
		node(sq.Having)
}

func (sc *SelectClause) ChildNodesAndTokens() []NodeOrToken {
	cl := childList{}.token(sc.Select).token(sc.Distinct).node(sc.Top)
	return sc.Columns.children(cl)
}

func (tc *TopClause) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(tc.Top).token(tc.Value).token(tc.With).token(tc.Ties)
}

func (esc *ExpressionSelectColumn) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(esc.Expression).node(esc.Alias)
}

func (wsc *WildcardSelectColumn) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(wsc.TableName).token(wsc.Dot).token(wsc.Asterisk)
}

func (a *Alias) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(a.As).token(a.Identifier)
}

func (fc *FromClause) ChildNodesAndTokens() []NodeOrToken {
	return fc.TableReferences.children(childList{}.token(fc.From))
}

func (ntr *NamedTableReference) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(ntr.TableName).node(ntr.Alias)
}

func (dtr *DerivedTableReference) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(dtr.LeftParen).node(dtr.Query).token(dtr.RightParen).
		token(dtr.As).token(dtr.Name)
}

func (ptr *ParenthesizedTableReference) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(ptr.LeftParen).node(ptr.TableReference).token(ptr.RightParen)
}

func (cjtr *CrossJoinedTableReference) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(cjtr.Left).token(cjtr.Cross).token(cjtr.Join).node(cjtr.Right)
}

func (ijtr *InnerJoinedTableReference) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(ijtr.Left).token(ijtr.Inner).token(ijtr.Join).
		node(ijtr.Right).token(ijtr.On).node(ijtr.Condition)
}

func (ojtr *OuterJoinedTableReference) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(ojtr.Left).token(ojtr.TypeKeyword).token(ojtr.Outer).
		token(ojtr.Join).node(ojtr.Right).token(ojtr.On).node(ojtr.Condition)
}

func (wc *WhereClause) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(wc.Where).node(wc.Predicate)
}

func (gbc *GroupByClause) ChildNodesAndTokens() []NodeOrToken {
	return gbc.Columns.children(childList{}.token(gbc.Group).token(gbc.By))
}

func (gbc *GroupByColumn) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(gbc.Expression)
}

func (hc *HavingClause) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(hc.Having).node(hc.Predicate)
}

func (oq *OrderedQuery) ChildNodesAndTokens() []NodeOrToken {
	return oq.Columns.children(childList{}.node(oq.Query).token(oq.Order).token(oq.By))
}

func (obc *OrderByColumn) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(obc.ColumnSelector).token(obc.Modifier)
}

func (uq *UnionQuery) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(uq.Left).token(uq.Union).token(uq.All).node(uq.Right)
}

func (iq *IntersectQuery) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(iq.Left).token(iq.Intersect).node(iq.Right)
}

func (eq *ExceptQuery) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(eq.Left).token(eq.Except).node(eq.Right)
}

func (pq *ParenthesizedQuery) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(pq.LeftParen).node(pq.Query).token(pq.RightParen)
}

func (cteq *CommonTableExpressionQuery) ChildNodesAndTokens() []NodeOrToken {
	cl := cteq.CommonTableExpressions.children(childList{}.token(cteq.With))
	return childList(cl).node(cteq.Query)
}

func (cte *CommonTableExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(cte.Name).node(cte.ColumnList).token(cte.As).
		token(cte.LeftParen).node(cte.Query).token(cte.RightParen)
}

func (cl *CommonTableExpressionColumnNameList) ChildNodesAndTokens() []NodeOrToken {
	children := cl.ColumnNames.children(childList{}.token(cl.LeftParen))
	return childList(children).token(cl.RightParen)
}

func (cn *CommonTableExpressionColumnName) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(cn.Identifier)
}

func (*CompilationUnit) node()                     {}
func (*SelectQuery) node()                         {}
func (*SelectClause) node()                        {}
func (*TopClause) node()                           {}
func (*ExpressionSelectColumn) node()              {}
func (*WildcardSelectColumn) node()                {}
func (*Alias) node()                               {}
func (*FromClause) node()                          {}
func (*NamedTableReference) node()                 {}
func (*DerivedTableReference) node()               {}
func (*ParenthesizedTableReference) node()         {}
func (*CrossJoinedTableReference) node()           {}
func (*InnerJoinedTableReference) node()           {}
func (*OuterJoinedTableReference) node()           {}
func (*WhereClause) node()                         {}
func (*GroupByClause) node()                       {}
func (*GroupByColumn) node()                       {}
func (*HavingClause) node()                        {}
func (*OrderedQuery) node()                        {}
func (*OrderByColumn) node()                       {}
func (*UnionQuery) node()                          {}
func (*IntersectQuery) node()                      {}
func (*ExceptQuery) node()                         {}
func (*ParenthesizedQuery) node()                  {}
func (*CommonTableExpressionQuery) node()          {}
func (*CommonTableExpression) node()               {}
func (*CommonTableExpressionColumnNameList) node() {}
func (*CommonTableExpressionColumnName) node()     {}

func (*SelectQuery) query()                {}
func (*OrderedQuery) query()               {}
func (*UnionQuery) query()                 {}
func (*IntersectQuery) query()             {}
func (*ExceptQuery) query()                {}
func (*ParenthesizedQuery) query()         {}
func (*CommonTableExpressionQuery) query() {}

func (*NamedTableReference) tableReference()         {}
func (*DerivedTableReference) tableReference()       {}
func (*ParenthesizedTableReference) tableReference() {}
func (*CrossJoinedTableReference) tableReference()   {}
func (*InnerJoinedTableReference) tableReference()   {}
func (*OuterJoinedTableReference) tableReference()   {}

func (*ExpressionSelectColumn) selectColumn() {}
func (*WildcardSelectColumn) selectColumn()   {}
