package syntax

// UnaryExpression is one of ComplementExpressionKind, IdentityExpressionKind,
// NegationExpressionKind, or LogicalNotExpressionKind.
type UnaryExpression struct {
	kind     Kind
	Operator *Token
	Operand  Expression
}

// BinaryExpression covers the arithmetic, bitwise, comparison, and logical operators; the
// kind follows from the operator token.
type BinaryExpression struct {
	kind     Kind
	Left     Expression
	Operator *Token
	Right    Expression
}

type LikeExpression struct {
	Left  Expression
	Not   *Token
	Like  *Token
	Right Expression
}

type SimilarToExpression struct {
	Left    Expression
	Not     *Token
	Similar *Token
	To      *Token
	Right   Expression
}

type ParenthesizedExpression struct {
	LeftParen  *Token
	Expression Expression
	RightParen *Token
}

type BetweenExpression struct {
	Expression Expression
	Not        *Token
	Between    *Token
	Lower      Expression
	And        *Token
	Upper      Expression
}

type IsNullExpression struct {
	Expression Expression
	Is         *Token
	Not        *Token
	Null       *Token
}

type CastExpression struct {
	Cast       *Token
	LeftParen  *Token
	Expression Expression
	As         *Token
	TypeName   *Token
	RightParen *Token
}

type CaseExpression struct {
	Case           *Token
	Input          Expression
	Labels         []*CaseLabel
	Else           *Token
	ElseExpression Expression
	End            *Token
}

type CaseLabel struct {
	When           *Token
	WhenExpression Expression
	Then           *Token
	ThenExpression Expression
}

type CoalesceExpression struct {
	Coalesce   *Token
	LeftParen  *Token
	Arguments  SeparatedList[Expression]
	RightParen *Token
}

type NullIfExpression struct {
	NullIf     *Token
	LeftParen  *Token
	Left       Expression
	Comma      *Token
	Right      Expression
	RightParen *Token
}

type InExpression struct {
	Expression Expression
	Not        *Token
	In         *Token
	LeftParen  *Token
	Arguments  SeparatedList[Expression]
	RightParen *Token
}

type InQueryExpression struct {
	Expression Expression
	Not        *Token
	In         *Token
	LeftParen  *Token
	Query      Query
	RightParen *Token
}

// LiteralExpression is a number, string, TRUE, FALSE, or NULL.
type LiteralExpression struct {
	Token *Token
}

type VariableExpression struct {
	At   *Token
	Name *Token
}

type NameExpression struct {
	Name *Token
}

type PropertyAccessExpression struct {
	Target Expression
	Dot    *Token
	Name   *Token
}

type CountAllExpression struct {
	Name       *Token
	LeftParen  *Token
	Asterisk   *Token
	RightParen *Token
}

type FunctionInvocationExpression struct {
	Name      *Token
	Arguments *ArgumentList
}

type MethodInvocationExpression struct {
	Target    Expression
	Dot       *Token
	Name      *Token
	Arguments *ArgumentList
}

type ArgumentList struct {
	LeftParen  *Token
	Arguments  SeparatedList[Expression]
	RightParen *Token
}

type SingleRowSubselect struct {
	LeftParen  *Token
	Query      Query
	RightParen *Token
}

type ExistsSubselect struct {
	Exists     *Token
	LeftParen  *Token
	Query      Query
	RightParen *Token
}

// AllAnySubselect is `left op ALL (query)` or `left op ANY|SOME (query)`.
type AllAnySubselect struct {
	Left       Expression
	Operator   *Token
	Keyword    *Token
	LeftParen  *Token
	Query      Query
	RightParen *Token
}

func (ue *UnaryExpression) Kind() Kind           { return ue.kind }
func (be *BinaryExpression) Kind() Kind          { return be.kind }
func (*LikeExpression) Kind() Kind               { return LikeExpressionKind }
func (*SimilarToExpression) Kind() Kind          { return SimilarToExpressionKind }
func (*ParenthesizedExpression) Kind() Kind      { return ParenthesizedExpressionKind }
func (*BetweenExpression) Kind() Kind            { return BetweenExpressionKind }
func (*IsNullExpression) Kind() Kind             { return IsNullExpressionKind }
func (*CastExpression) Kind() Kind               { return CastExpressionKind }
func (*CaseExpression) Kind() Kind               { return CaseExpressionKind }
func (*CaseLabel) Kind() Kind                    { return CaseLabelKind }
func (*CoalesceExpression) Kind() Kind           { return CoalesceExpressionKind }
func (*NullIfExpression) Kind() Kind             { return NullIfExpressionKind }
func (*InExpression) Kind() Kind                 { return InExpressionKind }
func (*InQueryExpression) Kind() Kind            { return InQueryExpressionKind }
func (*LiteralExpression) Kind() Kind            { return LiteralExpressionKind }
func (*VariableExpression) Kind() Kind           { return VariableExpressionKind }
func (*NameExpression) Kind() Kind               { return NameExpressionKind }
func (*PropertyAccessExpression) Kind() Kind     { return PropertyAccessExpressionKind }
func (*CountAllExpression) Kind() Kind           { return CountAllExpressionKind }
func (*FunctionInvocationExpression) Kind() Kind { return FunctionInvocationExpressionKind }
func (*MethodInvocationExpression) Kind() Kind   { return MethodInvocationExpressionKind }
func (*ArgumentList) Kind() Kind                 { return ArgumentListKind }
func (*SingleRowSubselect) Kind() Kind           { return SingleRowSubselectKind }
func (*ExistsSubselect) Kind() Kind              { return ExistsSubselectKind }
func (*AllAnySubselect) Kind() Kind              { return AllAnySubselectKind }

func (ue *UnaryExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(ue.Operator).node(ue.Operand)
}

func (be *BinaryExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(be.Left).token(be.Operator).node(be.Right)
}

func (le *LikeExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(le.Left).token(le.Not).token(le.Like).node(le.Right)
}

func (se *SimilarToExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(se.Left).token(se.Not).token(se.Similar).token(se.To).
		node(se.Right)
}

func (pe *ParenthesizedExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(pe.LeftParen).node(pe.Expression).token(pe.RightParen)
}

func (be *BetweenExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(be.Expression).token(be.Not).token(be.Between).node(be.Lower).
		token(be.And).node(be.Upper)
}

func (ine *IsNullExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(ine.Expression).token(ine.Is).token(ine.Not).token(ine.Null)
}

func (ce *CastExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(ce.Cast).token(ce.LeftParen).node(ce.Expression).token(ce.As).
		token(ce.TypeName).token(ce.RightParen)
}

func (ce *CaseExpression) ChildNodesAndTokens() []NodeOrToken {
	cl := childList{}.token(ce.Case).node(ce.Input)
	for _, lbl := range ce.Labels {
		cl = cl.node(lbl)
	}
	return cl.token(ce.Else).node(ce.ElseExpression).token(ce.End)
}

func (cl *CaseLabel) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(cl.When).node(cl.WhenExpression).token(cl.Then).
		node(cl.ThenExpression)
}

func (ce *CoalesceExpression) ChildNodesAndTokens() []NodeOrToken {
	cl := childList{}.token(ce.Coalesce).token(ce.LeftParen)
	return childList(ce.Arguments.children(cl)).token(ce.RightParen)
}

func (nie *NullIfExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(nie.NullIf).token(nie.LeftParen).node(nie.Left).
		token(nie.Comma).node(nie.Right).token(nie.RightParen)
}

func (ie *InExpression) ChildNodesAndTokens() []NodeOrToken {
	cl := childList{}.node(ie.Expression).token(ie.Not).token(ie.In).token(ie.LeftParen)
	return childList(ie.Arguments.children(cl)).token(ie.RightParen)
}

func (iqe *InQueryExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(iqe.Expression).token(iqe.Not).token(iqe.In).
		token(iqe.LeftParen).node(iqe.Query).token(iqe.RightParen)
}

func (le *LiteralExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(le.Token)
}

func (ve *VariableExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(ve.At).token(ve.Name)
}

func (ne *NameExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(ne.Name)
}

func (pae *PropertyAccessExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(pae.Target).token(pae.Dot).token(pae.Name)
}

func (cae *CountAllExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(cae.Name).token(cae.LeftParen).token(cae.Asterisk).
		token(cae.RightParen)
}

func (fie *FunctionInvocationExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(fie.Name).node(fie.Arguments)
}

func (mie *MethodInvocationExpression) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(mie.Target).token(mie.Dot).token(mie.Name).node(mie.Arguments)
}

func (al *ArgumentList) ChildNodesAndTokens() []NodeOrToken {
	cl := childList{}.token(al.LeftParen)
	return childList(al.Arguments.children(cl)).token(al.RightParen)
}

func (srs *SingleRowSubselect) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(srs.LeftParen).node(srs.Query).token(srs.RightParen)
}

func (es *ExistsSubselect) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.token(es.Exists).token(es.LeftParen).node(es.Query).
		token(es.RightParen)
}

func (aas *AllAnySubselect) ChildNodesAndTokens() []NodeOrToken {
	return childList{}.node(aas.Left).token(aas.Operator).token(aas.Keyword).
		token(aas.LeftParen).node(aas.Query).token(aas.RightParen)
}

func (*UnaryExpression) node()              {}
func (*BinaryExpression) node()             {}
func (*LikeExpression) node()               {}
func (*SimilarToExpression) node()          {}
func (*ParenthesizedExpression) node()      {}
func (*BetweenExpression) node()            {}
func (*IsNullExpression) node()             {}
func (*CastExpression) node()               {}
func (*CaseExpression) node()               {}
func (*CaseLabel) node()                    {}
func (*CoalesceExpression) node()           {}
func (*NullIfExpression) node()             {}
func (*InExpression) node()                 {}
func (*InQueryExpression) node()            {}
func (*LiteralExpression) node()            {}
func (*VariableExpression) node()           {}
func (*NameExpression) node()               {}
func (*PropertyAccessExpression) node()     {}
func (*CountAllExpression) node()           {}
func (*FunctionInvocationExpression) node() {}
func (*MethodInvocationExpression) node()   {}
func (*ArgumentList) node()                 {}
func (*SingleRowSubselect) node()           {}
func (*ExistsSubselect) node()              {}
func (*AllAnySubselect) node()              {}

func (*UnaryExpression) expression()              {}
func (*BinaryExpression) expression()             {}
func (*LikeExpression) expression()               {}
func (*SimilarToExpression) expression()          {}
func (*ParenthesizedExpression) expression()      {}
func (*BetweenExpression) expression()            {}
func (*IsNullExpression) expression()             {}
func (*CastExpression) expression()               {}
func (*CaseExpression) expression()               {}
func (*CoalesceExpression) expression()           {}
func (*NullIfExpression) expression()             {}
func (*InExpression) expression()                 {}
func (*InQueryExpression) expression()            {}
func (*LiteralExpression) expression()            {}
func (*VariableExpression) expression()           {}
func (*NameExpression) expression()               {}
func (*PropertyAccessExpression) expression()     {}
func (*CountAllExpression) expression()           {}
func (*FunctionInvocationExpression) expression() {}
func (*MethodInvocationExpression) expression()   {}
func (*SingleRowSubselect) expression()           {}
func (*ExistsSubselect) expression()              {}
func (*AllAnySubselect) expression()              {}
