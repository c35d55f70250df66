package syntax

import (
	"fmt"
)

type operator struct {
	kind       Kind
	precedence int
}

const (
	logicalOrPrecedence  = 1
	logicalAndPrecedence = 2
	logicalNotPrecedence = 3
	comparePrecedence    = 4
	unaryPrecedence      = 12
)

var binaryOperators = map[Kind]operator{
	OrKeyword:              {LogicalOrExpressionKind, logicalOrPrecedence},
	AndKeyword:             {LogicalAndExpressionKind, logicalAndPrecedence},
	EqualsToken:            {EqualExpressionKind, comparePrecedence},
	ExclamationEqualsToken: {NotEqualExpressionKind, comparePrecedence},
	LessGreaterToken:       {NotEqualExpressionKind, comparePrecedence},
	LessToken:              {LessExpressionKind, comparePrecedence},
	LessEqualToken:         {LessOrEqualExpressionKind, comparePrecedence},
	GreaterToken:           {GreaterExpressionKind, comparePrecedence},
	GreaterEqualToken:      {GreaterOrEqualExpressionKind, comparePrecedence},
	BarToken:               {BitwiseOrExpressionKind, 5},
	CaretToken:             {ExclusiveOrExpressionKind, 6},
	AmpersandToken:         {BitwiseAndExpressionKind, 7},
	LessLessToken:          {LeftShiftExpressionKind, 8},
	GreaterGreaterToken:    {RightShiftExpressionKind, 8},
	PlusToken:              {AddExpressionKind, 9},
	MinusToken:             {SubExpressionKind, 9},
	AsteriskToken:          {MultiplyExpressionKind, 10},
	SlashToken:             {DivideExpressionKind, 10},
	PercentToken:           {ModuloExpressionKind, 10},
	AsteriskAsteriskToken:  {PowerExpressionKind, 11},
}

var unaryOperators = map[Kind]operator{
	NotKeyword:      {LogicalNotExpressionKind, logicalNotPrecedence},
	BitwiseNotToken: {ComplementExpressionKind, unaryPrecedence},
	PlusToken:       {IdentityExpressionKind, unaryPrecedence},
	MinusToken:      {NegationExpressionKind, unaryPrecedence},
}

type parser struct {
	tokens      []*Token
	pos         int
	lastEnd     int
	reported    int
	diagnostics []Diagnostic
}

func newParser(text string) *parser {
	s := NewScanner(text)
	p := parser{reported: -1}
	for {
		t := s.Scan()
		p.tokens = append(p.tokens, t)
		if t.Kind() == EndOfFileToken {
			break
		}
	}
	p.diagnostics = append(p.diagnostics, s.Diagnostics()...)
	return &p
}

func (p *parser) current() *Token {
	return p.tokens[p.pos]
}

func (p *parser) peek(n int) *Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) scan() *Token {
	t := p.tokens[p.pos]
	if t.Kind() != EndOfFileToken {
		p.pos += 1
		p.lastEnd = t.Span().End()
	}
	return t
}

// skip turns the current token into skipped tokens trivia leading the next token.
func (p *parser) skip() {
	t := p.tokens[p.pos]
	if t.Kind() == EndOfFileToken {
		return
	}
	p.pos += 1
	next := p.tokens[p.pos]
	next.leading = append([]Trivia{
		{
			Kind:   SkippedTokensTrivia,
			Text:   t.FullText(),
			Span:   t.FullSpan(),
			Tokens: []*Token{t},
		},
	}, next.leading...)
}

func describeKind(k Kind) string {
	switch k {
	case EndOfFileToken:
		return "end of file"
	case IdentifierToken:
		return "identifier"
	case NumericLiteralToken:
		return "numeric literal"
	case StringLiteralToken:
		return "string literal"
	case BadToken:
		return "bad token"
	}
	if k.IsKeyword() {
		return k.Text()
	}
	return fmt.Sprintf("'%s'", k.Text())
}

func describeToken(t *Token) string {
	if t.Kind() == EndOfFileToken {
		return "end of file"
	}
	return t.Text()
}

// missing reports at most one TokenExpected per token.
func (p *parser) missing(kind Kind) *Token {
	t := p.current()
	if p.reported != p.pos {
		p.reported = p.pos
		p.diagnostics = append(p.diagnostics,
			NewDiagnostic(TokenExpected, t.Span(), describeToken(t), describeKind(kind)))
	}
	return &Token{
		kind:    kind,
		span:    Span{Start: p.lastEnd},
		missing: true,
	}
}

// expect returns the current token if it has the kind and otherwise a missing token.
func (p *parser) expect(kind Kind) *Token {
	if p.current().Kind() == kind {
		return p.scan()
	}
	return p.missing(kind)
}

// maybe returns the current token if it has the kind and otherwise nil.
func (p *parser) maybe(kind Kind) *Token {
	if p.current().Kind() == kind {
		return p.scan()
	}
	return nil
}

func (p *parser) expectEOF() *Token {
	if p.current().Kind() != EndOfFileToken {
		p.missing(EndOfFileToken)
		for p.current().Kind() != EndOfFileToken {
			p.skip()
		}
	}
	return p.scan()
}

func isQueryStart(k Kind) bool {
	return k == SelectKeyword || k == WithKeyword
}

func (p *parser) parseQuery() Query {
	// WITH cte [, ...] query
	if p.current().Kind() == WithKeyword {
		cteq := &CommonTableExpressionQuery{
			With: p.scan(),
		}
		for {
			cteq.CommonTableExpressions.Items = append(cteq.CommonTableExpressions.Items,
				p.parseCommonTableExpression())
			comma := p.maybe(CommaToken)
			if comma == nil {
				break
			}
			cteq.CommonTableExpressions.Separators = append(
				cteq.CommonTableExpressions.Separators, comma)
		}
		cteq.Query = p.parseOrderedQuery()
		return cteq
	}

	return p.parseOrderedQuery()
}

func (p *parser) parseCommonTableExpression() *CommonTableExpression {
	// name [( column [, ...] )] AS ( query )
	cte := &CommonTableExpression{
		Name: p.expect(IdentifierToken),
	}
	if p.current().Kind() == LeftParenthesisToken {
		cl := &CommonTableExpressionColumnNameList{
			LeftParen: p.scan(),
		}
		for {
			cl.ColumnNames.Items = append(cl.ColumnNames.Items,
				&CommonTableExpressionColumnName{Identifier: p.expect(IdentifierToken)})
			comma := p.maybe(CommaToken)
			if comma == nil {
				break
			}
			cl.ColumnNames.Separators = append(cl.ColumnNames.Separators, comma)
		}
		cl.RightParen = p.expect(RightParenthesisToken)
		cte.ColumnList = cl
	}
	cte.As = p.expect(AsKeyword)
	cte.LeftParen = p.expect(LeftParenthesisToken)
	cte.Query = p.parseQuery()
	cte.RightParen = p.expect(RightParenthesisToken)
	return cte
}

func (p *parser) parseOrderedQuery() Query {
	// query [ORDER BY expr [ASC | DESC] [, ...]]
	q := p.parseUnionOrExceptQuery()
	if p.current().Kind() != OrderKeyword {
		return q
	}

	oq := &OrderedQuery{
		Query: q,
		Order: p.scan(),
		By:    p.expect(ByKeyword),
	}
	for {
		obc := &OrderByColumn{
			ColumnSelector: p.parseExpression(),
		}
		if k := p.current().Kind(); k == AscKeyword || k == DescKeyword {
			obc.Modifier = p.scan()
		}
		oq.Columns.Items = append(oq.Columns.Items, obc)
		comma := p.maybe(CommaToken)
		if comma == nil {
			break
		}
		oq.Columns.Separators = append(oq.Columns.Separators, comma)
	}
	return oq
}

func (p *parser) parseUnionOrExceptQuery() Query {
	q := p.parseIntersectQuery()
	for {
		switch p.current().Kind() {
		case UnionKeyword:
			uq := &UnionQuery{
				Left:  q,
				Union: p.scan(),
			}
			uq.All = p.maybe(AllKeyword)
			uq.Right = p.parseIntersectQuery()
			q = uq
		case ExceptKeyword:
			eq := &ExceptQuery{
				Left:   q,
				Except: p.scan(),
			}
			eq.Right = p.parseIntersectQuery()
			q = eq
		default:
			return q
		}
	}
}

func (p *parser) parseIntersectQuery() Query {
	q := p.parsePrimaryQuery()
	for p.current().Kind() == IntersectKeyword {
		iq := &IntersectQuery{
			Left:      q,
			Intersect: p.scan(),
		}
		iq.Right = p.parsePrimaryQuery()
		q = iq
	}
	return q
}

func (p *parser) parsePrimaryQuery() Query {
	if p.current().Kind() == LeftParenthesisToken {
		// ( query )
		pq := &ParenthesizedQuery{
			LeftParen: p.scan(),
		}
		pq.Query = p.parseQuery()
		pq.RightParen = p.expect(RightParenthesisToken)
		return pq
	}

	return p.parseSelectQuery()
}

func (p *parser) parseSelectQuery() *SelectQuery {
	sq := &SelectQuery{
		Select: p.parseSelectClause(),
	}

	if p.current().Kind() == FromKeyword {
		// FROM table-reference [, ...]
		fc := &FromClause{
			From: p.scan(),
		}
		for {
			fc.TableReferences.Items = append(fc.TableReferences.Items,
				p.parseTableReference())
			comma := p.maybe(CommaToken)
			if comma == nil {
				break
			}
			fc.TableReferences.Separators = append(fc.TableReferences.Separators, comma)
		}
		sq.From = fc
	}

	if p.current().Kind() == WhereKeyword {
		sq.Where = &WhereClause{
			Where: p.scan(),
		}
		sq.Where.Predicate = p.parseExpression()
	}

	if p.current().Kind() == GroupKeyword {
		gbc := &GroupByClause{
			Group: p.scan(),
			By:    p.expect(ByKeyword),
		}
		for {
			gbc.Columns.Items = append(gbc.Columns.Items,
				&GroupByColumn{Expression: p.parseExpression()})
			comma := p.maybe(CommaToken)
			if comma == nil {
				break
			}
			gbc.Columns.Separators = append(gbc.Columns.Separators, comma)
		}
		sq.GroupBy = gbc
	}

	if p.current().Kind() == HavingKeyword {
		sq.Having = &HavingClause{
			Having: p.scan(),
		}
		sq.Having.Predicate = p.parseExpression()
	}

	return sq
}

func (p *parser) parseSelectClause() *SelectClause {
	// SELECT [DISTINCT | ALL] [TOP n [WITH TIES]] column [, ...]
	sc := &SelectClause{
		Select: p.expect(SelectKeyword),
	}
	if k := p.current().Kind(); k == DistinctKeyword || k == AllKeyword {
		sc.Distinct = p.scan()
	}

	if p.current().Kind() == TopKeyword {
		tc := &TopClause{
			Top:   p.scan(),
			Value: p.expect(NumericLiteralToken),
		}
		if k := p.current().Kind(); k == WithKeyword || k == TiesKeyword {
			tc.With = p.expect(WithKeyword)
			tc.Ties = p.expect(TiesKeyword)
		}
		sc.Top = tc
	}

	for {
		sc.Columns.Items = append(sc.Columns.Items, p.parseSelectColumn())
		comma := p.maybe(CommaToken)
		if comma == nil {
			break
		}
		sc.Columns.Separators = append(sc.Columns.Separators, comma)
	}
	return sc
}

func (p *parser) parseSelectColumn() SelectColumn {
	if p.current().Kind() == AsteriskToken {
		// *
		return &WildcardSelectColumn{
			Asterisk: p.scan(),
		}
	} else if p.current().Kind() == IdentifierToken && p.peek(1).Kind() == DotToken &&
		p.peek(2).Kind() == AsteriskToken {

		// table . *
		return &WildcardSelectColumn{
			TableName: p.scan(),
			Dot:       p.scan(),
			Asterisk:  p.scan(),
		}
	}

	// expr [[AS] alias]
	return &ExpressionSelectColumn{
		Expression: p.parseExpression(),
		Alias:      p.parseAlias(),
	}
}

func (p *parser) parseAlias() *Alias {
	if p.current().Kind() == AsKeyword {
		return &Alias{
			As:         p.scan(),
			Identifier: p.expect(IdentifierToken),
		}
	} else if p.current().Kind() == IdentifierToken {
		return &Alias{
			Identifier: p.scan(),
		}
	}
	return nil
}

func (p *parser) parseTableReference() TableReference {
	tr := p.parsePrimaryTableReference()
	for {
		switch p.current().Kind() {
		case CrossKeyword:
			// tr CROSS JOIN tr
			cjtr := &CrossJoinedTableReference{
				Left:  tr,
				Cross: p.scan(),
				Join:  p.expect(JoinKeyword),
			}
			cjtr.Right = p.parsePrimaryTableReference()
			tr = cjtr
		case InnerKeyword, JoinKeyword:
			// tr [INNER] JOIN tr ON expr
			ijtr := &InnerJoinedTableReference{
				Left:  tr,
				Inner: p.maybe(InnerKeyword),
				Join:  p.expect(JoinKeyword),
			}
			ijtr.Right = p.parseTableReference()
			ijtr.On = p.expect(OnKeyword)
			ijtr.Condition = p.parseExpression()
			tr = ijtr
		case LeftKeyword, RightKeyword, FullKeyword:
			// tr LEFT | RIGHT | FULL [OUTER] JOIN tr ON expr
			ojtr := &OuterJoinedTableReference{
				Left:        tr,
				TypeKeyword: p.scan(),
				Outer:       p.maybe(OuterKeyword),
				Join:        p.expect(JoinKeyword),
			}
			ojtr.Right = p.parseTableReference()
			ojtr.On = p.expect(OnKeyword)
			ojtr.Condition = p.parseExpression()
			tr = ojtr
		default:
			return tr
		}
	}
}

func (p *parser) parsePrimaryTableReference() TableReference {
	if p.current().Kind() == LeftParenthesisToken {
		if isQueryStart(p.peek(1).Kind()) {
			// ( query ) [AS] name
			dtr := &DerivedTableReference{
				LeftParen: p.scan(),
			}
			dtr.Query = p.parseQuery()
			dtr.RightParen = p.expect(RightParenthesisToken)
			dtr.As = p.maybe(AsKeyword)
			dtr.Name = p.expect(IdentifierToken)
			return dtr
		}

		// ( table-reference )
		ptr := &ParenthesizedTableReference{
			LeftParen: p.scan(),
		}
		ptr.TableReference = p.parseTableReference()
		ptr.RightParen = p.expect(RightParenthesisToken)
		return ptr
	}

	// table [[AS] alias]
	return &NamedTableReference{
		TableName: p.expect(IdentifierToken),
		Alias:     p.parseAlias(),
	}
}

func (p *parser) parseExpression() Expression {
	return p.parseSubExpression(0)
}

func (p *parser) parseSubExpression(precedence int) Expression {
	var e Expression
	if op, ok := unaryOperators[p.current().Kind()]; ok {
		ue := &UnaryExpression{
			kind:     op.kind,
			Operator: p.scan(),
		}
		ue.Operand = p.parseSubExpression(op.precedence)
		e = ue
	} else {
		e = p.parsePrimaryExpression()
	}

	for {
		k := p.current().Kind()
		if op, ok := binaryOperators[k]; ok {
			if op.precedence <= precedence {
				return e
			}
			if op.precedence == comparePrecedence && isAllAny(p.peek(1).Kind()) {
				e = p.parseAllAnySubselect(e)
				continue
			}

			be := &BinaryExpression{
				kind:     op.kind,
				Left:     e,
				Operator: p.scan(),
			}
			if op.kind == PowerExpressionKind {
				// right associative
				be.Right = p.parseSubExpression(op.precedence - 1)
			} else {
				be.Right = p.parseSubExpression(op.precedence)
			}
			e = be
			continue
		}

		if comparePrecedence <= precedence {
			return e
		}

		var not *Token
		if k == NotKeyword {
			switch p.peek(1).Kind() {
			case LikeKeyword, SimilarKeyword, BetweenKeyword, InKeyword:
				not = p.scan()
				k = p.current().Kind()
			default:
				return e
			}
		}

		switch k {
		case LikeKeyword:
			// expr [NOT] LIKE expr
			le := &LikeExpression{
				Left: e,
				Not:  not,
				Like: p.scan(),
			}
			le.Right = p.parseSubExpression(comparePrecedence)
			e = le
		case SimilarKeyword:
			// expr [NOT] SIMILAR TO expr
			se := &SimilarToExpression{
				Left:    e,
				Not:     not,
				Similar: p.scan(),
				To:      p.expect(ToKeyword),
			}
			se.Right = p.parseSubExpression(comparePrecedence)
			e = se
		case BetweenKeyword:
			// expr [NOT] BETWEEN expr AND expr
			be := &BetweenExpression{
				Expression: e,
				Not:        not,
				Between:    p.scan(),
			}
			be.Lower = p.parseSubExpression(comparePrecedence)
			be.And = p.expect(AndKeyword)
			be.Upper = p.parseSubExpression(comparePrecedence)
			e = be
		case InKeyword:
			e = p.parseIn(e, not)
		case IsKeyword:
			// expr IS [NOT] NULL
			ine := &IsNullExpression{
				Expression: e,
				Is:         p.scan(),
			}
			ine.Not = p.maybe(NotKeyword)
			ine.Null = p.expect(NullKeyword)
			e = ine
		default:
			return e
		}
	}
}

func isAllAny(k Kind) bool {
	return k == AllKeyword || k == AnyKeyword || k == SomeKeyword
}

func (p *parser) parseAllAnySubselect(left Expression) Expression {
	// expr op ALL | ANY | SOME ( query )
	aas := &AllAnySubselect{
		Left:      left,
		Operator:  p.scan(),
		Keyword:   p.scan(),
		LeftParen: p.expect(LeftParenthesisToken),
	}
	aas.Query = p.parseQuery()
	aas.RightParen = p.expect(RightParenthesisToken)
	return aas
}

func (p *parser) parseIn(e Expression, not *Token) Expression {
	in := p.scan()
	lparen := p.expect(LeftParenthesisToken)
	if isQueryStart(p.current().Kind()) {
		// expr [NOT] IN ( query )
		iqe := &InQueryExpression{
			Expression: e,
			Not:        not,
			In:         in,
			LeftParen:  lparen,
		}
		iqe.Query = p.parseQuery()
		iqe.RightParen = p.expect(RightParenthesisToken)
		return iqe
	}

	// expr [NOT] IN ( expr [, ...] )
	ie := &InExpression{
		Expression: e,
		Not:        not,
		In:         in,
		LeftParen:  lparen,
	}
	ie.Arguments = p.parseExpressionList()
	ie.RightParen = p.expect(RightParenthesisToken)
	return ie
}

func (p *parser) parseExpressionList() SeparatedList[Expression] {
	var sl SeparatedList[Expression]
	for {
		sl.Items = append(sl.Items, p.parseExpression())
		comma := p.maybe(CommaToken)
		if comma == nil {
			break
		}
		sl.Separators = append(sl.Separators, comma)
	}
	return sl
}

func (p *parser) parseArgumentList() *ArgumentList {
	al := &ArgumentList{
		LeftParen: p.expect(LeftParenthesisToken),
	}
	if p.current().Kind() != RightParenthesisToken {
		al.Arguments = p.parseExpressionList()
	}
	al.RightParen = p.expect(RightParenthesisToken)
	return al
}

func (p *parser) parsePrimaryExpression() Expression {
	e := p.parseTerm()

	// expr . name [( args )]
	for p.current().Kind() == DotToken {
		dot := p.scan()
		name := p.expect(IdentifierToken)
		if p.current().Kind() == LeftParenthesisToken {
			e = &MethodInvocationExpression{
				Target:    e,
				Dot:       dot,
				Name:      name,
				Arguments: p.parseArgumentList(),
			}
		} else {
			e = &PropertyAccessExpression{
				Target: e,
				Dot:    dot,
				Name:   name,
			}
		}
	}
	return e
}

func (p *parser) parseTerm() Expression {
	switch p.current().Kind() {
	case NumericLiteralToken, StringLiteralToken, TrueKeyword, FalseKeyword, NullKeyword:
		return &LiteralExpression{
			Token: p.scan(),
		}
	case AtToken:
		// @ name
		return &VariableExpression{
			At:   p.scan(),
			Name: p.expect(IdentifierToken),
		}
	case LeftParenthesisToken:
		if isQueryStart(p.peek(1).Kind()) {
			// ( query )
			srs := &SingleRowSubselect{
				LeftParen: p.scan(),
			}
			srs.Query = p.parseQuery()
			srs.RightParen = p.expect(RightParenthesisToken)
			return srs
		}

		// ( expr )
		pe := &ParenthesizedExpression{
			LeftParen: p.scan(),
		}
		pe.Expression = p.parseExpression()
		pe.RightParen = p.expect(RightParenthesisToken)
		return pe
	case ExistsKeyword:
		// EXISTS ( query )
		es := &ExistsSubselect{
			Exists:    p.scan(),
			LeftParen: p.expect(LeftParenthesisToken),
		}
		es.Query = p.parseQuery()
		es.RightParen = p.expect(RightParenthesisToken)
		return es
	case CastKeyword:
		// CAST ( expr AS type )
		ce := &CastExpression{
			Cast:      p.scan(),
			LeftParen: p.expect(LeftParenthesisToken),
		}
		ce.Expression = p.parseExpression()
		ce.As = p.expect(AsKeyword)
		ce.TypeName = p.expect(IdentifierToken)
		ce.RightParen = p.expect(RightParenthesisToken)
		return ce
	case CoalesceKeyword:
		// COALESCE ( expr [, ...] )
		ce := &CoalesceExpression{
			Coalesce:  p.scan(),
			LeftParen: p.expect(LeftParenthesisToken),
		}
		ce.Arguments = p.parseExpressionList()
		ce.RightParen = p.expect(RightParenthesisToken)
		return ce
	case NullIfKeyword:
		// NULLIF ( expr , expr )
		nie := &NullIfExpression{
			NullIf:    p.scan(),
			LeftParen: p.expect(LeftParenthesisToken),
		}
		nie.Left = p.parseExpression()
		nie.Comma = p.expect(CommaToken)
		nie.Right = p.parseExpression()
		nie.RightParen = p.expect(RightParenthesisToken)
		return nie
	case CaseKeyword:
		return p.parseCase()
	case IdentifierToken:
		if p.peek(1).Kind() == LeftParenthesisToken {
			if p.peek(2).Kind() == AsteriskToken && p.peek(3).Kind() == RightParenthesisToken {
				// name ( * )
				return &CountAllExpression{
					Name:       p.scan(),
					LeftParen:  p.scan(),
					Asterisk:   p.scan(),
					RightParen: p.scan(),
				}
			}

			// name ( [expr [, ...]] )
			return &FunctionInvocationExpression{
				Name:      p.scan(),
				Arguments: p.parseArgumentList(),
			}
		}
		return &NameExpression{
			Name: p.scan(),
		}
	}

	return &NameExpression{
		Name: p.missing(IdentifierToken),
	}
}

func (p *parser) parseCase() Expression {
	// CASE [expr] WHEN expr THEN expr [...] [ELSE expr] END
	ce := &CaseExpression{
		Case: p.scan(),
	}
	if p.current().Kind() != WhenKeyword {
		ce.Input = p.parseExpression()
	}
	for {
		lbl := &CaseLabel{
			When: p.expect(WhenKeyword),
		}
		lbl.WhenExpression = p.parseExpression()
		lbl.Then = p.expect(ThenKeyword)
		lbl.ThenExpression = p.parseExpression()
		ce.Labels = append(ce.Labels, lbl)
		if p.current().Kind() != WhenKeyword {
			break
		}
	}
	if p.current().Kind() == ElseKeyword {
		ce.Else = p.scan()
		ce.ElseExpression = p.parseExpression()
	}
	ce.End = p.expect(EndKeyword)
	return ce
}
