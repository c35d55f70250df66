package syntax

import (
	"strings"
)

type Kind int

const (
	BadToken Kind = iota
	EndOfFileToken

	IdentifierToken
	NumericLiteralToken
	StringLiteralToken

	BitwiseNotToken
	AmpersandToken
	BarToken
	CaretToken
	LeftParenthesisToken
	RightParenthesisToken
	PlusToken
	MinusToken
	AsteriskToken
	AsteriskAsteriskToken
	SlashToken
	PercentToken
	EqualsToken
	ExclamationEqualsToken
	LessGreaterToken
	LessToken
	LessEqualToken
	GreaterToken
	GreaterEqualToken
	LessLessToken
	GreaterGreaterToken
	DotToken
	CommaToken
	AtToken

	AllKeyword
	AndKeyword
	AnyKeyword
	AsKeyword
	AscKeyword
	BetweenKeyword
	ByKeyword
	CaseKeyword
	CastKeyword
	CoalesceKeyword
	CrossKeyword
	DescKeyword
	DistinctKeyword
	ElseKeyword
	EndKeyword
	ExceptKeyword
	ExistsKeyword
	FalseKeyword
	FromKeyword
	FullKeyword
	GroupKeyword
	HavingKeyword
	InKeyword
	InnerKeyword
	IntersectKeyword
	IsKeyword
	JoinKeyword
	LeftKeyword
	LikeKeyword
	NotKeyword
	NullKeyword
	NullIfKeyword
	OnKeyword
	OrKeyword
	OrderKeyword
	OuterKeyword
	RightKeyword
	SelectKeyword
	SimilarKeyword
	SomeKeyword
	ThenKeyword
	TiesKeyword
	ToKeyword
	TopKeyword
	TrueKeyword
	UnionKeyword
	WhenKeyword
	WhereKeyword
	WithKeyword
	lastKeyword

	WhitespaceTrivia
	EndOfLineTrivia
	SingleLineCommentTrivia
	MultiLineCommentTrivia
	SkippedTokensTrivia

	CompilationUnitKind

	// Expressions
	ComplementExpressionKind
	IdentityExpressionKind
	NegationExpressionKind
	LogicalNotExpressionKind
	BitwiseAndExpressionKind
	BitwiseOrExpressionKind
	ExclusiveOrExpressionKind
	AddExpressionKind
	SubExpressionKind
	MultiplyExpressionKind
	DivideExpressionKind
	ModuloExpressionKind
	PowerExpressionKind
	LeftShiftExpressionKind
	RightShiftExpressionKind
	LogicalAndExpressionKind
	LogicalOrExpressionKind
	EqualExpressionKind
	NotEqualExpressionKind
	LessExpressionKind
	LessOrEqualExpressionKind
	GreaterExpressionKind
	GreaterOrEqualExpressionKind
	LikeExpressionKind
	SimilarToExpressionKind
	ParenthesizedExpressionKind
	BetweenExpressionKind
	IsNullExpressionKind
	CastExpressionKind
	CaseExpressionKind
	CaseLabelKind
	CoalesceExpressionKind
	NullIfExpressionKind
	InExpressionKind
	InQueryExpressionKind
	LiteralExpressionKind
	VariableExpressionKind
	NameExpressionKind
	PropertyAccessExpressionKind
	CountAllExpressionKind
	FunctionInvocationExpressionKind
	MethodInvocationExpressionKind
	ArgumentListKind
	SingleRowSubselectKind
	ExistsSubselectKind
	AllAnySubselectKind

	// Table references
	ParenthesizedTableReferenceKind
	NamedTableReferenceKind
	CrossJoinedTableReferenceKind
	InnerJoinedTableReferenceKind
	OuterJoinedTableReferenceKind
	DerivedTableReferenceKind

	// Queries and clauses
	ExceptQueryKind
	UnionQueryKind
	IntersectQueryKind
	OrderedQueryKind
	ParenthesizedQueryKind
	CommonTableExpressionQueryKind
	CommonTableExpressionKind
	CommonTableExpressionColumnNameListKind
	CommonTableExpressionColumnNameKind
	SelectQueryKind
	TopClauseKind
	WildcardSelectColumnKind
	ExpressionSelectColumnKind
	SelectClauseKind
	AliasKind
	FromClauseKind
	WhereClauseKind
	GroupByClauseKind
	GroupByColumnKind
	HavingClauseKind
	OrderByColumnKind
)

var keywords = map[string]Kind{
	"ALL":       AllKeyword,
	"AND":       AndKeyword,
	"ANY":       AnyKeyword,
	"AS":        AsKeyword,
	"ASC":       AscKeyword,
	"BETWEEN":   BetweenKeyword,
	"BY":        ByKeyword,
	"CASE":      CaseKeyword,
	"CAST":      CastKeyword,
	"COALESCE":  CoalesceKeyword,
	"CROSS":     CrossKeyword,
	"DESC":      DescKeyword,
	"DISTINCT":  DistinctKeyword,
	"ELSE":      ElseKeyword,
	"END":       EndKeyword,
	"EXCEPT":    ExceptKeyword,
	"EXISTS":    ExistsKeyword,
	"FALSE":     FalseKeyword,
	"FROM":      FromKeyword,
	"FULL":      FullKeyword,
	"GROUP":     GroupKeyword,
	"HAVING":    HavingKeyword,
	"IN":        InKeyword,
	"INNER":     InnerKeyword,
	"INTERSECT": IntersectKeyword,
	"IS":        IsKeyword,
	"JOIN":      JoinKeyword,
	"LEFT":      LeftKeyword,
	"LIKE":      LikeKeyword,
	"NOT":       NotKeyword,
	"NULL":      NullKeyword,
	"NULLIF":    NullIfKeyword,
	"ON":        OnKeyword,
	"OR":        OrKeyword,
	"ORDER":     OrderKeyword,
	"OUTER":     OuterKeyword,
	"RIGHT":     RightKeyword,
	"SELECT":    SelectKeyword,
	"SIMILAR":   SimilarKeyword,
	"SOME":      SomeKeyword,
	"THEN":      ThenKeyword,
	"TIES":      TiesKeyword,
	"TO":        ToKeyword,
	"TOP":       TopKeyword,
	"TRUE":      TrueKeyword,
	"UNION":     UnionKeyword,
	"WHEN":      WhenKeyword,
	"WHERE":     WhereKeyword,
	"WITH":      WithKeyword,
}

var tokenTexts = map[Kind]string{
	BitwiseNotToken:        "~",
	AmpersandToken:         "&",
	BarToken:               "|",
	CaretToken:             "^",
	LeftParenthesisToken:   "(",
	RightParenthesisToken:  ")",
	PlusToken:              "+",
	MinusToken:             "-",
	AsteriskToken:          "*",
	AsteriskAsteriskToken:  "**",
	SlashToken:             "/",
	PercentToken:           "%",
	EqualsToken:            "=",
	ExclamationEqualsToken: "!=",
	LessGreaterToken:       "<>",
	LessToken:              "<",
	LessEqualToken:         "<=",
	GreaterToken:           ">",
	GreaterEqualToken:      ">=",
	LessLessToken:          "<<",
	GreaterGreaterToken:    ">>",
	DotToken:               ".",
	CommaToken:             ",",
	AtToken:                "@",
}

var kindNames = map[Kind]string{
	BadToken:            "BadToken",
	EndOfFileToken:      "EndOfFileToken",
	IdentifierToken:     "IdentifierToken",
	NumericLiteralToken: "NumericLiteralToken",
	StringLiteralToken:  "StringLiteralToken",

	WhitespaceTrivia:        "WhitespaceTrivia",
	EndOfLineTrivia:         "EndOfLineTrivia",
	SingleLineCommentTrivia: "SingleLineCommentTrivia",
	MultiLineCommentTrivia:  "MultiLineCommentTrivia",
	SkippedTokensTrivia:     "SkippedTokensTrivia",

	CompilationUnitKind:                     "CompilationUnit",
	ComplementExpressionKind:                "ComplementExpression",
	IdentityExpressionKind:                  "IdentityExpression",
	NegationExpressionKind:                  "NegationExpression",
	LogicalNotExpressionKind:                "LogicalNotExpression",
	BitwiseAndExpressionKind:                "BitwiseAndExpression",
	BitwiseOrExpressionKind:                 "BitwiseOrExpression",
	ExclusiveOrExpressionKind:               "ExclusiveOrExpression",
	AddExpressionKind:                       "AddExpression",
	SubExpressionKind:                       "SubExpression",
	MultiplyExpressionKind:                  "MultiplyExpression",
	DivideExpressionKind:                    "DivideExpression",
	ModuloExpressionKind:                    "ModuloExpression",
	PowerExpressionKind:                     "PowerExpression",
	LeftShiftExpressionKind:                 "LeftShiftExpression",
	RightShiftExpressionKind:                "RightShiftExpression",
	LogicalAndExpressionKind:                "LogicalAndExpression",
	LogicalOrExpressionKind:                 "LogicalOrExpression",
	EqualExpressionKind:                     "EqualExpression",
	NotEqualExpressionKind:                  "NotEqualExpression",
	LessExpressionKind:                      "LessExpression",
	LessOrEqualExpressionKind:               "LessOrEqualExpression",
	GreaterExpressionKind:                   "GreaterExpression",
	GreaterOrEqualExpressionKind:            "GreaterOrEqualExpression",
	LikeExpressionKind:                      "LikeExpression",
	SimilarToExpressionKind:                 "SimilarToExpression",
	ParenthesizedExpressionKind:             "ParenthesizedExpression",
	BetweenExpressionKind:                   "BetweenExpression",
	IsNullExpressionKind:                    "IsNullExpression",
	CastExpressionKind:                      "CastExpression",
	CaseExpressionKind:                      "CaseExpression",
	CaseLabelKind:                           "CaseLabel",
	CoalesceExpressionKind:                  "CoalesceExpression",
	NullIfExpressionKind:                    "NullIfExpression",
	InExpressionKind:                        "InExpression",
	InQueryExpressionKind:                   "InQueryExpression",
	LiteralExpressionKind:                   "LiteralExpression",
	VariableExpressionKind:                  "VariableExpression",
	NameExpressionKind:                      "NameExpression",
	PropertyAccessExpressionKind:            "PropertyAccessExpression",
	CountAllExpressionKind:                  "CountAllExpression",
	FunctionInvocationExpressionKind:        "FunctionInvocationExpression",
	MethodInvocationExpressionKind:          "MethodInvocationExpression",
	ArgumentListKind:                        "ArgumentList",
	SingleRowSubselectKind:                  "SingleRowSubselect",
	ExistsSubselectKind:                     "ExistsSubselect",
	AllAnySubselectKind:                     "AllAnySubselect",
	ParenthesizedTableReferenceKind:         "ParenthesizedTableReference",
	NamedTableReferenceKind:                 "NamedTableReference",
	CrossJoinedTableReferenceKind:           "CrossJoinedTableReference",
	InnerJoinedTableReferenceKind:           "InnerJoinedTableReference",
	OuterJoinedTableReferenceKind:           "OuterJoinedTableReference",
	DerivedTableReferenceKind:               "DerivedTableReference",
	ExceptQueryKind:                         "ExceptQuery",
	UnionQueryKind:                          "UnionQuery",
	IntersectQueryKind:                      "IntersectQuery",
	OrderedQueryKind:                        "OrderedQuery",
	ParenthesizedQueryKind:                  "ParenthesizedQuery",
	CommonTableExpressionQueryKind:          "CommonTableExpressionQuery",
	CommonTableExpressionKind:               "CommonTableExpression",
	CommonTableExpressionColumnNameListKind: "CommonTableExpressionColumnNameList",
	CommonTableExpressionColumnNameKind:     "CommonTableExpressionColumnName",
	SelectQueryKind:                         "SelectQuery",
	TopClauseKind:                           "TopClause",
	WildcardSelectColumnKind:                "WildcardSelectColumn",
	ExpressionSelectColumnKind:              "ExpressionSelectColumn",
	SelectClauseKind:                        "SelectClause",
	AliasKind:                               "Alias",
	FromClauseKind:                          "FromClause",
	WhereClauseKind:                         "WhereClause",
	GroupByClauseKind:                       "GroupByClause",
	GroupByColumnKind:                       "GroupByColumn",
	HavingClauseKind:                        "HavingClause",
	OrderByColumnKind:                       "OrderByColumn",
}

func (k Kind) IsKeyword() bool {
	return k >= AllKeyword && k < lastKeyword
}

func (k Kind) IsTrivia() bool {
	return k >= WhitespaceTrivia && k <= SkippedTokensTrivia
}

func (k Kind) IsComment() bool {
	return k == SingleLineCommentTrivia || k == MultiLineCommentTrivia
}

func (k Kind) IsToken() bool {
	return k < lastKeyword
}

// Text returns the fixed text of a punctuation or keyword token kind.
func (k Kind) Text() string {
	if s, ok := tokenTexts[k]; ok {
		return s
	}
	if k.IsKeyword() {
		for s, kw := range keywords {
			if kw == k {
				return s
			}
		}
	}
	return ""
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	if k.IsKeyword() {
		s := k.Text()
		return s[:1] + strings.ToLower(s[1:]) + "Keyword"
	}
	for kt, s := range tokenTexts {
		if kt == k {
			return "'" + s + "'"
		}
	}
	return "Kind(?)"
}

// LookupKeyword returns the keyword kind for an identifier, ignoring case.
func LookupKeyword(s string) (Kind, bool) {
	k, ok := keywords[strings.ToUpper(s)]
	return k, ok
}
