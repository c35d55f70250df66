package syntax

import (
	"fmt"
	"sort"
)

type DiagnosticID int

const (
	IllegalInputCharacter DiagnosticID = iota + 1
	UnterminatedString
	UnterminatedComment
	UnterminatedQuotedIdentifier
	InvalidReal
	TokenExpected

	InvalidRowReference
	CannotConvert
	InvalidInteger
	ColumnNotInGroupByClause
	UndeclaredIdentifier
	UndeclaredTable
	UndeclaredFunction
	UndeclaredVariable
	UndeclaredProperty
	UndeclaredMethod
	UndeclaredType
	AmbiguousReference
	AmbiguousInvocation
	NoApplicableOverload
	OperatorNotApplicable
	AmbiguousOperator
	SymbolAlreadyDeclared
	NoCommonType
	AggregateInWhere
	AggregateInOn
	AggregateInGroupBy
	AggregateCannotContainAggregate
	WhereClauseMustEvaluateToBool
	HavingClauseMustEvaluateToBool
	OnClauseMustEvaluateToBool
	TooManyExpressionsInSelectListOfSubquery
	MustSpecifyTableToSelectFrom
	OrderByColumnPositionIsOutOfRange
	OrderByItemsMustBeInSelectListIfDistinctSpecified
	OrderByItemsMustBeInSelectListIfUnionSpecified
	DifferentExpressionCountInBinaryQuery
	CteHasMoreColumnsThanSpecified
	CteHasFewerColumnsThanSpecified
	TopWithTiesRequiresOrderBy
)

var diagnostics = map[DiagnosticID]struct {
	name   string
	format string
}{
	IllegalInputCharacter:        {"IllegalInputCharacter", "illegal input character: %s"},
	UnterminatedString:           {"UnterminatedString", "string missing terminating \"'\""},
	UnterminatedComment:          {"UnterminatedComment", "comment missing terminating \"*/\""},
	UnterminatedQuotedIdentifier: {"UnterminatedQuotedIdentifier", "quoted identifier missing terminating %s"},
	InvalidReal:                  {"InvalidReal", "%s is not a valid number"},
	TokenExpected:                {"TokenExpected", "found %s but expected %s"},

	InvalidRowReference:             {"InvalidRowReference", "%s does not have a row object"},
	CannotConvert:                   {"CannotConvert", "cannot convert %s to %s"},
	InvalidInteger:                  {"InvalidInteger", "%s is not a valid integer"},
	ColumnNotInGroupByClause:        {"ColumnNotInGroupByClause", "%s must be aggregated or appear in the GROUP BY clause"},
	UndeclaredIdentifier:            {"UndeclaredIdentifier", "%s is not declared"},
	UndeclaredTable:                 {"UndeclaredTable", "table %s is not declared"},
	UndeclaredFunction:              {"UndeclaredFunction", "function %s is not declared"},
	UndeclaredVariable:              {"UndeclaredVariable", "variable @%s is not declared"},
	UndeclaredProperty:              {"UndeclaredProperty", "%s does not have a property %s"},
	UndeclaredMethod:                {"UndeclaredMethod", "%s does not have a method %s"},
	UndeclaredType:                  {"UndeclaredType", "type %s is not declared"},
	AmbiguousReference:              {"AmbiguousReference", "%s is ambiguous between %s"},
	AmbiguousInvocation:             {"AmbiguousInvocation", "invocation of %s is ambiguous between %s"},
	NoApplicableOverload:            {"NoApplicableOverload", "no overload of %s takes arguments (%s)"},
	OperatorNotApplicable:           {"OperatorNotApplicable", "operator %s cannot be applied to %s"},
	AmbiguousOperator:               {"AmbiguousOperator", "operator %s is ambiguous on %s"},
	SymbolAlreadyDeclared:           {"SymbolAlreadyDeclared", "%s is already declared"},
	NoCommonType:                    {"NoCommonType", "no common type for %s"},
	AggregateInWhere:                {"AggregateInWhere", "aggregate %s is not allowed in WHERE"},
	AggregateInOn:                   {"AggregateInOn", "aggregate %s is not allowed in ON"},
	AggregateInGroupBy:              {"AggregateInGroupBy", "aggregate %s is not allowed in GROUP BY"},
	AggregateCannotContainAggregate: {"AggregateCannotContainAggregate", "aggregate %s cannot contain an aggregate"},
	WhereClauseMustEvaluateToBool:   {"WhereClauseMustEvaluateToBool", "WHERE must be boolean, not %s"},
	HavingClauseMustEvaluateToBool:  {"HavingClauseMustEvaluateToBool", "HAVING must be boolean, not %s"},
	OnClauseMustEvaluateToBool:      {"OnClauseMustEvaluateToBool", "ON must be boolean, not %s"},
	TooManyExpressionsInSelectListOfSubquery: {"TooManyExpressionsInSelectListOfSubquery",
		"subquery must select exactly one column"},
	MustSpecifyTableToSelectFrom: {"MustSpecifyTableToSelectFrom",
		"* requires a FROM clause"},
	OrderByColumnPositionIsOutOfRange: {"OrderByColumnPositionIsOutOfRange",
		"ORDER BY position %s is out of range"},
	OrderByItemsMustBeInSelectListIfDistinctSpecified: {
		"OrderByItemsMustBeInSelectListIfDistinctSpecified",
		"ORDER BY items must appear in the select list if DISTINCT is specified"},
	OrderByItemsMustBeInSelectListIfUnionSpecified: {
		"OrderByItemsMustBeInSelectListIfUnionSpecified",
		"ORDER BY items must appear in the select list of a UNION, INTERSECT, or EXCEPT"},
	DifferentExpressionCountInBinaryQuery: {"DifferentExpressionCountInBinaryQuery",
		"both sides of %s must select the same number of columns"},
	CteHasMoreColumnsThanSpecified: {"CteHasMoreColumnsThanSpecified",
		"%s has more columns than were specified in the column list"},
	CteHasFewerColumnsThanSpecified: {"CteHasFewerColumnsThanSpecified",
		"%s has fewer columns than were specified in the column list"},
	TopWithTiesRequiresOrderBy: {"TopWithTiesRequiresOrderBy",
		"TOP WITH TIES requires ORDER BY"},
}

func (id DiagnosticID) String() string {
	if d, ok := diagnostics[id]; ok {
		return d.name
	}
	return fmt.Sprintf("DiagnosticID(%d)", int(id))
}

type Diagnostic struct {
	ID      DiagnosticID
	Span    Span
	Message string
}

func NewDiagnostic(id DiagnosticID, span Span, args ...interface{}) Diagnostic {
	d, ok := diagnostics[id]
	if !ok {
		panic(fmt.Sprintf("unexpected diagnostic id: %d", id))
	}
	return Diagnostic{
		ID:      id,
		Span:    span,
		Message: fmt.Sprintf(d.format, args...),
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Span, d.ID, d.Message)
}

// SortDiagnostics orders diagnostics by the start of their spans, keeping the relative
// order of diagnostics at the same position.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Span.Start < diags[j].Span.Start
	})
}

// Position converts a byte offset into a one based line and column.
func Position(text string, offset int) (int, int) {
	line, col := 1, 1
	for i, r := range text {
		if i >= offset {
			break
		}
		if r == '\n' {
			line += 1
			col = 1
		} else {
			col += 1
		}
	}
	return line, col
}
