package syntax

import (
	"fmt"
	"strings"

	"github.com/leftmike/nquery/sql"
)

// Span is a range of source text in bytes.
type Span struct {
	Start  int
	Length int
}

func SpanFromBounds(start, end int) Span {
	return Span{Start: start, Length: end - start}
}

func (s Span) End() int {
	return s.Start + s.Length
}

func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End()
}

func (s Span) String() string {
	return fmt.Sprintf("[%d..%d)", s.Start, s.End())
}

type Trivia struct {
	Kind Kind
	Text string
	Span Span
	// Tokens skipped by the parser for SkippedTokensTrivia.
	Tokens []*Token
}

type Token struct {
	kind     Kind
	text     string
	value    sql.Value
	span     Span
	missing  bool
	leading  []Trivia
	trailing []Trivia
}

func (t *Token) Kind() Kind {
	return t.kind
}

// Text is the source text of the token, without trivia.
func (t *Token) Text() string {
	return t.text
}

// ValueText is the identifier with any quoting removed, or the text of other tokens.
func (t *Token) ValueText() string {
	if t.kind == IdentifierToken {
		if s, ok := t.value.(string); ok {
			return s
		}
	}
	return t.text
}

// IsQuotedIdentifier is true for identifiers written as "name", [name], or `name`.
func (t *Token) IsQuotedIdentifier() bool {
	return t.kind == IdentifierToken && len(t.text) > 0 &&
		(t.text[0] == '"' || t.text[0] == '[' || t.text[0] == '`')
}

// Value is the value of a literal token.
func (t *Token) Value() sql.Value {
	return t.value
}

func (t *Token) Span() Span {
	return t.span
}

func (t *Token) FullSpan() Span {
	start := t.span.Start
	if len(t.leading) > 0 {
		start = t.leading[0].Span.Start
	}
	end := t.span.End()
	if len(t.trailing) > 0 {
		end = t.trailing[len(t.trailing)-1].Span.End()
	}
	return SpanFromBounds(start, end)
}

// IsMissing is true for tokens the parser expected but did not find; they have no text
// and an empty span.
func (t *Token) IsMissing() bool {
	return t.missing
}

func (t *Token) LeadingTrivia() []Trivia {
	return t.leading
}

func (t *Token) TrailingTrivia() []Trivia {
	return t.trailing
}

// FullText is the token text including its leading and trailing trivia.
func (t *Token) FullText() string {
	var buf strings.Builder
	for _, tr := range t.leading {
		buf.WriteString(tr.Text)
	}
	buf.WriteString(t.text)
	for _, tr := range t.trailing {
		buf.WriteString(tr.Text)
	}
	return buf.String()
}

func (t *Token) String() string {
	if t.missing {
		return fmt.Sprintf("<missing %s>", t.kind)
	}
	return t.text
}
