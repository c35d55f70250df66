package syntax

import (
	"strings"
)

// Node is a syntax node. The set of nodes is closed: every node type is defined in this
// package.
type Node interface {
	Kind() Kind
	ChildNodesAndTokens() []NodeOrToken
	node()
}

// NodeOrToken holds exactly one of Node or Token.
type NodeOrToken struct {
	Node  Node
	Token *Token
}

type Expression interface {
	Node
	expression()
}

type Query interface {
	Node
	query()
}

type TableReference interface {
	Node
	tableReference()
}

type SelectColumn interface {
	Node
	selectColumn()
}

// SeparatedList is a list of nodes separated by tokens, usually commas.
type SeparatedList[T Node] struct {
	Items      []T
	Separators []*Token
}

func (sl SeparatedList[T]) Len() int {
	return len(sl.Items)
}

func (sl SeparatedList[T]) children(children []NodeOrToken) []NodeOrToken {
	for idx, item := range sl.Items {
		children = append(children, NodeOrToken{Node: item})
		if idx < len(sl.Separators) {
			children = append(children, NodeOrToken{Token: sl.Separators[idx]})
		}
	}
	return children
}

// childList builds the children of a node, skipping absent optional children.
type childList []NodeOrToken

func (cl childList) token(t *Token) childList {
	if t != nil {
		cl = append(cl, NodeOrToken{Token: t})
	}
	return cl
}

func (cl childList) node(n Node) childList {
	if !isNil(n) {
		cl = append(cl, NodeOrToken{Node: n})
	}
	return cl
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch n := n.(type) {
	case *Alias:
		return n == nil
	case *TopClause:
		return n == nil
	case *FromClause:
		return n == nil
	case *WhereClause:
		return n == nil
	case *GroupByClause:
		return n == nil
	case *HavingClause:
		return n == nil
	case *CommonTableExpressionColumnNameList:
		return n == nil
	case *SelectClause:
		return n == nil
	}
	return false
}

// FirstToken returns the first token of n, including missing tokens.
func FirstToken(n Node) *Token {
	for _, c := range n.ChildNodesAndTokens() {
		if c.Token != nil {
			return c.Token
		}
		if t := FirstToken(c.Node); t != nil {
			return t
		}
	}
	return nil
}

// LastToken returns the last token of n, including missing tokens.
func LastToken(n Node) *Token {
	children := n.ChildNodesAndTokens()
	for idx := len(children) - 1; idx >= 0; idx-- {
		c := children[idx]
		if c.Token != nil {
			return c.Token
		}
		if t := LastToken(c.Node); t != nil {
			return t
		}
	}
	return nil
}

// NodeSpan is the span of n without the leading trivia of its first token and the
// trailing trivia of its last token.
func NodeSpan(n Node) Span {
	first := FirstToken(n)
	last := LastToken(n)
	if first == nil || last == nil {
		return Span{}
	}
	return SpanFromBounds(first.Span().Start, last.Span().End())
}

func FullSpan(n Node) Span {
	first := FirstToken(n)
	last := LastToken(n)
	if first == nil || last == nil {
		return Span{}
	}
	return SpanFromBounds(first.FullSpan().Start, last.FullSpan().End())
}

// Walk calls fn for n and, while fn returns true, for each of its descendant nodes in
// document order.
func Walk(n Node, fn func(n Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.ChildNodesAndTokens() {
		if c.Node != nil {
			Walk(c.Node, fn)
		}
	}
}

// Tokens returns all of the tokens of n in document order.
func Tokens(n Node) []*Token {
	var tokens []*Token
	var walk func(n Node)
	walk = func(n Node) {
		for _, c := range n.ChildNodesAndTokens() {
			if c.Token != nil {
				tokens = append(tokens, c.Token)
			} else {
				walk(c.Node)
			}
		}
	}
	walk(n)
	return tokens
}

// FullText reconstructs the source text of n, including trivia and skipped tokens.
func FullText(n Node) string {
	var buf strings.Builder
	for _, t := range Tokens(n) {
		writeToken(&buf, t)
	}
	return buf.String()
}

func writeToken(buf *strings.Builder, t *Token) {
	for _, tr := range t.leading {
		writeTrivia(buf, tr)
	}
	buf.WriteString(t.text)
	for _, tr := range t.trailing {
		writeTrivia(buf, tr)
	}
}

func writeTrivia(buf *strings.Builder, tr Trivia) {
	if tr.Kind == SkippedTokensTrivia {
		for _, t := range tr.Tokens {
			writeToken(buf, t)
		}
		return
	}
	buf.WriteString(tr.Text)
}

// Text is the source text of n without its outer trivia.
func Text(n Node, text string) string {
	span := NodeSpan(n)
	if span.End() > len(text) {
		return ""
	}
	return text[span.Start:span.End()]
}
