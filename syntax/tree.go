package syntax

// SyntaxTree is an immutable parse of a query or expression. Parsing never fails: errors
// are reported as diagnostics, expected but absent tokens are missing tokens, and
// unexpected tokens are kept as skipped tokens trivia.
type SyntaxTree struct {
	text        string
	root        *CompilationUnit
	diagnostics []Diagnostic
}

func ParseQuery(text string) *SyntaxTree {
	p := newParser(text)
	cu := &CompilationUnit{
		Root: p.parseQuery(),
	}
	cu.EndOfFile = p.expectEOF()
	return newSyntaxTree(text, cu, p.diagnostics)
}

func ParseExpression(text string) *SyntaxTree {
	p := newParser(text)
	cu := &CompilationUnit{
		Root: p.parseExpression(),
	}
	cu.EndOfFile = p.expectEOF()
	return newSyntaxTree(text, cu, p.diagnostics)
}

func newSyntaxTree(text string, cu *CompilationUnit, diags []Diagnostic) *SyntaxTree {
	SortDiagnostics(diags)
	return &SyntaxTree{
		text:        text,
		root:        cu,
		diagnostics: diags,
	}
}

func (st *SyntaxTree) Text() string {
	return st.text
}

func (st *SyntaxTree) Root() *CompilationUnit {
	return st.root
}

func (st *SyntaxTree) Diagnostics() []Diagnostic {
	return st.diagnostics
}

// IsQuery is true when the root of the tree is a query rather than an expression.
func (st *SyntaxTree) IsQuery() bool {
	_, ok := st.root.Root.(Query)
	return ok
}

// FindToken returns the token whose full span contains pos.
func (st *SyntaxTree) FindToken(pos int) *Token {
	for _, t := range Tokens(st.root) {
		if t.FullSpan().Contains(pos) {
			return t
		}
	}
	return st.root.EndOfFile
}
