package engine

import (
	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/syntax"
)

// SemanticModel answers questions about a bound compilation. Nodes which did not bind
// return nil.
type SemanticModel struct {
	compilation *Compilation
	tree        *binding.BoundTree
}

func (sm *SemanticModel) Compilation() *Compilation {
	return sm.compilation
}

func (sm *SemanticModel) BoundTree() *binding.BoundTree {
	return sm.tree
}

func (sm *SemanticModel) GetSymbol(n syntax.Node) symbols.Symbol {
	if n == nil {
		return nil
	}
	return sm.tree.GetSymbol(n)
}

func (sm *SemanticModel) GetDeclaredSymbol(n syntax.Node) symbols.Symbol {
	if n == nil {
		return nil
	}
	return sm.tree.GetDeclaredSymbol(n)
}

func (sm *SemanticModel) GetExpressionType(n syntax.Node) sql.Type {
	if n == nil {
		return nil
	}
	return sm.tree.GetExpressionType(n)
}

// GetDiagnostics returns the syntax diagnostics followed by the binding diagnostics.
func (sm *SemanticModel) GetDiagnostics() []syntax.Diagnostic {
	syn := sm.compilation.Syntax.Diagnostics()
	diags := make([]syntax.Diagnostic, 0, len(syn)+len(sm.tree.Diagnostics))
	diags = append(diags, syn...)
	return append(diags, sm.tree.Diagnostics...)
}
