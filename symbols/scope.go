package symbols

import (
	"errors"
	"strings"
)

var (
	ErrSymbolAlreadyDeclared = errors.New("symbols: symbol already declared")
)

// Scope is one level of a chain of symbol tables. Lookups walk outward from the nearest
// scope; the root scope falls back to the catalog of its DataContext.
type Scope struct {
	parent  *Scope
	dc      *DataContext
	symbols map[string][]Symbol
	order   []Symbol
}

func NewRootScope(dc *DataContext) *Scope {
	return &Scope{
		dc:      dc,
		symbols: map[string][]Symbol{},
	}
}

func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		dc:      parent.dc,
		symbols: map[string][]Symbol{},
	}
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

func (s *Scope) DataContext() *DataContext {
	return s.dc
}

func overloadable(k SymbolKind) bool {
	return k == FunctionKind || k == MethodKind
}

// Declare adds sym to the scope. Functions and methods accumulate as overloads; any
// other symbol conflicts with a symbol of the same name already in this scope.
func (s *Scope) Declare(sym Symbol) error {
	key := strings.ToLower(sym.Name())
	for _, prev := range s.symbols[key] {
		if !overloadable(sym.Kind()) || prev.Kind() != sym.Kind() {
			return ErrSymbolAlreadyDeclared
		}
	}
	s.symbols[key] = append(s.symbols[key], sym)
	s.order = append(s.order, sym)
	return nil
}

// Lookup returns the symbols named name in the nearest scope which has any.
func (s *Scope) Lookup(name string) []Symbol {
	key := strings.ToLower(name)
	for scope := s; scope != nil; scope = scope.parent {
		if syms, ok := scope.symbols[key]; ok {
			return syms
		}
	}
	return nil
}

// LookupTable finds a common table expression in the scope chain or else a table of the
// catalog.
func (s *Scope) LookupTable(name string) TableSymbol {
	for _, sym := range s.Lookup(name) {
		if cte, ok := sym.(*CommonTableExpressionSymbol); ok {
			return cte
		}
	}
	if sts, ok := s.dc.LookupTable(name); ok {
		return sts
	}
	return nil
}

// LookupTableInstance finds the nearest table instance named name.
func (s *Scope) LookupTableInstance(name string) *TableInstanceSymbol {
	key := strings.ToLower(name)
	for scope := s; scope != nil; scope = scope.parent {
		for _, sym := range scope.symbols[key] {
			if tis, ok := sym.(*TableInstanceSymbol); ok {
				return tis
			}
		}
	}
	return nil
}

// LookupColumnInstances returns the columns named name of the table instances of the
// nearest scope where any table instance has such a column.
func (s *Scope) LookupColumnInstances(name string) []*TableColumnInstanceSymbol {
	for scope := s; scope != nil; scope = scope.parent {
		var cols []*TableColumnInstanceSymbol
		for _, tis := range scope.TableInstances() {
			cols = append(cols, tis.LookupColumnInstance(name)...)
		}
		if len(cols) > 0 {
			return cols
		}
	}
	return nil
}

// TableInstances returns the table instances declared in this scope, in order.
func (s *Scope) TableInstances() []*TableInstanceSymbol {
	var tables []*TableInstanceSymbol
	for _, sym := range s.order {
		if tis, ok := sym.(*TableInstanceSymbol); ok {
			tables = append(tables, tis)
		}
	}
	return tables
}

func (s *Scope) LookupVariable(name string) (*VariableSymbol, bool) {
	return s.dc.LookupVariable(name)
}

func (s *Scope) LookupFunctions(name string) []*FunctionSymbol {
	return s.dc.LookupFunctions(name)
}

func (s *Scope) LookupAggregate(name string) (*AggregateSymbol, bool) {
	return s.dc.LookupAggregate(name)
}
