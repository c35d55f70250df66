package symbols

import (
	"sort"
	"strings"

	"github.com/leftmike/nquery/sql"
)

// DataContext is the catalog a query binds against. It is immutable: the With methods
// return a modified copy.
type DataContext struct {
	tables     map[string]*SchemaTableSymbol
	functions  map[string][]*FunctionSymbol
	aggregates map[string]*AggregateSymbol
	variables  map[string]*VariableSymbol
	properties map[sql.Type][]*PropertySymbol
	methods    map[sql.Type][]*MethodSymbol
}

// EmptyDataContext has no tables, functions, aggregates, or variables.
func EmptyDataContext() *DataContext {
	return &DataContext{
		tables:     map[string]*SchemaTableSymbol{},
		functions:  map[string][]*FunctionSymbol{},
		aggregates: map[string]*AggregateSymbol{},
		variables:  map[string]*VariableSymbol{},
		properties: map[sql.Type][]*PropertySymbol{},
		methods:    map[sql.Type][]*MethodSymbol{},
	}
}

// NewDataContext returns a catalog with the builtin functions, aggregates, properties,
// and methods, but no tables or variables.
func NewDataContext() *DataContext {
	dc := EmptyDataContext()
	for _, fs := range builtinFunctions() {
		dc.functions[strings.ToLower(fs.Name())] =
			append(dc.functions[strings.ToLower(fs.Name())], fs)
	}
	for _, as := range builtinAggregates() {
		dc.aggregates[strings.ToLower(as.Name())] = as
	}
	for typ, props := range builtinProperties() {
		dc.properties[typ] = props
	}
	for typ, methods := range builtinMethods() {
		dc.methods[typ] = methods
	}
	return dc
}

func (dc *DataContext) clone() *DataContext {
	ndc := EmptyDataContext()
	for k, v := range dc.tables {
		ndc.tables[k] = v
	}
	for k, v := range dc.functions {
		ndc.functions[k] = v
	}
	for k, v := range dc.aggregates {
		ndc.aggregates[k] = v
	}
	for k, v := range dc.variables {
		ndc.variables[k] = v
	}
	for k, v := range dc.properties {
		ndc.properties[k] = v
	}
	for k, v := range dc.methods {
		ndc.methods[k] = v
	}
	return ndc
}

// WithTables adds or replaces tables by name.
func (dc *DataContext) WithTables(tbls ...sql.Table) *DataContext {
	ndc := dc.clone()
	for _, tbl := range tbls {
		ndc.tables[strings.ToLower(tbl.Name())] = NewSchemaTableSymbol(tbl)
	}
	return ndc
}

func (dc *DataContext) WithVariable(name string, typ sql.Type, val sql.Value) *DataContext {
	ndc := dc.clone()
	ndc.variables[strings.ToLower(name)] = NewVariableSymbol(name, typ, val)
	return ndc
}

// WithFunction adds an overload; functions with the same name accumulate.
func (dc *DataContext) WithFunction(fs *FunctionSymbol) *DataContext {
	ndc := dc.clone()
	key := strings.ToLower(fs.Name())
	ndc.functions[key] = append(append([]*FunctionSymbol(nil), dc.functions[key]...), fs)
	return ndc
}

func (dc *DataContext) WithAggregate(as *AggregateSymbol) *DataContext {
	ndc := dc.clone()
	ndc.aggregates[strings.ToLower(as.Name())] = as
	return ndc
}

func (dc *DataContext) WithProperty(typ sql.Type, ps *PropertySymbol) *DataContext {
	ndc := dc.clone()
	ndc.properties[typ] = append(append([]*PropertySymbol(nil), dc.properties[typ]...), ps)
	return ndc
}

func (dc *DataContext) WithMethod(typ sql.Type, ms *MethodSymbol) *DataContext {
	ndc := dc.clone()
	ndc.methods[typ] = append(append([]*MethodSymbol(nil), dc.methods[typ]...), ms)
	return ndc
}

// Tables returns the tables sorted by name.
func (dc *DataContext) Tables() []*SchemaTableSymbol {
	var tables []*SchemaTableSymbol
	for _, sts := range dc.tables {
		tables = append(tables, sts)
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].Name() < tables[j].Name()
	})
	return tables
}

// Variables returns the variables sorted by name.
func (dc *DataContext) Variables() []*VariableSymbol {
	var vars []*VariableSymbol
	for _, vs := range dc.variables {
		vars = append(vars, vs)
	}
	sort.Slice(vars, func(i, j int) bool {
		return vars[i].Name() < vars[j].Name()
	})
	return vars
}

func (dc *DataContext) LookupTable(name string) (*SchemaTableSymbol, bool) {
	sts, ok := dc.tables[strings.ToLower(name)]
	return sts, ok
}

func (dc *DataContext) LookupVariable(name string) (*VariableSymbol, bool) {
	vs, ok := dc.variables[strings.ToLower(name)]
	return vs, ok
}

func (dc *DataContext) LookupFunctions(name string) []*FunctionSymbol {
	return dc.functions[strings.ToLower(name)]
}

func (dc *DataContext) LookupAggregate(name string) (*AggregateSymbol, bool) {
	as, ok := dc.aggregates[strings.ToLower(name)]
	return as, ok
}

// hostTypes returns typ followed by its bases and interfaces.
func hostTypes(typ sql.Type) []sql.Type {
	ht, ok := typ.(*sql.HostType)
	if !ok {
		return []sql.Type{typ}
	}

	var types []sql.Type
	for t := ht; t != nil; t = t.Base {
		types = append(types, t)
		for _, it := range t.Interfaces {
			types = append(types, it)
		}
	}
	return types
}

// LookupProperties returns the properties named name of values of typ, including those
// of its base types.
func (dc *DataContext) LookupProperties(typ sql.Type, name string) []*PropertySymbol {
	for _, t := range hostTypes(typ) {
		var props []*PropertySymbol
		for _, ps := range dc.properties[t] {
			if strings.EqualFold(ps.Name(), name) {
				props = append(props, ps)
			}
		}
		if len(props) > 0 {
			return props
		}
	}
	return nil
}

// LookupMethods returns the overloads of the method named name of values of typ,
// including those of its base types.
func (dc *DataContext) LookupMethods(typ sql.Type, name string) []*MethodSymbol {
	var methods []*MethodSymbol
	for _, t := range hostTypes(typ) {
		for _, ms := range dc.methods[t] {
			if strings.EqualFold(ms.Name(), name) {
				methods = append(methods, ms)
			}
		}
	}
	return methods
}
