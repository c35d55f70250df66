package symbols

import (
	"fmt"
	"strings"

	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/syntax"
)

type SymbolKind int

const (
	TableKind SymbolKind = iota
	DerivedTableKind
	CommonTableExpressionKind
	TableInstanceKind
	ColumnKind
	ColumnInstanceKind
	SelectColumnKind
	VariableKind
	FunctionKind
	AggregateKind
	PropertyKind
	MethodKind
)

var symbolKindNames = [...]string{
	TableKind:                 "Table",
	DerivedTableKind:          "DerivedTable",
	CommonTableExpressionKind: "CommonTableExpression",
	TableInstanceKind:         "TableInstance",
	ColumnKind:                "Column",
	ColumnInstanceKind:        "ColumnInstance",
	SelectColumnKind:          "SelectColumn",
	VariableKind:              "Variable",
	FunctionKind:              "Function",
	AggregateKind:             "Aggregate",
	PropertyKind:              "Property",
	MethodKind:                "Method",
}

func (sk SymbolKind) String() string {
	return symbolKindNames[sk]
}

// Symbol is a named, typed entity that names in a query resolve to. Symbols are
// immutable once created.
type Symbol interface {
	Kind() SymbolKind
	Name() string
	Type() sql.Type
	String() string
	symbol()
}

// TableSymbol is a schema table, a derived table, or a common table expression.
type TableSymbol interface {
	Symbol
	Columns() []*ColumnSymbol
}

type ColumnSymbol struct {
	name    string
	typ     sql.Type
	ordinal int
}

func NewColumnSymbol(name string, typ sql.Type, ordinal int) *ColumnSymbol {
	return &ColumnSymbol{
		name:    name,
		typ:     typ,
		ordinal: ordinal,
	}
}

func (*ColumnSymbol) Kind() SymbolKind  { return ColumnKind }
func (cs *ColumnSymbol) Name() string   { return cs.name }
func (cs *ColumnSymbol) Type() sql.Type { return cs.typ }
func (cs *ColumnSymbol) Ordinal() int   { return cs.ordinal }
func (cs *ColumnSymbol) String() string { return cs.name }
func (*ColumnSymbol) symbol()           {}

func columnsString(name string, cols []*ColumnSymbol) string {
	var buf strings.Builder
	buf.WriteString(name)
	buf.WriteByte('(')
	for cdx, col := range cols {
		if cdx > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s %s", col.name, col.typ)
	}
	buf.WriteByte(')')
	return buf.String()
}

// SchemaTableSymbol is a table of the catalog backed by a data source.
type SchemaTableSymbol struct {
	table   sql.Table
	columns []*ColumnSymbol
}

func NewSchemaTableSymbol(tbl sql.Table) *SchemaTableSymbol {
	sts := &SchemaTableSymbol{
		table: tbl,
	}
	for cdx, col := range tbl.Columns() {
		sts.columns = append(sts.columns, NewColumnSymbol(col.Name, col.Type, cdx))
	}
	return sts
}

func (*SchemaTableSymbol) Kind() SymbolKind             { return TableKind }
func (sts *SchemaTableSymbol) Name() string             { return sts.table.Name() }
func (*SchemaTableSymbol) Type() sql.Type               { return sql.ObjectType }
func (sts *SchemaTableSymbol) Columns() []*ColumnSymbol { return sts.columns }
func (sts *SchemaTableSymbol) Table() sql.Table         { return sts.table }
func (*SchemaTableSymbol) symbol()                      {}

func (sts *SchemaTableSymbol) String() string {
	return columnsString(sts.table.Name(), sts.columns)
}

// DerivedTableSymbol is the anonymous schema of a query used as a table reference.
type DerivedTableSymbol struct {
	name    string
	columns []*ColumnSymbol
}

func NewDerivedTableSymbol(name string, cols []*ColumnSymbol) *DerivedTableSymbol {
	return &DerivedTableSymbol{
		name:    name,
		columns: cols,
	}
}

func (*DerivedTableSymbol) Kind() SymbolKind             { return DerivedTableKind }
func (dts *DerivedTableSymbol) Name() string             { return dts.name }
func (*DerivedTableSymbol) Type() sql.Type               { return sql.UnknownType }
func (dts *DerivedTableSymbol) Columns() []*ColumnSymbol { return dts.columns }
func (*DerivedTableSymbol) symbol()                      {}

func (dts *DerivedTableSymbol) String() string {
	return columnsString(dts.name, dts.columns)
}

// CommonTableExpressionSymbol is declared by WITH; each reference binds the query again
// so every instance gets its own value slots.
type CommonTableExpressionSymbol struct {
	name    string
	columns []*ColumnSymbol
	syntax  *syntax.CommonTableExpression
}

func NewCommonTableExpressionSymbol(name string, cols []*ColumnSymbol,
	cte *syntax.CommonTableExpression) *CommonTableExpressionSymbol {

	return &CommonTableExpressionSymbol{
		name:    name,
		columns: cols,
		syntax:  cte,
	}
}

func (*CommonTableExpressionSymbol) Kind() SymbolKind  { return CommonTableExpressionKind }
func (ctes *CommonTableExpressionSymbol) Name() string { return ctes.name }
func (*CommonTableExpressionSymbol) Type() sql.Type    { return sql.UnknownType }
func (*CommonTableExpressionSymbol) symbol()           {}

func (ctes *CommonTableExpressionSymbol) Columns() []*ColumnSymbol {
	return ctes.columns
}

func (ctes *CommonTableExpressionSymbol) Syntax() *syntax.CommonTableExpression {
	return ctes.syntax
}

func (ctes *CommonTableExpressionSymbol) String() string {
	return columnsString(ctes.name, ctes.columns)
}

// TableInstanceSymbol is a table introduced into a query by FROM, under its alias.
type TableInstanceSymbol struct {
	name    string
	table   TableSymbol
	syntax  syntax.Node
	columns []*TableColumnInstanceSymbol
}

// NewTableInstanceSymbol creates the instance and a column instance for each column of
// the table; slot returns the value slot for each column.
func NewTableInstanceSymbol(name string, tbl TableSymbol, decl syntax.Node,
	slot func(col *ColumnSymbol) *ValueSlot) *TableInstanceSymbol {

	tis := &TableInstanceSymbol{
		name:   name,
		table:  tbl,
		syntax: decl,
	}
	for _, col := range tbl.Columns() {
		tis.columns = append(tis.columns, &TableColumnInstanceSymbol{
			instance: tis,
			column:   col,
			slot:     slot(col),
		})
	}
	return tis
}

func (*TableInstanceSymbol) Kind() SymbolKind   { return TableInstanceKind }
func (tis *TableInstanceSymbol) Name() string   { return tis.name }
func (tis *TableInstanceSymbol) Type() sql.Type { return tis.table.Type() }
func (*TableInstanceSymbol) symbol()            {}

func (tis *TableInstanceSymbol) Table() TableSymbol {
	return tis.table
}

// Syntax is the table reference which introduced the instance.
func (tis *TableInstanceSymbol) Syntax() syntax.Node {
	return tis.syntax
}

func (tis *TableInstanceSymbol) ColumnInstances() []*TableColumnInstanceSymbol {
	return tis.columns
}

// LookupColumnInstance finds a column by name, ignoring case.
func (tis *TableInstanceSymbol) LookupColumnInstance(name string) []*TableColumnInstanceSymbol {
	var cols []*TableColumnInstanceSymbol
	for _, col := range tis.columns {
		if strings.EqualFold(col.Name(), name) {
			cols = append(cols, col)
		}
	}
	return cols
}

func (tis *TableInstanceSymbol) String() string {
	if strings.EqualFold(tis.name, tis.table.Name()) {
		return tis.name
	}
	return fmt.Sprintf("%s AS %s", tis.table.Name(), tis.name)
}

type TableColumnInstanceSymbol struct {
	instance *TableInstanceSymbol
	column   *ColumnSymbol
	slot     *ValueSlot
}

func (*TableColumnInstanceSymbol) Kind() SymbolKind           { return ColumnInstanceKind }
func (tcis *TableColumnInstanceSymbol) Name() string          { return tcis.column.name }
func (tcis *TableColumnInstanceSymbol) Type() sql.Type        { return tcis.column.typ }
func (tcis *TableColumnInstanceSymbol) Column() *ColumnSymbol { return tcis.column }
func (tcis *TableColumnInstanceSymbol) ValueSlot() *ValueSlot { return tcis.slot }
func (*TableColumnInstanceSymbol) symbol()                    {}

func (tcis *TableColumnInstanceSymbol) TableInstance() *TableInstanceSymbol {
	return tcis.instance
}

func (tcis *TableColumnInstanceSymbol) String() string {
	return fmt.Sprintf("%s.%s", tcis.instance.name, tcis.column.name)
}

// QueryColumnInstanceSymbol is a column of a select list.
type QueryColumnInstanceSymbol struct {
	name string
	slot *ValueSlot
}

func NewQueryColumnInstanceSymbol(name string, slot *ValueSlot) *QueryColumnInstanceSymbol {
	return &QueryColumnInstanceSymbol{
		name: name,
		slot: slot,
	}
}

func (*QueryColumnInstanceSymbol) Kind() SymbolKind           { return SelectColumnKind }
func (qcis *QueryColumnInstanceSymbol) Name() string          { return qcis.name }
func (qcis *QueryColumnInstanceSymbol) Type() sql.Type        { return qcis.slot.Type() }
func (qcis *QueryColumnInstanceSymbol) ValueSlot() *ValueSlot { return qcis.slot }
func (qcis *QueryColumnInstanceSymbol) String() string        { return qcis.name }
func (*QueryColumnInstanceSymbol) symbol()                    {}

type VariableSymbol struct {
	name  string
	typ   sql.Type
	value sql.Value
}

func NewVariableSymbol(name string, typ sql.Type, val sql.Value) *VariableSymbol {
	return &VariableSymbol{
		name:  name,
		typ:   typ,
		value: val,
	}
}

func (*VariableSymbol) Kind() SymbolKind    { return VariableKind }
func (vs *VariableSymbol) Name() string     { return vs.name }
func (vs *VariableSymbol) Type() sql.Type   { return vs.typ }
func (vs *VariableSymbol) Value() sql.Value { return vs.value }
func (vs *VariableSymbol) String() string   { return "@" + vs.name }
func (*VariableSymbol) symbol()             {}

// FunctionSymbol is one overload of a scalar function. Functions are not called with
// NULL arguments: the result of a call with any NULL argument is NULL.
type FunctionSymbol struct {
	name   string
	params []sql.Type
	ret    sql.Type
	fn     func(args []sql.Value) (sql.Value, error)
}

func NewFunctionSymbol(name string, params []sql.Type, ret sql.Type,
	fn func(args []sql.Value) (sql.Value, error)) *FunctionSymbol {

	return &FunctionSymbol{
		name:   name,
		params: params,
		ret:    ret,
		fn:     fn,
	}
}

func (*FunctionSymbol) Kind() SymbolKind                { return FunctionKind }
func (fs *FunctionSymbol) Name() string                 { return fs.name }
func (fs *FunctionSymbol) Type() sql.Type               { return fs.ret }
func (fs *FunctionSymbol) ParameterCount() int          { return len(fs.params) }
func (fs *FunctionSymbol) ParameterType(i int) sql.Type { return fs.params[i] }
func (fs *FunctionSymbol) ReturnType() sql.Type         { return fs.ret }
func (*FunctionSymbol) symbol()                         {}

func (fs *FunctionSymbol) Invoke(args []sql.Value) (sql.Value, error) {
	return fs.fn(args)
}

func (fs *FunctionSymbol) String() string {
	return signatureString(fs.name, fs.params, fs.ret)
}

func signatureString(name string, params []sql.Type, ret sql.Type) string {
	var buf strings.Builder
	buf.WriteString(name)
	buf.WriteByte('(')
	for pdx, param := range params {
		if pdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(param.String())
	}
	fmt.Fprintf(&buf, ") %s", ret)
	return buf.String()
}

type AggregateSymbol struct {
	name string
	agg  Aggregate
}

func NewAggregateSymbol(name string, agg Aggregate) *AggregateSymbol {
	return &AggregateSymbol{
		name: name,
		agg:  agg,
	}
}

func (*AggregateSymbol) Kind() SymbolKind  { return AggregateKind }
func (as *AggregateSymbol) Name() string   { return as.name }
func (*AggregateSymbol) Type() sql.Type    { return sql.UnknownType }
func (as *AggregateSymbol) String() string { return as.name }
func (*AggregateSymbol) symbol()           {}

// Bind returns the aggregate for an argument type, or false if the aggregate can not be
// applied to values of the type.
func (as *AggregateSymbol) Bind(argType sql.Type) (Aggregatable, bool) {
	return as.agg.Bind(argType)
}

// PropertySymbol is a property of values of a type, such as the Length of a string.
type PropertySymbol struct {
	name string
	typ  sql.Type
	get  func(v sql.Value) (sql.Value, error)
}

func NewPropertySymbol(name string, typ sql.Type,
	get func(v sql.Value) (sql.Value, error)) *PropertySymbol {

	return &PropertySymbol{
		name: name,
		typ:  typ,
		get:  get,
	}
}

func (*PropertySymbol) Kind() SymbolKind  { return PropertyKind }
func (ps *PropertySymbol) Name() string   { return ps.name }
func (ps *PropertySymbol) Type() sql.Type { return ps.typ }
func (ps *PropertySymbol) String() string { return fmt.Sprintf("%s %s", ps.name, ps.typ) }
func (*PropertySymbol) symbol()           {}

func (ps *PropertySymbol) Get(v sql.Value) (sql.Value, error) {
	return ps.get(v)
}

// MethodSymbol is one overload of a method of values of a type.
type MethodSymbol struct {
	name   string
	params []sql.Type
	ret    sql.Type
	fn     func(target sql.Value, args []sql.Value) (sql.Value, error)
}

func NewMethodSymbol(name string, params []sql.Type, ret sql.Type,
	fn func(target sql.Value, args []sql.Value) (sql.Value, error)) *MethodSymbol {

	return &MethodSymbol{
		name:   name,
		params: params,
		ret:    ret,
		fn:     fn,
	}
}

func (*MethodSymbol) Kind() SymbolKind                { return MethodKind }
func (ms *MethodSymbol) Name() string                 { return ms.name }
func (ms *MethodSymbol) Type() sql.Type               { return ms.ret }
func (ms *MethodSymbol) ParameterCount() int          { return len(ms.params) }
func (ms *MethodSymbol) ParameterType(i int) sql.Type { return ms.params[i] }
func (ms *MethodSymbol) ReturnType() sql.Type         { return ms.ret }
func (*MethodSymbol) symbol()                         {}

func (ms *MethodSymbol) Invoke(target sql.Value, args []sql.Value) (sql.Value, error) {
	return ms.fn(target, args)
}

func (ms *MethodSymbol) String() string {
	return signatureString(ms.name, ms.params, ms.ret)
}
