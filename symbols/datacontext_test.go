package symbols_test

import (
	"testing"
	"time"

	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
)

func TestDataContextWith(t *testing.T) {
	dc := symbols.EmptyDataContext()
	dc1 := dc.WithTables(orders, customers)
	dc2 := dc1.WithVariable("Limit", sql.IntType, int32(10))

	if len(dc.Tables()) != 0 {
		t.Errorf("Tables() of the empty context got %d tables", len(dc.Tables()))
	}
	tables := dc1.Tables()
	if len(tables) != 2 || tables[0].Name() != "Customers" || tables[1].Name() != "Orders" {
		t.Errorf("Tables() got %v want [Customers Orders]", tables)
	}
	if _, ok := dc1.LookupVariable("limit"); ok {
		t.Errorf("LookupVariable(limit) found variable before WithVariable")
	}
	vs, ok := dc2.LookupVariable("LIMIT")
	if !ok || vs.Value() != int32(10) || vs.Type() != sql.IntType {
		t.Errorf("LookupVariable(LIMIT) got %v, %v", vs, ok)
	}
	if len(dc2.Variables()) != 1 {
		t.Errorf("Variables() got %v want one variable", dc2.Variables())
	}

	fs := symbols.NewFunctionSymbol("Twice", []sql.Type{sql.IntType}, sql.IntType,
		func(args []sql.Value) (sql.Value, error) {
			return args[0].(int32) * 2, nil
		})
	dc3 := dc2.WithFunction(fs)
	if len(dc2.LookupFunctions("twice")) != 0 {
		t.Errorf("LookupFunctions(twice) found function before WithFunction")
	}
	if fns := dc3.LookupFunctions("TWICE"); len(fns) != 1 || fns[0] != fs {
		t.Errorf("LookupFunctions(TWICE) got %v want [%v]", fns, fs)
	}
}

func TestBuiltinFunctions(t *testing.T) {
	dc := symbols.NewDataContext()

	cases := []struct {
		name string
		args []sql.Value
		want sql.Value
	}{
		{"ABS", []sql.Value{int32(-3)}, int32(3)},
		{"ABS", []sql.Value{-2.5}, 2.5},
		{"LEN", []sql.Value{"héllo"}, int32(5)},
		{"UPPER", []sql.Value{"abc é"}, "ABC É"},
		{"LOWER", []sql.Value{"ABC"}, "abc"},
		{"TRIM", []sql.Value{"  abc  "}, "abc"},
		{"LTRIM", []sql.Value{"  abc  "}, "abc  "},
		{"RTRIM", []sql.Value{"  abc  "}, "  abc"},
		{"SUBSTRING", []sql.Value{"abcdef", int64(2)}, "bcdef"},
		{"SUBSTRING", []sql.Value{"abcdef", int64(2), int64(3)}, "bcd"},
		{"SUBSTRING", []sql.Value{"abcdef", int64(10), int64(3)}, ""},
		{"REPLACE", []sql.Value{"a-b-c", "-", "+"}, "a+b+c"},
		{"ROUND", []sql.Value{2.5}, 3.0},
		{"ROUND", []sql.Value{1.2345, int32(2)}, 1.23},
		{"FLOOR", []sql.Value{-1.5}, -2.0},
		{"CEILING", []sql.Value{1.1}, 2.0},
		{"POWER", []sql.Value{2.0, 10.0}, 1024.0},
		{"SQRT", []sql.Value{9.0}, 3.0},
		{"TO_STRING", []sql.Value{true}, "true"},
		{"NORMALIZE", []sql.Value{"e\u0301"}, "\u00e9"},
	}

	for _, c := range cases {
		var fs *symbols.FunctionSymbol
		for _, f := range dc.LookupFunctions(c.name) {
			if f.ParameterCount() != len(c.args) {
				continue
			}
			match := true
			for i, arg := range c.args {
				pt := f.ParameterType(i)
				if pt != sql.ObjectType && sql.TypeOf(arg) != pt {
					match = false
				}
			}
			if match {
				fs = f
				break
			}
		}
		if fs == nil {
			t.Errorf("LookupFunctions(%s) no overload for %v", c.name, c.args)
			continue
		}
		ret, err := fs.Invoke(c.args)
		if err != nil {
			t.Errorf("%s(%v) failed with %s", c.name, c.args, err)
		} else if ret != c.want {
			t.Errorf("%s(%v) got %v want %v", c.name, c.args, ret, c.want)
		}
	}

	sqrt := dc.LookupFunctions("sqrt")[0]
	if _, err := sqrt.Invoke([]sql.Value{-1.0}); err == nil {
		t.Errorf("SQRT(-1) did not fail")
	}
}

func TestBuiltinPropertiesAndMethods(t *testing.T) {
	dc := symbols.NewDataContext()

	props := dc.LookupProperties(sql.StringType, "length")
	if len(props) != 1 {
		t.Fatalf("LookupProperties(String, length) got %v", props)
	}
	if v, err := props[0].Get("abc"); err != nil || v != int32(3) {
		t.Errorf("Length(abc) got %v, %v want 3", v, err)
	}

	d := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	for _, c := range []struct {
		name string
		want int32
	}{
		{"Year", 2024},
		{"month", 3},
		{"DAY", 9},
	} {
		props := dc.LookupProperties(sql.DateType, c.name)
		if len(props) != 1 {
			t.Errorf("LookupProperties(DateTime, %s) got %v", c.name, props)
			continue
		}
		if v, err := props[0].Get(d); err != nil || v != c.want {
			t.Errorf("%s(%v) got %v, %v want %d", c.name, d, v, err, c.want)
		}
	}

	if methods := dc.LookupMethods(sql.StringType, "substring"); len(methods) != 2 {
		t.Errorf("LookupMethods(String, substring) got %d overloads want 2", len(methods))
	}
	if methods := dc.LookupMethods(sql.IntType, "substring"); len(methods) != 0 {
		t.Errorf("LookupMethods(Int32, substring) got %v", methods)
	}

	idx := dc.LookupMethods(sql.StringType, "IndexOf")[0]
	if v, err := idx.Invoke("héllo", []sql.Value{"llo"}); err != nil || v != int32(2) {
		t.Errorf("IndexOf(héllo, llo) got %v, %v want 2", v, err)
	}
}

func TestHostTypeProperties(t *testing.T) {
	animal := &sql.HostType{Name: "Animal"}
	dog := &sql.HostType{Name: "Dog", Base: animal}

	legs := symbols.NewPropertySymbol("Legs", sql.IntType,
		func(v sql.Value) (sql.Value, error) {
			return int32(4), nil
		})
	dc := symbols.EmptyDataContext().WithProperty(animal, legs)

	if props := dc.LookupProperties(dog, "legs"); len(props) != 1 || props[0] != legs {
		t.Errorf("LookupProperties(Dog, legs) got %v want [%v]", props, legs)
	}
	if props := dc.LookupProperties(sql.StringType, "legs"); len(props) != 0 {
		t.Errorf("LookupProperties(String, legs) got %v", props)
	}
}
