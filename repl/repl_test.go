package repl_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/leftmike/nquery/datasource/memory"
	"github.com/leftmike/nquery/flags"
	"github.com/leftmike/nquery/repl"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
)

func testDataContext(t *testing.T) *symbols.DataContext {
	t.Helper()

	customers := memory.NewTable("Customers", []sql.Column{
		{Name: "Id", Type: sql.IntType},
		{Name: "Name", Type: sql.StringType},
	})
	err := customers.Insert(
		[]sql.Value{int32(1), "alice"},
		[]sql.Value{int32(2), "bob"},
		[]sql.Value{int32(3), "carol"},
	)
	if err != nil {
		t.Fatalf("Insert() failed with %s", err)
	}
	return symbols.NewDataContext().WithTables(customers).
		WithVariable("limit", sql.IntType, int32(2))
}

func TestReplSQL(t *testing.T) {
	cases := []struct {
		s       string
		want    []string
		notWant []string
	}{
		{
			s:       "SELECT Id, Name FROM Customers WHERE Id >= @limit",
			want:    []string{"Name", "bob", "carol", "(2 rows)"},
			notWant: []string{"alice"},
		},
		{
			s:    "SELECT Id FROM Customers WHERE FALSE;",
			want: []string{"(0 rows)"},
		},
		{
			s:    `\eval 1 + 2`,
			want: []string{"3\n"},
		},
		{
			s:    `\eval UPPER('abc')`,
			want: []string{"ABC\n"},
		},
		{
			s:    `\tables`,
			want: []string{"Customers(Id Int32, Name String)\n"},
		},
		{
			s:    `\variables`,
			want: []string{"@limit Int32 = 2\n"},
		},
		{
			s:    `\plan SELECT Name FROM Customers WHERE TRUE`,
			want: []string{"Bound:\n", "Simplified:\n", "Table Customers"},
		},
		{
			s:    "SELECT Nope FROM Customers",
			want: []string{"1:8: UndeclaredIdentifier: Nope is not declared\n"},
		},
		{
			s:    `\bogus 1`,
			want: []string{`repl: unknown command: \bogus`},
		},
		{
			s:    "SELECT 1 AS One; SELECT 'two' AS Two; -- done",
			want: []string{"One", "Two", "two", "(1 rows)"},
		},
	}

	dc := testDataContext(t)
	for _, c := range cases {
		var buf bytes.Buffer
		repl.ReplSQL(context.Background(), dc, flags.Default(), strings.NewReader(c.s), &buf)
		out := buf.String()
		for _, w := range c.want {
			if !strings.Contains(out, w) {
				t.Errorf("ReplSQL(%q) got %q want %q", c.s, out, w)
			}
		}
		for _, nw := range c.notWant {
			if strings.Contains(out, nw) {
				t.Errorf("ReplSQL(%q) got %q did not want %q", c.s, out, nw)
			}
		}
	}
}
