package engine_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/andreyvit/diff"

	"github.com/leftmike/nquery/datasource/bolt"
	"github.com/leftmike/nquery/datasource/memory"
	"github.com/leftmike/nquery/engine"
	"github.com/leftmike/nquery/flags"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/syntax"
	"github.com/leftmike/nquery/testutil"
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

	orders := memory.NewTable("Orders", []sql.Column{
		{Name: "Id", Type: sql.IntType},
		{Name: "CustomerId", Type: sql.IntType},
		{Name: "Total", Type: sql.DoubleType},
	})
	err = orders.Insert(
		[]sql.Value{int32(10), int32(1), 5.0},
		[]sql.Value{int32(11), int32(1), 7.5},
		[]sql.Value{int32(12), int32(2), 3.0},
	)
	if err != nil {
		t.Fatalf("Insert() failed with %s", err)
	}

	return symbols.NewDataContext().WithTables(customers, orders).
		WithVariable("limit", sql.IntType, int32(2))
}

func TestExecuteTable(t *testing.T) {
	dc := testDataContext(t)
	cases := []struct {
		s    string
		cols []sql.Column
		rows [][]sql.Value
	}{
		{
			s: "SELECT Id, Name FROM Customers WHERE Id >= @limit",
			cols: []sql.Column{
				{Name: "Id", Type: sql.IntType},
				{Name: "Name", Type: sql.StringType},
			},
			rows: [][]sql.Value{{int32(2), "bob"}, {int32(3), "carol"}},
		},
		{
			s: "SELECT c.Name, SUM(o.Total) AS Total FROM Customers AS c " +
				"INNER JOIN Orders AS o ON o.CustomerId = c.Id GROUP BY c.Name",
			cols: []sql.Column{
				{Name: "Name", Type: sql.StringType},
				{Name: "Total", Type: sql.DoubleType},
			},
			rows: [][]sql.Value{{"alice", 12.5}, {"bob", 3.0}},
		},
		{
			s:    "SELECT COUNT(*) AS n FROM Orders WHERE Total > 100",
			cols: []sql.Column{{Name: "n", Type: sql.IntType}},
			rows: [][]sql.Value{{int32(0)}},
		},
		{
			s:    "SELECT Id FROM Customers WHERE FALSE",
			cols: []sql.Column{{Name: "Id", Type: sql.IntType}},
			rows: [][]sql.Value{},
		},
	}

	for _, c := range cases {
		q, err := engine.NewQueryCompilation(dc, c.s).Compile()
		if err != nil {
			t.Errorf("Compile(%q) failed with %s", c.s, err)
			continue
		}
		if cols := q.Columns(); !testutil.DeepEqual(cols, c.cols) {
			t.Errorf("Columns(%q) got %v want %v", c.s, cols, c.cols)
		}

		tbl, err := q.ExecuteTable(context.Background())
		if err != nil {
			t.Errorf("ExecuteTable(%q) failed with %s", c.s, err)
			continue
		}
		if rows := tbl.Values(); !testutil.DeepEqual(rows, c.rows) {
			t.Errorf("ExecuteTable(%q) got %v want %v", c.s, rows, c.rows)
		}
	}
}

func TestExecuteScalar(t *testing.T) {
	dc := testDataContext(t)
	cases := []struct {
		s    string
		expr bool
		val  sql.Value
		fail bool
	}{
		{s: "1 + 2", expr: true, val: int32(3)},
		{s: "@limit * 10", expr: true, val: int32(20)},
		{s: "NULL", expr: true, val: nil},
		{s: "UPPER('abc')", expr: true, val: "ABC"},
		{s: "(SELECT MAX(Total) FROM Orders)", expr: true, val: 7.5},
		{s: "1 / 0", expr: true, fail: true},
		{s: "SELECT Name FROM Customers ORDER BY Id DESC", val: "carol"},
		{s: "SELECT Name FROM Customers WHERE Id > 100", val: nil},
	}

	for _, c := range cases {
		var comp *engine.Compilation
		if c.expr {
			comp = engine.NewExpressionCompilation(dc, c.s)
		} else {
			comp = engine.NewQueryCompilation(dc, c.s)
		}
		q, err := comp.Compile()
		if err != nil {
			t.Errorf("Compile(%q) failed with %s", c.s, err)
			continue
		}
		if q.IsExpression() != c.expr {
			t.Errorf("IsExpression(%q) got %v want %v", c.s, q.IsExpression(), c.expr)
		}

		val, err := q.ExecuteScalar(context.Background())
		if c.fail {
			if err == nil {
				t.Errorf("ExecuteScalar(%q) did not fail", c.s)
			}
		} else if err != nil {
			t.Errorf("ExecuteScalar(%q) failed with %s", c.s, err)
		} else if val != c.val {
			t.Errorf("ExecuteScalar(%q) got %v want %v", c.s, val, c.val)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	dc := testDataContext(t)
	s := "SELECT Nope FROM Customers )"
	comp := engine.NewQueryCompilation(dc, s)
	_, err := comp.Compile()
	if err == nil {
		t.Fatalf("Compile(%q) did not fail", s)
	}
	if !errors.Is(err, engine.ErrHasDiagnostics) {
		t.Errorf("Compile(%q) got %s want %s", s, err, engine.ErrHasDiagnostics)
	}

	var de *engine.DiagnosticsError
	if !errors.As(err, &de) {
		t.Fatalf("Compile(%q) got %T want *DiagnosticsError", s, err)
	}
	var ids []syntax.DiagnosticID
	for _, d := range de.Diagnostics {
		ids = append(ids, d.ID)
	}
	want := []syntax.DiagnosticID{syntax.TokenExpected, syntax.UndeclaredIdentifier}
	if !testutil.DeepEqual(ids, want) {
		t.Errorf("Compile(%q) got %v want %v", s, ids, want)
	}

	sm := comp.GetSemanticModel()
	if !testutil.DeepEqual(sm.GetDiagnostics(), de.Diagnostics) {
		t.Errorf("GetDiagnostics(%q) got %v want %v", s, sm.GetDiagnostics(), de.Diagnostics)
	}
	if comp.ShowPlanSteps() != nil {
		t.Errorf("ShowPlanSteps(%q) got steps for a compilation with diagnostics", s)
	}

	if got := engine.FormatDiagnostic(s, de.Diagnostics[1]); got[:4] != "1:8:" {
		t.Errorf("FormatDiagnostic(%q) got %s want 1:8: prefix", s, got)
	}
}

func TestSemanticModel(t *testing.T) {
	dc := testDataContext(t)
	comp := engine.NewQueryCompilation(dc, "SELECT Id AS x FROM Customers")
	sm := comp.GetSemanticModel()
	if sm.Compilation() != comp {
		t.Errorf("Compilation() did not return the compilation")
	}
	if len(sm.GetDiagnostics()) != 0 {
		t.Fatalf("GetDiagnostics() got %v", sm.GetDiagnostics())
	}

	sq := comp.Syntax.Root().Root.(*syntax.SelectQuery)
	esc := sq.Select.Columns.Items[0].(*syntax.ExpressionSelectColumn)
	if sym := sm.GetDeclaredSymbol(esc); sym == nil || sym.Name() != "x" {
		t.Errorf("GetDeclaredSymbol(x) got %v want x", sym)
	}
	if sym := sm.GetSymbol(esc.Expression); sym == nil || sym.Name() != "Id" {
		t.Errorf("GetSymbol(Id) got %v want Id", sym)
	}
	if typ := sm.GetExpressionType(esc.Expression); typ != sql.IntType {
		t.Errorf("GetExpressionType(Id) got %v want %s", typ, sql.IntType)
	}
	if sm.GetSymbol(nil) != nil || sm.GetDeclaredSymbol(nil) != nil ||
		sm.GetExpressionType(nil) != nil {

		t.Errorf("semantic model returned a result for a nil node")
	}
	if sm.GetExpressionType(sq) != nil {
		t.Errorf("GetExpressionType(query) got %v want nil", sm.GetExpressionType(sq))
	}
	if comp.GetSemanticModel() != sm {
		t.Errorf("GetSemanticModel() bound the compilation twice")
	}
}

func TestShowPlanSteps(t *testing.T) {
	dc := testDataContext(t)
	s := "SELECT Id FROM Customers WHERE TRUE"
	bound := `Compute
  | Id:3 := Id:1
    Filter
      | true
        Table Customers
          | Id:1, Name:2
`
	simplified := `Compute
  | Id:3 := Id:1
    Table Customers
      | Id:1, Name:2
`

	steps := engine.NewQueryCompilation(dc, s).ShowPlanSteps()
	if len(steps) != 2 {
		t.Fatalf("ShowPlanSteps(%q) got %d steps want 2", s, len(steps))
	}
	if steps[0].Name != "Bound" || steps[0].Plan != bound {
		t.Errorf("ShowPlanSteps(%q)[0] got %s:\n%s\ndiff:\n%s", s, steps[0].Name,
			steps[0].Plan, diff.LineDiff(bound, steps[0].Plan))
	}
	if steps[1].Name != "Simplified" || steps[1].Plan != simplified {
		t.Errorf("ShowPlanSteps(%q)[1] got %s:\n%s\ndiff:\n%s", s, steps[1].Name,
			steps[1].Plan, diff.LineDiff(simplified, steps[1].Plan))
	}

	q, err := engine.NewQueryCompilation(dc, s).Compile()
	if err != nil {
		t.Fatalf("Compile(%q) failed with %s", s, err)
	}
	if plan := q.ShowPlan(); plan != simplified {
		t.Errorf("ShowPlan(%q) got:\n%s\ndiff:\n%s", s, plan, diff.LineDiff(simplified, plan))
	}

	comp := engine.NewQueryCompilation(dc, s)
	comp.Flags = flags.Default()
	comp.Flags[flags.Rewrite] = false
	q, err = comp.Compile()
	if err != nil {
		t.Fatalf("Compile(%q) failed with %s", s, err)
	}
	if plan := q.ShowPlan(); plan != bound {
		t.Errorf("ShowPlan(%q) without rewrite got:\n%s\ndiff:\n%s", s, plan,
			diff.LineDiff(bound, plan))
	}
	if len(comp.ShowPlanSteps()) != 1 {
		t.Errorf("ShowPlanSteps(%q) without rewrite got %d steps want 1", s,
			len(comp.ShowPlanSteps()))
	}
}

func TestReader(t *testing.T) {
	dc := testDataContext(t)
	q, err := engine.NewQueryCompilation(dc, "SELECT Name, Id FROM Customers").Compile()
	if err != nil {
		t.Fatalf("Compile() failed with %s", err)
	}

	ctx := context.Background()
	r, err := q.CreateReader(ctx)
	if err != nil {
		t.Fatalf("CreateReader() failed with %s", err)
	}
	if _, err := r.NextRow(); err == nil {
		t.Errorf("NextRow() before Start() did not fail")
	}

	for pass := 0; pass < 2; pass++ {
		err = r.Start()
		if err != nil {
			t.Fatalf("Start() failed with %s", err)
		}
		var names []sql.Value
		for {
			ok, err := r.NextRow()
			if err != nil {
				t.Fatalf("NextRow() failed with %s", err)
			} else if !ok {
				break
			}
			names = append(names, r.Value(0))
			if _, ok := r.Value(1).(int32); !ok {
				t.Errorf("Value(1) got %T want int32", r.Value(1))
			}
		}
		want := []sql.Value{"alice", "bob", "carol"}
		if !testutil.DeepEqual(names, want) {
			t.Errorf("Reader pass %d got %v want %v", pass, names, want)
		}
	}

	if err := r.Close(); err != nil {
		t.Errorf("Close() failed with %s", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() twice failed with %s", err)
	}
	if _, err := r.NextRow(); err == nil {
		t.Errorf("NextRow() after Close() did not fail")
	}

	q, err = engine.NewExpressionCompilation(dc, "1").Compile()
	if err != nil {
		t.Fatalf("Compile() failed with %s", err)
	}
	if _, err := q.CreateReader(ctx); err == nil {
		t.Errorf("CreateReader() of an expression did not fail")
	}
}

func TestBoltEarlyClose(t *testing.T) {
	err := testutil.CleanDir("testdata", ".gitignore")
	if err != nil {
		t.Fatalf("CleanDir() failed with %s", err)
	}
	bdb, err := bolt.Open(filepath.Join("testdata", "early.db"))
	if err != nil {
		t.Fatalf("Open() failed with %s", err)
	}
	defer bdb.Close()

	err = bdb.CreateTable("Numbers", []sql.Column{{Name: "N", Type: sql.LongType}})
	if err != nil {
		t.Fatalf("CreateTable() failed with %s", err)
	}
	for n := 0; n < 10; n++ {
		err = bdb.Insert("Numbers", []sql.Value{int64(n)})
		if err != nil {
			t.Fatalf("Insert() failed with %s", err)
		}
	}
	tbls, err := bdb.Tables()
	if err != nil {
		t.Fatalf("Tables() failed with %s", err)
	}

	dc := symbols.NewDataContext().WithTables(tbls...)
	q, err := engine.NewQueryCompilation(dc, "SELECT N FROM Numbers WHERE N > 3").Compile()
	if err != nil {
		t.Fatalf("Compile() failed with %s", err)
	}
	r, err := q.CreateReader(context.Background())
	if err != nil {
		t.Fatalf("CreateReader() failed with %s", err)
	}
	err = r.Start()
	if err != nil {
		t.Fatalf("Start() failed with %s", err)
	}
	ok, err := r.NextRow()
	if err != nil || !ok {
		t.Fatalf("NextRow() got %v, %v want true", ok, err)
	}
	if r.Value(0) != int64(4) {
		t.Errorf("Value(0) got %v want 4", r.Value(0))
	}
	if n := bdb.OpenReads(); n != 1 {
		t.Errorf("OpenReads() got %d want 1", n)
	}
	err = r.Close()
	if err != nil {
		t.Errorf("Close() failed with %s", err)
	}
	if n := bdb.OpenReads(); n != 0 {
		t.Errorf("OpenReads() got %d want 0 after Close()", n)
	}

	val, err := q.ExecuteScalar(context.Background())
	if err != nil || val != int64(4) {
		t.Errorf("ExecuteScalar() got %v, %v want 4", val, err)
	}
	if n := bdb.OpenReads(); n != 0 {
		t.Errorf("OpenReads() got %d want 0 after ExecuteScalar()", n)
	}
}
