package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leftmike/nquery/config"
	"github.com/leftmike/nquery/datasource/bolt"
	"github.com/leftmike/nquery/engine"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/testutil"
)

const (
	hclCatalog = `
variable "limit" {
	type = "int"
	value = 2
}

table "Customers" {
	column "Id" {
		type = "int"
	}
	column "Name" {
		type = "string"
	}
	rows = [
		[1, "alice"],
		[2, "bob"],
		[3, "carol"],
	]
}
`

	yamlCatalog = `
variables:
  - name: limit
    type: int
    value: 2
tables:
  - name: Customers
    columns:
      - name: Id
        type: int
      - name: Name
        type: string
    rows:
      - [1, alice]
      - [2, bob]
      - [3, carol]
      - [4, null]
`
)

func query(t *testing.T, dc *symbols.DataContext, s string) [][]sql.Value {
	t.Helper()

	q, err := engine.NewQueryCompilation(dc, s).Compile()
	if err != nil {
		t.Fatalf("Compile(%q) failed with %s", s, err)
	}
	tbl, err := q.ExecuteTable(context.Background())
	if err != nil {
		t.Fatalf("ExecuteTable(%q) failed with %s", s, err)
	}
	return tbl.Values()
}

func TestParseCatalog(t *testing.T) {
	cases := []struct {
		name string
		cat  string
		rows [][]sql.Value
	}{
		{
			name: "catalog.hcl",
			cat:  hclCatalog,
			rows: [][]sql.Value{{int32(2), "bob"}, {int32(3), "carol"}},
		},
		{
			name: "catalog.yaml",
			cat:  yamlCatalog,
			rows: [][]sql.Value{{int32(2), "bob"}, {int32(3), "carol"}, {int32(4), nil}},
		},
	}

	for _, c := range cases {
		cat, err := config.ParseCatalog(c.name, []byte(c.cat))
		if err != nil {
			t.Errorf("ParseCatalog(%s) failed with %s", c.name, err)
			continue
		}
		ld, err := cat.Load(symbols.NewDataContext())
		if err != nil {
			t.Errorf("Load(%s) failed with %s", c.name, err)
			continue
		}

		rows := query(t, ld.DataContext, "SELECT Id, Name FROM Customers WHERE Id >= @limit")
		if !testutil.DeepEqual(rows, c.rows) {
			t.Errorf("Load(%s) got %v want %v", c.name, rows, c.rows)
		}
		err = ld.Close()
		if err != nil {
			t.Errorf("Close(%s) failed with %s", c.name, err)
		}
	}
}

func TestParseCatalogErrors(t *testing.T) {
	cases := []struct {
		name string
		cat  string
	}{
		{name: "catalog.json", cat: "{}"},
		{name: "catalog.hcl", cat: `table "t" {`},
		{name: "catalog.yaml", cat: "tables: [name: t"},
		{name: "catalog.yaml", cat: "tabels: []"},
		{
			name: "catalog.yaml",
			cat:  "variables:\n  - name: v\n    type: nope\n",
		},
		{
			name: "catalog.yaml",
			cat:  "tables:\n  - name: t\n",
		},
		{
			name: "catalog.yaml",
			cat: "tables:\n  - name: t\n    columns:\n      - name: c\n        type: int\n" +
				"    rows:\n      - [1, 2]\n",
		},
		{
			name: "catalog.yaml",
			cat: "tables:\n  - name: t\n    columns:\n      - name: c\n        type: int\n" +
				"  - name: T\n    columns:\n      - name: c\n        type: int\n",
		},
		{
			name: "catalog.yaml",
			cat:  "databases:\n  - name: db\n",
		},
	}

	for _, c := range cases {
		_, err := config.ParseCatalog(c.name, []byte(c.cat))
		if err == nil {
			t.Errorf("ParseCatalog(%s, %q) did not fail", c.name, c.cat)
		}
	}

	cat, err := config.ParseCatalog("catalog.yaml", []byte(
		"tables:\n  - name: t\n    columns:\n      - name: c\n        type: int\n"+
			"    rows:\n      - [abc]\n"))
	if err != nil {
		t.Fatalf("ParseCatalog() failed with %s", err)
	}
	if _, err := cat.Load(symbols.NewDataContext()); err == nil {
		t.Errorf("Load() did not fail converting abc to an int")
	}
}

func TestLoadDatabase(t *testing.T) {
	err := testutil.CleanDir("testdata", ".gitignore")
	if err != nil {
		t.Fatalf("CleanDir() failed with %s", err)
	}

	bdb, err := bolt.Open(filepath.Join("testdata", "sales.db"))
	if err != nil {
		t.Fatalf("Open() failed with %s", err)
	}
	err = bdb.CreateTable("Orders", []sql.Column{
		{Name: "Id", Type: sql.IntType},
		{Name: "Total", Type: sql.DoubleType},
	})
	if err != nil {
		t.Fatalf("CreateTable() failed with %s", err)
	}
	err = bdb.Insert("Orders", []sql.Value{int32(1), 2.5}, []sql.Value{int32(2), 4.0})
	if err != nil {
		t.Fatalf("Insert() failed with %s", err)
	}
	err = bdb.Close()
	if err != nil {
		t.Fatalf("Close() failed with %s", err)
	}

	cat, err := config.ParseCatalog(filepath.Join("testdata", "catalog.yaml"),
		[]byte("databases:\n  - name: sales\n    path: sales.db\n"))
	if err != nil {
		t.Fatalf("ParseCatalog() failed with %s", err)
	}
	ld, err := cat.Load(symbols.NewDataContext())
	if err != nil {
		t.Fatalf("Load() failed with %s", err)
	}
	defer ld.Close()

	rows := query(t, ld.DataContext, "SELECT SUM(Total) AS Total FROM Orders")
	want := [][]sql.Value{{6.5}}
	if !testutil.DeepEqual(rows, want) {
		t.Errorf("Load() got %v want %v", rows, want)
	}
}
