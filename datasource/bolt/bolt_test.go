package bolt_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/leftmike/nquery/datasource/bolt"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/testutil"
)

func openDB(t *testing.T, nam string) *bolt.DB {
	t.Helper()

	err := testutil.CleanDir("testdata", ".gitignore")
	if err != nil {
		t.Fatalf("CleanDir() failed with %s", err)
	}
	bdb, err := bolt.Open(filepath.Join("testdata", nam))
	if err != nil {
		t.Fatalf("Open() failed with %s", err)
	}
	return bdb
}

var (
	testColumns = []sql.Column{
		{Name: "Id", Type: sql.IntType},
		{Name: "Code", Type: sql.CharType},
		{Name: "Weight", Type: sql.FloatType},
		{Name: "Active", Type: sql.BooleanType},
		{Name: "Created", Type: sql.DateType},
		{Name: "Name", Type: sql.StringType},
		{Name: "Big", Type: sql.ULongType},
	}

	created = time.Date(2020, 6, 1, 12, 30, 0, 0, time.UTC)
)

func TestTable(t *testing.T) {
	bdb := openDB(t, "table.db")
	defer bdb.Close()

	err := bdb.CreateTable("Items", testColumns)
	if err != nil {
		t.Fatalf("CreateTable() failed with %s", err)
	}
	if bdb.CreateTable("Items", testColumns) == nil {
		t.Errorf("CreateTable() did not fail for an existing table")
	}
	if bdb.CreateTable("Hosts", []sql.Column{{Name: "H", Type: &sql.HostType{Name: "h"}}}) ==
		nil {

		t.Errorf("CreateTable() did not fail for a host type column")
	}

	want := [][]sql.Value{
		{int32(1), sql.Char('a'), float32(1.5), true, created, "one", uint64(1) << 40},
		{int32(2), sql.Char('b'), nil, false, created.Add(time.Hour), "two", uint64(7)},
		{int32(300000), nil, float32(-2), nil, nil, nil, nil},
	}
	err = bdb.Insert("Items", want...)
	if err != nil {
		t.Fatalf("Insert() failed with %s", err)
	}
	if bdb.Insert("Missing", want...) == nil {
		t.Errorf("Insert() did not fail for a missing table")
	}
	if bdb.Insert("Items", []sql.Value{int32(1)}) == nil {
		t.Errorf("Insert() did not fail with too few values")
	}

	tbl, err := bdb.Table("Items")
	if err != nil {
		t.Fatalf("Table() failed with %s", err)
	}
	if !testutil.DeepEqual(tbl.Columns(), testColumns) {
		t.Errorf("Columns() got %v want %v", tbl.Columns(), testColumns)
	}

	ctx := context.Background()
	r, err := tbl.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows() failed with %s", err)
	}
	var got [][]sql.Value
	for {
		dest := make([]sql.Value, len(testColumns))
		err = r.Next(ctx, dest)
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next() failed with %s", err)
		}
		got = append(got, dest)
	}
	err = r.Close()
	if err != nil {
		t.Errorf("Close() failed with %s", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Rows() got %d rows want %d", len(got), len(want))
	}
	for rdx := range want {
		for cdx := range want[rdx] {
			g, w := got[rdx][cdx], want[rdx][cdx]
			if sql.TypeOf(g) != sql.TypeOf(w) || sql.Compare(g, w) != 0 {
				t.Errorf("Rows()[%d][%d] got %v (%T) want %v (%T)", rdx, cdx, g, g, w, w)
			}
		}
	}

	if _, err := bdb.Table("Missing"); err == nil {
		t.Errorf("Table() did not fail for a missing table")
	}
}

func TestTables(t *testing.T) {
	bdb := openDB(t, "tables.db")
	defer bdb.Close()

	for _, nam := range []string{"b", "c", "a"} {
		err := bdb.CreateTable(nam, []sql.Column{{Name: "x", Type: sql.LongType}})
		if err != nil {
			t.Fatalf("CreateTable(%s) failed with %s", nam, err)
		}
	}

	tbls, err := bdb.Tables()
	if err != nil {
		t.Fatalf("Tables() failed with %s", err)
	}
	var nams []string
	for _, tbl := range tbls {
		nams = append(nams, tbl.Name())
	}
	want := []string{"a", "b", "c"}
	if !testutil.DeepEqual(nams, want) {
		t.Errorf("Tables() got %v want %v", nams, want)
	}
}

func TestEarlyClose(t *testing.T) {
	bdb := openDB(t, "close.db")
	defer bdb.Close()

	err := bdb.CreateTable("t", []sql.Column{{Name: "n", Type: sql.LongType}})
	if err != nil {
		t.Fatalf("CreateTable() failed with %s", err)
	}
	err = bdb.Insert("t", []sql.Value{int64(1)}, []sql.Value{int64(2)}, []sql.Value{int64(3)})
	if err != nil {
		t.Fatalf("Insert() failed with %s", err)
	}
	tbl, err := bdb.Table("t")
	if err != nil {
		t.Fatalf("Table() failed with %s", err)
	}

	ctx := context.Background()
	r, err := tbl.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows() failed with %s", err)
	}
	if n := bdb.OpenReads(); n != 1 {
		t.Errorf("OpenReads() got %d want 1", n)
	}

	dest := make([]sql.Value, 1)
	err = r.Next(ctx, dest)
	if err != nil {
		t.Fatalf("Next() failed with %s", err)
	}
	if dest[0] != int64(1) {
		t.Errorf("Next() got %v want 1", dest[0])
	}

	err = r.Close()
	if err != nil {
		t.Errorf("Close() failed with %s", err)
	}
	if n := bdb.OpenReads(); n != 0 {
		t.Errorf("OpenReads() got %d want 0 after Close()", n)
	}
	if r.Close() == nil {
		t.Errorf("Close() twice did not fail")
	}
	if r.Next(ctx, dest) == nil {
		t.Errorf("Next() after Close() did not fail")
	}
}
