package memory_test

import (
	"context"
	"io"
	"testing"

	"github.com/leftmike/nquery/datasource/memory"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/testutil"
)

func allRows(t *testing.T, tbl sql.Table) [][]sql.Value {
	t.Helper()

	ctx := context.Background()
	r, err := tbl.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows() failed with %s", err)
	}
	defer r.Close()

	var all [][]sql.Value
	for {
		dest := make([]sql.Value, len(tbl.Columns()))
		err = r.Next(ctx, dest)
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next() failed with %s", err)
		}
		all = append(all, dest)
	}
	return all
}

func TestTable(t *testing.T) {
	tbl := memory.NewTable("t", []sql.Column{
		{Name: "Id", Type: sql.IntType},
		{Name: "Name", Type: sql.StringType},
		{Name: "Score", Type: sql.DoubleType},
	})
	if tbl.Name() != "t" {
		t.Errorf("Name() got %s want t", tbl.Name())
	}

	err := tbl.Insert(
		[]sql.Value{int64(2), "two", 2.5},
		[]sql.Value{"1", "one", nil},
		[]sql.Value{int8(3), "three", "7"},
	)
	if err != nil {
		t.Fatalf("Insert() failed with %s", err)
	}
	if tbl.Len() != 3 {
		t.Errorf("Len() got %d want 3", tbl.Len())
	}

	want := [][]sql.Value{
		{int32(2), "two", 2.5},
		{int32(1), "one", nil},
		{int32(3), "three", 7.0},
	}
	if got := allRows(t, tbl); !testutil.DeepEqual(got, want) {
		t.Errorf("Rows() got %v want %v", got, want)
	}
	if got := tbl.Values(); !testutil.DeepEqual(got, want) {
		t.Errorf("Values() got %v want %v", got, want)
	}

	err = tbl.Insert(
		[]sql.Value{int32(4), "four", 4.0},
		[]sql.Value{"x", "bad", 0.0},
	)
	if err == nil {
		t.Errorf("Insert() did not fail")
	}
	err = tbl.Insert([]sql.Value{int32(4)})
	if err == nil {
		t.Errorf("Insert() did not fail with too few values")
	}
	if tbl.Len() != 3 {
		t.Errorf("Len() got %d want 3 after failed inserts", tbl.Len())
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	tbl := memory.NewTable("t", []sql.Column{{Name: "N", Type: sql.LongType}})
	err := tbl.Insert([]sql.Value{int64(1)}, []sql.Value{int64(2)})
	if err != nil {
		t.Fatalf("Insert() failed with %s", err)
	}

	r, err := tbl.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows() failed with %s", err)
	}
	err = tbl.Insert([]sql.Value{int64(3)})
	if err != nil {
		t.Fatalf("Insert() failed with %s", err)
	}

	var cnt int
	dest := make([]sql.Value, 1)
	for {
		err = r.Next(ctx, dest)
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next() failed with %s", err)
		}
		cnt += 1
	}
	if cnt != 2 {
		t.Errorf("Next() got %d rows want 2", cnt)
	}

	err = r.Close()
	if err != nil {
		t.Errorf("Close() failed with %s", err)
	}
	if r.Close() == nil {
		t.Errorf("Close() twice did not fail")
	}
	if r.Next(ctx, dest) == nil {
		t.Errorf("Next() after Close() did not fail")
	}
}
