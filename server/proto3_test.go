package server_test

import (
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/leftmike/nquery/datasource/memory"
	"github.com/leftmike/nquery/server"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/testutil"
)

func waitForListener(t *testing.T, addr string) {
	t.Helper()

	for cnt := 0; cnt < 50; cnt += 1 {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("Dial(%s) timed out", addr)
}

func testDataContext(t *testing.T) *symbols.DataContext {
	t.Helper()

	customers := memory.NewTable("Customers", []sql.Column{
		{Name: "Id", Type: sql.IntType},
		{Name: "Name", Type: sql.StringType},
		{Name: "Joined", Type: sql.DateType},
	})
	err := customers.Insert(
		[]sql.Value{int32(1), "alice", time.Date(2020, 3, 4, 0, 0, 0, 0, time.UTC)},
		[]sql.Value{int32(2), "bob", time.Date(2021, 5, 6, 7, 8, 9, 0, time.UTC)},
		[]sql.Value{int32(3), nil, nil},
	)
	if err != nil {
		t.Fatalf("Insert() failed with %s", err)
	}
	return symbols.NewDataContext().WithTables(customers)
}

type customer struct {
	Id     int32      `db:"Id"`
	Name   *string    `db:"Name"`
	Joined *time.Time `db:"Joined"`
}

func TestProto3Server(t *testing.T) {
	testutil.SetupLogger(filepath.Join("testdata", "proto3.log"))

	addr := "localhost:10010"
	s := server.Server{
		DataContext: testDataContext(t),
	}

	done := make(chan struct{})
	go func() {
		err := s.ListenAndServeProto3(server.Proto3Config{Address: addr})
		if err != server.ErrServerClosed {
			t.Errorf("ListenAndServeProto3() returned with %s", err)
		}
		close(done)
	}()
	waitForListener(t, addr)

	db, err := sqlx.Connect("postgres", "postgres://testing@"+addr+"/nquery?sslmode=disable")
	if err != nil {
		t.Fatalf("Connect() failed with %s", err)
	}

	var customers []customer
	err = db.Select(&customers, "SELECT Id, Name, Joined FROM Customers ORDER BY Id DESC")
	if err != nil {
		t.Fatalf("Select() failed with %s", err)
	}
	if len(customers) != 3 {
		t.Fatalf("Select() got %d rows want 3", len(customers))
	}
	if customers[0].Id != 3 || customers[0].Name != nil || customers[0].Joined != nil {
		t.Errorf("Select() got %v want 3 with nulls", customers[0])
	}
	if customers[1].Id != 2 || customers[1].Name == nil || *customers[1].Name != "bob" {
		t.Errorf("Select() got %v want 2 bob", customers[1])
	}
	want := time.Date(2021, 5, 6, 7, 8, 9, 0, time.UTC)
	if customers[1].Joined == nil || !customers[1].Joined.Equal(want) {
		t.Errorf("Select() got %v want %s", customers[1].Joined, want)
	}

	var n int64
	err = db.Get(&n, "SELECT COUNT(*) FROM Customers WHERE Id > 1")
	if err != nil {
		t.Errorf("Get() failed with %s", err)
	} else if n != 2 {
		t.Errorf("Get() got %d want 2", n)
	}

	var big bool
	err = db.Get(&big, "SELECT Id > 1 AS Big FROM Customers WHERE Id = 2")
	if err != nil {
		t.Errorf("Get() failed with %s", err)
	} else if !big {
		t.Errorf("Get() got %v want true", big)
	}

	var names []string
	err = db.Select(&names, "SELECT Name FROM Customers WHERE Id < 3; -- names")
	if err != nil {
		t.Errorf("Select() failed with %s", err)
	} else if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Errorf("Select() got %v want [alice bob]", names)
	}

	_, err = db.Query("SELECT Nope FROM Customers")
	if err == nil {
		t.Errorf("Query() did not fail")
	} else {
		var pqerr *pq.Error
		if !errors.As(err, &pqerr) {
			t.Errorf("Query() got %T want *pq.Error", err)
		} else if pqerr.Code != "42601" {
			t.Errorf("Query() got code %s want 42601", pqerr.Code)
		}
	}

	db.Close()
	err = s.Close()
	if err != nil {
		t.Errorf("Close() failed with %s", err)
	}
	<-done
}
