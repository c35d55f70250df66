package sql_test

import (
	"testing"
	"time"

	"github.com/leftmike/nquery/sql"
)

func TestCompare(t *testing.T) {
	d1 := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		v1, v2 sql.Value
		cmp    int
	}{
		{nil, true, -1},
		{nil, nil, 0},

		{false, nil, 1},
		{true, true, 0},
		{false, false, 0},
		{false, true, -1},
		{true, false, 1},
		{false, 1.23, -1},

		{1.23, false, 1},
		{1.23, int32(123), -1},
		{1.23, "abc", -1},
		{1.23, 2.34, -1},
		{1.23, 1.23, 0},
		{1.23, 0.12, 1},
		{float32(1.5), 1.5, 0},

		{int32(123), false, 1},
		{int32(123), 1.23, 1},
		{int32(123), "abc", -1},
		{int32(123), int64(234), -1},
		{int64(123), int8(123), 0},
		{int16(123), uint8(12), 1},
		{int64(-1), uint64(18446744073709551615), -1},
		{uint64(18446744073709551615), int64(-1), 1},
		{uint32(7), int32(7), 0},
		{sql.Char('a'), int32(97), 0},

		{"abc", false, 1},
		{"abc", 1.23, 1},
		{"abc", int32(123), 1},
		{"def", "ghi", -1},
		{"def", "def", 0},
		{"def", "abc", 1},
		{"abc", d1, -1},

		{d1, d2, -1},
		{d2, d1, 1},
		{d1, d1, 0},
	}

	for _, c := range cases {
		cmp := sql.Compare(c.v1, c.v2)
		if cmp != c.cmp {
			t.Errorf("Compare(%v, %v) got %d want %d", c.v1, c.v2, cmp, c.cmp)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		v   sql.Value
		s   string
		lit string
	}{
		{nil, "NULL", "NULL"},
		{true, "true", "true"},
		{int32(-12), "-12", "-12"},
		{uint64(12), "12", "12"},
		{3.5, "3.5", "3.5"},
		{float32(0.25), "0.25", "0.25"},
		{"it's", "it's", "'it''s'"},
		{sql.Char('x'), "x", "x"},
		{time.Date(2019, 5, 6, 0, 0, 0, 0, time.UTC), "2019-05-06", "'2019-05-06'"},
		{time.Date(2019, 5, 6, 7, 8, 9, 0, time.UTC), "2019-05-06 07:08:09",
			"'2019-05-06 07:08:09'"},
		{&sql.Row{Values: []sql.Value{int32(1), nil, "a"}}, "(1, NULL, a)", "(1, NULL, a)"},
	}

	for _, c := range cases {
		if s := sql.Format(c.v); s != c.s {
			t.Errorf("Format(%#v) got %q want %q", c.v, s, c.s)
		}
		if s := sql.Literal(c.v); s != c.lit {
			t.Errorf("Literal(%#v) got %q want %q", c.v, s, c.lit)
		}
	}
}
