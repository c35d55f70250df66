package testutil_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/testutil"
)

func TestDeepEqual(t *testing.T) {
	when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		a, b interface{}
		ret  bool
	}{
		{1, 2, false},
		{"abc", "abc", true},
		{nil, nil, true},
		{nil, 1, false},
		{[]string{"abc", "def"}, []string{"abc", "def"}, true},
		{[]string{"abc"}, []string(nil), false},
		{sql.Char('a'), sql.Char('a'), true},
		{sql.Char('a'), sql.Char('b'), false},
		{[]sql.Value{int32(1), "abc"}, []sql.Value{int32(1), "abc"}, true},
		{[]sql.Value{int32(1)}, []sql.Value{int64(1)}, false},
		{[]sql.Value{nil}, []sql.Value{nil}, true},
		{[]sql.Value{}, []sql.Value{}, true},
		{[][]sql.Value{}, [][]sql.Value{}, true},
		{[]sql.Value{math.NaN()}, []sql.Value{math.NaN()}, true},
		{[]sql.Value{when}, []sql.Value{when.In(time.FixedZone("PST", -8*60*60))}, true},
		{[]sql.Value{when}, []sql.Value{when.Add(time.Second)}, false},
		{map[string]int{"a": 1}, map[string]int{"a": 1}, true},
		{map[string]int{"a": 1}, map[string]int{"b": 1}, false},
		{sql.Column{Name: "Id", Type: sql.IntType}, sql.Column{Name: "Id", Type: sql.IntType},
			true},
		{sql.Column{Name: "Id", Type: sql.IntType}, sql.Column{Name: "Id", Type: sql.LongType},
			false},
	}

	for _, c := range cases {
		if testutil.DeepEqual(c.a, c.b) != c.ret {
			t.Errorf("DeepEqual(%v, %v) got %v want %v", c.a, c.b, !c.ret, c.ret)
		}
	}

	for _, c := range cases {
		var s string
		testutil.DeepEqual(c.a, c.b, &s)
		if c.ret {
			if s != "" {
				t.Errorf("DeepEqual(%v, %v, &s) succeeded; got %q for s; want \"\"", c.a, c.b, s)
			}
		} else {
			if s == "" {
				t.Errorf("DeepEqual(%v, %v, &s) failed; got \"\" for s", c.a, c.b)
			}
		}
	}

	var s string
	rows1 := [][]sql.Value{{int32(1), "abc"}, {int32(2), "def"}}
	rows2 := [][]sql.Value{{int32(1), "abc"}, {int32(2), "xyz"}}
	if testutil.DeepEqual(rows1, rows2, &s) {
		t.Errorf("DeepEqual(%v, %v) got true want false", rows1, rows2)
	} else if !strings.HasPrefix(s, "[1][1]: ") {
		t.Errorf("DeepEqual(%v, %v, &s) got %q for s want [1][1] prefix", rows1, rows2, s)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("DeepEqual(123, 123, &s1, &s2) did not panic")
		}
	}()
	var s1, s2 string
	testutil.DeepEqual(123, 123, &s1, &s2)
}
