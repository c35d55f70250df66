package plan_test

import (
	"testing"

	"github.com/leftmike/nquery/plan"
	"github.com/leftmike/nquery/sql"
)

func TestRowBuffers(t *testing.T) {
	left := &plan.ArrayRowBuffer{Row: []sql.Value{int32(1), "two"}}
	right := &plan.ArrayRowBuffer{Row: []sql.Value{3.0}}
	cases := []struct {
		rb   plan.RowBuffer
		vals []sql.Value
	}{
		{
			rb:   &plan.CombinedRowBuffer{Left: left, Right: right},
			vals: []sql.Value{int32(1), "two", 3.0},
		},
		{
			rb:   &plan.CombinedRowBuffer{Left: plan.NullRowBuffer(0), Right: right},
			vals: []sql.Value{3.0},
		},
		{
			rb:   &plan.CombinedRowBuffer{Left: plan.NullRowBuffer(2), Right: right},
			vals: []sql.Value{nil, nil, 3.0},
		},
		{
			rb:   &plan.ProjectedRowBuffer{Input: left, Indexes: []int{1, 0, 1}},
			vals: []sql.Value{"two", int32(1), "two"},
		},
		{
			rb:   &plan.SwitchRowBuffer{Buffer: left},
			vals: []sql.Value{int32(1), "two"},
		},
		{
			rb:   &plan.SwitchRowBuffer{Buffer: left, IsNull: true},
			vals: []sql.Value{nil, nil},
		},
	}

	for _, c := range cases {
		if c.rb.Count() != len(c.vals) {
			t.Errorf("%T.Count() got %d want %d", c.rb, c.rb.Count(), len(c.vals))
			continue
		}
		for idx, want := range c.vals {
			if got := c.rb.Value(idx); got != want {
				t.Errorf("%T.Value(%d) got %v want %v", c.rb, idx, got, want)
			}
		}
	}
}
