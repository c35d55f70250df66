package plan

import (
	"context"
	"fmt"

	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
)

// Iterator produces the rows of a relation, one at a time, into its row buffer. Start
// must be called before NextRow; calling Start again restarts the iterator.
type Iterator interface {
	Start() error
	NextRow() (bool, error)
	RowBuffer() RowBuffer
	Close() error
}

// Allocation maps value slots to positions in the row buffer of an iterator. Slots not
// found are looked up in the outer allocation, which is how correlated subqueries read
// the current row of the query containing them.
type Allocation struct {
	outer  *Allocation
	buffer RowBuffer
	slots  map[*symbols.ValueSlot]int
}

func newAllocation(outer *Allocation, rb RowBuffer, slots []*symbols.ValueSlot) *Allocation {
	a := &Allocation{
		outer:  outer,
		buffer: rb,
		slots:  map[*symbols.ValueSlot]int{},
	}
	for sdx, slot := range slots {
		a.slots[slot] = sdx
	}
	return a
}

// Lookup returns the row buffer and index holding slot. Binding guarantees that every
// referenced slot is defined by an input; a missing slot is a bug.
func (a *Allocation) Lookup(slot *symbols.ValueSlot) (RowBuffer, int) {
	for ; a != nil; a = a.outer {
		if idx, ok := a.slots[slot]; ok {
			return a.buffer, idx
		}
	}
	panic(fmt.Sprintf("value slot not allocated: %s", slot))
}

func (a *Allocation) Index(slot *symbols.ValueSlot) int {
	idx, ok := a.slots[slot]
	if !ok {
		panic(fmt.Sprintf("value slot not allocated: %s", slot))
	}
	return idx
}

func (a *Allocation) RowBuffer() RowBuffer {
	return a.buffer
}

type builder struct {
	ctx context.Context
}

// Build compiles a bound relation into an iterator. The returned allocation maps the
// output slots of the relation to positions in the iterator's row buffer. Table rows are
// read using ctx.
func Build(ctx context.Context, rel binding.BoundRelation, outer *Allocation) (Iterator,
	*Allocation) {

	bldr := builder{ctx: ctx}
	return bldr.build(rel, outer)
}

func (bldr builder) build(rel binding.BoundRelation, outer *Allocation) (Iterator,
	*Allocation) {

	var it Iterator
	switch rel := rel.(type) {
	case *binding.BoundTableRelation:
		it = bldr.buildTable(rel)
	case *binding.BoundConstantRelation:
		it = &constantIterator{}
	case *binding.BoundFilterRelation:
		it = bldr.buildFilter(rel, outer)
	case *binding.BoundComputeRelation:
		it = bldr.buildCompute(rel, outer)
	case *binding.BoundProjectRelation:
		it = bldr.buildProject(rel, outer)
	case *binding.BoundJoinRelation:
		it = bldr.buildJoin(rel, outer)
	case *binding.BoundAggregateRelation:
		it = bldr.buildAggregate(rel, outer)
	case *binding.BoundSortRelation:
		it = bldr.buildSort(rel, outer)
	case *binding.BoundTopRelation:
		it = bldr.buildTop(rel, outer)
	case *binding.BoundUnionRelation:
		it = bldr.buildUnion(rel, outer)
	case *binding.BoundIntersectOrExceptRelation:
		it = bldr.buildIntersectOrExcept(rel, outer)
	default:
		panic(fmt.Sprintf("unexpected type for binding.BoundRelation: %T: %v", rel, rel))
	}
	return it, newAllocation(outer, it.RowBuffer(), rel.GetOutputValues())
}

// spool reads all of the rows of an iterator.
func spool(it Iterator) ([][]sql.Value, error) {
	err := it.Start()
	if err != nil {
		return nil, err
	}

	var rows [][]sql.Value
	for {
		ok, err := it.NextRow()
		if err != nil {
			return nil, err
		} else if !ok {
			break
		}
		rows = append(rows, copyRow(it.RowBuffer()))
	}
	return rows, nil
}
