package plan

import (
	"github.com/google/btree"

	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/sql"
)

// unionIterator returns all of the rows of each of its inputs in turn; duplicates are
// removed by a distinct sort above it.
type unionIterator struct {
	inputs  []Iterator
	indexes [][]int
	current int
	rb      *ArrayRowBuffer
}

func (bldr builder) buildUnion(rel *binding.BoundUnionRelation, outer *Allocation) Iterator {
	ui := &unionIterator{
		rb: NewArrayRowBuffer(len(rel.DefinedValues)),
	}
	for idx, input := range rel.Inputs {
		it, alloc := bldr.build(input, outer)
		indexes := make([]int, 0, len(rel.DefinedValues))
		for _, uv := range rel.DefinedValues {
			indexes = append(indexes, alloc.Index(uv.InputValueSlots[idx]))
		}
		ui.inputs = append(ui.inputs, it)
		ui.indexes = append(ui.indexes, indexes)
	}
	return ui
}

func (ui *unionIterator) Start() error {
	ui.current = 0
	if len(ui.inputs) == 0 {
		return nil
	}
	return ui.inputs[0].Start()
}

func (ui *unionIterator) NextRow() (bool, error) {
	for ui.current < len(ui.inputs) {
		it := ui.inputs[ui.current]
		ok, err := it.NextRow()
		if err != nil {
			return false, err
		} else if ok {
			rb := it.RowBuffer()
			for vdx, idx := range ui.indexes[ui.current] {
				ui.rb.Row[vdx] = rb.Value(idx)
			}
			return true, nil
		}

		err = it.Close()
		if err != nil {
			return false, err
		}
		ui.current += 1
		if ui.current < len(ui.inputs) {
			err = ui.inputs[ui.current].Start()
			if err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

func (ui *unionIterator) RowBuffer() RowBuffer {
	return ui.rb
}

func (ui *unionIterator) Close() error {
	var err error
	for _, it := range ui.inputs {
		if cerr := it.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	ui.current = len(ui.inputs)
	return err
}

type rowItem []sql.Value

func (ri rowItem) Less(item btree.Item) bool {
	return compareKeys(ri, item.(rowItem)) < 0
}

// intersectOrExceptIterator returns the distinct rows of left which are, for intersect,
// or are not, for except, rows of right.
type intersectOrExceptIterator struct {
	isIntersect bool
	left        Iterator
	right       Iterator
	rightRows   *btree.BTree
	seen        *btree.BTree
}

func (bldr builder) buildIntersectOrExcept(rel *binding.BoundIntersectOrExceptRelation,
	outer *Allocation) Iterator {

	left, _ := bldr.build(rel.Left, outer)
	right, _ := bldr.build(rel.Right, outer)
	return &intersectOrExceptIterator{
		isIntersect: rel.IsIntersect,
		left:        left,
		right:       right,
	}
}

func (ioei *intersectOrExceptIterator) Start() error {
	rows, err := spool(ioei.right)
	if err != nil {
		return err
	}
	err = ioei.right.Close()
	if err != nil {
		return err
	}

	ioei.rightRows = btree.New(16)
	for _, row := range rows {
		ioei.rightRows.ReplaceOrInsert(rowItem(row))
	}
	ioei.seen = btree.New(16)
	return ioei.left.Start()
}

func (ioei *intersectOrExceptIterator) NextRow() (bool, error) {
	for {
		ok, err := ioei.left.NextRow()
		if err != nil || !ok {
			return false, err
		}

		row := rowItem(copyRow(ioei.left.RowBuffer()))
		if ioei.seen.Has(row) {
			continue
		}
		if ioei.rightRows.Has(row) == ioei.isIntersect {
			ioei.seen.ReplaceOrInsert(row)
			return true, nil
		}
	}
}

func (ioei *intersectOrExceptIterator) RowBuffer() RowBuffer {
	return ioei.left.RowBuffer()
}

func (ioei *intersectOrExceptIterator) Close() error {
	ioei.rightRows = nil
	ioei.seen = nil
	err := ioei.left.Close()
	if err != nil {
		ioei.right.Close()
		return err
	}
	return ioei.right.Close()
}
