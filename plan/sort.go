package plan

import (
	"sort"

	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/sql"
)

type sortKey struct {
	idx        int
	descending bool
}

func sortKeys(alloc *Allocation, values []binding.BoundSortedValue) []sortKey {
	keys := make([]sortKey, 0, len(values))
	for _, sv := range values {
		keys = append(keys, sortKey{
			idx:        alloc.Index(sv.ValueSlot),
			descending: sv.Descending,
		})
	}
	return keys
}

func compareRows(keys []sortKey, row1, row2 []sql.Value) int {
	for _, key := range keys {
		cmp := sql.Compare(row1[key.idx], row2[key.idx])
		if cmp == 0 {
			continue
		}
		if key.descending {
			return -cmp
		}
		return cmp
	}
	return 0
}

func equalRows(row1, row2 []sql.Value) bool {
	for idx := range row1 {
		if !sql.Equal(row1[idx], row2[idx]) {
			return false
		}
	}
	return true
}

// sortIterator reads all of its input and sorts it; the sort is stable and NULL sorts
// lowest. When distinct, adjacent duplicate rows are removed after sorting.
type sortIterator struct {
	input    Iterator
	keys     []sortKey
	distinct bool
	rows     [][]sql.Value
	index    int
	rb       *ArrayRowBuffer
}

func (bldr builder) buildSort(rel *binding.BoundSortRelation, outer *Allocation) Iterator {
	input, alloc := bldr.build(rel.Input, outer)
	return &sortIterator{
		input:    input,
		keys:     sortKeys(alloc, rel.SortedValues),
		distinct: rel.IsDistinct,
		rb:       NewArrayRowBuffer(len(rel.GetOutputValues())),
	}
}

func (si *sortIterator) Start() error {
	rows, err := spool(si.input)
	if err != nil {
		return err
	}
	err = si.input.Close()
	if err != nil {
		return err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return compareRows(si.keys, rows[i], rows[j]) < 0
	})
	if si.distinct && len(rows) > 0 {
		unique := rows[:1]
		for _, row := range rows[1:] {
			if !equalRows(unique[len(unique)-1], row) {
				unique = append(unique, row)
			}
		}
		rows = unique
	}

	si.rows = rows
	si.index = 0
	return nil
}

func (si *sortIterator) NextRow() (bool, error) {
	if si.index >= len(si.rows) {
		return false, nil
	}
	copy(si.rb.Row, si.rows[si.index])
	si.index += 1
	return true, nil
}

func (si *sortIterator) RowBuffer() RowBuffer {
	return si.rb
}

func (si *sortIterator) Close() error {
	si.rows = nil
	return si.input.Close()
}

// topIterator returns the first limit rows of its input; with ties, rows following the
// last of those which are equal to it on the tie values are returned as well.
type topIterator struct {
	input Iterator
	limit int64
	ties  []int
	count int64
	last  []sql.Value
}

func (bldr builder) buildTop(rel *binding.BoundTopRelation, outer *Allocation) Iterator {
	input, alloc := bldr.build(rel.Input, outer)
	ti := &topIterator{
		input: input,
		limit: rel.Limit,
	}
	for _, sv := range rel.TieEntries {
		ti.ties = append(ti.ties, alloc.Index(sv.ValueSlot))
	}
	return ti
}

func (ti *topIterator) Start() error {
	ti.count = 0
	ti.last = nil
	return ti.input.Start()
}

func (ti *topIterator) tieValues() []sql.Value {
	rb := ti.input.RowBuffer()
	vals := make([]sql.Value, len(ti.ties))
	for tdx, idx := range ti.ties {
		vals[tdx] = rb.Value(idx)
	}
	return vals
}

func (ti *topIterator) NextRow() (bool, error) {
	if ti.count >= ti.limit && (ti.last == nil || len(ti.ties) == 0) {
		return false, nil
	}

	ok, err := ti.input.NextRow()
	if err != nil || !ok {
		return false, err
	}

	if ti.count < ti.limit {
		ti.count += 1
		if ti.count == ti.limit && len(ti.ties) > 0 {
			ti.last = ti.tieValues()
		}
		return true, nil
	}

	if !equalRows(ti.last, ti.tieValues()) {
		ti.last = nil
		return false, nil
	}
	return true, nil
}

func (ti *topIterator) RowBuffer() RowBuffer {
	return ti.input.RowBuffer()
}

func (ti *topIterator) Close() error {
	return ti.input.Close()
}
