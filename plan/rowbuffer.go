package plan

import (
	"github.com/leftmike/nquery/sql"
)

// RowBuffer holds the values of the current row of an iterator. A row buffer is owned by
// its iterator and is only valid until the next call to NextRow.
type RowBuffer interface {
	Count() int
	Value(idx int) sql.Value
}

func copyRow(rb RowBuffer) []sql.Value {
	row := make([]sql.Value, rb.Count())
	for idx := range row {
		row[idx] = rb.Value(idx)
	}
	return row
}

type ArrayRowBuffer struct {
	Row []sql.Value
}

func NewArrayRowBuffer(count int) *ArrayRowBuffer {
	return &ArrayRowBuffer{
		Row: make([]sql.Value, count),
	}
}

func (arb *ArrayRowBuffer) Count() int {
	return len(arb.Row)
}

func (arb *ArrayRowBuffer) Value(idx int) sql.Value {
	return arb.Row[idx]
}

func (arb *ArrayRowBuffer) clear() {
	for idx := range arb.Row {
		arb.Row[idx] = nil
	}
}

// CombinedRowBuffer is the values of Left followed by the values of Right.
type CombinedRowBuffer struct {
	Left  RowBuffer
	Right RowBuffer
}

func (crb *CombinedRowBuffer) Count() int {
	return crb.Left.Count() + crb.Right.Count()
}

func (crb *CombinedRowBuffer) Value(idx int) sql.Value {
	if cnt := crb.Left.Count(); idx >= cnt {
		return crb.Right.Value(idx - cnt)
	}
	return crb.Left.Value(idx)
}

// NullRowBuffer is a row of NULLs; outer joins use it for the missing side.
type NullRowBuffer int

func (nrb NullRowBuffer) Count() int {
	return int(nrb)
}

func (NullRowBuffer) Value(idx int) sql.Value {
	return nil
}

// ProjectedRowBuffer selects values of Input by index.
type ProjectedRowBuffer struct {
	Input   RowBuffer
	Indexes []int
}

func (prb *ProjectedRowBuffer) Count() int {
	return len(prb.Indexes)
}

func (prb *ProjectedRowBuffer) Value(idx int) sql.Value {
	return prb.Input.Value(prb.Indexes[idx])
}

// SwitchRowBuffer reads from either Buffer or a row of NULLs of the same width.
type SwitchRowBuffer struct {
	Buffer RowBuffer
	IsNull bool
}

func (srb *SwitchRowBuffer) Count() int {
	return srb.Buffer.Count()
}

func (srb *SwitchRowBuffer) Value(idx int) sql.Value {
	if srb.IsNull {
		return nil
	}
	return srb.Buffer.Value(idx)
}
