package plan

import (
	"context"
	"fmt"
	"io"

	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
)

type tableIterator struct {
	ctx  context.Context
	tbl  sql.Table
	rows sql.Rows
	rb   *ArrayRowBuffer
}

func (bldr builder) buildTable(rel *binding.BoundTableRelation) Iterator {
	sts, ok := rel.Instance.Table().(*symbols.SchemaTableSymbol)
	if !ok {
		panic(fmt.Sprintf("unexpected type for table of BoundTableRelation: %T: %v",
			rel.Instance.Table(), rel.Instance.Table()))
	}
	cnt := len(sts.Columns())
	return &tableIterator{
		ctx: bldr.ctx,
		tbl: sts.Table(),
		rb:  NewArrayRowBuffer(cnt),
	}
}

func (ti *tableIterator) Start() error {
	err := ti.Close()
	if err != nil {
		return err
	}
	ti.rows, err = ti.tbl.Rows(ti.ctx)
	if err != nil {
		return err
	}
	return nil
}

func (ti *tableIterator) NextRow() (bool, error) {
	if ti.rows == nil {
		return false, nil
	}

	err := ti.rows.Next(ti.ctx, ti.rb.Row)
	if err == io.EOF {
		return false, ti.Close()
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (ti *tableIterator) RowBuffer() RowBuffer {
	return ti.rb
}

func (ti *tableIterator) Close() error {
	if ti.rows == nil {
		return nil
	}
	rows := ti.rows
	ti.rows = nil
	return rows.Close()
}

type constantIterator struct {
	done bool
}

func (ci *constantIterator) Start() error {
	ci.done = false
	return nil
}

func (ci *constantIterator) NextRow() (bool, error) {
	if ci.done {
		return false, nil
	}
	ci.done = true
	return true, nil
}

func (*constantIterator) RowBuffer() RowBuffer {
	return NullRowBuffer(0)
}

func (*constantIterator) Close() error {
	return nil
}

type filterIterator struct {
	input Iterator
	cond  evalFunc
}

func (bldr builder) buildFilter(rel *binding.BoundFilterRelation, outer *Allocation) Iterator {
	input, alloc := bldr.build(rel.Input, outer)
	return &filterIterator{
		input: input,
		cond:  bldr.compile(rel.Condition, alloc),
	}
}

func (fi *filterIterator) Start() error {
	return fi.input.Start()
}

func (fi *filterIterator) NextRow() (bool, error) {
	for {
		ok, err := fi.input.NextRow()
		if err != nil || !ok {
			return false, err
		}

		b, null, err := evalBool(fi.cond, "WHERE")
		if err != nil {
			return false, err
		} else if !null && b {
			return true, nil
		}
	}
}

func (fi *filterIterator) RowBuffer() RowBuffer {
	return fi.input.RowBuffer()
}

func (fi *filterIterator) Close() error {
	return fi.input.Close()
}

type computeIterator struct {
	input Iterator
	exprs []evalFunc
	rb    *ArrayRowBuffer
}

func (bldr builder) buildCompute(rel *binding.BoundComputeRelation,
	outer *Allocation) Iterator {

	input, alloc := bldr.build(rel.Input, outer)
	ci := &computeIterator{
		input: input,
		rb:    NewArrayRowBuffer(len(rel.DefinedValues)),
	}
	for _, dv := range rel.DefinedValues {
		ci.exprs = append(ci.exprs, bldr.compile(dv.Expression, alloc))
	}
	return ci
}

func (ci *computeIterator) Start() error {
	return ci.input.Start()
}

func (ci *computeIterator) NextRow() (bool, error) {
	ok, err := ci.input.NextRow()
	if err != nil || !ok {
		return false, err
	}

	for edx, ef := range ci.exprs {
		v, err := ef()
		if err != nil {
			return false, err
		}
		ci.rb.Row[edx] = v
	}
	return true, nil
}

func (ci *computeIterator) RowBuffer() RowBuffer {
	return ci.rb
}

func (ci *computeIterator) Close() error {
	return ci.input.Close()
}

type projectIterator struct {
	input Iterator
	rb    *ProjectedRowBuffer
}

func (bldr builder) buildProject(rel *binding.BoundProjectRelation,
	outer *Allocation) Iterator {

	input, alloc := bldr.build(rel.Input, outer)
	rb := &ProjectedRowBuffer{
		Input: input.RowBuffer(),
	}
	for _, slot := range rel.Outputs {
		rb.Indexes = append(rb.Indexes, alloc.Index(slot))
	}
	return &projectIterator{
		input: input,
		rb:    rb,
	}
}

func (pi *projectIterator) Start() error {
	return pi.input.Start()
}

func (pi *projectIterator) NextRow() (bool, error) {
	return pi.input.NextRow()
}

func (pi *projectIterator) RowBuffer() RowBuffer {
	return pi.rb
}

func (pi *projectIterator) Close() error {
	return pi.input.Close()
}
