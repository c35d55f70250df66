package engine

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/leftmike/nquery/plan"
	"github.com/leftmike/nquery/sql"
)

var (
	errNotStarted   = errors.New("engine: reader not started")
	errReaderClosed = errors.New("engine: reader closed")
)

// Reader is a forward only cursor over the rows of a query. Start must be called before
// the first NextRow.
type Reader struct {
	compilation *Compilation
	it          plan.Iterator
	indexes     []int
	columns     []sql.Column
	started     bool
	closed      bool
	rows        int
}

func (r *Reader) Columns() []sql.Column {
	return r.columns
}

// Start positions the reader before the first row; calling it again restarts the query.
func (r *Reader) Start() error {
	if r.closed {
		return errReaderClosed
	}
	err := r.it.Start()
	if err != nil {
		return err
	}
	r.started = true
	r.rows = 0
	return nil
}

func (r *Reader) NextRow() (bool, error) {
	if r.closed {
		return false, errReaderClosed
	} else if !r.started {
		return false, errNotStarted
	}

	ok, err := r.it.NextRow()
	if ok {
		r.rows += 1
	}
	return ok, err
}

// Value returns the value of the column at ordinal in the current row.
func (r *Reader) Value(ordinal int) sql.Value {
	return r.it.RowBuffer().Value(r.indexes[ordinal])
}

// Row returns a copy of the current row.
func (r *Reader) Row() []sql.Value {
	row := make([]sql.Value, len(r.indexes))
	rb := r.it.RowBuffer()
	for cdx, idx := range r.indexes {
		row[cdx] = rb.Value(idx)
	}
	return row
}

// Close releases the resources held by the reader; it may be called more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	log.WithFields(log.Fields{
		"compilation": r.compilation.ID(),
		"rows":        r.rows,
	}).Debug("engine: reader closed")
	return r.it.Close()
}
