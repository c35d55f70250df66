package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/btree"

	"github.com/leftmike/nquery/sql"
)

var (
	errRowsClosed = errors.New("memory: rows closed")
)

// Table is an in-memory table. Rows are kept in a B-tree keyed by an insertion sequence
// number, so they are always enumerated in the order they were inserted.
type Table struct {
	mutex   sync.RWMutex
	name    string
	columns []sql.Column
	tree    *btree.BTree
	nextID  uint64
}

type rowItem struct {
	id  uint64
	row []sql.Value
}

type rows struct {
	tree *btree.BTree
	next uint64
}

func (ri rowItem) Less(item btree.Item) bool {
	return ri.id < item.(rowItem).id
}

func NewTable(name string, cols []sql.Column) *Table {
	return &Table{
		name:    name,
		columns: cols,
		tree:    btree.New(16),
	}
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Columns() []sql.Column {
	return t.columns
}

func (t *Table) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.tree.Len()
}

func (t *Table) convertRow(row []sql.Value) ([]sql.Value, error) {
	if len(row) != len(t.columns) {
		return nil, fmt.Errorf("memory: table %s: expected %d values got %d", t.name,
			len(t.columns), len(row))
	}

	vals := make([]sql.Value, len(row))
	for cdx, col := range t.columns {
		kt, ok := col.Type.(sql.KnownType)
		if !ok {
			vals[cdx] = row[cdx]
			continue
		}
		v, err := sql.ConvertValue(row[cdx], kt)
		if err != nil {
			return nil, fmt.Errorf("memory: table %s: column %s: %w", t.name, col.Name, err)
		}
		vals[cdx] = v
	}
	return vals, nil
}

// Insert adds rows to the table. Values are converted to the types of the columns; if
// any row fails to convert, none of the rows are added.
func (t *Table) Insert(rows ...[]sql.Value) error {
	items := make([]rowItem, 0, len(rows))
	for _, row := range rows {
		vals, err := t.convertRow(row)
		if err != nil {
			return err
		}
		items = append(items, rowItem{row: vals})
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, ri := range items {
		ri.id = t.nextID
		t.nextID += 1
		t.tree.ReplaceOrInsert(ri)
	}
	return nil
}

// Values returns a copy of all of the rows of the table, in insertion order.
func (t *Table) Values() [][]sql.Value {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	vals := make([][]sql.Value, 0, t.tree.Len())
	t.tree.Ascend(func(item btree.Item) bool {
		vals = append(vals, append([]sql.Value(nil), item.(rowItem).row...))
		return true
	})
	return vals
}

// Rows returns a cursor over a snapshot of the table; rows inserted after Rows returns
// are not seen.
func (t *Table) Rows(ctx context.Context) (sql.Rows, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return &rows{
		tree: t.tree.Clone(),
	}, nil
}

func (r *rows) Close() error {
	if r.tree == nil {
		return errRowsClosed
	}
	r.tree = nil
	return nil
}

func (r *rows) Next(ctx context.Context, dest []sql.Value) error {
	if r.tree == nil {
		return errRowsClosed
	}

	var found bool
	r.tree.AscendGreaterOrEqual(rowItem{id: r.next},
		func(item btree.Item) bool {
			ri := item.(rowItem)
			copy(dest, ri.row)
			r.next = ri.id + 1
			found = true
			return false
		})
	if !found {
		return io.EOF
	}
	return nil
}
