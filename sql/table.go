package sql

import (
	"context"
)

type Column struct {
	Name string
	Type Type
}

// Table is the contract data sources satisfy. Rows are enumerated with values addressed
// by column ordinal.
type Table interface {
	Name() string
	Columns() []Column
	Rows(ctx context.Context) (Rows, error)
}

// Rows is an open cursor over a table. Next returns io.EOF when there are no more rows.
// Close releases any resources held by the cursor and must be called exactly once.
type Rows interface {
	Close() error
	Next(ctx context.Context, dest []Value) error
}
