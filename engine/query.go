package engine

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/datasource/memory"
	"github.com/leftmike/nquery/plan"
	"github.com/leftmike/nquery/sql"
)

// Query is a compiled query or expression, ready to be executed any number of times.
type Query struct {
	compilation *Compilation
	query       *binding.BoundQuery
	relation    binding.BoundRelation
	expression  binding.BoundExpression
}

func (q *Query) IsExpression() bool {
	return q.query == nil
}

// Columns returns the output columns of a query; an expression has a single unnamed
// column.
func (q *Query) Columns() []sql.Column {
	if q.query == nil {
		return []sql.Column{{Type: q.expression.Type()}}
	}

	cols := make([]sql.Column, 0, len(q.query.OutputColumns))
	for _, qc := range q.query.OutputColumns {
		cols = append(cols, sql.Column{Name: qc.Name(), Type: qc.Type()})
	}
	return cols
}

func (q *Query) ShowPlan() string {
	if q.query == nil {
		return binding.FormatExpression(q.expression) + "\n"
	}
	return binding.ShowPlan(q.relation)
}

// CreateReader builds the iterators for a query. The reader must be closed.
func (q *Query) CreateReader(ctx context.Context) (*Reader, error) {
	if q.query == nil {
		return nil, fmt.Errorf("engine: expression compilation can't be read")
	}

	it, alloc := plan.Build(ctx, q.relation, nil)
	indexes := make([]int, 0, len(q.query.OutputColumns))
	for _, qc := range q.query.OutputColumns {
		indexes = append(indexes, alloc.Index(qc.ValueSlot()))
	}
	return &Reader{
		compilation: q.compilation,
		it:          it,
		indexes:     indexes,
		columns:     q.Columns(),
	}, nil
}

// ExecuteTable reads all of the rows of a query into an in-memory table. Either all rows
// are returned or an error.
func (q *Query) ExecuteTable(ctx context.Context) (*memory.Table, error) {
	r, err := q.CreateReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	start := time.Now()
	err = r.Start()
	if err != nil {
		return nil, err
	}

	var rows [][]sql.Value
	for {
		ok, err := r.NextRow()
		if err != nil {
			return nil, err
		} else if !ok {
			break
		}
		rows = append(rows, r.Row())
	}

	tbl := memory.NewTable("", r.Columns())
	err = tbl.Insert(rows...)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"compilation": q.compilation.ID(),
		"rows":        len(rows),
		"elapsed":     time.Since(start),
	}).Debug("engine: executed table")
	return tbl, nil
}

// ExecuteScalar evaluates an expression; for a query, it returns the first column of the
// first row, or NULL if there are no rows.
func (q *Query) ExecuteScalar(ctx context.Context) (sql.Value, error) {
	if q.query == nil {
		return plan.CompileExpression(ctx, q.expression)()
	}

	r, err := q.CreateReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	err = r.Start()
	if err != nil {
		return nil, err
	}
	ok, err := r.NextRow()
	if err != nil || !ok || len(r.columns) == 0 {
		return nil, err
	}
	return r.Value(0), nil
}
