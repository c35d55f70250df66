package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/leftmike/nquery/engine"
	"github.com/leftmike/nquery/flags"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/syntax"
)

// ReplSQL reads statements from rr, separated by semicolons, and writes their results to
// w until the end of the input. A statement is a query or one of the commands:
//
//	\plan query     show the plan for the query
//	\eval expr      evaluate an expression
//	\tables         list the tables and their columns
//	\variables      list the variables and their values
func ReplSQL(ctx context.Context, dc *symbols.DataContext, flgs flags.Flags, rr io.RuneReader,
	w io.Writer) {

	for {
		stmt, err := syntax.ReadStatement(rr)
		if err == io.EOF {
			return
		} else if err != nil {
			fmt.Fprintln(w, err)
			return
		}

		err = replStmt(ctx, dc, flgs, strings.TrimSpace(stmt), w)
		if err != nil {
			printError(w, err)
		}
	}
}

func command(stmt, cmd string) (string, bool) {
	if len(stmt) < len(cmd) || !strings.EqualFold(stmt[:len(cmd)], cmd) {
		return "", false
	}
	rest := stmt[len(cmd):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func replStmt(ctx context.Context, dc *symbols.DataContext, flgs flags.Flags, stmt string,
	w io.Writer) error {

	if s, ok := command(stmt, `\plan`); ok {
		c := engine.NewQueryCompilation(dc, s)
		c.Flags = flgs
		_, err := c.Compile()
		if err != nil {
			return err
		}
		for _, step := range c.ShowPlanSteps() {
			fmt.Fprintf(w, "%s:\n%s", step.Name, step.Plan)
		}
		return nil
	} else if s, ok := command(stmt, `\eval`); ok {
		c := engine.NewExpressionCompilation(dc, s)
		c.Flags = flgs
		q, err := c.Compile()
		if err != nil {
			return err
		}
		v, err := q.ExecuteScalar(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, sql.Format(v))
		return nil
	} else if _, ok := command(stmt, `\tables`); ok {
		for _, tbl := range dc.Tables() {
			fmt.Fprintln(w, tbl)
		}
		return nil
	} else if _, ok := command(stmt, `\variables`); ok {
		for _, v := range dc.Variables() {
			fmt.Fprintf(w, "@%s %s = %s\n", v.Name(), v.Type(), sql.Literal(v.Value()))
		}
		return nil
	} else if strings.HasPrefix(stmt, `\`) {
		return fmt.Errorf("repl: unknown command: %s", strings.Fields(stmt)[0])
	}

	c := engine.NewQueryCompilation(dc, stmt)
	c.Flags = flgs
	q, err := c.Compile()
	if err != nil {
		return err
	}
	tbl, err := q.ExecuteTable(ctx)
	if err != nil {
		return err
	}

	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)

	cols := tbl.Columns()
	row := make([]string, len(cols))
	for cdx, col := range cols {
		row[cdx] = col.Name
	}
	tw.SetHeader(row)

	rows := tbl.Values()
	for _, vals := range rows {
		for cdx, v := range vals {
			row[cdx] = sql.Format(v)
		}
		tw.Append(row)
	}
	tw.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func printError(w io.Writer, err error) {
	var de *engine.DiagnosticsError
	if errors.As(err, &de) {
		for _, d := range de.Diagnostics {
			fmt.Fprintln(w, engine.FormatDiagnostic(de.Text, d))
		}
		return
	}
	fmt.Fprintln(w, err)
}
