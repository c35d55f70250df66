package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leftmike/nquery/engine"
	"github.com/leftmike/nquery/repl"
	"github.com/leftmike/nquery/sql"
)

var (
	queryCmd = &cobra.Command{
		Use:   "query sql ...",
		Short: "Run queries and print their results",
		Args:  cobra.MinimumNArgs(1),
		RunE:  queryRun,
	}

	evalCmd = &cobra.Command{
		Use:   "eval expression",
		Short: "Evaluate an expression and print its value",
		Args:  cobra.ExactArgs(1),
		RunE:  evalRun,
	}

	explainCmd = &cobra.Command{
		Use:   "explain sql",
		Short: "Print the plan of a query",
		Args:  cobra.ExactArgs(1),
		RunE:  explainRun,
	}

	explainSteps = false
)

func init() {
	explainCmd.Flags().BoolVar(&explainSteps, "steps", explainSteps,
		"print the plan after binding and after each rewrite")

	nqueryCmd.AddCommand(queryCmd, evalCmd, explainCmd)
}

func queryRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dc := dataContext()
	for _, arg := range args {
		repl.ReplSQL(ctx, dc, flgs, strings.NewReader(arg), cmd.OutOrStdout())
	}
	return nil
}

func compile(c *engine.Compilation) (*engine.Query, error) {
	c.Flags = flgs
	q, err := c.Compile()
	if de, ok := err.(*engine.DiagnosticsError); ok {
		lines := make([]string, 0, len(de.Diagnostics))
		for _, d := range de.Diagnostics {
			lines = append(lines, engine.FormatDiagnostic(de.Text, d))
		}
		return nil, fmt.Errorf("nquery: %s", strings.Join(lines, "\n"))
	}
	return q, err
}

func evalRun(cmd *cobra.Command, args []string) error {
	q, err := compile(engine.NewExpressionCompilation(dataContext(), args[0]))
	if err != nil {
		return err
	}
	v, err := q.ExecuteScalar(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sql.Format(v))
	return nil
}

func explainRun(cmd *cobra.Command, args []string) error {
	c := engine.NewQueryCompilation(dataContext(), args[0])
	q, err := compile(c)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if !explainSteps {
		fmt.Fprint(w, q.ShowPlan())
		return nil
	}
	for _, step := range c.ShowPlanSteps() {
		fmt.Fprintf(w, "%s:\n%s", step.Name, step.Plan)
	}
	return nil
}
