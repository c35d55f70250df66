package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leftmike/nquery/repl"
)

var (
	replCmd = &cobra.Command{
		Use:   "repl [file ...]",
		Short: "Run with an interactive console session or run files of queries",
		RunE:  replRun,
	}
)

func init() {
	nqueryCmd.AddCommand(replCmd)
}

func replRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dc := dataContext()

	if len(args) == 0 {
		repl.Interact(ctx, dc, flgs)
		return nil
	}

	for _, arg := range args {
		f, err := os.Open(arg)
		if err != nil {
			return fmt.Errorf("nquery: %s", err)
		}
		repl.ReplSQL(ctx, dc, flgs, bufio.NewReader(f), cmd.OutOrStdout())
		f.Close()
	}
	return nil
}
