package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leftmike/nquery/sql"
)

func init() {
	nqueryCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of NQuery",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), sql.Version())
			},
		})
}
