package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/civicflow/internal/cli"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql or question>",
	Short: "Run SQL, or translate a question and run it",
	Long: `Runs the query agent. SQL input (SELECT, WITH, EXPLAIN, ...) is executed as-is;
anything else is translated first. Query errors are printed, not fatal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := app.Query(ctx, strings.Join(args, " "))
		if printErr := cli.PrintResult(cmd.OutOrStdout(), res, nil, raw); printErr != nil {
			return printErr
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().Bool("raw", false, "Print the full result as JSON")
}
