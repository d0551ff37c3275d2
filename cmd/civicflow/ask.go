package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/civicflow/internal/cli"
	"github.com/aretw0/civicflow/internal/presentation/tui"
	"github.com/aretw0/civicflow/pkg/agent"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question",
	Long: `Runs the QA flow: fetch the schema, generate SQL, run it, plot a map when the
rows carry coordinates, generate an answer and summarize usage.`,
	Example: `  civicflow ask "How many burglaries were reported in district B2 last month?"
  civicflow ask --raw --no-map "top 5 request types by count"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, _ := cmd.Flags().GetString("table")
		noMap, _ := cmd.Flags().GetBool("no-map")
		raw, _ := cmd.Flags().GetBool("raw")

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := app.Ask(ctx, agent.Request{
			Question: strings.Join(args, " "),
			Table:    table,
			NoMap:    noMap,
		})
		out := cmd.OutOrStdout()
		if printErr := cli.PrintResult(out, res, tui.NewRenderer(out), raw); printErr != nil {
			return printErr
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("table", "", "Table whose schema guides SQL generation (default from config)")
	askCmd.Flags().Bool("no-map", false, "Do not write a map artifact")
	askCmd.Flags().Bool("raw", false, "Print the full result as JSON")
}
