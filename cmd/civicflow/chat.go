package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/civicflow"
	"github.com/aretw0/civicflow/internal/cli"
	"github.com/aretw0/civicflow/internal/presentation/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, _ := cmd.Flags().GetString("table")
		noMap, _ := cmd.Flags().GetBool("no-map")

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		out := cmd.OutOrStdout()
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(out, civicflow.Version)
		}
		return cli.Chat(ctx, cmd.InOrStdin(), out, app, cli.ChatOptions{
			Table:  table,
			NoMap:  noMap,
			Render: tui.NewRenderer(out),
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("table", "", "Table whose schema guides SQL generation (default from config)")
	chatCmd.Flags().Bool("no-map", false, "Do not write map artifacts")
}
