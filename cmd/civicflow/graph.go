package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/civicflow/internal/presentation/graph"
	"github.com/aretw0/civicflow/pkg/agent"
	"github.com/aretw0/civicflow/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export a flow as a Mermaid diagram",
	Long: `Builds the flows and outputs a Mermaid diagram (graph TD) of the selected one.
No database connection is needed. With --check, transitions to unregistered
steps are reported and the command fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("flow")
		check, _ := cmd.Flags().GetBool("check")

		ag, err := agent.New(agent.Config{Runner: offline{}, Inspector: offline{}})
		if err != nil {
			return err
		}
		flow, err := ag.Flow(name)
		if err != nil {
			return err
		}

		if check {
			if err := ag.Validate(); err != nil {
				return fmt.Errorf("flow check failed: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "flows ok: %d steps in %s\n", len(flow.Steps), flow.Name)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(flow, nil))
		return nil
	},
}

// offline satisfies the database ports for commands that only inspect flows.
type offline struct{}

func (offline) Query(context.Context, string) ([]domain.Row, error) {
	return nil, fmt.Errorf("no database in graph mode")
}

func (offline) Schema(context.Context, string) (string, error) {
	return "", fmt.Errorf("no database in graph mode")
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("flow", agent.FlowQA, "Flow to render: qa or agent")
	graphCmd.Flags().Bool("check", false, "Fail when a transition targets an unregistered step")
}
