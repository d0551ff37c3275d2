package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/civicflow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of civicflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "civicflow version %s\n", civicflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
