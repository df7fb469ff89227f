package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/pkg/agent"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the strategy graph visualization",
	Long:  `Builds the standard tool-loop strategy and outputs a Mermaid diagram (graph TD) of its nodes and edges.`,
	Run: func(cmd *cobra.Command, args []string) {
		mode, _ := cmd.Flags().GetString("mode")

		strategy, err := agent.SingleRunStrategy("single_run", agent.RunMode(mode))
		if err != nil {
			fmt.Printf("Error building strategy: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(agent.GenerateMermaid(strategy))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("mode", string(agent.RunModeSequential), "Tool execution mode (sequential, parallel, single)")
}
