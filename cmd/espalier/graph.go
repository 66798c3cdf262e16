package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the flow graph visualization",
	Long:  `Inspects the repository and outputs a Mermaid diagram (graph TD) representing the flow logic.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optsFromFlags(cmd, args)
		engine, err := cli.NewEngine(opts)
		if err != nil {
			fmt.Printf("Error initializing espalier: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(graph.GenerateMermaid(engine.Graph(), nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
