package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the flow graph for consistency",
	Long:  `Loads the graph and reports broken connections, unresolved jumps and script errors.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optsFromFlags(cmd, args)
		engine, err := cli.NewEngine(opts)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		if err := engine.Graph().Validate(); err != nil {
			fmt.Printf("Validation failed:\n%v\n", err)
			os.Exit(1)
		}
		fmt.Println("Graph is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
