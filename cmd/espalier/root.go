package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is an interactive narrative flow engine",
	Long:  `Espalier plays branching narrative graphs: dialogue, conditions and instructions authored as Markdown or YAML files.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory (or .yaml file) containing the flow graph")
	rootCmd.PersistentFlags().String("start", "start", "Node id to start the flow at")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
