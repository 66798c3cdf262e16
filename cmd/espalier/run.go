package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive narrative flow",
	Long:  `Starts the Espalier player in interactive mode with the graph from the current directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optsFromFlags(cmd, args)
		headless, _ := cmd.Flags().GetBool("headless")
		watchMode, _ := cmd.Flags().GetBool("watch")
		opts.Headless = headless

		if watchMode && headless {
			fmt.Println("Error: --watch and --headless cannot be used together.")
			os.Exit(1)
		}

		var err error
		if watchMode {
			err = cli.RunWatch(opts)
		} else {
			err = cli.RunSession(opts)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func optsFromFlags(cmd *cobra.Command, args []string) cli.RunOptions {
	repoPath, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		repoPath = args[0]
	}
	start, _ := cmd.Flags().GetString("start")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.RunOptions{RepoPath: repoPath, Start: start, Debug: debug}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, strict IO)")
	runCmd.Flags().BoolP("watch", "w", false, "Run in development mode with hot-reload")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
}
