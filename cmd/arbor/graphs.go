package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var graphsCmd = &cobra.Command{
	Use:   "graphs",
	Short: "Manage stored graphs",
	Long:  `List and remove graph snapshots in the configured store.`,
}

var graphsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored graphs",
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := cli.NewWorkspace(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ids, err := ws.ListGraphs(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing graphs: %v\n", err)
			os.Exit(1)
		}
		if len(ids) == 0 {
			fmt.Println("No stored graphs found.")
			return
		}
		fmt.Println("Stored graphs:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
	},
}

var graphsRmCmd = &cobra.Command{
	Use:   "rm <graph-id>...",
	Short: "Remove one or more stored graphs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := cli.NewWorkspace(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		hasError := false
		for _, id := range args {
			if err := ws.DeleteGraph(cmd.Context(), id); err != nil {
				fmt.Printf("Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed graph '%s'\n", id)
			}
		}
		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphsCmd)
	graphsCmd.AddCommand(graphsLsCmd)
	graphsCmd.AddCommand(graphsRmCmd)
}
