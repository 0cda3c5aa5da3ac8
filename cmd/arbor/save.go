package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/loader"
)

var saveCmd = &cobra.Command{
	Use:   "save <document.yaml>",
	Short: "Build a graph document and persist it",
	Long:  `Builds a YAML graph document against the built-in node registry, saves the snapshot to the configured store, and prints the graph ID.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := cli.NewWorkspace(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		g, err := loader.LoadFile(args[0], ws.Factory())
		if err != nil {
			fmt.Printf("Error building graph: %v\n", err)
			os.Exit(1)
		}
		if err := ws.SaveGraph(cmd.Context(), g); err != nil {
			fmt.Printf("Error saving graph: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(g.ID())
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
}
