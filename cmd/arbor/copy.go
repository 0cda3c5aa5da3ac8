package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var copyCmd = &cobra.Command{
	Use:   "copy <graph-id>",
	Short: "Deep-copy a stored graph",
	Long:  `Loads a stored graph, deep-copies it with positional correspondence, persists the copy, and prints the new graph ID.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := cli.NewWorkspace(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		cp, err := ws.CopyGraph(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error copying graph '%s': %v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Println(cp.ID())
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
}
