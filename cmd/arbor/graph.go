package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/loader"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/nodes"
	"github.com/aretw0/arbor/pkg/registry"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <document.yaml>",
	Short: "Export the graph visualization",
	Long:  `Builds a YAML graph document and outputs a Mermaid diagram of its nodes, connections, and boundary ports.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg := registry.New()
		nodes.RegisterAll(reg)

		g, err := loader.LoadFile(args[0], reg)
		if err != nil {
			fmt.Printf("Error building graph: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(g))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
