package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/loader"
	"github.com/aretw0/arbor/pkg/nodes"
	"github.com/aretw0/arbor/pkg/registry"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document.yaml>",
	Short: "Check a graph document for consistency",
	Long:  `Parses a YAML graph document, builds it against the built-in node registry, and reports unknown types, bad connections, or invalid parameters.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Graph is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	reg := registry.New()
	nodes.RegisterAll(reg)

	_, err := loader.LoadFile(path, reg)
	return err
}
