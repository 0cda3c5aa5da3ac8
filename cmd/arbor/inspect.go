package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	model "github.com/aretw0/arbor/pkg/graph"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <graph-id>",
	Short: "Show a stored graph",
	Long:  `Loads a stored graph and prints a rendered summary of its nodes, boundary ports, and port map aliases.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := cli.NewWorkspace(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		g, err := ws.LoadGraph(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading graph '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		out := summarize(g)
		if rendered, err := tui.NewRenderer()(out); err == nil {
			out = rendered
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func summarize(g *model.Graph) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Graph %s\n\n", g.ID())
	fmt.Fprintf(&sb, "Mode: %s\n\n", g.Mode())

	sb.WriteString("## Nodes\n\n")
	sb.WriteString("| Index | Type | Ports |\n|---|---|---|\n")
	for i, n := range g.Nodes() {
		if n == nil {
			fmt.Fprintf(&sb, "| %d | _removed_ | |\n", i)
			continue
		}
		fields := make([]string, 0, len(n.Ports()))
		for _, p := range n.Ports() {
			fields = append(fields, fmt.Sprintf("%s (%s)", p.Field(), p.Direction()))
		}
		fmt.Fprintf(&sb, "| %d | %s | %s |\n", i, n.Type(), strings.Join(fields, ", "))
	}

	if entries := g.PortMap().Entries(); len(entries) > 0 {
		sb.WriteString("\n## Boundary aliases\n\n")
		for _, e := range entries {
			fmt.Fprintf(&sb, "- %s (%s) -> %s on %s\n",
				e.Key.Field(), e.Key.Direction(), e.Value.Field(), e.Value.Node().Type())
		}
	}
	return sb.String()
}
