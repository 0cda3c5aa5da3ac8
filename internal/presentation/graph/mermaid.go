// Package graph renders node graphs as Mermaid flowcharts for the CLI
// and the HTTP adapter.
package graph

import (
	"fmt"
	"strings"

	model "github.com/aretw0/arbor/pkg/graph"
)

// GenerateMermaid produces a Mermaid flowchart from a graph.
// Styling is semantic:
//   - plain nodes: [Rectangle]
//   - nested subgraphs: [[Subroutine]]
//   - boundary inputs: [/Parallelogram/]
//   - boundary outputs: ([Stadium])
//
// Connections are solid arrows labeled with the source field; port map
// aliases are dotted arrows.
func GenerateMermaid(g *model.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, n := range g.Nodes() {
		if n == nil {
			continue // tombstone
		}
		opener, closer := "[", "]"
		if _, ok := n.(*model.Graph); ok {
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s #%d\"%s\n", nodeID(g, n), opener, n.Type(), i, closer))
	}

	for _, p := range g.Ports() {
		opener, closer := "([", "])"
		if p.IsInput() {
			opener, closer = "[/", "/]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", portID(p), opener, p.Field(), closer))
	}

	// Edges are walked once, from the input side.
	for _, n := range g.Nodes() {
		if n == nil {
			continue
		}
		writeInputEdges(&sb, g, n.Ports())
	}
	writeInputEdges(&sb, g, g.Ports())

	for _, e := range g.PortMap().Entries() {
		from, ok := endpointID(g, e.Key)
		if !ok {
			continue
		}
		to, ok := endpointID(g, e.Value)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", from, to))
	}

	return sb.String()
}

func writeInputEdges(sb *strings.Builder, g *model.Graph, ports []*model.Port) {
	for _, p := range ports {
		if !p.IsInput() {
			continue
		}
		to, ok := endpointID(g, p)
		if !ok {
			continue
		}
		for _, conn := range p.Connections() {
			from, ok := endpointID(g, conn)
			if !ok {
				continue // endpoint outside this graph
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", from, sanitizeMermaidID(conn.Field()), to))
		}
	}
}

// endpointID maps a port to the Mermaid node it is drawn on: inner
// node ports collapse onto their owning node, boundary ports get their
// own shape.
func endpointID(g *model.Graph, p *model.Port) (string, bool) {
	if p.Node() == model.Node(g) {
		return portID(p), true
	}
	if g.IndexOf(p.Node()) < 0 {
		return "", false
	}
	return nodeID(g, p.Node()), true
}

func nodeID(g *model.Graph, n model.Node) string {
	return fmt.Sprintf("n%d", g.IndexOf(n))
}

func portID(p *model.Port) string {
	dir := "out"
	if p.IsInput() {
		dir = "in"
	}
	return dir + "_" + sanitizeMermaidID(p.Field())
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
