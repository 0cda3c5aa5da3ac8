/*
Package arbor is a node-graph data model with pull-based evaluation, built
around a deep-copy protocol that keeps copies positionally aligned with
their originals.

Graphs hold an ordered, index-stable list of nodes. Each node declares
typed input and output ports; values are never pushed, they are pulled on
demand through port connections. A graph is itself a node: its port map
aliases inner ports to boundary ports, so nested subgraphs compose like
any other node.

# Key Features

  - Positional correspondence: Copy preserves node indexes, tombstones
    included, so external references survive duplication.
  - Port remapping: boundary aliases are redirected and re-anchored
    during copy, never shared between original and copy.
  - Pull evaluation: values resolve lazily through connections and
    boundary aliases, with typed accessors on the way out.
  - Pluggable persistence: snapshots round-trip through memory, file,
    or Redis stores behind one contract.

# Usage

The Workspace ties a node factory to a snapshot store:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/graph"
		"github.com/aretw0/arbor/pkg/nodes"
	)

	func main() {
		ws := arbor.New()
		g := ws.NewGraph()

		a, _ := g.AddNode(nodes.TypeConst)
		a.(*nodes.Const).Configure(map[string]any{"value": 2, "type": "int"})
		sum, _ := g.AddNode(nodes.TypeSum)
		a.Port("value", graph.Output).Connect(sum.Port("values", graph.Input))
		out, _ := g.AddFromChildNodePort(sum.Port("sum", graph.Output))

		ctx := context.Background()
		if err := ws.SaveGraph(ctx, g); err != nil {
			log.Fatal(err)
		}
		cp, err := ws.CopyGraph(ctx, g.ID())
		if err != nil {
			log.Fatal(err)
		}

		v, _ := cp.GetValue(cp.Port(out.Field(), graph.Output))
		log.Println("sum:", v)
	}
*/
package arbor
