package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/graph"
)

// Builder manages graph construction. Errors are deferred: the fluent
// calls record intent and Build reports the first failure with the node
// name it occurred on.
type Builder struct {
	factory graph.Factory
	mode    graph.Mode
	order   []string
	nodes   map[string]*NodeBuilder
	edges   []edge
	exposed []exposure
}

type edge struct {
	fromNode, fromField string
	toNode, toField     string
}

type exposure struct {
	node, field string
	dir         graph.Direction
}

// New creates a graph builder backed by the given node factory.
func New(factory graph.Factory) *Builder {
	return &Builder{
		factory: factory,
		nodes:   make(map[string]*NodeBuilder),
	}
}

// Live switches the built graph to live mode, where removed nodes are
// destroyed immediately.
func (b *Builder) Live() *Builder {
	b.mode = graph.ModeLive
	return b
}

// Add declares a node of the given registered type under a local name.
// Adding the same name twice returns the existing builder; the type of
// the first call wins.
func (b *Builder) Add(name, typeName string) *NodeBuilder {
	if nb, ok := b.nodes[name]; ok {
		return nb
	}
	nb := &NodeBuilder{
		name:     name,
		typeName: typeName,
		builder:  b,
	}
	b.nodes[name] = nb
	b.order = append(b.order, name)
	return nb
}

// Connect wires fromNode's output field to toNode's input field.
func (b *Builder) Connect(fromNode, fromField, toNode, toField string) *Builder {
	b.edges = append(b.edges, edge{fromNode, fromField, toNode, toField})
	return b
}

// ExposeInput aliases an inner node's input field at the graph boundary.
func (b *Builder) ExposeInput(node, field string) *Builder {
	b.exposed = append(b.exposed, exposure{node, field, graph.Input})
	return b
}

// ExposeOutput aliases an inner node's output field at the graph boundary.
func (b *Builder) ExposeOutput(node, field string) *Builder {
	b.exposed = append(b.exposed, exposure{node, field, graph.Output})
	return b
}

// Build compiles the declarations into a graph. Nodes are created in
// Add order, so positions in the node list are deterministic.
func (b *Builder) Build() (*graph.Graph, error) {
	g := graph.New(b.factory, graph.WithMode(b.mode))

	built := make(map[string]graph.Node, len(b.order))
	for _, name := range b.order {
		nb := b.nodes[name]
		n, err := g.AddNode(nb.typeName)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		if len(nb.params) > 0 {
			cfg, ok := n.(graph.Configurable)
			if !ok {
				return nil, fmt.Errorf("node %q: type %s takes no parameters", name, nb.typeName)
			}
			if err := cfg.Configure(nb.params); err != nil {
				return nil, fmt.Errorf("node %q: %w", name, err)
			}
		}
		built[name] = n
	}

	for _, e := range b.edges {
		from, err := resolve(built, e.fromNode, e.fromField, graph.Output)
		if err != nil {
			return nil, err
		}
		to, err := resolve(built, e.toNode, e.toField, graph.Input)
		if err != nil {
			return nil, err
		}
		if err := from.Connect(to); err != nil {
			return nil, fmt.Errorf("connecting %s.%s -> %s.%s: %w",
				e.fromNode, e.fromField, e.toNode, e.toField, err)
		}
	}

	for _, x := range b.exposed {
		p, err := resolve(built, x.node, x.field, x.dir)
		if err != nil {
			return nil, err
		}
		if _, err := g.AddFromChildNodePort(p); err != nil {
			return nil, fmt.Errorf("exposing %s.%s: %w", x.node, x.field, err)
		}
	}

	return g, nil
}

func resolve(built map[string]graph.Node, node, field string, dir graph.Direction) (*graph.Port, error) {
	n, ok := built[node]
	if !ok {
		return nil, fmt.Errorf("unknown node %q", node)
	}
	p := n.Port(field, dir)
	if p == nil {
		return nil, fmt.Errorf("node %q has no %s port %q", node, dir, field)
	}
	return p, nil
}
