package graph

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/schema"
)

// Mode tells the graph whether it runs in a live execution context or a
// design-time editing context. The distinction matters for destruction
// timing: live graphs destroy removed nodes immediately, design graphs
// leave destruction to the host's resource lifecycle.
type Mode int

const (
	ModeDesign Mode = iota
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "design"
}

// ParseMode converts a persisted mode tag back to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "design", "":
		return ModeDesign, nil
	case "live":
		return ModeLive, nil
	default:
		return ModeDesign, fmt.Errorf("unknown mode %q", s)
	}
}

// Graph owns an ordered, index-stable list of nodes and the port map
// that aliases nested ports to its own boundary ports.
//
// A graph is itself a Node: added to a parent graph it exposes its
// dynamic boundary ports like any other node, with value pulls resolved
// through the port map. Removal tombstones the slot (nil) instead of
// compacting, so positional correspondence survives partial deletions.
//
// Graphs are not safe for concurrent mutation; callers must serialize
// access externally. Value pulls recurse through connections without
// cycle detection; the connection graph must stay acyclic.
type Graph struct {
	NodeBase

	factory Factory
	mode    Mode
	nodes   []Node
	portMap *PortMap
}

// GraphOption configures a new graph.
type GraphOption func(*Graph)

// WithMode sets the execution context of the graph.
func WithMode(m Mode) GraphOption {
	return func(g *Graph) {
		g.mode = m
	}
}

// New creates an empty graph backed by the given node factory.
func New(factory Factory, opts ...GraphOption) *Graph {
	g := &Graph{
		NodeBase: NewNodeBase("graph"),
		factory:  factory,
		portMap:  NewPortMap(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Mode returns the graph's execution context.
func (g *Graph) Mode() Mode { return g.mode }

// Factory returns the node factory the graph was built with.
func (g *Graph) Factory() Factory { return g.factory }

// PortMap returns the graph's alias table.
func (g *Graph) PortMap() *PortMap { return g.portMap }

// Nodes returns a copy of the node list. Slots removed earlier appear
// as nil; indexes are stable.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the size of the node list, tombstones included.
func (g *Graph) Len() int { return len(g.nodes) }

// NodeAt returns the node at index i, or nil for tombstones and
// out-of-range indexes.
func (g *Graph) NodeAt(i int) Node {
	if i < 0 || i >= len(g.nodes) {
		return nil
	}
	return g.nodes[i]
}

// IndexOf returns the position of n in the node list, or -1 when n is
// the graph itself or not owned by it.
func (g *Graph) IndexOf(n Node) int {
	for i, own := range g.nodes {
		if own == n {
			return i
		}
	}
	return -1
}

// AddNode instantiates a node of the given registered type, binds it to
// the graph, and appends it to the node list. The graph back-reference
// is bound before any node-side initialization runs.
func (g *Graph) AddNode(typeName string) (Node, error) {
	n, err := g.factory.Create(typeName)
	if err != nil {
		return nil, err
	}
	if err := g.adopt(n); err != nil {
		return nil, err
	}
	return n, nil
}

// AddNodeInstance binds a pre-built node to the graph under the same
// contract as AddNode.
func (g *Graph) AddNodeInstance(n Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrNodeNotFound)
	}
	return g.adopt(n)
}

// CopyNode clones a single node, binds the clone to this graph, strips
// all its connections, and appends it. It is independent of the
// whole-graph deep copy.
func (g *Graph) CopyNode(original Node) (Node, error) {
	clone, err := g.factory.Clone(original)
	if err != nil {
		return nil, err
	}
	clone.ClearConnections()
	if err := g.adopt(clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// RemoveNode clears the node's connections, retires any alias entries
// that reference its ports, and tombstones its slot. In live mode the
// node is destroyed immediately; in design mode destruction is left to
// the host lifecycle.
func (g *Graph) RemoveNode(n Node) error {
	i := g.IndexOf(n)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, describe(n))
	}
	n.ClearConnections()
	g.portMap.retain(func(e *Entry) bool {
		return e.Key.node != n && e.Value.node != n
	})
	g.nodes[i] = nil
	n.base().graph = nil
	if g.mode == ModeLive {
		g.factory.Destroy(n)
	}
	return nil
}

// Clear drops every node. Nodes are destroyed in live mode. The alias
// table is emptied; the graph's own boundary ports survive.
func (g *Graph) Clear() {
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		n.ClearConnections()
		n.base().graph = nil
		if g.mode == ModeLive {
			g.factory.Destroy(n)
		}
	}
	g.nodes = g.nodes[:0]
	g.portMap.reset()
}

// AddDynamicInput creates a removable input port on the graph-as-node.
func (g *Graph) AddDynamicInput(t schema.Type, policy ConnectionPolicy, constraint TypeConstraint, field string) (*Port, error) {
	return g.NodeBase.AddDynamicPort(g, field, Input, t, policy, constraint)
}

// AddDynamicOutput creates a removable output port on the graph-as-node.
func (g *Graph) AddDynamicOutput(t schema.Type, policy ConnectionPolicy, constraint TypeConstraint, field string) (*Port, error) {
	return g.NodeBase.AddDynamicPort(g, field, Output, t, policy, constraint)
}

// RemoveDynamicPort removes a boundary port and retires any alias
// entries that reference it.
func (g *Graph) RemoveDynamicPort(p *Port) error {
	if err := g.NodeBase.RemoveDynamicPort(p); err != nil {
		return err
	}
	g.retireAlias(p)
	return nil
}

// AddFromChildNodePort exposes an inner node's port at the graph
// boundary. A matching dynamic port is created on the graph and an alias
// entry links the two. Calling it again for the same port is a no-op.
//
// For inputs the entry is keyed by the inner port; for outputs by the
// new boundary port. Either way the key side is where a value question
// arrives and the value side is where it is forwarded.
func (g *Graph) AddFromChildNodePort(p *Port) (*Port, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil port", ErrPortNotFound)
	}
	if p.IsInput() {
		if existing, ok := g.portMap.Lookup(p); ok {
			return existing, nil
		}
		dyn, err := g.AddDynamicInput(p.valueType, p.policy, p.constraint, p.field)
		if err != nil {
			return nil, err
		}
		g.portMap.Insert(p, dyn)
		return dyn, nil
	}

	for _, e := range g.portMap.ByValue(p) {
		return e.Key, nil
	}
	dyn, err := g.AddDynamicOutput(p.valueType, p.policy, p.constraint, p.field)
	if err != nil {
		return nil, err
	}
	g.portMap.Insert(dyn, p)
	return dyn, nil
}

// retireAlias removes every alias entry in which p participates.
// Connections take precedence over aliasing: once a mapped boundary port
// is connected, its entry must not survive.
func (g *Graph) retireAlias(p *Port) {
	g.portMap.retain(func(e *Entry) bool {
		return !e.Key.sameIdentity(p) && !e.Value.sameIdentity(p)
	})
}

// adopt binds n to the graph and appends it to the node list. Binding
// happens before Init so node-side initialization can see its graph.
func (g *Graph) adopt(n Node) error {
	n.base().graph = g
	g.nodes = append(g.nodes, n)
	if init, ok := n.(Initializer); ok {
		if err := init.Init(); err != nil {
			g.nodes = g.nodes[:len(g.nodes)-1]
			n.base().graph = nil
			return fmt.Errorf("initializing %s: %w", n.Type(), err)
		}
	}
	return nil
}

func describe(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s)", n.Type(), n.ID())
}
