package graph

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/schema"
)

// PortDescriptor is the persisted identity of a port: the owner's
// position in the node list (-1 for the graph itself), the field name,
// and the declarative port attributes.
type PortDescriptor struct {
	Node       int    `json:"node" yaml:"node"`
	Field      string `json:"field" yaml:"field"`
	Direction  string `json:"direction" yaml:"direction"`
	Type       string `json:"type" yaml:"type"`
	Policy     string `json:"policy,omitempty" yaml:"policy,omitempty"`
	Constraint string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

// NodeSnapshot captures one node-list slot. A nil *NodeSnapshot in
// Snapshot.Nodes encodes a tombstone.
type NodeSnapshot struct {
	ID           string         `json:"id" yaml:"id"`
	Type         string         `json:"type" yaml:"type"`
	Params       map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	DynamicPorts []PortSpec     `json:"dynamic_ports,omitempty" yaml:"dynamic_ports,omitempty"`
	// Graph carries the recursive snapshot of a nested subgraph node.
	Graph *Snapshot `json:"graph,omitempty" yaml:"graph,omitempty"`
}

// ConnectionSnapshot records one edge between two ports inside the graph.
type ConnectionSnapshot struct {
	From PortDescriptor `json:"from" yaml:"from"`
	To   PortDescriptor `json:"to" yaml:"to"`
}

// PortMapSnapshot flattens the alias table to two parallel ordered
// sequences. Restore fails if they differ in length.
type PortMapSnapshot struct {
	Keys   []PortDescriptor `json:"keys" yaml:"keys"`
	Values []PortDescriptor `json:"values" yaml:"values"`
}

// Snapshot is the complete persisted form of a graph.
type Snapshot struct {
	ID            string               `json:"id" yaml:"id"`
	Mode          string               `json:"mode,omitempty" yaml:"mode,omitempty"`
	Nodes         []*NodeSnapshot      `json:"nodes" yaml:"nodes"`
	BoundaryPorts []PortSpec           `json:"boundary_ports,omitempty" yaml:"boundary_ports,omitempty"`
	Connections   []ConnectionSnapshot `json:"connections,omitempty" yaml:"connections,omitempty"`
	PortMap       PortMapSnapshot      `json:"port_map" yaml:"port_map"`
}

// Snapshot captures the graph: node list (holes included), boundary
// ports, internal connections, and the flattened port map. The
// persistence layer invokes it explicitly; there are no implicit
// serialization hooks.
func (g *Graph) Snapshot() *Snapshot {
	snap := &Snapshot{
		ID:    g.id,
		Mode:  g.mode.String(),
		Nodes: make([]*NodeSnapshot, len(g.nodes)),
	}

	for _, p := range g.ports {
		snap.BoundaryPorts = append(snap.BoundaryPorts, specOf(p))
	}

	for i, n := range g.nodes {
		if n == nil {
			continue
		}
		ns := &NodeSnapshot{ID: n.ID(), Type: n.Type()}
		if sub, ok := n.(*Graph); ok {
			ns.Graph = sub.Snapshot()
		} else if pp, ok := n.(ParamProvider); ok {
			ns.Params = pp.Params()
		}
		for _, p := range n.Ports() {
			if p.IsDynamic() {
				ns.DynamicPorts = append(ns.DynamicPorts, specOf(p))
			}
		}
		snap.Nodes[i] = ns
	}

	// Connections are recorded once each, walking input sides.
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		for _, p := range n.Ports() {
			if !p.IsInput() {
				continue
			}
			for _, conn := range p.connections {
				from, ok := g.describePort(conn)
				if !ok {
					continue // endpoint outside this graph
				}
				to, _ := g.describePort(p)
				snap.Connections = append(snap.Connections, ConnectionSnapshot{From: from, To: to})
			}
		}
	}

	for _, e := range g.portMap.Entries() {
		k, ok := g.describePort(e.Key)
		if !ok {
			continue
		}
		v, ok := g.describePort(e.Value)
		if !ok {
			continue
		}
		snap.PortMap.Keys = append(snap.PortMap.Keys, k)
		snap.PortMap.Values = append(snap.PortMap.Values, v)
	}

	return snap
}

// Restore rebuilds a graph from its snapshot using the given factory.
// A port-map key/value length mismatch is a fatal load error
// (ErrCorruptPortMap); nothing is partially recovered.
func Restore(snap *Snapshot, factory Factory) (*Graph, error) {
	if len(snap.PortMap.Keys) != len(snap.PortMap.Values) {
		return nil, fmt.Errorf("%w: %d keys, %d values",
			ErrCorruptPortMap, len(snap.PortMap.Keys), len(snap.PortMap.Values))
	}

	mode, err := ParseMode(snap.Mode)
	if err != nil {
		return nil, err
	}
	g := New(factory, WithMode(mode))
	if snap.ID != "" {
		g.id = snap.ID
	}

	for _, spec := range snap.BoundaryPorts {
		if _, err := g.addPortFromSpec(spec); err != nil {
			return nil, err
		}
	}

	g.nodes = make([]Node, len(snap.Nodes))
	for i, ns := range snap.Nodes {
		if ns == nil {
			continue // tombstone
		}
		n, err := restoreNode(ns, factory)
		if err != nil {
			return nil, fmt.Errorf("restoring node %d: %w", i, err)
		}
		n.base().graph = g
		g.nodes[i] = n
	}

	for _, c := range snap.Connections {
		from, err := g.resolvePort(c.From, false)
		if err != nil {
			return nil, fmt.Errorf("restoring connection: %w", err)
		}
		to, err := g.resolvePort(c.To, false)
		if err != nil {
			return nil, fmt.Errorf("restoring connection: %w", err)
		}
		if err := from.Connect(to); err != nil {
			return nil, fmt.Errorf("restoring connection %s -> %s: %w", c.From.Field, c.To.Field, err)
		}
	}

	for i := range snap.PortMap.Keys {
		key, err := g.resolvePort(snap.PortMap.Keys[i], true)
		if err != nil {
			return nil, fmt.Errorf("restoring port map: %w", err)
		}
		value, err := g.resolvePort(snap.PortMap.Values[i], true)
		if err != nil {
			return nil, fmt.Errorf("restoring port map: %w", err)
		}
		g.portMap.Insert(key, value)
	}

	return g, nil
}

func restoreNode(ns *NodeSnapshot, factory Factory) (Node, error) {
	if ns.Graph != nil {
		sub, err := Restore(ns.Graph, factory)
		if err != nil {
			return nil, err
		}
		return sub, nil
	}

	n, err := factory.Create(ns.Type)
	if err != nil {
		return nil, err
	}
	n.base().id = ns.ID
	if cfg, ok := n.(Configurable); ok && ns.Params != nil {
		if err := cfg.Configure(ns.Params); err != nil {
			return nil, fmt.Errorf("configuring %s: %w", ns.Type, err)
		}
	}
	for _, spec := range ns.DynamicPorts {
		dir, err := ParseDirection(spec.Direction)
		if err != nil {
			return nil, err
		}
		t, err := schema.ParseType(spec.Type)
		if err != nil {
			return nil, err
		}
		policy, err := ParseConnectionPolicy(spec.Policy)
		if err != nil {
			return nil, err
		}
		constraint, err := ParseTypeConstraint(spec.Constraint)
		if err != nil {
			return nil, err
		}
		if _, err := n.base().AddDynamicPort(n, spec.Field, dir, t, policy, constraint); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// describePort converts a live port to its persisted descriptor.
// Returns false when the owner is neither the graph nor one of its nodes.
func (g *Graph) describePort(p *Port) (PortDescriptor, bool) {
	idx := -1
	if p.node != Node(g) {
		idx = g.IndexOf(p.node)
		if idx < 0 {
			return PortDescriptor{}, false
		}
	}
	return PortDescriptor{
		Node:       idx,
		Field:      p.field,
		Direction:  p.direction.String(),
		Type:       typeName(p.valueType),
		Policy:     p.policy.String(),
		Constraint: p.constraint.String(),
	}, true
}

// resolvePort finds the live port a descriptor refers to. When the
// descriptor names a missing boundary port and recreate is set, the port
// is rebuilt from the descriptor's attributes.
func (g *Graph) resolvePort(d PortDescriptor, recreate bool) (*Port, error) {
	dir, err := ParseDirection(d.Direction)
	if err != nil {
		return nil, err
	}

	var owner Node = g
	if d.Node >= 0 {
		owner = g.NodeAt(d.Node)
		if owner == nil {
			return nil, fmt.Errorf("%w: descriptor references node %d", ErrNodeNotFound, d.Node)
		}
	}

	if p := owner.Port(d.Field, dir); p != nil {
		return p, nil
	}
	if recreate && d.Node < 0 {
		return g.addPortFromSpec(PortSpec{
			Field:      d.Field,
			Direction:  d.Direction,
			Type:       d.Type,
			Policy:     d.Policy,
			Constraint: d.Constraint,
		})
	}
	return nil, fmt.Errorf("%w: %s %s on node %d", ErrPortNotFound, d.Direction, d.Field, d.Node)
}

func (g *Graph) addPortFromSpec(spec PortSpec) (*Port, error) {
	dir, err := ParseDirection(spec.Direction)
	if err != nil {
		return nil, err
	}
	t, err := schema.ParseType(spec.Type)
	if err != nil {
		return nil, err
	}
	policy, err := ParseConnectionPolicy(spec.Policy)
	if err != nil {
		return nil, err
	}
	constraint, err := ParseTypeConstraint(spec.Constraint)
	if err != nil {
		return nil, err
	}
	if dir == Input {
		return g.AddDynamicInput(t, policy, constraint, spec.Field)
	}
	return g.AddDynamicOutput(t, policy, constraint, spec.Field)
}
