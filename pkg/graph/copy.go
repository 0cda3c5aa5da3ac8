package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// Copy produces a structurally independent deep copy of the graph:
// every node is cloned in place (tombstones preserved), every connection
// between cloned nodes is redirected to the corresponding clone, and the
// port map is re-anchored so that alias entries reference ports owned by
// the copy instead of the original.
//
// The node at index i of the copy is always the clone of the node at
// index i of the original. Connection endpoints that point outside the
// cloned node set are carried over unchanged.
func (g *Graph) Copy() (*Graph, error) {
	cp := &Graph{
		NodeBase: NodeBase{
			id:  uuid.NewString(),
			typ: g.typ,
		},
		factory: g.factory,
		mode:    g.mode,
		nodes:   make([]Node, len(g.nodes)),
		portMap: g.portMap.clone(),
	}

	// Boundary ports are recreated on the copy with their external
	// connection lists aliased; the endpoints live outside the node list
	// and are deliberately not redirected.
	for _, p := range g.ports {
		np := &Port{
			node:        cp,
			field:       p.field,
			direction:   p.direction,
			valueType:   p.valueType,
			policy:      p.policy,
			constraint:  p.constraint,
			dynamic:     p.dynamic,
			connections: append([]*Port(nil), p.connections...),
		}
		cp.ports = append(cp.ports, np)
	}

	// Clone pass: positional correspondence is established here and the
	// remap table records old node identity -> clone identity.
	remap := make(map[Node]Node, len(g.nodes))
	for i, n := range g.nodes {
		if n == nil {
			continue // hole from a prior deletion, preserved
		}
		clone, err := g.factory.Clone(n)
		if err != nil {
			return nil, fmt.Errorf("cloning node %d (%s): %w", i, n.Type(), err)
		}
		clone.base().graph = cp
		cp.nodes[i] = clone
		remap[n] = clone
	}

	// Redirection pass. Must precede map repair: the repair pass tests
	// post-redirection connectivity.
	for _, clone := range cp.nodes {
		if clone == nil {
			continue
		}
		for _, p := range clone.Ports() {
			g.redirect(p, remap)
		}
	}

	// Repair pass: re-anchor alias entries carried over by the shallow
	// map clone. Each unconnected port whose pre-copy identity appears in
	// the map gets a fresh boundary port on the copy; connected ports get
	// their stale entries dropped instead.
	for i, clone := range cp.nodes {
		if clone == nil {
			continue
		}
		original := g.nodes[i]
		for _, p := range clone.Ports() {
			probe := &Port{
				node:      original,
				field:     p.field,
				direction: p.direction,
				valueType: p.valueType,
			}
			if p.IsInput() {
				cp.reanchorInput(p, probe)
			} else {
				cp.reanchorOutput(p, probe)
			}
		}
	}

	// Entries that still reference the original graph (removed nodes,
	// ports never visited by the repair pass) cannot be resolved in the
	// copy and are dropped.
	cp.portMap.retain(func(e *Entry) bool {
		return cp.owns(e.Key.node) && cp.owns(e.Value.node)
	})

	return cp, nil
}

// redirect rewrites every connection endpoint of p that points into the
// cloned node set, resolving the endpoint on the clone by field name and
// direction. Outside endpoints are left unchanged.
func (g *Graph) redirect(p *Port, remap map[Node]Node) {
	for i, conn := range p.connections {
		clone, ok := remap[conn.node]
		if !ok {
			continue
		}
		if target := clone.Port(conn.field, conn.direction); target != nil {
			p.connections[i] = target
		}
	}
}

// reanchorInput handles the input half of the map repair. If the live
// port is unconnected and its pre-copy identity is a map key, the stale
// boundary input carried over from the original is replaced by a fresh
// dynamic input owned by the copy.
func (cp *Graph) reanchorInput(live, probe *Port) {
	stale, ok := cp.portMap.Lookup(probe)
	if !ok {
		return
	}
	cp.dropCarriedPort(stale)
	cp.portMap.RemoveByKey(probe)
	if live.IsConnected() {
		return // connections take precedence over aliasing
	}
	fresh, err := cp.AddDynamicInput(live.valueType, live.policy, live.constraint, stale.field)
	if err != nil {
		return
	}
	cp.portMap.Insert(live, fresh)
}

// reanchorOutput handles the output half of the map repair. Every entry
// whose value side matches the pre-copy identity is rewritten; multiple
// entries may share the same inner output and all of them are
// re-anchored.
func (cp *Graph) reanchorOutput(live, probe *Port) {
	for _, e := range cp.portMap.ByValue(probe) {
		stale := e.Key
		cp.dropCarriedPort(stale)
		cp.portMap.RemoveByKey(stale)
		if live.IsConnected() {
			continue
		}
		fresh, err := cp.AddDynamicOutput(live.valueType, live.policy, live.constraint, stale.field)
		if err != nil {
			continue
		}
		cp.portMap.Insert(fresh, live)
	}
}

// dropCarriedPort removes the copy's boundary port matching a stale
// entry endpoint. The stale port itself belongs to the original graph;
// the shallow boundary copy with the same field name and direction is
// the one to retire.
func (cp *Graph) dropCarriedPort(stale *Port) {
	carried := cp.NodeBase.Port(stale.field, stale.direction)
	if carried == nil || !carried.dynamic {
		return
	}
	_ = cp.NodeBase.RemoveDynamicPort(carried)
}

// owns reports whether n is the graph itself or a node in its list.
func (cp *Graph) owns(n Node) bool {
	if n == Node(cp) {
		return true
	}
	return cp.IndexOf(n) >= 0
}
