// Package graph implements a directed graph of typed nodes connected
// through typed, directional ports, with pull-based value resolution.
//
// A Graph owns an ordered, index-stable list of nodes. Ports are declared
// statically by node constructors or added dynamically at runtime; input
// ports pull values from the output ports they are connected to. A graph
// is itself a Node: nested inside a parent graph it exposes inner ports
// as dynamic boundary ports, aliased through its PortMap.
//
// The core operation is Copy: a structurally independent deep copy that
// preserves positional correspondence (the clone of the node at index i
// lands at index i), redirects every connection between cloned nodes to
// the corresponding clones, and re-anchors port-map entries to fresh
// boundary ports owned by the copy.
//
// Graphs are single-threaded: no operation suspends, and no locking is
// performed. Callers must serialize concurrent access externally and keep
// the connection graph acyclic.
package graph
