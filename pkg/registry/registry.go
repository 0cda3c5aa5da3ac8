// Package registry provides the standard graph.Factory implementation:
// a table of node constructors keyed by type name, plus the clone and
// destroy halves of the node lifecycle.
package registry

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/arbor/pkg/graph"
)

// ErrTypeNotRegistered is returned when creating a node of an unknown type.
var ErrTypeNotRegistered = errors.New("node type not registered")

// Constructor builds a fresh node instance with its static ports declared.
type Constructor func() graph.Node

// Registry manages the available node types. It is safe for concurrent
// registration and lookup; the graphs built from it are not.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a node type. An existing type of the same name is
// overwritten.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// Types returns the registered type names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		out = append(out, name)
	}
	return out
}

// Create instantiates a node of the given type.
func (r *Registry) Create(typeName string) (graph.Node, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotRegistered, typeName)
	}
	return ctor(), nil
}

// Clone produces an independent copy of n. Subgraph nodes delegate to
// the graph's own deep copy; plain nodes are rebuilt from their
// constructor and their port layout and state carried over.
func (r *Registry) Clone(n graph.Node) (graph.Node, error) {
	if sub, ok := n.(*graph.Graph); ok {
		return sub.Copy()
	}
	clone, err := r.Create(n.Type())
	if err != nil {
		return nil, err
	}
	if err := graph.CloneInto(n, clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// Destroy releases a node's resources. Nodes that hold external
// resources implement io.Closer; everything else is left to the garbage
// collector.
func (r *Registry) Destroy(n graph.Node) {
	if closer, ok := n.(io.Closer); ok {
		_ = closer.Close()
	}
}
