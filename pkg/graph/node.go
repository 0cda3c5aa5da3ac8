package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/arbor/pkg/schema"
)

// Node is the capability surface the graph requires from every node:
// stable identity, port enumeration, connection clearing, dynamic port
// management, and per-port value resolution.
//
// Implementations embed NodeBase, which supplies everything except
// GetValue. How a node computes its output values is opaque to the graph.
type Node interface {
	// ID returns the node's persistent identifier.
	ID() string
	// Type returns the registered type name the node was created from.
	Type() string
	// Graph returns the owning graph, or nil before the node is added.
	Graph() *Graph
	// Ports returns the ordered port set.
	Ports() []*Port
	// Port resolves a port by field name and direction, or nil.
	Port(field string, dir Direction) *Port
	// ClearConnections drops every connection on every port.
	ClearConnections()
	// GetValue resolves the value produced at one of the node's ports.
	GetValue(p *Port) (any, error)

	base() *NodeBase
}

// Initializer is implemented by nodes that need their owning graph
// before finishing construction. The graph binds itself first and calls
// Init afterwards.
type Initializer interface {
	Init() error
}

// Configurable is implemented by nodes that accept persisted parameters.
type Configurable interface {
	Configure(params map[string]any) error
}

// ParamProvider is implemented by nodes whose parameters should be
// captured in snapshots.
type ParamProvider interface {
	Params() map[string]any
}

// StateCopier is implemented by nodes that carry internal state beyond
// their ports. CopyStateTo is invoked on the source during cloning.
type StateCopier interface {
	CopyStateTo(dst Node) error
}

// Factory creates, clones, and destroys node instances. The graph core
// consumes it; pkg/registry provides the standard implementation.
type Factory interface {
	Create(typeName string) (Node, error)
	Clone(n Node) (Node, error)
	Destroy(n Node)
}

// NodeBase carries the identity, graph back-reference, and port set
// shared by every node implementation.
type NodeBase struct {
	id    string
	typ   string
	graph *Graph
	ports []*Port
}

// NewNodeBase returns a base for a node of the given registered type.
func NewNodeBase(typeName string) NodeBase {
	return NodeBase{
		id:  uuid.NewString(),
		typ: typeName,
	}
}

// ID returns the node's persistent identifier.
func (b *NodeBase) ID() string { return b.id }

// Type returns the registered type name.
func (b *NodeBase) Type() string { return b.typ }

// Graph returns the owning graph, or nil.
func (b *NodeBase) Graph() *Graph { return b.graph }

// Ports returns the ordered port set.
func (b *NodeBase) Ports() []*Port {
	out := make([]*Port, len(b.ports))
	copy(out, b.ports)
	return out
}

// Port resolves a port by field name and direction, or nil.
func (b *NodeBase) Port(field string, dir Direction) *Port {
	for _, p := range b.ports {
		if p.field == field && p.direction == dir {
			return p
		}
	}
	return nil
}

// ClearConnections drops every connection on every port.
func (b *NodeBase) ClearConnections() {
	for _, p := range b.ports {
		p.ClearConnections()
	}
}

func (b *NodeBase) base() *NodeBase { return b }

// AddInput declares a static input port. If a port with the same field
// name and direction exists it is returned unchanged.
func (b *NodeBase) AddInput(owner Node, field string, t schema.Type, policy ConnectionPolicy, constraint TypeConstraint) *Port {
	return b.declarePort(owner, field, Input, t, policy, constraint)
}

// AddOutput declares a static output port. If a port with the same field
// name and direction exists it is returned unchanged.
func (b *NodeBase) AddOutput(owner Node, field string, t schema.Type, policy ConnectionPolicy, constraint TypeConstraint) *Port {
	return b.declarePort(owner, field, Output, t, policy, constraint)
}

// AddDynamicPort creates a removable port at runtime.
func (b *NodeBase) AddDynamicPort(owner Node, field string, dir Direction, t schema.Type, policy ConnectionPolicy, constraint TypeConstraint) (*Port, error) {
	if b.Port(field, dir) != nil {
		return nil, fmt.Errorf("%w: %s %s", ErrPortExists, dir, field)
	}
	p := &Port{
		node:       owner,
		field:      field,
		direction:  dir,
		valueType:  t,
		policy:     policy,
		constraint: constraint,
		dynamic:    true,
	}
	b.ports = append(b.ports, p)
	return p, nil
}

// RemoveDynamicPort clears the port's connections and removes it from
// the node. Static ports cannot be removed.
func (b *NodeBase) RemoveDynamicPort(p *Port) error {
	for i, own := range b.ports {
		if own != p {
			continue
		}
		if !p.dynamic {
			return fmt.Errorf("%w: %s %s", ErrStaticPort, p.direction, p.field)
		}
		p.ClearConnections()
		b.ports = append(b.ports[:i], b.ports[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s %s", ErrPortNotFound, p.direction, p.field)
}

func (b *NodeBase) declarePort(owner Node, field string, dir Direction, t schema.Type, policy ConnectionPolicy, constraint TypeConstraint) *Port {
	if existing := b.Port(field, dir); existing != nil {
		return existing
	}
	p := &Port{
		node:       owner,
		field:      field,
		direction:  dir,
		valueType:  t,
		policy:     policy,
		constraint: constraint,
	}
	b.ports = append(b.ports, p)
	return p
}

// CloneInto copies the port layout of src onto dst: dynamic ports are
// recreated and every port's connection list is carried over as aliased
// references to the original remote endpoints. The caller (the deep-copy
// pass) is responsible for redirecting those references; CopyNode strips
// them instead. Node-specific state is copied through StateCopier.
func CloneInto(src, dst Node) error {
	if src.Type() != dst.Type() {
		return fmt.Errorf("cannot clone %s into %s", src.Type(), dst.Type())
	}
	sb, db := src.base(), dst.base()
	db.id = uuid.NewString()

	for _, p := range sb.ports {
		target := db.Port(p.field, p.direction)
		if target == nil {
			if !p.dynamic {
				return fmt.Errorf("%w: clone of %s is missing static port %s", ErrPortNotFound, src.Type(), p.field)
			}
			var err error
			target, err = db.AddDynamicPort(dst, p.field, p.direction, p.valueType, p.policy, p.constraint)
			if err != nil {
				return err
			}
		}
		target.connections = append([]*Port(nil), p.connections...)
	}

	if sc, ok := src.(StateCopier); ok {
		if err := sc.CopyStateTo(dst); err != nil {
			return fmt.Errorf("copying %s state: %w", src.Type(), err)
		}
	}
	return nil
}
