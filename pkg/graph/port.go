package graph

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/schema"
)

// Direction tells whether a port consumes or produces values.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// ParseDirection converts a persisted direction tag back to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "input":
		return Input, nil
	case "output":
		return Output, nil
	default:
		return Input, fmt.Errorf("unknown direction %q", s)
	}
}

// ConnectionPolicy controls how a port reacts to new connections.
type ConnectionPolicy int

const (
	// Multiple keeps every connection made to the port.
	Multiple ConnectionPolicy = iota
	// Override drops existing connections when a new one is made.
	Override
)

func (p ConnectionPolicy) String() string {
	if p == Override {
		return "override"
	}
	return "multiple"
}

// ParseConnectionPolicy converts a persisted policy tag back to a ConnectionPolicy.
func ParseConnectionPolicy(s string) (ConnectionPolicy, error) {
	switch s {
	case "multiple", "":
		return Multiple, nil
	case "override":
		return Override, nil
	default:
		return Multiple, fmt.Errorf("unknown connection policy %q", s)
	}
}

// TypeConstraint controls which value types a port accepts on connect.
type TypeConstraint int

const (
	// None accepts any counterpart type.
	None TypeConstraint = iota
	// Strict requires the exact same type name on both ends.
	Strict
	// Inherited accepts assignable types (see schema.Assignable).
	Inherited
)

func (c TypeConstraint) String() string {
	switch c {
	case Strict:
		return "strict"
	case Inherited:
		return "inherited"
	default:
		return "none"
	}
}

// ParseTypeConstraint converts a persisted constraint tag back to a TypeConstraint.
func ParseTypeConstraint(s string) (TypeConstraint, error) {
	switch s {
	case "none", "":
		return None, nil
	case "strict":
		return Strict, nil
	case "inherited":
		return Inherited, nil
	default:
		return None, fmt.Errorf("unknown type constraint %q", s)
	}
}

// Port is a named, typed, directional connection point on a node.
//
// Two ports compare map-equal when they share the owning node, field
// name, direction, and value type name. Connections never participate in
// identity.
type Port struct {
	node        Node
	field       string
	direction   Direction
	valueType   schema.Type
	policy      ConnectionPolicy
	constraint  TypeConstraint
	dynamic     bool
	connections []*Port
}

// Node returns the owning node.
func (p *Port) Node() Node { return p.node }

// Field returns the field name, unique per node and direction.
func (p *Port) Field() string { return p.field }

// Direction returns Input or Output.
func (p *Port) Direction() Direction { return p.direction }

// ValueType returns the declared value type.
func (p *Port) ValueType() schema.Type { return p.valueType }

// SetValueType retypes the port. For nodes whose value type is resolved
// during configuration; must happen before the port is connected, since
// existing connections are not re-checked.
func (p *Port) SetValueType(t schema.Type) { p.valueType = t }

// Policy returns the connection policy.
func (p *Port) Policy() ConnectionPolicy { return p.policy }

// Constraint returns the type constraint checked on connect.
func (p *Port) Constraint() TypeConstraint { return p.constraint }

// IsDynamic reports whether the port was created at runtime.
func (p *Port) IsDynamic() bool { return p.dynamic }

// IsInput reports whether the port consumes values.
func (p *Port) IsInput() bool { return p.direction == Input }

// IsOutput reports whether the port produces values.
func (p *Port) IsOutput() bool { return p.direction == Output }

// IsConnected reports whether the port has at least one connection.
func (p *Port) IsConnected() bool { return len(p.connections) > 0 }

// Connections returns a copy of the ordered connection list.
func (p *Port) Connections() []*Port {
	out := make([]*Port, len(p.connections))
	copy(out, p.connections)
	return out
}

// Connection returns the i-th connection, or nil if out of range.
func (p *Port) Connection(i int) *Port {
	if i < 0 || i >= len(p.connections) {
		return nil
	}
	return p.connections[i]
}

// ConnectionCount returns the number of connections.
func (p *Port) ConnectionCount() int { return len(p.connections) }

// sameIdentity implements map-equality: value type name, owning node
// identity, direction, and field name.
func (p *Port) sameIdentity(o *Port) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.field == o.field &&
		p.direction == o.direction &&
		p.node == o.node &&
		typeName(p.valueType) == typeName(o.valueType)
}

func typeName(t schema.Type) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

// Connect wires p to other. One end must be an input and the other an
// output. Override-policy endpoints drop their existing connections
// first. Connecting a port that participates in a port map retires its
// alias entry: connections take precedence over aliasing.
func (p *Port) Connect(other *Port) error {
	if p == nil || other == nil || p == other {
		return fmt.Errorf("%w: nil or self endpoint", ErrInvalidConnection)
	}
	if p.direction == other.direction {
		return fmt.Errorf("%w: both ports are %ss", ErrInvalidConnection, p.direction)
	}
	if p.connectedTo(other) {
		return nil
	}

	in, out := p, other
	if in.direction == Output {
		in, out = other, p
	}
	if err := checkConstraint(out, in); err != nil {
		return err
	}

	if p.policy == Override {
		p.ClearConnections()
	}
	if other.policy == Override {
		other.ClearConnections()
	}

	p.connections = append(p.connections, other)
	other.connections = append(other.connections, p)

	retireAliasFor(p)
	retireAliasFor(other)
	return nil
}

// retireAliasFor drops alias entries that reference a freshly connected
// port in its owning graph's map. Connections take precedence over
// aliasing: a mapped port that becomes connected must not keep its
// entry. Boundary ports of a graph-as-node are inner ports of the parent
// graph, so retirement always happens one level up from the port map
// that routes through the port.
func retireAliasFor(p *Port) {
	if p.node == nil {
		return
	}
	if g := p.node.Graph(); g != nil {
		g.retireAlias(p)
	}
}

// checkConstraint validates the value types of a candidate connection
// from out into in, honoring the stricter of the two constraints.
func checkConstraint(out, in *Port) error {
	constraint := in.constraint
	if constraint != Strict {
		switch out.constraint {
		case Strict:
			constraint = Strict
		case Inherited:
			if constraint == None {
				constraint = Inherited
			}
		}
	}
	switch constraint {
	case Strict:
		if typeName(out.valueType) != typeName(in.valueType) {
			return fmt.Errorf("%w: strict constraint, %s does not match %s",
				ErrInvalidConnection, typeName(out.valueType), typeName(in.valueType))
		}
	case Inherited:
		if !schema.Assignable(out.valueType, in.valueType) {
			return fmt.Errorf("%w: %s is not assignable to %s",
				ErrInvalidConnection, typeName(out.valueType), typeName(in.valueType))
		}
	}
	return nil
}

// Disconnect removes the connection between p and other, if any.
// It is tolerant of one-sided references left behind by graph copies.
func (p *Port) Disconnect(other *Port) {
	p.connections = removePort(p.connections, other)
	if other != nil {
		other.connections = removePort(other.connections, p)
	}
}

// ClearConnections drops every connection on the port, removing the
// back-references on remote endpoints.
func (p *Port) ClearConnections() {
	for _, c := range p.connections {
		if c != nil {
			c.connections = removePort(c.connections, p)
		}
	}
	p.connections = nil
}

func (p *Port) connectedTo(other *Port) bool {
	for _, c := range p.connections {
		if c == other {
			return true
		}
	}
	return false
}

func removePort(list []*Port, target *Port) []*Port {
	out := list[:0]
	for _, c := range list {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

// PortSpec is the declarative shape of a port, used when recreating
// dynamic ports across copies and restores.
type PortSpec struct {
	Field      string `json:"field" yaml:"field"`
	Direction  string `json:"direction" yaml:"direction"`
	Type       string `json:"type" yaml:"type"`
	Policy     string `json:"policy,omitempty" yaml:"policy,omitempty"`
	Constraint string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

// specOf captures the declarative shape of an existing port.
func specOf(p *Port) PortSpec {
	return PortSpec{
		Field:      p.field,
		Direction:  p.direction.String(),
		Type:       typeName(p.valueType),
		Policy:     p.policy.String(),
		Constraint: p.constraint.String(),
	}
}
