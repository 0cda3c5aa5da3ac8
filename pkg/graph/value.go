package graph

import "fmt"

// GetValue resolves a value question arriving at a port of the
// graph-as-node. The port is looked up in the port map; a hit delegates
// to the mapped port's owning node, a miss contributes nothing (nil).
//
// Pulled from outside with a boundary output port, the hit forwards to
// the aliased inner output. Pulled from inside with an unconnected inner
// input, the hit forwards to the graph's matching boundary input, whose
// external connection supplies the value.
func (g *Graph) GetValue(p *Port) (any, error) {
	mapped, ok := g.portMap.Lookup(p)
	if !ok {
		return nil, nil
	}
	if mapped.node == Node(g) && mapped.IsInput() {
		return g.inputValueByField(mapped.field)
	}
	return mapped.node.GetValue(mapped)
}

// GetInputValue resolves an inner input port through the graph's port
// map, typed. A hit resolves the mapped boundary field by name on the
// graph-as-node; a miss returns the zero value of T.
func GetInputValue[T any](g *Graph, p *Port) (T, error) {
	var zero T
	mapped, ok := g.portMap.Lookup(p)
	if !ok {
		return zero, nil
	}
	v, err := g.inputValueByField(mapped.field)
	if err != nil {
		return zero, err
	}
	return coerce[T](v)
}

// inputValueByField is the by-name input resolution on the graph acting
// as a node: it reads the external connection of the graph's own input
// port with the given field name.
func (g *Graph) inputValueByField(field string) (any, error) {
	p := g.NodeBase.Port(field, Input)
	if p == nil {
		return nil, nil
	}
	conn := p.Connection(0)
	if conn == nil {
		return nil, nil
	}
	return conn.node.GetValue(conn)
}

// Value pulls the value observable at p. Outputs ask their owning node;
// connected inputs pull their first connection; unconnected inputs fall
// back to the owning graph's alias and finally to the declared type's
// zero value.
func (p *Port) Value() (any, error) {
	if p.IsOutput() {
		return p.node.GetValue(p)
	}
	if conn := p.Connection(0); conn != nil {
		return conn.node.GetValue(conn)
	}
	if g := p.node.Graph(); g != nil {
		if _, ok := g.portMap.Lookup(p); ok {
			return g.GetValue(p)
		}
	}
	if p.valueType != nil {
		return p.valueType.Zero(), nil
	}
	return nil, nil
}

// InputValue resolves the named input on n, typed. Unconnected,
// unaliased inputs yield the zero value of T.
func InputValue[T any](n Node, field string) (T, error) {
	var zero T
	p := n.Port(field, Input)
	if p == nil {
		return zero, fmt.Errorf("%w: input %s on %s", ErrPortNotFound, field, n.Type())
	}
	v, err := p.Value()
	if err != nil {
		return zero, err
	}
	return coerce[T](v)
}

// InputValues resolves every connection made to the named input on n, in
// connection order. An unconnected input falls back to its single pulled
// value (alias or zero) so folds behave uniformly.
func InputValues(n Node, field string) ([]any, error) {
	p := n.Port(field, Input)
	if p == nil {
		return nil, fmt.Errorf("%w: input %s on %s", ErrPortNotFound, field, n.Type())
	}
	if !p.IsConnected() {
		v, err := p.Value()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		return []any{v}, nil
	}
	out := make([]any, 0, len(p.connections))
	for _, conn := range p.connections {
		v, err := conn.node.GetValue(conn)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// coerce narrows an untyped pull result to T. Nil yields the zero value;
// ints widen to float64 to match the schema assignability rule.
func coerce[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if tv, ok := v.(T); ok {
		return tv, nil
	}
	if f, ok := any(&zero).(*float64); ok {
		switch n := v.(type) {
		case int:
			*f = float64(n)
			return zero, nil
		case int64:
			*f = float64(n)
			return zero, nil
		}
	}
	return zero, fmt.Errorf("value of type %T does not match requested type", v)
}
