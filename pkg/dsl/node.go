package dsl

// NodeBuilder provides a fluent API for configuring one declared node.
type NodeBuilder struct {
	name     string
	typeName string
	params   map[string]any
	builder  *Builder
}

// Param sets one configuration parameter, passed to the node's Configure
// during Build.
func (n *NodeBuilder) Param(key string, value any) *NodeBuilder {
	if n.params == nil {
		n.params = make(map[string]any)
	}
	n.params[key] = value
	return n
}

// To wires this node's output field to a target node's input field.
func (n *NodeBuilder) To(fromField, toNode, toField string) *NodeBuilder {
	n.builder.Connect(n.name, fromField, toNode, toField)
	return n
}

// ExposeInput aliases this node's input field at the graph boundary.
func (n *NodeBuilder) ExposeInput(field string) *NodeBuilder {
	n.builder.ExposeInput(n.name, field)
	return n
}

// ExposeOutput aliases this node's output field at the graph boundary.
func (n *NodeBuilder) ExposeOutput(field string) *NodeBuilder {
	n.builder.ExposeOutput(n.name, field)
	return n
}

// Done returns the parent builder for call chaining across nodes.
func (n *NodeBuilder) Done() *Builder {
	return n.builder
}
