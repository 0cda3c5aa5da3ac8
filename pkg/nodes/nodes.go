package nodes

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/schema"
)

// Type names of the built-in nodes.
const (
	TypeConst       = "const"
	TypeSum         = "sum"
	TypeConcat      = "concat"
	TypePassthrough = "passthrough"
)

// RegisterAll registers every built-in node type on the registry.
func RegisterAll(r *registry.Registry) {
	r.Register(TypeConst, func() graph.Node { return NewConst() })
	r.Register(TypeSum, func() graph.Node { return NewSum() })
	r.Register(TypeConcat, func() graph.Node { return NewConcat() })
	r.Register(TypePassthrough, func() graph.Node { return NewPassthrough() })
}

// constParams is the persisted configuration of a Const node.
type constParams struct {
	Value any    `mapstructure:"value"`
	Type  string `mapstructure:"type"`
}

var constParamSchema = schema.Schema{
	"type": schema.String(),
}

// Const produces a fixed, typed value on its "value" output.
type Const struct {
	graph.NodeBase

	value any
	typ   schema.Type
}

// NewConst creates a const node producing nil until configured.
func NewConst() *Const {
	n := &Const{NodeBase: graph.NewNodeBase(TypeConst), typ: schema.Any()}
	n.AddOutput(n, "value", schema.Any(), graph.Multiple, graph.None)
	return n
}

// NewTypedConst creates a const node carrying the given value, with the
// "value" output typed accordingly.
func NewTypedConst(value any, t schema.Type) *Const {
	n := &Const{NodeBase: graph.NewNodeBase(TypeConst), value: value, typ: t}
	n.AddOutput(n, "value", t, graph.Multiple, graph.None)
	return n
}

// Configure decodes {"value": ..., "type": "..."} parameters.
func (n *Const) Configure(params map[string]any) error {
	if err := schema.ValidatePresent(constParamSchema, params); err != nil {
		return err
	}
	var p constParams
	if err := mapstructure.Decode(params, &p); err != nil {
		return fmt.Errorf("decoding const params: %w", err)
	}
	t, err := schema.ParseType(p.Type)
	if err != nil {
		return err
	}
	if p.Value != nil {
		if err := t.Validate(p.Value); err != nil {
			return fmt.Errorf("const value: %w", err)
		}
	}
	n.value = p.Value
	n.typ = t
	if out := n.Port("value", graph.Output); out != nil {
		out.SetValueType(t)
	}
	return nil
}

// Params captures the node's configuration for snapshots.
func (n *Const) Params() map[string]any {
	return map[string]any{"value": n.value, "type": n.typ.Name()}
}

// CopyStateTo carries the constant onto a fresh clone.
func (n *Const) CopyStateTo(dst graph.Node) error {
	c, ok := dst.(*Const)
	if !ok {
		return fmt.Errorf("expected *Const, got %T", dst)
	}
	c.value = n.value
	c.typ = n.typ
	if out := c.Port("value", graph.Output); out != nil {
		out.SetValueType(n.typ)
	}
	return nil
}

func (n *Const) GetValue(p *graph.Port) (any, error) {
	if p.Field() == "value" && p.IsOutput() {
		return n.value, nil
	}
	return nil, nil
}

// Sum folds every numeric value arriving at its "values" input into a
// float on its "sum" output. Ints widen to floats.
type Sum struct {
	graph.NodeBase
}

func NewSum() *Sum {
	n := &Sum{NodeBase: graph.NewNodeBase(TypeSum)}
	n.AddInput(n, "values", schema.Float(), graph.Multiple, graph.Inherited)
	n.AddOutput(n, "sum", schema.Float(), graph.Multiple, graph.None)
	return n
}

func (n *Sum) GetValue(p *graph.Port) (any, error) {
	if p.Field() != "sum" || !p.IsOutput() {
		return nil, nil
	}
	values, err := graph.InputValues(n, "values")
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, v := range values {
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		total += f
	}
	return total, nil
}

// Concat joins every string arriving at its "parts" input, with an
// optional separator parameter.
type Concat struct {
	graph.NodeBase

	separator string
}

func NewConcat() *Concat {
	n := &Concat{NodeBase: graph.NewNodeBase(TypeConcat)}
	n.AddInput(n, "parts", schema.String(), graph.Multiple, graph.Strict)
	n.AddOutput(n, "text", schema.String(), graph.Multiple, graph.None)
	return n
}

// Configure decodes {"separator": "..."}.
func (n *Concat) Configure(params map[string]any) error {
	var p struct {
		Separator string `mapstructure:"separator"`
	}
	if err := mapstructure.Decode(params, &p); err != nil {
		return fmt.Errorf("decoding concat params: %w", err)
	}
	n.separator = p.Separator
	return nil
}

func (n *Concat) Params() map[string]any {
	return map[string]any{"separator": n.separator}
}

func (n *Concat) CopyStateTo(dst graph.Node) error {
	c, ok := dst.(*Concat)
	if !ok {
		return fmt.Errorf("expected *Concat, got %T", dst)
	}
	c.separator = n.separator
	return nil
}

func (n *Concat) GetValue(p *graph.Port) (any, error) {
	if p.Field() != "text" || !p.IsOutput() {
		return nil, nil
	}
	values, err := graph.InputValues(n, "parts")
	if err != nil {
		return nil, err
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("concat: expected string part, got %T", v)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, n.separator), nil
}

// Passthrough forwards its "in" input to its "out" output unchanged.
// Useful as a probe and for exposing a value across a boundary.
type Passthrough struct {
	graph.NodeBase
}

func NewPassthrough() *Passthrough {
	n := &Passthrough{NodeBase: graph.NewNodeBase(TypePassthrough)}
	n.AddInput(n, "in", schema.Any(), graph.Override, graph.None)
	n.AddOutput(n, "out", schema.Any(), graph.Multiple, graph.None)
	return n
}

func (n *Passthrough) GetValue(p *graph.Port) (any, error) {
	if p.Field() != "out" || !p.IsOutput() {
		return nil, nil
	}
	return graph.InputValue[any](n, "in")
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("sum: expected number, got %T", v)
	}
}
