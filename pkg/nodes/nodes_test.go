package nodes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/nodes"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/schema"
)

func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	r := registry.New()
	nodes.RegisterAll(r)
	return graph.New(r)
}

func TestConst_Configure(t *testing.T) {
	t.Run("typed value", func(t *testing.T) {
		n := nodes.NewConst()
		require.NoError(t, n.Configure(map[string]any{"value": 42, "type": "int"}))
		v, err := n.GetValue(n.Port("value", graph.Output))
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, map[string]any{"value": 42, "type": "int"}, n.Params())
	})

	t.Run("rejects unknown type names", func(t *testing.T) {
		n := nodes.NewConst()
		assert.Error(t, n.Configure(map[string]any{"value": 1, "type": "quaternion"}))
	})

	t.Run("rejects mismatched values", func(t *testing.T) {
		n := nodes.NewConst()
		assert.Error(t, n.Configure(map[string]any{"value": "nope", "type": "int"}))
	})

	t.Run("rejects non-string type field", func(t *testing.T) {
		n := nodes.NewConst()
		assert.Error(t, n.Configure(map[string]any{"value": 1, "type": 5}))
	})

	t.Run("retypes the output port", func(t *testing.T) {
		n := nodes.NewConst()
		require.NoError(t, n.Configure(map[string]any{"value": "hi", "type": "string"}))
		assert.Equal(t, "string", n.Port("value", graph.Output).ValueType().Name())

		// A Strict consumer now sees the declared type.
		g := newGraph(t)
		require.NoError(t, g.AddNodeInstance(n))
		cc, err := g.AddNode(nodes.TypeConcat)
		require.NoError(t, err)
		assert.NoError(t, n.Port("value", graph.Output).Connect(cc.Port("parts", graph.Input)))
	})
}

func TestSum_FoldsNumbers(t *testing.T) {
	g := newGraph(t)
	sum, err := g.AddNode(nodes.TypeSum)
	require.NoError(t, err)
	in := sum.Port("values", graph.Input)

	for _, c := range []*nodes.Const{
		nodes.NewTypedConst(1, schema.Int()),
		nodes.NewTypedConst(2.5, schema.Float()),
		nodes.NewTypedConst(3, schema.Int()),
	} {
		require.NoError(t, g.AddNodeInstance(c))
		require.NoError(t, c.Port("value", graph.Output).Connect(in))
	}

	v, err := sum.GetValue(sum.Port("sum", graph.Output))
	require.NoError(t, err)
	assert.Equal(t, 6.5, v)
}

func TestSum_EmptyInputIsZero(t *testing.T) {
	g := newGraph(t)
	sum, err := g.AddNode(nodes.TypeSum)
	require.NoError(t, err)

	v, err := sum.GetValue(sum.Port("sum", graph.Output))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestConcat_JoinsWithSeparator(t *testing.T) {
	g := newGraph(t)
	concat, err := g.AddNode(nodes.TypeConcat)
	require.NoError(t, err)
	require.NoError(t, concat.(*nodes.Concat).Configure(map[string]any{"separator": ", "}))
	in := concat.Port("parts", graph.Input)

	for _, s := range []string{"a", "b", "c"} {
		c := nodes.NewTypedConst(s, schema.String())
		require.NoError(t, g.AddNodeInstance(c))
		require.NoError(t, c.Port("value", graph.Output).Connect(in))
	}

	v, err := concat.GetValue(concat.Port("text", graph.Output))
	require.NoError(t, err)
	assert.Equal(t, "a, b, c", v)
}

func TestConcat_CloneKeepsSeparator(t *testing.T) {
	r := registry.New()
	nodes.RegisterAll(r)
	original, err := r.Create(nodes.TypeConcat)
	require.NoError(t, err)
	require.NoError(t, original.(*nodes.Concat).Configure(map[string]any{"separator": "-"}))

	clone, err := r.Clone(original)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"separator": "-"}, clone.(*nodes.Concat).Params())
}

func TestPassthrough_ForwardsInput(t *testing.T) {
	g := newGraph(t)
	pass, err := g.AddNode(nodes.TypePassthrough)
	require.NoError(t, err)

	c := nodes.NewTypedConst(true, schema.Bool())
	require.NoError(t, g.AddNodeInstance(c))
	require.NoError(t, c.Port("value", graph.Output).Connect(pass.Port("in", graph.Input)))

	v, err := pass.GetValue(pass.Port("out", graph.Output))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	// Unconnected passthroughs forward nothing.
	lone, err := g.AddNode(nodes.TypePassthrough)
	require.NoError(t, err)
	v, err = lone.GetValue(lone.Port("out", graph.Output))
	require.NoError(t, err)
	assert.Nil(t, v)
}
