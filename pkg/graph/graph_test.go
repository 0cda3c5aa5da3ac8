package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/nodes"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/schema"
)

// closeProbe records whether its owning graph destroyed it.
type closeProbe struct {
	graph.NodeBase
	closed bool
}

func newCloseProbe() *closeProbe {
	n := &closeProbe{NodeBase: graph.NewNodeBase("probe")}
	n.AddOutput(n, "out", schema.Any(), graph.Multiple, graph.None)
	return n
}

func (n *closeProbe) GetValue(*graph.Port) (any, error) { return nil, nil }

func (n *closeProbe) Close() error {
	n.closed = true
	return nil
}

func TestGraph_AddNode(t *testing.T) {
	g := graph.New(newTestRegistry())

	n, err := g.AddNode(nodes.TypeConst)
	require.NoError(t, err)
	assert.Same(t, g, n.Graph())
	assert.Equal(t, 0, g.IndexOf(n))
	assert.Same(t, n, g.NodeAt(0))

	_, err = g.AddNode("no-such-type")
	assert.ErrorIs(t, err, registry.ErrTypeNotRegistered)
	assert.Equal(t, 1, g.Len(), "failed creation must not grow the list")
}

func TestGraph_RemoveNodeTombstonesSlot(t *testing.T) {
	g := graph.New(newTestRegistry())
	a, err := g.AddNode(nodes.TypeConst)
	require.NoError(t, err)
	b, err := g.AddNode(nodes.TypeSum)
	require.NoError(t, err)

	require.NoError(t, a.Port("value", graph.Output).Connect(b.Port("values", graph.Input)))
	require.NoError(t, g.RemoveNode(a))

	assert.Equal(t, 2, g.Len(), "removal must not compact the list")
	assert.Nil(t, g.NodeAt(0))
	assert.Same(t, b, g.NodeAt(1))
	assert.Nil(t, a.Graph())
	assert.False(t, b.Port("values", graph.Input).IsConnected(),
		"removal must clear connections on the surviving end")

	err = g.RemoveNode(a)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestGraph_RemoveNodeRetiresAliases(t *testing.T) {
	g := graph.New(newTestRegistry())
	sum, err := g.AddNode(nodes.TypeSum)
	require.NoError(t, err)
	_, err = g.AddFromChildNodePort(sum.Port("values", graph.Input))
	require.NoError(t, err)
	require.Equal(t, 1, g.PortMap().Len())

	require.NoError(t, g.RemoveNode(sum))
	assert.Equal(t, 0, g.PortMap().Len())
}

func TestGraph_DestructionTiming(t *testing.T) {
	t.Run("live destroys on removal", func(t *testing.T) {
		g := graph.New(newTestRegistry(), graph.WithMode(graph.ModeLive))
		n := newCloseProbe()
		require.NoError(t, g.AddNodeInstance(n))

		require.NoError(t, g.RemoveNode(n))
		assert.True(t, n.closed)
	})

	t.Run("design defers to the host", func(t *testing.T) {
		g := graph.New(newTestRegistry())
		n := newCloseProbe()
		require.NoError(t, g.AddNodeInstance(n))

		require.NoError(t, g.RemoveNode(n))
		assert.False(t, n.closed)
	})

	t.Run("clear follows the same rule", func(t *testing.T) {
		g := graph.New(newTestRegistry(), graph.WithMode(graph.ModeLive))
		n := newCloseProbe()
		require.NoError(t, g.AddNodeInstance(n))

		g.Clear()
		assert.True(t, n.closed)
		assert.Equal(t, 0, g.Len())
	})
}

func TestGraph_ClearKeepsBoundaryPorts(t *testing.T) {
	g := graph.New(newTestRegistry())
	_, err := g.AddNode(nodes.TypeConst)
	require.NoError(t, err)
	boundary, err := g.AddDynamicInput(schema.Int(), graph.Multiple, graph.None, "in")
	require.NoError(t, err)

	g.Clear()
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.PortMap().Len())
	assert.Same(t, boundary, g.Port("in", graph.Input))
}

func TestGraph_CopyNodeStripsConnections(t *testing.T) {
	g := graph.New(newTestRegistry())
	c, err := g.AddNode(nodes.TypeConst)
	require.NoError(t, err)
	require.NoError(t, c.(*nodes.Const).Configure(map[string]any{"value": 7, "type": "int"}))
	sum, err := g.AddNode(nodes.TypeSum)
	require.NoError(t, err)
	require.NoError(t, c.Port("value", graph.Output).Connect(sum.Port("values", graph.Input)))

	clone, err := g.CopyNode(c)
	require.NoError(t, err)

	assert.NotEqual(t, c.ID(), clone.ID())
	assert.False(t, clone.Port("value", graph.Output).IsConnected())
	assert.Equal(t, 1, c.Port("value", graph.Output).ConnectionCount(),
		"the original keeps its connections")

	v, err := clone.GetValue(clone.Port("value", graph.Output))
	require.NoError(t, err)
	assert.Equal(t, 7, v, "node state survives the clone")
}

func TestGraph_DynamicPorts(t *testing.T) {
	g := graph.New(newTestRegistry())

	p, err := g.AddDynamicInput(schema.String(), graph.Override, graph.Strict, "name")
	require.NoError(t, err)
	assert.True(t, p.IsDynamic())

	_, err = g.AddDynamicInput(schema.String(), graph.Override, graph.Strict, "name")
	assert.ErrorIs(t, err, graph.ErrPortExists)

	require.NoError(t, g.RemoveDynamicPort(p))
	assert.Nil(t, g.Port("name", graph.Input))

	err = g.RemoveDynamicPort(p)
	assert.ErrorIs(t, err, graph.ErrPortNotFound)
}

func TestGraph_StaticPortsCannotBeRemoved(t *testing.T) {
	g := graph.New(newTestRegistry())
	sum, err := g.AddNode(nodes.TypeSum)
	require.NoError(t, err)

	err = sum.(*nodes.Sum).RemoveDynamicPort(sum.Port("values", graph.Input))
	assert.ErrorIs(t, err, graph.ErrStaticPort)
}

func TestPort_Connect(t *testing.T) {
	g := graph.New(newTestRegistry())
	c1, _ := g.AddNode(nodes.TypeConst)
	c2, _ := g.AddNode(nodes.TypeConst)
	sum, _ := g.AddNode(nodes.TypeSum)

	t.Run("rejects same-direction endpoints", func(t *testing.T) {
		err := c1.Port("value", graph.Output).Connect(c2.Port("value", graph.Output))
		assert.ErrorIs(t, err, graph.ErrInvalidConnection)
	})

	t.Run("is idempotent", func(t *testing.T) {
		in := sum.Port("values", graph.Input)
		out := c1.Port("value", graph.Output)
		require.NoError(t, out.Connect(in))
		require.NoError(t, out.Connect(in))
		assert.Equal(t, 1, in.ConnectionCount())
	})

	t.Run("multiple policy accumulates", func(t *testing.T) {
		in := sum.Port("values", graph.Input)
		require.NoError(t, c2.Port("value", graph.Output).Connect(in))
		assert.Equal(t, 2, in.ConnectionCount())
	})

	t.Run("override policy replaces", func(t *testing.T) {
		g2 := graph.New(newTestRegistry())
		a, _ := g2.AddNode(nodes.TypeConst)
		b, _ := g2.AddNode(nodes.TypeConst)
		pass2, _ := g2.AddNode(nodes.TypePassthrough)

		in := pass2.Port("in", graph.Input)
		require.NoError(t, a.Port("value", graph.Output).Connect(in))
		require.NoError(t, b.Port("value", graph.Output).Connect(in))
		require.Equal(t, 1, in.ConnectionCount())
		assert.Same(t, b.Port("value", graph.Output), in.Connection(0))
		assert.Equal(t, 0, a.Port("value", graph.Output).ConnectionCount(),
			"the replaced end loses its back-reference")
	})
}

func TestPort_ConnectTypeConstraints(t *testing.T) {
	g := graph.New(newTestRegistry())
	sum, _ := g.AddNode(nodes.TypeSum)
	concat, _ := g.AddNode(nodes.TypeConcat)

	intConst := nodes.NewTypedConst(3, schema.Int())
	strConst := nodes.NewTypedConst("x", schema.String())
	require.NoError(t, g.AddNodeInstance(intConst))
	require.NoError(t, g.AddNodeInstance(strConst))

	t.Run("inherited accepts widening", func(t *testing.T) {
		err := intConst.Port("value", graph.Output).Connect(sum.Port("values", graph.Input))
		assert.NoError(t, err, "int widens to float")
	})

	t.Run("inherited rejects incompatible", func(t *testing.T) {
		err := strConst.Port("value", graph.Output).Connect(sum.Port("values", graph.Input))
		assert.ErrorIs(t, err, graph.ErrInvalidConnection)
	})

	t.Run("strict requires exact match", func(t *testing.T) {
		err := intConst.Port("value", graph.Output).Connect(concat.Port("parts", graph.Input))
		assert.ErrorIs(t, err, graph.ErrInvalidConnection)
		err = strConst.Port("value", graph.Output).Connect(concat.Port("parts", graph.Input))
		assert.NoError(t, err)
	})
}

func TestGraph_AddFromChildNodePort(t *testing.T) {
	t.Run("input exposure keys by the inner port", func(t *testing.T) {
		g := graph.New(newTestRegistry())
		sum, err := g.AddNode(nodes.TypeSum)
		require.NoError(t, err)
		inner := sum.Port("values", graph.Input)

		boundary, err := g.AddFromChildNodePort(inner)
		require.NoError(t, err)
		assert.True(t, boundary.IsInput())
		assert.True(t, boundary.IsDynamic())
		assert.Same(t, g, boundary.Node().(*graph.Graph))

		mapped, ok := g.PortMap().Lookup(inner)
		require.True(t, ok)
		assert.Same(t, boundary, mapped)

		again, err := g.AddFromChildNodePort(inner)
		require.NoError(t, err)
		assert.Same(t, boundary, again, "repeat exposure is a no-op")
		assert.Equal(t, 1, g.PortMap().Len())
	})

	t.Run("output exposure keys by the boundary port", func(t *testing.T) {
		g := graph.New(newTestRegistry())
		c, err := g.AddNode(nodes.TypeConst)
		require.NoError(t, err)
		inner := c.Port("value", graph.Output)

		boundary, err := g.AddFromChildNodePort(inner)
		require.NoError(t, err)
		assert.True(t, boundary.IsOutput())

		mapped, ok := g.PortMap().Lookup(boundary)
		require.True(t, ok)
		assert.Same(t, inner, mapped)

		again, err := g.AddFromChildNodePort(inner)
		require.NoError(t, err)
		assert.Same(t, boundary, again)
	})
}

func TestGraph_ConnectRetiresAlias(t *testing.T) {
	parent := graph.New(newTestRegistry())
	sub := graph.New(newTestRegistry())
	require.NoError(t, parent.AddNodeInstance(sub))

	sum, err := sub.AddNode(nodes.TypeSum)
	require.NoError(t, err)
	inner := sum.Port("values", graph.Input)
	_, err = sub.AddFromChildNodePort(inner)
	require.NoError(t, err)
	require.Equal(t, 1, sub.PortMap().Len())

	// Connecting the mapped inner port retires the alias: connections
	// take precedence over aliasing.
	c, err := sub.AddNode(nodes.TypeConst)
	require.NoError(t, err)
	require.NoError(t, c.Port("value", graph.Output).Connect(inner))
	assert.Equal(t, 0, sub.PortMap().Len())
}
