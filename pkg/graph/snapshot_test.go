package graph_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/nodes"
)

// buildSampleGraph assembles a graph exercising every persisted feature:
// parameters, a tombstone, internal connections, boundary ports, and a
// port map entry.
func buildSampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(newTestRegistry())

	a := addConst(t, g, 2, "int")
	doomed := addConst(t, g, 0, "int")
	b := addConst(t, g, 3, "int")
	sum, err := g.AddNode(nodes.TypeSum)
	require.NoError(t, err)

	require.NoError(t, g.RemoveNode(doomed))
	in := sum.Port("values", graph.Input)
	require.NoError(t, a.Port("value", graph.Output).Connect(in))
	require.NoError(t, b.Port("value", graph.Output).Connect(in))

	_, err = g.AddFromChildNodePort(sum.Port("sum", graph.Output))
	require.NoError(t, err)
	return g
}

func TestSnapshot_RoundTrip(t *testing.T) {
	g := buildSampleGraph(t)
	snap := g.Snapshot()

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded graph.Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored, err := graph.Restore(&decoded, newTestRegistry())
	require.NoError(t, err)

	assert.Equal(t, g.ID(), restored.ID())
	assert.Equal(t, g.Mode(), restored.Mode())
	require.Equal(t, g.Len(), restored.Len())
	assert.Nil(t, restored.NodeAt(1), "tombstones survive the round trip")
	assert.Equal(t, 1, restored.PortMap().Len())

	// The restored graph answers the same pull the original does.
	v, err := restored.GetValue(restored.Port("sum", graph.Output))
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestSnapshot_CapturesParams(t *testing.T) {
	g := graph.New(newTestRegistry())
	addConst(t, g, "x", "string")

	snap := g.Snapshot()
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, nodes.TypeConst, snap.Nodes[0].Type)
	assert.Equal(t, map[string]any{"value": "x", "type": "string"}, snap.Nodes[0].Params)
}

func TestSnapshot_NestedSubgraph(t *testing.T) {
	reg := newTestRegistry()

	sub := graph.New(reg)
	inner := addConst(t, sub, 21, "int")
	subOut, err := sub.AddFromChildNodePort(inner.Port("value", graph.Output))
	require.NoError(t, err)

	parent := graph.New(reg)
	require.NoError(t, parent.AddNodeInstance(sub))
	other := addConst(t, parent, 21, "int")
	sum, err := parent.AddNode(nodes.TypeSum)
	require.NoError(t, err)
	require.NoError(t, subOut.Connect(sum.Port("values", graph.Input)))
	require.NoError(t, other.Port("value", graph.Output).Connect(sum.Port("values", graph.Input)))

	snap := parent.Snapshot()
	require.NotNil(t, snap.Nodes[0].Graph, "nested graphs are captured recursively")

	restored, err := graph.Restore(snap, reg)
	require.NoError(t, err)

	restoredSum := restored.NodeAt(2)
	v, err := restoredSum.GetValue(restoredSum.Port("sum", graph.Output))
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestSnapshot_LiveModeRoundTrip(t *testing.T) {
	g := graph.New(newTestRegistry(), graph.WithMode(graph.ModeLive))
	restored, err := graph.Restore(g.Snapshot(), newTestRegistry())
	require.NoError(t, err)
	assert.Equal(t, graph.ModeLive, restored.Mode())
}

func TestRestore_RejectsCorruptPortMap(t *testing.T) {
	g := buildSampleGraph(t)
	snap := g.Snapshot()
	require.NotEmpty(t, snap.PortMap.Keys)
	snap.PortMap.Values = snap.PortMap.Values[:len(snap.PortMap.Values)-1]

	_, err := graph.Restore(snap, newTestRegistry())
	assert.ErrorIs(t, err, graph.ErrCorruptPortMap)
}

func TestRestore_RejectsUnknownNodeType(t *testing.T) {
	snap := &graph.Snapshot{
		Nodes: []*graph.NodeSnapshot{{ID: "n0", Type: "no-such-type"}},
	}
	_, err := graph.Restore(snap, newTestRegistry())
	assert.Error(t, err)
}
