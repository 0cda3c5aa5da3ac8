package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arborhttp "github.com/aretw0/arbor/internal/adapters/http"
	"github.com/aretw0/arbor/internal/adapters/memory"
	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/nodes"
	"github.com/aretw0/arbor/pkg/registry"
)

// newTestServer returns a handler over a memory store pre-loaded with
// one sample graph (two consts feeding a sum, output exposed as "sum"),
// plus the sample's ID.
func newTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()
	reg := registry.New()
	nodes.RegisterAll(reg)

	g := graph.New(reg)
	a, err := g.AddNode(nodes.TypeConst)
	require.NoError(t, err)
	require.NoError(t, a.(*nodes.Const).Configure(map[string]any{"value": 2, "type": "int"}))
	b, err := g.AddNode(nodes.TypeConst)
	require.NoError(t, err)
	require.NoError(t, b.(*nodes.Const).Configure(map[string]any{"value": 3, "type": "int"}))
	sum, err := g.AddNode(nodes.TypeSum)
	require.NoError(t, err)

	in := sum.Port("values", graph.Input)
	require.NoError(t, a.Port("value", graph.Output).Connect(in))
	require.NoError(t, b.Port("value", graph.Output).Connect(in))
	_, err = g.AddFromChildNodePort(sum.Port("sum", graph.Output))
	require.NoError(t, err)

	store := memory.New()
	snap := g.Snapshot()
	require.NoError(t, store.Save(context.Background(), snap.ID, snap))

	return arborhttp.NewHandler(store, reg), snap.ID
}

func do(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServer_Healthz(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestServer_GraphLifecycle(t *testing.T) {
	h, id := newTestServer(t)

	t.Run("list contains the sample", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Graphs []string `json:"graphs"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Graphs, id)
	})

	t.Run("get returns the snapshot", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/"+id, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var snap graph.Snapshot
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
		assert.Equal(t, id, snap.ID)
		assert.Len(t, snap.Nodes, 3)
	})

	t.Run("put stores under the path id", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/"+id, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = do(h, http.MethodPut, "/graphs/other", rr.Body.Bytes())
		require.Equal(t, http.StatusNoContent, rr.Code)

		rr = do(h, http.MethodGet, "/graphs/other", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var snap graph.Snapshot
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
		assert.Equal(t, "other", snap.ID)
	})

	t.Run("delete then 404", func(t *testing.T) {
		rr := do(h, http.MethodDelete, "/graphs/"+id, nil)
		require.Equal(t, http.StatusNoContent, rr.Code)

		rr = do(h, http.MethodGet, "/graphs/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServer_SaveGraph_Rejects(t *testing.T) {
	h, _ := newTestServer(t)

	t.Run("malformed body", func(t *testing.T) {
		rr := do(h, http.MethodPut, "/graphs/bad", []byte("{not json"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown node type", func(t *testing.T) {
		body := []byte(`{"id":"bad","nodes":[{"id":"n1","type":"no-such-type"}],"port_map":{"keys":[],"values":[]}}`)
		rr := do(h, http.MethodPut, "/graphs/bad", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestServer_CopyGraph(t *testing.T) {
	h, id := newTestServer(t)

	rr := do(h, http.MethodPost, "/graphs/"+id+"/copy", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var snap graph.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	require.NotEmpty(t, snap.ID)
	assert.NotEqual(t, id, snap.ID)
	assert.Len(t, snap.Nodes, 3)

	// The copy is persisted and pullable on its own.
	rr = do(h, http.MethodGet, "/graphs/"+snap.ID+"/value?port=sum", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Value float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 5.0, resp.Value)

	t.Run("unknown graph", func(t *testing.T) {
		rr := do(h, http.MethodPost, "/graphs/nope/copy", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServer_GetValue(t *testing.T) {
	h, id := newTestServer(t)

	t.Run("boundary output", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/"+id+"/value?port=sum", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Value float64 `json:"value"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 5.0, resp.Value)
	})

	t.Run("node output by index", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/"+id+"/value?node=0&port=value", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Value float64 `json:"value"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 2.0, resp.Value)
	})

	t.Run("missing port parameter", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/"+id+"/value", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad direction", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/"+id+"/value?port=sum&direction=sideways", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad node index", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/"+id+"/value?node=abc&port=value", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("node out of range", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/"+id+"/value?node=99&port=value", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown port", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/"+id+"/value?node=0&port=nope", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown graph", func(t *testing.T) {
		rr := do(h, http.MethodGet, "/graphs/nope/value?port=sum", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServer_GetMermaid(t *testing.T) {
	h, id := newTestServer(t)

	rr := do(h, http.MethodGet, "/graphs/"+id+"/mermaid", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.True(t, strings.HasPrefix(rr.Body.String(), "graph LR"))
	assert.Contains(t, rr.Body.String(), "sum #2")
}

func TestServer_Metrics(t *testing.T) {
	h, id := newTestServer(t)

	rr := do(h, http.MethodGet, "/graphs/"+id+"/value?port=sum", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "arbor_value_pulls_total")
	assert.Contains(t, rr.Body.String(), "arbor_store_operations_total")
}
