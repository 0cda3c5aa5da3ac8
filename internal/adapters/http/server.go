// Package http exposes the graph store and pull evaluation over a chi
// router. Handlers operate on persisted snapshots: every request loads,
// acts, and (where it mutates) saves, so the server itself stays
// stateless.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/arbor/internal/presentation/graph"
	model "github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/storage"
)

// Server wires the snapshot store and node factory to HTTP handlers.
type Server struct {
	store    storage.SnapshotStore
	factory  model.Factory
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics installs shared collectors and the gatherer backing the
// /metrics endpoint. Without it the server registers its own private
// registry.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for a graph store.
func NewHandler(store storage.SnapshotStore, factory model.Factory, opts ...Option) http.Handler {
	s := &Server{
		store:   store,
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = observability.NewMetrics(reg)
		s.gatherer = reg
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.ListGraphs)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetGraph)
			r.Put("/", s.SaveGraph)
			r.Delete("/", s.DeleteGraph)
			r.Post("/copy", s.CopyGraph)
			r.Get("/value", s.GetValue)
			r.Get("/mermaid", s.GetMermaid)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListGraphs handles GET /graphs.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	s.metrics.ObserveStore("list", err)
	if err != nil {
		http.Error(w, "Failed to list graphs", http.StatusInternalServerError)
		s.logger.Error("list graphs failed", "error", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"graphs": ids})
}

// GetGraph handles GET /graphs/{id}: it returns the stored snapshot.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.store.Load(r.Context(), id)
	s.metrics.ObserveStore("load", err)
	if err != nil {
		s.storeError(w, id, err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

// SaveGraph handles PUT /graphs/{id}: the body is a snapshot, validated
// by restoring it against the factory before it is persisted.
func (s *Server) SaveGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var snap model.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("save graph: invalid body", "id", id, "error", err)
		return
	}
	if _, err := model.Restore(&snap, s.factory); err != nil {
		http.Error(w, fmt.Sprintf("Invalid graph: %v", err), http.StatusBadRequest)
		s.logger.Warn("save graph: snapshot rejected", "id", id, "error", err)
		return
	}
	snap.ID = id
	err := s.store.Save(r.Context(), id, &snap)
	s.metrics.ObserveStore("save", err)
	if err != nil {
		http.Error(w, "Failed to save graph", http.StatusInternalServerError)
		s.logger.Error("save graph failed", "id", id, "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGraph handles DELETE /graphs/{id}. Unknown IDs delete cleanly.
func (s *Server) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	s.metrics.ObserveStore("delete", err)
	if err != nil {
		http.Error(w, "Failed to delete graph", http.StatusInternalServerError)
		s.logger.Error("delete graph failed", "id", id, "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopyGraph handles POST /graphs/{id}/copy: load, deep-copy, persist the
// copy under its own ID, and return its snapshot.
func (s *Server) CopyGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, ok := s.loadGraph(w, r, id)
	if !ok {
		return
	}
	start := time.Now()
	cp, err := g.Copy()
	if err != nil {
		http.Error(w, fmt.Sprintf("Copy failed: %v", err), http.StatusInternalServerError)
		s.logger.Error("copy graph failed", "id", id, "error", err)
		return
	}
	s.metrics.ObserveCopy(start, cp.Len())

	snap := cp.Snapshot()
	err = s.store.Save(r.Context(), snap.ID, snap)
	s.metrics.ObserveStore("save", err)
	if err != nil {
		http.Error(w, "Failed to save copy", http.StatusInternalServerError)
		s.logger.Error("save copy failed", "id", id, "copy", snap.ID, "error", err)
		return
	}
	s.logger.Info("graph copied", "id", id, "copy", snap.ID, "nodes", cp.Len())
	s.respondJSON(w, http.StatusCreated, snap)
}

// GetValue handles GET /graphs/{id}/value?port=<field>[&node=<index>][&direction=<dir>].
// Without a node index the port is resolved on the graph's own boundary.
func (s *Server) GetValue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	field := q.Get("port")
	if field == "" {
		http.Error(w, "Missing port parameter", http.StatusBadRequest)
		return
	}
	dir := model.Output
	if ds := q.Get("direction"); ds != "" {
		var err error
		dir, err = model.ParseDirection(ds)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid direction: %v", err), http.StatusBadRequest)
			return
		}
	}

	g, ok := s.loadGraph(w, r, id)
	if !ok {
		return
	}
	var owner model.Node = g
	if ns := q.Get("node"); ns != "" {
		idx, err := strconv.Atoi(ns)
		if err != nil {
			http.Error(w, "Invalid node index", http.StatusBadRequest)
			return
		}
		owner = g.NodeAt(idx)
		if owner == nil {
			http.Error(w, "Node not found", http.StatusNotFound)
			return
		}
	}
	p := owner.Port(field, dir)
	if p == nil {
		http.Error(w, "Port not found", http.StatusNotFound)
		return
	}

	v, err := p.Value()
	s.metrics.ObservePull(err)
	if err != nil {
		http.Error(w, fmt.Sprintf("Value pull failed: %v", err), http.StatusInternalServerError)
		s.logger.Error("value pull failed", "id", id, "port", field, "error", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"value": v})
}

// GetMermaid handles GET /graphs/{id}/mermaid.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, ok := s.loadGraph(w, r, id)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(g)))
}

// loadGraph loads and restores a stored graph, writing the HTTP error
// itself on failure.
func (s *Server) loadGraph(w http.ResponseWriter, r *http.Request, id string) (*model.Graph, bool) {
	snap, err := s.store.Load(r.Context(), id)
	s.metrics.ObserveStore("load", err)
	if err != nil {
		s.storeError(w, id, err)
		return nil, false
	}
	g, err := model.Restore(snap, s.factory)
	if err != nil {
		http.Error(w, "Stored graph cannot be restored", http.StatusInternalServerError)
		s.logger.Error("restore failed", "id", id, "error", err)
		return nil, false
	}
	return g, true
}

func (s *Server) storeError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, storage.ErrGraphNotFound) {
		http.Error(w, "Graph not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Failed to load graph", http.StatusInternalServerError)
	s.logger.Error("load graph failed", "id", id, "error", err)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}
