package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for graph operations. Create one per
// process with NewMetrics and share it across adapters.
type Metrics struct {
	GraphCopies  prometheus.Counter
	CopyDuration prometheus.Histogram
	NodesCloned  prometheus.Counter
	ValuePulls   *prometheus.CounterVec
	StoreOps     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GraphCopies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "graph_copies_total",
			Help:      "Number of whole-graph deep copies performed.",
		}),
		CopyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arbor",
			Name:      "graph_copy_duration_seconds",
			Help:      "Wall time of whole-graph deep copies.",
			Buckets:   prometheus.DefBuckets,
		}),
		NodesCloned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "nodes_cloned_total",
			Help:      "Number of node clones, including those inside graph copies.",
		}),
		ValuePulls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "value_pulls_total",
			Help:      "Value resolutions served, by outcome.",
		}, []string{"outcome"}),
		StoreOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "store_operations_total",
			Help:      "Snapshot store operations, by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
	reg.MustRegister(m.GraphCopies, m.CopyDuration, m.NodesCloned, m.ValuePulls, m.StoreOps)
	return m
}

// ObserveCopy records one graph copy of nodeCount nodes.
func (m *Metrics) ObserveCopy(start time.Time, nodeCount int) {
	m.GraphCopies.Inc()
	m.CopyDuration.Observe(time.Since(start).Seconds())
	m.NodesCloned.Add(float64(nodeCount))
}

// ObservePull records one value resolution.
func (m *Metrics) ObservePull(err error) {
	if err != nil {
		m.ValuePulls.WithLabelValues("error").Inc()
		return
	}
	m.ValuePulls.WithLabelValues("ok").Inc()
}

// ObserveStore records one snapshot store operation.
func (m *Metrics) ObserveStore(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StoreOps.WithLabelValues(op, outcome).Inc()
}
