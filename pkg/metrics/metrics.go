// Package metrics provides Prometheus metrics export for chainlog
// operations.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all chainlog metrics.
type Registry struct {
	registry *prometheus.Registry

	appendTotal    *prometheus.CounterVec
	appendDuration prometheus.Histogram
	snapshotTotal  *prometheus.CounterVec
	verifyTotal    *prometheus.CounterVec
	verifyDuration prometheus.Histogram
	dayEntries     *prometheus.GaugeVec
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide metrics registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		appendTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainlog_append_total",
			Help: "Number of event append operations by outcome.",
		}, []string{"journal", "outcome"}),
		appendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainlog_append_duration_seconds",
			Help:    "Duration of event append operations.",
			Buckets: prometheus.DefBuckets,
		}),
		snapshotTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainlog_snapshot_total",
			Help: "Number of snapshot operations by outcome.",
		}, []string{"journal", "outcome"}),
		verifyTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainlog_verify_total",
			Help: "Number of verification runs by outcome.",
		}, []string{"journal", "outcome"}),
		verifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainlog_verify_duration_seconds",
			Help:    "Duration of verification runs.",
			Buckets: prometheus.DefBuckets,
		}),
		dayEntries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chainlog_day_entries",
			Help: "Entries folded into the most recent manifest per journal.",
		}, []string{"journal", "day"}),
	}
}

func outcome(success bool) string {
	if success {
		return "ok"
	}
	return "failed"
}

// RecordAppend records an event append operation.
func (r *Registry) RecordAppend(journal string, success bool, duration time.Duration) {
	r.appendTotal.WithLabelValues(journal, outcome(success)).Inc()
	r.appendDuration.Observe(duration.Seconds())
}

// RecordSnapshot records a snapshot operation.
func (r *Registry) RecordSnapshot(journal string, success bool, entries int, day string) {
	r.snapshotTotal.WithLabelValues(journal, outcome(success)).Inc()
	if success {
		r.dayEntries.WithLabelValues(journal, day).Set(float64(entries))
	}
}

// RecordVerify records a verification run.
func (r *Registry) RecordVerify(journal string, success bool, duration time.Duration) {
	r.verifyTotal.WithLabelValues(journal, outcome(success)).Inc()
	r.verifyDuration.Observe(duration.Seconds())
}

// Handler returns an HTTP handler serving the registry in Prometheus
// text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr. Blocks until the server exits.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Default().Handler())
	return http.ListenAndServe(addr, mux)
}
