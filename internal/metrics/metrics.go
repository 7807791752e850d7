// Package metrics exposes Prometheus metrics for AI lookups.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

// Collector records lookup counts, latency and the number of grants returned.
type Collector struct {
	lookups       *prometheus.CounterVec
	lookupLatency *prometheus.HistogramVec
	grants        prometheus.Counter
	sources       prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grantbot_lookups_total",
			Help: "AI lookups by operation and outcome.",
		}, []string{"operation", "outcome"}),
		lookupLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grantbot_lookup_latency_seconds",
			Help:    "AI lookup latency in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"operation"}),
		grants: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grantbot_grants_returned_total",
			Help: "Grants returned by successful lookups.",
		}),
		sources: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grantbot_sources_returned_total",
			Help: "Cited sources returned by successful lookups.",
		}),
	}

	reg.MustRegister(c.lookups, c.lookupLatency, c.grants, c.sources)
	return c
}

// RecordLookup records one lookup with its outcome and duration.
func (c *Collector) RecordLookup(operation, outcome string, d time.Duration) {
	c.lookups.WithLabelValues(operation, outcome).Inc()
	c.lookupLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordResults records the grants and sources returned by a lookup.
func (c *Collector) RecordResults(grants, sources int) {
	c.grants.Add(float64(grants))
	c.sources.Add(float64(sources))
}

// Handler returns an HTTP handler serving /metrics from gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
