package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gowatchlist"

// Poster lookup outcomes
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
	LookupCacheHit = "cache_hit"
)

// Metrics holds the application's prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	posterLookups        *prometheus.CounterVec
	lowConfidenceMatches prometheus.Counter
	backfillUpdates      prometheus.Counter
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

// New creates and registers all collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		posterLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poster_lookups_total",
			Help:      "Poster lookups by outcome.",
		}, []string{"outcome"}),
		lowConfidenceMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poster_low_confidence_matches_total",
			Help:      "Accepted posters whose matched title differs a lot from the requested one.",
		}),
		backfillUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poster_backfill_updates_total",
			Help:      "Entries that received a poster during a backfill.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.posterLookups,
		m.lowConfidenceMatches,
		m.backfillUpdates,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLookup counts a poster lookup outcome
func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.posterLookups.WithLabelValues(outcome).Inc()
}

// ObserveLowConfidenceMatch counts an accepted but dissimilar match
func (m *Metrics) ObserveLowConfidenceMatch() {
	if m == nil {
		return
	}
	m.lowConfidenceMatches.Inc()
}

// ObserveBackfillUpdate counts an entry updated by a backfill
func (m *Metrics) ObserveBackfillUpdate() {
	if m == nil {
		return
	}
	m.backfillUpdates.Inc()
}

// ObserveRequest records a served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
