package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLookup(t *testing.T) {
	m := New()

	m.ObserveLookup(LookupFound)
	m.ObserveLookup(LookupFound)
	m.ObserveLookup(LookupError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.posterLookups.WithLabelValues(LookupFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.posterLookups.WithLabelValues(LookupError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.posterLookups.WithLabelValues(LookupNotFound)))
}

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "/Watchlist", 200, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/Watchlist", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveLookup(LookupFound)
		m.ObserveLowConfidenceMatch()
		m.ObserveBackfillUpdate()
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
	})
}
