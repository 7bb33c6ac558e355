package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered. counter value, or histogram sample count, of every series of the family name
func gathered(t *testing.T, reg *prometheus.Registry, name string) []float64 {
	families, err := reg.Gather()
	require.NoError(t, err)

	values := make([]float64, 0)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetCounter() != nil {
				values = append(values, m.GetCounter().GetValue())
			} else if m.GetHistogram() != nil {
				values = append(values, float64(m.GetHistogram().GetSampleCount()))
			}
		}
	}
	return values
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.Materialized()
	m.EstimatorFailure("unavailable")
	m.SkippedEdge()
	m.ObserveSearch("dijkstra", 5*time.Millisecond, 12)
	m.ObserveHTTP("/api/computeRoutes", "GET", "200", time.Millisecond)

	assert.Equal(t, []float64{2}, gathered(t, reg, "trafficrouting_estimator_cache_hits_total"))
	assert.Equal(t, []float64{1}, gathered(t, reg, "trafficrouting_estimator_cache_misses_total"))
	assert.Equal(t, []float64{1}, gathered(t, reg, "trafficrouting_estimator_materializations_total"))
	assert.Equal(t, []float64{1}, gathered(t, reg, "trafficrouting_estimator_failures_total"))
	assert.Equal(t, []float64{1}, gathered(t, reg, "trafficrouting_skipped_edges_total"))
	assert.Equal(t, []float64{1}, gathered(t, reg, "trafficrouting_search_duration_seconds"))
	assert.Equal(t, []float64{1}, gathered(t, reg, "trafficrouting_settled_vertices"))
	assert.Equal(t, []float64{1}, gathered(t, reg, "trafficrouting_http_requests_total"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheHit()
		m.CacheMiss()
		m.Materialized()
		m.EstimatorFailure("x")
		m.SkippedEdge()
		m.ObserveSearch("astar", time.Second, 1)
		m.ObserveHTTP("/", "GET", "200", time.Second)
	})
}
