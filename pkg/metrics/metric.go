package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics. prometheus collectors of the routing engine. a nil *Metrics is valid and records nothing.
type Metrics struct {
	estimatorCacheHits      prometheus.Counter
	estimatorCacheMisses    prometheus.Counter
	estimatorMaterialized   prometheus.Counter
	estimatorFailures       *prometheus.CounterVec
	skippedEdges            prometheus.Counter
	searchDuration          *prometheus.HistogramVec
	settledVertices         *prometheus.HistogramVec
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDurationSecs *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		estimatorCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trafficrouting",
			Name:      "estimator_cache_hits_total",
			Help:      "estimator lookups served by a cached model handle",
		}),
		estimatorCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trafficrouting",
			Name:      "estimator_cache_misses_total",
			Help:      "estimator lookups without a cached model handle",
		}),
		estimatorMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trafficrouting",
			Name:      "estimator_materializations_total",
			Help:      "model handles loaded from disk",
		}),
		estimatorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trafficrouting",
			Name:      "estimator_failures_total",
			Help:      "failed flow estimations by reason",
		}, []string{"reason"}),
		skippedEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trafficrouting",
			Name:      "skipped_edges_total",
			Help:      "edges left out of a search because they could not be priced",
		}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trafficrouting",
			Name:      "search_duration_seconds",
			Help:      "duration of one route search",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"algorithm"}),
		settledVertices: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trafficrouting",
			Name:      "settled_vertices",
			Help:      "vertices settled by one route search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}, []string{"algorithm"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trafficrouting",
			Name:      "http_requests_total",
			Help:      "http requests by path, method and status code",
		}, []string{"path", "method", "code"}),
		httpRequestDurationSecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trafficrouting",
			Name:      "http_request_duration_seconds",
			Help:      "http request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}

	reg.MustRegister(m.estimatorCacheHits, m.estimatorCacheMisses, m.estimatorMaterialized,
		m.estimatorFailures, m.skippedEdges, m.searchDuration, m.settledVertices,
		m.httpRequestsTotal, m.httpRequestDurationSecs)
	return m
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.estimatorCacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.estimatorCacheMisses.Inc()
}

func (m *Metrics) Materialized() {
	if m == nil {
		return
	}
	m.estimatorMaterialized.Inc()
}

func (m *Metrics) EstimatorFailure(reason string) {
	if m == nil {
		return
	}
	m.estimatorFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) SkippedEdge() {
	if m == nil {
		return
	}
	m.skippedEdges.Inc()
}

func (m *Metrics) ObserveSearch(algorithm string, elapsed time.Duration, settled int) {
	if m == nil {
		return
	}
	m.searchDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	m.settledVertices.WithLabelValues(algorithm).Observe(float64(settled))
}

func (m *Metrics) ObserveHTTP(path, method, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(path, method, code).Inc()
	m.httpRequestDurationSecs.WithLabelValues(path, method).Observe(elapsed.Seconds())
}
