// Package metrics exposes Prometheus instruments for ranking computations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scout"

// Cache request outcomes
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
)

// Computation outcomes
const (
	ResultSuccess = "success"
	ResultTimeout = "timeout"
	ResultError   = "error"
)

// Recorder owns a private registry and every instrument of the service.
// A nil *Recorder is valid and records nothing.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Recorder struct {
	registry *prometheus.Registry

	computations         *prometheus.CounterVec
	computationSeconds   prometheus.Histogram
	cacheRequests        *prometheus.CounterVec
	componentUnavailable *prometheus.CounterVec
	invalidations        *prometheus.CounterVec
	rankedPlayers        prometheus.Gauge
}

// New creates a Recorder registered on its own registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Recorder{
		registry: reg,
		computations: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_computations_total",
			Help:      "Ranking computations by scoring configuration and outcome",
		}, []string{"config_id", "result"}),
		computationSeconds: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_computation_seconds",
			Help:      "Wall-clock duration of ranking computations",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		cacheRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_cache_requests_total",
			Help:      "Ranking cache lookups by outcome",
		}, []string{"result"}),
		componentUnavailable: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "component_unavailable_total",
			Help:      "Players whose component was excluded from the blend",
		}, []string{"component"}),
		invalidations: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_invalidations_total",
			Help:      "Cache invalidations by trigger category",
		}, []string{"category"}),
		rankedPlayers: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ranked_players",
			Help:      "Players in the most recently computed ranking",
		}),
	}
}

// ObserveComputation records one finished computation
func (r *Recorder) ObserveComputation(configID, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.computations.WithLabelValues(configID, result).Inc()
	r.computationSeconds.Observe(d.Seconds())
}

// CacheRequest records a cache lookup outcome
func (r *Recorder) CacheRequest(result string) {
	if r == nil {
		return
	}
	r.cacheRequests.WithLabelValues(result).Inc()
}

// ComponentUnavailable records one excluded component for one player
func (r *Recorder) ComponentUnavailable(component string) {
	if r == nil {
		return
	}
	r.componentUnavailable.WithLabelValues(component).Inc()
}

// Invalidation records a triggered invalidation
func (r *Recorder) Invalidation(category string) {
	if r == nil {
		return
	}
	r.invalidations.WithLabelValues(category).Inc()
}

// RankedPlayers sets the size of the latest ranking
func (r *Recorder) RankedPlayers(n int) {
	if r == nil {
		return
	}
	r.rankedPlayers.Set(float64(n))
}

// Gatherer exposes the registry (tests, custom exporters)
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
