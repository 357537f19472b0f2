package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveComputation("cfg", ResultSuccess, time.Second)
	r.CacheRequest(CacheHit)
	r.ComponentUnavailable("hype")
	r.Invalidation("grades")
	r.RankedPlayers(10)
}

func TestRecorder_Gather(t *testing.T) {
	r := New()
	r.ObserveComputation("default-abc", ResultSuccess, 250*time.Millisecond)
	r.ObserveComputation("default-abc", ResultTimeout, 2*time.Minute)
	r.CacheRequest(CacheMiss)
	r.ComponentUnavailable("advanced_metrics")

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["scout_ranking_computations_total"])
	assert.True(t, names["scout_ranking_computation_seconds"])
	assert.True(t, names["scout_ranking_cache_requests_total"])
	assert.True(t, names["scout_component_unavailable_total"])
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.Invalidation("attention")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `scout_ranking_invalidations_total{category="attention"} 1`))
}
