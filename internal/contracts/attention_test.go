package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortAttention_FullKey(t *testing.T) {
	at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	es := []*AttentionEvent{
		{PlayerID: 2, Source: SourceMedia, OccurredAt: at, Intensity: 1},
		{PlayerID: 1, Source: SourceSocial, OccurredAt: at, Intensity: 30},
		{PlayerID: 1, Source: SourceSocial, OccurredAt: at, Intensity: 5},
		{PlayerID: 1, Source: SourceMedia, OccurredAt: at, Intensity: 50},
		{PlayerID: 1, Source: SourceSocial, OccurredAt: at.Add(-time.Hour), Intensity: 99},
	}

	SortAttention(es)

	got := make([]float64, len(es))
	for i, e := range es {
		got[i] = e.Intensity
	}
	assert.Equal(t, []float64{99, 50, 5, 30, 1}, got)
}
