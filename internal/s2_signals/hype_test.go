package s2_signals

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

var unitSource = func(contracts.SourceType) float64 { return 1 }

func defaultHype() HypeParams {
	return HypeParams{HalfLifeDays: 7, LookbackDays: 30, TrendWindowDays: 7, SourceWeight: unitSource}
}

func TestDecay(t *testing.T) {
	assert.Equal(t, 1.0, Decay(0, 7))
	assert.Equal(t, 0.5, Decay(7, 7))
	assert.Equal(t, 0.25, Decay(14, 7))
	assert.Zero(t, Decay(3, 0))
}

func TestHype_HalfLife(t *testing.T) {
	c := NewHypeCalculator(logger.Nop())
	asOf := day(2026, 9, 1)
	events := []*contracts.AttentionEvent{
		{PlayerID: 1, Source: contracts.SourceSocial, OccurredAt: asOf.AddDate(0, 0, -7), Intensity: 10},
	}

	got := c.Calculate(1, events, asOf, defaultHype())
	assert.Equal(t, contracts.ProvenanceMeasured, got.Provenance)
	assert.InDelta(t, 5.0, got.Score, 1e-12)
	assert.InDelta(t, 5.0, got.BySource[contracts.SourceSocial], 1e-12)
	assert.Equal(t, 1, got.EventCount)
}

func TestHype_NoSignal(t *testing.T) {
	c := NewHypeCalculator(logger.Nop())
	asOf := day(2026, 9, 1)
	events := []*contracts.AttentionEvent{
		// lookback 밖, asOf 이후, 다른 선수
		{PlayerID: 1, Source: contracts.SourceMedia, OccurredAt: asOf.AddDate(0, 0, -31), Intensity: 10},
		{PlayerID: 1, Source: contracts.SourceMedia, OccurredAt: asOf, Intensity: 10},
		{PlayerID: 2, Source: contracts.SourceMedia, OccurredAt: asOf.Add(-time.Hour), Intensity: 10},
	}

	got := c.Calculate(1, events, asOf, defaultHype())
	assert.Equal(t, contracts.ProvenanceNoSignal, got.Provenance)
	assert.Zero(t, got.Score)
	assert.Zero(t, got.EventCount)
}

func TestHype_SourceWeightsAndNegativeIntensity(t *testing.T) {
	c := NewHypeCalculator(logger.Nop())
	asOf := day(2026, 9, 1)
	params := defaultHype()
	params.SourceWeight = func(s contracts.SourceType) float64 {
		if s == contracts.SourceMedia {
			return 1.5
		}
		return 1
	}
	events := []*contracts.AttentionEvent{
		{PlayerID: 1, Source: contracts.SourceMedia, OccurredAt: asOf.Add(-time.Nanosecond), Intensity: 4},
		{PlayerID: 1, Source: contracts.SourceSearch, OccurredAt: asOf.Add(-time.Nanosecond), Intensity: -3},
	}

	got := c.Calculate(1, events, asOf, params)
	assert.InDelta(t, 6.0, got.Score, 1e-6)
	assert.Zero(t, got.BySource[contracts.SourceSearch])
	assert.Equal(t, 2, got.EventCount)
}

func TestHype_Growth(t *testing.T) {
	c := NewHypeCalculator(logger.Nop())
	asOf := day(2026, 9, 1)

	tests := []struct {
		name   string
		recent float64
		prior  float64
		want   float64
	}{
		{"rising", 30, 10, 2},
		{"falling", 5, 10, -0.5},
		{"from nothing", 3, 0, 3},
		{"flat", 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []*contracts.AttentionEvent
			if tt.recent > 0 {
				events = append(events, &contracts.AttentionEvent{PlayerID: 1, Source: contracts.SourceSocial, OccurredAt: asOf.AddDate(0, 0, -2), Intensity: tt.recent})
			}
			if tt.prior > 0 {
				events = append(events, &contracts.AttentionEvent{PlayerID: 1, Source: contracts.SourceSocial, OccurredAt: asOf.AddDate(0, 0, -10), Intensity: tt.prior})
			}
			// 두 추세 구간 밖의 이벤트는 성장률에 무관
			events = append(events, &contracts.AttentionEvent{PlayerID: 1, Source: contracts.SourceSocial, OccurredAt: asOf.AddDate(0, 0, -20), Intensity: 100})

			got := c.Calculate(1, events, asOf, defaultHype())
			assert.InDelta(t, tt.want, got.Growth, 1e-12)
		})
	}
}

func TestHype_TiedEventsSumIdentically(t *testing.T) {
	c := NewHypeCalculator(logger.Nop())
	asOf := day(2026, 9, 1)
	at := asOf.Add(-36 * time.Hour)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		events := make([]*contracts.AttentionEvent, 4)
		for k := range events {
			events[k] = &contracts.AttentionEvent{
				PlayerID:   1,
				Source:     contracts.SourceSocial,
				OccurredAt: at,
				Intensity:  float64(rng.Intn(300000)) / 100,
			}
		}
		shuffled := append([]*contracts.AttentionEvent(nil), events...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		want := c.Calculate(1, events, asOf, defaultHype())
		got := c.Calculate(1, shuffled, asOf, defaultHype())
		require.Equal(t, math.Float64bits(want.Score), math.Float64bits(got.Score), "intensities %v", events)
		require.Equal(t, math.Float64bits(want.BySource[contracts.SourceSocial]), math.Float64bits(got.BySource[contracts.SourceSocial]))
	}

	// 호출자 슬라이스는 그대로
	in := []*contracts.AttentionEvent{
		{PlayerID: 1, Source: contracts.SourceSocial, OccurredAt: at, Intensity: 9},
		{PlayerID: 1, Source: contracts.SourceSocial, OccurredAt: at, Intensity: 1},
	}
	c.Calculate(1, in, asOf, defaultHype())
	assert.Equal(t, 9.0, in[0].Intensity)
}
