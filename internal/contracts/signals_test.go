package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatedStatLine_SampleAndValue(t *testing.T) {
	tests := []struct {
		name   string
		line   *AggregatedStatLine
		sample int
		value  float64
	}{
		{"nil line", nil, 0, 0},
		{
			name:   "hitter uses PA and OPS",
			line:   &AggregatedStatLine{Group: GroupHitter, Batting: &BattingLine{PlateAppearances: 212, OPS: 0.874}},
			sample: 212,
			value:  0.874,
		},
		{
			name:   "pitcher uses whole innings and K-BB%",
			line:   &AggregatedStatLine{Group: GroupPitcher, Pitching: &PitchingLine{OutsRecorded: 125, KMinusBBPct: 0.18}},
			sample: 41,
			value:  0.18,
		},
		{"pitcher without line", &AggregatedStatLine{Group: GroupPitcher}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sample, tt.line.SampleSize())
			assert.InDelta(t, tt.value, tt.line.PerformanceValue(), 1e-12)
		})
	}
}

func TestPlayerSignals_MarkUnavailable(t *testing.T) {
	s := &PlayerSignals{PlayerID: 7}
	assert.Equal(t, 0, s.SampleSize())

	s.MarkUnavailable(ComponentAdvanced, "no comparables")
	s.MarkUnavailable(ComponentGrade, "no grade")
	assert.Equal(t, "no comparables", s.Unavailable[ComponentAdvanced])
	assert.Len(t, s.Unavailable, 2)
}

func TestBreakdown_EffectiveWeights(t *testing.T) {
	b := &Breakdown{Components: []ComponentScore{
		{Component: ComponentPerformance, EffectiveWeight: 0.5},
		{Component: ComponentAdvanced, EffectiveWeight: 0, Reason: "unavailable"},
		{Component: ComponentGrade, EffectiveWeight: 0.5},
	}}

	assert.Equal(t, map[Component]float64{ComponentPerformance: 0.5, ComponentGrade: 0.5}, b.EffectiveWeights())

	cs, ok := b.Component(ComponentAdvanced)
	require.True(t, ok)
	assert.Equal(t, "unavailable", cs.Reason)
	_, ok = b.Component(ComponentHype)
	assert.False(t, ok)
}

func TestRankingSet_FindAndTop(t *testing.T) {
	set := &RankingSet{Rankings: []CompositeRanking{
		{PlayerID: 3, Rank: 1}, {PlayerID: 1, Rank: 2}, {PlayerID: 2, Rank: 3},
	}}

	r, ok := set.Find(1)
	require.True(t, ok)
	assert.Equal(t, 2, r.Rank)
	assert.True(t, r.IsTopRanked(2))
	assert.False(t, r.IsTopRanked(1))

	_, ok = set.Find(99)
	assert.False(t, ok)

	assert.Len(t, set.Top(2), 2)
	assert.Len(t, set.Top(0), 3)
	assert.Len(t, set.Top(10), 3)
}
