package s2_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

func TestRescaleGrade(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		min, max float64
		want     float64
	}{
		{"20-80 midpoint", 50, 20, 80, 0.5},
		{"20-80 top", 80, 20, 80, 1},
		{"above scale clamps", 85, 20, 80, 1},
		{"below scale clamps", 10, 20, 80, 0},
		{"letter scale", 3, 1, 5, 0.5},
		{"degenerate scale", 5, 5, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RescaleGrade(tt.v, tt.min, tt.max), 1e-12)
		})
	}
}

func TestGradeNormalizer_LatestYearAveraged(t *testing.T) {
	n := NewGradeNormalizer(logger.Nop())
	grades := []*contracts.ScoutingGrade{
		{PlayerID: 7, Source: "pipeline", ReportYear: 2026, Value: 55, ScaleMin: 20, ScaleMax: 80},
		{PlayerID: 7, Source: "fangraphs", ReportYear: 2026, Value: 65, ScaleMin: 20, ScaleMax: 80},
		{PlayerID: 7, Source: "pipeline", ReportYear: 2025, Value: 80, ScaleMin: 20, ScaleMax: 80},
		{PlayerID: 7, Source: "broken", ReportYear: 2027, Value: 3, ScaleMin: 5, ScaleMax: 1},
	}

	got, warn := n.Normalize(7, grades, 2026, 1)
	require.NotNil(t, got)
	assert.Nil(t, warn)
	assert.Equal(t, 2026, got.ReportYear)
	assert.InDelta(t, 2.0/3.0, got.Value, 1e-12)
	assert.Equal(t, []string{"fangraphs", "pipeline"}, got.Sources)
	assert.False(t, got.Stale)
}

func TestGradeNormalizer_Stale(t *testing.T) {
	n := NewGradeNormalizer(logger.Nop())
	grades := []*contracts.ScoutingGrade{
		{PlayerID: 7, Source: "pipeline", ReportYear: 2023, Value: 60, ScaleMin: 20, ScaleMax: 80},
	}

	got, warn := n.Normalize(7, grades, 2026, 1)
	require.NotNil(t, got)
	require.NotNil(t, warn)
	assert.True(t, got.Stale)
	assert.Equal(t, 2023, warn.ReportYear)
	assert.Equal(t, 2026, warn.Season)
	// 오래된 등급도 값은 사용
	assert.InDelta(t, 40.0/60.0, got.Value, 1e-12)

	// 1년 차이는 허용
	_, warn = n.Normalize(7, grades, 2024, 1)
	assert.Nil(t, warn)
}

func TestGradeNormalizer_NoUsableGrade(t *testing.T) {
	n := NewGradeNormalizer(logger.Nop())

	got, warn := n.Normalize(7, nil, 2026, 1)
	assert.Nil(t, got)
	assert.Nil(t, warn)

	got, _ = n.Normalize(7, []*contracts.ScoutingGrade{
		{PlayerID: 8, Source: "pipeline", ReportYear: 2026, Value: 60, ScaleMin: 20, ScaleMax: 80},
	}, 2026, 1)
	assert.Nil(t, got)
}
