package s1_universe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/s0_data"
	"github.com/wonny/scout/pkg/logger"
)

func seed() *s0_data.MemorySource {
	src := s0_data.NewMemorySource()
	src.AddProspects(
		&contracts.Prospect{ID: 4, Name: "Pitcher AA", Position: contracts.PositionSP, Organization: "SEA", Level: contracts.LevelAA, Age: 22},
		&contracts.Prospect{ID: 1, Name: "SS AAA", Position: contracts.PositionSS, Organization: "NYY", Level: contracts.LevelAAA, Age: 23},
		&contracts.Prospect{ID: 2, Name: "CF A", Position: contracts.PositionCF, Organization: "sea", Level: contracts.LevelA, Age: 19},
		&contracts.Prospect{ID: 3, Name: "Broken", Position: "XX", Organization: "SEA", Level: contracts.LevelA, Age: 20},
	)
	return src
}

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder(seed(), logger.Nop())

	pop, err := builder.Build(context.Background(), contracts.AllPlayers())
	require.NoError(t, err, "population build failed")

	// Assertions
	assert.Equal(t, []int64{1, 2, 4}, pop.IDs())
	assert.Equal(t, 3, pop.Count())

	excluded, reason := pop.IsExcluded(3)
	assert.True(t, excluded)
	assert.Contains(t, reason, "unknown position")

	assert.True(t, pop.Contains(4))
	assert.False(t, pop.Contains(3))
}

func TestBuilder_Filters(t *testing.T) {
	tests := []struct {
		name   string
		filter contracts.PopulationFilter
		want   []int64
	}{
		{
			name:   "pitchers only",
			filter: contracts.PopulationFilter{Group: contracts.GroupPitcher},
			want:   []int64{4},
		},
		{
			name:   "organization is case-insensitive",
			filter: contracts.PopulationFilter{Organizations: []string{" Sea "}},
			want:   []int64{2, 4},
		},
		{
			name:   "levels",
			filter: contracts.PopulationFilter{Levels: []contracts.Level{contracts.LevelA, contracts.LevelAAA}},
			want:   []int64{1, 2},
		},
		{
			name:   "age limit",
			filter: contracts.PopulationFilter{MaxAge: 22},
			want:   []int64{2, 4},
		},
		{
			name:   "nothing matches",
			filter: contracts.PopulationFilter{Group: contracts.GroupPitcher, Levels: []contracts.Level{contracts.LevelMLB}},
			want:   []int64{},
		},
	}

	builder := NewBuilder(seed(), logger.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop, err := builder.Build(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pop.IDs())
		})
	}
}

func TestPopulationFilter_Canonical(t *testing.T) {
	a := contracts.PopulationFilter{
		Levels:        []contracts.Level{contracts.LevelA, contracts.LevelAAA, contracts.LevelA},
		Organizations: []string{"sea", "NYY"},
	}
	b := contracts.PopulationFilter{
		Levels:        []contracts.Level{contracts.LevelAAA, contracts.LevelA},
		Organizations: []string{"nyy", "SEA"},
	}

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.NotEqual(t, a.Canonical(), contracts.AllPlayers().Canonical())
}

func TestCheckExclusion_OrganizationUnnormalized(t *testing.T) {
	p := &contracts.Prospect{ID: 7, Position: contracts.PositionCF, Organization: " sea ", Level: contracts.LevelAA, Age: 21}

	tests := []struct {
		name   string
		orgs   []string
		reason string
	}{
		{name: "padded filter", orgs: []string{"  SEA"}, reason: ""},
		{name: "exact", orgs: []string{"sea"}, reason: ""},
		{name: "other org", orgs: []string{"NYY"}, reason: "organization not selected ( sea )"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reason, checkExclusion(p, contracts.PopulationFilter{Organizations: tt.orgs}))
		})
	}
}
