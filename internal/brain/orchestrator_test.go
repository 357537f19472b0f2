package brain

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/rankcache"
	"github.com/wonny/scout/internal/s0_data"
	"github.com/wonny/scout/internal/scoringconfig"
	"github.com/wonny/scout/pkg/logger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// gatedSource lets a test block or fail the population read
type gatedSource struct {
	*s0_data.MemorySource

	mu   sync.Mutex
	fail error
	gate chan struct{}
}

func (g *gatedSource) ListProspects(ctx context.Context) ([]*contracts.Prospect, error) {
	g.mu.Lock()
	fail, gate := g.fail, g.gate
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail != nil {
		return nil, fail
	}
	return g.MemorySource.ListProspects(ctx)
}

func (g *gatedSource) set(fail error, gate chan struct{}) {
	g.mu.Lock()
	g.fail, g.gate = fail, gate
	g.mu.Unlock()
}

func newSource() *gatedSource {
	src := s0_data.NewMemorySource()
	src.AddProspects(
		&contracts.Prospect{ID: 1, Name: "Contact", Position: contracts.PositionSS, Level: contracts.LevelAA, Age: 21, Organization: "SEA"},
		&contracts.Prospect{ID: 2, Name: "Power", Position: contracts.PositionCF, Level: contracts.LevelAA, Age: 22, Organization: "NYY"},
		&contracts.Prospect{ID: 3, Name: "Draftee", Position: contracts.PositionC, Level: contracts.LevelNCAA, Age: 20},
	)
	src.AddSeasons(&contracts.SeasonInfo{Season: 2026, Level: contracts.LevelAA, StartDate: day(2026, 4, 7)})
	for i := 0; i < 20; i++ {
		d := day(2026, 7, 1).AddDate(0, 0, i)
		src.AddGameLogs(
			&contracts.GameLogRecord{PlayerID: 1, Season: 2026, GameDate: d, Level: contracts.LevelAA,
				PlateAppearances: 4, AtBats: 4, Hits: 1, IngestedAt: d.Add(20 * time.Hour)},
			&contracts.GameLogRecord{PlayerID: 2, Season: 2026, GameDate: d, Level: contracts.LevelAA,
				PlateAppearances: 4, AtBats: 3, Hits: 1, HomeRuns: 1, Walks: 1, IngestedAt: d.Add(20 * time.Hour)},
		)
	}
	src.AddGrades(
		&contracts.ScoutingGrade{PlayerID: 1, Source: "pipeline", ReportYear: 2026, Value: 60, ScaleMin: 20, ScaleMax: 80},
		&contracts.ScoutingGrade{PlayerID: 3, Source: "pipeline", ReportYear: 2026, Value: 50, ScaleMin: 20, ScaleMax: 80},
	)
	src.AddAttention(&contracts.AttentionEvent{PlayerID: 3, Source: contracts.SourceMedia, OccurredAt: day(2026, 7, 28), Intensity: 5})
	return &gatedSource{MemorySource: src}
}

func newOrchestrator(t *testing.T, src contracts.RawSource) (*Orchestrator, *scoringconfig.Config) {
	t.Helper()

	cfg := scoringconfig.Defaults()
	cfg.Meta.ID = "default"
	reg := scoringconfig.NewRegistry()
	require.NoError(t, reg.Register(cfg))

	cache := rankcache.New(rankcache.NewMemoryStore(), nil, rankcache.Options{
		TTL:            time.Hour,
		StaleTTL:       24 * time.Hour,
		ComputeTimeout: 5 * time.Second,
	}, nil, logger.Nop())

	o := NewOrchestrator(reg, src, cache, 2, nil, logger.Nop())
	o.SetClock(func() time.Time { return day(2026, 7, 31).Add(18 * time.Hour) })
	return o, cfg
}

func TestComputeOrFetch(t *testing.T) {
	ctx := context.Background()
	o, cfg := newOrchestrator(t, newSource())

	set, err := o.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	require.NoError(t, err)

	assert.Equal(t, cfg.ID(), set.ConfigID)
	assert.False(t, set.Stale)
	require.Len(t, set.Rankings, 3)
	for i, r := range set.Rankings {
		assert.Equal(t, i+1, r.Rank)
	}
	// OPS 우위 + 등급 없는 선수도 재정규화로 불이익 없음
	assert.Equal(t, int64(2), set.Rankings[0].PlayerID)
	assert.Equal(t, 80, set.Rankings[0].SampleSize)
}

func TestComputeOrFetch_Idempotent(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	o, _ := newOrchestrator(t, src)

	first, err := o.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	require.NoError(t, err)
	second, err := o.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	require.NoError(t, err)

	// 캐시 없이 다시 계산해도 동일한 바이트
	other, _ := newOrchestrator(t, src)
	third, err := other.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	c, err := json.Marshal(third)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestComputeOrFetch_FilterFingerprint(t *testing.T) {
	ctx := context.Background()
	o, _ := newOrchestrator(t, newSource())

	aa, err := o.ComputeOrFetch(ctx, "default", contracts.PopulationFilter{Levels: []contracts.Level{contracts.LevelAA}})
	require.NoError(t, err)
	all, err := o.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	require.NoError(t, err)

	assert.Len(t, aa.Rankings, 2)
	assert.Len(t, all.Rankings, 3)
	assert.NotEqual(t, aa.Fingerprint, all.Fingerprint)
}

func TestComputeOrFetch_UnknownConfig(t *testing.T) {
	o, _ := newOrchestrator(t, newSource())

	_, err := o.ComputeOrFetch(context.Background(), "missing", contracts.AllPlayers())
	assert.ErrorIs(t, err, contracts.ErrUnknownConfig)
}

func TestComputeOrFetch_Unavailable(t *testing.T) {
	src := newSource()
	boom := errors.New("connection refused")
	src.set(boom, nil)
	o, _ := newOrchestrator(t, src)

	_, err := o.ComputeOrFetch(context.Background(), "default", contracts.AllPlayers())
	assert.ErrorIs(t, err, contracts.ErrRankingUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestComputeOrFetch_StaleAfterFailure(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	o, _ := newOrchestrator(t, src)

	good, err := o.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	require.NoError(t, err)

	// 새 적재 → 새 스냅샷 → 계산 실패
	src.SetIngested(contracts.CategoryGrades, day(2026, 7, 31).Add(12*time.Hour))
	src.set(errors.New("connection refused"), nil)

	stale, err := o.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	require.NoError(t, err)
	assert.True(t, stale.Stale)
	assert.Equal(t, good.SnapshotID, stale.SnapshotID)
	assert.Equal(t, good.Rankings, stale.Rankings)

	// Refresh never serves last-good
	_, err = o.Refresh(ctx, "default", contracts.AllPlayers())
	assert.ErrorIs(t, err, contracts.ErrRankingUnavailable)
}

func TestComputeOrFetch_StaleWhileInFlight(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	o, _ := newOrchestrator(t, src)

	good, err := o.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	require.NoError(t, err)

	src.SetIngested(contracts.CategoryAttention, day(2026, 7, 31).Add(12*time.Hour))
	gate := make(chan struct{})
	src.set(nil, gate)

	done := make(chan *contracts.RankingSet, 1)
	go func() {
		set, err := o.Refresh(ctx, "default", contracts.AllPlayers())
		assert.NoError(t, err)
		done <- set
	}()

	snap, err := s0_data.ReadSnapshot(ctx, src, o.now())
	require.NoError(t, err)
	key := rankcache.NewKey(good.ConfigID, snap.ID(), contracts.AllPlayers())
	require.Eventually(t, func() bool { return o.cache.InFlight(ctx, key) }, time.Second, time.Millisecond)

	stale, err := o.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	require.NoError(t, err)
	assert.True(t, stale.Stale)
	assert.Equal(t, good.SnapshotID, stale.SnapshotID)

	close(gate)
	fresh := <-done
	require.NotNil(t, fresh)
	assert.False(t, fresh.Stale)
	assert.Equal(t, snap.ID(), fresh.SnapshotID)
	assert.NotEqual(t, good.SnapshotID, fresh.SnapshotID)
}

func TestExplain(t *testing.T) {
	ctx := context.Background()
	o, cfg := newOrchestrator(t, newSource())

	exp, err := o.Explain(ctx, 1, "default")
	require.NoError(t, err)
	assert.Equal(t, cfg.ID(), exp.ConfigID)
	assert.Equal(t, int64(1), exp.Ranking.PlayerID)

	weights := exp.Ranking.Breakdown.EffectiveWeights()
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	assert.Equal(t, 1.0, sum)
	assert.NotContains(t, weights, contracts.ComponentAdvanced)

	_, err = o.Explain(ctx, 99, "default")
	assert.ErrorIs(t, err, contracts.ErrPlayerNotRanked)
}

func TestComputeOrFetch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o, _ := newOrchestrator(t, newSource())

	_, err := o.ComputeOrFetch(ctx, "default", contracts.AllPlayers())
	assert.ErrorIs(t, err, context.Canceled)
}
