package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/rankcache"
	"github.com/wonny/scout/pkg/logger"
)

type fakeRefresher struct {
	fail  map[string]error
	calls []string
}

func (f *fakeRefresher) Refresh(ctx context.Context, configRef string, filter contracts.PopulationFilter) (*contracts.RankingSet, error) {
	f.calls = append(f.calls, configRef)
	if err := f.fail[configRef]; err != nil {
		return nil, err
	}
	return &contracts.RankingSet{
		ConfigID:    configRef + "-0123456789ab",
		SnapshotID:  "2026-09-01T10:00:00Z@2026-09-02",
		Fingerprint: "fp-" + configRef,
		Rankings:    []contracts.CompositeRanking{{PlayerID: 1, Rank: 1}},
	}, nil
}

type fakeHistory struct {
	saved map[string]time.Time
}

func (f *fakeHistory) SaveRankingSet(ctx context.Context, set *contracts.RankingSet, referenceDate time.Time) error {
	if f.saved == nil {
		f.saved = make(map[string]time.Time)
	}
	f.saved[set.Fingerprint] = referenceDate
	return nil
}

func TestRankingRefreshJob(t *testing.T) {
	r := &fakeRefresher{}
	h := &fakeHistory{}
	job := NewRankingRefreshJob(r, []string{"default", "power"}, "0 15 * * * *", h, logger.Nop())

	assert.Equal(t, "ranking_refresh", job.Name())
	assert.Equal(t, "0 15 * * * *", job.Schedule())
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []string{"default", "power"}, r.calls)
	assert.Equal(t, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), h.saved["fp-default"])
	assert.Len(t, h.saved, 2)
}

func TestRankingRefreshJob_PartialFailure(t *testing.T) {
	boom := errors.New("timeout")
	r := &fakeRefresher{fail: map[string]error{"default": boom}}
	job := NewRankingRefreshJob(r, []string{"default", "power"}, "@hourly", nil, logger.Nop())

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	// 실패한 설정 다음도 계속 진행
	assert.Equal(t, []string{"default", "power"}, r.calls)
}

type fakeIngestion struct {
	latest map[contracts.DataCategory]time.Time
}

func (f *fakeIngestion) LatestIngested(ctx context.Context) (map[contracts.DataCategory]time.Time, error) {
	out := make(map[contracts.DataCategory]time.Time, len(f.latest))
	for k, v := range f.latest {
		out[k] = v
	}
	return out, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[contracts.DataCategory]int
	fail  error
}

func (n *recordingNotifier) Notify(ctx context.Context, c contracts.DataCategory, count int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return false, n.fail
	}
	if n.calls == nil {
		n.calls = make(map[contracts.DataCategory]int)
	}
	n.calls[c] += count
	return true, nil
}

func TestDataWatchJob(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	src := &fakeIngestion{latest: map[contracts.DataCategory]time.Time{
		contracts.CategoryGameLogs:  t0,
		contracts.CategoryAttention: t0,
	}}
	n := &recordingNotifier{}
	job := NewDataWatchJob(src, n, "@every 5m", logger.Nop())

	// baseline
	require.NoError(t, job.Run(ctx))
	assert.Empty(t, n.calls)

	src.latest[contracts.CategoryGameLogs] = t0.Add(time.Hour)
	src.latest[contracts.CategoryGrades] = t0.Add(time.Hour)
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, map[contracts.DataCategory]int{
		contracts.CategoryGameLogs: 1,
		contracts.CategoryGrades:   1,
	}, n.calls)

	// 변화 없음
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, n.calls[contracts.CategoryGameLogs])
}

func TestDataWatchJob_RetriesFailedNotification(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	src := &fakeIngestion{latest: map[contracts.DataCategory]time.Time{contracts.CategoryGrades: t0}}
	n := &recordingNotifier{}
	job := NewDataWatchJob(src, n, "@every 5m", logger.Nop())
	require.NoError(t, job.Run(ctx))

	src.latest[contracts.CategoryGrades] = t0.Add(time.Minute)
	n.fail = errors.New("redis down")
	assert.Error(t, job.Run(ctx))

	n.fail = nil
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, n.calls[contracts.CategoryGrades])
}

func TestCacheCleanupJob(t *testing.T) {
	ctx := context.Background()
	store := rankcache.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "ranking:fresh:a:1", []byte("x"), time.Nanosecond))
	require.NoError(t, store.Set(ctx, "ranking:fresh:a:2", []byte("y"), time.Hour))
	time.Sleep(time.Millisecond)

	job := NewCacheCleanupJob(store, logger.Nop())
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, store.Len())
}
