package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/rankcache"
	"github.com/wonny/scout/internal/s0_data"
	"github.com/wonny/scout/internal/s1_universe"
	"github.com/wonny/scout/internal/s2_signals"
	"github.com/wonny/scout/internal/scoringconfig"
	"github.com/wonny/scout/internal/selection"
	"github.com/wonny/scout/pkg/logger"
	"github.com/wonny/scout/pkg/metrics"
)

// Orchestrator coordinates S0 → S1 → S2 → S3 behind the ranking cache
// ⭐ SSOT: 랭킹 조회/계산 조율은 여기서만
type Orchestrator struct {
	registry *scoringconfig.Registry
	source   contracts.RawSource

	// Stage components
	universeBuilder UniverseBuilder
	signalBuilder   SignalBuilder
	ranker          Ranker

	cache   *rankcache.Cache
	metrics *metrics.Recorder
	logger  *logger.Logger

	now func() time.Time // reference date clock
}

// Explanation is one player's composite breakdown
type Explanation struct {
	ConfigID   string                     `json:"config_id"`
	SnapshotID string                     `json:"snapshot_id"`
	Ranking    contracts.CompositeRanking `json:"ranking"`
	Stale      bool                       `json:"stale,omitempty"`
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	registry *scoringconfig.Registry,
	source contracts.RawSource,
	cache *rankcache.Cache,
	signalConcurrency int,
	rec *metrics.Recorder,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry:        registry,
		source:          source,
		universeBuilder: s1_universe.NewBuilder(source, log),
		signalBuilder:   s2_signals.NewBuilder(source, signalConcurrency, rec, log),
		ranker:          selection.NewRanker(log),
		cache:           cache,
		metrics:         rec,
		logger:          log,
		now:             time.Now,
	}
}

// SetClock overrides the clock the reference date is taken from
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
}

// ComputeOrFetch returns the ranking of (configuration, filter) for today's
// reference date. A fresh cached result is returned as is. While another
// caller computes, the last-good result is served flagged Stale; without one
// the caller waits for the computation.
func (o *Orchestrator) ComputeOrFetch(ctx context.Context, configRef string, filter contracts.PopulationFilter) (*contracts.RankingSet, error) {
	return o.fetch(ctx, configRef, filter, true)
}

// Refresh recomputes (or re-reads) the ranking for the scheduler.
// It always waits for the computation and never serves last-good.
func (o *Orchestrator) Refresh(ctx context.Context, configRef string, filter contracts.PopulationFilter) (*contracts.RankingSet, error) {
	return o.fetch(ctx, configRef, filter, false)
}

// Explain returns the breakdown of one player from the all-players ranking
func (o *Orchestrator) Explain(ctx context.Context, playerID int64, configRef string) (*Explanation, error) {
	set, err := o.ComputeOrFetch(ctx, configRef, contracts.AllPlayers())
	if err != nil {
		return nil, err
	}

	ranking, ok := set.Find(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: player %d under %s", contracts.ErrPlayerNotRanked, playerID, set.ConfigID)
	}
	return &Explanation{
		ConfigID:   set.ConfigID,
		SnapshotID: set.SnapshotID,
		Ranking:    *ranking,
		Stale:      set.Stale,
	}, nil
}

func (o *Orchestrator) fetch(ctx context.Context, configRef string, filter contracts.PopulationFilter, allowStale bool) (*contracts.RankingSet, error) {
	cfg, err := o.registry.Resolve(configRef)
	if err != nil {
		return nil, err
	}
	filter = filter.Normalize()

	snap, err := s0_data.ReadSnapshot(ctx, o.source, o.now())
	if err != nil {
		// 스냅샷 없이도 last-good 키는 만들 수 있음
		key := rankcache.NewKey(cfg.ID(), "", filter)
		return o.fallback(ctx, key, allowStale, err)
	}
	key := rankcache.NewKey(cfg.ID(), snap.ID(), filter)

	if allowStale {
		if set, ok, err := o.cache.Get(ctx, key); err == nil && ok {
			o.metrics.CacheRequest(metrics.CacheHit)
			return set, nil
		}
		if o.cache.InFlight(ctx, key) {
			if set, ok := o.lastGood(ctx, key); ok {
				o.logger.WithFields(map[string]interface{}{
					"config_id":   cfg.ID(),
					"fingerprint": key.Fingerprint,
				}).Debug("computation in flight, serving last-good ranking")
				return set, nil
			}
		}
	}

	set, err := o.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*contracts.RankingSet, error) {
		return o.compute(ctx, cfg, filter, snap, key)
	})
	if err != nil {
		return o.fallback(ctx, key, allowStale, err)
	}
	return set, nil
}

// compute runs one full ranking computation
func (o *Orchestrator) compute(ctx context.Context, cfg *scoringconfig.Config, filter contracts.PopulationFilter, snap *contracts.DataSnapshot, key rankcache.Key) (*contracts.RankingSet, error) {
	runID := uuid.NewString()
	log := o.logger.WithFields(map[string]interface{}{
		"run_id":      runID,
		"config_id":   cfg.ID(),
		"snapshot_id": snap.ID(),
		"fingerprint": key.Fingerprint,
	})
	log.Info("Starting ranking computation")
	start := time.Now()

	// S1: Population
	pop, err := o.universeBuilder.Build(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("S1 failed: %w", err)
	}

	// S2: Signals
	signals, err := o.signalBuilder.Build(ctx, cfg, pop, snap)
	if err != nil {
		return nil, fmt.Errorf("S2 failed: %w", err)
	}

	// S3: Composite ranking
	rankings, err := o.ranker.Rank(ctx, cfg, pop, signals)
	if err != nil {
		return nil, fmt.Errorf("S3 failed: %w", err)
	}

	o.metrics.RankedPlayers(len(rankings))
	log.WithFields(map[string]interface{}{
		"players":  len(rankings),
		"excluded": len(pop.Excluded),
		"duration": time.Since(start).Seconds(),
	}).Info("Ranking computation completed")

	return &contracts.RankingSet{
		ConfigID:    cfg.ID(),
		SnapshotID:  snap.ID(),
		Fingerprint: key.Fingerprint,
		Filter:      filter,
		Rankings:    rankings,
	}, nil
}

// fallback serves last-good after a failure or reports the ranking unavailable
func (o *Orchestrator) fallback(ctx context.Context, key rankcache.Key, allowStale bool, cause error) (*contracts.RankingSet, error) {
	if ctx.Err() != nil && errors.Is(cause, ctx.Err()) {
		return nil, cause
	}

	if allowStale {
		if set, ok := o.lastGood(ctx, key); ok {
			o.logger.WithError(cause).WithFields(map[string]interface{}{
				"config_id":   key.ConfigID,
				"fingerprint": key.Fingerprint,
			}).Warn("ranking computation failed, serving last-good ranking")
			return set, nil
		}
	}
	return nil, fmt.Errorf("%w: %w", contracts.ErrRankingUnavailable, cause)
}

func (o *Orchestrator) lastGood(ctx context.Context, key rankcache.Key) (*contracts.RankingSet, bool) {
	set, ok, err := o.cache.LastGood(ctx, key)
	if err != nil {
		o.logger.WithError(err).Warn("last-good read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	set.Stale = true
	o.metrics.CacheRequest(metrics.CacheStale)
	return set, true
}
