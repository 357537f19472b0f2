package rankcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
	"github.com/wonny/scout/pkg/metrics"
)

// errPeerAbandoned: the lease holder released without publishing a result
var errPeerAbandoned = errors.New("computation on another instance finished without a result")

const defaultPollInterval = 200 * time.Millisecond

// Options are the cache timing knobs
type Options struct {
	TTL            time.Duration // fresh entries
	StaleTTL       time.Duration // last-good entries
	ComputeTimeout time.Duration // hard budget per computation
	LeaseTTL       time.Duration // distributed lease
	PollInterval   time.Duration // lease losers polling the store
}

// ComputeFunc produces the ranking of one key
type ComputeFunc func(ctx context.Context) (*contracts.RankingSet, error)

// Cache guarantees at most one computation per fingerprint and serves
// results until TTL or invalidation
// ⭐ SSOT: 랭킹 캐시/단일 계산 보장은 여기서만
type Cache struct {
	store   Store
	locker  Locker // nil: single instance
	opts    Options
	metrics *metrics.Recorder
	logger  *logger.Logger

	group singleflight.Group

	mu         sync.Mutex
	inflight   map[string]int
	generation uint64 // bumped on every invalidation
}

// New creates a ranking cache over store. locker may be nil.
func New(store Store, locker Locker, opts Options, rec *metrics.Recorder, log *logger.Logger) *Cache {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.LeaseTTL < opts.ComputeTimeout {
		opts.LeaseTTL = opts.ComputeTimeout
	}
	return &Cache{
		store:    store,
		locker:   locker,
		opts:     opts,
		metrics:  rec,
		logger:   log,
		inflight: make(map[string]int),
	}
}

// Get returns the fresh entry of key
func (c *Cache) Get(ctx context.Context, key Key) (*contracts.RankingSet, bool, error) {
	return c.read(ctx, key.Fresh())
}

// LastGood returns the most recent successful result for key's
// configuration and filter, whatever its snapshot
func (c *Cache) LastGood(ctx context.Context, key Key) (*contracts.RankingSet, bool, error) {
	return c.read(ctx, key.LastGood())
}

// InFlight reports whether key is being computed here or on another instance
func (c *Cache) InFlight(ctx context.Context, key Key) bool {
	c.mu.Lock()
	local := c.inflight[key.Fresh()] > 0
	c.mu.Unlock()
	if local || c.locker == nil {
		return local
	}

	held, err := c.locker.Held(ctx, key.Fresh())
	if err != nil {
		c.logger.WithError(err).Warn("lease check failed")
		return false
	}
	return held
}

// GetOrCompute returns the fresh entry of key, computing it at most once
// across concurrent callers. Callers leaving early do not cancel the
// computation; it runs under its own ComputeTimeout budget.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) (*contracts.RankingSet, error) {
	set, ok, err := c.Get(ctx, key)
	if err != nil {
		c.logger.WithError(err).WithField("fingerprint", key.Fingerprint).Warn("cache read failed, computing")
	}
	if ok {
		c.metrics.CacheRequest(metrics.CacheHit)
		return set, nil
	}
	c.metrics.CacheRequest(metrics.CacheMiss)

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.Fresh(), func() (interface{}, error) {
		return c.computeOnce(detached, key, compute)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// 호출자마다 독립된 복사본
		return decode(res.Val.([]byte))
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// computeOnce runs one computation under the lease and the budget and
// publishes the encoded result
func (c *Cache) computeOnce(parent context.Context, key Key, compute ComputeFunc) ([]byte, error) {
	c.track(key, 1)
	defer c.track(key, -1)

	ctx, cancel := context.WithTimeout(parent, c.opts.ComputeTimeout)
	defer cancel()

	if c.locker != nil {
		lease, ok, err := c.locker.Acquire(ctx, key.Fresh(), c.opts.LeaseTTL)
		switch {
		case err != nil:
			c.logger.WithError(err).Warn("lease unavailable, computing without it")
		case !ok:
			return c.awaitPeer(ctx, key)
		default:
			defer func() {
				if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
					c.logger.WithError(err).Warn("lease release failed")
				}
			}()
		}
	}

	// 리스 획득 직전에 다른 인스턴스가 끝냈을 수 있음
	if data, ok, err := c.store.Get(ctx, key.Fresh()); err == nil && ok {
		return data, nil
	}

	gen := c.currentGeneration()
	start := time.Now()
	set, err := c.run(ctx, key, compute)
	elapsed := time.Since(start)
	if err != nil {
		result := metrics.ResultError
		if contracts.IsTimeout(err) {
			result = metrics.ResultTimeout
		}
		c.metrics.ObserveComputation(key.ConfigID, result, elapsed)
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"config_id":   key.ConfigID,
			"fingerprint": key.Fingerprint,
			"elapsed_ms":  elapsed.Milliseconds(),
		}).Error("ranking computation failed")
		return nil, err
	}
	c.metrics.ObserveComputation(key.ConfigID, metrics.ResultSuccess, elapsed)

	data, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("encode ranking set: %w", err)
	}

	// 계산 도중 무효화된 결과는 fresh로 저장하지 않음
	writeCtx := context.WithoutCancel(ctx)
	if c.currentGeneration() == gen {
		if err := c.store.Set(writeCtx, key.Fresh(), data, c.opts.TTL); err != nil {
			c.logger.WithError(err).Warn("cache write failed")
		}
	}
	if err := c.store.Set(writeCtx, key.LastGood(), data, c.opts.StaleTTL); err != nil {
		c.logger.WithError(err).Warn("last-good write failed")
	}

	c.logger.WithFields(map[string]interface{}{
		"config_id":   key.ConfigID,
		"fingerprint": key.Fingerprint,
		"players":     len(set.Rankings),
		"elapsed_ms":  elapsed.Milliseconds(),
	}).Info("ranking computed and cached")

	return data, nil
}

type computeResult struct {
	set *contracts.RankingSet
	err error
}

// run enforces the hard budget even when compute ignores ctx
func (c *Cache) run(ctx context.Context, key Key, compute ComputeFunc) (*contracts.RankingSet, error) {
	done := make(chan computeResult, 1)
	go func() {
		set, err := compute(ctx)
		done <- computeResult{set: set, err: err}
	}()

	timeout := &contracts.ComputationTimeoutError{Fingerprint: key.Fingerprint, Budget: c.opts.ComputeTimeout}
	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) && ctx.Err() != nil {
				return nil, timeout
			}
			return nil, r.err
		}
		if r.set == nil {
			return nil, fmt.Errorf("computation returned no ranking")
		}
		return r.set, nil
	case <-ctx.Done():
		return nil, timeout
	}
}

// awaitPeer polls the store while another instance holds the lease
func (c *Cache) awaitPeer(ctx context.Context, key Key) ([]byte, error) {
	c.logger.WithField("fingerprint", key.Fingerprint).Debug("lease held elsewhere, waiting for result")

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		if data, ok, err := c.store.Get(ctx, key.Fresh()); err == nil && ok {
			return data, nil
		}
		held, err := c.locker.Held(ctx, key.Fresh())
		if err == nil && !held {
			// 해제 직후 기록된 값 확인
			if data, ok, err := c.store.Get(ctx, key.Fresh()); err == nil && ok {
				return data, nil
			}
			return nil, errPeerAbandoned
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, &contracts.ComputationTimeoutError{Fingerprint: key.Fingerprint, Budget: c.opts.ComputeTimeout}
		}
	}
}

// Invalidate drops every entry whose key starts with prefix
func (c *Cache) Invalidate(ctx context.Context, prefix string) (int, error) {
	c.bumpGeneration()
	n, err := c.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		return n, fmt.Errorf("invalidate %s: %w", prefix, err)
	}
	c.logger.WithFields(map[string]interface{}{
		"prefix":  prefix,
		"removed": n,
	}).Info("ranking cache invalidated")
	return n, nil
}

// InvalidateAll drops every fresh ranking; last-good entries survive
func (c *Cache) InvalidateAll(ctx context.Context) (int, error) {
	return c.Invalidate(ctx, FreshPrefix())
}

// InvalidateConfig drops the fresh rankings of one configuration
func (c *Cache) InvalidateConfig(ctx context.Context, configID string) (int, error) {
	return c.Invalidate(ctx, ConfigPrefix(configID))
}

// Purge drops fresh and last-good rankings of one configuration
func (c *Cache) Purge(ctx context.Context, configID string) (int, error) {
	fresh, err := c.InvalidateConfig(ctx, configID)
	if err != nil {
		return fresh, err
	}
	latest, err := c.Invalidate(ctx, LastGoodPrefix(configID))
	return fresh + latest, err
}

func (c *Cache) read(ctx context.Context, storeKey string) (*contracts.RankingSet, bool, error) {
	data, ok, err := c.store.Get(ctx, storeKey)
	if err != nil || !ok {
		return nil, false, err
	}
	set, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return set, true, nil
}

func (c *Cache) track(key Key, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inflight[key.Fresh()] += delta
	if c.inflight[key.Fresh()] <= 0 {
		delete(c.inflight, key.Fresh())
	}
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Cache) bumpGeneration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
}

func decode(data []byte) (*contracts.RankingSet, error) {
	var set contracts.RankingSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode ranking set: %w", err)
	}
	return &set, nil
}
