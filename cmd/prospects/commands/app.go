package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/scout/internal/api"
	"github.com/wonny/scout/internal/brain"
	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/rankcache"
	"github.com/wonny/scout/internal/s0_data"
	"github.com/wonny/scout/internal/scoringconfig"
	"github.com/wonny/scout/internal/selection"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/database"
	"github.com/wonny/scout/pkg/httputil"
	"github.com/wonny/scout/pkg/logger"
	"github.com/wonny/scout/pkg/metrics"
	"github.com/wonny/scout/pkg/redis"
)

// app holds every wired dependency of one CLI invocation
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Recorder

	registry     *scoringconfig.Registry
	source       contracts.RawSource
	cache        *rankcache.Cache
	memoryStore  *rankcache.MemoryStore // nil with the redis backend
	invalidator  *rankcache.Invalidator
	orchestrator *brain.Orchestrator
	history      *selection.Repository // nil unless RANKING_HISTORY_ENABLED

	db     *database.DB
	writer *database.DB
	redis  *redis.Client
}

// newApp loads configuration and wires the ranking core
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	a := &app{
		cfg:     cfg,
		log:     logger.New(cfg),
		metrics: metrics.New(),
	}

	// 3. Scoring configurations
	a.registry, err = scoringconfig.LoadDir(cfg.Ranking.ScoringConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load scoring configurations: %w", err)
	}

	// 4. Raw data source
	if err := a.openSource(); err != nil {
		a.Close()
		return nil, err
	}

	// 5. Ranking cache
	if err := a.openCache(); err != nil {
		a.Close()
		return nil, err
	}
	a.invalidator = rankcache.NewInvalidator(a.cache, cfg.Ranking.AttentionBatch, a.metrics, a.log.Component("invalidator"))

	// 6. Ranking history
	if cfg.Ranking.HistoryEnabled {
		a.writer, err = database.NewWriter(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect history writer: %w", err)
		}
		a.history = selection.NewRepository(a.writer.Pool)
	}

	// 7. Orchestrator
	a.orchestrator = brain.NewOrchestrator(a.registry, a.source, a.cache, cfg.Ranking.Concurrency, a.metrics, a.log.Component("brain"))

	a.log.WithFields(map[string]interface{}{
		"configs":       a.registry.Len(),
		"cache_backend": cfg.Ranking.CacheBackend,
		"fixture":       cfg.UsesFixture(),
		"history":       cfg.Ranking.HistoryEnabled,
	}).Debug("Ranking core initialized")

	return a, nil
}

func (a *app) openSource() error {
	if a.cfg.UsesFixture() {
		src, err := a.loadFixture(a.cfg.Ranking.DataFixture)
		if err != nil {
			return fmt.Errorf("load fixture: %w", err)
		}
		a.source = src
		return nil
	}

	db, err := database.New(a.cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.db = db
	a.source = s0_data.NewRepository(db.Pool)
	return nil
}

// loadFixture reads a local file or downloads an http(s) fixture
func (a *app) loadFixture(ref string) (*s0_data.MemorySource, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return s0_data.LoadFixture(ref)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	body, err := httputil.New(a.log).Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s0_data.DecodeFixture(body)
}

func (a *app) openCache() error {
	opts := rankcache.Options{
		TTL:            a.cfg.Ranking.CacheTTL,
		StaleTTL:       a.cfg.Ranking.CacheStaleTTL,
		ComputeTimeout: a.cfg.Ranking.ComputeTimeout,
		LeaseTTL:       a.cfg.Ranking.LeaseTTL,
	}

	if a.cfg.Ranking.CacheBackend == "memory" {
		a.memoryStore = rankcache.NewMemoryStore()
		a.cache = rankcache.New(a.memoryStore, nil, opts, a.metrics, a.log.Component("rankcache"))
		return nil
	}

	client, err := redis.New(a.cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = client
	locker := rankcache.NewRedisLocker(redis.NewLocker(client, redis.KeyPrefix))
	a.cache = rankcache.New(redis.NewCache(client, redis.KeyPrefix), locker, opts, a.metrics, a.log.Component("rankcache"))
	return nil
}

// healthChecks returns the dependency probes of the ops server
func (a *app) healthChecks() map[string]api.HealthCheck {
	checks := make(map[string]api.HealthCheck)
	if a.db != nil {
		checks["database"] = a.db.Ping
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Redis().Ping(ctx).Err()
		}
	}
	return checks
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.writer != nil {
		a.writer.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
