package jobs

import (
	"context"

	"github.com/wonny/scout/pkg/logger"
)

// ExpiredCleaner drops expired cache entries
type ExpiredCleaner interface {
	CleanExpired() int
}

// CacheCleanupJob sweeps expired rankings from the in-memory cache store.
// Redis expires keys itself and needs no sweep.
type CacheCleanupJob struct {
	store  ExpiredCleaner
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(store ExpiredCleaner, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		store:  store,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	count := j.store.CleanExpired()

	if count > 0 {
		j.logger.WithField("removed", count).Info("Cache cleanup completed")
	}

	return nil
}
