package rankcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
	"github.com/wonny/scout/pkg/metrics"
)

// Invalidator turns raw-data change notifications into cache invalidations.
// Changes accumulate per category until the category's batch threshold.
type Invalidator struct {
	cache      *Cache
	thresholds map[contracts.DataCategory]int
	metrics    *metrics.Recorder
	logger     *logger.Logger

	mu      sync.Mutex
	pending map[contracts.DataCategory]int
}

// NewInvalidator creates an invalidator. Attention events invalidate every
// attentionBatch events; any other category on its first change.
func NewInvalidator(cache *Cache, attentionBatch int, rec *metrics.Recorder, log *logger.Logger) *Invalidator {
	if attentionBatch < 1 {
		attentionBatch = 1
	}
	thresholds := make(map[contracts.DataCategory]int)
	for _, c := range contracts.DataCategories() {
		thresholds[c] = 1
	}
	thresholds[contracts.CategoryAttention] = attentionBatch

	return &Invalidator{
		cache:      cache,
		thresholds: thresholds,
		metrics:    rec,
		logger:     log,
		pending:    make(map[contracts.DataCategory]int),
	}
}

// Notify records count changed rows of category. When the category crosses
// its threshold every fresh ranking is dropped and the counter resets.
// Returns whether an invalidation happened.
func (i *Invalidator) Notify(ctx context.Context, category contracts.DataCategory, count int) (bool, error) {
	if !category.Valid() {
		return false, fmt.Errorf("unknown data category %q", category)
	}
	if count <= 0 {
		return false, nil
	}

	i.mu.Lock()
	i.pending[category] += count
	pending := i.pending[category]
	if pending < i.thresholds[category] {
		i.mu.Unlock()
		i.logger.WithFields(map[string]interface{}{
			"category":  category,
			"pending":   pending,
			"threshold": i.thresholds[category],
		}).Debug("change below invalidation threshold")
		return false, nil
	}
	i.pending[category] = 0
	i.mu.Unlock()

	removed, err := i.cache.InvalidateAll(ctx)
	if err != nil {
		// 실패 시 카운터 복원 (다음 알림에서 재시도)
		i.mu.Lock()
		i.pending[category] += pending
		i.mu.Unlock()
		return false, err
	}

	i.metrics.Invalidation(string(category))
	i.logger.WithFields(map[string]interface{}{
		"category": category,
		"changes":  pending,
		"removed":  removed,
	}).Info("raw data changed, rankings invalidated")
	return true, nil
}

// Pending returns the accumulated changes of category
func (i *Invalidator) Pending(category contracts.DataCategory) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.pending[category]
}
