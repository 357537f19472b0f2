package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

// Notifier receives raw-data change notifications
type Notifier interface {
	Notify(ctx context.Context, category contracts.DataCategory, count int) (bool, error)
}

// DataWatchJob polls the ingestion timestamps and reports every category
// that advanced since the previous run as one change
type DataWatchJob struct {
	source   contracts.SnapshotRepository
	notifier Notifier
	schedule string
	logger   *logger.Logger

	mu   sync.Mutex
	seen map[contracts.DataCategory]time.Time // nil until the first run
}

// NewDataWatchJob creates a new data watch job
func NewDataWatchJob(source contracts.SnapshotRepository, notifier Notifier, schedule string, log *logger.Logger) *DataWatchJob {
	return &DataWatchJob{
		source:   source,
		notifier: notifier,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *DataWatchJob) Name() string {
	return "data_watch"
}

// Schedule returns the cron schedule
func (j *DataWatchJob) Schedule() string {
	return j.schedule
}

// Run compares the latest ingestion per category with the last run.
// The first run only records the baseline.
func (j *DataWatchJob) Run(ctx context.Context) error {
	latest, err := j.source.LatestIngested(ctx)
	if err != nil {
		return fmt.Errorf("read ingestion timestamps: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.seen == nil {
		j.seen = make(map[contracts.DataCategory]time.Time, len(latest))
		for c, ts := range latest {
			j.seen[c] = ts
		}
		j.logger.Debug("data watch baseline recorded")
		return nil
	}

	for _, c := range contracts.DataCategories() {
		ts, ok := latest[c]
		if !ok || !ts.After(j.seen[c]) {
			continue
		}
		fired, err := j.notifier.Notify(ctx, c, 1)
		if err != nil {
			// seen 갱신 안 함: 다음 실행에서 재시도
			return fmt.Errorf("notify %s: %w", c, err)
		}
		j.seen[c] = ts

		j.logger.WithFields(map[string]interface{}{
			"category":    c,
			"ingested_at": ts,
			"invalidated": fired,
		}).Info("raw data change detected")
	}
	return nil
}
