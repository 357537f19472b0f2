package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

// Refresher recomputes one configuration's ranking
type Refresher interface {
	Refresh(ctx context.Context, configRef string, filter contracts.PopulationFilter) (*contracts.RankingSet, error)
}

// HistoryWriter persists a refreshed ranking
type HistoryWriter interface {
	SaveRankingSet(ctx context.Context, set *contracts.RankingSet, referenceDate time.Time) error
}

// RankingRefreshJob keeps the all-players ranking of each configuration warm
// ⭐ SSOT: 주기적 랭킹 재계산은 이 Job에서만
type RankingRefreshJob struct {
	refresher Refresher
	configIDs []string
	schedule  string
	history   HistoryWriter // nil: history disabled
	logger    *logger.Logger
}

// NewRankingRefreshJob creates a new ranking refresh job.
// history may be nil.
func NewRankingRefreshJob(r Refresher, configIDs []string, schedule string, history HistoryWriter, log *logger.Logger) *RankingRefreshJob {
	return &RankingRefreshJob{
		refresher: r,
		configIDs: configIDs,
		schedule:  schedule,
		history:   history,
		logger:    log,
	}
}

// Name returns the job name
func (j *RankingRefreshJob) Name() string {
	return "ranking_refresh"
}

// Schedule returns the cron schedule
func (j *RankingRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes every configuration. One failing configuration does not
// stop the others; the joined error triggers the scheduler retry.
func (j *RankingRefreshJob) Run(ctx context.Context) error {
	j.logger.WithField("configs", len(j.configIDs)).Info("Starting scheduled ranking refresh")

	var errs []error
	for _, id := range j.configIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.refresh(ctx, id); err != nil {
			j.logger.WithError(err).WithField("config_id", id).Warn("ranking refresh failed")
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	j.logger.Info("Scheduled ranking refresh completed")
	return nil
}

func (j *RankingRefreshJob) refresh(ctx context.Context, id string) error {
	set, err := j.refresher.Refresh(ctx, id, contracts.AllPlayers())
	if err != nil {
		return fmt.Errorf("refresh %s: %w", id, err)
	}

	log := j.logger.WithFields(map[string]interface{}{
		"config_id":   set.ConfigID,
		"snapshot_id": set.SnapshotID,
		"players":     len(set.Rankings),
	})

	if j.history != nil {
		ref, err := contracts.ReferenceDateOf(set.SnapshotID)
		if err != nil {
			return fmt.Errorf("history %s: %w", id, err)
		}
		if err := j.history.SaveRankingSet(ctx, set, ref); err != nil {
			return fmt.Errorf("history %s: %w", id, err)
		}
		log = log.WithField("history", true)
	}

	log.Info("Ranking refreshed")
	return nil
}
