package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/scout/internal/contracts"
)

// ReadSnapshot builds the data snapshot a computation runs against
// ⭐ SSOT: S0 → 스냅샷 식별
func ReadSnapshot(ctx context.Context, repo contracts.SnapshotRepository, referenceDate time.Time) (*contracts.DataSnapshot, error) {
	latest, err := repo.LatestIngested(ctx)
	if err != nil {
		return nil, fmt.Errorf("read latest ingestion: %w", err)
	}

	snap := &contracts.DataSnapshot{
		ReferenceDate: contracts.TruncateDay(referenceDate),
		Categories:    make(map[contracts.DataCategory]time.Time, len(latest)),
	}
	for c, ts := range latest {
		ts = ts.UTC()
		snap.Categories[c] = ts
		if ts.After(snap.LatestRaw) {
			snap.LatestRaw = ts
		}
	}
	return snap, nil
}
