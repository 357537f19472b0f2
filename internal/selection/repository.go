package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scout/internal/contracts"
)

// Repository persists published rankings for history
// ⭐ SSOT: 랭킹 이력 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new selection repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRankingSet replaces the stored rows of one fingerprint
func (r *Repository) SaveRankingSet(ctx context.Context, set *contracts.RankingSet, referenceDate time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM scout.ranking_results WHERE fingerprint = $1", set.Fingerprint)
	if err != nil {
		return fmt.Errorf("failed to delete old results: %w", err)
	}

	query := `
		INSERT INTO scout.ranking_results (
			fingerprint, config_id, snapshot_id, reference_date,
			player_id, rank, composite, sample_size, unscored, breakdown
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for _, cr := range set.Rankings {
		breakdown, err := json.Marshal(cr.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to marshal breakdown: %w", err)
		}
		batch.Queue(query,
			set.Fingerprint, set.ConfigID, set.SnapshotID, contracts.TruncateDay(referenceDate),
			cr.PlayerID, cr.Rank, cr.Composite, cr.SampleSize, cr.Unscored, breakdown,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert ranking results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HistoryEntry is one stored ranking row
type HistoryEntry struct {
	ReferenceDate time.Time
	SnapshotID    string
	PlayerID      int64
	Rank          int
	Composite     float64
	Unscored      bool
}

// GetPlayerHistory returns a player's stored ranks for one configuration, newest first
func (r *Repository) GetPlayerHistory(ctx context.Context, configID string, playerID int64, limit int) ([]HistoryEntry, error) {
	query := `
		SELECT reference_date, snapshot_id, player_id, rank, composite, unscored
		FROM scout.ranking_results
		WHERE config_id = $1 AND player_id = $2
		ORDER BY reference_date DESC, snapshot_id DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, configID, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking history: %w", err)
	}
	defer rows.Close()

	results := make([]HistoryEntry, 0)
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ReferenceDate, &h.SnapshotID, &h.PlayerID, &h.Rank, &h.Composite, &h.Unscored); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}

// GetLatestRanking returns the top rows of the most recent stored run of a configuration
func (r *Repository) GetLatestRanking(ctx context.Context, configID string, limit int) ([]HistoryEntry, error) {
	var fingerprint string
	err := r.pool.QueryRow(ctx, `
		SELECT fingerprint
		FROM scout.ranking_results
		WHERE config_id = $1
		ORDER BY reference_date DESC, created_at DESC
		LIMIT 1
	`, configID).Scan(&fingerprint)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no stored ranking for %s: %w", configID, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest ranking: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT reference_date, snapshot_id, player_id, rank, composite, unscored
		FROM scout.ranking_results
		WHERE fingerprint = $1
		ORDER BY rank ASC
		LIMIT $2
	`, fingerprint, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking results: %w", err)
	}
	defer rows.Close()

	results := make([]HistoryEntry, 0)
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ReferenceDate, &h.SnapshotID, &h.PlayerID, &h.Rank, &h.Composite, &h.Unscored); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}
