package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scout/internal/contracts"
)

// idBatchSize bounds the player ids sent in one ANY($1) query
const idBatchSize = 500

// Repository implements contracts.RawSource on PostgreSQL.
// ⭐ SSOT: 원천 데이터 조회는 여기서만 (읽기 전용)
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool returns the underlying database pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// ListProspects returns every prospect ordered by id
func (r *Repository) ListProspects(ctx context.Context) ([]*contracts.Prospect, error) {
	query := `
		SELECT id, COALESCE(external_id, ''), name, position, organization, level, age, eta_year, updated_at
		FROM scout.prospects
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query prospects: %w", err)
	}
	defer rows.Close()

	var out []*contracts.Prospect
	for rows.Next() {
		var p contracts.Prospect
		if err := rows.Scan(&p.ID, &p.ExternalID, &p.Name, &p.Position, &p.Organization,
			&p.Level, &p.Age, &p.ETAYear, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan prospect: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// GetProspect returns one prospect
func (r *Repository) GetProspect(ctx context.Context, id int64) (*contracts.Prospect, error) {
	query := `
		SELECT id, COALESCE(external_id, ''), name, position, organization, level, age, eta_year, updated_at
		FROM scout.prospects
		WHERE id = $1
	`

	var p contracts.Prospect
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.ExternalID, &p.Name, &p.Position,
		&p.Organization, &p.Level, &p.Age, &p.ETAYear, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("prospect %d: %w", id, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query prospect %d: %w", id, err)
	}
	return &p, nil
}

// GetGameLogs returns the season rows of the given players, batched by id
func (r *Repository) GetGameLogs(ctx context.Context, playerIDs []int64, season int) ([]*contracts.GameLogRecord, error) {
	query := `
		SELECT player_id, season, game_date, level, ingested_at,
			pa, ab, h, doubles, triples, hr, bb, hbp, sf, so,
			outs, bf, h_allowed, er, bb_allowed, k, hr_allowed
		FROM scout.game_logs
		WHERE player_id = ANY($1) AND season = $2
		ORDER BY player_id ASC, game_date ASC
	`

	var out []*contracts.GameLogRecord
	err := forEachBatch(playerIDs, func(batch []int64) error {
		rows, err := r.pool.Query(ctx, query, batch, season)
		if err != nil {
			return fmt.Errorf("query game logs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var g contracts.GameLogRecord
			if err := rows.Scan(&g.PlayerID, &g.Season, &g.GameDate, &g.Level, &g.IngestedAt,
				&g.PlateAppearances, &g.AtBats, &g.Hits, &g.Doubles, &g.Triples, &g.HomeRuns,
				&g.Walks, &g.HitByPitch, &g.SacFlies, &g.Strikeouts,
				&g.OutsRecorded, &g.BattersFaced, &g.HitsAllowed, &g.EarnedRuns,
				&g.WalksAllowed, &g.StrikeoutsPitch, &g.HomeRunsAllowed); err != nil {
				return fmt.Errorf("scan game log: %w", err)
			}
			out = append(out, &g)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetSeasons returns the calendar of every level for a season.
// last_game_date is derived from the game logs, not from the calendar table.
func (r *Repository) GetSeasons(ctx context.Context, season int) ([]*contracts.SeasonInfo, error) {
	query := `
		SELECT s.season, s.level, s.start_date, s.end_date,
			COALESCE(MAX(g.game_date), s.start_date) AS last_game_date
		FROM scout.seasons s
		LEFT JOIN scout.game_logs g ON g.season = s.season AND g.level = s.level
		WHERE s.season = $1
		GROUP BY s.season, s.level, s.start_date, s.end_date
		ORDER BY s.level ASC
	`

	rows, err := r.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	var out []*contracts.SeasonInfo
	for rows.Next() {
		var s contracts.SeasonInfo
		if err := rows.Scan(&s.Season, &s.Level, &s.StartDate, &s.EndDate, &s.LastGameDate); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// GetAdvancedMetrics returns every measured row of the season.
// NULL columns are missing fields, not zeros.
func (r *Repository) GetAdvancedMetrics(ctx context.Context, season int) ([]*contracts.AdvancedMetricRecord, error) {
	query := `
		SELECT m.player_id, m.season, m.level, p.position, p.age,
			m.avg_exit_velocity, m.hard_hit_rate, m.barrel_rate, m.sweet_spot_rate,
			m.fastball_velocity, m.spin_rate, m.whiff_rate, m.chase_rate
		FROM scout.advanced_metrics m
		JOIN scout.prospects p ON p.id = m.player_id
		WHERE m.season = $1
		ORDER BY m.player_id ASC, m.level ASC
	`

	rows, err := r.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query advanced metrics: %w", err)
	}
	defer rows.Close()

	fields := []contracts.MetricField{
		contracts.FieldExitVelocity, contracts.FieldHardHitRate, contracts.FieldBarrelRate, contracts.FieldSweetSpotRate,
		contracts.FieldFastballVelo, contracts.FieldSpinRate, contracts.FieldWhiffRate, contracts.FieldChaseRate,
	}

	var out []*contracts.AdvancedMetricRecord
	for rows.Next() {
		var rec contracts.AdvancedMetricRecord
		vals := make([]*float64, len(fields))
		dest := []any{&rec.PlayerID, &rec.Season, &rec.Level, &rec.Position, &rec.Age}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan advanced metric: %w", err)
		}

		rec.Values = make(map[contracts.MetricField]float64)
		for i, v := range vals {
			if v != nil {
				rec.Values[fields[i]] = *v
			}
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// GetGrades returns every grade of the given players
func (r *Repository) GetGrades(ctx context.Context, playerIDs []int64) ([]*contracts.ScoutingGrade, error) {
	query := `
		SELECT player_id, source, report_year, grade, scale_min, scale_max
		FROM scout.scouting_grades
		WHERE player_id = ANY($1)
		ORDER BY player_id ASC, report_year DESC, source ASC
	`

	var out []*contracts.ScoutingGrade
	err := forEachBatch(playerIDs, func(batch []int64) error {
		rows, err := r.pool.Query(ctx, query, batch)
		if err != nil {
			return fmt.Errorf("query grades: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var g contracts.ScoutingGrade
			if err := rows.Scan(&g.PlayerID, &g.Source, &g.ReportYear, &g.Value, &g.ScaleMin, &g.ScaleMax); err != nil {
				return fmt.Errorf("scan grade: %w", err)
			}
			out = append(out, &g)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAttentionEvents returns the events of the given players inside [from, to]
func (r *Repository) GetAttentionEvents(ctx context.Context, playerIDs []int64, from, to time.Time) ([]*contracts.AttentionEvent, error) {
	query := `
		SELECT player_id, source_type, occurred_at, intensity
		FROM scout.attention_events
		WHERE player_id = ANY($1) AND occurred_at BETWEEN $2 AND $3
		ORDER BY player_id ASC, occurred_at ASC, source_type ASC, intensity ASC
	`

	var out []*contracts.AttentionEvent
	err := forEachBatch(playerIDs, func(batch []int64) error {
		rows, err := r.pool.Query(ctx, query, batch, from, to)
		if err != nil {
			return fmt.Errorf("query attention events: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var e contracts.AttentionEvent
			if err := rows.Scan(&e.PlayerID, &e.Source, &e.OccurredAt, &e.Intensity); err != nil {
				return fmt.Errorf("scan attention event: %w", err)
			}
			out = append(out, &e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LatestIngested returns the newest ingestion timestamp of each raw category
func (r *Repository) LatestIngested(ctx context.Context) (map[contracts.DataCategory]time.Time, error) {
	query := `
		SELECT 'prospects', MAX(updated_at) FROM scout.prospects
		UNION ALL SELECT 'game_logs', MAX(ingested_at) FROM scout.game_logs
		UNION ALL SELECT 'advanced_metrics', MAX(ingested_at) FROM scout.advanced_metrics
		UNION ALL SELECT 'grades', MAX(ingested_at) FROM scout.scouting_grades
		UNION ALL SELECT 'attention', MAX(ingested_at) FROM scout.attention_events
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query latest ingestion: %w", err)
	}
	defer rows.Close()

	out := make(map[contracts.DataCategory]time.Time)
	for rows.Next() {
		var (
			category string
			ts       *time.Time
		)
		if err := rows.Scan(&category, &ts); err != nil {
			return nil, fmt.Errorf("scan latest ingestion: %w", err)
		}
		if ts != nil {
			out[contracts.DataCategory(category)] = ts.UTC()
		}
	}
	return out, rows.Err()
}

// forEachBatch calls fn with consecutive slices of at most idBatchSize ids
func forEachBatch(ids []int64, fn func([]int64) error) error {
	for start := 0; start < len(ids); start += idBatchSize {
		end := start + idBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := fn(ids[start:end]); err != nil {
			return err
		}
	}
	return nil
}
