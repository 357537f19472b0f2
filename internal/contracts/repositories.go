package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만
// Raw entities are owned by ingestion; every method here is a read.

// ProspectRepository reads prospect identity rows
type ProspectRepository interface {
	ListProspects(ctx context.Context) ([]*Prospect, error)
	GetProspect(ctx context.Context, id int64) (*Prospect, error)
}

// GameLogRepository reads per-game rows in batches
type GameLogRepository interface {
	// GetGameLogs returns every row of the given players in one season
	GetGameLogs(ctx context.Context, playerIDs []int64, season int) ([]*GameLogRecord, error)
}

// SeasonRepository reads season calendars
type SeasonRepository interface {
	// GetSeasons returns one SeasonInfo per level that played the season
	GetSeasons(ctx context.Context, season int) ([]*SeasonInfo, error)
}

// AdvancedMetricRepository reads measured advanced metrics
type AdvancedMetricRepository interface {
	// GetAdvancedMetrics returns the season's rows for ALL players: comparables come from outside the filter too
	GetAdvancedMetrics(ctx context.Context, season int) ([]*AdvancedMetricRecord, error)
}

// GradeRepository reads scouting grades
type GradeRepository interface {
	GetGrades(ctx context.Context, playerIDs []int64) ([]*ScoutingGrade, error)
}

// AttentionRepository reads attention events
type AttentionRepository interface {
	GetAttentionEvents(ctx context.Context, playerIDs []int64, from, to time.Time) ([]*AttentionEvent, error)
}

// SnapshotRepository reports the latest ingestion timestamp per category
type SnapshotRepository interface {
	LatestIngested(ctx context.Context) (map[DataCategory]time.Time, error)
}

// RawSource is the full read interface the ranking core queries
type RawSource interface {
	ProspectRepository
	GameLogRepository
	SeasonRepository
	AdvancedMetricRepository
	GradeRepository
	AttentionRepository
	SnapshotRepository
}
