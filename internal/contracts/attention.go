package contracts

import (
	"sort"
	"time"
)

// SourceType is the kind of attention source
type SourceType string

const (
	SourceSocial SourceType = "social"
	SourceSearch SourceType = "search"
	SourceMedia  SourceType = "media"
)

// SourceTypes lists the recognized source types in fixed order
func SourceTypes() []SourceType {
	return []SourceType{SourceSocial, SourceSearch, SourceMedia}
}

// AttentionEvent is one timestamped unit of attention
type AttentionEvent struct {
	PlayerID   int64      `json:"player_id"`
	Source     SourceType `json:"source"`
	OccurredAt time.Time  `json:"occurred_at"`
	Intensity  float64    `json:"intensity"` // e.g. engagement count
}

// HypeScore is the decayed attention score of one player
type HypeScore struct {
	PlayerID   int64                  `json:"player_id"`
	Score      float64                `json:"score"`
	Growth     float64                `json:"growth"` // reported alongside, never blended
	BySource   map[SourceType]float64 `json:"by_source"`
	EventCount int                    `json:"event_count"`
	Provenance Provenance             `json:"provenance"`
}

// SortAttention orders events by (player, occurred_at, source, intensity).
// Every field takes part so tied rows always sum in the same order.
func SortAttention(es []*AttentionEvent) {
	sort.SliceStable(es, func(i, j int) bool {
		a, b := es[i], es[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Intensity < b.Intensity
	})
}
