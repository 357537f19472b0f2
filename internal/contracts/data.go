package contracts

import (
	"fmt"
	"strings"
	"time"
)

// DataCategory is a raw input category written by ingestion
type DataCategory string

const (
	CategoryProspects       DataCategory = "prospects"
	CategoryGameLogs        DataCategory = "game_logs"
	CategoryAdvancedMetrics DataCategory = "advanced_metrics"
	CategoryGrades          DataCategory = "grades"
	CategoryAttention       DataCategory = "attention"
)

// DataCategories lists every raw category in fixed order
func DataCategories() []DataCategory {
	return []DataCategory{
		CategoryProspects,
		CategoryGameLogs,
		CategoryAdvancedMetrics,
		CategoryGrades,
		CategoryAttention,
	}
}

// Valid reports whether c is a known category
func (c DataCategory) Valid() bool {
	for _, k := range DataCategories() {
		if k == c {
			return true
		}
	}
	return false
}

// DataSnapshot identifies the raw data a computation reads
// ⭐ SSOT: S0 → 계산 스냅샷 식별
type DataSnapshot struct {
	ReferenceDate time.Time                  `json:"reference_date"` // day the ranking is computed for
	LatestRaw     time.Time                  `json:"latest_raw"`     // max ingestion timestamp over all categories
	Categories    map[DataCategory]time.Time `json:"categories"`     // 카테고리별 최신 적재 시각
}

// ID returns the snapshot id: "<latest raw>@<reference date>".
// The reference date participates because windows and decay depend on it.
func (d *DataSnapshot) ID() string {
	return fmt.Sprintf("%s@%s",
		d.LatestRaw.UTC().Format(time.RFC3339Nano),
		TruncateDay(d.ReferenceDate).Format("2006-01-02"))
}

// ReferenceDateOf extracts the reference date from a snapshot id
func ReferenceDateOf(snapshotID string) (time.Time, error) {
	i := strings.LastIndex(snapshotID, "@")
	if i < 0 {
		return time.Time{}, fmt.Errorf("snapshot id %q has no reference date", snapshotID)
	}
	ref, err := time.Parse("2006-01-02", snapshotID[i+1:])
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot id %q: %w", snapshotID, err)
	}
	return ref, nil
}

// AsOf returns the exclusive end of the reference day.
// Events strictly before it are visible to the computation.
func (d *DataSnapshot) AsOf() time.Time {
	return TruncateDay(d.ReferenceDate).AddDate(0, 0, 1)
}

// Season returns the season of the reference date
func (d *DataSnapshot) Season() int {
	return d.ReferenceDate.UTC().Year()
}

// IsEmpty reports whether no raw data has ever been ingested
func (d *DataSnapshot) IsEmpty() bool {
	return d.LatestRaw.IsZero()
}
