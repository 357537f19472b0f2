package contracts

import "time"

// GameLogRecord is one player-game row (append-only, owned by ingestion)
type GameLogRecord struct {
	PlayerID   int64     `json:"player_id"`
	Season     int       `json:"season"`
	GameDate   time.Time `json:"game_date"`
	Level      Level     `json:"level"`
	IngestedAt time.Time `json:"ingested_at"`

	// Batting
	PlateAppearances int `json:"pa"`
	AtBats           int `json:"ab"`
	Hits             int `json:"h"`
	Doubles          int `json:"2b"`
	Triples          int `json:"3b"`
	HomeRuns         int `json:"hr"`
	Walks            int `json:"bb"`
	HitByPitch       int `json:"hbp"`
	SacFlies         int `json:"sf"`
	Strikeouts       int `json:"so"`

	// Pitching
	OutsRecorded    int `json:"outs"`
	BattersFaced    int `json:"bf"`
	HitsAllowed     int `json:"h_allowed"`
	EarnedRuns      int `json:"er"`
	WalksAllowed    int `json:"bb_allowed"`
	StrikeoutsPitch int `json:"k"`
	HomeRunsAllowed int `json:"hr_allowed"`
}

// SeasonInfo describes one (season, level) calendar
type SeasonInfo struct {
	Season       int        `json:"season"`
	Level        Level      `json:"level"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"` // canonical end, nil when not published
	LastGameDate time.Time  `json:"last_game_date"`     // last observed game for the level
}

// Window is a closed date interval used to select game-log rows
type Window struct {
	Level        Level     `json:"level"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	IsFullSeason bool      `json:"is_full_season"`
}

// Contains reports whether d falls inside the window (day granularity, inclusive)
func (w Window) Contains(d time.Time) bool {
	day := TruncateDay(d)
	return !day.Before(w.From) && !day.After(w.To)
}

// TruncateDay drops the time of day in UTC
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BattingLine holds summed batting counters and derived rates
type BattingLine struct {
	Games            int     `json:"games"`
	PlateAppearances int     `json:"pa"`
	AtBats           int     `json:"ab"`
	Hits             int     `json:"h"`
	Doubles          int     `json:"2b"`
	Triples          int     `json:"3b"`
	HomeRuns         int     `json:"hr"`
	Walks            int     `json:"bb"`
	HitByPitch       int     `json:"hbp"`
	SacFlies         int     `json:"sf"`
	Strikeouts       int     `json:"so"`
	AVG              float64 `json:"avg"`
	OBP              float64 `json:"obp"`
	SLG              float64 `json:"slg"`
	OPS              float64 `json:"ops"`
}

// PitchingLine holds summed pitching counters and derived rates
type PitchingLine struct {
	Games           int     `json:"games"`
	OutsRecorded    int     `json:"outs"`
	BattersFaced    int     `json:"bf"`
	HitsAllowed     int     `json:"h"`
	EarnedRuns      int     `json:"er"`
	Walks           int     `json:"bb"`
	Strikeouts      int     `json:"k"`
	HomeRunsAllowed int     `json:"hr"`
	InningsPitched  float64 `json:"ip"`
	ERA             float64 `json:"era"`
	WHIP            float64 `json:"whip"`
	KMinusBBPct     float64 `json:"k_minus_bb_pct"`
}

// AggregatedStatLine is a derived per-(player, level, window) line.
// Cached derivation only, never a source of truth.
type AggregatedStatLine struct {
	PlayerID int64         `json:"player_id"`
	Group    PositionGroup `json:"group"`
	Window   Window        `json:"window"`
	Batting  *BattingLine  `json:"batting,omitempty"`
	Pitching *PitchingLine `json:"pitching,omitempty"`
}

// SampleSize returns PA for hitters and whole innings pitched for pitchers
func (s *AggregatedStatLine) SampleSize() int {
	if s == nil {
		return 0
	}
	if s.Group == GroupPitcher {
		if s.Pitching == nil {
			return 0
		}
		return s.Pitching.OutsRecorded / 3
	}
	if s.Batting == nil {
		return 0
	}
	return s.Batting.PlateAppearances
}

// PerformanceValue is the scalar fed to the composite:
// OPS for hitters, K-BB% for pitchers (both higher is better).
func (s *AggregatedStatLine) PerformanceValue() float64 {
	if s == nil {
		return 0
	}
	if s.Group == GroupPitcher {
		if s.Pitching == nil {
			return 0
		}
		return s.Pitching.KMinusBBPct
	}
	if s.Batting == nil {
		return 0
	}
	return s.Batting.OPS
}
