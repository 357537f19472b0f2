package s2_signals

import (
	"sort"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

// PerformanceParams are the sample thresholds of a scoring configuration
type PerformanceParams struct {
	Window            WindowParams
	MinSampleSize     int // plate appearances
	MinInningsPitched int // innings
}

// PerformanceCalculator reduces game logs to per-level stat lines
// ⭐ SSOT: 성적 집계는 여기서만
type PerformanceCalculator struct {
	logger *logger.Logger
}

// NewPerformanceCalculator creates a new performance calculator
func NewPerformanceCalculator(log *logger.Logger) *PerformanceCalculator {
	return &PerformanceCalculator{
		logger: log,
	}
}

// Calculate aggregates a player's season rows per level and picks the line
// that feeds the blend. lines is always returned (ordered by level);
// chosen is nil with an InsufficientDataError when no line meets its threshold.
func (c *PerformanceCalculator) Calculate(
	p *contracts.Prospect,
	rows []*contracts.GameLogRecord,
	seasons map[contracts.Level]*contracts.SeasonInfo,
	ref time.Time,
	params PerformanceParams,
) (lines []contracts.AggregatedStatLine, chosen *contracts.AggregatedStatLine, err error) {
	byLevel := groupByLevel(rows)

	levels := make([]contracts.Level, 0, len(byLevel))
	for l := range byLevel {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Rank() < levels[j].Rank() })

	// 레벨별 집계 (레벨 간 혼합 금지)
	for _, level := range levels {
		levelRows := byLevel[level]
		info := seasonFor(level, levelRows, seasons)
		window := SelectWindow(info, firstGameDate(levelRows), ref, params.Window)
		lines = append(lines, Aggregate(p.ID, p.Group(), levelRows, window))
	}

	chosen, err = c.choose(p, lines, params)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"player_id": p.ID,
			"levels":    len(lines),
			"reason":    err.Error(),
		}).Debug("no usable performance line")
	}
	return lines, chosen, err
}

// choose returns the current-level line when usable, otherwise the usable
// line with the largest sample (ties: level order)
func (c *PerformanceCalculator) choose(p *contracts.Prospect, lines []contracts.AggregatedStatLine, params PerformanceParams) (*contracts.AggregatedStatLine, error) {
	var best *contracts.AggregatedStatLine
	var current *contracts.AggregatedStatLine

	for i := range lines {
		line := &lines[i]
		if line.Window.Level == p.Level {
			current = line
			if meetsThreshold(line, params) {
				return line, nil
			}
			continue
		}
		if !meetsThreshold(line, params) {
			continue
		}
		if best == nil || line.SampleSize() > best.SampleSize() {
			best = line
		}
	}
	if best != nil {
		return best, nil
	}

	// 보고용: 현재 레벨 우선, 없으면 가장 큰 표본
	report := current
	if report == nil {
		for i := range lines {
			if report == nil || lines[i].SampleSize() > report.SampleSize() {
				report = &lines[i]
			}
		}
	}

	insufficient := &contracts.InsufficientDataError{
		PlayerID: p.ID,
		Level:    p.Level,
		Required: requiredSample(p.Group(), params),
	}
	if report != nil {
		insufficient.Level = report.Window.Level
		insufficient.Sample = report.SampleSize()
	}
	return nil, insufficient
}

// Aggregate sums the counters of rows inside the window at the window's level
// and derives rate stats from the sums
func Aggregate(playerID int64, group contracts.PositionGroup, rows []*contracts.GameLogRecord, window contracts.Window) contracts.AggregatedStatLine {
	line := contracts.AggregatedStatLine{
		PlayerID: playerID,
		Group:    group,
		Window:   window,
	}

	var bat contracts.BattingLine
	var pit contracts.PitchingLine
	for _, r := range rows {
		if r.Level != window.Level || !window.Contains(r.GameDate) {
			continue
		}
		bat.Games++
		bat.PlateAppearances += r.PlateAppearances
		bat.AtBats += r.AtBats
		bat.Hits += r.Hits
		bat.Doubles += r.Doubles
		bat.Triples += r.Triples
		bat.HomeRuns += r.HomeRuns
		bat.Walks += r.Walks
		bat.HitByPitch += r.HitByPitch
		bat.SacFlies += r.SacFlies
		bat.Strikeouts += r.Strikeouts

		pit.Games++
		pit.OutsRecorded += r.OutsRecorded
		pit.BattersFaced += r.BattersFaced
		pit.HitsAllowed += r.HitsAllowed
		pit.EarnedRuns += r.EarnedRuns
		pit.Walks += r.WalksAllowed
		pit.Strikeouts += r.StrikeoutsPitch
		pit.HomeRunsAllowed += r.HomeRunsAllowed
	}

	if group == contracts.GroupPitcher {
		derivePitching(&pit)
		line.Pitching = &pit
	} else {
		deriveBatting(&bat)
		line.Batting = &bat
	}
	return line
}

// deriveBatting computes rates from summed counters (never per-game averages)
func deriveBatting(b *contracts.BattingLine) {
	singles := b.Hits - b.Doubles - b.Triples - b.HomeRuns
	totalBases := singles + 2*b.Doubles + 3*b.Triples + 4*b.HomeRuns

	b.AVG = ratio(float64(b.Hits), float64(b.AtBats))
	b.OBP = ratio(float64(b.Hits+b.Walks+b.HitByPitch), float64(b.AtBats+b.Walks+b.HitByPitch+b.SacFlies))
	b.SLG = ratio(float64(totalBases), float64(b.AtBats))
	b.OPS = b.OBP + b.SLG
}

func derivePitching(p *contracts.PitchingLine) {
	p.InningsPitched = float64(p.OutsRecorded) / 3
	p.ERA = ratio(9*float64(p.EarnedRuns), p.InningsPitched)
	p.WHIP = ratio(float64(p.Walks+p.HitsAllowed), p.InningsPitched)
	p.KMinusBBPct = ratio(float64(p.Strikeouts-p.Walks), float64(p.BattersFaced))
}

// ratio returns 0 on a zero denominator
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func meetsThreshold(line *contracts.AggregatedStatLine, params PerformanceParams) bool {
	if line.Group == contracts.GroupPitcher {
		return line.Pitching != nil && line.Pitching.InningsPitched >= float64(params.MinInningsPitched)
	}
	return line.Batting != nil && line.Batting.PlateAppearances >= params.MinSampleSize
}

func requiredSample(g contracts.PositionGroup, params PerformanceParams) int {
	if g == contracts.GroupPitcher {
		return params.MinInningsPitched
	}
	return params.MinSampleSize
}

func groupByLevel(rows []*contracts.GameLogRecord) map[contracts.Level][]*contracts.GameLogRecord {
	out := make(map[contracts.Level][]*contracts.GameLogRecord)
	for _, r := range rows {
		out[r.Level] = append(out[r.Level], r)
	}
	return out
}

func firstGameDate(rows []*contracts.GameLogRecord) time.Time {
	var first time.Time
	for _, r := range rows {
		if first.IsZero() || r.GameDate.Before(first) {
			first = r.GameDate
		}
	}
	return first
}

// seasonFor returns the level calendar, or one derived from the rows when
// ingestion has not published it (open season, no canonical end)
func seasonFor(level contracts.Level, rows []*contracts.GameLogRecord, seasons map[contracts.Level]*contracts.SeasonInfo) *contracts.SeasonInfo {
	if info, ok := seasons[level]; ok && info != nil {
		return info
	}
	info := &contracts.SeasonInfo{Level: level, StartDate: firstGameDate(rows)}
	for _, r := range rows {
		if r.GameDate.After(info.LastGameDate) {
			info.LastGameDate = r.GameDate
		}
	}
	if len(rows) > 0 {
		info.Season = rows[0].Season
	}
	return info
}
