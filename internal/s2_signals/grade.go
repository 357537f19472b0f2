package s2_signals

import (
	"sort"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

// GradeNormalizer rescales scouting grades to 0-1
// ⭐ SSOT: 스카우팅 등급 정규화는 여기서만
type GradeNormalizer struct {
	logger *logger.Logger
}

// NewGradeNormalizer creates a new grade normalizer
func NewGradeNormalizer(log *logger.Logger) *GradeNormalizer {
	return &GradeNormalizer{
		logger: log,
	}
}

// Normalize reduces a player's grades to one 0-1 value.
// Only the most recent report year counts; several sources in that year are
// averaged. Grades with an unusable scale are skipped. nil result = no grade.
// A non-nil warning means the grade is stale but still used.
func (n *GradeNormalizer) Normalize(playerID int64, grades []*contracts.ScoutingGrade, season, staleYears int) (*contracts.NormalizedGrade, *contracts.StaleGradeWarning) {
	latest := 0
	var usable []*contracts.ScoutingGrade
	for _, g := range grades {
		if g.PlayerID != playerID || !g.HasValidScale() {
			continue
		}
		usable = append(usable, g)
		if g.ReportYear > latest {
			latest = g.ReportYear
		}
	}
	if len(usable) == 0 {
		return nil, nil
	}

	var current []*contracts.ScoutingGrade
	for _, g := range usable {
		if g.ReportYear == latest {
			current = append(current, g)
		}
	}
	// 소스 이름순 합산 (결정적)
	sort.SliceStable(current, func(i, j int) bool { return current[i].Source < current[j].Source })

	out := &contracts.NormalizedGrade{
		PlayerID:   playerID,
		ReportYear: latest,
	}
	sum := 0.0
	for _, g := range current {
		sum += RescaleGrade(g.Value, g.ScaleMin, g.ScaleMax)
		out.Sources = append(out.Sources, g.Source)
	}
	out.Value = sum / float64(len(current))

	if season-latest > staleYears {
		out.Stale = true
		w := &contracts.StaleGradeWarning{PlayerID: playerID, ReportYear: latest, Season: season}
		n.logger.WithFields(map[string]interface{}{
			"player_id":   playerID,
			"report_year": latest,
			"season":      season,
		}).Warn(w.Error())
		return out, w
	}
	return out, nil
}

// RescaleGrade maps v from [min, max] to [0, 1], clamped
func RescaleGrade(v, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return clamp01((v - min) / (max - min))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
