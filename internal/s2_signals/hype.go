package s2_signals

import (
	"math"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

// HypeParams are the attention knobs of a scoring configuration
type HypeParams struct {
	HalfLifeDays    float64
	LookbackDays    int
	TrendWindowDays int
	SourceWeight    func(contracts.SourceType) float64
}

// HypeCalculator turns attention events into a decayed score
// ⭐ SSOT: 어텐션(하이프) 점수 계산은 여기서만
type HypeCalculator struct {
	logger *logger.Logger
}

// NewHypeCalculator creates a new hype calculator
func NewHypeCalculator(log *logger.Logger) *HypeCalculator {
	return &HypeCalculator{
		logger: log,
	}
}

// Calculate computes hype = Σ source_weight · intensity · 0.5^(age/half_life)
// over events in [asOf - lookback, asOf). Growth compares the undecayed
// weighted sums of the last two trend windows.
func (c *HypeCalculator) Calculate(playerID int64, events []*contracts.AttentionEvent, asOf time.Time, params HypeParams) *contracts.HypeScore {
	out := &contracts.HypeScore{
		PlayerID: playerID,
		BySource: make(map[contracts.SourceType]float64),
	}

	from := asOf.AddDate(0, 0, -params.LookbackDays)
	recentFrom := asOf.AddDate(0, 0, -params.TrendWindowDays)
	priorFrom := asOf.AddDate(0, 0, -2*params.TrendWindowDays)

	// 입력 순서와 무관하게 같은 순서로 합산
	ordered := append([]*contracts.AttentionEvent(nil), events...)
	contracts.SortAttention(ordered)

	var recent, prior float64
	for _, e := range ordered {
		if e.PlayerID != playerID || e.OccurredAt.Before(from) || !e.OccurredAt.Before(asOf) {
			continue
		}
		out.EventCount++

		intensity := e.Intensity
		if intensity < 0 {
			intensity = 0
		}
		weight := intensity
		if params.SourceWeight != nil {
			weight *= params.SourceWeight(e.Source)
		}

		ageDays := asOf.Sub(e.OccurredAt).Hours() / 24
		contribution := weight * Decay(ageDays, params.HalfLifeDays)
		out.BySource[e.Source] += contribution
		out.Score += contribution

		switch {
		case !e.OccurredAt.Before(recentFrom):
			recent += weight
		case !e.OccurredAt.Before(priorFrom):
			prior += weight
		}
	}

	if out.EventCount == 0 {
		out.Provenance = contracts.ProvenanceNoSignal
		return out
	}

	out.Provenance = contracts.ProvenanceMeasured
	out.Growth = (recent - prior) / math.Max(prior, 1)

	c.logger.WithFields(map[string]interface{}{
		"player_id":   playerID,
		"event_count": out.EventCount,
		"score":       out.Score,
	}).Debug("Calculated hype score")

	return out
}

// Decay returns 0.5^(age/halfLife); age at one half-life gives exactly 0.5
func Decay(ageDays, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		return 0
	}
	return math.Pow(0.5, ageDays/halfLifeDays)
}
