package selection

import (
	"context"
	"sort"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/scoringconfig"
	"github.com/wonny/scout/pkg/logger"
)

// Ranker implements S3: composite scoring and ranking
// ⭐ SSOT: S3 컴포지트 점수/랭킹 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{
		logger: logger,
	}
}

// entry is one player's working state while ranking
type entry struct {
	prospect *contracts.Prospect
	signals  *contracts.PlayerSignals
	scores   map[contracts.Component]*contracts.ComponentScore
}

// Rank normalizes every component across the population, blends the
// available ones per player and returns the ordered rankings.
// Players without any available component are ranked last as unscored.
func (r *Ranker) Rank(ctx context.Context, cfg *scoringconfig.Config, pop *contracts.Population, signals *contracts.SignalSet) ([]contracts.CompositeRanking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]*entry, 0, len(pop.Prospects))
	for _, p := range pop.Prospects {
		e := &entry{
			prospect: p,
			signals:  signals.Signals[p.ID],
			scores:   make(map[contracts.Component]*contracts.ComponentScore, 4),
		}
		for _, c := range contracts.Components() {
			e.scores[c] = rawComponent(e.signals, c, cfg.Weights.For(c))
		}
		entries = append(entries, e)
	}

	// 컴포넌트별 정규화 (블렌딩 전)
	for _, c := range contracts.Components() {
		normalizeComponent(cfg.Normalization, c, entries)
	}

	ranked := make([]contracts.CompositeRanking, 0, len(entries))
	unscored := 0
	for _, e := range entries {
		cr := r.blend(cfg, e)
		if cr.Unscored {
			unscored++
		}
		ranked = append(ranked, cr)
	}

	sortRankings(ranked)
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if len(ranked) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"config_id":     cfg.ID(),
			"total_players": len(ranked),
			"unscored":      unscored,
			"top_player":    ranked[0].PlayerID,
			"top_score":     ranked[0].Composite,
		}).Info("Ranking completed")
	}

	return ranked, nil
}

// blend computes one player's composite from the normalized components
func (r *Ranker) blend(cfg *scoringconfig.Config, e *entry) contracts.CompositeRanking {
	p := e.prospect
	cr := contracts.CompositeRanking{
		PlayerID:     p.ID,
		Name:         p.Name,
		Position:     p.Position,
		Organization: p.Organization,
		Level:        p.Level,
		Breakdown:    contracts.Breakdown{PlayerID: p.ID},
	}

	var available []contracts.Component
	for _, c := range contracts.Components() {
		if e.scores[c].Provenance.Available() {
			available = append(available, c)
		}
	}

	weights := EffectiveWeights(cfg.Weights, available)
	for _, c := range contracts.Components() {
		cs := e.scores[c]
		if w, ok := weights[c]; ok {
			cs.EffectiveWeight = w
			cr.Composite += w * cs.Normalized
		} else if cs.Provenance.Available() && cs.Reason == "" {
			cs.Reason = "zero configured weight"
		}
		cr.Breakdown.Components = append(cr.Breakdown.Components, *cs)
	}
	cr.Unscored = len(weights) == 0

	if s := e.signals; s != nil {
		cr.SampleSize = s.SampleSize()
		cr.Breakdown.StatLine = s.Performance
		cr.Breakdown.Advanced = s.Advanced
		cr.Breakdown.Grade = s.Grade
		cr.Breakdown.Hype = s.Hype
		cr.Breakdown.Warnings = append([]string(nil), s.Warnings...)
	}
	return cr
}

// EffectiveWeights renormalizes the configured weights over the available
// components. The last weighted component takes 1 minus the others so the
// weights sum to exactly 1.0. Empty when nothing available carries weight.
func EffectiveWeights(w scoringconfig.Weights, available []contracts.Component) map[contracts.Component]float64 {
	var weighted []contracts.Component
	total := 0.0
	for _, c := range available {
		if cw := w.For(c); cw > 0 {
			weighted = append(weighted, c)
			total += cw
		}
	}

	out := make(map[contracts.Component]float64, len(weighted))
	if len(weighted) == 0 {
		return out
	}

	assigned := 0.0
	last := len(weighted) - 1
	for _, c := range weighted[:last] {
		ew := w.For(c) / total
		out[c] = ew
		assigned += ew
	}
	out[weighted[last]] = 1 - assigned
	return out
}

// rawComponent extracts a component's raw value and provenance from signals
func rawComponent(s *contracts.PlayerSignals, c contracts.Component, configured float64) *contracts.ComponentScore {
	cs := &contracts.ComponentScore{
		Component:        c,
		Provenance:       contracts.ProvenanceUnavailable,
		ConfiguredWeight: configured,
	}
	if s == nil {
		cs.Reason = "no signals"
		return cs
	}
	if reason, ok := s.Unavailable[c]; ok {
		cs.Reason = reason
		if c == contracts.ComponentHype {
			cs.Provenance = contracts.ProvenanceNoSignal
		}
		return cs
	}

	switch c {
	case contracts.ComponentPerformance:
		if s.Performance != nil {
			cs.Raw = s.Performance.PerformanceValue()
			cs.Provenance = contracts.ProvenanceMeasured
		}
	case contracts.ComponentAdvanced:
		if s.Advanced.AvailableCount() > 0 {
			cs.Raw = s.Advanced.Composite
			cs.Provenance = contracts.ProvenanceMeasured
			for _, m := range s.Advanced.Metrics {
				if m.Provenance == contracts.ProvenanceImputed {
					cs.Provenance = contracts.ProvenanceImputed
					break
				}
			}
		}
	case contracts.ComponentGrade:
		if s.Grade != nil {
			cs.Raw = s.Grade.Value
			cs.Provenance = contracts.ProvenanceMeasured
		}
	case contracts.ComponentHype:
		if s.Hype != nil && s.Hype.Provenance.Available() {
			cs.Raw = s.Hype.Score
			cs.Provenance = contracts.ProvenanceMeasured
		} else {
			cs.Provenance = contracts.ProvenanceNoSignal
		}
	}
	if !cs.Provenance.Available() && cs.Reason == "" {
		cs.Reason = "no signal"
	}
	return cs
}

// normalizeComponent fills Normalized for every available value of c.
// Performance and advanced values are compared within position group.
func normalizeComponent(method string, c contracts.Component, entries []*entry) {
	byGroup := c == contracts.ComponentPerformance || c == contracts.ComponentAdvanced

	pools := make(map[contracts.PositionGroup][]*contracts.ComponentScore)
	var keys []contracts.PositionGroup
	for _, e := range entries {
		cs := e.scores[c]
		if !cs.Provenance.Available() {
			continue
		}
		key := contracts.PositionGroup("")
		if byGroup {
			key = e.prospect.Group()
		}
		if _, ok := pools[key]; !ok {
			keys = append(keys, key)
		}
		pools[key] = append(pools[key], cs)
	}

	for _, key := range keys {
		pool := pools[key]
		values := make([]float64, len(pool))
		for i, cs := range pool {
			values[i] = cs.Raw
		}
		for i, v := range Normalize(method, values) {
			pool[i].Normalized = v
		}
	}
}

// sortRankings orders by composite desc, sample size desc, player id asc;
// unscored players go last
func sortRankings(ranked []contracts.CompositeRanking) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.Unscored != b.Unscored {
			return !a.Unscored
		}
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		if a.SampleSize != b.SampleSize {
			return a.SampleSize > b.SampleSize
		}
		return a.PlayerID < b.PlayerID
	})
}
