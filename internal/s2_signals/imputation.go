package s2_signals

import (
	"math"
	"sort"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

// ImputationParams are the comparable-group knobs of a scoring configuration
type ImputationParams struct {
	MinComparableGroupSize int
	AgeBandYears           int
}

// ComparableIndex groups one season's advanced metric rows by (level, group).
// Built once per computation and shared read-only across workers.
type ComparableIndex struct {
	season  int
	byKey   map[comparableKey][]*contracts.AdvancedMetricRecord
	byOwner map[int64][]*contracts.AdvancedMetricRecord
}

type comparableKey struct {
	level contracts.Level
	group contracts.PositionGroup
}

// NewComparableIndex indexes the rows of one season; other seasons are dropped
func NewComparableIndex(season int, records []*contracts.AdvancedMetricRecord) *ComparableIndex {
	idx := &ComparableIndex{
		season:  season,
		byKey:   make(map[comparableKey][]*contracts.AdvancedMetricRecord),
		byOwner: make(map[int64][]*contracts.AdvancedMetricRecord),
	}
	for _, r := range records {
		if r.Season != season {
			continue
		}
		k := comparableKey{level: r.Level, group: r.Position.Group()}
		idx.byKey[k] = append(idx.byKey[k], r)
		idx.byOwner[r.PlayerID] = append(idx.byOwner[r.PlayerID], r)
	}
	// 합산 순서 고정 (부동소수점 재현성)
	for _, rs := range idx.byKey {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].PlayerID < rs[j].PlayerID })
	}
	for _, rs := range idx.byOwner {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Level.Rank() < rs[j].Level.Rank() })
	}
	return idx
}

// own returns the player's row at level, falling back to the highest level row
func (idx *ComparableIndex) own(playerID int64, level contracts.Level) *contracts.AdvancedMetricRecord {
	rs := idx.byOwner[playerID]
	for _, r := range rs {
		if r.Level == level {
			return r
		}
	}
	if len(rs) > 0 {
		return rs[0]
	}
	return nil
}

// comparables returns the players eligible to stand in for p on field f
func (idx *ComparableIndex) comparables(p *contracts.Prospect, f contracts.MetricField, ageBand int) ([]int64, []float64) {
	var ids []int64
	var values []float64
	for _, r := range idx.byKey[comparableKey{level: p.Level, group: p.Group()}] {
		if r.PlayerID == p.ID {
			continue
		}
		if absInt(r.Age-p.Age) > ageBand {
			continue
		}
		v, ok := r.Measured(f)
		if !ok {
			continue
		}
		ids = append(ids, r.PlayerID)
		values = append(values, v)
	}
	return ids, values
}

// ImputationEngine fills missing advanced metrics from comparable players
// ⭐ SSOT: 고급 지표 대체값 계산은 여기서만
type ImputationEngine struct {
	logger *logger.Logger
}

// NewImputationEngine creates a new imputation engine
func NewImputationEngine(log *logger.Logger) *ImputationEngine {
	return &ImputationEngine{
		logger: log,
	}
}

// Resolve returns the player's advanced profile: measured fields as-is,
// missing fields imputed or left unavailable. The returned errors are the
// per-field NoComparablesErrors; none of them is fatal.
func (e *ImputationEngine) Resolve(p *contracts.Prospect, idx *ComparableIndex, params ImputationParams) (*contracts.AdvancedProfile, []error) {
	profile := &contracts.AdvancedProfile{
		PlayerID: p.ID,
		Group:    p.Group(),
	}
	own := idx.own(p.ID, p.Level)

	var errs []error
	for _, f := range contracts.FieldsFor(p.Group()) {
		if v, ok := own.Measured(f); ok {
			profile.Metrics = append(profile.Metrics, contracts.MetricValue{
				Field:      f,
				Value:      v,
				Provenance: contracts.ProvenanceMeasured,
				Confidence: 1,
			})
			continue
		}

		mv, err := e.Impute(p, f, idx, params)
		if err != nil {
			errs = append(errs, err)
		}
		profile.Metrics = append(profile.Metrics, mv)
	}

	if len(errs) > 0 {
		e.logger.WithFields(map[string]interface{}{
			"player_id":   p.ID,
			"unavailable": len(errs),
		}).Debug("advanced metrics left unavailable")
	}
	return profile, errs
}

// Impute estimates one field as the mean of the comparable group.
// Fewer than MinComparableGroupSize comparables → NoComparablesError and an
// unavailable value.
func (e *ImputationEngine) Impute(p *contracts.Prospect, f contracts.MetricField, idx *ComparableIndex, params ImputationParams) (contracts.MetricValue, error) {
	ids, values := idx.comparables(p, f, params.AgeBandYears)
	if len(values) < params.MinComparableGroupSize {
		return contracts.MetricValue{Field: f, Provenance: contracts.ProvenanceUnavailable},
			&contracts.NoComparablesError{
				PlayerID: p.ID,
				Field:    f,
				Found:    len(values),
				Required: params.MinComparableGroupSize,
			}
	}

	mean, variance := meanVariance(values)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return contracts.MetricValue{
		Field:       f,
		Value:       mean,
		Provenance:  contracts.ProvenanceImputed,
		Confidence:  Confidence(len(values), mean, variance),
		Comparables: ids,
	}, nil
}

// Confidence maps group size and dispersion to (0, 1]:
// 1 / (1 + s²/(n·m²)). Variance is scaled by the squared mean so the value is
// unitless; a zero mean counts as m² = 1. Non-decreasing in n for fixed s².
func Confidence(n int, mean, variance float64) float64 {
	if n <= 0 {
		return 0
	}
	m2 := mean * mean
	if m2 == 0 {
		m2 = 1
	}
	return 1 / (1 + variance/(float64(n)*m2))
}

// ScoreAdvanced fills Composite of every profile: per field, values are
// z-scored within the position group over all available values, then
// averaged per player weighted by confidence (measured = 1).
// Profiles with no available field keep Composite 0 and are left for the
// caller to mark unavailable.
func ScoreAdvanced(profiles []*contracts.AdvancedProfile) {
	type fieldKey struct {
		group contracts.PositionGroup
		field contracts.MetricField
	}

	// 그룹 × 필드별 분포
	samples := make(map[fieldKey][]float64)
	for _, p := range profiles {
		for _, m := range p.Metrics {
			if m.Provenance.Available() {
				k := fieldKey{p.Group, m.Field}
				samples[k] = append(samples[k], m.Value)
			}
		}
	}
	type dist struct{ mean, sd float64 }
	dists := make(map[fieldKey]dist, len(samples))
	for k, vs := range samples {
		mean, sd := meanPopulationSD(vs)
		dists[k] = dist{mean, sd}
	}

	for _, p := range profiles {
		var weighted, weights float64
		for _, m := range p.Metrics {
			if !m.Provenance.Available() {
				continue
			}
			d := dists[fieldKey{p.Group, m.Field}]
			z := 0.0
			if d.sd > 0 {
				z = (m.Value - d.mean) / d.sd
			}
			weighted += m.Confidence * z
			weights += m.Confidence
		}
		if weights > 0 {
			p.Composite = weighted / weights
		}
	}
}

// meanVariance returns the mean and the sample variance (n-1)
func meanVariance(values []float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	if n < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, ss / float64(n-1)
}

// meanPopulationSD returns the mean and the population standard deviation
func meanPopulationSD(values []float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
