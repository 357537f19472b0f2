package contracts

// Component names one blended signal
type Component string

const (
	ComponentPerformance Component = "performance"
	ComponentAdvanced    Component = "advanced_metrics"
	ComponentGrade       Component = "grade"
	ComponentHype        Component = "hype"
)

// Components returns the components in fixed blend order
func Components() []Component {
	return []Component{ComponentPerformance, ComponentAdvanced, ComponentGrade, ComponentHype}
}

// ComponentScore is one component's contribution to a composite
type ComponentScore struct {
	Component        Component  `json:"component"`
	Provenance       Provenance `json:"provenance"`
	Raw              float64    `json:"raw"`
	Normalized       float64    `json:"normalized"`
	ConfiguredWeight float64    `json:"configured_weight"`
	EffectiveWeight  float64    `json:"effective_weight"` // 0 when excluded
	Reason           string     `json:"reason,omitempty"` // why excluded
}

// Breakdown explains one player's composite
type Breakdown struct {
	PlayerID   int64               `json:"player_id"`
	Components []ComponentScore    `json:"components"` // Components() order
	StatLine   *AggregatedStatLine `json:"stat_line,omitempty"`
	Advanced   *AdvancedProfile    `json:"advanced,omitempty"`
	Grade      *NormalizedGrade    `json:"grade,omitempty"`
	Hype       *HypeScore          `json:"hype,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// Component returns the score entry of c
func (b *Breakdown) Component(c Component) (ComponentScore, bool) {
	for _, cs := range b.Components {
		if cs.Component == c {
			return cs, true
		}
	}
	return ComponentScore{}, false
}

// EffectiveWeights returns the weights actually used, keyed by component
func (b *Breakdown) EffectiveWeights() map[Component]float64 {
	out := make(map[Component]float64)
	for _, cs := range b.Components {
		if cs.EffectiveWeight > 0 {
			out[cs.Component] = cs.EffectiveWeight
		}
	}
	return out
}

// CompositeRanking is one ranked player
// ⭐ SSOT: S3 랭킹 결과 전달
type CompositeRanking struct {
	PlayerID     int64     `json:"player_id"`
	Name         string    `json:"name"`
	Position     Position  `json:"position"`
	Organization string    `json:"organization"`
	Level        Level     `json:"level"`
	Rank         int       `json:"rank"`      // 1-based
	Composite    float64   `json:"composite"` // blended score
	SampleSize   int       `json:"sample_size"`
	Unscored     bool      `json:"unscored,omitempty"` // no component available
	Breakdown    Breakdown `json:"breakdown"`
}

// IsTopRanked checks if the player is in top N ranks
func (r *CompositeRanking) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}

// RankingSet is the cached unit: one ranking for one fingerprint.
// Holds no wall-clock values so equal inputs encode to equal bytes.
type RankingSet struct {
	ConfigID    string             `json:"config_id"`
	SnapshotID  string             `json:"snapshot_id"`
	Fingerprint string             `json:"fingerprint"`
	Filter      PopulationFilter   `json:"filter"`
	Rankings    []CompositeRanking `json:"rankings"`

	// Stale marks a last-good result served in place of a fresh one.
	// Set on the returned copy only, never stored.
	Stale bool `json:"-"`
}

// Find returns the ranking of one player
func (s *RankingSet) Find(playerID int64) (*CompositeRanking, bool) {
	for i := range s.Rankings {
		if s.Rankings[i].PlayerID == playerID {
			return &s.Rankings[i], true
		}
	}
	return nil, false
}

// Top returns the first n rankings
func (s *RankingSet) Top(n int) []CompositeRanking {
	if n <= 0 || n >= len(s.Rankings) {
		return s.Rankings
	}
	return s.Rankings[:n]
}
