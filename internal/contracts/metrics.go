package contracts

// MetricField names an advanced ball-tracking metric
type MetricField string

const (
	// hitter
	FieldExitVelocity  MetricField = "avg_exit_velocity"
	FieldHardHitRate   MetricField = "hard_hit_rate"
	FieldBarrelRate    MetricField = "barrel_rate"
	FieldSweetSpotRate MetricField = "sweet_spot_rate"

	// pitcher
	FieldFastballVelo MetricField = "fastball_velocity"
	FieldSpinRate     MetricField = "spin_rate"
	FieldWhiffRate    MetricField = "whiff_rate"
	FieldChaseRate    MetricField = "chase_rate"
)

var (
	hitterFields  = []MetricField{FieldExitVelocity, FieldHardHitRate, FieldBarrelRate, FieldSweetSpotRate}
	pitcherFields = []MetricField{FieldFastballVelo, FieldSpinRate, FieldWhiffRate, FieldChaseRate}
)

// FieldsFor returns the advanced metric fields tracked for a position group, in fixed order
func FieldsFor(g PositionGroup) []MetricField {
	if g == GroupPitcher {
		return append([]MetricField(nil), pitcherFields...)
	}
	return append([]MetricField(nil), hitterFields...)
}

// Provenance tags how a derived value was obtained
type Provenance string

const (
	ProvenanceMeasured    Provenance = "measured"
	ProvenanceImputed     Provenance = "imputed"
	ProvenanceUnavailable Provenance = "unavailable"
	ProvenanceNoSignal    Provenance = "no_signal" // hype only: no events at all
)

// Available reports whether a value with this provenance may enter a blend
func (p Provenance) Available() bool {
	return p == ProvenanceMeasured || p == ProvenanceImputed
}

// AdvancedMetricRecord is a raw per-player, per-season advanced metric row.
// Position and Age are joined from the prospect at read time.
type AdvancedMetricRecord struct {
	PlayerID int64                   `json:"player_id"`
	Season   int                     `json:"season"`
	Level    Level                   `json:"level"`
	Position Position                `json:"position"`
	Age      int                     `json:"age"`
	Values   map[MetricField]float64 `json:"values"` // measured only; absent key = missing
}

// Measured returns the measured value of a field
func (r *AdvancedMetricRecord) Measured(f MetricField) (float64, bool) {
	if r == nil || r.Values == nil {
		return 0, false
	}
	v, ok := r.Values[f]
	return v, ok
}

// MetricValue is one derived advanced metric with its provenance
type MetricValue struct {
	Field       MetricField `json:"field"`
	Value       float64     `json:"value"`
	Provenance  Provenance  `json:"provenance"`
	Confidence  float64     `json:"confidence"`            // 1 for measured, (0,1] for imputed
	Comparables []int64     `json:"comparables,omitempty"` // sorted ascending, imputed only
}

// AdvancedProfile is the resolved advanced metric set of one player
type AdvancedProfile struct {
	PlayerID int64         `json:"player_id"`
	Group    PositionGroup `json:"group"`
	Metrics  []MetricValue `json:"metrics"` // FieldsFor(group) order

	// Composite is the confidence-weighted mean z-score of available fields,
	// filled once the whole population is resolved
	Composite float64 `json:"composite"`
}

// AvailableCount counts measured or imputed fields
func (a *AdvancedProfile) AvailableCount() int {
	if a == nil {
		return 0
	}
	n := 0
	for _, m := range a.Metrics {
		if m.Provenance.Available() {
			n++
		}
	}
	return n
}
