package contracts

// ScoutingGrade is one third-party grade on the source's own scale
type ScoutingGrade struct {
	PlayerID   int64   `json:"player_id"`
	Source     string  `json:"source"`
	ReportYear int     `json:"report_year"`
	Value      float64 `json:"value"`
	ScaleMin   float64 `json:"scale_min"`
	ScaleMax   float64 `json:"scale_max"`
}

// HasValidScale reports whether the declared bounds can be used for rescaling
func (g *ScoutingGrade) HasValidScale() bool {
	return g.ScaleMax > g.ScaleMin
}

// NormalizedGrade is the reduced 0-1 grade of one player
type NormalizedGrade struct {
	PlayerID   int64    `json:"player_id"`
	Value      float64  `json:"value"`
	ReportYear int      `json:"report_year"`
	Sources    []string `json:"sources"` // sorted
	Stale      bool     `json:"stale"`
}
