package contracts

// SignalSet holds every player's raw component signals passed from S2 to S3
// ⭐ SSOT: S2 → S3 시그널 데이터 전달
type SignalSet struct {
	SnapshotID string                   `json:"snapshot_id"`
	Signals    map[int64]*PlayerSignals `json:"signals"` // key: player id
}

// PlayerSignals holds the raw (pre-normalization) components of one player
type PlayerSignals struct {
	PlayerID int64         `json:"player_id"`
	Group    PositionGroup `json:"group"`

	// Performance: every per-level line plus the one chosen for the blend
	Lines       []AggregatedStatLine `json:"lines"`
	Performance *AggregatedStatLine  `json:"performance,omitempty"`

	Advanced *AdvancedProfile `json:"advanced,omitempty"`
	Grade    *NormalizedGrade `json:"grade,omitempty"`
	Hype     *HypeScore       `json:"hype,omitempty"`

	// 컴포넌트별 제외 사유 (InsufficientData, NoComparables ...)
	Unavailable map[Component]string `json:"unavailable,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// MarkUnavailable records why a component cannot enter the blend
func (s *PlayerSignals) MarkUnavailable(c Component, reason string) {
	if s.Unavailable == nil {
		s.Unavailable = make(map[Component]string)
	}
	s.Unavailable[c] = reason
}

// SampleSize is the sample of the chosen performance line (tie-break input)
func (s *PlayerSignals) SampleSize() int {
	return s.Performance.SampleSize()
}
