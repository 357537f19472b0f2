package scoringconfig

import (
	"github.com/wonny/scout/internal/contracts"
)

// Normalization methods
const (
	NormalizeMinMax = "minmax"
	NormalizeZScore = "zscore"
)

// Config는 랭킹 계산의 전체 설정 (가중치 + 정규화 + 윈도우 파라미터)
// Passed explicitly into every computation; there is no process-wide default.
type Config struct {
	Meta          Meta    `yaml:"meta" json:"meta"`
	Weights       Weights `yaml:"weights" json:"weights"`
	Normalization string  `yaml:"normalization" json:"normalization"` // minmax | zscore

	// Hype
	HalfLifeDays    float64       `yaml:"half_life_days" json:"half_life_days"`
	LookbackDays    int           `yaml:"lookback_days" json:"lookback_days"`
	TrendWindowDays int           `yaml:"trend_window_days" json:"trend_window_days"`
	SourceWeights   SourceWeights `yaml:"source_weights" json:"source_weights"`

	// Window
	RollingWindowDays     int `yaml:"rolling_window_days" json:"rolling_window_days"`
	FullSeasonTriggerDays int `yaml:"full_season_trigger_days" json:"full_season_trigger_days"`

	// Sample thresholds
	MinSampleSize     int `yaml:"min_sample_size" json:"min_sample_size"`         // plate appearances
	MinInningsPitched int `yaml:"min_innings_pitched" json:"min_innings_pitched"` // whole innings

	// Imputation
	MinComparableGroupSize int `yaml:"min_comparable_group_size" json:"min_comparable_group_size"`
	AgeBandYears           int `yaml:"age_band_years" json:"age_band_years"`

	// Grades
	StaleGradeYears int `yaml:"stale_grade_years" json:"stale_grade_years"`

	// id is derived at load, never decoded
	id string
}

// Meta 메타 정보
type Meta struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
}

// Weights 컴포넌트 가중치 (합 = 1.0)
type Weights struct {
	Performance     float64 `yaml:"performance" json:"performance"`
	AdvancedMetrics float64 `yaml:"advanced_metrics" json:"advanced_metrics"`
	Grade           float64 `yaml:"grade" json:"grade"`
	Hype            float64 `yaml:"hype" json:"hype"`
}

// Sum returns the sum of all weights
func (w Weights) Sum() float64 {
	return w.Performance + w.AdvancedMetrics + w.Grade + w.Hype
}

// For returns the configured weight of a component
func (w Weights) For(c contracts.Component) float64 {
	switch c {
	case contracts.ComponentPerformance:
		return w.Performance
	case contracts.ComponentAdvanced:
		return w.AdvancedMetrics
	case contracts.ComponentGrade:
		return w.Grade
	case contracts.ComponentHype:
		return w.Hype
	}
	return 0
}

// SourceWeights 어텐션 소스별 가중치 (decay 이전에 적용)
type SourceWeights struct {
	Social float64 `yaml:"social" json:"social"`
	Search float64 `yaml:"search" json:"search"`
	Media  float64 `yaml:"media" json:"media"`
}

// For returns the weight of a source type (unknown types weigh 0)
func (s SourceWeights) For(t contracts.SourceType) float64 {
	switch t {
	case contracts.SourceSocial:
		return s.Social
	case contracts.SourceSearch:
		return s.Search
	case contracts.SourceMedia:
		return s.Media
	}
	return 0
}

// Defaults returns a configuration holding every documented default.
// Loading decodes on top of it, so omitted keys keep these values.
func Defaults() *Config {
	return &Config{
		Weights: Weights{
			Performance:     0.4,
			AdvancedMetrics: 0.3,
			Grade:           0.2,
			Hype:            0.1,
		},
		Normalization:   NormalizeMinMax,
		HalfLifeDays:    7,
		LookbackDays:    30,
		TrendWindowDays: 7,
		SourceWeights: SourceWeights{
			Social: 1.0,
			Search: 1.0,
			Media:  1.5,
		},
		RollingWindowDays:      60,
		FullSeasonTriggerDays:  14,
		MinSampleSize:          50,
		MinInningsPitched:      20,
		MinComparableGroupSize: 5,
		AgeBandYears:           1,
		StaleGradeYears:        2,
	}
}

// ID returns the configuration id ("<meta.id>-<hash prefix>").
// Empty until the configuration has been loaded or registered.
func (c *Config) ID() string {
	return c.id
}
