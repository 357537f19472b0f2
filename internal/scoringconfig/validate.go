package scoringconfig

import (
	"errors"
	"fmt"
	"math"
	"regexp"
)

// weightSumEpsilon bounds the float error tolerated in the weight sum
const weightSumEpsilon = 1e-9

var metaIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// ValidationError 검증 실패 (계산 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (어떤 선수도 점수화하지 않음)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ID == "" {
		return ValidationError{"meta.id", "required"}
	}
	if !metaIDPattern.MatchString(cfg.Meta.ID) {
		return ValidationError{"meta.id", "must match [a-z0-9][a-z0-9_]*"}
	}

	// === Weights ===
	w := cfg.Weights
	for _, f := range []struct {
		field string
		value float64
	}{
		{"weights.performance", w.Performance},
		{"weights.advanced_metrics", w.AdvancedMetrics},
		{"weights.grade", w.Grade},
		{"weights.hype", w.Hype},
	} {
		if err := validateUnitRange(f.value, f.field); err != nil {
			return err
		}
	}
	if err := validateWeightsSum([]float64{w.Performance, w.AdvancedMetrics, w.Grade, w.Hype}, 1.0, weightSumEpsilon); err != nil {
		return ValidationError{"weights", err.Error()}
	}

	// === Normalization ===
	if cfg.Normalization != NormalizeMinMax && cfg.Normalization != NormalizeZScore {
		return ValidationError{"normalization", "must be minmax or zscore"}
	}

	// === Hype ===
	if !(cfg.HalfLifeDays > 0) || math.IsInf(cfg.HalfLifeDays, 0) {
		return ValidationError{"half_life_days", "must be > 0"}
	}
	if cfg.LookbackDays <= 0 {
		return ValidationError{"lookback_days", "must be > 0"}
	}
	if cfg.TrendWindowDays <= 0 {
		return ValidationError{"trend_window_days", "must be > 0"}
	}
	// 최근 + 이전 트렌드 구간이 lookback 안에 들어가야 함
	if 2*cfg.TrendWindowDays > cfg.LookbackDays {
		return ValidationError{"trend_window_days", fmt.Sprintf("2*trend_window_days=%d exceeds lookback_days=%d", 2*cfg.TrendWindowDays, cfg.LookbackDays)}
	}
	for _, f := range []struct {
		field string
		value float64
	}{
		{"source_weights.social", cfg.SourceWeights.Social},
		{"source_weights.search", cfg.SourceWeights.Search},
		{"source_weights.media", cfg.SourceWeights.Media},
	} {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return ValidationError{f.field, "must be >= 0"}
		}
	}

	// === Window ===
	if cfg.RollingWindowDays <= 0 {
		return ValidationError{"rolling_window_days", "must be > 0"}
	}
	if cfg.FullSeasonTriggerDays <= 0 {
		return ValidationError{"full_season_trigger_days", "must be > 0"}
	}

	// === Samples ===
	if cfg.MinSampleSize <= 0 {
		return ValidationError{"min_sample_size", "must be > 0"}
	}
	if cfg.MinInningsPitched <= 0 {
		return ValidationError{"min_innings_pitched", "must be > 0"}
	}

	// === Imputation ===
	if cfg.MinComparableGroupSize < 2 {
		return ValidationError{"min_comparable_group_size", "must be >= 2"}
	}
	if cfg.AgeBandYears < 0 {
		return ValidationError{"age_band_years", "must be >= 0"}
	}

	// === Grades ===
	if cfg.StaleGradeYears < 0 {
		return ValidationError{"stale_grade_years", "must be >= 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 어텐션 비중 과다
	if cfg.Weights.Hype > 0.3 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_HYPE_WEIGHT",
			Message: "hype weight > 0.3: ranking follows attention more than performance",
		})
	}

	if cfg.Weights.Performance == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_PERFORMANCE_WEIGHT",
			Message: "performance weight is 0: game logs do not affect the ranking",
		})
	}

	// 작은 비교군 → 낮은 신뢰도 대체값
	if cfg.MinComparableGroupSize < 5 {
		warnings = append(warnings, Warning{
			Code:    "SMALL_COMPARABLE_GROUP",
			Message: "min_comparable_group_size < 5: imputed metrics may be noisy",
		})
	}

	if cfg.FullSeasonTriggerDays >= cfg.RollingWindowDays {
		warnings = append(warnings, Warning{
			Code:    "LATE_FULL_SEASON_SWITCH",
			Message: "full_season_trigger_days >= rolling_window_days: ended seasons may aggregate empty windows",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateWeightsSum(weights []float64, target float64, epsilon float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.4f", target, sum)
	}
	return nil
}

// validateUnitRange는 가중치 값이 0~1 범위인지 검증
func validateUnitRange(v float64, field string) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
