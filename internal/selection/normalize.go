package selection

import (
	"math"

	"github.com/wonny/scout/internal/scoringconfig"
)

// Normalize maps raw component values onto a common scale with the
// configured method. The result is parallel to values.
func Normalize(method string, values []float64) []float64 {
	switch method {
	case scoringconfig.NormalizeZScore:
		return ZScore(values)
	default:
		return MinMax(values)
	}
}

// MinMax rescales to [0, 1]; a degenerate range maps every value to 0.5
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	for i, v := range values {
		if span == 0 {
			out[i] = 0.5
			continue
		}
		out[i] = (v - lo) / span
	}
	return out
}

// ZScore standardizes with the population standard deviation; sd = 0 → 0
func ZScore(values []float64) []float64 {
	out := make([]float64, len(values))
	n := len(values)
	if n == 0 {
		return out
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
	sd := math.Sqrt(ss / float64(n))
	if sd == 0 {
		return out
	}

	for i, v := range values {
		out[i] = (v - mean) / sd
	}
	return out
}
