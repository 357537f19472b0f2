package contracts

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRankingUnavailable: no cached ranking and the computation failed
	ErrRankingUnavailable = errors.New("ranking temporarily unavailable")

	// ErrPlayerNotRanked: explain for a player outside the ranked population
	ErrPlayerNotRanked = errors.New("player not ranked")

	// ErrUnknownConfig: scoring configuration id is not registered
	ErrUnknownConfig = errors.New("unknown scoring configuration")

	// ErrNotFound: raw entity does not exist
	ErrNotFound = errors.New("not found")
)

// InsufficientDataError: sample below the minimum for a component.
// The component is excluded for that player; never fatal.
type InsufficientDataError struct {
	PlayerID int64
	Level    Level
	Sample   int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for player %d at %s: sample %d < %d",
		e.PlayerID, e.Level, e.Sample, e.Required)
}

// NoComparablesError: comparable group too small to impute a field.
// The field is left unavailable; never fatal.
type NoComparablesError struct {
	PlayerID int64
	Field    MetricField
	Found    int
	Required int
}

func (e *NoComparablesError) Error() string {
	return fmt.Sprintf("no comparables for player %d field %s: found %d < %d",
		e.PlayerID, e.Field, e.Found, e.Required)
}

// InvalidWeightConfigError: scoring configuration rejected at load.
// Fatal: no player is scored with it.
type InvalidWeightConfigError struct {
	Source string // file or config id
	Err    error
}

func (e *InvalidWeightConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid scoring configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid scoring configuration %s: %v", e.Source, e.Err)
}

func (e *InvalidWeightConfigError) Unwrap() error {
	return e.Err
}

// StaleGradeWarning: newest grade older than the staleness limit.
// Logged and attached to the breakdown; the grade is still used.
type StaleGradeWarning struct {
	PlayerID   int64
	ReportYear int
	Season     int
}

func (w *StaleGradeWarning) Error() string {
	return fmt.Sprintf("stale grade for player %d: report year %d, season %d",
		w.PlayerID, w.ReportYear, w.Season)
}

// ComputationTimeoutError: computation exceeded its wall-clock budget.
// Partial results are discarded and nothing is cached.
type ComputationTimeoutError struct {
	Fingerprint string
	Budget      time.Duration
}

func (e *ComputationTimeoutError) Error() string {
	return fmt.Sprintf("ranking computation %s exceeded budget %s", e.Fingerprint, e.Budget)
}

// IsInsufficientData checks for InsufficientDataError anywhere in the chain
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}

// IsNoComparables checks for NoComparablesError anywhere in the chain
func IsNoComparables(err error) bool {
	var target *NoComparablesError
	return errors.As(err, &target)
}

// IsTimeout checks for ComputationTimeoutError anywhere in the chain
func IsTimeout(err error) bool {
	var target *ComputationTimeoutError
	return errors.As(err, &target)
}
