package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the analysis drivers. They are wrapped with
// context (DMU index, factor name, solver status) so callers can match with
// errors.Is while still seeing where the failure happened.
var (
	// ErrInfeasible signals that a solver call returned INFEASIBLE for a
	// model that should be feasible: the stated weight constraints
	// contradict each other and the admissible region is empty.
	ErrInfeasible = errors.New("empty admissible region")

	// ErrUnbounded signals an unbounded model, which can only come from a
	// bug in model construction or pathological input data.
	ErrUnbounded = errors.New("model underconstrained")

	// ErrNumerical signals that the solver gave up on a model for numeric
	// reasons. Per-DMU results affected by it are reported as NaN.
	ErrNumerical = errors.New("numerical failure")

	// ErrTooManyFailedSamples signals that more than the tolerated share of
	// samples failed during a sampling-based analysis.
	ErrTooManyFailedSamples = errors.New("too many failed samples")
)

// ConfigError reports invalid problem construction: empty data, name
// collisions, unknown factor references, malformed value functions, broken
// hierarchies or non-permutation ordinal ranks. It is raised eagerly by the
// problem constructors, never during analysis.
type ConfigError struct {
	Op     string // What was being configured, e.g. "value function"
	Factor string // Affected factor name, if any
	DMU    int    // Affected unit, 1-based for display; 0 when not applicable
	Msg    string // Human-readable description
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	s := "config: " + e.Op
	if e.Factor != "" {
		s += fmt.Sprintf(" [factor %s]", e.Factor)
	}
	if e.DMU > 0 {
		s += fmt.Sprintf(" [unit %d]", e.DMU)
	}
	return s + ": " + e.Msg
}

// PartialError carries the part of a driver result that completed before a
// deadline expired or the context was cancelled. Completed holds the DMU
// indices whose results are valid.
type PartialError struct {
	Completed []int // DMU indices finished before expiry, ascending
	Cause     error // context.DeadlineExceeded or context.Canceled
}

// Error implements the error interface.
func (e *PartialError) Error() string {
	return fmt.Sprintf("analysis interrupted after %d units: %v", len(e.Completed), e.Cause)
}

// Unwrap exposes the underlying context error to errors.Is.
func (e *PartialError) Unwrap() error { return e.Cause }
