package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for model operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN, Inf or wrong length)")

	// ErrUnstable indicates a propagated state became non-finite.
	ErrUnstable = errors.New("dynamo: state diverged (non-finite value)")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with the step and sample it occurred at.
type SimulationError struct {
	Step    int
	Sample  int
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d sample %d: %v", e.Step, e.Sample, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
