package mppi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("mppi: invalid configuration")

	// ErrDegenerateWeights indicates the importance weights could not be
	// normalized.
	ErrDegenerateWeights = errors.New("mppi: importance weights do not normalize")
)

// TickError reports a failed or degraded control tick.
type TickError struct {
	Tick  int
	Phase Phase
	Err   error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (%s): %v", e.Tick, e.Phase, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
