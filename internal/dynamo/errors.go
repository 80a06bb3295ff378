package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrConfig indicates a missing or invalid runtime parameter.
	ErrConfig = errors.New("dynamo: invalid configuration")

	// ErrStageOrder indicates a multi-stage integrator was driven out of order.
	ErrStageOrder = errors.New("dynamo: integrator stage out of order")

	// ErrMissingField indicates a mandatory field is not registered.
	ErrMissingField = errors.New("dynamo: mandatory field not registered")

	// ErrDimensionMismatch indicates mismatched array shapes.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Stage   int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g) stage %d: %v", e.Step, e.Time, e.Stage, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
