package dynamo

import (
	"errors"
	"fmt"
)

// Configuration errors returned by model constructors.
var (
	// ErrGridTooSmall indicates a grid with fewer points than the stencils need.
	ErrGridTooSmall = errors.New("dynamo: grid too small for stencil")

	// ErrGridNotSquare indicates an FFT model on a grid with nx != ny.
	ErrGridNotSquare = errors.New("dynamo: grid must be square")

	// ErrSpacingMismatch indicates dx != dy where an isotropic stencil is required.
	ErrSpacingMismatch = errors.New("dynamo: grid spacing must be equal in x and y")

	// ErrUnsupportedGrid indicates a grid variant the model cannot handle.
	ErrUnsupportedGrid = errors.New("dynamo: unsupported grid")
)

// Runtime errors.
var (
	// ErrNegativeDuration indicates AddTime with a negative duration.
	ErrNegativeDuration = errors.New("dynamo: duration must not be negative")

	// ErrDimensionMismatch indicates a state of the wrong length.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and problem")

	// ErrStepLimit indicates a solver exceeded its configured step budget.
	ErrStepLimit = errors.New("dynamo: step limit exceeded")

	// ErrStepTooSmall indicates the adaptive step size collapsed to zero.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep underflow")

	// ErrInvalidState indicates NaN or Inf in a state vector.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrIntegrating indicates access to a problem while a solver owns its state.
	ErrIntegrating = errors.New("dynamo: state is owned by a running solver")
)

// SimulationError wraps an error with integration context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
