package adcs

import (
	"errors"
	"fmt"
)

// Domain errors for the control pipeline.
var (
	// ErrSingularMatrix indicates an inversion target was singular to
	// working precision.
	ErrSingularMatrix = errors.New("adcs: matrix singular to working precision")

	// ErrNotConverged indicates the Riccati iteration exhausted its
	// iteration budget without meeting tolerance.
	ErrNotConverged = errors.New("adcs: riccati iteration did not converge")

	// ErrDegenerateField indicates the measured field magnitude is below
	// the actuation floor; no dipole can produce meaningful torque.
	ErrDegenerateField = errors.New("adcs: magnetic field below actuation floor")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("adcs: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched vector/matrix dimensions.
	ErrDimensionMismatch = errors.New("adcs: dimension mismatch")
)

// CycleError wraps a fault with control-cycle context.
type CycleError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle %d (t=%.1fs): %v", e.Step, e.Time, e.Wrapped)
}

func (e *CycleError) Unwrap() error {
	return e.Wrapped
}
