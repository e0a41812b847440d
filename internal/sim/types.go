package sim

import (
	"fmt"

	"github.com/san-kum/magsat/internal/adcs"
)

// System is a continuous-time attitude dynamics model, dX/dt = f(x, u, b, t).
type System interface {
	Derive(x adcs.State, u adcs.Dipole, b adcs.Field, t float64) adcs.State
	StateDim() int
}

// Integrator advances a System by one step with the field held at its
// sampled value.
type Integrator interface {
	Step(dyn System, x adcs.State, u adcs.Dipole, b adcs.Field, t, dt float64) adcs.State
}

// Controller produces a dipole command for the sampled state and field.
// The command must always be safe to apply; a non-nil error reports the
// fault that forced a fallback.
type Controller interface {
	Command(x adcs.State, b adcs.Field, t float64) (adcs.Dipole, error)
}

// FieldModel samples the ambient magnetic field along the orbit.
type FieldModel interface {
	At(t float64) adcs.Field
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            4,
		Duration:      4000,
		ValidateState: true,
	}
}

type Result struct {
	States     []adcs.State
	Commands   []adcs.Dipole
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
