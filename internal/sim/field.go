package sim

import (
	"math"

	"github.com/san-kum/magsat/internal/adcs"
)

// OrbitField is the tilted-dipole approximation of the geomagnetic
// field seen in the body frame along a circular orbit: the components
// oscillate at the orbital rate, scaled by the field strength at
// altitude.
type OrbitField struct {
	// B0 is the field strength at orbit altitude [T].
	B0 float64
	// Inclination of the orbit [rad].
	Inclination float64
	// MeanMotion is the orbital rate [rad/s].
	MeanMotion float64
}

func (f OrbitField) At(t float64) adcs.Field {
	eta := f.MeanMotion * t
	si, ci := math.Sin(f.Inclination), math.Cos(f.Inclination)
	return adcs.Field{
		f.B0 * si * math.Cos(eta),
		-f.B0 * ci,
		2 * f.B0 * si * math.Sin(eta),
	}
}

// ConstantField holds the field fixed, useful for pipeline tests.
type ConstantField adcs.Field

func (f ConstantField) At(t float64) adcs.Field {
	return adcs.Field(f)
}
