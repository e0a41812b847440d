package adcs

import "math"

// State is the 6-vector of deviations from the nominal orbit-tracking
// attitude: three Euler-like angles [rad] followed by three body rates
// [rad/s].
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Field is the measured ambient magnetic field in the body frame [T].
type Field [3]float64

func (f Field) Norm() float64 {
	return math.Sqrt(f[0]*f[0] + f[1]*f[1] + f[2]*f[2])
}

func (f Field) IsValid() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Dipole is a commanded magnetic dipole moment [A*m^2].
type Dipole [3]float64

func (d Dipole) IsValid() bool {
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sensors is the measurement surface the control cycle consumes. Each
// method returns three double-precision scalars read once per tick.
type Sensors interface {
	AngularPosition() (float64, float64, float64)
	AngularVelocity() (float64, float64, float64)
	MagneticField() (float64, float64, float64)
}

// Actuator receives the dipole command once per tick.
type Actuator interface {
	SetDipole(mx, my, mz float64)
}

type Metric interface {
	Name() string
	Observe(x State, u Dipole, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Dipole, t float64)
}
