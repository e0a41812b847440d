package plant

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/magsat/internal/linalg"
)

// Params is the fixed tunable parameter set of the controller. Changing
// any of these requires rebuilding the Model.
type Params struct {
	// Principal moments of inertia [kg*m^2].
	J1, J2, J3 float64
	// Orbital mean motion [rad/s].
	MeanMotion float64
	// Discretization step, matching the control cadence [s].
	Dt float64

	// Diagonal cost weights.
	PosCost   float64
	VelCost   float64
	InputCost float64

	// Newton-Raphson convergence tolerance (max elementwise delta).
	NRTolerance float64
	// Iteration budget for the Riccati square-root iteration.
	MaxIterations int
	// Field magnitudes below this are treated as no actuation possible [T].
	MinFieldNorm float64
}

func (p Params) Validate() error {
	if p.J1 <= 0 || p.J2 <= 0 || p.J3 <= 0 {
		return fmt.Errorf("plant: inertias must be positive, got (%g, %g, %g)", p.J1, p.J2, p.J3)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("plant: dt must be positive, got %g", p.Dt)
	}
	if p.MeanMotion <= 0 {
		return fmt.Errorf("plant: mean motion must be positive, got %g", p.MeanMotion)
	}
	if p.PosCost <= 0 || p.VelCost <= 0 || p.InputCost <= 0 {
		return fmt.Errorf("plant: cost weights must be positive")
	}
	if p.NRTolerance <= 0 {
		return fmt.Errorf("plant: tolerance must be positive, got %g", p.NRTolerance)
	}
	if p.MaxIterations <= 0 {
		return fmt.Errorf("plant: iteration budget must be positive, got %d", p.MaxIterations)
	}
	if p.MinFieldNorm < 0 {
		return fmt.Errorf("plant: field floor must be non-negative, got %g", p.MinFieldNorm)
	}
	return nil
}

// Model is the immutable constant-block set of the controller: the
// linearized plant, its discretization, the cost matrices, and the
// input discretization transform. Built exactly once; all fields are
// read-only afterwards.
type Model struct {
	Params Params

	Ac *mat.Dense // 6x6 continuous plant
	Ad *mat.Dense // 6x6 discrete plant, exp(Ac*dt)
	Q  *mat.Dense // 6x6 state cost
	R  *mat.Dense // 3x3 input cost
	J  *mat.Dense // 3x3 inertia

	Jinv      *mat.Dense // 3x3
	transform *mat.Dense // 6x6, -Ac^-1 * (I - Ad), discretizes Bc
}

// NewModel builds the constant blocks from the physical parameters.
func NewModel(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.MeanMotion
	j12 := (p.J1 - p.J2) / p.J3
	j23 := (p.J2 - p.J3) / p.J1
	j31 := (p.J3 - p.J1) / p.J2

	m := &Model{Params: p}

	// Linearized rigid-body attitude dynamics about the orbit-tracking
	// equilibrium, including gravity-gradient and gyroscopic coupling.
	m.Ac = mat.NewDense(6, 6, []float64{
		0, 0, n, 1, 0, 0,
		0, 0, 0, 0, 1, 0,
		-n, 0, 0, 0, 0, 1,
		-3 * n * n * j23, 0, 0, 0, 0, -n * j23,
		0, 3 * n * n * j31, 0, 0, 0, 0,
		0, 0, 0, -n * j12, 0, 0,
	})

	m.Ad = mat.NewDense(6, 6, nil)
	linalg.Expm(m.Ad, m.Ac, p.Dt)

	m.Q = linalg.Diag(p.PosCost, p.PosCost, p.PosCost, p.VelCost, p.VelCost, p.VelCost)
	m.R = linalg.Diag(p.InputCost, p.InputCost, p.InputCost)
	m.J = linalg.Diag(p.J1, p.J2, p.J3)

	m.Jinv = linalg.Diag(1/p.J1, 1/p.J2, 1/p.J3)

	// Discretization transform for the input matrix:
	//   Bd = -Ac^-1 * (I - Ad) * Bc
	// Ac is nearly singular by the structure of the dynamics; its
	// inverse only ever appears inside this composite product, which
	// stays finite.
	acInv := mat.NewDense(6, 6, nil)
	if err := linalg.InvertLoose(acInv, m.Ac); err != nil {
		return nil, fmt.Errorf("plant: building input transform: %w", err)
	}

	iMinusAd := mat.NewDense(6, 6, nil)
	iMinusAd.Sub(linalg.Eye(6), m.Ad)

	m.transform = mat.NewDense(6, 6, nil)
	m.transform.Mul(acInv, iMinusAd)
	m.transform.Scale(-1, m.transform)

	if !linalg.IsFinite(m.Ad) || !linalg.IsFinite(m.transform) {
		return nil, fmt.Errorf("plant: constant blocks are not finite")
	}

	return m, nil
}
