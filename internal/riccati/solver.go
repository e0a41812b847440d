package riccati

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/magsat/internal/adcs"
	"github.com/san-kum/magsat/internal/linalg"
	"github.com/san-kum/magsat/internal/plant"
)

// Stats reports how a solve went.
type Stats struct {
	// Iterations is the number of Newton-Raphson steps taken.
	Iterations int
	// Delta is the final max elementwise change between iterates.
	Delta float64
}

// Solver computes P(t), the solution of the discrete algebraic Riccati
// equation for (Ad, Bd, Q, R), by the Hamiltonian matrix-square-root
// method (Sutherland, arXiv:1707.04959, appendix B).
//
// The constant blocks (N, R^-1, Ad^T) and all 12x12 workspaces are
// built once at construction; Solve only recomputes what depends on
// the current Bd and performs no allocation.
//
// A Solver is owned by a single control-cycle caller and is not safe
// for concurrent use.
type Solver struct {
	model *plant.Model

	tol     float64
	maxIter int

	// constant across cycles
	n     *mat.Dense // 12x12, [Ad 0; -Q I]
	rinv  *mat.Dense // 3x3
	adT   *mat.Dense // 6x6
	eye6  *mat.Dense
	zero6 *mat.Dense

	// per-cycle scratch
	rinvBdT   *mat.Dense // 3x6
	bdRinvBdT *mat.Dense // 6x6
	l         *mat.Dense // 12x12
	npl       *mat.Dense // 12x12, N+L
	nplInv    *mat.Dense // 12x12
	nml       *mat.Dense // 12x12, N-L
	h         *mat.Dense // 12x12
	h2        *mat.Dense // 12x12
	s         *mat.Dense // 12x12
	sPrev     *mat.Dense // 12x12
	sInv      *mat.Dense // 12x12
	sTmp      *mat.Dense // 12x12
	x1Inv     *mat.Dense // 6x6
	p         *mat.Dense // 6x6
}

// NewSolver builds the constant blocks for the given model.
func NewSolver(m *plant.Model) (*Solver, error) {
	s := &Solver{
		model:     m,
		tol:       m.Params.NRTolerance,
		maxIter:   m.Params.MaxIterations,
		n:         mat.NewDense(12, 12, nil),
		rinv:      mat.NewDense(3, 3, nil),
		adT:       mat.NewDense(6, 6, nil),
		eye6:      linalg.Eye(6),
		zero6:     mat.NewDense(6, 6, nil),
		rinvBdT:   mat.NewDense(3, 6, nil),
		bdRinvBdT: mat.NewDense(6, 6, nil),
		l:         mat.NewDense(12, 12, nil),
		npl:       mat.NewDense(12, 12, nil),
		nplInv:    mat.NewDense(12, 12, nil),
		nml:       mat.NewDense(12, 12, nil),
		h:         mat.NewDense(12, 12, nil),
		h2:        mat.NewDense(12, 12, nil),
		s:         mat.NewDense(12, 12, nil),
		sPrev:     mat.NewDense(12, 12, nil),
		sInv:      mat.NewDense(12, 12, nil),
		sTmp:      mat.NewDense(12, 12, nil),
		x1Inv:     mat.NewDense(6, 6, nil),
		p:         mat.NewDense(6, 6, nil),
	}

	// N = [Ad  0]
	//     [-Q  I]
	negQ := mat.NewDense(6, 6, nil)
	negQ.Scale(-1, m.Q)
	linalg.Block2x2(s.n, m.Ad, s.zero6, negQ, s.eye6)

	if err := linalg.Invert(s.rinv, m.R); err != nil {
		return nil, fmt.Errorf("riccati: inverting R: %w", err)
	}
	s.adT.CloneFrom(m.Ad.T())

	return s, nil
}

// Solve computes P for the current discrete input matrix. The returned
// matrix is owned by the solver and is valid until the next call.
func (sv *Solver) Solve(bd *mat.Dense) (*mat.Dense, Stats, error) {
	var stats Stats

	// L = [I  Bd*R^-1*Bd^T]
	//     [0      Ad^T    ]
	sv.rinvBdT.Mul(sv.rinv, bd.T())
	sv.bdRinvBdT.Mul(bd, sv.rinvBdT)
	linalg.Block2x2(sv.l, sv.eye6, sv.bdRinvBdT, sv.zero6, sv.adT)

	// H = (N+L)^-1 * (N-L)
	sv.npl.Add(sv.n, sv.l)
	if err := linalg.Invert(sv.nplInv, sv.npl); err != nil {
		return nil, stats, fmt.Errorf("riccati: inverting N+L: %w", err)
	}
	sv.nml.Sub(sv.n, sv.l)
	sv.h.Mul(sv.nplInv, sv.nml)

	stats, err := sv.newtonRaphson()
	if err != nil {
		return nil, stats, err
	}

	// [X1 ~; X2 ~] = H - S; P = X2 * X1^-1
	sv.h.Sub(sv.h, sv.s)
	x1 := sv.h.Slice(0, 6, 0, 6)
	x2 := sv.h.Slice(6, 12, 0, 6)
	if err := linalg.Invert(sv.x1Inv, x1); err != nil {
		return nil, stats, fmt.Errorf("riccati: inverting X1: %w", err)
	}
	sv.p.Mul(x2, sv.x1Inv)

	if !linalg.IsFinite(sv.p) {
		return nil, stats, fmt.Errorf("%w: P is not finite", adcs.ErrSingularMatrix)
	}
	return sv.p, stats, nil
}

// newtonRaphson iterates S_{k+1} = (S_k + S_k^-1 * H^2) / 2 until the
// max elementwise delta falls below tolerance, computing the principal
// square root of H^2.
//
// The iteration always restarts from the identity. Warm-starting from
// the previous cycle's S prevents convergence; restarting is a
// correctness requirement, not a missed optimization.
func (sv *Solver) newtonRaphson() (Stats, error) {
	linalg.SetIdentity(sv.s)
	sv.h2.Mul(sv.h, sv.h)

	var stats Stats
	for k := 0; k < sv.maxIter; k++ {
		sv.sPrev.Copy(sv.s)
		if err := linalg.Invert(sv.sInv, sv.s); err != nil {
			return stats, fmt.Errorf("riccati: iteration %d: %w", k, err)
		}
		sv.sTmp.Mul(sv.sInv, sv.h2)
		sv.s.Add(sv.sPrev, sv.sTmp)
		sv.s.Scale(0.5, sv.s)

		stats.Iterations = k + 1
		stats.Delta = linalg.MaxAbsDiff(sv.s, sv.sPrev)
		if stats.Delta <= sv.tol {
			return stats, nil
		}
	}
	return stats, fmt.Errorf("%w: %d iterations, delta %g (tol %g)",
		adcs.ErrNotConverged, stats.Iterations, stats.Delta, sv.tol)
}
