package riccati

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/magsat/internal/adcs"
	"github.com/san-kum/magsat/internal/linalg"
	"github.com/san-kum/magsat/internal/plant"
)

func referenceParams() plant.Params {
	return plant.Params{
		J1:            3.196587857e-2,
		J2:            3.229090604e-2,
		J3:            7.02534780e-3,
		MeanMotion:    1.144035952968e-3,
		Dt:            4,
		PosCost:       1.5e-7,
		VelCost:       1.5e-3,
		InputCost:     1e7,
		NRTolerance:   1e-3,
		MaxIterations: 100,
		MinFieldNorm:  1e-9,
	}
}

func referenceBd(t *testing.T, m *plant.Model) *mat.Dense {
	t.Helper()
	im := plant.NewInputModel(m)
	if err := im.Update(adcs.Field{2e-5, 1e-5, 4e-5}); err != nil {
		t.Fatalf("input update failed: %v", err)
	}
	return im.Bd
}

func maxAbs(m mat.Matrix) float64 {
	r, c := m.Dims()
	max := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := math.Abs(m.At(i, j)); v > max {
				max = v
			}
		}
	}
	return max
}

func TestSolveReference(t *testing.T) {
	m, err := plant.NewModel(referenceParams())
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	sv, err := NewSolver(m)
	if err != nil {
		t.Fatalf("NewSolver failed: %v", err)
	}

	p, stats, err := sv.Solve(referenceBd(t, m))
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if stats.Iterations <= 0 || stats.Iterations >= m.Params.MaxIterations {
		t.Errorf("unexpected iteration count %d", stats.Iterations)
	}
	if !linalg.IsFinite(p) {
		t.Fatal("P not finite")
	}

	// symmetric within solver tolerance
	scale := 1 + maxAbs(p)
	if d := linalg.MaxAbsDiff(p, p.T()); d > 1e-2*scale {
		t.Errorf("P asymmetry %g exceeds tolerance (scale %g)", d, scale)
	}

	// positive semi-definite within tolerance: eigenvalues of the
	// symmetrized P must not be meaningfully negative
	sym := mat.NewSymDense(6, nil)
	for i := 0; i < 6; i++ {
		for j := i; j < 6; j++ {
			sym.SetSym(i, j, 0.5*(p.At(i, j)+p.At(j, i)))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		t.Fatal("eigendecomposition failed")
	}
	vals := eig.Values(nil)
	for _, v := range vals {
		if v < -1e-6*scale {
			t.Errorf("P has negative eigenvalue %g (scale %g)", v, scale)
		}
	}
}

func TestSolveDeterministic(t *testing.T) {
	m, err := plant.NewModel(referenceParams())
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	sv, err := NewSolver(m)
	if err != nil {
		t.Fatalf("NewSolver failed: %v", err)
	}

	bd := referenceBd(t, m)
	p1, s1, err := sv.Solve(bd)
	if err != nil {
		t.Fatalf("first solve failed: %v", err)
	}
	first := mat.DenseCopyOf(p1)

	p2, s2, err := sv.Solve(bd)
	if err != nil {
		t.Fatalf("second solve failed: %v", err)
	}

	if s1.Iterations != s2.Iterations {
		t.Errorf("iteration counts differ: %d vs %d", s1.Iterations, s2.Iterations)
	}
	if d := linalg.MaxAbsDiff(first, p2); d != 0 {
		t.Errorf("repeated solve not bit-identical, max diff %g", d)
	}
}

func TestSolveNoCrossCycleState(t *testing.T) {
	m, err := plant.NewModel(referenceParams())
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	sv, err := NewSolver(m)
	if err != nil {
		t.Fatalf("NewSolver failed: %v", err)
	}

	im := plant.NewInputModel(m)
	if err := im.Update(adcs.Field{2e-5, 1e-5, 4e-5}); err != nil {
		t.Fatal(err)
	}
	p1, _, err := sv.Solve(im.Bd)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	first := mat.DenseCopyOf(p1)

	// solve for a different field, then return to the original
	if err := im.Update(adcs.Field{-1e-5, 3e-5, 2e-5}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := sv.Solve(im.Bd); err != nil {
		t.Fatalf("intermediate solve failed: %v", err)
	}

	if err := im.Update(adcs.Field{2e-5, 1e-5, 4e-5}); err != nil {
		t.Fatal(err)
	}
	p3, _, err := sv.Solve(im.Bd)
	if err != nil {
		t.Fatalf("final solve failed: %v", err)
	}

	if d := linalg.MaxAbsDiff(first, p3); d != 0 {
		t.Errorf("solver carried state across cycles, max diff %g", d)
	}
}

func TestSolveIterationBudget(t *testing.T) {
	p := referenceParams()
	p.MaxIterations = 1
	m, err := plant.NewModel(p)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	sv, err := NewSolver(m)
	if err != nil {
		t.Fatalf("NewSolver failed: %v", err)
	}

	_, stats, err := sv.Solve(referenceBd(t, m))
	if err == nil {
		t.Fatal("expected budget exhaustion")
	}
	if !errors.Is(err, adcs.ErrNotConverged) {
		t.Errorf("expected ErrNotConverged, got %v", err)
	}
	if stats.Iterations != 1 {
		t.Errorf("expected 1 iteration, got %d", stats.Iterations)
	}
}

func TestSolveConvergesAcrossFieldDirections(t *testing.T) {
	m, err := plant.NewModel(referenceParams())
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	sv, err := NewSolver(m)
	if err != nil {
		t.Fatalf("NewSolver failed: %v", err)
	}
	im := plant.NewInputModel(m)

	fields := []adcs.Field{
		{3e-5, 0, 0},
		{0, 3e-5, 0},
		{0, 0, 3e-5},
		{2e-5, -1e-5, 4e-5},
		{-2e-5, -2e-5, -2e-5},
	}
	for _, b := range fields {
		if err := im.Update(b); err != nil {
			t.Fatalf("field %v: %v", b, err)
		}
		if _, stats, err := sv.Solve(im.Bd); err != nil {
			t.Errorf("field %v: solve failed after %d iterations: %v", b, stats.Iterations, err)
		}
	}
}
