package linalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/magsat/internal/adcs"
)

// Invert computes dst = a^-1 via LU decomposition. It fails when a is
// singular or near-singular to working precision.
func Invert(dst *mat.Dense, a mat.Matrix) error {
	if err := dst.Inverse(a); err != nil {
		return fmt.Errorf("%w: %v", adcs.ErrSingularMatrix, err)
	}
	return nil
}

// InvertLoose computes dst = a^-1 but tolerates an ill-conditioned a,
// failing only when the result is not finite. Callers use this for
// intermediate factors of a composite transform whose product is
// well-defined even though the factor alone is nearly singular.
func InvertLoose(dst *mat.Dense, a mat.Matrix) error {
	if err := dst.Inverse(a); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("%w: %v", adcs.ErrSingularMatrix, err)
		}
	}
	if !IsFinite(dst) {
		return fmt.Errorf("%w: inverse is not finite", adcs.ErrSingularMatrix)
	}
	return nil
}

// Expm computes dst = exp(a*dt) by scaling-and-squaring with Pade
// approximation.
func Expm(dst *mat.Dense, a mat.Matrix, dt float64) {
	var scaled mat.Dense
	scaled.Scale(dt, a)
	dst.Exp(&scaled)
}

// Skew writes the cross-product operator of b into dst (3x3):
//
//	S(b)*v == b x v
func Skew(dst *mat.Dense, b adcs.Field) {
	dst.Set(0, 0, 0)
	dst.Set(0, 1, -b[2])
	dst.Set(0, 2, b[1])
	dst.Set(1, 0, b[2])
	dst.Set(1, 1, 0)
	dst.Set(1, 2, -b[0])
	dst.Set(2, 0, -b[1])
	dst.Set(2, 1, b[0])
	dst.Set(2, 2, 0)
}

// Block2x2 assembles dst = [a b; c d]. The blocks must tile dst exactly.
func Block2x2(dst *mat.Dense, a, b, c, d mat.Matrix) {
	ra, ca := a.Dims()
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			dst.Set(i, j, a.At(i, j))
		}
	}
	rb, cb := b.Dims()
	for i := 0; i < rb; i++ {
		for j := 0; j < cb; j++ {
			dst.Set(i, ca+j, b.At(i, j))
		}
	}
	rc, cc := c.Dims()
	for i := 0; i < rc; i++ {
		for j := 0; j < cc; j++ {
			dst.Set(ra+i, j, c.At(i, j))
		}
	}
	rd, cd := d.Dims()
	for i := 0; i < rd; i++ {
		for j := 0; j < cd; j++ {
			dst.Set(ra+i, ca+j, d.At(i, j))
		}
	}
}

// StackVert assembles dst = [a; b].
func StackVert(dst *mat.Dense, a, b mat.Matrix) {
	ra, ca := a.Dims()
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			dst.Set(i, j, a.At(i, j))
		}
	}
	rb, cb := b.Dims()
	for i := 0; i < rb; i++ {
		for j := 0; j < cb; j++ {
			dst.Set(ra+i, j, b.At(i, j))
		}
	}
}

// MaxAbsDiff returns the largest elementwise |a-b|.
func MaxAbsDiff(a, b mat.Matrix) float64 {
	r, c := a.Dims()
	max := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if d := math.Abs(a.At(i, j) - b.At(i, j)); d > max {
				max = d
			}
		}
	}
	return max
}

// IsFinite reports whether every element of m is finite.
func IsFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Diag builds an n x n diagonal matrix from vals. len(vals) must be n.
func Diag(vals ...float64) *mat.Dense {
	n := len(vals)
	d := mat.NewDense(n, n, nil)
	for i, v := range vals {
		d.Set(i, i, v)
	}
	return d
}

// Eye builds an n x n identity matrix.
func Eye(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

// SetIdentity overwrites dst (square) with the identity.
func SetIdentity(dst *mat.Dense) {
	r, c := dst.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if i == j {
				dst.Set(i, j, 1)
			} else {
				dst.Set(i, j, 0)
			}
		}
	}
}
