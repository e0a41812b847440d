package plant

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/magsat/internal/adcs"
	"github.com/san-kum/magsat/internal/linalg"
)

// InputModel recomputes the time-varying input matrices from the
// measured magnetic field. It owns all scratch space, so Update does
// not allocate.
type InputModel struct {
	model *Model

	skew  *mat.Dense // 3x3, S(b)
	quot  *mat.Dense // 3x3, S(b)*S(b)/(b^T b)
	jq    *mat.Dense // 3x3, J^-1 * quot
	zero3 *mat.Dense // 3x3

	Bc *mat.Dense // 6x3 continuous input matrix
	Bd *mat.Dense // 6x3 discrete input matrix
}

func NewInputModel(m *Model) *InputModel {
	return &InputModel{
		model: m,
		skew:  mat.NewDense(3, 3, nil),
		quot:  mat.NewDense(3, 3, nil),
		jq:    mat.NewDense(3, 3, nil),
		zero3: mat.NewDense(3, 3, nil),
		Bc:    mat.NewDense(6, 3, nil),
		Bd:    mat.NewDense(6, 3, nil),
	}
}

// Update recomputes Bc and Bd in place for the given field. A field at
// or below the configured floor is rejected before any division so the
// caller can skip actuation for the cycle.
func (im *InputModel) Update(b adcs.Field) error {
	if !b.IsValid() {
		return fmt.Errorf("plant: field measurement: %w", adcs.ErrInvalidState)
	}
	btb := b[0]*b[0] + b[1]*b[1] + b[2]*b[2]
	floor := im.model.Params.MinFieldNorm
	if btb <= floor*floor {
		return fmt.Errorf("%w: |b|=%g", adcs.ErrDegenerateField, b.Norm())
	}

	linalg.Skew(im.skew, b)

	// Bc = [0; J^-1 * S(b)*S(b) / (b^T b)]
	im.quot.Mul(im.skew, im.skew)
	im.quot.Scale(1/btb, im.quot)
	im.jq.Mul(im.model.Jinv, im.quot)
	linalg.StackVert(im.Bc, im.zero3, im.jq)

	im.Bd.Mul(im.model.transform, im.Bc)
	return nil
}
