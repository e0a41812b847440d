package control

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/magsat/internal/linalg"
	"github.com/san-kum/magsat/internal/plant"
)

// gainSynth computes the feedback gain
//
//	K = (R + Bd^T*P*Bd)^-1 * Bd^T*P*Ad
//
// reusing owned scratch matrices across cycles.
type gainSynth struct {
	model *plant.Model

	pAd      *mat.Dense // 6x6
	bdTPAd   *mat.Dense // 3x6
	pBd      *mat.Dense // 6x3
	bdTPBd   *mat.Dense // 3x3
	rPlus    *mat.Dense // 3x3
	rPlusInv *mat.Dense // 3x3
	k        *mat.Dense // 3x6
}

func newGainSynth(m *plant.Model) *gainSynth {
	return &gainSynth{
		model:    m,
		pAd:      mat.NewDense(6, 6, nil),
		bdTPAd:   mat.NewDense(3, 6, nil),
		pBd:      mat.NewDense(6, 3, nil),
		bdTPBd:   mat.NewDense(3, 3, nil),
		rPlus:    mat.NewDense(3, 3, nil),
		rPlusInv: mat.NewDense(3, 3, nil),
		k:        mat.NewDense(3, 6, nil),
	}
}

// compute returns K for the given Riccati solution and input matrix.
// The returned matrix is owned by the synthesizer and valid until the
// next call. R positive-definite should keep R + Bd^T*P*Bd invertible;
// singularity is still checked and surfaced.
func (g *gainSynth) compute(p, bd *mat.Dense) (*mat.Dense, error) {
	g.pAd.Mul(p, g.model.Ad)
	g.bdTPAd.Mul(bd.T(), g.pAd)
	g.pBd.Mul(p, bd)
	g.bdTPBd.Mul(bd.T(), g.pBd)

	g.rPlus.Add(g.model.R, g.bdTPBd)
	if err := linalg.Invert(g.rPlusInv, g.rPlus); err != nil {
		return nil, fmt.Errorf("control: inverting R + Bd'*P*Bd: %w", err)
	}

	g.k.Mul(g.rPlusInv, g.bdTPAd)
	return g.k, nil
}
