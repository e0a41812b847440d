package sim

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/magsat/internal/adcs"
	"github.com/san-kum/magsat/internal/plant"
)

// Attitude simulates the deviation dynamics the controller is designed
// against: dx/dt = Ac*x + Bc(b)*u. The input coupling tracks the
// sampled field exactly as the controller's own input model does.
type Attitude struct {
	model *plant.Model
	input *plant.InputModel

	xv *mat.VecDense // 6
	uv *mat.VecDense // 3
	ax *mat.VecDense // 6
	bu *mat.VecDense // 6
}

func NewAttitude(m *plant.Model) *Attitude {
	return &Attitude{
		model: m,
		input: plant.NewInputModel(m),
		xv:    mat.NewVecDense(6, nil),
		uv:    mat.NewVecDense(3, nil),
		ax:    mat.NewVecDense(6, nil),
		bu:    mat.NewVecDense(6, nil),
	}
}

func (a *Attitude) StateDim() int { return 6 }

func (a *Attitude) Derive(x adcs.State, u adcs.Dipole, b adcs.Field, t float64) adcs.State {
	for i := 0; i < 6; i++ {
		a.xv.SetVec(i, x[i])
	}
	a.ax.MulVec(a.model.Ac, a.xv)

	// a degenerate field simply produces no torque
	if err := a.input.Update(b); err == nil {
		for i := 0; i < 3; i++ {
			a.uv.SetVec(i, u[i])
		}
		a.bu.MulVec(a.input.Bc, a.uv)
		a.ax.AddVec(a.ax, a.bu)
	}

	dx := make(adcs.State, 6)
	for i := 0; i < 6; i++ {
		dx[i] = a.ax.AtVec(i)
	}
	return dx
}
