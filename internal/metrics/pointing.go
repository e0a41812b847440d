package metrics

import (
	"math"

	"github.com/san-kum/magsat/internal/adcs"
)

// Pointing tracks the RMS attitude-angle deviation over a run.
type Pointing struct {
	name    string
	sumSq   float64
	samples int
}

func NewPointing() *Pointing {
	return &Pointing{name: "pointing_rms"}
}

func (p *Pointing) Name() string {
	return p.name
}

func (p *Pointing) Observe(x adcs.State, u adcs.Dipole, t float64) {
	if len(x) < 3 {
		return
	}
	p.sumSq += x[0]*x[0] + x[1]*x[1] + x[2]*x[2]
	p.samples++
}

func (p *Pointing) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return math.Sqrt(p.sumSq / float64(p.samples))
}

func (p *Pointing) Reset() {
	p.sumSq = 0
	p.samples = 0
}
