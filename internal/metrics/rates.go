package metrics

import (
	"math"

	"github.com/san-kum/magsat/internal/adcs"
)

// Rates tracks the peak body-rate deviation magnitude seen in a run.
type Rates struct {
	name string
	peak float64
}

func NewRates() *Rates {
	return &Rates{name: "rate_peak"}
}

func (r *Rates) Name() string {
	return r.name
}

func (r *Rates) Observe(x adcs.State, u adcs.Dipole, t float64) {
	if len(x) < 6 {
		return
	}
	n := math.Sqrt(x[3]*x[3] + x[4]*x[4] + x[5]*x[5])
	if n > r.peak {
		r.peak = n
	}
}

func (r *Rates) Value() float64 {
	return r.peak
}

func (r *Rates) Reset() {
	r.peak = 0
}
