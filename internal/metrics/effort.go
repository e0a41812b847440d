package metrics

import (
	"math"

	"github.com/san-kum/magsat/internal/adcs"
)

// Effort tracks the mean absolute dipole command.
type Effort struct {
	name    string
	sum     float64
	samples int
}

func NewEffort() *Effort {
	return &Effort{name: "dipole_effort"}
}

func (e *Effort) Name() string {
	return e.name
}

func (e *Effort) Observe(x adcs.State, u adcs.Dipole, t float64) {
	for _, val := range u {
		e.sum += math.Abs(val)
	}
	e.samples++
}

func (e *Effort) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Effort) Reset() {
	e.sum = 0
	e.samples = 0
}
