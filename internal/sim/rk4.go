package sim

import "github.com/san-kum/magsat/internal/adcs"

type RK4 struct {
	k1, k2, k3, k4 adcs.State
	scratch        adcs.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(adcs.State, n)
		r.k2 = make(adcs.State, n)
		r.k3 = make(adcs.State, n)
		r.k4 = make(adcs.State, n)
		r.scratch = make(adcs.State, n)
	}
}

func (r *RK4) Step(dyn System, x adcs.State, u adcs.Dipole, b adcs.Field, t, dt float64) adcs.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, dyn.Derive(x, u, b, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, dyn.Derive(r.scratch, u, b, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, dyn.Derive(r.scratch, u, b, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, dyn.Derive(r.scratch, u, b, t+dt))

	result := make(adcs.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result
}
