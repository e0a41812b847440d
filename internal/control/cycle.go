package control

import (
	"github.com/san-kum/magsat/internal/adcs"
)

// Loop is the control cycle orchestrator: once per tick it reads the
// sensors, forms the state deviation, runs the pipeline, and commands
// the actuator. It holds no numerical state of its own beyond the
// controller it drives.
type Loop struct {
	ctrl     *LQR
	sensors  adcs.Sensors
	actuator adcs.Actuator

	metrics   []adcs.Metric
	observers []adcs.Observer

	step int
	t    float64
	dt   float64
}

func NewLoop(ctrl *LQR, sensors adcs.Sensors, actuator adcs.Actuator) *Loop {
	return &Loop{
		ctrl:     ctrl,
		sensors:  sensors,
		actuator: actuator,
		dt:       ctrl.model.Params.Dt,
	}
}

func (l *Loop) AddMetric(m adcs.Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o adcs.Observer) { l.observers = append(l.observers, o) }

// Cycle runs one control tick. The commanded dipole is always applied,
// falling back per the controller policy on a fault; the fault itself
// is reported in the result with cycle context.
func (l *Loop) Cycle() Result {
	p1, p2, p3 := l.sensors.AngularPosition()
	w1, w2, w3 := l.sensors.AngularVelocity()
	b1, b2, b3 := l.sensors.MagneticField()

	// The equilibrium attitude tracks the orbit, so the nominal pitch
	// rate is -n; the deviation adds the mean motion back.
	x := adcs.State{p1, p2, p3, w1, w2 + l.ctrl.model.Params.MeanMotion, w3}
	b := adcs.Field{b1, b2, b3}

	res := l.ctrl.Step(x, b)
	l.actuator.SetDipole(res.Dipole[0], res.Dipole[1], res.Dipole[2])

	for _, m := range l.metrics {
		m.Observe(x, res.Dipole, l.t)
	}
	for _, o := range l.observers {
		o.OnStep(x, res.Dipole, l.t)
	}

	if res.Err != nil {
		res.Err = &adcs.CycleError{Step: l.step, Time: l.t, Wrapped: res.Err}
	}

	l.step++
	l.t += l.dt
	return res
}
