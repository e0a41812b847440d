package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/magsat/internal/adcs"
)

// Simulator runs the closed loop: sample the field, run the control
// pipeline, propagate the attitude dynamics one control period.
type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	field      FieldModel
	metrics    []adcs.Metric
	observers  []adcs.Observer
}

func New(dyn System, integrator Integrator, controller Controller, field FieldModel) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		field:      field,
		metrics:    make([]adcs.Metric, 0),
		observers:  make([]adcs.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m adcs.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o adcs.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 adcs.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		States:   make([]adcs.State, 0, steps+1),
		Commands: make([]adcs.Dipole, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		b := s.field.At(t)

		u, err := s.controller.Command(x, b, t)
		if err != nil {
			result.Errors = append(result.Errors, err)
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		newX := s.integrator.Step(s.dyn, x, u, b, t, cfg.Dt)

		if cfg.ValidateState && !newX.IsValid() {
			err := SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			break
		}

		x = newX
		t += cfg.Dt
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Commands = append(result.Commands, u)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("sim: duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

// RunWithCallback steps the loop, handing each sample to the callback;
// returning false stops the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 adcs.State, cfg Config, callback func(adcs.State, adcs.Dipole, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0

	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		b := s.field.At(t)
		u, _ := s.controller.Command(x, b, t)

		if !callback(x, u, t) {
			return nil
		}

		x = s.integrator.Step(s.dyn, x, u, b, t, cfg.Dt)
		t += cfg.Dt

		if cfg.ValidateState && !x.IsValid() {
			return fmt.Errorf("sim: invalid state at t=%.4f", t)
		}
	}

	return nil
}
