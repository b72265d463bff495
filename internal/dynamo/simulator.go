package dynamo

import (
	"context"
	"fmt"
)

type Simulator struct {
	sys        System
	stepper    Stepper
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(sys System, stepper Stepper, controller Controller) *Simulator {
	return &Simulator{
		sys:        sys,
		stepper:    stepper,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("initial state has %d components, system expects %d: %w",
			len(x0), s.sys.StateDim(), ErrDimensionMismatch)
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
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

		u, err := s.controller.Compute(x, t)
		if err != nil {
			return result, &SimulationError{Step: i, Time: t, Wrapped: err}
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		x = s.stepper.Step(s.sys, x, u, t, cfg.Dt)
		t += cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState && !x.IsValid() {
			return result, &SimulationError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, ErrBadConfig)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", cfg.Duration, ErrBadConfig)
	}
	return nil
}

// RunWithCallback steps the closed loop, invoking callback before every
// integration step. Returning false from the callback stops the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, Control, float64) bool) error {
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

		u, err := s.controller.Compute(x, t)
		if err != nil {
			return err
		}

		if !callback(x, u, t) {
			return nil
		}

		x = s.stepper.Step(s.sys, x, u, t, cfg.Dt)
		t += cfg.Dt

		if cfg.ValidateState && !x.IsValid() {
			return fmt.Errorf("at t=%.4f: %w", t, ErrInvalidState)
		}
	}

	return nil
}
