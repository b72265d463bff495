// Package experiment wires models, integrators and controllers into
// runnable closed-loop simulations, looked up by name from configuration.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/mppi/internal/config"
	"github.com/san-kum/mppi/internal/dynamo"
)

type Experiment struct {
	cfg        *config.Config
	sys        dynamo.System
	controller dynamo.Controller
	simulator  *dynamo.Simulator
}

// New assembles an experiment from configuration using the registry.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sys, err := reg.Model(cfg.Model)
	if err != nil {
		return nil, err
	}
	newStepper, err := reg.StepperFactory(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	ctrl, err := reg.Controller(cfg, sys, newStepper)
	if err != nil {
		return nil, err
	}

	sim := dynamo.New(sys, newStepper(), ctrl)
	goal := make(dynamo.State, sys.StateDim())
	for _, m := range reg.DefaultMetrics(goal) {
		sim.AddMetric(m)
	}

	return &Experiment{cfg: cfg, sys: sys, controller: ctrl, simulator: sim}, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not set up")
	}

	x0 := make(dynamo.State, e.sys.StateDim())
	copy(x0, e.cfg.InitState)

	return e.simulator.Run(ctx, x0, dynamo.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		Seed:          e.cfg.Seed,
		ValidateState: true,
	})
}

// Simulator exposes the underlying simulator for adding observers.
func (e *Experiment) Simulator() *dynamo.Simulator { return e.simulator }

// Controller exposes the assembled controller, e.g. to reach the planner
// behind a receding-horizon wrapper.
func (e *Experiment) Controller() dynamo.Controller { return e.controller }

// System exposes the simulated model.
func (e *Experiment) System() dynamo.System { return e.sys }
