package experiment

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/mppi/internal/config"
	"github.com/san-kum/mppi/internal/control"
	"github.com/san-kum/mppi/internal/costs"
	"github.com/san-kum/mppi/internal/dynamo"
	"github.com/san-kum/mppi/internal/integrators"
	"github.com/san-kum/mppi/internal/metrics"
	"github.com/san-kum/mppi/internal/physics"
	"github.com/san-kum/mppi/internal/planner"
)

type Registry struct {
	models   map[string]func() dynamo.System
	steppers map[string]func() dynamo.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		models:   make(map[string]func() dynamo.System),
		steppers: make(map[string]func() dynamo.Stepper),
	}

	r.models["pendulum"] = func() dynamo.System { return physics.NewPendulum() }
	r.models["cartpole"] = func() dynamo.System { return physics.NewCartPole() }

	r.steppers["euler"] = func() dynamo.Stepper { return integrators.NewEuler() }
	r.steppers["rk4"] = func() dynamo.Stepper { return integrators.NewRK4() }

	return r
}

func (r *Registry) Model(name string) (dynamo.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) StepperFactory(name string) (func() dynamo.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}

// TaskCost returns the trajectory cost the planner optimizes for a model.
func (r *Registry) TaskCost(model string, sys dynamo.System) planner.TrajectoryCost {
	switch model {
	case "pendulum":
		return costs.NewSwingUp()
	case "cartpole":
		return costs.NewQuadratic(
			[]float64{0.5, 0.1, 20.0, 0.5},
			[]float64{0.001},
			dynamo.State{0, 0, 0, 0},
		)
	default:
		q := make([]float64, sys.StateDim())
		for i := range q {
			q[i] = 1
		}
		return costs.NewQuadratic(q, nil, nil)
	}
}

// Controller assembles the named controller for a system. For mppi this
// wires the batch rollout boundary over the chosen integrator and the
// model's task cost into a receding-horizon planner.
func (r *Registry) Controller(cfg *config.Config, sys dynamo.System, newStepper func() dynamo.Stepper) (dynamo.Controller, error) {
	switch cfg.Controller {
	case "", "none":
		return control.NewNone(sys.ControlDim()), nil
	case "pid":
		return control.NewPID(cfg.PID.Kp, cfg.PID.Ki, cfg.PID.Kd, cfg.PID.Target), nil
	case "lqr":
		switch cfg.Model {
		case "cartpole":
			return control.NewCartPoleLQR(), nil
		default:
			return control.NewPendulumLQR(), nil
		}
	case "mppi":
		p, err := r.buildPlanner(cfg, sys, newStepper)
		if err != nil {
			return nil, err
		}
		return control.NewReceding(p), nil
	default:
		return nil, fmt.Errorf("unknown controller: %s", cfg.Controller)
	}
}

func (r *Registry) buildPlanner(cfg *config.Config, sys dynamo.System, newStepper func() dynamo.Stepper) (*planner.MPPI, error) {
	pc := cfg.Planner
	nu := sys.ControlDim()

	sigma := pc.NoiseSigma
	if len(sigma) == 1 && nu > 1 {
		sigma = make([]float64, nu)
		for i := range sigma {
			sigma[i] = pc.NoiseSigma[0]
		}
	}
	if len(sigma) != nu {
		return nil, fmt.Errorf("noise_sigma has %d entries, control dimension is %d", len(sigma), nu)
	}

	noise, err := planner.NewDiagonalGaussian(pc.NoiseMu, sigma)
	if err != nil {
		return nil, err
	}

	dyn := planner.NewBatchStepper(sys, newStepper, cfg.Dt)

	return planner.New(dyn, r.TaskCost(cfg.Model, sys), noise, planner.Config{
		Samples:          pc.Samples,
		Horizon:          pc.Horizon,
		StateDim:         sys.StateDim(),
		Lambda:           pc.Lambda,
		UMin:             pc.UMin,
		UMax:             pc.UMax,
		UScale:           pc.UScale,
		UPerCommand:      pc.UPerCommand,
		UInit:            pc.UInit,
		SampleNullAction: pc.SampleNullAction,
		NoiseAbsCost:     pc.NoiseAbsCost,
		Rand:             rand.New(rand.NewSource(cfg.Seed)),
	})
}

func (r *Registry) DefaultMetrics(goal dynamo.State) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewControlEffort(),
		metrics.NewStability(25.0),
		metrics.NewTracking(goal),
	}
}
