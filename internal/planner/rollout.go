package planner

import (
	"fmt"

	"github.com/san-kum/mppi/internal/dynamo"
)

// BatchStepper adapts a continuous-time system plus an integrator to the
// batch Dynamics boundary: every trajectory in the batch is advanced one
// timestep of length Dt. Trajectories are mutually independent, so batches
// above MinChunk are split across workers; steppers carry scratch buffers,
// so each chunk gets its own from NewStepper.
type BatchStepper struct {
	Sys        dynamo.System
	NewStepper func() dynamo.Stepper
	Dt         float64

	// MinChunk is the smallest batch worth parallelizing. Zero means a
	// sensible default.
	MinChunk int
}

func NewBatchStepper(sys dynamo.System, newStepper func() dynamo.Stepper, dt float64) *BatchStepper {
	return &BatchStepper{Sys: sys, NewStepper: newStepper, Dt: dt}
}

func (b *BatchStepper) Step(states []dynamo.State, actions []dynamo.Control, t int) ([]dynamo.State, error) {
	if len(actions) != len(states) {
		return nil, fmt.Errorf("batch of %d states with %d actions: %w",
			len(states), len(actions), dynamo.ErrDimensionMismatch)
	}

	minChunk := b.MinChunk
	if minChunk <= 0 {
		minChunk = 16
	}

	next := make([]dynamo.State, len(states))
	tSim := float64(t) * b.Dt

	dynamo.ParallelFor(len(states), minChunk, func(start, end int) {
		stepper := b.NewStepper()
		for k := start; k < end; k++ {
			next[k] = stepper.Step(b.Sys, states[k], actions[k], tSim, b.Dt)
		}
	})

	return next, nil
}
