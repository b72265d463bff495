package control

import (
	"time"

	"github.com/san-kum/mppi/internal/dynamo"
	"github.com/san-kum/mppi/internal/planner"
)

// Sample is one recorded (state, action) transition from the closed loop,
// the raw material for refitting an approximate dynamics model online.
type Sample struct {
	State  dynamo.State
	Action dynamo.Control
}

// Receding wraps a sampling planner into the [dynamo.Controller] interface:
// every simulation step it re-plans from the current state and applies the
// first action of the plan. It keeps the last plan and planning latency for
// inspection, and optionally buffers transitions for a periodic refit hook.
type Receding struct {
	planner *planner.MPPI

	// RefitEvery triggers Refit with the buffered samples every N steps.
	// Zero disables recording.
	RefitEvery int
	Refit      func(samples []Sample) error

	// LastPlan and LastLatency describe the most recent planning call.
	LastPlan    planner.Plan
	LastLatency time.Duration

	buffer []Sample
	step   int
}

func NewReceding(p *planner.MPPI) *Receding {
	return &Receding{planner: p}
}

func (r *Receding) Compute(x dynamo.State, t float64) (dynamo.Control, error) {
	start := time.Now()
	plan, err := r.planner.Command(x)
	r.LastLatency = time.Since(start)
	if err != nil {
		return nil, err
	}
	r.LastPlan = plan

	u := plan.First()

	if r.RefitEvery > 0 {
		r.buffer = append(r.buffer, Sample{State: x.Clone(), Action: u.Clone()})
		r.step++
		if r.step%r.RefitEvery == 0 && r.Refit != nil {
			if err := r.Refit(r.buffer); err != nil {
				return nil, err
			}
			r.buffer = r.buffer[:0]
		}
	}

	return u, nil
}

// Reset resamples the planner's nominal sequence and clears the sample
// buffer. Call between trials, not between steps.
func (r *Receding) Reset() {
	r.planner.Reset()
	r.buffer = r.buffer[:0]
	r.step = 0
	r.LastPlan = planner.Plan{}
}

// Planner exposes the wrapped planner for debug interfaces.
func (r *Receding) Planner() *planner.MPPI { return r.planner }
