package metrics

import "github.com/san-kum/mppi/internal/dynamo"

// Tracking accumulates mean squared distance of the state to a goal,
// the closed-loop counterpart of the planner's quadratic cost.
type Tracking struct {
	name    string
	goal    dynamo.State
	sum     float64
	samples int
}

func NewTracking(goal dynamo.State) *Tracking {
	return &Tracking{name: "tracking", goal: goal}
}

func (m *Tracking) Name() string {
	return m.name
}

func (m *Tracking) Observe(x dynamo.State, u dynamo.Control, t float64) {
	goal := m.goal
	if len(goal) != len(x) {
		// Short goals read as zero-padded.
		g := make(dynamo.State, len(x))
		copy(g, m.goal)
		goal = g
	}
	for _, v := range x.Sub(goal) {
		m.sum += v * v
	}
	m.samples++
}

func (m *Tracking) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Tracking) Reset() {
	m.sum = 0
	m.samples = 0
}
