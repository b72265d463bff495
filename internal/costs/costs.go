// Package costs provides trajectory cost functions for the planner's cost
// boundary. Costs score whole rollouts: one scalar per sampled trajectory,
// summed over the horizon.
package costs

import (
	"fmt"
	"math"

	"github.com/san-kum/mppi/internal/dynamo"
)

// Quadratic penalizes squared deviation from a goal state plus squared
// control effort, with per-dimension diagonal weights. Missing weights are
// treated as zero, so a short Q ignores trailing state components.
type Quadratic struct {
	Q    []float64
	R    []float64
	Goal dynamo.State
}

func NewQuadratic(q, r []float64, goal dynamo.State) *Quadratic {
	return &Quadratic{Q: q, R: r, Goal: goal}
}

func (c *Quadratic) Cost(states [][]dynamo.State, actions [][]dynamo.Control) ([]float64, error) {
	if len(actions) != len(states) {
		return nil, fmt.Errorf("cost: %d state trajectories, %d action trajectories", len(states), len(actions))
	}

	out := make([]float64, len(states))
	for k := range states {
		total := 0.0
		for t := range states[k] {
			x := states[k][t]
			for i := 0; i < len(c.Q) && i < len(x); i++ {
				goal := 0.0
				if i < len(c.Goal) {
					goal = c.Goal[i]
				}
				d := x[i] - goal
				total += c.Q[i] * d * d
			}
			u := actions[k][t]
			for i := 0; i < len(c.R) && i < len(u); i++ {
				total += c.R[i] * u[i] * u[i]
			}
		}
		out[k] = total
	}
	return out, nil
}

// SwingUp is the pendulum swing-up cost: squared angle error to upright
// (wrapped to [-pi, pi]) plus weighted squared angular velocity. Assumes
// theta at AngleIndex with omega immediately after it.
type SwingUp struct {
	AngleIndex  int
	AngleWeight float64
	RateWeight  float64
}

func NewSwingUp() *SwingUp {
	return &SwingUp{AngleWeight: 10.0, RateWeight: 0.1}
}

func (c *SwingUp) Cost(states [][]dynamo.State, actions [][]dynamo.Control) ([]float64, error) {
	out := make([]float64, len(states))
	for k := range states {
		total := 0.0
		for _, x := range states[k] {
			if c.AngleIndex+1 >= len(x) {
				return nil, fmt.Errorf("cost: state has %d components, angle index is %d", len(x), c.AngleIndex)
			}
			theta := wrapAngle(x[c.AngleIndex])
			omega := x[c.AngleIndex+1]
			total += c.AngleWeight*theta*theta + c.RateWeight*omega*omega
		}
		out[k] = total
	}
	return out, nil
}

func wrapAngle(theta float64) float64 {
	theta = math.Mod(theta+math.Pi, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta - math.Pi
}
