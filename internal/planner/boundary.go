package planner

import "github.com/san-kum/mppi/internal/dynamo"

// Dynamics is the batch transition boundary the controller rolls trajectories
// through. Step receives B states and B actions and returns the B next
// states. Implementations must be pure with respect to the controller: no
// hidden state mutation, and the returned batch must not alias the inputs.
// The timestep t is only meaningful when the controller is configured with
// StepDependent; time-invariant models ignore it.
type Dynamics interface {
	Step(states []dynamo.State, actions []dynamo.Control, t int) ([]dynamo.State, error)
}

// DynamicsFunc adapts a plain function to the Dynamics boundary.
type DynamicsFunc func(states []dynamo.State, actions []dynamo.Control, t int) ([]dynamo.State, error)

func (f DynamicsFunc) Step(states []dynamo.State, actions []dynamo.Control, t int) ([]dynamo.State, error) {
	return f(states, actions, t)
}

// TrajectoryCost scores full rollouts: states and actions are indexed
// [trajectory][timestep], and the result holds one scalar cost per
// trajectory. Actions arrive scaled, exactly as they were fed to the
// dynamics. A nil TrajectoryCost on the controller means only the
// control-effort cost contributes.
type TrajectoryCost interface {
	Cost(states [][]dynamo.State, actions [][]dynamo.Control) ([]float64, error)
}

// CostFunc adapts a plain function to the TrajectoryCost boundary.
type CostFunc func(states [][]dynamo.State, actions [][]dynamo.Control) ([]float64, error)

func (f CostFunc) Cost(states [][]dynamo.State, actions [][]dynamo.Control) ([]float64, error) {
	return f(states, actions)
}
