package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Sub(o State) State {
	d := make(State, len(s))
	for i := range s {
		d[i] = s[i] - o[i]
	}
	return d
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

type Control []float64

func (c Control) Clone() Control {
	d := make(Control, len(c))
	copy(d, c)
	return d
}

// System is a continuous-time dynamical system dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Stepper advances a system state by one timestep.
type Stepper interface {
	Step(sys System, x State, u Control, t float64, dt float64) State
}

// Controller computes a control input from the current state. Controllers
// that plan online (see internal/control.Receding) may fail, so the error
// is part of the contract; simple feedback laws return nil.
type Controller interface {
	Compute(x State, t float64) (Control, error)
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	ValidateState bool
}

type Result struct {
	States     []State
	Controls   []Control
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}
