package costs

import (
	"math"
	"testing"

	"github.com/san-kum/mppi/internal/dynamo"
)

func TestQuadraticZeroAtGoal(t *testing.T) {
	c := NewQuadratic([]float64{1, 1}, []float64{0.1}, dynamo.State{1.0, 0.0})

	states := [][]dynamo.State{{{1.0, 0.0}, {1.0, 0.0}}}
	actions := [][]dynamo.Control{{{0}, {0}}}

	out, err := c.Cost(states, actions)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != 0 {
		t.Errorf("expected zero cost at goal, got %f", out[0])
	}
}

func TestQuadraticPenalizesDeviation(t *testing.T) {
	c := NewQuadratic([]float64{2, 0}, nil, nil)

	states := [][]dynamo.State{
		{{1.0, 5.0}},
		{{3.0, 5.0}},
	}
	actions := [][]dynamo.Control{{{0}}, {{0}}}

	out, err := c.Cost(states, actions)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != 2.0 {
		t.Errorf("expected 2*1^2 = 2, got %f", out[0])
	}
	if out[1] != 18.0 {
		t.Errorf("expected 2*3^2 = 18, got %f", out[1])
	}
}

func TestSwingUpMinimalUpright(t *testing.T) {
	c := NewSwingUp()

	upright := [][]dynamo.State{{{0, 0}}}
	hanging := [][]dynamo.State{{{math.Pi, 0}}}
	actions := [][]dynamo.Control{{{0}}}

	up, err := c.Cost(upright, actions)
	if err != nil {
		t.Fatal(err)
	}
	down, err := c.Cost(hanging, actions)
	if err != nil {
		t.Fatal(err)
	}

	if up[0] != 0 {
		t.Errorf("expected zero cost upright, got %f", up[0])
	}
	if down[0] <= up[0] {
		t.Errorf("hanging should cost more than upright: %f vs %f", down[0], up[0])
	}
}

func TestSwingUpWrapsAngle(t *testing.T) {
	c := NewSwingUp()

	once := [][]dynamo.State{{{0.3, 0}}}
	wrapped := [][]dynamo.State{{{0.3 + 2*math.Pi, 0}}}
	actions := [][]dynamo.Control{{{0}}}

	a, _ := c.Cost(once, actions)
	b, _ := c.Cost(wrapped, actions)

	if math.Abs(a[0]-b[0]) > 1e-9 {
		t.Errorf("angle wrap changed cost: %f vs %f", a[0], b[0])
	}
}
