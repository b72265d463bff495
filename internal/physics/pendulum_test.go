package physics

import (
	"math"
	"testing"

	"github.com/san-kum/mppi/internal/dynamo"
)

func TestPendulumUprightEquilibrium(t *testing.T) {
	p := NewPendulum()
	p.Damping = 0

	dx := p.Derive(dynamo.State{0, 0}, dynamo.Control{0}, 0)

	if math.Abs(dx[0]) > 1e-10 {
		t.Errorf("expected zero velocity at equilibrium, got %f", dx[0])
	}
	if math.Abs(dx[1]) > 1e-10 {
		t.Errorf("expected zero acceleration at equilibrium, got %f", dx[1])
	}
}

func TestPendulumGravityDestabilizes(t *testing.T) {
	p := NewPendulum()
	p.Damping = 0

	// Tilted off upright, gravity should accelerate the tilt.
	dx := p.Derive(dynamo.State{0.1, 0}, dynamo.Control{0}, 0)
	if dx[1] <= 0 {
		t.Errorf("expected positive angular acceleration for positive tilt, got %f", dx[1])
	}
}

func TestPendulumDimensions(t *testing.T) {
	p := NewPendulum()
	if p.StateDim() != 2 {
		t.Errorf("expected state dim 2, got %d", p.StateDim())
	}
	if p.ControlDim() != 1 {
		t.Errorf("expected control dim 1, got %d", p.ControlDim())
	}
}

func TestCartPoleFreefall(t *testing.T) {
	c := NewCartPole()

	dx := c.Derive(dynamo.State{0, 0, 0.1, 0}, dynamo.Control{0}, 0)
	if len(dx) != 4 {
		t.Fatalf("expected 4 derivatives, got %d", len(dx))
	}
	if dx[3] <= 0 {
		t.Errorf("pole tilted positive should fall further, got thetaacc %f", dx[3])
	}
}
