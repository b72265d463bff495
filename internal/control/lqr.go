package control

import "github.com/san-kum/mppi/internal/dynamo"

type LQR struct {
	K      [][]float64
	Target dynamo.State
}

func NewLQR(k [][]float64, target dynamo.State) *LQR {
	return &LQR{K: k, Target: target}
}

func (l *LQR) Compute(x dynamo.State, t float64) (dynamo.Control, error) {
	u := make(dynamo.Control, len(l.K))
	for i := range u {
		for j := range x {
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			if j < len(l.K[i]) {
				u[i] -= l.K[i][j] * (x[j] - target)
			}
		}
	}
	return u, nil
}

var (
	pendulumGains = [][]float64{{31.62, 10.0}}
	cartpoleGains = [][]float64{{-1.0, -1.73, 35.36, 8.94}}
)

func NewPendulumLQR() *LQR {
	return NewLQR(pendulumGains, dynamo.State{0, 0})
}

func NewCartPoleLQR() *LQR {
	return NewLQR(cartpoleGains, dynamo.State{0, 0, 0, 0})
}
