package config

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"swingup": {
			Model: "pendulum", Integrator: "rk4", Controller: "mppi",
			Dt: 0.02, Duration: 8.0,
			InitState: []float64{3.14, 0},
			Planner: PlannerConfig{
				Samples: 300, Horizon: 25, Lambda: 1.0,
				NoiseSigma: []float64{1.5}, UMax: []float64{4.0},
			},
		},
		"hold": {
			Model: "pendulum", Integrator: "rk4", Controller: "mppi",
			Dt: 0.02, Duration: 5.0,
			InitState: []float64{0.3, 0},
			Planner: PlannerConfig{
				Samples: 100, Horizon: 15, Lambda: 0.5,
				NoiseSigma: []float64{0.8}, UMax: []float64{4.0},
			},
		},
		"lqr": {
			Model: "pendulum", Integrator: "rk4", Controller: "lqr",
			Dt: 0.01, Duration: 10.0,
			InitState: []float64{0.2, 0},
		},
	},
	"cartpole": {
		"balance": {
			Model: "cartpole", Integrator: "rk4", Controller: "mppi",
			Dt: 0.02, Duration: 10.0,
			InitState: []float64{0, 0, 0.3, 0},
			Planner: PlannerConfig{
				Samples: 400, Horizon: 30, Lambda: 1.0,
				NoiseSigma: []float64{2.0}, UMax: []float64{10.0},
			},
		},
		"recover": {
			Model: "cartpole", Integrator: "rk4", Controller: "mppi",
			Dt: 0.02, Duration: 12.0,
			InitState: []float64{0, 0, 0.8, 0},
			Planner: PlannerConfig{
				Samples: 600, Horizon: 35, Lambda: 0.8,
				NoiseSigma: []float64{3.0}, UMax: []float64{12.0},
				SampleNullAction: true,
			},
		},
	},
}
