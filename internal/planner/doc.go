// Package planner implements sampling-based stochastic optimal control.
//
// The central type is [MPPI], a Model Predictive Path Integral controller
// (Williams et al. 2017, "Information Theoretic MPC for Model-Based
// Reinforcement Learning", algorithm 2). Every decision step it perturbs a
// warm-started nominal control sequence with Gaussian noise, rolls out K
// candidate trajectories through a batch dynamics boundary, scores them with
// a trajectory cost plus a precision-weighted control-effort cost, and folds
// the perturbations back into the nominal sequence by importance weighting.
// No gradients are required; the dynamics and cost are opaque callables.
//
//	noise, _ := planner.NewDiagonalGaussian(nil, []float64{1.0})
//	ctrl, _ := planner.New(dyn, cost, noise, planner.Config{
//		Samples: 100, Horizon: 15, StateDim: 2, Lambda: 1.0, Seed: 7,
//	})
//	plan, _ := ctrl.Command(x)
//	u := plan.First()
//
// An MPPI instance owns its nominal sequence and random source and is not
// safe for concurrent Command calls. Independent instances are independent.
package planner
