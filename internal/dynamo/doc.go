// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types used across the
// repository:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Stepper]: numerical integrator interface
//   - [Controller]: feedback controller interface
//   - [Simulator]: orchestrates closed-loop runs
//
// # Example
//
//	dyn := physics.NewPendulum()
//	integ := integrators.NewRK4()
//	sim := dynamo.New(dyn, integ, ctrl)
//	result, _ := sim.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For repeated runs under different
// seeds, use the [Ensemble] type which manages independent simulators.
package dynamo
