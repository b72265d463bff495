// Package control provides feedback controllers for dynamical systems.
//
// Controllers implement the [dynamo.Controller] interface to compute
// control inputs based on system state:
//
//   - [PID]: Proportional-Integral-Derivative controller
//   - [LQR]: Linear Quadratic Regulator (requires linearized system)
//   - [None]: Passthrough controller (zero control)
//   - [Receding]: wraps a sampling planner into the closed loop,
//     re-planning every step and applying the first action
package control
