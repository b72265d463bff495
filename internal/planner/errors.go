package planner

import "errors"

// Configuration and runtime errors. Configuration errors are fatal at
// construction; ErrNonFiniteCost is returned per-call and leaves the
// nominal sequence untouched.
var (
	// ErrNotPositiveDefinite indicates the noise covariance has no Cholesky
	// factorization.
	ErrNotPositiveDefinite = errors.New("planner: noise covariance not positive-definite")

	// ErrBadBounds indicates inconsistent control bounds (min > max or
	// wrong dimension).
	ErrBadBounds = errors.New("planner: invalid control bounds")

	// ErrBadConfig indicates an invalid controller configuration.
	ErrBadConfig = errors.New("planner: invalid configuration")

	// ErrNonFiniteCost indicates the sampled trajectory costs contained NaN
	// or Inf; the update was rejected and the prior plan kept.
	ErrNonFiniteCost = errors.New("planner: non-finite trajectory cost, update rejected")
)
