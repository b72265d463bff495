package planner

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Gaussian is a multivariate normal noise model over the control-perturbation
// space. The covariance is factorized once at construction; sampling is
// mu + L*z with z standard normal, so a Gaussian is pure given the caller's
// random source. The nu=1 scalar-control case is just a 1x1 covariance.
type Gaussian struct {
	mu    []float64
	sigma *mat.SymDense
	lower *mat.TriDense
	prec  *mat.SymDense
}

// NewGaussian builds a noise model with the given mean and covariance.
// A nil mu means zero mean. Fails with ErrNotPositiveDefinite when the
// covariance cannot be Cholesky-factorized.
func NewGaussian(mu []float64, sigma *mat.SymDense) (*Gaussian, error) {
	n := sigma.SymmetricDim()
	if n < 1 {
		return nil, fmt.Errorf("covariance is %dx%d: %w", n, n, ErrBadConfig)
	}
	if mu == nil {
		mu = make([]float64, n)
	}
	if len(mu) != n {
		return nil, fmt.Errorf("mean has %d components, covariance is %dx%d: %w",
			len(mu), n, n, ErrBadConfig)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sigma); !ok {
		return nil, ErrNotPositiveDefinite
	}

	lower := mat.NewTriDense(n, mat.Lower, nil)
	chol.LTo(lower)

	prec := mat.NewSymDense(n, nil)
	if err := chol.InverseTo(prec); err != nil {
		return nil, fmt.Errorf("inverting covariance: %w", ErrNotPositiveDefinite)
	}

	g := &Gaussian{
		mu:    append([]float64(nil), mu...),
		sigma: mat.NewSymDense(n, nil),
		lower: lower,
		prec:  prec,
	}
	g.sigma.CopySym(sigma)
	return g, nil
}

// NewDiagonalGaussian builds a noise model with independent dimensions.
// Variances must all be positive.
func NewDiagonalGaussian(mu []float64, variances []float64) (*Gaussian, error) {
	n := len(variances)
	sigma := mat.NewSymDense(n, nil)
	for i, v := range variances {
		sigma.SetSym(i, i, v)
	}
	return NewGaussian(mu, sigma)
}

func (g *Gaussian) Dim() int { return len(g.mu) }

// Sample draws one vector from the distribution using rng.
func (g *Gaussian) Sample(rng *rand.Rand) []float64 {
	n := len(g.mu)
	z := make([]float64, n)
	for i := range z {
		z[i] = rng.NormFloat64()
	}
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := g.mu[i]
		for j := 0; j <= i; j++ {
			sum += g.lower.At(i, j) * z[j]
		}
		x[i] = sum
	}
	return x
}

// Precision returns the inverse covariance. The caller must not mutate it.
func (g *Gaussian) Precision() *mat.SymDense { return g.prec }

// Mean returns a copy of the distribution mean.
func (g *Gaussian) Mean() []float64 {
	return append([]float64(nil), g.mu...)
}
