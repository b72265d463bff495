package planner

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestGaussianRejectsNonPositiveDefinite(t *testing.T) {
	sigma := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	if _, err := NewGaussian(nil, sigma); !errors.Is(err, ErrNotPositiveDefinite) {
		t.Fatalf("expected ErrNotPositiveDefinite, got %v", err)
	}
}

func TestGaussianRejectsMismatchedMean(t *testing.T) {
	sigma := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	if _, err := NewGaussian([]float64{0}, sigma); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("expected ErrBadConfig, got %v", err)
	}
}

func TestGaussianScalarCase(t *testing.T) {
	g, err := NewDiagonalGaussian([]float64{3}, []float64{4})
	if err != nil {
		t.Fatal(err)
	}
	if g.Dim() != 1 {
		t.Fatalf("expected dim 1, got %d", g.Dim())
	}

	// With variance 4 a draw must be mu + 2z for the same normal stream.
	rngA := rand.New(rand.NewSource(11))
	rngB := rand.New(rand.NewSource(11))

	x := g.Sample(rngA)
	want := 3 + 2*rngB.NormFloat64()
	if math.Abs(x[0]-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, x[0])
	}
}

func TestGaussianSampleMatchesCholesky(t *testing.T) {
	sigma := mat.NewSymDense(2, []float64{1, 0.9, 0.9, 1})
	mu := []float64{1, -1}
	g, err := NewGaussian(mu, sigma)
	if err != nil {
		t.Fatal(err)
	}

	var chol mat.Cholesky
	chol.Factorize(sigma)
	lower := mat.NewTriDense(2, mat.Lower, nil)
	chol.LTo(lower)

	rngA := rand.New(rand.NewSource(42))
	rngB := rand.New(rand.NewSource(42))

	x := g.Sample(rngA)
	z := []float64{rngB.NormFloat64(), rngB.NormFloat64()}
	for i := 0; i < 2; i++ {
		want := mu[i]
		for j := 0; j <= i; j++ {
			want += lower.At(i, j) * z[j]
		}
		if math.Abs(x[i]-want) > 1e-12 {
			t.Errorf("component %d: expected %f, got %f", i, want, x[i])
		}
	}
}

func TestGaussianPrecisionIsInverse(t *testing.T) {
	sigma := mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1})
	g, err := NewGaussian(nil, sigma)
	if err != nil {
		t.Fatal(err)
	}

	var prod mat.Dense
	prod.Mul(sigma, g.Precision())

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(prod.At(i, j)-want) > 1e-10 {
				t.Errorf("sigma * precision at (%d,%d) = %f, want %f", i, j, prod.At(i, j), want)
			}
		}
	}
}

func TestGaussianMeanIsCopy(t *testing.T) {
	g, err := NewDiagonalGaussian([]float64{1, -2}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}

	m := g.Mean()
	if m[0] != 1 || m[1] != -2 {
		t.Fatalf("Mean() = %v, want [1 -2]", m)
	}

	// Mutating the returned slice must not shift the distribution.
	m[0] = 100
	rngA := rand.New(rand.NewSource(5))
	rngB := rand.New(rand.NewSource(5))
	x := g.Sample(rngA)
	want := 1 + rngB.NormFloat64()
	if math.Abs(x[0]-want) > 1e-12 {
		t.Errorf("sample shifted after Mean mutation: got %f, want %f", x[0], want)
	}
}

func TestGaussianReproducible(t *testing.T) {
	g, err := NewDiagonalGaussian(nil, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	a := g.Sample(rand.New(rand.NewSource(7)))
	b := g.Sample(rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different draws: %v vs %v", a, b)
		}
	}
}
