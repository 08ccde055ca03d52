package fusion

import (
	"fmt"

	"github.com/Neil-Crago/coheron/internal/belief"
)

// EmptyPolynomialNoise is the noise of the polynomial fused from nothing.
const EmptyPolynomialNoise = 0.1

// PolynomialAverage takes the coefficient-wise mean. The noise of the first
// snapshot is carried over.
type PolynomialAverage struct{}

// Name implements Strategy.
func (PolynomialAverage) Name() string { return "polynomial_average" }

// Fuse implements Strategy.
func (PolynomialAverage) Fuse(states []belief.PolynomialState) (belief.PolynomialState, error) {
	if len(states) == 0 {
		return belief.PolynomialState{Coeffs: []float64{}, Noise: EmptyPolynomialNoise}, nil
	}

	sum, err := sumVectors(len(states), func(i int) []float64 { return states[i].Coeffs })
	if err != nil {
		return belief.PolynomialState{}, err
	}
	n := float64(len(states))
	for i := range sum {
		sum[i] /= n
	}
	return belief.PolynomialState{Coeffs: sum, Noise: states[0].Noise}, nil
}

// DirichletPool sums concentrations element-wise, pooling the evidence of
// every snapshot.
type DirichletPool struct{}

// Name implements Strategy.
func (DirichletPool) Name() string { return "dirichlet_pool" }

// Fuse implements Strategy.
func (DirichletPool) Fuse(states []belief.DirichletState) (belief.DirichletState, error) {
	if len(states) == 0 {
		return belief.DirichletState{Alpha: []float64{}}, nil
	}

	sum, err := sumVectors(len(states), func(i int) []float64 { return states[i].Alpha })
	if err != nil {
		return belief.DirichletState{}, err
	}
	return belief.DirichletState{Alpha: sum}, nil
}

func sumVectors(n int, at func(int) []float64) ([]float64, error) {
	width := len(at(0))
	out := make([]float64, width)
	for i := 0; i < n; i++ {
		v := at(i)
		if len(v) != width {
			return nil, fmt.Errorf("%w: input %d has length %d, want %d", ErrShapeMismatch, i, len(v), width)
		}
		for j, x := range v {
			out[j] += x
		}
	}
	return out, nil
}
