package belief

import (
	"fmt"
	"math"
)

// DefaultLearningRate is the gradient step applied per polynomial update.
const DefaultLearningRate = 0.01

// PolynomialState is an immutable snapshot of a polynomial belief.
// Coeffs[i] multiplies x^i.
type PolynomialState struct {
	Coeffs []float64 `json:"coeffs" yaml:"coeffs"`
	Noise  float64   `json:"noise" yaml:"noise"`
}

// PolynomialObservation is one (input, output) sample of the curve.
type PolynomialObservation struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// Polynomial is a belief over polynomial coefficients refined by gradient steps.
type Polynomial struct {
	coeffs []float64
	noise  float64
	rate   float64
	src    Source
}

// NewPolynomial creates a polynomial belief. The coefficient slice is copied.
func NewPolynomial(prior PolynomialState, src Source) (*Polynomial, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if len(prior.Coeffs) == 0 {
		return nil, fmt.Errorf("polynomial coefficients: %w", ErrEmptyState)
	}
	if !(prior.Noise > 0) {
		return nil, fmt.Errorf("polynomial noise %v: %w", prior.Noise, ErrNonPositiveUncertainty)
	}
	return &Polynomial{
		coeffs: append([]float64(nil), prior.Coeffs...),
		noise:  prior.Noise,
		rate:   DefaultLearningRate,
		src:    src,
	}, nil
}

// State returns a snapshot with a copy of the coefficients.
func (p *Polynomial) State() PolynomialState {
	return PolynomialState{Coeffs: append([]float64(nil), p.coeffs...), Noise: p.noise}
}

// Eval evaluates the polynomial at x.
func (p *Polynomial) Eval(x float64) float64 {
	var y float64
	for i, c := range p.coeffs {
		y += c * math.Pow(x, float64(i))
	}
	return y
}

// Observe samples x ~ U[0,1) and returns (x, f(x) + noise*U[0,1)).
func (p *Polynomial) Observe() (PolynomialObservation, error) {
	if len(p.coeffs) == 0 {
		return PolynomialObservation{}, ErrEmptyState
	}
	x := p.src.Float64()
	return PolynomialObservation{Input: x, Output: p.Eval(x) + p.noise*p.src.Float64()}, nil
}

// Prior returns the current posterior snapshot.
func (p *Polynomial) Prior() Posterior {
	return Posterior{Mean: p.Mean(), Entropy: p.Entropy(), Uncertainty: p.noise}
}

// Update moves each coefficient by rate * x^i * (y - c_i).
func (p *Polynomial) Update(obs PolynomialObservation) error {
	if len(p.coeffs) == 0 {
		return ErrEmptyState
	}
	for i, c := range p.coeffs {
		grad := math.Pow(obs.Input, float64(i)) * (obs.Output - c)
		p.coeffs[i] = c + p.rate*grad
	}
	p.noise = floor(p.noise)
	return nil
}

// Entropy returns the sum of ln|c_i|, each term floored at MinUncertainty.
func (p *Polynomial) Entropy() float64 {
	var h float64
	for _, c := range p.coeffs {
		h += math.Log(math.Max(math.Abs(c), MinUncertainty))
	}
	return h
}

// Mean returns the constant term.
func (p *Polynomial) Mean() float64 {
	if len(p.coeffs) == 0 {
		return 0
	}
	return p.coeffs[0]
}

// Clone returns a deep copy sharing the random source.
func (p *Polynomial) Clone() Belief[PolynomialObservation] {
	c := *p
	c.coeffs = append([]float64(nil), p.coeffs...)
	return &c
}
