package belief

import (
	"fmt"
	"math"
)

// DirichletState is an immutable snapshot of a categorical belief.
type DirichletState struct {
	Alpha []float64 `json:"alpha" yaml:"alpha"`
}

// CategoryObservation is one observed category index.
type CategoryObservation struct {
	Category int `json:"category"`
}

// Dirichlet is a belief over K categories with concentration parameters.
type Dirichlet struct {
	alpha []float64
	src   Source
}

// NewDirichlet creates a Dirichlet belief. Every concentration must be positive.
func NewDirichlet(prior DirichletState, src Source) (*Dirichlet, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if len(prior.Alpha) == 0 {
		return nil, fmt.Errorf("dirichlet concentration: %w", ErrEmptyState)
	}
	for i, a := range prior.Alpha {
		if !(a > 0) {
			return nil, fmt.Errorf("dirichlet alpha[%d] = %v: %w", i, a, ErrNonPositiveUncertainty)
		}
	}
	return &Dirichlet{alpha: append([]float64(nil), prior.Alpha...), src: src}, nil
}

// State returns a snapshot with a copy of the concentrations.
func (d *Dirichlet) State() DirichletState {
	return DirichletState{Alpha: append([]float64(nil), d.alpha...)}
}

// Probabilities returns alpha normalised to sum to one.
func (d *Dirichlet) Probabilities() []float64 {
	var sum float64
	for _, a := range d.alpha {
		sum += a
	}
	p := make([]float64, len(d.alpha))
	for i, a := range d.alpha {
		p[i] = a / sum
	}
	return p
}

// Observe draws a uniformly random category.
func (d *Dirichlet) Observe() (CategoryObservation, error) {
	if len(d.alpha) == 0 {
		return CategoryObservation{}, ErrEmptyState
	}
	return CategoryObservation{Category: d.src.Intn(len(d.alpha))}, nil
}

// Prior returns the current posterior snapshot. Uncertainty is the total
// concentration mass.
func (d *Dirichlet) Prior() Posterior {
	var mass float64
	for _, a := range d.alpha {
		mass += a
	}
	return Posterior{Mean: d.Mean(), Entropy: d.Entropy(), Uncertainty: mass}
}

// Update adds one pseudo-count to the observed category.
func (d *Dirichlet) Update(obs CategoryObservation) error {
	if len(d.alpha) == 0 {
		return ErrEmptyState
	}
	if obs.Category < 0 || obs.Category >= len(d.alpha) {
		return fmt.Errorf("category %d of %d: %w", obs.Category, len(d.alpha), ErrCategoryOutOfRange)
	}
	d.alpha[obs.Category] = floor(d.alpha[obs.Category] + 1)
	return nil
}

// Entropy returns the Shannon entropy of the normalised concentrations,
// divided by ln K so the result lies in [0, 1].
func (d *Dirichlet) Entropy() float64 {
	if len(d.alpha) < 2 {
		return 0
	}
	var h float64
	for _, p := range d.Probabilities() {
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h / math.Log(float64(len(d.alpha)))
}

// Mean returns the expected category index normalised to [0, 1].
func (d *Dirichlet) Mean() float64 {
	if len(d.alpha) < 2 {
		return 0
	}
	var m float64
	for i, p := range d.Probabilities() {
		m += p * float64(i)
	}
	return m / float64(len(d.alpha)-1)
}

// Clone returns a deep copy sharing the random source.
func (d *Dirichlet) Clone() Belief[CategoryObservation] {
	return &Dirichlet{alpha: append([]float64(nil), d.alpha...), src: d.src}
}
