// Package belief implements uncertain estimates of a hidden quantity that
// are refined from noisy observations. Every variant keeps its uncertainty
// strictly positive: updates that would drive it to zero or below are
// clamped to MinUncertainty.
package belief

import (
	"errors"
	"math"
)

// MinUncertainty is the floor applied to variances, noise scales,
// concentrations and confidences after every update.
const MinUncertainty = 1e-9

var (
	// ErrEmptyState indicates a coefficient or concentration container is empty.
	ErrEmptyState = errors.New("belief state must not be empty")

	// ErrNonPositiveUncertainty indicates a prior with zero or negative uncertainty.
	ErrNonPositiveUncertainty = errors.New("belief uncertainty must be positive")

	// ErrCategoryOutOfRange indicates a category observation outside the concentration vector.
	ErrCategoryOutOfRange = errors.New("category out of range")

	// ErrNilSource indicates a belief was constructed without a random source.
	ErrNilSource = errors.New("random source is required")
)

// Belief is the capability set shared by every belief variant. O is the
// observation shape the variant draws and consumes.
type Belief[O any] interface {
	// Observe draws one sample consistent with the current state. It never
	// mutates the belief, although it advances the injected source.
	Observe() (O, error)

	// Prior returns the current belief as a posterior snapshot.
	Prior() Posterior

	// Update folds one observation into the state.
	Update(obs O) error

	// Entropy is a summary that grows monotonically with uncertainty.
	Entropy() float64

	// Mean is a single representative value of the state.
	Mean() float64

	// Clone returns an independent copy sharing only the random source.
	Clone() Belief[O]
}

// Posterior is the posterior-shaped snapshot handed to law synthesizers.
type Posterior struct {
	Mean        float64 `json:"mean" yaml:"mean"`
	Entropy     float64 `json:"entropy" yaml:"entropy"`
	Uncertainty float64 `json:"uncertainty" yaml:"uncertainty"`
}

// floor clamps v to MinUncertainty. NaN is treated as degenerate.
func floor(v float64) float64 {
	if math.IsNaN(v) || v < MinUncertainty {
		return MinUncertainty
	}
	return v
}

// gain returns the Kalman-style gain variance/(variance+noise).
func gain(variance, noise float64) float64 {
	denom := variance + noise
	if denom < MinUncertainty {
		denom = MinUncertainty
	}
	return variance / denom
}
