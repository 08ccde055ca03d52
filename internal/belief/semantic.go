package belief

import (
	"fmt"
	"math"
)

const (
	// ConfidenceGrowth is the factor applied to confidence on every update.
	ConfidenceGrowth = 1.1

	// MaxConfidence caps confidence so repeated updates stay finite.
	MaxConfidence = 1e6
)

// SemanticObservation carries an opaque payload.
type SemanticObservation[T any] struct {
	Signal T `json:"signal"`
}

// Semantic is a belief over an arbitrary payload with a scalar confidence.
type Semantic[T any] struct {
	state      T
	confidence float64
}

// NewSemantic creates a semantic belief with a positive confidence. Values
// above MaxConfidence are capped.
func NewSemantic[T any](state T, confidence float64) (*Semantic[T], error) {
	if !(confidence > 0) {
		return nil, fmt.Errorf("semantic confidence %v: %w", confidence, ErrNonPositiveUncertainty)
	}
	return &Semantic[T]{state: state, confidence: math.Min(confidence, MaxConfidence)}, nil
}

// State returns the current payload.
func (s *Semantic[T]) State() T { return s.state }

// Confidence returns the current confidence.
func (s *Semantic[T]) Confidence() float64 { return s.confidence }

// Observe returns the current payload.
func (s *Semantic[T]) Observe() (SemanticObservation[T], error) {
	return SemanticObservation[T]{Signal: s.state}, nil
}

// Prior returns the current posterior snapshot.
func (s *Semantic[T]) Prior() Posterior {
	return Posterior{Mean: s.Mean(), Entropy: s.Entropy(), Uncertainty: s.confidence}
}

// Update replaces the payload and grows confidence by ConfidenceGrowth, up
// to MaxConfidence.
func (s *Semantic[T]) Update(obs SemanticObservation[T]) error {
	s.state = obs.Signal
	s.confidence = floor(math.Min(s.confidence*ConfidenceGrowth, MaxConfidence))
	return nil
}

// Entropy returns 1/confidence.
func (s *Semantic[T]) Entropy() float64 { return 1 / s.confidence }

// Mean returns the confidence.
func (s *Semantic[T]) Mean() float64 { return s.confidence }

// Clone returns a shallow copy of the payload and confidence.
func (s *Semantic[T]) Clone() Belief[SemanticObservation[T]] {
	c := *s
	return &c
}
