// Package field holds the spatial state an agent senses and perturbs.
// A field turns a position into a gradient, the gradient into a resonance,
// and accepts resonance back through Propagate, its only mutator.
package field

import (
	"errors"
	"math"
)

// DefaultDamping scales the resonance amplitude fed back by Propagate.
const DefaultDamping = 0.01

var (
	// ErrOutOfRange indicates a position outside the field's addressable extent.
	ErrOutOfRange = errors.New("position out of range")

	// ErrInvalidExtent indicates a field constructed with an empty extent.
	ErrInvalidExtent = errors.New("field extent must be positive")
)

// Field is the capability set of a resonance field over positions P.
// Observe and ComputeResonance never mutate the field. Propagate either
// applies its increment or returns an error without touching state.
type Field[P any] interface {
	Observe(pos P) (Gradient, error)
	ComputeResonance(pos P) (Resonance, error)
	Propagate(pos P, influence Resonance) error
}

// Point is a position on a two-dimensional field.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Gradient is the local directional change of a field's signal.
type Gradient struct {
	Direction []float64 `json:"direction"`
	Magnitude float64   `json:"magnitude"`
}

// Resonance is a field's scalar response at a position.
type Resonance struct {
	Amplitude float64 `json:"amplitude"`
	Frequency float64 `json:"frequency"`
}

// resonanceOf derives amplitude from the gradient magnitude and frequency
// from the sum of absolute directional components.
func resonanceOf(g Gradient) Resonance {
	var freq float64
	for _, c := range g.Direction {
		freq += math.Abs(c)
	}
	return Resonance{Amplitude: g.Magnitude, Frequency: freq}
}
