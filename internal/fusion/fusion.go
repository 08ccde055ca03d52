// Package fusion combines independent belief snapshots into one. Strategies
// are pure: they never retain or mutate their inputs and may be called
// concurrently over independent slices.
package fusion

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Neil-Crago/coheron/internal/belief"
)

// DefaultEpsilon floors variances before inversion.
const DefaultEpsilon = 1e-6

// Strategy names accepted by Lookup.
const (
	NameInverseVariance    = "inverse_variance"
	NameResonanceModulated = "resonance_modulated"
)

var (
	// ErrShapeMismatch indicates snapshots whose vectors differ in length.
	ErrShapeMismatch = errors.New("fusion inputs have mismatched shapes")

	// ErrUnknownStrategy indicates a strategy name Lookup does not know.
	ErrUnknownStrategy = errors.New("unknown fusion strategy")
)

// Strategy fuses a batch of snapshots of shape S.
type Strategy[S any] interface {
	Fuse(states []S) (S, error)
	Name() string
}

// Neutral is the Gaussian result of fusing nothing.
var Neutral = belief.GaussianState{Mean: 0, Variance: 1, Drift: 0}

// Lookup returns the Gaussian strategy registered under name. amplitude is
// only used by the resonance-modulated strategy.
func Lookup(name string, amplitude float64) (Strategy[belief.GaussianState], error) {
	switch name {
	case NameInverseVariance, "":
		return InverseVariance{Epsilon: DefaultEpsilon}, nil
	case NameResonanceModulated:
		return ResonanceModulated{Amplitude: amplitude}, nil
	default:
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownStrategy, name, Names())
	}
}

// Names returns the registered Gaussian strategy names, sorted.
func Names() []string {
	names := []string{NameInverseVariance, NameResonanceModulated}
	sort.Strings(names)
	return names
}
