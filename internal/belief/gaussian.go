package belief

import (
	"fmt"
	"math"
)

const (
	// DefaultJitter scales the uniform noise added to drawn observations.
	DefaultJitter = 0.1

	// DefaultObservationNoise is the noise reported with each drawn observation.
	DefaultObservationNoise = 0.1
)

// GaussianState is an immutable snapshot of a Gaussian belief.
type GaussianState struct {
	Mean     float64 `json:"mean" yaml:"mean"`
	Variance float64 `json:"variance" yaml:"variance"`
	Drift    float64 `json:"drift" yaml:"drift"` // semantic drift per observation
}

// GaussianObservation is a signal paired with its noise level.
type GaussianObservation struct {
	Signal float64 `json:"signal"`
	Noise  float64 `json:"noise"`
}

// Gaussian is a scalar normal belief updated with a Kalman gain.
type Gaussian struct {
	state  GaussianState
	src    Source
	jitter float64
	noise  float64
}

// NewGaussian creates a Gaussian belief from a prior snapshot.
func NewGaussian(prior GaussianState, src Source) (*Gaussian, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if !(prior.Variance > 0) {
		return nil, fmt.Errorf("gaussian variance %v: %w", prior.Variance, ErrNonPositiveUncertainty)
	}
	return &Gaussian{
		state:  prior,
		src:    src,
		jitter: DefaultJitter,
		noise:  DefaultObservationNoise,
	}, nil
}

// SetObservationModel overrides the jitter and reported noise of drawn
// observations. Non-positive noise is floored.
func (g *Gaussian) SetObservationModel(jitter, noise float64) {
	g.jitter = jitter
	g.noise = floor(noise)
}

// State returns a snapshot of the current state.
func (g *Gaussian) State() GaussianState { return g.state }

// Variance returns the current variance.
func (g *Gaussian) Variance() float64 { return g.state.Variance }

// Observe draws mean + drift + jitter*U[0,1).
func (g *Gaussian) Observe() (GaussianObservation, error) {
	signal := g.state.Mean + g.state.Drift + g.jitter*g.src.Float64()
	return GaussianObservation{Signal: signal, Noise: g.noise}, nil
}

// Prior returns the current posterior snapshot.
func (g *Gaussian) Prior() Posterior {
	return Posterior{Mean: g.state.Mean, Entropy: g.Entropy(), Uncertainty: g.state.Variance}
}

// Update applies g = var/(var+noise), mean += g*(signal-mean), var *= 1-g.
func (g *Gaussian) Update(obs GaussianObservation) error {
	if math.IsNaN(obs.Signal) || math.IsInf(obs.Signal, 0) {
		return fmt.Errorf("gaussian observation signal %v: not finite", obs.Signal)
	}
	if math.IsNaN(obs.Noise) || math.IsInf(obs.Noise, 0) {
		return fmt.Errorf("gaussian observation noise %v: not finite", obs.Noise)
	}
	k := gain(g.state.Variance, math.Max(obs.Noise, 0))
	g.state.Mean += k * (obs.Signal - g.state.Mean)
	g.state.Variance = floor(g.state.Variance * (1 - k))
	return nil
}

// Entropy returns the differential entropy 0.5*ln(2*pi*e*var).
func (g *Gaussian) Entropy() float64 {
	return 0.5 * math.Log(2*math.Pi*math.E*g.state.Variance)
}

// Mean returns the belief mean.
func (g *Gaussian) Mean() float64 { return g.state.Mean }

// Clone returns a copy sharing the random source.
func (g *Gaussian) Clone() Belief[GaussianObservation] {
	c := *g
	return &c
}
