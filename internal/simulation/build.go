package simulation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Neil-Crago/coheron/internal/belief"
	"github.com/Neil-Crago/coheron/internal/config"
	"github.com/Neil-Crago/coheron/internal/entangle"
	"github.com/Neil-Crago/coheron/internal/field"
	"github.com/Neil-Crago/coheron/internal/synth"
	"github.com/Neil-Crago/coheron/internal/wavelet"
)

// NewAnalyzer builds the spectral analyzer described by sc.
func NewAnalyzer(sc config.SpectralConfig, logger *zap.Logger) *field.Analyzer {
	return field.NewAnalyzer(wavelet.NewService(logger), sc.FusionContext())
}

// BuildGrid creates the grid field described by fc.
func BuildGrid(fc config.FieldConfig, analyzer *field.Analyzer) (*field.GridField, error) {
	g, err := field.NewGridField(fc.Width, fc.Height,
		field.WithInitialValue(fc.Initial),
		field.WithDamping(fc.Damping),
		field.WithDomain(fc.Domain),
		field.WithAnalyzer(analyzer),
	)
	if err != nil {
		return nil, err
	}
	for _, c := range fc.Cells {
		if err := g.Set(c.X, c.Y, c.Value); err != nil {
			return nil, fmt.Errorf("cell (%d, %d): %w", c.X, c.Y, err)
		}
	}
	return g, nil
}

// BuildWave creates the wave field described by fc.
func BuildWave(fc config.FieldConfig, analyzer *field.Analyzer) (*field.WaveField, error) {
	wc := fc.Wave
	wc.Damping = fc.Damping
	if fc.Domain != "" {
		wc.Domain = fc.Domain
	}
	return field.NewWaveField(wc, analyzer)
}

// BuildEntanglement seeds a map with the configured couplings.
func BuildEntanglement(ec config.EntanglementConfig) *entangle.Map {
	m := entangle.New()
	for _, c := range ec.Couplings {
		m.UpdateCoupling(entangle.Domain(c.A), entangle.Domain(c.B), entangle.Coupling{
			Strength: c.Strength,
			Phase:    c.Phase,
		})
	}
	return m
}

// BuildSynthesizer returns the configured synthesizer.
func BuildSynthesizer(cfg *config.CoheronConfig) synth.Synthesizer {
	if cfg.Simulation.Synthesizer == config.SynthCoupled {
		return synth.Coupled{
			Source: entangle.Domain(cfg.Simulation.Domain),
			Target: entangle.Domain(cfg.Field.Domain),
			Gain:   cfg.Simulation.Gain,
		}
	}
	return synth.Reference{}
}

// Snapshot is the fusable state of a belief at the end of a run. Exactly
// one member is set.
type Snapshot struct {
	Gaussian   *belief.GaussianState   `json:"gaussian,omitempty" yaml:"gaussian,omitempty"`
	Polynomial *belief.PolynomialState `json:"polynomial,omitempty" yaml:"polynomial,omitempty"`
	Dirichlet  *belief.DirichletState  `json:"dirichlet,omitempty" yaml:"dirichlet,omitempty"`
}

// snapshotOf extracts the fusable state. Kalman beliefs are reported as the
// Gaussian marginal of their position.
func snapshotOf(b any) Snapshot {
	switch v := b.(type) {
	case *belief.Gaussian:
		s := v.State()
		return Snapshot{Gaussian: &s}
	case *belief.Kalman:
		k := v.State()
		return Snapshot{Gaussian: &belief.GaussianState{Mean: k.State[0], Variance: k.Covariance[0][0]}}
	case *belief.Polynomial:
		s := v.State()
		return Snapshot{Polynomial: &s}
	case *belief.Dirichlet:
		s := v.State()
		return Snapshot{Dirichlet: &s}
	default:
		return Snapshot{}
	}
}
