package config

import (
	"fmt"

	"github.com/Neil-Crago/coheron/internal/fusion"
	"github.com/Neil-Crago/coheron/internal/wavelet"
)

// Validate checks that the configuration is valid.
func (c *CoheronConfig) Validate() error {
	if err := c.Simulation.validate(); err != nil {
		return err
	}
	if err := c.Belief.validate(); err != nil {
		return err
	}
	if err := c.Field.validate(); err != nil {
		return err
	}
	if err := c.Entanglement.validate(); err != nil {
		return err
	}
	if err := c.Spectral.validate(); err != nil {
		return err
	}
	if err := c.Ensemble.validate(); err != nil {
		return err
	}

	if r := c.Telemetry.SampleRatio; !(r >= 0 && r <= 1) {
		return fmt.Errorf("telemetry sample_ratio must be in [0, 1], got %g", r)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	return nil
}

func (s SimulationConfig) validate() error {
	if s.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", s.Steps)
	}
	if s.DT <= 0 {
		return fmt.Errorf("dt must be positive, got %g", s.DT)
	}
	if s.Pace < 0 {
		return fmt.Errorf("pace must be non-negative, got %v", s.Pace)
	}
	switch s.Actuator {
	case ActuatorHold, ActuatorIntegrate:
	default:
		return fmt.Errorf("invalid actuator: %s (valid: hold, integrate)", s.Actuator)
	}
	switch s.Synthesizer {
	case SynthReference, SynthCoupled:
	default:
		return fmt.Errorf("invalid synthesizer: %s (valid: reference, coupled)", s.Synthesizer)
	}
	return nil
}

func (b BeliefConfig) validate() error {
	switch b.Kind {
	case BeliefGaussian, BeliefKalman:
		if b.Variance <= 0 {
			return fmt.Errorf("belief variance must be positive, got %g", b.Variance)
		}
	case BeliefPolynomial:
		if len(b.Coeffs) == 0 {
			return fmt.Errorf("polynomial belief requires coeffs")
		}
		if b.Noise <= 0 {
			return fmt.Errorf("polynomial noise must be positive, got %g", b.Noise)
		}
	case BeliefDirichlet:
		if len(b.Alpha) == 0 {
			return fmt.Errorf("dirichlet belief requires alpha")
		}
		for i, a := range b.Alpha {
			if a <= 0 {
				return fmt.Errorf("dirichlet alpha[%d] must be positive, got %g", i, a)
			}
		}
	default:
		return fmt.Errorf("invalid belief kind: %s (valid: gaussian, kalman, polynomial, dirichlet)", b.Kind)
	}
	return nil
}

func (f FieldConfig) validate() error {
	switch f.Kind {
	case FieldGrid:
		if f.Width <= 0 || f.Height <= 0 {
			return fmt.Errorf("grid size must be positive, got %dx%d", f.Width, f.Height)
		}
		for _, c := range f.Cells {
			if c.X < 0 || c.X >= f.Width || c.Y < 0 || c.Y >= f.Height {
				return fmt.Errorf("cell (%d, %d) outside %dx%d grid", c.X, c.Y, f.Width, f.Height)
			}
		}
	case FieldWave:
		if f.Wave.Max <= f.Wave.Min {
			return fmt.Errorf("wave range must be non-empty, got [%g, %g]", f.Wave.Min, f.Wave.Max)
		}
	default:
		return fmt.Errorf("invalid field kind: %s (valid: grid, wave)", f.Kind)
	}
	if f.Damping < 0 {
		return fmt.Errorf("damping must be non-negative, got %g", f.Damping)
	}
	return nil
}

func (e EntanglementConfig) validate() error {
	for i, c := range e.Couplings {
		if c.A == "" || c.B == "" {
			return fmt.Errorf("coupling %d requires both domains", i)
		}
	}
	h := e.Hebbian
	if h.LearningRate < 0 {
		return fmt.Errorf("hebbian learning_rate must be non-negative, got %g", h.LearningRate)
	}
	if h.MinStrength > h.MaxStrength {
		return fmt.Errorf("hebbian min_strength %g exceeds max_strength %g", h.MinStrength, h.MaxStrength)
	}
	return nil
}

func (s SpectralConfig) validate() error {
	if s.Level < 1 {
		return fmt.Errorf("spectral level must be at least 1, got %d", s.Level)
	}
	if s.Level > wavelet.MaxLevel {
		return fmt.Errorf("spectral level must be at most %d, got %d", wavelet.MaxLevel, s.Level)
	}
	for _, name := range s.Bases {
		if _, ok := wavelet.Lookup(name); !ok {
			return fmt.Errorf("unknown wavelet basis: %s (valid: %v)", name, wavelet.Names())
		}
	}
	switch s.Rule {
	case "", wavelet.RuleAverage, wavelet.RuleMaxAbs:
	default:
		return fmt.Errorf("invalid fusion rule: %s (valid: %s, %s)", s.Rule, wavelet.RuleAverage, wavelet.RuleMaxAbs)
	}
	if s.Threshold < 0 {
		return fmt.Errorf("spectral threshold must be non-negative, got %g", s.Threshold)
	}
	return nil
}

func (e EnsembleConfig) validate() error {
	if e.Members < 1 {
		return fmt.Errorf("ensemble members must be at least 1, got %d", e.Members)
	}
	if e.Concurrency < 0 {
		return fmt.Errorf("ensemble concurrency must be non-negative, got %d", e.Concurrency)
	}
	if _, err := fusion.Lookup(e.Strategy, e.Amplitude); err != nil {
		return err
	}
	return nil
}
