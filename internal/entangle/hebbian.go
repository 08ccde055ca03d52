package entangle

import "math"

// HebbianConfig configures Oja-stabilised reinforcement of coupling strength.
type HebbianConfig struct {
	// LearningRate (eta) controls how fast strengths adapt. Default: 0.05.
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// MinStrength is the floor for reinforced strengths. Default: 0.01.
	MinStrength float64 `json:"min_strength" yaml:"min_strength"`

	// MaxStrength is the ceiling for reinforced strengths. Default: 0.95.
	MaxStrength float64 `json:"max_strength" yaml:"max_strength"`
}

// DefaultHebbianConfig returns the default reinforcement configuration.
func DefaultHebbianConfig() HebbianConfig {
	return HebbianConfig{
		LearningRate: 0.05,
		MinStrength:  0.01,
		MaxStrength:  0.95,
	}
}

// OjaUpdate computes the new strength using Oja's rule:
//
//	dW = eta * (A_a * A_b - A_b^2 * W)
//
// The A_b^2 * W term keeps the strength bounded under repeated
// co-activation. The result is clamped to [MinStrength, MaxStrength].
func OjaUpdate(strength, activationA, activationB float64, cfg HebbianConfig) float64 {
	hebbian := activationA * activationB
	forgetting := activationB * activationB * strength
	dw := cfg.LearningRate * (hebbian - forgetting)
	return clampStrength(strength+dw, cfg.MinStrength, cfg.MaxStrength)
}

// Reinforce applies OjaUpdate to the pair's strength and returns the
// updated coupling. The phase is left unchanged.
func (m *Map) Reinforce(a, b Domain, activationA, activationB float64, cfg HebbianConfig) Coupling {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := canonical(a, b)
	if key.a != a {
		activationA, activationB = activationB, activationA
	}
	c := m.couplings[key]
	c.Strength = OjaUpdate(c.Strength, activationA, activationB, cfg)
	m.couplings[key] = c
	return c
}

func clampStrength(w, lo, hi float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return lo
	}
	if w < lo {
		return lo
	}
	if w > hi {
		return hi
	}
	return w
}
