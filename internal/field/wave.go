package field

import (
	"fmt"
	"math"
)

// DefaultSamples is the number of points Signal samples across the range.
const DefaultSamples = 64

// WaveConfig describes a one-dimensional sinusoidal field.
type WaveConfig struct {
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Gain    float64 `json:"gain" yaml:"gain"`
	Phase   float64 `json:"phase" yaml:"phase"`
	Damping float64 `json:"damping" yaml:"damping"`
	Samples int     `json:"samples" yaml:"samples"`
	Domain  string  `json:"domain" yaml:"domain"`
}

// DefaultWaveConfig spans [0, 2π) with unit gain.
func DefaultWaveConfig() WaveConfig {
	return WaveConfig{
		Min:     0,
		Max:     2 * math.Pi,
		Gain:    1,
		Damping: DefaultDamping,
		Samples: DefaultSamples,
		Domain:  "wave",
	}
}

// WaveField is s(x) = gain*sin(x + phase) on [Min, Max]. Propagate shifts
// the phase.
type WaveField struct {
	cfg      WaveConfig
	analyzer *Analyzer
}

// NewWaveField creates a wave field. The analyzer may be nil.
func NewWaveField(cfg WaveConfig, analyzer *Analyzer) (*WaveField, error) {
	if !(cfg.Max > cfg.Min) {
		return nil, fmt.Errorf("wave range [%g, %g]: %w", cfg.Min, cfg.Max, ErrInvalidExtent)
	}
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}
	if cfg.Domain == "" {
		cfg.Domain = "wave"
	}
	return &WaveField{cfg: cfg, analyzer: analyzer}, nil
}

// Phase returns the current phase offset.
func (w *WaveField) Phase() float64 { return w.cfg.Phase }

func (w *WaveField) check(x float64) error {
	if math.IsNaN(x) || x < w.cfg.Min || x > w.cfg.Max {
		return fmt.Errorf("position %g outside [%g, %g]: %w", x, w.cfg.Min, w.cfg.Max, ErrOutOfRange)
	}
	return nil
}

// Observe returns the derivative gain*cos(x + phase).
func (w *WaveField) Observe(x float64) (Gradient, error) {
	if err := w.check(x); err != nil {
		return Gradient{}, err
	}
	d := w.cfg.Gain * math.Cos(x+w.cfg.Phase)
	return Gradient{Direction: []float64{d}, Magnitude: math.Abs(d)}, nil
}

// ComputeResonance returns amplitude |gain*cos(x+phase)| and frequency
// 1 + sin(x+phase).
func (w *WaveField) ComputeResonance(x float64) (Resonance, error) {
	grad, err := w.Observe(x)
	if err != nil {
		return Resonance{}, err
	}
	return Resonance{Amplitude: grad.Magnitude, Frequency: 1 + math.Sin(x+w.cfg.Phase)}, nil
}

// Propagate advances the phase by amplitude*damping.
func (w *WaveField) Propagate(x float64, influence Resonance) error {
	if err := w.check(x); err != nil {
		return err
	}
	w.cfg.Phase = math.Remainder(w.cfg.Phase+influence.Amplitude*w.cfg.Damping, 2*math.Pi)
	return nil
}

// Signal samples the field uniformly over [Min, Max).
func (w *WaveField) Signal() []float64 {
	n := w.cfg.Samples
	step := (w.cfg.Max - w.cfg.Min) / float64(n)
	out := make([]float64, n)
	for i := range out {
		x := w.cfg.Min + float64(i)*step
		out[i] = w.cfg.Gain * math.Sin(x+w.cfg.Phase)
	}
	return out
}

// Domain returns the field's domain label.
func (w *WaveField) Domain() string { return w.cfg.Domain }

// Decompose runs the injected analyzer over the sampled signal.
func (w *WaveField) Decompose(level int) (Spectrum, error) {
	if w.analyzer == nil {
		return Spectrum{}, ErrSpectralUnsupported
	}
	return w.analyzer.Decompose(w, level)
}

// BestBasis scores candidate bases over the sampled signal.
func (w *WaveField) BestBasis(level int) (BasisChoice, error) {
	if w.analyzer == nil {
		return BasisChoice{}, ErrSpectralUnsupported
	}
	return w.analyzer.BestBasis(w, level)
}
