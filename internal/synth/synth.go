// Package synth turns a belief posterior and a field resonance into a
// control law. Synthesizers are pure: equal inputs always yield equal laws.
package synth

import (
	"errors"
	"math"

	"github.com/Neil-Crago/coheron/internal/belief"
	"github.com/Neil-Crago/coheron/internal/entangle"
	"github.com/Neil-Crago/coheron/internal/field"
)

// ErrNonFinite indicates a NaN or infinite input.
var ErrNonFinite = errors.New("non-finite synthesizer input")

// ControlLaw is the actuation derived from belief and resonance.
type ControlLaw struct {
	Torque    float64 `json:"torque"`
	Alignment float64 `json:"alignment"`
}

// Synthesizer derives a control law. The entanglement reader may be
// consulted but is never modified.
type Synthesizer interface {
	Synthesize(post belief.Posterior, res field.Resonance, ent entangle.Reader) (ControlLaw, error)
}

// Reference applies torque = amplitude*(1-mean) and alignment = frequency*mean.
type Reference struct{}

// Synthesize implements Synthesizer.
func (Reference) Synthesize(post belief.Posterior, res field.Resonance, _ entangle.Reader) (ControlLaw, error) {
	if !finite(post.Mean, res.Amplitude, res.Frequency) {
		return ControlLaw{}, ErrNonFinite
	}
	return ControlLaw{
		Torque:    res.Amplitude * (1 - post.Mean),
		Alignment: res.Frequency * post.Mean,
	}, nil
}

// Coupled scales the reference law by the entanglement between Source and
// Target: both components grow by 1+Gain*strength and the alignment is
// rotated by the coupling phase. An unentangled pair yields the reference law.
type Coupled struct {
	Source entangle.Domain
	Target entangle.Domain
	Gain   float64
}

// Synthesize implements Synthesizer.
func (c Coupled) Synthesize(post belief.Posterior, res field.Resonance, ent entangle.Reader) (ControlLaw, error) {
	law, err := Reference{}.Synthesize(post, res, ent)
	if err != nil {
		return ControlLaw{}, err
	}
	if ent == nil {
		return law, nil
	}

	cp := ent.Coupling(c.Source, c.Target)
	if !finite(cp.Strength, cp.Phase, c.Gain) {
		return ControlLaw{}, ErrNonFinite
	}

	scale := 1 + c.Gain*cp.Strength
	law.Torque *= scale
	law.Alignment *= scale * math.Cos(cp.Phase)
	return law, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
