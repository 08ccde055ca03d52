package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neil-Crago/coheron/internal/belief"
	"github.com/Neil-Crago/coheron/internal/entangle"
	"github.com/Neil-Crago/coheron/internal/field"
)

var (
	_ Synthesizer = Reference{}
	_ Synthesizer = Coupled{}
)

func TestReference(t *testing.T) {
	tests := []struct {
		name string
		post belief.Posterior
		res  field.Resonance
		want ControlLaw
	}{
		{"midpoint", belief.Posterior{Mean: 0.5}, field.Resonance{Amplitude: 2, Frequency: 4}, ControlLaw{Torque: 1, Alignment: 2}},
		{"certain", belief.Posterior{Mean: 1}, field.Resonance{Amplitude: 3, Frequency: 1}, ControlLaw{Torque: 0, Alignment: 1}},
		{"silent field", belief.Posterior{Mean: 0.25}, field.Resonance{}, ControlLaw{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reference{}.Synthesize(tt.post, tt.res, entangle.New())
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Torque, got.Torque, 1e-12)
			assert.InDelta(t, tt.want.Alignment, got.Alignment, 1e-12)
		})
	}
}

func TestReference_Deterministic(t *testing.T) {
	post := belief.Posterior{Mean: 0.37, Entropy: 1, Uncertainty: 0.2}
	res := field.Resonance{Amplitude: 0.8, Frequency: 1.3}

	a, err := Reference{}.Synthesize(post, res, nil)
	require.NoError(t, err)
	b, err := Reference{}.Synthesize(post, res, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReference_NonFinite(t *testing.T) {
	_, err := Reference{}.Synthesize(belief.Posterior{Mean: math.NaN()}, field.Resonance{Amplitude: 1}, nil)
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Reference{}.Synthesize(belief.Posterior{}, field.Resonance{Frequency: math.Inf(1)}, nil)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestCoupled(t *testing.T) {
	post := belief.Posterior{Mean: 0.5}
	res := field.Resonance{Amplitude: 2, Frequency: 4}

	t.Run("unentangled matches reference", func(t *testing.T) {
		s := Coupled{Source: "belief", Target: "field", Gain: 3}
		got, err := s.Synthesize(post, res, entangle.New())
		require.NoError(t, err)
		assert.Equal(t, ControlLaw{Torque: 1, Alignment: 2}, got)
	})

	t.Run("strength scales law", func(t *testing.T) {
		m := entangle.New()
		m.UpdateCoupling("field", "belief", entangle.Coupling{Strength: 0.5})

		s := Coupled{Source: "belief", Target: "field", Gain: 2}
		got, err := s.Synthesize(post, res, m)
		require.NoError(t, err)
		assert.InDelta(t, 2, got.Torque, 1e-12)
		assert.InDelta(t, 4, got.Alignment, 1e-12)
	})

	t.Run("phase rotates alignment", func(t *testing.T) {
		m := entangle.New()
		m.UpdateCoupling("belief", "field", entangle.Coupling{Phase: math.Pi / 2})

		s := Coupled{Source: "belief", Target: "field", Gain: 1}
		got, err := s.Synthesize(post, res, m)
		require.NoError(t, err)
		assert.InDelta(t, 1, got.Torque, 1e-12)
		assert.InDelta(t, 0, got.Alignment, 1e-12)
	})

	t.Run("does not modify map", func(t *testing.T) {
		m := entangle.New()
		_, err := Coupled{Source: "a", Target: "b", Gain: 1}.Synthesize(post, res, m)
		require.NoError(t, err)
		assert.Zero(t, m.Len())
	})
}
