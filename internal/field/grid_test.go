package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Field[Point]   = (*GridField)(nil)
	_ Field[float64] = (*WaveField)(nil)
	_ SignalSource   = (*GridField)(nil)
	_ SignalSource   = (*WaveField)(nil)
)

func newGrid(t *testing.T, w, h int, opts ...GridOption) *GridField {
	t.Helper()
	g, err := NewGridField(w, h, opts...)
	require.NoError(t, err)
	return g
}

func TestNewGridField_InvalidExtent(t *testing.T) {
	_, err := NewGridField(0, 3)
	assert.ErrorIs(t, err, ErrInvalidExtent)
}

func TestGridField_Observe(t *testing.T) {
	g := newGrid(t, 3, 3)
	require.NoError(t, g.Set(0, 1, 0.2))
	require.NoError(t, g.Set(1, 0, 0.8))
	require.NoError(t, g.Set(1, 1, 0.5))

	grad, err := g.Observe(Point{X: 1, Y: 1})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{-0.3, 0.3}, grad.Direction, 1e-12)
	assert.InDelta(t, math.Hypot(0.3, 0.3), grad.Magnitude, 1e-12)

	res, err := g.ComputeResonance(Point{X: 1.9, Y: 1.2})
	require.NoError(t, err)
	assert.InDelta(t, grad.Magnitude, res.Amplitude, 1e-12)
	assert.InDelta(t, 0.6, res.Frequency, 1e-12)
}

func TestGridField_ObserveAtOrigin(t *testing.T) {
	g := newGrid(t, 2, 2, WithInitialValue(0.3))

	grad, err := g.Observe(Point{})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0}, grad.Direction)
	assert.Equal(t, 0.0, grad.Magnitude)
}

func TestGridField_OutOfRange(t *testing.T) {
	g := newGrid(t, 4, 2)

	tests := []struct {
		name string
		pos  Point
	}{
		{"negative x", Point{X: -0.1, Y: 0}},
		{"negative y", Point{X: 0, Y: -1}},
		{"x at width", Point{X: 4, Y: 0}},
		{"y at height", Point{X: 0, Y: 2}},
		{"NaN", Point{X: math.NaN(), Y: 0}},
		{"infinite", Point{X: math.Inf(1), Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Observe(tt.pos)
			assert.ErrorIs(t, err, ErrOutOfRange)
			_, err = g.ComputeResonance(tt.pos)
			assert.ErrorIs(t, err, ErrOutOfRange)
			assert.ErrorIs(t, g.Propagate(tt.pos, Resonance{Amplitude: 1}), ErrOutOfRange)
		})
	}

	for _, v := range g.Signal() {
		assert.Equal(t, DefaultGridValue, v)
	}
}

func TestGridField_Propagate(t *testing.T) {
	g := newGrid(t, 2, 2, WithDamping(0.5))

	require.NoError(t, g.Propagate(Point{X: 1, Y: 1}, Resonance{Amplitude: 0.4}))

	v, err := g.At(Point{X: 1, Y: 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.7, v, 1e-12)

	other, err := g.At(Point{X: 0, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, DefaultGridValue, other)
}

func TestGridField_ObserveIsReadOnly(t *testing.T) {
	g := newGrid(t, 3, 3)
	require.NoError(t, g.Set(2, 2, 1))
	before := g.Signal()

	_, err := g.ComputeResonance(Point{X: 2, Y: 2})
	require.NoError(t, err)

	assert.Equal(t, before, g.Signal())
}
