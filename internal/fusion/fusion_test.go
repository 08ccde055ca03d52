package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neil-Crago/coheron/internal/belief"
)

var (
	_ Strategy[belief.GaussianState]   = InverseVariance{}
	_ Strategy[belief.GaussianState]   = ResonanceModulated{}
	_ Strategy[belief.PolynomialState] = PolynomialAverage{}
	_ Strategy[belief.DirichletState]  = DirichletPool{}
)

func TestInverseVariance_TwoGaussians(t *testing.T) {
	s := InverseVariance{Epsilon: DefaultEpsilon}
	got, err := s.Fuse([]belief.GaussianState{
		{Mean: 0.4, Variance: 0.1},
		{Mean: 0.6, Variance: 0.3},
	})
	require.NoError(t, err)

	// weights 10 and 3.333
	assert.InDelta(t, 0.45, got.Mean, 1e-9)
	assert.InDelta(t, 0.075, got.Variance, 1e-9)
	assert.Zero(t, got.Drift)
}

func TestInverseVariance_Properties(t *testing.T) {
	s := InverseVariance{Epsilon: DefaultEpsilon}

	t.Run("idempotent on one input", func(t *testing.T) {
		in := belief.GaussianState{Mean: 0.3, Variance: 0.2}
		got, err := s.Fuse([]belief.GaussianState{in})
		require.NoError(t, err)
		assert.InDelta(t, in.Mean, got.Mean, 1e-12)
		assert.InDelta(t, in.Variance, got.Variance, 1e-12)
	})

	t.Run("copies keep the mean and divide the variance", func(t *testing.T) {
		in := belief.GaussianState{Mean: 0.3, Variance: 0.2}
		for _, n := range []int{2, 3, 10} {
			copies := make([]belief.GaussianState, n)
			for i := range copies {
				copies[i] = in
			}
			got, err := s.Fuse(copies)
			require.NoError(t, err)
			assert.InDelta(t, in.Mean, got.Mean, 1e-12, "n=%d", n)
			assert.InDelta(t, in.Variance/float64(n), got.Variance, 1e-12, "n=%d", n)
		}
	})

	t.Run("order independent", func(t *testing.T) {
		a := belief.GaussianState{Mean: 0.1, Variance: 0.5}
		b := belief.GaussianState{Mean: 0.9, Variance: 0.05}
		c := belief.GaussianState{Mean: -0.4, Variance: 1.2}

		x, err := s.Fuse([]belief.GaussianState{a, b, c})
		require.NoError(t, err)
		y, err := s.Fuse([]belief.GaussianState{c, a, b})
		require.NoError(t, err)

		assert.InDelta(t, x.Mean, y.Mean, 1e-12)
		assert.InDelta(t, x.Variance, y.Variance, 1e-12)
	})

	t.Run("zero variance floored", func(t *testing.T) {
		got, err := s.Fuse([]belief.GaussianState{{Mean: 1, Variance: 0}})
		require.NoError(t, err)
		assert.InDelta(t, 1, got.Mean, 1e-12)
		assert.InDelta(t, DefaultEpsilon, got.Variance, 1e-15)
	})

	t.Run("empty is neutral", func(t *testing.T) {
		got, err := s.Fuse(nil)
		require.NoError(t, err)
		assert.Equal(t, Neutral, got)
	})
}

func TestResonanceModulated(t *testing.T) {
	s := ResonanceModulated{Amplitude: 2}
	got, err := s.Fuse([]belief.GaussianState{
		{Mean: 0.2, Variance: 5},
		{Mean: 0.4, Variance: 0.001},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, got.Mean, 1e-12)
	assert.Equal(t, ModulatedVariance, got.Variance)

	empty, err := s.Fuse(nil)
	require.NoError(t, err)
	assert.Equal(t, Neutral, empty)
}

func TestPolynomialAverage(t *testing.T) {
	s := PolynomialAverage{}

	got, err := s.Fuse([]belief.PolynomialState{
		{Coeffs: []float64{1, 2, 3}, Noise: 0.2},
		{Coeffs: []float64{3, 4, 5}, Noise: 0.4},
	})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 3, 4}, got.Coeffs, 1e-12)
	assert.Equal(t, 0.2, got.Noise)

	empty, err := s.Fuse(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Coeffs)
	assert.Equal(t, EmptyPolynomialNoise, empty.Noise)

	_, err = s.Fuse([]belief.PolynomialState{
		{Coeffs: []float64{1, 2}},
		{Coeffs: []float64{1}},
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestPolynomialAverage_DoesNotAliasInput(t *testing.T) {
	in := []belief.PolynomialState{{Coeffs: []float64{1, 1}}}
	got, err := PolynomialAverage{}.Fuse(in)
	require.NoError(t, err)

	got.Coeffs[0] = 99
	assert.Equal(t, 1.0, in[0].Coeffs[0])
}

func TestDirichletPool(t *testing.T) {
	s := DirichletPool{}

	got, err := s.Fuse([]belief.DirichletState{
		{Alpha: []float64{1, 2}},
		{Alpha: []float64{3, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 3}, got.Alpha)

	empty, err := s.Fuse(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Alpha)

	_, err = s.Fuse([]belief.DirichletState{
		{Alpha: []float64{1}},
		{Alpha: []float64{1, 1}},
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", NameInverseVariance, false},
		{NameInverseVariance, NameInverseVariance, false},
		{NameResonanceModulated, NameResonanceModulated, false},
		{"majority", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Lookup(tt.name, 1)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}
}
