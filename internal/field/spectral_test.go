package field

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neil-Crago/coheron/internal/wavelet"
)

type failingDecomposer struct{ err error }

func (f failingDecomposer) Decompose([]float64, wavelet.FusionContext, int) (wavelet.Decomposition, error) {
	return wavelet.Decomposition{}, f.err
}

func (f failingDecomposer) Score([]float64, wavelet.FusionContext, int) (map[string]float64, error) {
	return nil, f.err
}

func TestSpectral_Unsupported(t *testing.T) {
	g := newGrid(t, 2, 2)
	_, err := g.Decompose(1)
	assert.ErrorIs(t, err, ErrSpectralUnsupported)
	_, err = g.BestBasis(1)
	assert.ErrorIs(t, err, ErrSpectralUnsupported)

	w, err := NewWaveField(DefaultWaveConfig(), nil)
	require.NoError(t, err)
	_, err = w.BestBasis(1)
	assert.ErrorIs(t, err, ErrSpectralUnsupported)
}

func TestSpectral_GridBestBasis(t *testing.T) {
	a := NewAnalyzer(wavelet.NewService(nil), wavelet.DefaultFusionContext())
	g := newGrid(t, 4, 2, WithAnalyzer(a), WithDomain("coherence"))
	for x := 0; x < 4; x++ {
		require.NoError(t, g.Set(x, 1, 5))
	}

	choice, err := g.BestBasis(2)
	require.NoError(t, err)
	assert.Equal(t, "coherence", choice.Domain)
	assert.Equal(t, "haar", choice.Basis)
	assert.Len(t, choice.Scores, 2)

	spec, err := g.Decompose(2)
	require.NoError(t, err)
	assert.Equal(t, wavelet.FusedBasis, spec.Decomposition.Basis)
	assert.Len(t, spec.Decomposition.Details, 2)
}

func TestSpectral_ErrorsPropagate(t *testing.T) {
	a := NewAnalyzer(wavelet.NewService(nil), wavelet.DefaultFusionContext())
	g := newGrid(t, 3, 1, WithAnalyzer(a))

	_, err := g.Decompose(2)
	assert.ErrorIs(t, err, wavelet.ErrSignalTooShort)

	boom := errors.New("boom")
	w, err := NewWaveField(DefaultWaveConfig(), NewAnalyzer(failingDecomposer{err: boom}, wavelet.FusionContext{}))
	require.NoError(t, err)
	_, err = w.Decompose(1)
	assert.ErrorIs(t, err, boom)
	_, err = w.BestBasis(1)
	assert.ErrorIs(t, err, boom)
}
