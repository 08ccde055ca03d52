package belief

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceSource_Cycles(t *testing.T) {
	s := NewSequenceSource(0.1, 0.2, 0.3)

	got := []float64{s.Float64(), s.Float64(), s.Float64(), s.Float64()}
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.1}, got)
}

func TestSequenceSource_Intn(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		n     int
		want  int
	}{
		{"zero", 0, 4, 0},
		{"middle", 0.5, 4, 2},
		{"upper edge clamps", 1, 4, 3},
		{"negative clamps", -0.5, 4, 0},
		{"non-positive n", 0.5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewSequenceSource(tt.value).Intn(tt.n))
		})
	}
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := NewSeededSource(42)
	b := NewSeededSource(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestEmptySequenceSource(t *testing.T) {
	s := NewSequenceSource()
	assert.Equal(t, 0.0, s.Float64())
}
