package belief

import "math/rand"

// Source is the randomness a belief draws observations from.
// *math/rand.Rand satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewSeededSource returns a pseudo-random source with a fixed seed.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// SequenceSource replays a fixed sequence of values, cycling when exhausted.
// It is not safe for concurrent use.
type SequenceSource struct {
	values []float64
	next   int
}

// NewSequenceSource creates a source that cycles through values.
// With no values it behaves like ConstantSource(0).
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: append([]float64(nil), values...)}
}

// Float64 returns the next value in the sequence.
func (s *SequenceSource) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// Intn scales the next value into [0, n).
func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	k := int(s.Float64() * float64(n))
	if k < 0 {
		return 0
	}
	if k >= n {
		return n - 1
	}
	return k
}

// ConstantSource always returns the same value.
type ConstantSource float64

// Float64 returns the constant.
func (c ConstantSource) Float64() float64 { return float64(c) }

// Intn scales the constant into [0, n).
func (c ConstantSource) Intn(n int) int {
	return NewSequenceSource(float64(c)).Intn(n)
}
