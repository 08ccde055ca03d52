package fusion

import (
	"math"

	"github.com/Neil-Crago/coheron/internal/belief"
)

// InverseVariance weights each snapshot by 1/max(variance, Epsilon). The
// fused variance is the reciprocal of the total weight and drift is reset.
type InverseVariance struct {
	Epsilon float64
}

// Name implements Strategy.
func (InverseVariance) Name() string { return NameInverseVariance }

// Fuse implements Strategy.
func (s InverseVariance) Fuse(states []belief.GaussianState) (belief.GaussianState, error) {
	if len(states) == 0 {
		return Neutral, nil
	}

	eps := s.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	var weighted, total float64
	for _, st := range states {
		w := 1 / math.Max(st.Variance, eps)
		weighted += st.Mean * w
		total += w
	}

	return belief.GaussianState{
		Mean:     weighted / total,
		Variance: 1 / total,
	}, nil
}

// ResonanceModulated averages means scaled by Amplitude. The fused variance
// is fixed at ModulatedVariance regardless of the inputs.
type ResonanceModulated struct {
	Amplitude float64
}

// ModulatedVariance is the variance reported by ResonanceModulated.
const ModulatedVariance = 0.1

// Name implements Strategy.
func (ResonanceModulated) Name() string { return NameResonanceModulated }

// Fuse implements Strategy.
func (s ResonanceModulated) Fuse(states []belief.GaussianState) (belief.GaussianState, error) {
	if len(states) == 0 {
		return Neutral, nil
	}

	var sum float64
	for _, st := range states {
		sum += st.Mean * s.Amplitude
	}

	return belief.GaussianState{
		Mean:     sum / float64(len(states)),
		Variance: ModulatedVariance,
	}, nil
}
