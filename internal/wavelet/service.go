package wavelet

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// FusedBasis is the basis name reported for fused decompositions.
const FusedBasis = "fused"

// Fusion rules for combining coefficients across bases.
const (
	RuleAverage = "average"
	RuleMaxAbs  = "max_abs"
)

// FusionContext selects the candidate bases and how their coefficients
// are combined.
type FusionContext struct {
	// Bases lists candidate basis names. Empty means every registered basis.
	Bases []string `json:"bases" yaml:"bases"`

	// Weights biases the average rule per basis. Missing entries weigh 1.
	Weights map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`

	// Rule is RuleAverage (default) or RuleMaxAbs.
	Rule string `json:"rule" yaml:"rule"`
}

// DefaultFusionContext averages every registered basis with equal weight.
func DefaultFusionContext() FusionContext {
	return FusionContext{Bases: Names(), Rule: RuleAverage}
}

func (c FusionContext) bases() ([]Basis, error) {
	switch c.Rule {
	case "", RuleAverage, RuleMaxAbs:
	default:
		return nil, fmt.Errorf("rule %q: %w", c.Rule, ErrUnknownRule)
	}
	names := c.Bases
	if len(names) == 0 {
		names = Names()
	}
	out := make([]Basis, 0, len(names))
	for _, n := range names {
		b, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("basis %q: %w", n, ErrUnknownBasis)
		}
		out = append(out, b)
	}
	return out, nil
}

func (c FusionContext) weight(name string) float64 {
	if w, ok := c.Weights[name]; ok {
		return w
	}
	return 1
}

// Service decomposes, fuses, scores and smooths signals.
type Service struct {
	logger *zap.Logger
}

// NewService creates a wavelet service. A nil logger is replaced by a no-op logger.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Decompose transforms signal with every candidate basis and fuses the
// coefficients band by band according to the context's rule.
func (s *Service) Decompose(signal []float64, fctx FusionContext, level int) (Decomposition, error) {
	bases, err := fctx.bases()
	if err != nil {
		return Decomposition{}, err
	}

	decs := make([]Decomposition, 0, len(bases))
	weights := make([]float64, 0, len(bases))
	for _, b := range bases {
		d, err := Transform(signal, b, level)
		if err != nil {
			return Decomposition{}, fmt.Errorf("decompose with %s: %w", b.Name, err)
		}
		decs = append(decs, d)
		weights = append(weights, fctx.weight(b.Name))
	}

	fused := Decomposition{
		Basis:         FusedBasis,
		Level:         level,
		Approximation: fuseBand(fctx.Rule, weights, decs, func(d Decomposition) []float64 { return d.Approximation }),
		Details:       make([][]float64, level),
	}
	for l := 0; l < level; l++ {
		fused.Details[l] = fuseBand(fctx.Rule, weights, decs, func(d Decomposition) []float64 { return d.Details[l] })
	}

	s.logger.Debug("fused decomposition",
		zap.Int("bases", len(decs)),
		zap.Int("level", level),
		zap.String("rule", fctx.Rule),
		zap.Float64("energy", fused.Energy()))

	return fused, nil
}

// Score returns the energy compaction of every candidate basis.
func (s *Service) Score(signal []float64, fctx FusionContext, level int) (map[string]float64, error) {
	bases, err := fctx.bases()
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(bases))
	for _, b := range bases {
		d, err := Transform(signal, b, level)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", b.Name, err)
		}
		scores[b.Name] = d.Compaction()
		s.logger.Debug("scored basis", zap.String("basis", b.Name), zap.Float64("compaction", scores[b.Name]))
	}
	return scores, nil
}

// Smooth soft-thresholds every detail band and reconstructs the signal.
func (s *Service) Smooth(signal []float64, basisName string, level int, threshold float64) ([]float64, error) {
	basis, ok := Lookup(basisName)
	if !ok {
		return nil, fmt.Errorf("smooth %q: %w", basisName, ErrUnknownBasis)
	}
	d, err := Transform(signal, basis, level)
	if err != nil {
		return nil, err
	}
	for _, det := range d.Details {
		for i, c := range det {
			det[i] = softThreshold(c, threshold)
		}
	}
	return Inverse(d)
}

// Best returns the highest-scoring basis, breaking ties by name.
func Best(scores map[string]float64) (string, float64, bool) {
	names := make([]string, 0, len(scores))
	for n := range scores {
		names = append(names, n)
	}
	sort.Strings(names)

	best, bestScore, found := "", math.Inf(-1), false
	for _, n := range names {
		if scores[n] > bestScore {
			best, bestScore, found = n, scores[n], true
		}
	}
	return best, bestScore, found
}

func fuseBand(rule string, weights []float64, decs []Decomposition, band func(Decomposition) []float64) []float64 {
	out := make([]float64, len(band(decs[0])))
	switch rule {
	case RuleMaxAbs:
		for i := range out {
			for _, d := range decs {
				if c := band(d)[i]; math.Abs(c) > math.Abs(out[i]) {
					out[i] = c
				}
			}
		}
	default:
		var total float64
		for _, w := range weights {
			total += w
		}
		if total == 0 {
			return out
		}
		for j, d := range decs {
			for i, c := range band(d) {
				out[i] += weights[j] * c / total
			}
		}
	}
	return out
}

func softThreshold(c, t float64) float64 {
	switch {
	case c > t:
		return c - t
	case c < -t:
		return c + t
	default:
		return 0
	}
}
