package field

import (
	"errors"
	"fmt"

	"github.com/Neil-Crago/coheron/internal/wavelet"
)

// ErrSpectralUnsupported indicates a field was built without an analyzer.
var ErrSpectralUnsupported = errors.New("field has no spectral analyzer")

// SignalSource is a field that can expose its state as a flat signal.
type SignalSource interface {
	Signal() []float64
	Domain() string
}

// Decomposer is the multi-resolution service a field delegates to.
// *wavelet.Service satisfies it.
type Decomposer interface {
	Decompose(signal []float64, fctx wavelet.FusionContext, level int) (wavelet.Decomposition, error)
	Score(signal []float64, fctx wavelet.FusionContext, level int) (map[string]float64, error)
}

// Spectrum is a fused decomposition tagged with the field's domain.
type Spectrum struct {
	Domain        string                `json:"domain"`
	Decomposition wavelet.Decomposition `json:"decomposition"`
}

// BasisChoice is the winning basis of a scoring pass.
type BasisChoice struct {
	Domain string             `json:"domain"`
	Basis  string             `json:"basis"`
	Score  float64            `json:"score"`
	Scores map[string]float64 `json:"scores"`
}

// Analyzer binds a decomposer to a fusion context. It only reads fields.
type Analyzer struct {
	svc  Decomposer
	fctx wavelet.FusionContext
}

// NewAnalyzer creates an analyzer over svc.
func NewAnalyzer(svc Decomposer, fctx wavelet.FusionContext) *Analyzer {
	return &Analyzer{svc: svc, fctx: fctx}
}

// Decompose returns the fused decomposition of src's signal at level.
func (a *Analyzer) Decompose(src SignalSource, level int) (Spectrum, error) {
	d, err := a.svc.Decompose(src.Signal(), a.fctx, level)
	if err != nil {
		return Spectrum{}, fmt.Errorf("decompose %s: %w", src.Domain(), err)
	}
	return Spectrum{Domain: src.Domain(), Decomposition: d}, nil
}

// BestBasis scores every candidate basis and returns the highest.
func (a *Analyzer) BestBasis(src SignalSource, level int) (BasisChoice, error) {
	scores, err := a.svc.Score(src.Signal(), a.fctx, level)
	if err != nil {
		return BasisChoice{}, fmt.Errorf("score %s: %w", src.Domain(), err)
	}
	best, score, ok := wavelet.Best(scores)
	if !ok {
		return BasisChoice{}, fmt.Errorf("score %s: no candidate bases", src.Domain())
	}
	return BasisChoice{Domain: src.Domain(), Basis: best, Score: score, Scores: scores}, nil
}
