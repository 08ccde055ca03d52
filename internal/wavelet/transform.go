package wavelet

import (
	"errors"
	"fmt"
)

var (
	// ErrSignalTooShort indicates the signal cannot support the requested level.
	ErrSignalTooShort = errors.New("signal too short for decomposition level")

	// ErrInvalidLevel indicates a non-positive decomposition level.
	ErrInvalidLevel = errors.New("decomposition level must be positive")

	// ErrUnknownBasis indicates a basis name that is not registered.
	ErrUnknownBasis = errors.New("unknown wavelet basis")

	// ErrUnknownRule indicates a coefficient fusion rule that is not supported.
	ErrUnknownRule = errors.New("unknown fusion rule")
)

// MaxLevel bounds the decomposition depth. 2^MaxLevel samples is far beyond
// any signal a field produces.
const MaxLevel = 30

// Decomposition holds the coefficients of a multi-level transform.
// Details[0] is the finest scale.
type Decomposition struct {
	Basis         string      `json:"basis"`
	Level         int         `json:"level"`
	Approximation []float64   `json:"approximation"`
	Details       [][]float64 `json:"details"`
}

// Energy returns the sum of squared coefficients.
func (d Decomposition) Energy() float64 {
	e := sumSquares(d.Approximation)
	for _, det := range d.Details {
		e += sumSquares(det)
	}
	return e
}

// Compaction returns the share of energy held by the approximation, or 0
// for an all-zero decomposition.
func (d Decomposition) Compaction() float64 {
	total := d.Energy()
	if total == 0 {
		return 0
	}
	return sumSquares(d.Approximation) / total
}

// checkLevel verifies the signal length is a positive multiple of 2^level.
func checkLevel(n, level int) error {
	if level < 1 {
		return fmt.Errorf("level %d: %w", level, ErrInvalidLevel)
	}
	if level > MaxLevel || n>>level == 0 {
		return fmt.Errorf("length %d, level %d: %w", n, level, ErrSignalTooShort)
	}
	block := 1 << level
	if n%block != 0 {
		return fmt.Errorf("length %d, level %d needs a multiple of %d: %w", n, level, block, ErrSignalTooShort)
	}
	return nil
}

// Transform decomposes signal to the given level with periodic extension.
func Transform(signal []float64, basis Basis, level int) (Decomposition, error) {
	if err := checkLevel(len(signal), level); err != nil {
		return Decomposition{}, err
	}

	h := basis.Lowpass
	g := basis.highpass()
	approx := append([]float64(nil), signal...)
	details := make([][]float64, 0, level)

	for l := 0; l < level; l++ {
		n := len(approx)
		a := make([]float64, n/2)
		d := make([]float64, n/2)
		for k := range a {
			for i := range h {
				x := approx[(2*k+i)%n]
				a[k] += h[i] * x
				d[k] += g[i] * x
			}
		}
		details = append(details, d)
		approx = a
	}

	return Decomposition{Basis: basis.Name, Level: level, Approximation: approx, Details: details}, nil
}

// Inverse reconstructs the signal from a single-basis decomposition.
func Inverse(d Decomposition) ([]float64, error) {
	basis, ok := Lookup(d.Basis)
	if !ok {
		return nil, fmt.Errorf("inverse %q: %w", d.Basis, ErrUnknownBasis)
	}
	if len(d.Details) != d.Level {
		return nil, fmt.Errorf("inverse: %d detail bands for level %d", len(d.Details), d.Level)
	}

	h := basis.Lowpass
	g := basis.highpass()
	approx := append([]float64(nil), d.Approximation...)

	for l := d.Level - 1; l >= 0; l-- {
		det := d.Details[l]
		if len(det) != len(approx) {
			return nil, fmt.Errorf("inverse: band %d has %d coefficients, want %d", l, len(det), len(approx))
		}
		n := 2 * len(approx)
		x := make([]float64, n)
		for k := range approx {
			for i := range h {
				x[(2*k+i)%n] += h[i]*approx[k] + g[i]*det[k]
			}
		}
		approx = x
	}
	return approx, nil
}

func sumSquares(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}
