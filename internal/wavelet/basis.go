// Package wavelet is the multi-resolution decomposition service fields use
// for spectral diagnostics. It implements periodic orthogonal wavelet
// transforms, multi-basis coefficient fusion, basis scoring by energy
// compaction, and soft-threshold smoothing.
package wavelet

import (
	"math"
	"sort"
)

// Basis is an orthogonal wavelet described by its low-pass filter. The
// high-pass filter is the quadrature mirror g[n] = (-1)^n h[L-1-n].
type Basis struct {
	Name    string
	Lowpass []float64
}

var (
	// Haar is the two-tap Haar wavelet.
	Haar = Basis{
		Name:    "haar",
		Lowpass: []float64{1 / math.Sqrt2, 1 / math.Sqrt2},
	}

	// Daubechies2 is the four-tap Daubechies wavelet with two vanishing moments.
	Daubechies2 = Basis{
		Name: "db2",
		Lowpass: []float64{
			(1 + math.Sqrt(3)) / (4 * math.Sqrt2),
			(3 + math.Sqrt(3)) / (4 * math.Sqrt2),
			(3 - math.Sqrt(3)) / (4 * math.Sqrt2),
			(1 - math.Sqrt(3)) / (4 * math.Sqrt2),
		},
	}
)

var registry = map[string]Basis{
	Haar.Name:        Haar,
	Daubechies2.Name: Daubechies2,
}

// Lookup returns the registered basis with the given name.
func Lookup(name string) (Basis, bool) {
	b, ok := registry[name]
	return b, ok
}

// Names returns the registered basis names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// highpass derives the quadrature mirror filter.
func (b Basis) highpass() []float64 {
	l := len(b.Lowpass)
	g := make([]float64, l)
	for n := range g {
		sign := 1.0
		if n%2 == 1 {
			sign = -1
		}
		g[n] = sign * b.Lowpass[l-1-n]
	}
	return g
}
