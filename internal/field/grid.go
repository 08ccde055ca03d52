package field

import (
	"fmt"
	"math"
)

// DefaultGridValue is the initial coherence of every grid cell.
const DefaultGridValue = 0.5

// GridField is a row-major coherence map addressed by Point. Coordinates
// are truncated to cell indices.
type GridField struct {
	cells    [][]float64
	width    int
	height   int
	damping  float64
	domain   string
	analyzer *Analyzer
}

// GridOption configures a GridField.
type GridOption func(*GridField)

// WithInitialValue fills every cell with v.
func WithInitialValue(v float64) GridOption {
	return func(g *GridField) {
		for _, row := range g.cells {
			for x := range row {
				row[x] = v
			}
		}
	}
}

// WithDamping sets the feedback damping constant.
func WithDamping(d float64) GridOption {
	return func(g *GridField) { g.damping = d }
}

// WithDomain labels the field for spectral analysis.
func WithDomain(domain string) GridOption {
	return func(g *GridField) { g.domain = domain }
}

// WithAnalyzer enables the spectral extension.
func WithAnalyzer(a *Analyzer) GridOption {
	return func(g *GridField) { g.analyzer = a }
}

// NewGridField creates a width × height field.
func NewGridField(width, height int, opts ...GridOption) (*GridField, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid %dx%d: %w", width, height, ErrInvalidExtent)
	}
	cells := make([][]float64, height)
	for y := range cells {
		row := make([]float64, width)
		for x := range row {
			row[x] = DefaultGridValue
		}
		cells[y] = row
	}
	g := &GridField{
		cells:   cells,
		width:   width,
		height:  height,
		damping: DefaultDamping,
		domain:  "grid",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Width returns the number of columns.
func (g *GridField) Width() int { return g.width }

// Height returns the number of rows.
func (g *GridField) Height() int { return g.height }

// Set overwrites a single cell.
func (g *GridField) Set(x, y int, v float64) error {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return fmt.Errorf("cell (%d, %d) on %dx%d grid: %w", x, y, g.width, g.height, ErrOutOfRange)
	}
	g.cells[y][x] = v
	return nil
}

// At returns the value of the cell addressed by pos.
func (g *GridField) At(pos Point) (float64, error) {
	x, y, err := g.index(pos)
	if err != nil {
		return 0, err
	}
	return g.cells[y][x], nil
}

// index converts pos to cell indices, rejecting anything outside the grid.
func (g *GridField) index(pos Point) (int, int, error) {
	if !inRange(pos.X, g.width) || !inRange(pos.Y, g.height) {
		return 0, 0, fmt.Errorf("point (%g, %g) on %dx%d grid: %w", pos.X, pos.Y, g.width, g.height, ErrOutOfRange)
	}
	return int(pos.X), int(pos.Y), nil
}

func inRange(v float64, extent int) bool {
	return !math.IsNaN(v) && v >= 0 && v < float64(extent)
}

// Observe returns the difference to the preceding cell along each axis.
// On the first row or column the neighbour is the cell itself, so that
// component is zero.
func (g *GridField) Observe(pos Point) (Gradient, error) {
	x, y, err := g.index(pos)
	if err != nil {
		return Gradient{}, err
	}

	center := g.cells[y][x]
	dx := g.cells[y][max(x-1, 0)] - center
	dy := g.cells[max(y-1, 0)][x] - center

	return Gradient{
		Direction: []float64{dx, dy},
		Magnitude: math.Hypot(dx, dy),
	}, nil
}

// ComputeResonance derives the resonance from the gradient at pos.
func (g *GridField) ComputeResonance(pos Point) (Resonance, error) {
	grad, err := g.Observe(pos)
	if err != nil {
		return Resonance{}, err
	}
	return resonanceOf(grad), nil
}

// Propagate adds amplitude*damping to the addressed cell.
func (g *GridField) Propagate(pos Point, influence Resonance) error {
	x, y, err := g.index(pos)
	if err != nil {
		return err
	}
	g.cells[y][x] += influence.Amplitude * g.damping
	return nil
}

// Signal flattens the grid row by row.
func (g *GridField) Signal() []float64 {
	out := make([]float64, 0, g.width*g.height)
	for _, row := range g.cells {
		out = append(out, row...)
	}
	return out
}

// Domain returns the field's domain label.
func (g *GridField) Domain() string { return g.domain }

// Decompose runs the injected analyzer over the flattened grid.
func (g *GridField) Decompose(level int) (Spectrum, error) {
	if g.analyzer == nil {
		return Spectrum{}, ErrSpectralUnsupported
	}
	return g.analyzer.Decompose(g, level)
}

// BestBasis scores candidate bases over the flattened grid.
func (g *GridField) BestBasis(level int) (BasisChoice, error) {
	if g.analyzer == nil {
		return BasisChoice{}, ErrSpectralUnsupported
	}
	return g.analyzer.BestBasis(g, level)
}
