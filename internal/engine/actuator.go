package engine

import (
	"errors"
	"math"

	"github.com/Neil-Crago/coheron/internal/field"
	"github.com/Neil-Crago/coheron/internal/synth"
)

// DefaultDT is the integration step used when an integrator has none.
const DefaultDT = 0.1

// ErrDiverged indicates an actuator produced a non-finite position.
var ErrDiverged = errors.New("actuated position is not finite")

// Actuator derives the next position from a control law.
type Actuator[P any] interface {
	Apply(law synth.ControlLaw, pos P) (P, error)
}

// Hold keeps the agent where it is.
type Hold[P any] struct{}

// Apply implements Actuator.
func (Hold[P]) Apply(_ synth.ControlLaw, pos P) (P, error) { return pos, nil }

// Integrate moves a scalar position by torque*DT.
type Integrate struct {
	DT float64
}

// Apply implements Actuator.
func (a Integrate) Apply(law synth.ControlLaw, x float64) (float64, error) {
	next := x + law.Torque*dt(a.DT)
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return x, ErrDiverged
	}
	return next, nil
}

// PlanarIntegrate moves a point by torque*DT along X and alignment*DT along Y.
type PlanarIntegrate struct {
	DT float64
}

// Apply implements Actuator.
func (a PlanarIntegrate) Apply(law synth.ControlLaw, p field.Point) (field.Point, error) {
	step := dt(a.DT)
	next := field.Point{
		X: p.X + law.Torque*step,
		Y: p.Y + law.Alignment*step,
	}
	if math.IsNaN(next.X) || math.IsInf(next.X, 0) || math.IsNaN(next.Y) || math.IsInf(next.Y, 0) {
		return p, ErrDiverged
	}
	return next, nil
}

func dt(v float64) float64 {
	if v <= 0 {
		return DefaultDT
	}
	return v
}
