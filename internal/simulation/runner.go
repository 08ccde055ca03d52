package simulation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Neil-Crago/coheron/internal/belief"
	"github.com/Neil-Crago/coheron/internal/config"
	"github.com/Neil-Crago/coheron/internal/engine"
	"github.com/Neil-Crago/coheron/internal/entangle"
	"github.com/Neil-Crago/coheron/internal/field"
	"github.com/Neil-Crago/coheron/internal/logging"
	"github.com/Neil-Crago/coheron/internal/ratelimit"
	"github.com/Neil-Crago/coheron/internal/synth"
)

// StepRecord is one committed step with the position flattened to
// coordinates.
type StepRecord struct {
	Step      int              `json:"step"`
	Position  []float64        `json:"position"`
	Posterior belief.Posterior `json:"posterior"`
	Resonance field.Resonance  `json:"resonance"`
	Law       synth.ControlLaw `json:"law"`
}

// Result captures the outcome of one run.
type Result struct {
	RunID     string             `json:"run_id"`
	Seed      int64              `json:"seed"`
	Belief    string             `json:"belief"`
	Field     string             `json:"field"`
	Steps     []StepRecord       `json:"steps"`
	Final     belief.Posterior   `json:"final"`
	State     Snapshot           `json:"state"`
	Couplings []entangle.Overlay `json:"couplings,omitempty"`
	Basis     *field.BasisChoice `json:"basis,omitempty"`
}

// Runner builds and drives engines from a configuration. A Runner holds no
// per-run state and may start concurrent runs.
type Runner struct {
	cfg    *config.CoheronConfig
	logger *zap.Logger
	tracer *logging.StepTracer
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(cfg *config.CoheronConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// WithTracer returns a copy of the runner that records every committed step.
func (r *Runner) WithTracer(t *logging.StepTracer) *Runner {
	c := *r
	c.tracer = t
	return &c
}

// Run executes one run seeded with seed. On a failed step the partial
// result is returned together with the error.
func (r *Runner) Run(ctx context.Context, seed int64) (*Result, error) {
	res := &Result{
		RunID:  uuid.NewString(),
		Seed:   seed,
		Belief: r.cfg.Belief.Kind,
		Field:  r.cfg.Field.Kind,
	}
	logger := r.logger.With(zap.String("run_id", res.RunID), zap.Int64("seed", seed))

	start := time.Now()
	err := r.dispatchBelief(ctx, logger, belief.NewSeededSource(seed), res)
	logger.Debug("run finished",
		zap.Int("steps", len(res.Steps)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return res, err
}

func (r *Runner) dispatchBelief(ctx context.Context, logger *zap.Logger, src belief.Source, res *Result) error {
	bc := r.cfg.Belief
	switch bc.Kind {
	case config.BeliefGaussian:
		b, err := belief.NewGaussian(belief.GaussianState{Mean: bc.Mean, Variance: bc.Variance, Drift: bc.Drift}, src)
		if err != nil {
			return err
		}
		return dispatchField[belief.GaussianObservation](ctx, r, logger, b, res)
	case config.BeliefKalman:
		b, err := belief.NewKalman(belief.KalmanState{
			State:            [2]float64{bc.Mean, bc.Velocity},
			Covariance:       [2][2]float64{{bc.Variance, 0}, {0, bc.Variance}},
			ProcessNoise:     bc.ProcessNoise,
			MeasurementNoise: bc.MeasurementNoise,
		}, src)
		if err != nil {
			return err
		}
		return dispatchField[belief.KalmanObservation](ctx, r, logger, b, res)
	case config.BeliefPolynomial:
		b, err := belief.NewPolynomial(belief.PolynomialState{Coeffs: bc.Coeffs, Noise: bc.Noise}, src)
		if err != nil {
			return err
		}
		return dispatchField[belief.PolynomialObservation](ctx, r, logger, b, res)
	case config.BeliefDirichlet:
		b, err := belief.NewDirichlet(belief.DirichletState{Alpha: bc.Alpha}, src)
		if err != nil {
			return err
		}
		return dispatchField[belief.CategoryObservation](ctx, r, logger, b, res)
	default:
		return fmt.Errorf("unknown belief kind %q", bc.Kind)
	}
}

func dispatchField[O any](ctx context.Context, r *Runner, logger *zap.Logger, b belief.Belief[O], res *Result) error {
	fc := r.cfg.Field
	analyzer := NewAnalyzer(r.cfg.Spectral, logger)

	switch fc.Kind {
	case config.FieldWave:
		w, err := BuildWave(fc, analyzer)
		if err != nil {
			return err
		}
		var act engine.Actuator[float64] = engine.Hold[float64]{}
		if r.cfg.Simulation.Actuator == config.ActuatorIntegrate {
			act = engine.Integrate{DT: r.cfg.Simulation.DT}
		}
		return drive[O, float64](ctx, r, logger, b, w, fc.StartX, act, func(x float64) []float64 { return []float64{x} }, res)
	case config.FieldGrid:
		g, err := BuildGrid(fc, analyzer)
		if err != nil {
			return err
		}
		var act engine.Actuator[field.Point] = engine.Hold[field.Point]{}
		if r.cfg.Simulation.Actuator == config.ActuatorIntegrate {
			act = engine.PlanarIntegrate{DT: r.cfg.Simulation.DT}
		}
		start := field.Point{X: fc.StartX, Y: fc.StartY}
		return drive[O, field.Point](ctx, r, logger, b, g, start, act, func(p field.Point) []float64 { return []float64{p.X, p.Y} }, res)
	default:
		return fmt.Errorf("unknown field kind %q", fc.Kind)
	}
}

// spectralField is a field that can report its best wavelet basis.
type spectralField[P any] interface {
	field.Field[P]
	BestBasis(level int) (field.BasisChoice, error)
}

func drive[O, P any](
	ctx context.Context,
	r *Runner,
	logger *zap.Logger,
	b belief.Belief[O],
	f spectralField[P],
	start P,
	act engine.Actuator[P],
	coords func(P) []float64,
	res *Result,
) error {
	ent := BuildEntanglement(r.cfg.Entanglement)

	eng, err := engine.New[O, P](b, f, ent, BuildSynthesizer(r.cfg), start, engine.Config[P]{
		Actuator:  act,
		Logger:    logger,
		Tracer:    r.tracer,
		PredictDT: r.cfg.Simulation.DT,
	})
	if err != nil {
		return err
	}

	pacer := ratelimit.NewPacer(r.cfg.Simulation.Pace)
	source := entangle.Domain(r.cfg.Simulation.Domain)
	target := entangle.Domain(r.cfg.Field.Domain)

	// Step 1: drive the engine until done, cancelled or failed.
	var runErr error
	res.Steps = make([]StepRecord, 0, r.cfg.Simulation.Steps)
	for i := 0; i < r.cfg.Simulation.Steps; i++ {
		if err := pacer.Wait(ctx); err != nil {
			runErr = err
			break
		}

		sr, err := eng.Step()
		if err != nil {
			runErr = fmt.Errorf("step %d: %w", i+1, err)
			break
		}
		res.Steps = append(res.Steps, StepRecord{
			Step:      sr.Step,
			Position:  coords(sr.Position),
			Posterior: sr.Posterior,
			Resonance: sr.Resonance,
			Law:       sr.Law,
		})

		// Step 2: reinforce the belief/field coupling by co-activation.
		if r.cfg.Entanglement.Reinforce {
			c := ent.Reinforce(source, target, activation(sr.Posterior.Mean), activation(sr.Resonance.Amplitude), r.cfg.Entanglement.Hebbian)
			logging.Trace(logger, "coupling reinforced", zap.Int("step", sr.Step), zap.Float64("strength", c.Strength))
		}
	}

	// Step 3: summarise whatever was committed.
	res.Final = eng.Posterior()
	res.State = snapshotOf(eng.Belief())
	res.Couplings = ent.Pairs()

	if choice, err := f.BestBasis(r.cfg.Spectral.Level); err == nil {
		res.Basis = &choice
	} else {
		logger.Debug("spectral analysis skipped", zap.Error(err))
	}

	return runErr
}

// activation clamps v to [0, 1] for use as a Hebbian activation.
func activation(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
