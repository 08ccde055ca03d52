// Package engine orchestrates one agent: each step refines a belief from an
// observation, reads the field's resonance, synthesizes a control law and
// feeds resonance back into the field at the actuated position.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Neil-Crago/coheron/internal/belief"
	"github.com/Neil-Crago/coheron/internal/entangle"
	"github.com/Neil-Crago/coheron/internal/field"
	"github.com/Neil-Crago/coheron/internal/logging"
	"github.com/Neil-Crago/coheron/internal/synth"
)

// ErrIncomplete indicates an engine built without one of its capabilities.
var ErrIncomplete = errors.New("engine requires belief, field, entanglement and synthesizer")

// Config holds the optional collaborators of an engine.
type Config[P any] struct {
	// Actuator maps a control law to the next position. Default: Hold.
	Actuator Actuator[P]

	// Logger receives operational output. Default: no-op.
	Logger *zap.Logger

	// Tracer records one JSONL event per committed step. May be nil.
	Tracer *logging.StepTracer

	// PredictDT, when positive, advances beliefs implementing Predictor by
	// this interval before each observation.
	PredictDT float64
}

// Predictor is implemented by beliefs with a time-update phase.
type Predictor interface {
	Predict(dt float64)
}

// DefaultConfig returns a config that holds position and discards logs.
func DefaultConfig[P any]() Config[P] {
	return Config[P]{
		Actuator: Hold[P]{},
		Logger:   zap.NewNop(),
	}
}

// StepResult captures everything a single committed step produced.
type StepResult[P any] struct {
	Step      int              `json:"step"`
	Position  P                `json:"position"`
	Posterior belief.Posterior `json:"posterior"`
	Resonance field.Resonance  `json:"resonance"`
	Law       synth.ControlLaw `json:"law"`
}

// Engine binds a belief over observations O to a field over positions P.
// It is not safe for concurrent use; run independent engines instead.
type Engine[O, P any] struct {
	belief   belief.Belief[O]
	field    field.Field[P]
	ent      entangle.Reader
	synth    synth.Synthesizer
	position P
	steps    int

	actuator  Actuator[P]
	logger    *zap.Logger
	tracer    *logging.StepTracer
	predictDT float64
}

// New creates an engine positioned at initial. The engine takes exclusive
// ownership of the belief and field.
func New[O, P any](b belief.Belief[O], f field.Field[P], ent entangle.Reader, s synth.Synthesizer, initial P, cfg Config[P]) (*Engine[O, P], error) {
	if b == nil || f == nil || ent == nil || s == nil {
		return nil, ErrIncomplete
	}
	if cfg.Actuator == nil {
		cfg.Actuator = Hold[P]{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Engine[O, P]{
		belief:    b,
		field:     f,
		ent:       ent,
		synth:     s,
		position:  initial,
		actuator:  cfg.Actuator,
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
		predictDT: cfg.PredictDT,
	}, nil
}

// Position returns the current position.
func (e *Engine[O, P]) Position() P { return e.position }

// Posterior returns the committed belief as a posterior snapshot.
func (e *Engine[O, P]) Posterior() belief.Posterior { return e.belief.Prior() }

// Belief returns the committed belief. Callers must not mutate it.
func (e *Engine[O, P]) Belief() belief.Belief[O] { return e.belief }

// Steps returns the number of committed steps.
func (e *Engine[O, P]) Steps() int { return e.steps }

// Step advances the engine by one step. On error nothing is committed: the
// belief and position keep their previous values and the field is untouched.
// Draws taken from the belief's random source are not rewound.
func (e *Engine[O, P]) Step() (StepResult[P], error) {
	res, err := e.step()
	if err != nil {
		e.logger.Debug("step aborted", zap.Int("step", e.steps+1), zap.Error(err))
		return StepResult[P]{}, err
	}

	e.tracer.Log("step",
		zap.Int("step", res.Step),
		zap.Any("position", res.Position),
		zap.Float64("mean", res.Posterior.Mean),
		zap.Float64("uncertainty", res.Posterior.Uncertainty),
		zap.Float64("amplitude", res.Resonance.Amplitude),
		zap.Float64("frequency", res.Resonance.Frequency),
		zap.Float64("torque", res.Law.Torque),
		zap.Float64("alignment", res.Law.Alignment),
	)
	logging.Trace(e.logger, "step committed",
		zap.Int("step", res.Step),
		zap.Any("position", res.Position),
		zap.Float64("torque", res.Law.Torque),
	)
	return res, nil
}

func (e *Engine[O, P]) step() (StepResult[P], error) {
	// Step 1: refine a copy of the belief.
	next := e.belief.Clone()
	if p, ok := next.(Predictor); ok && e.predictDT > 0 {
		p.Predict(e.predictDT)
	}
	obs, err := next.Observe()
	if err != nil {
		return StepResult[P]{}, fmt.Errorf("observe belief: %w", err)
	}
	if err := next.Update(obs); err != nil {
		return StepResult[P]{}, fmt.Errorf("update belief: %w", err)
	}

	// Step 2: sense the field where the agent stands.
	res, err := e.field.ComputeResonance(e.position)
	if err != nil {
		return StepResult[P]{}, fmt.Errorf("compute resonance: %w", err)
	}

	// Step 3: derive the control law from the refined posterior.
	post := next.Prior()
	law, err := e.synth.Synthesize(post, res, e.ent)
	if err != nil {
		return StepResult[P]{}, fmt.Errorf("synthesize law: %w", err)
	}

	// Step 4: actuate.
	pos, err := e.actuator.Apply(law, e.position)
	if err != nil {
		return StepResult[P]{}, fmt.Errorf("apply law: %w", err)
	}

	// Step 5: feed resonance back. Fields reject before mutating, so this is
	// the last fallible operation.
	if err := e.field.Propagate(pos, res); err != nil {
		return StepResult[P]{}, fmt.Errorf("propagate resonance: %w", err)
	}

	// Step 6: commit.
	e.belief = next
	e.position = pos
	e.steps++

	return StepResult[P]{
		Step:      e.steps,
		Position:  pos,
		Posterior: post,
		Resonance: res,
		Law:       law,
	}, nil
}

// Run performs n steps and returns the committed results. It stops at the
// first failing step, returning the results committed before it.
func (e *Engine[O, P]) Run(n int) ([]StepResult[P], error) {
	results := make([]StepResult[P], 0, max(n, 0))
	for i := 0; i < n; i++ {
		res, err := e.Step()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", e.steps+1, err)
		}
		results = append(results, res)
	}
	return results, nil
}
