package simulation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Neil-Crago/coheron/internal/config"
	"github.com/Neil-Crago/coheron/internal/field"
	"github.com/Neil-Crago/coheron/internal/logging"
)

func TestRun_Default(t *testing.T) {
	cfg := config.Default()
	r := NewRunner(cfg, zap.NewNop())

	res, err := r.Run(context.Background(), 42)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, int64(42), res.Seed)
	assert.Equal(t, config.BeliefGaussian, res.Belief)
	assert.Equal(t, config.FieldGrid, res.Field)
	require.Len(t, res.Steps, cfg.Simulation.Steps)
	require.NotNil(t, res.State.Gaussian)
	assert.Equal(t, res.Final.Mean, res.State.Gaussian.Mean)
	require.NotNil(t, res.Basis)
	assert.Equal(t, "field", res.Basis.Domain)

	for i, s := range res.Steps {
		assert.Equal(t, i+1, s.Step)
		assert.Len(t, s.Position, 2)
		assert.Greater(t, s.Posterior.Uncertainty, 0.0)
	}
}

func TestRun_Reproducible(t *testing.T) {
	cfg := config.Default()
	cfg.Field.Kind = config.FieldWave
	cfg.Simulation.Actuator = config.ActuatorIntegrate
	r := NewRunner(cfg, nil)

	a, err := r.Run(context.Background(), 7)
	require.NoError(t, err)
	b, err := r.Run(context.Background(), 7)
	require.NoError(t, err)
	c, err := r.Run(context.Background(), 8)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Steps, b.Steps)
	assert.Equal(t, a.State, b.State)
	assert.NotEqual(t, a.Steps, c.Steps)
}

func TestRun_AllVariants(t *testing.T) {
	beliefs := []string{config.BeliefGaussian, config.BeliefKalman, config.BeliefPolynomial, config.BeliefDirichlet}
	fields := []string{config.FieldGrid, config.FieldWave}

	for _, bk := range beliefs {
		for _, fk := range fields {
			t.Run(bk+"/"+fk, func(t *testing.T) {
				cfg := config.Default()
				cfg.Belief.Kind = bk
				cfg.Field.Kind = fk
				cfg.Simulation.Actuator = config.ActuatorIntegrate
				require.NoError(t, cfg.Validate())

				res, err := NewRunner(cfg, nil).Run(context.Background(), 1)
				require.NoError(t, err)
				assert.Len(t, res.Steps, cfg.Simulation.Steps)

				switch bk {
				case config.BeliefPolynomial:
					assert.NotNil(t, res.State.Polynomial)
				case config.BeliefDirichlet:
					assert.NotNil(t, res.State.Dirichlet)
				default:
					assert.NotNil(t, res.State.Gaussian)
				}
			})
		}
	}
}

func TestRun_DirichletAccumulatesEvidence(t *testing.T) {
	cfg := config.Default()
	cfg.Belief.Kind = config.BeliefDirichlet
	cfg.Belief.Alpha = []float64{1, 1, 1}

	res, err := NewRunner(cfg, nil).Run(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, res.State.Dirichlet)

	var total float64
	for _, a := range res.State.Dirichlet.Alpha {
		total += a
	}
	assert.InDelta(t, 3+float64(cfg.Simulation.Steps), total, 1e-9)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewRunner(config.Default(), nil).Run(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Steps)
}

func TestRun_FailedStepReturnsPartialResult(t *testing.T) {
	cfg := config.Default()
	cfg.Field.Width = 2
	cfg.Field.Height = 1
	cfg.Field.Cells = []config.CellConfig{{X: 0, Y: 0, Value: 0}, {X: 1, Y: 0, Value: 1}}
	cfg.Field.StartX = 1
	cfg.Field.StartY = 0
	cfg.Simulation.Actuator = config.ActuatorIntegrate
	cfg.Simulation.DT = 4
	require.NoError(t, cfg.Validate())

	res, err := NewRunner(cfg, nil).Run(context.Background(), 1)
	assert.ErrorIs(t, err, field.ErrOutOfRange)
	assert.ErrorContains(t, err, "step 1")
	require.NotNil(t, res)
	assert.Empty(t, res.Steps)

	// The committed belief is still the prior.
	assert.Equal(t, cfg.Belief.Mean, res.Final.Mean)
}

func TestRun_Reinforce(t *testing.T) {
	cfg := config.Default()
	cfg.Field.Kind = config.FieldWave
	cfg.Simulation.Synthesizer = config.SynthCoupled
	cfg.Entanglement.Reinforce = true

	res, err := NewRunner(cfg, nil).Run(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, res.Couplings, 1)
	c := res.Couplings[0]
	assert.Equal(t, "belief", string(c.DomainA))
	assert.Equal(t, "field", string(c.DomainB))
	assert.Greater(t, c.Coupling.Strength, cfg.Entanglement.Hebbian.MinStrength)
	assert.LessOrEqual(t, c.Coupling.Strength, cfg.Entanglement.Hebbian.MaxStrength)
}

func TestRun_SeededCouplings(t *testing.T) {
	cfg := config.Default()
	cfg.Entanglement.Couplings = []config.CouplingConfig{{A: "field", B: "belief", Strength: 0.5, Phase: 0.1}}

	res, err := NewRunner(cfg, nil).Run(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, res.Couplings, 1)
	assert.Equal(t, 0.5, res.Couplings[0].Coupling.Strength)
}

func TestRun_SpectralSkippedForShortSignal(t *testing.T) {
	cfg := config.Default()
	cfg.Field.Width = 3
	cfg.Field.Height = 1
	cfg.Field.StartX = 0
	cfg.Field.StartY = 0

	res, err := NewRunner(cfg, nil).Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, res.Basis)
}

func TestRun_Tracer(t *testing.T) {
	dir := t.TempDir()
	tracer := logging.NewStepTracer(dir, "debug")
	require.NotNil(t, tracer)

	cfg := config.Default()
	cfg.Simulation.Steps = 4
	_, err := NewRunner(cfg, nil).WithTracer(tracer).Run(context.Background(), 1)
	require.NoError(t, err)
	tracer.Close()

	data, err := os.ReadFile(filepath.Join(dir, logging.TracesFile))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 4)
}
