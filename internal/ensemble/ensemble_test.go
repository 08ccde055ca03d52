package ensemble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Neil-Crago/coheron/internal/belief"
	"github.com/Neil-Crago/coheron/internal/config"
	"github.com/Neil-Crago/coheron/internal/field"
	"github.com/Neil-Crago/coheron/internal/fusion"
	"github.com/Neil-Crago/coheron/internal/simulation"
)

func TestNew_Validation(t *testing.T) {
	r := simulation.NewRunner(config.Default(), nil)

	_, err := New(r, config.EnsembleConfig{Members: 0}, nil)
	assert.ErrorIs(t, err, ErrNoMembers)

	_, err = New(r, config.EnsembleConfig{Members: 2, Strategy: "vote"}, nil)
	assert.ErrorIs(t, err, fusion.ErrUnknownStrategy)
}

func TestRun_GaussianMembers(t *testing.T) {
	cfg := config.Default()
	cfg.Ensemble.Members = 5
	cfg.Ensemble.Concurrency = 2

	e, err := New(simulation.NewRunner(cfg, nil), cfg.Ensemble, zap.NewNop())
	require.NoError(t, err)

	res, err := e.Run(context.Background(), 100)
	require.NoError(t, err)

	assert.NotEmpty(t, res.EnsembleID)
	assert.Equal(t, fusion.NameInverseVariance, res.Strategy)
	require.Len(t, res.Members, 5)

	states := make([]belief.GaussianState, len(res.Members))
	for i, m := range res.Members {
		assert.Equal(t, int64(100+i), m.Seed)
		require.NotNil(t, m.State.Gaussian)
		states[i] = *m.State.Gaussian
	}

	want, err := fusion.InverseVariance{Epsilon: fusion.DefaultEpsilon}.Fuse(states)
	require.NoError(t, err)
	require.NotNil(t, res.Fused.Gaussian)
	assert.InDelta(t, want.Mean, res.Fused.Gaussian.Mean, 1e-12)
	assert.InDelta(t, want.Variance, res.Fused.Gaussian.Variance, 1e-12)
}

func TestRun_MatchesSequentialRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Ensemble.Members = 3
	runner := simulation.NewRunner(cfg, nil)

	e, err := New(runner, cfg.Ensemble, nil)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), 10)
	require.NoError(t, err)

	for i, m := range res.Members {
		solo, err := runner.Run(context.Background(), 10+int64(i))
		require.NoError(t, err)
		assert.Equal(t, solo.Steps, m.Steps)
	}
}

func TestRun_DirichletMembersPool(t *testing.T) {
	cfg := config.Default()
	cfg.Belief.Kind = config.BeliefDirichlet
	cfg.Belief.Alpha = []float64{1, 1}
	cfg.Ensemble.Members = 3

	e, err := New(simulation.NewRunner(cfg, nil), cfg.Ensemble, nil)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, res.Fused.Dirichlet)
	var total float64
	for _, a := range res.Fused.Dirichlet.Alpha {
		total += a
	}
	// Each member starts with mass 2 and adds one per step.
	assert.InDelta(t, 3*(2+float64(cfg.Simulation.Steps)), total, 1e-9)
}

func TestRun_MemberFailureCancels(t *testing.T) {
	cfg := config.Default()
	cfg.Field.Width = 2
	cfg.Field.Height = 1
	cfg.Field.Cells = []config.CellConfig{{X: 0, Y: 0, Value: 0}, {X: 1, Y: 0, Value: 1}}
	cfg.Field.StartX = 1
	cfg.Field.StartY = 0
	cfg.Simulation.Actuator = config.ActuatorIntegrate
	cfg.Simulation.DT = 4
	cfg.Ensemble.Members = 3

	e, err := New(simulation.NewRunner(cfg, nil), cfg.Ensemble, nil)
	require.NoError(t, err)

	res, err := e.Run(context.Background(), 1)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, field.ErrOutOfRange)
	assert.ErrorContains(t, err, "member")
}

func TestFuse(t *testing.T) {
	strategy := fusion.InverseVariance{Epsilon: fusion.DefaultEpsilon}
	g1 := belief.GaussianState{Mean: 0.4, Variance: 0.1}
	g2 := belief.GaussianState{Mean: 0.6, Variance: 0.3}

	t.Run("gaussian", func(t *testing.T) {
		got, err := Fuse([]simulation.Snapshot{{Gaussian: &g1}, {Gaussian: &g2}}, strategy)
		require.NoError(t, err)
		require.NotNil(t, got.Gaussian)
		assert.InDelta(t, 0.075, got.Gaussian.Variance, 1e-9)
	})

	t.Run("polynomial", func(t *testing.T) {
		p1 := belief.PolynomialState{Coeffs: []float64{0, 2}, Noise: 0.1}
		p2 := belief.PolynomialState{Coeffs: []float64{2, 0}, Noise: 0.3}
		got, err := Fuse([]simulation.Snapshot{{Polynomial: &p1}, {Polynomial: &p2}}, strategy)
		require.NoError(t, err)
		require.NotNil(t, got.Polynomial)
		assert.Equal(t, []float64{1, 1}, got.Polynomial.Coeffs)
	})

	t.Run("mixed", func(t *testing.T) {
		d := belief.DirichletState{Alpha: []float64{1}}
		_, err := Fuse([]simulation.Snapshot{{Gaussian: &g1}, {Dirichlet: &d}}, strategy)
		assert.ErrorIs(t, err, ErrMixedSnapshots)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Fuse(nil, strategy)
		assert.ErrorIs(t, err, ErrNoMembers)
	})

	t.Run("no state", func(t *testing.T) {
		_, err := Fuse([]simulation.Snapshot{{}}, strategy)
		assert.ErrorIs(t, err, ErrMixedSnapshots)
	})
}
