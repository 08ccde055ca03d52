// Package ensemble runs independent engines concurrently and fuses their
// final beliefs. Members share nothing but the configuration: each builds
// its own field, belief and seeded source, and they meet only at fusion.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Neil-Crago/coheron/internal/belief"
	"github.com/Neil-Crago/coheron/internal/config"
	"github.com/Neil-Crago/coheron/internal/fusion"
	"github.com/Neil-Crago/coheron/internal/simulation"
	"github.com/Neil-Crago/coheron/internal/telemetry"
)

var (
	// ErrNoMembers indicates an ensemble with nothing to fuse.
	ErrNoMembers = errors.New("ensemble has no members")

	// ErrMixedSnapshots indicates members reporting different belief shapes.
	ErrMixedSnapshots = errors.New("ensemble members have mixed belief shapes")
)

// Result is the outcome of an ensemble run.
type Result struct {
	EnsembleID string               `json:"ensemble_id"`
	Strategy   string               `json:"strategy"`
	Members    []*simulation.Result `json:"members"`
	Fused      simulation.Snapshot  `json:"fused"`
}

// Ensemble runs Members copies of a simulation with consecutive seeds.
type Ensemble struct {
	runner   *simulation.Runner
	cfg      config.EnsembleConfig
	strategy fusion.Strategy[belief.GaussianState]
	logger   *zap.Logger
}

// New creates an ensemble. The Gaussian fusion strategy is resolved from cfg.
func New(runner *simulation.Runner, cfg config.EnsembleConfig, logger *zap.Logger) (*Ensemble, error) {
	if cfg.Members < 1 {
		return nil, ErrNoMembers
	}
	strategy, err := fusion.Lookup(cfg.Strategy, cfg.Amplitude)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ensemble{runner: runner, cfg: cfg, strategy: strategy, logger: logger}, nil
}

// Run executes every member, member i seeded with seed+i, and fuses the
// final snapshots. The first failing member cancels the rest.
func (e *Ensemble) Run(ctx context.Context, seed int64) (*Result, error) {
	id := uuid.NewString()
	ctx, span := telemetry.Tracer().Start(ctx, "ensemble.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("coheron.ensemble_id", id),
		attribute.Int("coheron.members", e.cfg.Members),
		attribute.String("coheron.strategy", e.strategy.Name()),
	)

	start := time.Now()
	members := make([]*simulation.Result, e.cfg.Members)

	g, gctx := errgroup.WithContext(ctx)
	if e.cfg.Concurrency > 0 {
		g.SetLimit(e.cfg.Concurrency)
	}
	for i := range members {
		memberSeed := seed + int64(i)
		g.Go(func() error {
			res, err := e.runMember(gctx, i, memberSeed)
			if err != nil {
				return fmt.Errorf("member %d (seed %d): %w", i, memberSeed, err)
			}
			members[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	snaps := make([]simulation.Snapshot, len(members))
	for i, m := range members {
		snaps[i] = m.State
	}
	fused, err := Fuse(snaps, e.strategy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	e.logger.Info("ensemble fused",
		zap.String("ensemble_id", id),
		zap.Int("members", len(members)),
		zap.String("strategy", e.strategy.Name()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{
		EnsembleID: id,
		Strategy:   e.strategy.Name(),
		Members:    members,
		Fused:      fused,
	}, nil
}

func (e *Ensemble) runMember(ctx context.Context, index int, seed int64) (*simulation.Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ensemble.member")
	defer span.End()
	span.SetAttributes(
		attribute.Int("coheron.member", index),
		attribute.Int64("coheron.seed", seed),
	)

	res, err := e.runner.Run(ctx, seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("coheron.run_id", res.RunID),
		attribute.Int("coheron.steps", len(res.Steps)),
	)
	return res, nil
}

// Fuse combines member snapshots. Gaussian snapshots use strategy,
// polynomial snapshots are averaged and Dirichlet snapshots pooled.
func Fuse(snaps []simulation.Snapshot, strategy fusion.Strategy[belief.GaussianState]) (simulation.Snapshot, error) {
	if len(snaps) == 0 {
		return simulation.Snapshot{}, ErrNoMembers
	}

	switch {
	case snaps[0].Gaussian != nil:
		states := make([]belief.GaussianState, len(snaps))
		for i, s := range snaps {
			if s.Gaussian == nil {
				return simulation.Snapshot{}, ErrMixedSnapshots
			}
			states[i] = *s.Gaussian
		}
		fused, err := strategy.Fuse(states)
		if err != nil {
			return simulation.Snapshot{}, err
		}
		return simulation.Snapshot{Gaussian: &fused}, nil

	case snaps[0].Polynomial != nil:
		states := make([]belief.PolynomialState, len(snaps))
		for i, s := range snaps {
			if s.Polynomial == nil {
				return simulation.Snapshot{}, ErrMixedSnapshots
			}
			states[i] = *s.Polynomial
		}
		fused, err := fusion.PolynomialAverage{}.Fuse(states)
		if err != nil {
			return simulation.Snapshot{}, err
		}
		return simulation.Snapshot{Polynomial: &fused}, nil

	case snaps[0].Dirichlet != nil:
		states := make([]belief.DirichletState, len(snaps))
		for i, s := range snaps {
			if s.Dirichlet == nil {
				return simulation.Snapshot{}, ErrMixedSnapshots
			}
			states[i] = *s.Dirichlet
		}
		fused, err := fusion.DirichletPool{}.Fuse(states)
		if err != nil {
			return simulation.Snapshot{}, err
		}
		return simulation.Snapshot{Dirichlet: &fused}, nil
	}
	return simulation.Snapshot{}, ErrMixedSnapshots
}
