package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Neil-Crago/coheron/internal/config"
	"github.com/Neil-Crago/coheron/internal/ensemble"
	"github.com/Neil-Crago/coheron/internal/fusion"
	"github.com/Neil-Crago/coheron/internal/ratelimit"
	"github.com/Neil-Crago/coheron/internal/simulation"
	"github.com/Neil-Crago/coheron/internal/wavelet"
)

const (
	// maxToolSteps bounds the steps a single tool call may request.
	maxToolSteps = 10000

	// maxToolMembers bounds ensemble size per tool call.
	maxToolMembers = 64
)

// configFor layers per-call overrides over the base configuration.
func (s *Server) configFor(o runOverrides) (*config.CoheronConfig, error) {
	cfg := *s.base
	if o.belief != "" {
		cfg.Belief.Kind = o.belief
	}
	if o.field != "" {
		cfg.Field.Kind = o.field
	}
	if o.steps != 0 {
		if o.steps > maxToolSteps {
			return nil, fmt.Errorf("steps %d exceeds the limit of %d", o.steps, maxToolSteps)
		}
		cfg.Simulation.Steps = o.steps
	}
	if o.seed != nil {
		cfg.Simulation.Seed = *o.seed
	}
	if o.actuator != "" {
		cfg.Simulation.Actuator = o.actuator
	}
	if o.synthesizer != "" {
		cfg.Simulation.Synthesizer = o.synthesizer
	}
	if o.reinforce {
		cfg.Entanglement.Reinforce = true
	}
	// Tool calls are never paced.
	cfg.Simulation.Pace = 0

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (_ *sdk.CallToolResult, _ SimulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(toolSimulate, start, retErr, map[string]string{
			"belief": args.Belief, "field": args.Field, "steps": strconv.Itoa(args.Steps),
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, toolSimulate); err != nil {
		return nil, SimulateOutput{}, err
	}

	cfg, err := s.configFor(args.overrides())
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	res, err := simulation.NewRunner(cfg, s.logger).Run(ctx, cfg.Simulation.Seed)
	if err != nil {
		return nil, SimulateOutput{}, fmt.Errorf("simulation failed after %d steps: %w", len(res.Steps), err)
	}

	out := SimulateOutput{
		RunID:      res.RunID,
		Seed:       res.Seed,
		StepsTaken: len(res.Steps),
		Final:      res.Final,
		State:      res.State,
		Couplings:  res.Couplings,
		Basis:      res.Basis,
	}
	if args.IncludeSteps {
		out.Steps = res.Steps
	}
	return nil, out, nil
}

func (s *Server) handleEnsemble(ctx context.Context, req *sdk.CallToolRequest, args EnsembleInput) (_ *sdk.CallToolResult, _ EnsembleOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(toolEnsemble, start, retErr, map[string]string{
			"members": strconv.Itoa(args.Members), "strategy": args.Strategy,
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, toolEnsemble); err != nil {
		return nil, EnsembleOutput{}, err
	}

	cfg, err := s.configFor(args.overrides())
	if err != nil {
		return nil, EnsembleOutput{}, err
	}
	if args.Members > maxToolMembers {
		return nil, EnsembleOutput{}, fmt.Errorf("members %d exceeds the limit of %d", args.Members, maxToolMembers)
	}
	if args.Members > 0 {
		cfg.Ensemble.Members = args.Members
	}
	if args.Strategy != "" {
		cfg.Ensemble.Strategy = args.Strategy
	}

	e, err := ensemble.New(simulation.NewRunner(cfg, s.logger), cfg.Ensemble, s.logger)
	if err != nil {
		return nil, EnsembleOutput{}, err
	}
	res, err := e.Run(ctx, cfg.Simulation.Seed)
	if err != nil {
		return nil, EnsembleOutput{}, err
	}

	members := make([]MemberSummary, len(res.Members))
	for i, m := range res.Members {
		members[i] = MemberSummary{RunID: m.RunID, Seed: m.Seed, Final: m.Final}
	}
	return nil, EnsembleOutput{
		EnsembleID: res.EnsembleID,
		Strategy:   res.Strategy,
		Members:    members,
		Fused:      res.Fused,
	}, nil
}

func (s *Server) handleFuse(ctx context.Context, req *sdk.CallToolRequest, args FuseInput) (_ *sdk.CallToolResult, _ FuseOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(toolFuse, start, retErr, map[string]string{
			"strategy":    args.Strategy,
			"gaussians":   strconv.Itoa(len(args.Gaussians)),
			"polynomials": strconv.Itoa(len(args.Polynomials)),
			"dirichlets":  strconv.Itoa(len(args.Dirichlets)),
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, toolFuse); err != nil {
		return nil, FuseOutput{}, err
	}

	kinds := 0
	for _, n := range []int{len(args.Gaussians), len(args.Polynomials), len(args.Dirichlets)} {
		if n > 0 {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, FuseOutput{}, errors.New("provide exactly one of gaussians, polynomials or dirichlets")
	}

	switch {
	case len(args.Gaussians) > 0:
		amplitude := args.Amplitude
		if amplitude == 0 {
			amplitude = 1
		}
		strategy, err := fusion.Lookup(args.Strategy, amplitude)
		if err != nil {
			return nil, FuseOutput{}, err
		}
		fused, err := strategy.Fuse(args.Gaussians)
		if err != nil {
			return nil, FuseOutput{}, err
		}
		return nil, FuseOutput{Strategy: strategy.Name(), Fused: simulation.Snapshot{Gaussian: &fused}}, nil

	case len(args.Polynomials) > 0:
		strategy := fusion.PolynomialAverage{}
		fused, err := strategy.Fuse(args.Polynomials)
		if err != nil {
			return nil, FuseOutput{}, err
		}
		return nil, FuseOutput{Strategy: strategy.Name(), Fused: simulation.Snapshot{Polynomial: &fused}}, nil

	default:
		strategy := fusion.DirichletPool{}
		fused, err := strategy.Fuse(args.Dirichlets)
		if err != nil {
			return nil, FuseOutput{}, err
		}
		return nil, FuseOutput{Strategy: strategy.Name(), Fused: simulation.Snapshot{Dirichlet: &fused}}, nil
	}
}

func (s *Server) handleAnalyze(ctx context.Context, req *sdk.CallToolRequest, args AnalyzeInput) (_ *sdk.CallToolResult, _ AnalyzeOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(toolAnalyze, start, retErr, map[string]string{
			"samples": strconv.Itoa(len(args.Signal)), "level": strconv.Itoa(args.Level),
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, toolAnalyze); err != nil {
		return nil, AnalyzeOutput{}, err
	}
	if len(args.Signal) == 0 {
		return nil, AnalyzeOutput{}, errors.New("signal is required")
	}

	level := args.Level
	if level == 0 {
		level = s.base.Spectral.Level
	}
	fctx := s.base.Spectral.FusionContext()
	if len(args.Bases) > 0 {
		fctx.Bases = args.Bases
	}
	if args.Rule != "" {
		fctx.Rule = args.Rule
	}

	scores, err := s.wavelets.Score(args.Signal, fctx, level)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	best, score, _ := wavelet.Best(scores)

	dec, err := s.wavelets.Decompose(args.Signal, fctx, level)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	out := AnalyzeOutput{
		Scores:      scores,
		Best:        best,
		BestScore:   score,
		FusedEnergy: dec.Energy(),
	}
	if args.Smooth {
		threshold := args.Threshold
		if threshold == 0 {
			threshold = s.base.Spectral.Threshold
		}
		smoothed, err := s.wavelets.Smooth(args.Signal, best, level, threshold)
		if err != nil {
			return nil, AnalyzeOutput{}, err
		}
		out.Smoothed = smoothed
	}
	return nil, out, nil
}
