package mcp

import (
	"github.com/Neil-Crago/coheron/internal/belief"
	"github.com/Neil-Crago/coheron/internal/entangle"
	"github.com/Neil-Crago/coheron/internal/field"
	"github.com/Neil-Crago/coheron/internal/simulation"
)

const (
	toolSimulate = "coheron_simulate"
	toolEnsemble = "coheron_ensemble"
	toolFuse     = "coheron_fuse"
	toolAnalyze  = "coheron_analyze"
)

// runOverrides adjusts the server's base configuration for one call.
type runOverrides struct {
	belief      string
	field       string
	steps       int
	seed        *int64
	actuator    string
	synthesizer string
	reinforce   bool
}

// SimulateInput defines the input for the coheron_simulate tool.
type SimulateInput struct {
	Belief       string `json:"belief,omitempty" jsonschema:"Belief kind: gaussian, kalman, polynomial or dirichlet"`
	Field        string `json:"field,omitempty" jsonschema:"Field kind: grid or wave"`
	Steps        int    `json:"steps,omitempty" jsonschema:"Number of engine steps"`
	Seed         *int64 `json:"seed,omitempty" jsonschema:"Seed for the belief's random source"`
	Actuator     string `json:"actuator,omitempty" jsonschema:"Position update policy: hold or integrate"`
	Synthesizer  string `json:"synthesizer,omitempty" jsonschema:"Control law synthesizer: reference or coupled"`
	Reinforce    bool   `json:"reinforce,omitempty" jsonschema:"Reinforce the belief/field coupling after every step"`
	IncludeSteps bool   `json:"include_steps,omitempty" jsonschema:"Return the full per-step trajectory"`
}

func (in SimulateInput) overrides() runOverrides {
	return runOverrides{in.Belief, in.Field, in.Steps, in.Seed, in.Actuator, in.Synthesizer, in.Reinforce}
}

// SimulateOutput defines the output for the coheron_simulate tool.
type SimulateOutput struct {
	RunID      string                  `json:"run_id" jsonschema:"Unique ID of this run"`
	Seed       int64                   `json:"seed" jsonschema:"Seed the run used"`
	StepsTaken int                     `json:"steps_taken" jsonschema:"Number of committed steps"`
	Final      belief.Posterior        `json:"final" jsonschema:"Posterior of the final belief"`
	State      simulation.Snapshot     `json:"state" jsonschema:"Fusable final belief state"`
	Couplings  []entangle.Overlay      `json:"couplings,omitempty" jsonschema:"Domain couplings after the run"`
	Basis      *field.BasisChoice      `json:"basis,omitempty" jsonschema:"Most compact wavelet basis of the final field"`
	Steps      []simulation.StepRecord `json:"steps,omitempty" jsonschema:"Per-step trajectory when requested"`
}

// EnsembleInput defines the input for the coheron_ensemble tool.
type EnsembleInput struct {
	Belief      string `json:"belief,omitempty" jsonschema:"Belief kind: gaussian, kalman, polynomial or dirichlet"`
	Field       string `json:"field,omitempty" jsonschema:"Field kind: grid or wave"`
	Steps       int    `json:"steps,omitempty" jsonschema:"Number of engine steps per member"`
	Seed        *int64 `json:"seed,omitempty" jsonschema:"Seed of the first member; member i uses seed+i"`
	Actuator    string `json:"actuator,omitempty" jsonschema:"Position update policy: hold or integrate"`
	Synthesizer string `json:"synthesizer,omitempty" jsonschema:"Control law synthesizer: reference or coupled"`
	Reinforce   bool   `json:"reinforce,omitempty" jsonschema:"Reinforce the belief/field coupling after every step"`
	Members     int    `json:"members,omitempty" jsonschema:"Number of ensemble members"`
	Strategy    string `json:"strategy,omitempty" jsonschema:"Gaussian fusion strategy: inverse_variance or resonance_modulated"`
}

func (in EnsembleInput) overrides() runOverrides {
	return runOverrides{in.Belief, in.Field, in.Steps, in.Seed, in.Actuator, in.Synthesizer, in.Reinforce}
}

// MemberSummary is one ensemble member's outcome.
type MemberSummary struct {
	RunID string           `json:"run_id"`
	Seed  int64            `json:"seed"`
	Final belief.Posterior `json:"final"`
}

// EnsembleOutput defines the output for the coheron_ensemble tool.
type EnsembleOutput struct {
	EnsembleID string              `json:"ensemble_id" jsonschema:"Unique ID of this ensemble run"`
	Strategy   string              `json:"strategy" jsonschema:"Fusion strategy applied to Gaussian members"`
	Members    []MemberSummary     `json:"members" jsonschema:"Per-member summaries"`
	Fused      simulation.Snapshot `json:"fused" jsonschema:"Fused belief state"`
}

// FuseInput defines the input for the coheron_fuse tool. Exactly one of the
// snapshot lists should be set.
type FuseInput struct {
	Strategy    string                   `json:"strategy,omitempty" jsonschema:"Gaussian fusion strategy: inverse_variance (default) or resonance_modulated"`
	Amplitude   float64                  `json:"amplitude,omitempty" jsonschema:"Amplitude for resonance_modulated fusion (default 1)"`
	Gaussians   []belief.GaussianState   `json:"gaussians,omitempty" jsonschema:"Gaussian snapshots to fuse"`
	Polynomials []belief.PolynomialState `json:"polynomials,omitempty" jsonschema:"Polynomial snapshots to average"`
	Dirichlets  []belief.DirichletState  `json:"dirichlets,omitempty" jsonschema:"Dirichlet snapshots to pool"`
}

// FuseOutput defines the output for the coheron_fuse tool.
type FuseOutput struct {
	Strategy string              `json:"strategy" jsonschema:"Strategy that produced the result"`
	Fused    simulation.Snapshot `json:"fused" jsonschema:"Fused belief state"`
}

// AnalyzeInput defines the input for the coheron_analyze tool.
type AnalyzeInput struct {
	Signal    []float64 `json:"signal" jsonschema:"Samples to analyse; length must be a multiple of 2^level"`
	Level     int       `json:"level,omitempty" jsonschema:"Decomposition depth (default from config)"`
	Bases     []string  `json:"bases,omitempty" jsonschema:"Candidate bases (default: all)"`
	Rule      string    `json:"rule,omitempty" jsonschema:"Coefficient fusion rule: average or max_abs"`
	Smooth    bool      `json:"smooth,omitempty" jsonschema:"Also return the signal denoised with the best basis"`
	Threshold float64   `json:"threshold,omitempty" jsonschema:"Soft threshold for smoothing (default from config)"`
}

// AnalyzeOutput defines the output for the coheron_analyze tool.
type AnalyzeOutput struct {
	Scores      map[string]float64 `json:"scores" jsonschema:"Energy compaction per basis"`
	Best        string             `json:"best" jsonschema:"Basis with the highest compaction"`
	BestScore   float64            `json:"best_score" jsonschema:"Compaction of the best basis"`
	FusedEnergy float64            `json:"fused_energy" jsonschema:"Energy of the fused decomposition"`
	Smoothed    []float64          `json:"smoothed,omitempty" jsonschema:"Denoised signal when requested"`
}
