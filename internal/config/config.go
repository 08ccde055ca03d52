// Package config provides unified configuration loading for coheron.
// It supports loading from YAML files, .env files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Neil-Crago/coheron/internal/entangle"
	"github.com/Neil-Crago/coheron/internal/field"
	"github.com/Neil-Crago/coheron/internal/wavelet"
)

// Belief kinds.
const (
	BeliefGaussian   = "gaussian"
	BeliefKalman     = "kalman"
	BeliefPolynomial = "polynomial"
	BeliefDirichlet  = "dirichlet"
)

// Field kinds.
const (
	FieldGrid = "grid"
	FieldWave = "wave"
)

// Actuators and synthesizers.
const (
	ActuatorHold      = "hold"
	ActuatorIntegrate = "integrate"

	SynthReference = "reference"
	SynthCoupled   = "coupled"
)

// EnvFileVar names the variable selecting the .env file to load.
const EnvFileVar = "COHERON_ENV"

// CoheronConfig contains all coheron configuration settings.
type CoheronConfig struct {
	// Simulation controls the stepping loop.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Belief selects and seeds the belief variant.
	Belief BeliefConfig `json:"belief" yaml:"belief"`

	// Field selects and shapes the resonance field.
	Field FieldConfig `json:"field" yaml:"field"`

	// Entanglement seeds domain couplings and optional reinforcement.
	Entanglement EntanglementConfig `json:"entanglement" yaml:"entanglement"`

	// Spectral configures wavelet decomposition of field signals.
	Spectral SpectralConfig `json:"spectral" yaml:"spectral"`

	// Ensemble configures concurrent runs fused into one posterior.
	Ensemble EnsembleConfig `json:"ensemble" yaml:"ensemble"`

	// Logging contains settings for operational and step logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Telemetry configures OpenTelemetry tracing.
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// SimulationConfig controls how an engine is stepped.
type SimulationConfig struct {
	// Steps is the number of engine steps per run.
	Steps int `json:"steps" yaml:"steps" env:"COHERON_STEPS"`

	// Seed seeds the random source. Runs with equal seeds are identical.
	Seed int64 `json:"seed" yaml:"seed" env:"COHERON_SEED"`

	// DT is the integration step for the integrate actuator.
	DT float64 `json:"dt" yaml:"dt" env:"COHERON_DT"`

	// Actuator is "hold" (default) or "integrate".
	Actuator string `json:"actuator" yaml:"actuator" env:"COHERON_ACTUATOR"`

	// Synthesizer is "reference" (default) or "coupled".
	Synthesizer string `json:"synthesizer" yaml:"synthesizer" env:"COHERON_SYNTHESIZER"`

	// Gain scales the coupled synthesizer's response to coupling strength.
	Gain float64 `json:"gain" yaml:"gain" env:"COHERON_GAIN"`

	// Domain is the belief's domain label used for coupling lookups.
	Domain string `json:"domain" yaml:"domain" env:"COHERON_DOMAIN"`

	// Pace is the minimum interval between steps (0 = unpaced).
	Pace time.Duration `json:"pace" yaml:"pace" env:"COHERON_PACE"`
}

// BeliefConfig selects a belief variant and its prior.
type BeliefConfig struct {
	// Kind is "gaussian", "kalman", "polynomial" or "dirichlet".
	Kind string `json:"kind" yaml:"kind" env:"COHERON_BELIEF"`

	// Mean and Variance seed gaussian and kalman priors.
	Mean     float64 `json:"mean" yaml:"mean" env:"COHERON_BELIEF_MEAN"`
	Variance float64 `json:"variance" yaml:"variance" env:"COHERON_BELIEF_VARIANCE"`

	// Drift is the gaussian's per-observation semantic drift.
	Drift float64 `json:"drift" yaml:"drift"`

	// Velocity seeds the kalman velocity component.
	Velocity float64 `json:"velocity" yaml:"velocity"`

	// ProcessNoise and MeasurementNoise parameterise the kalman filter.
	ProcessNoise     float64 `json:"process_noise" yaml:"process_noise"`
	MeasurementNoise float64 `json:"measurement_noise" yaml:"measurement_noise"`

	// Coeffs and Noise seed a polynomial prior.
	Coeffs []float64 `json:"coeffs,omitempty" yaml:"coeffs,omitempty" env:"COHERON_BELIEF_COEFFS"`
	Noise  float64   `json:"noise" yaml:"noise"`

	// Alpha seeds a dirichlet prior.
	Alpha []float64 `json:"alpha,omitempty" yaml:"alpha,omitempty" env:"COHERON_BELIEF_ALPHA"`
}

// FieldConfig selects a field and the agent's starting position.
type FieldConfig struct {
	// Kind is "grid" (default) or "wave".
	Kind string `json:"kind" yaml:"kind" env:"COHERON_FIELD"`

	// Domain labels the field for coupling lookups and spectral output.
	Domain string `json:"domain" yaml:"domain"`

	// Width, Height and Initial shape a grid field.
	Width   int     `json:"width" yaml:"width" env:"COHERON_GRID_WIDTH"`
	Height  int     `json:"height" yaml:"height" env:"COHERON_GRID_HEIGHT"`
	Initial float64 `json:"initial" yaml:"initial"`

	// Cells overrides individual grid cells.
	Cells []CellConfig `json:"cells,omitempty" yaml:"cells,omitempty"`

	// Damping scales propagated resonance.
	Damping float64 `json:"damping" yaml:"damping"`

	// Wave shapes a wave field.
	Wave field.WaveConfig `json:"wave" yaml:"wave"`

	// StartX and StartY position the agent. A wave field uses StartX only.
	StartX float64 `json:"start_x" yaml:"start_x" env:"COHERON_START_X"`
	StartY float64 `json:"start_y" yaml:"start_y" env:"COHERON_START_Y"`
}

// CellConfig sets one grid cell.
type CellConfig struct {
	X     int     `json:"x" yaml:"x"`
	Y     int     `json:"y" yaml:"y"`
	Value float64 `json:"value" yaml:"value"`
}

// CouplingConfig seeds one domain pair.
type CouplingConfig struct {
	A        string  `json:"a" yaml:"a"`
	B        string  `json:"b" yaml:"b"`
	Strength float64 `json:"strength" yaml:"strength"`
	Phase    float64 `json:"phase" yaml:"phase"`
}

// EntanglementConfig seeds couplings and configures reinforcement.
type EntanglementConfig struct {
	Couplings []CouplingConfig `json:"couplings,omitempty" yaml:"couplings,omitempty"`

	// Reinforce applies Hebbian reinforcement between belief and field
	// domains after every committed step.
	Reinforce bool `json:"reinforce" yaml:"reinforce" env:"COHERON_REINFORCE"`

	Hebbian entangle.HebbianConfig `json:"hebbian" yaml:"hebbian"`
}

// SpectralConfig configures wavelet analysis of field signals.
type SpectralConfig struct {
	Level     int                `json:"level" yaml:"level" env:"COHERON_SPECTRAL_LEVEL"`
	Bases     []string           `json:"bases" yaml:"bases" env:"COHERON_SPECTRAL_BASES"`
	Weights   map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty" env:"COHERON_SPECTRAL_WEIGHTS"`
	Rule      string             `json:"rule" yaml:"rule" env:"COHERON_SPECTRAL_RULE"`
	Threshold float64            `json:"threshold" yaml:"threshold"`
}

// FusionContext converts the spectral settings for the wavelet service.
func (s SpectralConfig) FusionContext() wavelet.FusionContext {
	return wavelet.FusionContext{Bases: s.Bases, Weights: s.Weights, Rule: s.Rule}
}

// EnsembleConfig configures ensemble runs.
type EnsembleConfig struct {
	// Members is the number of independent engines.
	Members int `json:"members" yaml:"members" env:"COHERON_ENSEMBLE_MEMBERS"`

	// Concurrency caps engines running at once (0 = unlimited).
	Concurrency int `json:"concurrency" yaml:"concurrency" env:"COHERON_ENSEMBLE_CONCURRENCY"`

	// Strategy names the fusion strategy for member posteriors.
	Strategy string `json:"strategy" yaml:"strategy" env:"COHERON_ENSEMBLE_STRATEGY"`

	// Amplitude scales means under the resonance_modulated strategy.
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
}

// LoggingConfig configures coheron's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables step tracing to <trace_dir>/steps.jsonl.
	Level string `json:"level" yaml:"level" env:"COHERON_LOG_LEVEL"`

	// TraceDir is where step traces are written.
	TraceDir string `json:"trace_dir" yaml:"trace_dir" env:"COHERON_TRACE_DIR"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector URL. Empty disables export.
	Endpoint string `json:"endpoint" yaml:"endpoint" env:"COHERON_OTEL_ENDPOINT"`

	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `json:"service_name" yaml:"service_name" env:"COHERON_OTEL_SERVICE_NAME"`

	// SampleRatio is the fraction of root traces recorded, in [0, 1].
	SampleRatio float64 `json:"sample_ratio" yaml:"sample_ratio" env:"COHERON_OTEL_SAMPLE_RATIO"`
}

// Default returns a CoheronConfig with sensible defaults.
func Default() *CoheronConfig {
	return &CoheronConfig{
		Simulation: SimulationConfig{
			Steps:       10,
			Seed:        1,
			DT:          0.1,
			Actuator:    ActuatorHold,
			Synthesizer: SynthReference,
			Gain:        1,
			Domain:      "belief",
		},
		Belief: BeliefConfig{
			Kind:             BeliefGaussian,
			Mean:             0.5,
			Variance:         0.2,
			ProcessNoise:     0.01,
			MeasurementNoise: 0.1,
			Coeffs:           []float64{0, 1},
			Noise:            0.1,
			Alpha:            []float64{1, 1, 1},
		},
		Field: FieldConfig{
			Kind:    FieldGrid,
			Domain:  "field",
			Width:   8,
			Height:  8,
			Initial: field.DefaultGridValue,
			Damping: field.DefaultDamping,
			Wave:    field.DefaultWaveConfig(),
			StartX:  1,
			StartY:  1,
		},
		Entanglement: EntanglementConfig{
			Hebbian: entangle.DefaultHebbianConfig(),
		},
		Spectral: SpectralConfig{
			Level:     2,
			Bases:     wavelet.Names(),
			Rule:      wavelet.RuleAverage,
			Threshold: 0.1,
		},
		Ensemble: EnsembleConfig{
			Members:   4,
			Strategy:  "inverse_variance",
			Amplitude: 1,
		},
		Logging: LoggingConfig{
			Level:    "info",
			TraceDir: ".coheron",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "coheron",
			SampleRatio: 1,
		},
	}
}

// DefaultPath returns ~/.coheron/config.yaml, or "" when the home directory
// cannot be resolved.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".coheron", "config.yaml")
}

// Load builds the effective configuration.
// Order: defaults -> YAML file -> .env file -> environment variables.
// An empty path falls back to DefaultPath when that file exists.
func Load(path string) (*CoheronConfig, error) {
	config := Default()

	if path == "" {
		if p := DefaultPath(); p != "" {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	LoadDotEnv()

	if err := ParseEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of the
// defaults.
func LoadFromFile(path string) (*CoheronConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// LoadDotEnv reads the file named by COHERON_ENV (or .env by default).
// Variables already present in the environment win. A missing file is
// not an error.
func LoadDotEnv() {
	envFile := os.Getenv(EnvFileVar)
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
}

// ParseEnv applies COHERON_* environment overrides to target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *CoheronConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
