package main

import (
	"github.com/spf13/cobra"

	"github.com/Neil-Crago/coheron/internal/config"
)

// addRunFlags registers the simulation overrides shared by run and ensemble.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("belief", "", "Belief kind: gaussian, kalman, polynomial or dirichlet")
	cmd.Flags().String("field", "", "Field kind: grid or wave")
	cmd.Flags().Int("steps", 0, "Number of engine steps")
	cmd.Flags().Int64("seed", 0, "Seed for the belief's random source")
	cmd.Flags().String("actuator", "", "Position update policy: hold or integrate")
	cmd.Flags().String("synth", "", "Control law synthesizer: reference or coupled")
	cmd.Flags().Bool("reinforce", false, "Reinforce the belief/field coupling after every step")
	cmd.Flags().Duration("pace", 0, "Minimum wall-clock interval between steps")
}

// applyRunFlags layers explicitly set flags over cfg and validates the result.
func applyRunFlags(cmd *cobra.Command, cfg *config.CoheronConfig) error {
	flags := cmd.Flags()
	if flags.Changed("belief") {
		cfg.Belief.Kind, _ = flags.GetString("belief")
	}
	if flags.Changed("field") {
		cfg.Field.Kind, _ = flags.GetString("field")
	}
	if flags.Changed("steps") {
		cfg.Simulation.Steps, _ = flags.GetInt("steps")
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("actuator") {
		cfg.Simulation.Actuator, _ = flags.GetString("actuator")
	}
	if flags.Changed("synth") {
		cfg.Simulation.Synthesizer, _ = flags.GetString("synth")
	}
	if flags.Changed("reinforce") {
		cfg.Entanglement.Reinforce, _ = flags.GetBool("reinforce")
	}
	if flags.Changed("pace") {
		cfg.Simulation.Pace, _ = flags.GetDuration("pace")
	}
	return cfg.Validate()
}
