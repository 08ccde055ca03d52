package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Neil-Crago/coheron/internal/ensemble"
	"github.com/Neil-Crago/coheron/internal/fusion"
	"github.com/Neil-Crago/coheron/internal/simulation"
)

func newFuseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuse <file|->",
		Short: "Fuse belief snapshots from a file",
		Long: `Fuse a list of belief snapshots into one. The input is a YAML or JSON
list where every entry carries exactly one of gaussian, polynomial or
dirichlet, all of the same shape. Use "-" to read standard input.

Examples:
  coheron fuse snapshots.yaml
  coheron fuse --strategy resonance_modulated --amplitude 0.8 snapshots.json
  coheron run --json | jq '[.state]' | coheron fuse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			name := cfg.Ensemble.Strategy
			if cmd.Flags().Changed("strategy") {
				name, _ = cmd.Flags().GetString("strategy")
			}
			amplitude := cfg.Ensemble.Amplitude
			if cmd.Flags().Changed("amplitude") {
				amplitude, _ = cmd.Flags().GetFloat64("amplitude")
			}
			strategy, err := fusion.Lookup(name, amplitude)
			if err != nil {
				return err
			}

			snaps, err := readSnapshots(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			fused, err := ensemble.Fuse(snaps, strategy)
			if err != nil {
				return fmt.Errorf("fuse %d snapshots: %w", len(snaps), err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), fused)
			}
			printSnapshot(cmd.OutOrStdout(), "Fused", fused)
			return nil
		},
	}
	cmd.Flags().String("strategy", "", "Gaussian fusion strategy (default from config)")
	cmd.Flags().Float64("amplitude", 0, "Amplitude for resonance_modulated fusion (default from config)")
	return cmd
}

// readSnapshots decodes a snapshot list from path, or from stdin when path is "-".
func readSnapshots(stdin io.Reader, path string) ([]simulation.Snapshot, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}

	var snaps []simulation.Snapshot
	if err := yaml.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("failed to parse snapshots: %w", err)
	}
	return snaps, nil
}
