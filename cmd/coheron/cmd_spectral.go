package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Neil-Crago/coheron/internal/logging"
	"github.com/Neil-Crago/coheron/internal/wavelet"
)

// spectralOutput is the JSON shape of the spectral command.
type spectralOutput struct {
	Level       int                `json:"level"`
	Scores      map[string]float64 `json:"scores"`
	Best        string             `json:"best"`
	BestScore   float64            `json:"best_score"`
	FusedEnergy float64            `json:"fused_energy"`
	Smoothed    []float64          `json:"smoothed,omitempty"`
}

func newSpectralCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectral [samples...]",
		Short: "Score wavelet bases on a signal",
		Long: `Decompose a signal with every candidate wavelet basis, report each
basis's energy compaction and pick the most compact one. Samples come from
the arguments or from --file (whitespace or comma separated).

Examples:
  coheron spectral 4 6 10 12 8 6 5 5
  coheron spectral --file signal.txt --level 3 --smooth --threshold 0.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("level") {
				cfg.Spectral.Level, _ = flags.GetInt("level")
			}
			if flags.Changed("bases") {
				cfg.Spectral.Bases, _ = flags.GetStringSlice("bases")
			}
			if flags.Changed("rule") {
				cfg.Spectral.Rule, _ = flags.GetString("rule")
			}
			if flags.Changed("threshold") {
				cfg.Spectral.Threshold, _ = flags.GetFloat64("threshold")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			signal, err := readSignal(cmd, args)
			if err != nil {
				return err
			}

			svc := wavelet.NewService(logging.NewLogger(cfg.Logging.Level, os.Stderr))
			fctx := cfg.Spectral.FusionContext()
			scores, err := svc.Score(signal, fctx, cfg.Spectral.Level)
			if err != nil {
				return err
			}
			best, bestScore, _ := wavelet.Best(scores)
			dec, err := svc.Decompose(signal, fctx, cfg.Spectral.Level)
			if err != nil {
				return err
			}

			out := spectralOutput{
				Level:       cfg.Spectral.Level,
				Scores:      scores,
				Best:        best,
				BestScore:   bestScore,
				FusedEnergy: dec.Energy(),
			}
			if smooth, _ := flags.GetBool("smooth"); smooth {
				out.Smoothed, err = svc.Smooth(signal, best, cfg.Spectral.Level, cfg.Spectral.Threshold)
				if err != nil {
					return err
				}
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printSpectral(cmd, out)
			return nil
		},
	}
	cmd.Flags().String("file", "", "Read samples from a file")
	cmd.Flags().Int("level", 0, "Decomposition depth (default from config)")
	cmd.Flags().StringSlice("bases", nil, "Candidate bases (default from config)")
	cmd.Flags().String("rule", "", "Coefficient fusion rule: average or max_abs")
	cmd.Flags().Bool("smooth", false, "Also print the signal denoised with the best basis")
	cmd.Flags().Float64("threshold", 0, "Soft threshold for smoothing (default from config)")
	return cmd
}

// readSignal collects samples from args, or from --file when no args are given.
func readSignal(cmd *cobra.Command, args []string) ([]float64, error) {
	fields := args
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("pass samples as arguments or --file, not both")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read signal: %w", err)
		}
		fields = strings.FieldsFunc(string(data), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no samples given")
	}

	signal := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		signal[i] = v
	}
	return signal, nil
}

func printSpectral(cmd *cobra.Command, out spectralOutput) {
	w := cmd.OutOrStdout()
	names := make([]string, 0, len(out.Scores))
	for n := range out.Scores {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Level %d compaction:\n", out.Level)
	for _, n := range names {
		marker := " "
		if n == out.Best {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %-6s %.4f\n", marker, n, out.Scores[n])
	}
	fmt.Fprintf(w, "Fused energy: %.4f\n", out.FusedEnergy)
	if out.Smoothed != nil {
		fmt.Fprintf(w, "Smoothed (%s): %s\n", out.Best, formatPosition(out.Smoothed))
	}
}
