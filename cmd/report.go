package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/realview-labs/realview/internal/benchmark"
	"github.com/realview-labs/realview/internal/config"
	"github.com/realview-labs/realview/internal/store"
)

func newReportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the benchmark summary from cases and feedback",
		Long: `Folds every case record and the reviewer feedback log into a benchmark
summary: classification precision and recall, funnel statistics, damage
leaderboards and the at-risk property ranking.

The summary is recomputed from scratch on every run; running it twice over
unchanged state produces identical numbers.`,
		Example: `  # Print the summary to the terminal
  realview report

  # Also write it to a file (format from extension: .json or .yaml)
  realview report --output benchmark.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cases, err := store.OpenCaseStore(cfg.OutputDir)
			if err != nil {
				return err
			}
			feedback, err := store.OpenFeedbackStore(filepath.Join(cfg.OutputDir, "feedback.json"), cases)
			if err != nil {
				return err
			}

			summary := benchmark.Compute(cases.List(), feedback.List())
			summary.PrintSummary()

			if output == "" {
				return nil
			}
			switch strings.ToLower(filepath.Ext(output)) {
			case ".json":
				err = summary.SaveToJSON(output)
			case ".yaml", ".yml":
				err = summary.SaveToYAML(output)
			default:
				return fmt.Errorf("unsupported report format: %s (supported: .json, .yaml)", filepath.Ext(output))
			}
			if err != nil {
				return err
			}
			slog.Info("Benchmark summary saved", "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the summary to this file (.json or .yaml)")

	return cmd
}
