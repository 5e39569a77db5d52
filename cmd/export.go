package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/realview-labs/realview/internal/benchmark"
	"github.com/realview-labs/realview/internal/config"
	"github.com/realview-labs/realview/internal/export"
	"github.com/realview-labs/realview/internal/store"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export case data for offline analysis or review",
		Long: `Exports processed case records in the format implied by the output file
extension:

  .parquet  flattened per-detection dataset
  .jsonl    flattened per-detection dataset
  .xlsx     reviewer workbook with findings, summary and at-risk sheets`,
		Example: `  # Columnar dataset for notebooks
  realview export --output detections.parquet

  # Workbook for reviewers
  realview export --output review.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cases, err := store.OpenCaseStore(cfg.OutputDir)
			if err != nil {
				return err
			}
			records := cases.List()
			if len(records) == 0 {
				return fmt.Errorf("no case records in %s; run process first", cfg.OutputDir)
			}

			switch strings.ToLower(filepath.Ext(output)) {
			case ".parquet", ".jsonl":
				rows := export.FlattenDetections(records)
				if err := export.WriteDataset(output, rows); err != nil {
					return err
				}
				slog.Info("Dataset exported", "output", output, "rows", len(rows))
			case ".xlsx":
				feedback, err := store.OpenFeedbackStore(filepath.Join(cfg.OutputDir, "feedback.json"), cases)
				if err != nil {
					return err
				}
				summary := benchmark.Compute(records, feedback.List())
				if err := export.SaveWorkbook(output, records, summary); err != nil {
					return err
				}
				slog.Info("Workbook exported", "output", output, "properties", len(records))
			default:
				return fmt.Errorf("unsupported export format: %s (supported: .parquet, .jsonl, .xlsx)", filepath.Ext(output))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.parquet, .jsonl or .xlsx)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
