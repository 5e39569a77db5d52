package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/realview-labs/realview/internal/config"
	"github.com/realview-labs/realview/internal/pipeline"
	"github.com/realview-labs/realview/internal/store"
)

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [property_id...]",
		Short: "Run the analysis pipeline over property photo folders",
		Long: `Runs both analysis passes over the photos of each named property and
saves one case record per property. Each property id must match a folder
under the cases directory. With no arguments every folder is processed.

Re-running a property replaces its case record wholesale.`,
		Example: `  # Process every property folder under the cases directory
  realview process

  # Process two specific properties
  realview process case_001 case_002`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			classifier, err := newClassifier(cfg)
			if err != nil {
				return err
			}

			properties := args
			if len(properties) == 0 {
				properties, err = listPropertyFolders(cfg.CasesDir)
				if err != nil {
					return err
				}
				if len(properties) == 0 {
					return fmt.Errorf("no property folders found in %s", cfg.CasesDir)
				}
			}

			cases, err := store.OpenCaseStore(cfg.OutputDir)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(classifier, cfg.Concurrency)
			for _, propertyID := range properties {
				dir := filepath.Join(cfg.CasesDir, propertyID)
				slog.Info("Processing property", "property_id", propertyID, "dir", dir, "provider", cfg.Provider)

				record, err := runner.ProcessFolder(cmd.Context(), propertyID, dir)
				if err != nil {
					return err
				}
				if err := cases.Save(record); err != nil {
					return err
				}

				slog.Info("Property processed",
					"property_id", propertyID,
					"images", len(record.Images),
					"rooms", len(record.Rooms),
					"target", len(record.TargetImages),
					"review", len(record.ReviewImages),
				)
			}

			return nil
		},
	}

	return cmd
}

// listPropertyFolders returns the property ids under dir, one per subfolder.
func listPropertyFolders(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases directory: %w", err)
	}

	var properties []string
	for _, entry := range entries {
		if entry.IsDir() {
			properties = append(properties, entry.Name())
		}
	}
	sort.Strings(properties)
	return properties, nil
}
