// Package cmd wires the realview CLI.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realview",
		Short: "Property inspection photo analysis with LLM-powered damage detection",
		Long: `Realview analyzes property inspection photos using vision-capable LLMs.

A two-pass pipeline classifies each photo by room type, detects damage
features in actionable kitchen and bathroom images, and consolidates the
findings into per-property case records. Reviewer feedback on those records
feeds a benchmark that tracks classifier precision and recall over time.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newProcessCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}
