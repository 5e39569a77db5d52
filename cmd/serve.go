package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/realview-labs/realview/internal/config"
	"github.com/realview-labs/realview/internal/handlers"
	"github.com/realview-labs/realview/internal/store"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the review API server",
		Long: `Starts the Realview review API on the specified port.

The API serves processed case records and property photos, accepts reviewer
feedback on classifications and detections, and computes the benchmark
summary on demand.`,
		Example: `  # Start server on default port 8888
  realview serve

  # Start server on custom port
  realview serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Port
			}

			cases, err := store.OpenCaseStore(cfg.OutputDir)
			if err != nil {
				return err
			}
			feedback, err := store.OpenFeedbackStore(filepath.Join(cfg.OutputDir, "feedback.json"), cases)
			if err != nil {
				return err
			}

			handler := handlers.New(cases, feedback, cfg.CasesDir)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/properties", handler.HandleProperties)
			mux.HandleFunc("/api/properties/", handler.HandlePropertyDetail)
			mux.HandleFunc("/api/images/", handler.HandleImage)
			mux.HandleFunc("/api/feedback", handler.HandleFeedback)
			mux.HandleFunc("/api/benchmark", handler.HandleBenchmark)
			mux.HandleFunc("/api/export/workbook", handler.HandleWorkbook)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Review API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
