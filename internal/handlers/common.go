// Package handlers serves the review UI API over the case and feedback
// stores.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/realview-labs/realview/internal/store"
)

type Handler struct {
	cases    *store.CaseStore
	feedback *store.FeedbackStore
	// casesDir is the root of the raw photo folders, served read-only to the
	// review UI.
	casesDir string
}

func New(cases *store.CaseStore, feedback *store.FeedbackStore, casesDir string) *Handler {
	return &Handler{
		cases:    cases,
		feedback: feedback,
		casesDir: casesDir,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
