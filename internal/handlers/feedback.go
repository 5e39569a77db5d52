package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/realview-labs/realview/internal/benchmark"
	"github.com/realview-labs/realview/internal/inspection"
	"github.com/realview-labs/realview/internal/store"
)

// HandleFeedback serves the reviewer judgment log. GET lists the full log,
// POST appends one entry, DELETE resets the log.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.feedback.List())
	case "POST":
		h.appendFeedback(w, r)
	case "DELETE":
		if err := h.feedback.Reset(); err != nil {
			h.writeError(w, "Failed to reset feedback: "+err.Error(), http.StatusInternalServerError)
			return
		}
		slog.Info("Feedback log reset")
		h.writeJSON(w, map[string]string{"status": "reset"})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) appendFeedback(w http.ResponseWriter, r *http.Request) {
	var entry inspection.FeedbackEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.feedback.Append(entry)
	if err != nil {
		h.writeError(w, err.Error(), feedbackErrorStatus(err))
		return
	}

	slog.Info("Feedback recorded",
		"id", saved.ID,
		"property", saved.PropertyID,
		"filename", saved.Filename,
		"feature", saved.FeatureID,
	)
	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, saved)
}

func feedbackErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrUnknownProperty), errors.Is(err, store.ErrUnknownFilename):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidClassification),
		errors.Is(err, store.ErrInvalidVerdict),
		errors.Is(err, store.ErrAmbiguousEntry):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleBenchmark recomputes the benchmark summary from current state. The
// computation is a pure fold, so hitting this repeatedly is safe and always
// reflects the latest cases and feedback.
func (h *Handler) HandleBenchmark(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, benchmark.Compute(h.cases.List(), h.feedback.List()))
}
