package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/realview-labs/realview/internal/images"
)

// HandleProperties serves the full list of processed case records.
func (h *Handler) HandleProperties(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.cases.List())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePropertyDetail serves a single case record by property id.
func (h *Handler) HandlePropertyDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	propertyID := strings.TrimPrefix(r.URL.Path, "/api/properties/")
	record, ok := h.cases.Get(propertyID)
	if !ok {
		h.writeError(w, "Property not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, record)
}

// HandleImage serves a raw photo from a property folder for the review UI.
// Only filenames recorded in the property's case are served, which also rules
// out path traversal.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/images/")
	propertyID, filename, ok := strings.Cut(rest, "/")
	if !ok || propertyID == "" || filename == "" {
		h.writeError(w, "Expected /api/images/{property}/{filename}", http.StatusBadRequest)
		return
	}

	record, found := h.cases.Get(propertyID)
	if !found {
		h.writeError(w, "Property not found", http.StatusNotFound)
		return
	}
	if _, found := record.Image(filename); !found {
		h.writeError(w, "Image not found", http.StatusNotFound)
		return
	}
	if !images.Supported(filename) {
		h.writeError(w, "Unsupported image type", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.casesDir, propertyID, filename))
}
