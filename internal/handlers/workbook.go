package handlers

import (
	"net/http"
	"time"

	"github.com/realview-labs/realview/internal/benchmark"
	"github.com/realview-labs/realview/internal/export"
)

// HandleWorkbook streams the reviewer workbook built from current state.
func (h *Handler) HandleWorkbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cases := h.cases.List()
	summary := benchmark.Compute(cases, h.feedback.List())
	data, err := export.WorkbookBytes(cases, summary)
	if err != nil {
		h.writeError(w, "Failed to build workbook: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filename := "realview_" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(data); err != nil {
		h.writeError(w, "Failed to write workbook: "+err.Error(), http.StatusInternalServerError)
	}
}
