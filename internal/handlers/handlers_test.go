package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realview-labs/realview/internal/benchmark"
	"github.com/realview-labs/realview/internal/inspection"
	"github.com/realview-labs/realview/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	dir := t.TempDir()

	cases, err := store.OpenCaseStore(filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.NoError(t, cases.Save(&inspection.CaseRecord{
		PropertyID: "case_001",
		CreatedAt:  time.Now().UTC(),
		Images: []inspection.ImageRecord{
			{
				Filename: "bath1.jpg",
				Pass1:    &inspection.Pass1Result{RoomType: "bathroom", Actionable: true, Confidence: 0.9},
				Pass2: []inspection.FeatureDetection{
					{FeatureID: "mold", Severity: inspection.SeverityHigh, Confidence: 0.85, Evidence: "grout line"},
				},
			},
		},
		TargetImages: []string{"bath1.jpg"},
	}))

	feedback, err := store.OpenFeedbackStore(filepath.Join(dir, "feedback.json"), cases)
	require.NoError(t, err)

	casesDir := filepath.Join(dir, "cases")
	require.NoError(t, os.MkdirAll(filepath.Join(casesDir, "case_001"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(casesDir, "case_001", "bath1.jpg"), []byte("jpegbytes"), 0644))

	return New(cases, feedback, casesDir), casesDir
}

func TestHandleProperties(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleProperties(rec, httptest.NewRequest("GET", "/api/properties", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "case_001")
}

func TestHandlePropertyDetail(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandlePropertyDetail(rec, httptest.NewRequest("GET", "/api/properties/case_001", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bath1.jpg")

	rec = httptest.NewRecorder()
	h.HandlePropertyDetail(rec, httptest.NewRequest("GET", "/api/properties/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleImage(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleImage(rec, httptest.NewRequest("GET", "/api/images/case_001/bath1.jpg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpegbytes", rec.Body.String())

	// Filenames outside the case record are refused even if they exist on
	// disk.
	rec = httptest.NewRecorder()
	h.HandleImage(rec, httptest.NewRequest("GET", "/api/images/case_001/other.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleImage(rec, httptest.NewRequest("GET", "/api/images/case_001", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFeedbackLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"property_id":"case_001","filename":"bath1.jpg","classification":"correct"}`
	rec := httptest.NewRecorder()
	h.HandleFeedback(rec, httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id"`)

	rec = httptest.NewRecorder()
	h.HandleFeedback(rec, httptest.NewRequest("GET", "/api/feedback", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "correct")

	rec = httptest.NewRecorder()
	h.HandleFeedback(rec, httptest.NewRequest("DELETE", "/api/feedback", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleFeedback(rec, httptest.NewRequest("GET", "/api/feedback", nil))
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHandleFeedbackValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{
			name: "unknown property",
			body: `{"property_id":"nope","filename":"bath1.jpg","classification":"correct"}`,
			code: http.StatusNotFound,
		},
		{
			name: "unknown filename",
			body: `{"property_id":"case_001","filename":"nope.jpg","classification":"correct"}`,
			code: http.StatusNotFound,
		},
		{
			name: "bad classification",
			body: `{"property_id":"case_001","filename":"bath1.jpg","classification":"great"}`,
			code: http.StatusBadRequest,
		},
		{
			name: "malformed json",
			body: `{`,
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleFeedback(rec, httptest.NewRequest("POST", "/api/feedback", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestHandleBenchmark(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"property_id":"case_001","filename":"bath1.jpg","classification":"correct"}`
	rec := httptest.NewRecorder()
	h.HandleFeedback(rec, httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleBenchmark(rec, httptest.NewRequest("GET", "/api/benchmark", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary benchmark.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Properties)
	assert.Equal(t, 1, summary.Classification.Correct)
	assert.Equal(t, 1.0, summary.Classification.Precision)
}

func TestHandleWorkbook(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleWorkbook(rec, httptest.NewRequest("GET", "/api/export/workbook", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleProperties(rec, httptest.NewRequest("POST", "/api/properties", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleBenchmark(rec, httptest.NewRequest("POST", "/api/benchmark", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
