package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func chatResponse(content string) string {
	msg := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	raw, _ := json.Marshal(msg)
	return string(raw)
}

func TestPass1(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var body struct {
			Model          string         `json:"model"`
			ResponseFormat map[string]any `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if body.Model != "gpt-4.1-mini" {
			t.Errorf("unexpected model %q", body.Model)
		}
		if body.ResponseFormat["type"] != "json_schema" {
			t.Errorf("expected json_schema response format, got %v", body.ResponseFormat["type"])
		}

		fmt.Fprint(w, chatResponse(`{"room_type":"bathroom","actionable":true,"confidence":0.87}`))
	}))
	defer server.Close()

	client := New(Options{APIKey: "test-key", Model: "gpt-4.1-mini", BaseURL: server.URL})

	result, err := client.Pass1(context.Background(), "data:image/jpeg;base64,Zm9v")
	if err != nil {
		t.Fatalf("Pass1 failed: %v", err)
	}
	if result.RoomType != "bathroom" || !result.Actionable || result.Confidence != 0.87 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestPass1RejectsInvalidPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse(`{"room_type":"spaceship","actionable":true,"confidence":0.87}`))
	}))
	defer server.Close()

	client := New(Options{APIKey: "test-key", Model: "gpt-4.1-mini", BaseURL: server.URL})

	if _, err := client.Pass1(context.Background(), "data:image/jpeg;base64,Zm9v"); err == nil {
		t.Error("Expected schema validation error for unknown room type")
	}
}

func TestPass2(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse(`{"features":[{"feature_id":"cracked_tile","severity":"medium","confidence":0.71,"explanation":"hairline crack by the drain"}]}`))
	}))
	defer server.Close()

	client := New(Options{APIKey: "test-key", Model: "gpt-4.1-mini", BaseURL: server.URL})

	detections, err := client.Pass2(context.Background(), "data:image/jpeg;base64,Zm9v", "bathroom")
	if err != nil {
		t.Fatalf("Pass2 failed: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	if detections[0].FeatureID != "cracked_tile" || detections[0].Severity != "medium" {
		t.Errorf("unexpected detection: %+v", detections[0])
	}
}

func TestPass2KeepsSiblingsOfUnknownFeature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse(`{"features":[{"feature_id":"unknown_widget","severity":"high","confidence":0.9,"explanation":"x"},{"feature_id":"mold","severity":"high","confidence":0.8,"explanation":"dark patches"}]}`))
	}))
	defer server.Close()

	client := New(Options{APIKey: "test-key", Model: "gpt-4.1-mini", BaseURL: server.URL})

	// Unknown ids pass through the backend; the pipeline whitelist drops
	// them per detection, so the image must not fail here.
	detections, err := client.Pass2(context.Background(), "data:image/jpeg;base64,Zm9v", "bathroom")
	if err != nil {
		t.Fatalf("Pass2 failed on unknown feature id: %v", err)
	}
	if len(detections) != 2 {
		t.Fatalf("Expected 2 detections, got %d", len(detections))
	}
	if detections[1].FeatureID != "mold" {
		t.Errorf("valid detection lost: %+v", detections)
	}
}

func TestCallRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, chatResponse(`{"room_type":"kitchen","actionable":false,"confidence":0.4}`))
	}))
	defer server.Close()

	client := New(Options{
		APIKey:     "test-key",
		Model:      "gpt-4.1-mini",
		BaseURL:    server.URL,
		MaxRetries: 3,
		Backoff:    time.Millisecond,
	})

	result, err := client.Pass1(context.Background(), "data:image/jpeg;base64,Zm9v")
	if err != nil {
		t.Fatalf("Pass1 failed after retries: %v", err)
	}
	if result.RoomType != "kitchen" {
		t.Errorf("unexpected result: %+v", result)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 calls, got %d", calls.Load())
	}
}
