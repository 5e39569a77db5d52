package classify

import (
	"strings"
	"testing"
)

func TestValidatePass1(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid kitchen",
			raw:  `{"room_type":"kitchen","actionable":true,"confidence":0.92}`,
		},
		{
			name:    "unknown room type",
			raw:     `{"room_type":"ballroom","actionable":true,"confidence":0.92}`,
			wantErr: true,
		},
		{
			name:    "confidence out of range",
			raw:     `{"room_type":"kitchen","actionable":true,"confidence":1.2}`,
			wantErr: true,
		},
		{
			name:    "missing actionable",
			raw:     `{"room_type":"kitchen","confidence":0.5}`,
			wantErr: true,
		},
		{
			name:    "extra field",
			raw:     `{"room_type":"kitchen","actionable":false,"confidence":0.5,"notes":"x"}`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			raw:     `pass1: kitchen`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ValidatePass1([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidatePass1(%s) expected error, got %+v", tt.raw, resp)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidatePass1(%s) failed: %v", tt.raw, err)
			}
			if resp.RoomType != "kitchen" || !resp.Actionable {
				t.Errorf("unexpected decode: %+v", resp)
			}
		})
	}
}

func TestValidatePass2(t *testing.T) {
	valid := `{"features":[{"feature_id":"mold","severity":"high","confidence":0.8,"explanation":"dark patches near the ceiling"}]}`

	resp, err := ValidatePass2([]byte(valid))
	if err != nil {
		t.Fatalf("ValidatePass2 failed: %v", err)
	}
	detections := resp.Detections()
	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	if detections[0].FeatureID != "mold" || detections[0].Severity != "high" {
		t.Errorf("unexpected detection: %+v", detections[0])
	}
	if detections[0].Evidence != "dark patches near the ceiling" {
		t.Errorf("explanation not carried into evidence: %+v", detections[0])
	}

	invalid := []string{
		`{"features":[{"feature_id":"mold","severity":"catastrophic","confidence":0.8,"explanation":"x"}]}`,
		`{"features":[{"feature_id":"mold","severity":"high","confidence":1.4,"explanation":"x"}]}`,
		`{}`,
	}
	for _, raw := range invalid {
		if _, err := ValidatePass2([]byte(raw)); err == nil {
			t.Errorf("ValidatePass2(%s) expected error", raw)
		}
	}

	empty := `{"features":[]}`
	resp, err = ValidatePass2([]byte(empty))
	if err != nil {
		t.Fatalf("ValidatePass2 on empty features failed: %v", err)
	}
	if len(resp.Detections()) != 0 {
		t.Error("Expected no detections for empty features")
	}
}

func TestValidatePass2AcceptsUnknownFeatureIDs(t *testing.T) {
	// An out-of-whitelist id must not fail validation: it is dropped per
	// detection in the pipeline, and the valid siblings survive.
	raw := `{"features":[
		{"feature_id":"unknown_widget","severity":"high","confidence":0.8,"explanation":"x"},
		{"feature_id":"cracked_tile","severity":"medium","confidence":0.6,"explanation":"hairline crack"}
	]}`

	resp, err := ValidatePass2([]byte(raw))
	if err != nil {
		t.Fatalf("ValidatePass2 rejected payload with unknown feature id: %v", err)
	}
	detections := resp.Detections()
	if len(detections) != 2 {
		t.Fatalf("Expected both detections decoded, got %d", len(detections))
	}
	if detections[1].FeatureID != "cracked_tile" {
		t.Errorf("valid sibling lost: %+v", detections)
	}
}

func TestPass2RequestSchemaConstrainsFeatureIDs(t *testing.T) {
	// The request-side schema still steers the model with the whitelist enum.
	schema := Pass2Schema()
	features := schema["properties"].(map[string]any)["features"].(map[string]any)
	items := features["items"].(map[string]any)
	featureID := items["properties"].(map[string]any)["feature_id"].(map[string]any)

	enum, ok := featureID["enum"].([]string)
	if !ok || len(enum) == 0 {
		t.Fatalf("request schema feature_id enum missing: %+v", featureID)
	}
	found := false
	for _, id := range enum {
		if id == "mold" {
			found = true
		}
	}
	if !found {
		t.Errorf("request schema enum missing whitelisted id: %v", enum)
	}
}

func TestPass2PromptListsWhitelist(t *testing.T) {
	prompt := Pass2SystemPrompt("kitchen")
	for _, id := range []string{"water_damage", "mold", "cracked_tile"} {
		if !strings.Contains(prompt, id) {
			t.Errorf("pass2 prompt missing feature id %q", id)
		}
	}
	if !strings.Contains(prompt, "kitchen") {
		t.Error("pass2 prompt missing room type")
	}
}
