package classify

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/realview-labs/realview/internal/inspection"
)

// Pass1Response is the decoded Pass 1 payload.
type Pass1Response struct {
	RoomType   string  `json:"room_type"`
	Actionable bool    `json:"actionable"`
	Confidence float64 `json:"confidence"`
}

// Pass2Response is the decoded Pass 2 payload.
type Pass2Response struct {
	Features []Pass2Feature `json:"features"`
}

// Pass2Feature is one detection in a Pass 2 payload.
type Pass2Feature struct {
	FeatureID   string  `json:"feature_id"`
	Severity    string  `json:"severity"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// allFeatureIDs is the sorted union of the per-room whitelists, used as the
// schema-level enum. Room-scoped filtering happens in the pipeline.
func allFeatureIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, list := range inspection.FeatureWhitelist {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// Pass1Schema returns the JSON schema the model's Pass 1 response must match.
func Pass1Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"room_type":  map[string]any{"type": "string", "enum": inspection.RoomTypes},
			"actionable": map[string]any{"type": "boolean"},
			"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		},
		"required": []string{"room_type", "actionable", "confidence"},
	}
}

// Pass2Schema returns the request-side JSON schema sent to providers. The
// feature_id enum steers the model toward the whitelist but is advisory:
// inbound validation does not re-apply it, so an out-of-whitelist id reaches
// the pipeline and is dropped there per detection instead of failing the
// whole image.
func Pass2Schema() map[string]any {
	return pass2Schema(true)
}

func pass2Schema(constrainFeatureIDs bool) map[string]any {
	featureID := map[string]any{"type": "string"}
	if constrainFeatureIDs {
		featureID["enum"] = allFeatureIDs()
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"features": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"feature_id": featureID,
						"severity":   map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
						"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
						"explanation": map[string]any{
							"type": "string",
						},
					},
					"required": []string{"feature_id", "severity", "confidence", "explanation"},
				},
			},
		},
		"required": []string{"features"},
	}
}

var (
	compileOnce  sync.Once
	pass1Compile *jsonschema.Schema
	pass2Compile *jsonschema.Schema
	compileErr   error
)

func compiled() (*jsonschema.Schema, *jsonschema.Schema, error) {
	compileOnce.Do(func() {
		pass1Compile, compileErr = compileSchema("pass1.json", Pass1Schema())
		if compileErr != nil {
			return
		}
		// Inbound validation leaves feature_id unconstrained: unknown ids
		// are recoverable and handled per detection downstream.
		pass2Compile, compileErr = compileSchema("pass2.json", pass2Schema(false))
	})
	return pass1Compile, pass2Compile, compileErr
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	sch, err := jsonschema.CompileString(name, string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", name, err)
	}
	return sch, nil
}

// ValidatePass1 checks a raw Pass 1 payload against the schema and decodes it.
func ValidatePass1(raw []byte) (Pass1Response, error) {
	var resp Pass1Response
	p1, _, err := compiled()
	if err != nil {
		return resp, err
	}
	if err := validate(p1, raw); err != nil {
		return resp, fmt.Errorf("pass1 response rejected: %w", err)
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return resp, fmt.Errorf("failed to decode pass1 response: %w", err)
	}
	return resp, nil
}

// ValidatePass2 checks a raw Pass 2 payload against the inbound schema and
// decodes it. Shape, severity and confidence bounds are enforced; feature ids
// are not, so sibling detections survive one unrecognized id.
func ValidatePass2(raw []byte) (Pass2Response, error) {
	var resp Pass2Response
	_, p2, err := compiled()
	if err != nil {
		return resp, err
	}
	if err := validate(p2, raw); err != nil {
		return resp, fmt.Errorf("pass2 response rejected: %w", err)
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return resp, fmt.Errorf("failed to decode pass2 response: %w", err)
	}
	return resp, nil
}

func validate(sch *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return sch.Validate(v)
}

// Detections converts a validated Pass 2 response into domain detections.
func (r Pass2Response) Detections() []inspection.FeatureDetection {
	detections := make([]inspection.FeatureDetection, 0, len(r.Features))
	for _, f := range r.Features {
		detections = append(detections, inspection.FeatureDetection{
			FeatureID:  f.FeatureID,
			Severity:   inspection.Severity(f.Severity),
			Confidence: f.Confidence,
			Evidence:   f.Explanation,
		})
	}
	return detections
}
