// Package gemini implements the classifier contract against Google Gemini.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/realview-labs/realview/internal/classify"
	"github.com/realview-labs/realview/internal/inspection"
)

// Options configures a Client.
type Options struct {
	APIKey     string
	Model      string
	MaxRetries int
	Backoff    time.Duration
	Limiter    *classify.RateLimiter
}

// Client calls Gemini with JSON response schemas for both passes.
type Client struct {
	apiKey     string
	model      string
	maxRetries int
	backoff    time.Duration
	limiter    *classify.RateLimiter
}

// New returns a Client ready to classify images.
func New(opts Options) *Client {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = classify.NewRateLimiter(0)
	}
	backoff := opts.Backoff
	if backoff == 0 {
		backoff = 1500 * time.Millisecond
	}
	return &Client{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		maxRetries: opts.MaxRetries,
		backoff:    backoff,
		limiter:    limiter,
	}
}

// Pass1 classifies room type and actionability for one image.
func (c *Client) Pass1(ctx context.Context, imageDataURL string) (inspection.Pass1Result, error) {
	raw, err := c.call(ctx, classify.Pass1SystemPrompt, pass1Schema(), imageDataURL)
	if err != nil {
		return inspection.Pass1Result{}, err
	}

	resp, err := classify.ValidatePass1(raw)
	if err != nil {
		return inspection.Pass1Result{}, err
	}
	return inspection.Pass1Result{
		RoomType:   resp.RoomType,
		Actionable: resp.Actionable,
		Confidence: resp.Confidence,
	}, nil
}

// Pass2 detects whitelisted features in an actionable target-room image.
func (c *Client) Pass2(ctx context.Context, imageDataURL, roomType string) ([]inspection.FeatureDetection, error) {
	raw, err := c.call(ctx, classify.Pass2SystemPrompt(roomType), pass2Schema(), imageDataURL)
	if err != nil {
		return nil, err
	}

	resp, err := classify.ValidatePass2(raw)
	if err != nil {
		return nil, err
	}
	return resp.Detections(), nil
}

func (c *Client) call(ctx context.Context, systemPrompt string, schema *genai.Schema, imageDataURL string) ([]byte, error) {
	format, data, err := decodeDataURL(imageDataURL)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = classify.Retry(ctx, c.maxRetries, c.backoff, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
		if err != nil {
			return fmt.Errorf("failed to create new gemini client: %w", err)
		}
		defer client.Close()

		model := client.GenerativeModel(c.model)
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = schema

		resp, err := model.GenerateContent(ctx, genai.ImageData(format, data))
		if err != nil {
			return fmt.Errorf("failed to generate content: %w", err)
		}

		if len(resp.Candidates) == 0 {
			return fmt.Errorf("no candidates returned from Gemini")
		}
		candidate := resp.Candidates[0]
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			return fmt.Errorf("empty content returned from Gemini")
		}

		txt, ok := candidate.Content.Parts[0].(genai.Text)
		if !ok {
			return fmt.Errorf("unexpected response format from Gemini")
		}
		raw = []byte(txt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// decodeDataURL splits a data URL into the genai image format and raw bytes.
func decodeDataURL(dataURL string) (string, []byte, error) {
	header, encoded, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return "", nil, fmt.Errorf("malformed image data URL")
	}

	mime := strings.TrimPrefix(header, "data:")
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	format := strings.TrimPrefix(mime, "image/")
	if format == "" || format == mime {
		return "", nil, fmt.Errorf("unsupported image MIME type: %s", mime)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image data URL: %w", err)
	}
	return format, data, nil
}

// pass1Schema mirrors classify.Pass1Schema in genai's schema types. Gemini
// does not accept additionalProperties or numeric bounds, so those are
// enforced by classify.ValidatePass1 on the way back instead.
func pass1Schema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"room_type":  {Type: genai.TypeString, Enum: inspection.RoomTypes},
			"actionable": {Type: genai.TypeBoolean},
			"confidence": {Type: genai.TypeNumber},
		},
		Required: []string{"room_type", "actionable", "confidence"},
	}
}

func pass2Schema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"features": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"feature_id":  {Type: genai.TypeString},
						"severity":    {Type: genai.TypeString, Enum: []string{"low", "medium", "high"}},
						"confidence":  {Type: genai.TypeNumber},
						"explanation": {Type: genai.TypeString},
					},
					Required: []string{"feature_id", "severity", "confidence", "explanation"},
				},
			},
		},
		Required: []string{"features"},
	}
}
