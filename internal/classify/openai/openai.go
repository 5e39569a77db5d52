// Package openai implements the classifier contract against the OpenAI chat
// completions API using structured JSON-schema responses.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/realview-labs/realview/internal/classify"
	"github.com/realview-labs/realview/internal/inspection"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Options configures a Client.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string // defaults to the public API
	MaxRetries int
	Backoff    time.Duration
	Limiter    *classify.RateLimiter
}

// Client calls OpenAI with structured-output schemas for both passes.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	backoff    time.Duration
	limiter    *classify.RateLimiter
	httpClient *http.Client
}

// New returns a Client ready to classify images.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
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
		baseURL:    baseURL,
		maxRetries: opts.MaxRetries,
		backoff:    backoff,
		limiter:    limiter,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Pass1 classifies room type and actionability for one image.
func (c *Client) Pass1(ctx context.Context, imageDataURL string) (inspection.Pass1Result, error) {
	raw, err := c.call(ctx, classify.Pass1SystemPrompt, "pass1_result", classify.Pass1Schema(), imageDataURL)
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
	raw, err := c.call(ctx, classify.Pass2SystemPrompt(roomType), "pass2_result", classify.Pass2Schema(), imageDataURL)
	if err != nil {
		return nil, err
	}

	resp, err := classify.ValidatePass2(raw)
	if err != nil {
		return nil, err
	}
	return resp.Detections(), nil
}

// call sends one schema-constrained chat completion and returns the raw
// message content, retrying transient failures.
func (c *Client) call(ctx context.Context, systemPrompt, schemaName string, schema map[string]any, imageDataURL string) ([]byte, error) {
	requestBody, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{
				"role":    "system",
				"content": systemPrompt,
			},
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type":      "image_url",
						"image_url": map[string]string{"url": imageDataURL},
					},
				},
			},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"schema": schema,
				"strict": true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	var content []byte
	err = classify.Retry(ctx, c.maxRetries, c.backoff, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var callErr error
		content, callErr = c.doRequest(ctx, requestBody)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (c *Client) doRequest(ctx context.Context, requestBody []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openAI API returned status %d: %s", resp.StatusCode, string(body))
	}

	var openaiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return nil, fmt.Errorf("failed to decode OpenAI response: %w", err)
	}

	if len(openaiResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from OpenAI")
	}

	content := openaiResp.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty response output")
	}

	slog.Debug("OpenAI structured response received", "model", c.model, "length", len(content))
	return []byte(content), nil
}
