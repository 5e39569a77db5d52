package cmd

import (
	"fmt"

	"github.com/realview-labs/realview/internal/classify"
	"github.com/realview-labs/realview/internal/classify/gemini"
	"github.com/realview-labs/realview/internal/classify/openai"
	"github.com/realview-labs/realview/internal/config"
)

// newClassifier builds the configured provider backend. Both backends share
// one rate limiter so the request budget holds across concurrent images.
func newClassifier(cfg *config.Config) (classify.Classifier, error) {
	if err := cfg.ValidateProvider(); err != nil {
		return nil, err
	}

	limiter := classify.NewRateLimiter(cfg.RequestsPerMinute)

	switch cfg.Provider {
	case "openai":
		return openai.New(openai.Options{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.RetryBackoff,
			Limiter:    limiter,
		}), nil
	case "gemini":
		return gemini.New(gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.RetryBackoff,
			Limiter:    limiter,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
