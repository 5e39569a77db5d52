// Package config loads pipeline configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every knob the pipeline and review server need. It is built
// once at startup and passed down explicitly so tests can construct their own.
type Config struct {
	Provider string // "openai" or "gemini"

	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	RequestsPerMinute int
	MaxRetries        int
	RetryBackoff      time.Duration
	Concurrency       int

	CasesDir  string // per-property image folders, one folder per property id
	OutputDir string // case records and the feedback log
	Port      string // review API listen port
}

// Load reads configuration from environment variables, applying defaults for
// everything except provider credentials.
func Load() (*Config, error) {
	cfg := &Config{
		Provider:          getEnv("REALVIEW_PROVIDER", "openai"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 60),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		Concurrency:       getEnvInt("REALVIEW_CONCURRENCY", 4),
		CasesDir:          getEnv("REALVIEW_CASES_DIR", "cases"),
		OutputDir:         getEnv("REALVIEW_OUT_DIR", "out"),
		Port:              getEnv("REALVIEW_PORT", "8888"),
	}

	backoff := getEnvFloat("RETRY_BACKOFF_SECONDS", 1.5)
	cfg.RetryBackoff = time.Duration(backoff * float64(time.Second))

	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("REQUESTS_PER_MINUTE must be positive, got %d", cfg.RequestsPerMinute)
	}
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("REALVIEW_CONCURRENCY must be positive, got %d", cfg.Concurrency)
	}

	return cfg, nil
}

// ValidateProvider checks that credentials for the selected provider are
// present. Only commands that call a model need this; serving and reporting
// work without any API key.
func (c *Config) ValidateProvider() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when REALVIEW_PROVIDER=openai")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when REALVIEW_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
