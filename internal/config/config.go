// Package config builds the immutable configuration object constructed once
// at startup and passed into each component.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// NewsAPI settings
	NewsAPIKey      string
	NewsAPIEndpoint string

	// Gemini settings
	GeminiAPIKey   string
	GeminiModel    string
	MaxLLMRequests int // maximum language-model requests per run (0 = unlimited)

	// Feed settings
	FeedsConfigPath string
	FeedTimeout     time.Duration // per-feed fetch timeout
	DefaultCount    int           // fallback for the interactive count prompts

	// Mail delivery settings (optional; digest stays console-only when unset)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailTo       string

	// App settings
	Debug          bool
	RequestTimeout time.Duration // structured search / HTTP client timeout
	VerdictTTL     time.Duration // classification cache lifetime
}

func Load() (*Config, error) {
	cfg := &Config{
		NewsAPIEndpoint: "https://newsapi.org/v2/everything",
		GeminiModel:     "gemini-1.5-flash",
		MaxLLMRequests:  40,
		FeedsConfigPath: "configs/feeds.yaml",
		FeedTimeout:     10 * time.Second,
		DefaultCount:    5,
		SMTPPort:        587,
		RequestTimeout:  15 * time.Second,
		VerdictTTL:      time.Hour,
	}

	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if v := os.Getenv("NEWS_API_ENDPOINT"); v != "" {
		cfg.NewsAPIEndpoint = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("FEEDS_CONFIG_PATH"); v != "" {
		cfg.FeedsConfigPath = v
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPPort = getEnvIntOrDefault("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.MailFrom = os.Getenv("DIGEST_FROM")
	cfg.MailTo = os.Getenv("DIGEST_TO")

	cfg.MaxLLMRequests = getEnvIntOrDefault("MAX_LLM_REQUESTS", cfg.MaxLLMRequests)
	cfg.DefaultCount = getEnvIntOrDefault("DEFAULT_COUNT", cfg.DefaultCount)

	if v := os.Getenv("FEED_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FeedTimeout = time.Duration(val) * time.Second
		}
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks the credentials without which no work can start. Mail
// settings are deliberately not required: a run without them produces a
// console report only.
func (c *Config) Validate() error {
	if c.NewsAPIKey == "" {
		return fmt.Errorf("NEWS_API_KEY is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

// MailEnabled reports whether enough SMTP settings exist to attempt delivery.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != "" && c.MailTo != ""
}
