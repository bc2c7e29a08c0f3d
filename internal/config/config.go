// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	LLMProvider       string // "openrouter" or "mock"
	OpenRouterBaseURL string
	OpenRouterToken   string
	OpenRouterModel   string
	LLMTimeout        time.Duration

	HistoryLimit           int
	PromptHistory          int
	QualificationThreshold float64

	SessionTTL time.Duration

	TelegramBotToken string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/leadflow.db"),

		LLMProvider:       getEnv("LLM_PROVIDER", "openrouter"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterToken:   getEnv("OPENROUTER_TOKEN", ""),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "google/gemini-2.5-flash"),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,

		HistoryLimit:           getEnvInt("HISTORY_LIMIT", 50),
		PromptHistory:          getEnvInt("PROMPT_HISTORY", 6),
		QualificationThreshold: getEnvFloat("QUALIFICATION_THRESHOLD", 5000),

		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 168)) * time.Hour,

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch c.LLMProvider {
	case "openrouter":
		if c.OpenRouterToken == "" {
			return fmt.Errorf("OPENROUTER_TOKEN is required when LLM_PROVIDER=openrouter")
		}
		if c.OpenRouterBaseURL == "" {
			return fmt.Errorf("OPENROUTER_BASE_URL cannot be empty")
		}
	case "mock":
	default:
		return fmt.Errorf("LLM_PROVIDER must be openrouter or mock, got %q", c.LLMProvider)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be > 0")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be > 0")
	}
	if c.PromptHistory <= 0 {
		return fmt.Errorf("PROMPT_HISTORY must be > 0")
	}
	if c.QualificationThreshold < 0 {
		return fmt.Errorf("QUALIFICATION_THRESHOLD must be >= 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}
