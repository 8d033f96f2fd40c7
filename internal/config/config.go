package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	TelegramToken string

	// SeedAdminIDs are applied exactly once, when a student record is first
	// created. The database admin flag is the only source of truth after
	// that; this list is never consulted at request time.
	SeedAdminIDs []int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)
	HTTPPort    string

	DatabaseURL string
	UseMockDB   bool

	LocalesDir      string
	DefaultLanguage string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// ADMIN_IDS is optional: without it no admins are seeded, and the only
	// way to get an admin is to flip the flag in the database directly.
	adminIDsStr := os.Getenv("ADMIN_IDS")
	if adminIDsStr != "" {
		for _, idStr := range strings.Split(adminIDsStr, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID in ADMIN_IDS: %s", idStr)
			}
			cfg.SeedAdminIDs = append(cfg.SeedAdminIDs, id)
		}
	}

	cfg.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if cfg.WebhookMode {
		cfg.WebhookURL = os.Getenv("WEBHOOK_URL")
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}
	cfg.HTTPPort = getEnv("PORT", "8080")

	cfg.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"
	if !cfg.UseMockDB {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when USE_MOCK_DB is not set")
		}
	}

	cfg.LocalesDir = getEnv("LOCALES_DIR", "locales")
	cfg.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", "ru")

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
