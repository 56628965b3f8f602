package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override the custom provider and model.
const (
	EnvAPIKey    = "API_KEY"
	EnvBaseURL   = "BASE_URL"
	EnvModelName = "MODEL_NAME"
)

// LoadEnv loads the given .env files (".env" when none are named) into the
// process environment without overriding variables that are already set.
// Missing files are ignored.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("Failed to load env file", "path", f, "err", err)
		}
	}
}

// ApplyEnv overlays API_KEY, BASE_URL and MODEL_NAME onto cfg. A key or base
// URL from the environment configures the custom provider; MODEL_NAME
// replaces the coordinator model.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Providers.Custom.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Providers.Custom.APIBase = v
	}
	if v := os.Getenv(EnvModelName); v != "" {
		c.Coordinator.Model = v
	}
}
