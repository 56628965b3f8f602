package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/bioreason/bioreason/internal/config/coordinator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "BIOREASON_CONFIG"

// ConfigPath returns the config file path: $BIOREASON_CONFIG when set,
// otherwise ~/.bioreason/config.json.
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return expandHome(p)
	}
	return filepath.Join(DataDir(), "config.json")
}

// DataDir returns the bioreason data directory: ~/.bioreason.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bioreason"
	}
	return filepath.Join(home, ".bioreason")
}

// Load reads the config file at path (ConfigPath when empty) over the
// defaults. A missing file yields the defaults, and so does a malformed one
// after a warning. Values that decode but make no sense are an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Warn("Failed to parse config, using defaults", "path", path, "err", err)
		cfg = DefaultConfig()
		return &cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects settings the coordinator cannot run with.
func (c *Config) Validate() error {
	switch c.Coordinator.Classifier {
	case "", coordinator.ClassifierKeyword, coordinator.ClassifierLLM, coordinator.ClassifierHybrid:
	default:
		return fmt.Errorf("coordinator.classifier: unknown method %q", c.Coordinator.Classifier)
	}
	if c.Coordinator.MaxIter < 0 {
		return fmt.Errorf("coordinator.maxIterations must not be negative, got %d", c.Coordinator.MaxIter)
	}
	if c.Resources.TimeoutSeconds < 0 || c.Resources.MaxResults < 0 {
		return errors.New("resources.timeoutSeconds and resources.maxResults must not be negative")
	}
	if p := c.Server.Port; p < 0 || p > 65535 {
		return fmt.Errorf("server.port out of range: %d", p)
	}
	for i, q := range c.Schedule {
		if q.Name == "" || q.Spec == "" || q.Query == "" {
			return fmt.Errorf("schedule[%d]: name, spec and query are required", i)
		}
	}
	return nil
}

// Save writes cfg to path (ConfigPath when empty) as indented JSON with
// owner-only permissions.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
