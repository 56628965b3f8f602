// Package config defines the configuration schema for bioreason.
//
// The file lives at ~/.bioreason/config.json and uses camelCase keys.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bioreason/bioreason/internal/config/coordinator"
	"github.com/bioreason/bioreason/internal/config/provider"
	"github.com/bioreason/bioreason/internal/config/resource"
	"github.com/bioreason/bioreason/internal/config/server"
)

// ModesConfig points at an optional YAML catalog of user-defined modes.
type ModesConfig struct {
	Catalog string `json:"catalog,omitempty"`
}

// ScheduledQuery is one recurring query run by `bioreason schedule`.
type ScheduledQuery struct {
	Name  string `json:"name"`
	Spec  string `json:"spec"` // cron expression, seconds field optional
	Query string `json:"query"`
	Mode  string `json:"mode,omitempty"`
}

// Config is the root configuration object.
type Config struct {
	Providers   provider.ProvidersConfig      `json:"providers"`
	Coordinator coordinator.CoordinatorConfig `json:"coordinator"`
	Resources   resource.ResourcesConfig      `json:"resources"`
	Vision      resource.VisionConfig         `json:"vision"`
	Server      server.ServerConfig           `json:"server"`
	Modes       ModesConfig                   `json:"modes"`
	Schedule    []ScheduledQuery              `json:"schedule,omitempty"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Providers:   provider.DefaultProvidersConfig(),
		Coordinator: coordinator.DefaultCoordinatorConfig(),
		Resources:   resource.DefaultResourcesConfig(),
		Vision:      resource.DefaultVisionConfig(),
		Server:      server.DefaultServerConfig(),
	}
}

// WorkspacePath returns the expanded absolute path to the workspace.
func (c *Config) WorkspacePath() string {
	ws := c.Coordinator.Workspace
	if ws == "" {
		ws = filepath.Join(DataDir(), "workspace")
	}
	return expandHome(ws)
}

// CatalogPath returns the expanded mode catalog path, or "" when unset.
func (c *Config) CatalogPath() string {
	if c.Modes.Catalog == "" {
		return ""
	}
	return expandHome(c.Modes.Catalog)
}

// ProviderByName returns the ProviderConfig for a registry name, or nil.
func (c *Config) ProviderByName(name string) *provider.ProviderConfig {
	return c.Providers.ByName(name)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
