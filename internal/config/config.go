// Package config resolves the pipeline configuration once at startup:
// a YAML file when present, then environment overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all clinweaver configuration.
type Config struct {
	// Backend selects the generation transport chain.
	Backend BackendConfig `yaml:"backend"`
	// History configures the backend-call audit trail.
	History HistoryConfig `yaml:"history"`
	// Export configures artifact downloads.
	Export ExportConfig `yaml:"export"`
	// Logging configures diagnostic output.
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig resolves the generation backend chain.
type BackendConfig struct {
	// ProxyURL prefers the proxy transport when non-empty.
	ProxyURL string `yaml:"proxy_url"`
	// APIKey enables the direct Gemini transport.
	APIKey string `yaml:"api_key"`
	// Model overrides the direct provider's default model.
	Model string `yaml:"model"`
	// ForceMock bypasses both real backends.
	ForceMock bool `yaml:"force_mock"`
	// Timeout bounds each proxy call, e.g. "2m".
	Timeout string `yaml:"timeout"`
}

// HistoryConfig configures the SQLite call-history store.
type HistoryConfig struct {
	// Path of the database file; empty disables the audit trail.
	Path string `yaml:"path"`
}

// ExportConfig configures where exported artifacts are written.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig configures the zap diagnostic logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{Timeout: "2m"},
		History: HistoryConfig{Path: ".clinweaver/history.db"},
		Export:  ExportConfig{Dir: "out"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the config file at path (missing file is not an error; defaults
// apply) and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CLINWEAVER_PROXY_URL"); v != "" {
		c.Backend.ProxyURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Backend.APIKey = v
	}
	if v := os.Getenv("CLINWEAVER_MODEL"); v != "" {
		c.Backend.Model = v
	}
	if v := os.Getenv("CLINWEAVER_FORCE_MOCK"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Backend.ForceMock = parsed
		}
	}
	if v := os.Getenv("CLINWEAVER_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
}

// BackendTimeout parses the configured timeout, falling back to two minutes.
func (c *Config) BackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}
