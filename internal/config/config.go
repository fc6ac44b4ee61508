// Package config loads the dockhand configuration from yaml with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the dockhand configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Palette PaletteConfig `yaml:"palette"`
}

// ServerConfig holds backend connection settings.
type ServerConfig struct {
	URL       string `yaml:"url"`        // Admin console base URL
	TimeoutMs int    `yaml:"timeout_ms"` // Per-request timeout
}

// StorageConfig holds local persistence settings.
type StorageConfig struct {
	Path string `yaml:"path"` // SQLite path (empty = ~/.dockhand/state.db)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// PaletteConfig holds palette display settings.
type PaletteConfig struct {
	MaxSuggestions int `yaml:"max_suggestions"` // Suggestion rows above results
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:       "http://localhost:8410",
			TimeoutMs: 5000,
		},
		Log:     LogConfig{Level: "warn"},
		Palette: PaletteConfig{MaxSuggestions: 5},
	}
}

// DefaultDir returns the dockhand config/state directory (~/.dockhand).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".dockhand"), nil
}

// DefaultFile returns the default config file path.
func DefaultFile() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default location.
func Load() (*Config, error) {
	path, err := DefaultFile()
	if err != nil {
		return nil, err
	}
	return LoadFromFile(path)
}

// LoadFromFile reads the config from path, falling back to defaults when the
// file does not exist. Environment overrides always apply last.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays DOCKHAND_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCKHAND_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("DOCKHAND_SERVER_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.TimeoutMs = n
		}
	}
	if v := os.Getenv("DOCKHAND_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("DOCKHAND_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.Server.TimeoutMs < 0 {
		return fmt.Errorf("server.timeout_ms must be >= 0")
	}
	if c.Palette.MaxSuggestions < 0 {
		return fmt.Errorf("palette.max_suggestions must be >= 0")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error")
	}
	return nil
}

// Save writes the config as yaml to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
