// Package config handles global tdz configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global tdz configuration.
type Config struct {
	// DataRoot is the directory holding the store (tasks/, memories.json, ...).
	DataRoot string `toml:"data_root"`

	// UserID is stamped onto records created from this machine.
	UserID string `toml:"user_id"`

	// Embedding configures the optional semantic-search backend.
	Embedding EmbeddingConfig `toml:"embedding"`

	// Search tunes result limits and fusion behavior.
	Search SearchConfig `toml:"search"`

	// Planner configures the remote extraction endpoint.
	Planner PlannerConfig `toml:"planner"`

	// Server configures the HTTP API.
	Server ServerConfig `toml:"server"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama", "openai", or empty to disable semantic search.
	Provider string `toml:"provider"`

	// Model overrides the provider's default embedding model.
	Model string `toml:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates against OpenAI-compatible providers.
	APIKey string `toml:"api_key"`

	// CacheSize bounds the in-memory embedding cache (0 disables it).
	CacheSize int `toml:"cache_size"`
}

// SearchConfig tunes the search engine.
type SearchConfig struct {
	// DefaultMode is "fast", "deep", or "smart".
	DefaultMode string `toml:"default_mode"`

	// Threshold is the minimum cosine similarity for semantic hits.
	Threshold float64 `toml:"threshold"`

	// Limit caps results per query when the caller doesn't specify one.
	Limit int `toml:"limit"`
}

// PlannerConfig configures the remote extraction endpoint.
type PlannerConfig struct {
	Endpoint string `toml:"endpoint"`
	APIKey   string `toml:"api_key"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:8321".
	Addr string `toml:"addr"`

	// RequireAPIKey rejects requests without a valid key from the store.
	RequireAPIKey bool `toml:"require_api_key"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	// Example values: "monokai", "dracula", "github", "nord".
	CodeTheme string `toml:"code_theme"`
}

// GetDataRoot returns the configured data root, falling back to
// ~/.local/share/tdz.
func (c *Config) GetDataRoot() (string, error) {
	if c.DataRoot != "" {
		return c.DataRoot, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no data_root configured and no home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "tdz"), nil
}

// GetUserID returns the configured user id, defaulting to "anonymous".
func (c *Config) GetUserID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return "anonymous"
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/tdz/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	// Prefer XDG-style ~/.config/tdz/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "tdz", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	// Fall back to XDG config dir or OS-specific location
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "tdz", "config.toml")
	}

	// Last resort fallback
	return filepath.Join(".", "config.toml")
}

// CreateDefault creates a default config file if it doesn't exist.
func CreateDefault() (string, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil // Already exists
	}

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# tdz configuration

# Directory holding your task and memory data.
# Defaults to ~/.local/share/tdz when unset.
# data_root = "/path/to/data"

# Stamped onto records created from this machine.
# user_id = "alice"

# Semantic search is off until a provider is configured.
# [embedding]
# provider = "ollama"          # or "openai"
# model = "nomic-embed-text"
# base_url = "http://localhost:11434"
# cache_size = 512

# [search]
# default_mode = "smart"       # fast, deep, or smart
# threshold = 0.7
# limit = 20

# Remote extraction endpoint for free-form planning.
# [planner]
# endpoint = "https://example.com/extract"
# api_key = ""

# [server]
# addr = "127.0.0.1:8321"
# require_api_key = false

# Optional UI accent color for headers/links in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}
