package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tdzio/tdz/internal/atomicfile"
)

type persistedConfig struct {
	DataRoot  *string           `toml:"data_root,omitempty"`
	UserID    *string           `toml:"user_id,omitempty"`
	Embedding *persistedEmbed   `toml:"embedding,omitempty"`
	Search    *persistedSearch  `toml:"search,omitempty"`
	Planner   *persistedPlanner `toml:"planner,omitempty"`
	Server    *persistedServer  `toml:"server,omitempty"`
	UI        *persistedUITheme `toml:"ui,omitempty"`
}

type persistedEmbed struct {
	Provider  *string `toml:"provider,omitempty"`
	Model     *string `toml:"model,omitempty"`
	BaseURL   *string `toml:"base_url,omitempty"`
	APIKey    *string `toml:"api_key,omitempty"`
	CacheSize *int    `toml:"cache_size,omitempty"`
}

type persistedSearch struct {
	DefaultMode *string  `toml:"default_mode,omitempty"`
	Threshold   *float64 `toml:"threshold,omitempty"`
	Limit       *int     `toml:"limit,omitempty"`
}

type persistedPlanner struct {
	Endpoint *string `toml:"endpoint,omitempty"`
	APIKey   *string `toml:"api_key,omitempty"`
}

type persistedServer struct {
	Addr          *string `toml:"addr,omitempty"`
	RequireAPIKey *bool   `toml:"require_api_key,omitempty"`
}

type persistedUITheme struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func positivePtr(value int) *int {
	if value <= 0 {
		return nil
	}
	return &value
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		DataRoot: nonEmptyPtr(cfg.DataRoot),
		UserID:   nonEmptyPtr(cfg.UserID),
	}

	if e := (persistedEmbed{
		Provider:  nonEmptyPtr(cfg.Embedding.Provider),
		Model:     nonEmptyPtr(cfg.Embedding.Model),
		BaseURL:   nonEmptyPtr(cfg.Embedding.BaseURL),
		APIKey:    nonEmptyPtr(cfg.Embedding.APIKey),
		CacheSize: positivePtr(cfg.Embedding.CacheSize),
	}); e != (persistedEmbed{}) {
		out.Embedding = &e
	}

	s := persistedSearch{
		DefaultMode: nonEmptyPtr(cfg.Search.DefaultMode),
		Limit:       positivePtr(cfg.Search.Limit),
	}
	if cfg.Search.Threshold > 0 {
		t := cfg.Search.Threshold
		s.Threshold = &t
	}
	if s != (persistedSearch{}) {
		out.Search = &s
	}

	if p := (persistedPlanner{
		Endpoint: nonEmptyPtr(cfg.Planner.Endpoint),
		APIKey:   nonEmptyPtr(cfg.Planner.APIKey),
	}); p != (persistedPlanner{}) {
		out.Planner = &p
	}

	srv := persistedServer{Addr: nonEmptyPtr(cfg.Server.Addr)}
	if cfg.Server.RequireAPIKey {
		v := true
		srv.RequireAPIKey = &v
	}
	if srv != (persistedServer{}) {
		out.Server = &srv
	}

	if u := (persistedUITheme{
		Accent:    nonEmptyPtr(cfg.UI.Accent),
		CodeTheme: nonEmptyPtr(cfg.UI.CodeTheme),
	}); u != (persistedUITheme{}) {
		out.UI = &u
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
