package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `data_root = "/srv/tdz"
user_id = "alice"

[embedding]
provider = "ollama"
model = "nomic-embed-text"
cache_size = 256

[search]
default_mode = "smart"
threshold = 0.65
limit = 10

[server]
addr = "127.0.0.1:8321"
require_api_key = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DataRoot != "/srv/tdz" || cfg.UserID != "alice" {
		t.Fatalf("unexpected top-level fields: %+v", cfg)
	}
	if cfg.Embedding.Provider != "ollama" || cfg.Embedding.CacheSize != 256 {
		t.Fatalf("unexpected embedding config: %+v", cfg.Embedding)
	}
	if cfg.Search.Threshold != 0.65 || cfg.Search.Limit != 10 {
		t.Fatalf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.Server.Addr != "127.0.0.1:8321" || !cfg.Server.RequireAPIKey {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("data_root = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetDataRootDefault(t *testing.T) {
	cfg := &Config{}
	root, err := cfg.GetDataRoot()
	if err != nil {
		t.Fatalf("GetDataRoot: %v", err)
	}
	if filepath.Base(root) != "tdz" {
		t.Fatalf("unexpected default root %q", root)
	}
}

func TestGetUserIDDefault(t *testing.T) {
	if got := (&Config{}).GetUserID(); got != "anonymous" {
		t.Fatalf("want anonymous, got %q", got)
	}
	if got := (&Config{UserID: "bob"}).GetUserID(); got != "bob" {
		t.Fatalf("want bob, got %q", got)
	}
}
