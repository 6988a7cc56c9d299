package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveToRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := &Config{
		DataRoot: "/srv/tdz",
		UserID:   "alice",
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKey:    "sk-test",
			CacheSize: 128,
		},
		Search: SearchConfig{DefaultMode: "deep", Threshold: 0.8, Limit: 5},
		Server: ServerConfig{Addr: ":8321", RequireAPIKey: true},
		UI:     UIConfig{Accent: "39"},
	}
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if *loaded != *cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestSaveToOmitsEmptySections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTo(path, &Config{DataRoot: "/srv/tdz"}); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	for _, section := range []string{"[embedding]", "[search]", "[planner]", "[server]", "[ui]"} {
		if strings.Contains(text, section) {
			t.Fatalf("empty section %s written:\n%s", section, text)
		}
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo("  ", &Config{}); err == nil {
		t.Fatal("expected error for blank path")
	}
}
