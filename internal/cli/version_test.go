package cli

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/tdzio/tdz/internal/buildinfo"
)

func TestCurrentVersionInfoFromBuildInfo(t *testing.T) {
	prevRead := readBuildInfo
	t.Cleanup(func() {
		readBuildInfo = prevRead
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.23.0",
			Main: debug.Module{
				Path:    "github.com/tdzio/tdz",
				Version: "v0.3.1",
			},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.time", Value: "2026-08-01T09:00:00Z"},
				{Key: "vcs.modified", Value: "true"},
				{Key: "GOOS", Value: "linux"},
				{Key: "GOARCH", Value: "arm64"},
			},
		}, true
	}

	info := currentVersionInfo()

	if info.Version != "v0.3.1" {
		t.Fatalf("Version = %q, want %q", info.Version, "v0.3.1")
	}
	if info.ModulePath != "github.com/tdzio/tdz" {
		t.Fatalf("ModulePath = %q, want %q", info.ModulePath, "github.com/tdzio/tdz")
	}
	if info.Commit != "abc123" {
		t.Fatalf("Commit = %q, want %q", info.Commit, "abc123")
	}
	if !info.Modified {
		t.Fatal("Modified = false, want true")
	}
	if info.GOOS != "linux" || info.GOARCH != "arm64" {
		t.Fatalf("platform = %s/%s, want linux/arm64", info.GOOS, info.GOARCH)
	}
}

func TestCurrentVersionInfoFallbackWhenBuildInfoMissing(t *testing.T) {
	prevRead := readBuildInfo
	t.Cleanup(func() {
		readBuildInfo = prevRead
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return nil, false
	}

	info := currentVersionInfo()

	if info.Version != "devel" {
		t.Fatalf("Version = %q, want %q", info.Version, "devel")
	}
	if info.ModulePath != defaultModulePath {
		t.Fatalf("ModulePath = %q, want %q", info.ModulePath, defaultModulePath)
	}
	if info.GoVersion != runtime.Version() {
		t.Fatalf("GoVersion = %q, want runtime %q", info.GoVersion, runtime.Version())
	}
}

func TestCurrentVersionInfoLdflagsFallback(t *testing.T) {
	prevRead := readBuildInfo
	prevVersion := buildinfo.Version
	prevCommit := buildinfo.Commit
	t.Cleanup(func() {
		readBuildInfo = prevRead
		buildinfo.Version = prevVersion
		buildinfo.Commit = prevCommit
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return nil, false
	}
	buildinfo.Version = "v0.4.0"
	buildinfo.Commit = "def456"

	info := currentVersionInfo()

	if info.Version != "v0.4.0" {
		t.Fatalf("Version = %q, want ldflags %q", info.Version, "v0.4.0")
	}
	if info.Commit != "def456" {
		t.Fatalf("Commit = %q, want ldflags %q", info.Commit, "def456")
	}
}

func TestNormalizeVersion(t *testing.T) {
	cases := map[string]string{
		"":        "devel",
		"(devel)": "devel",
		"v1.0.0":  "v1.0.0",
	}
	for in, want := range cases {
		if got := normalizeVersion(in); got != want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
