package healthcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/go-cdfg/internal/config"
	"github.com/l3aro/go-cdfg/pkg/cache"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DotPath = filepath.Join(dir, "bb_graph.dot")
	cfg.CachePath = filepath.Join(dir, "cache", "snapshots.msgpack")
	return cfg
}

func TestCheckWithNilConfig(t *testing.T) {
	_, err := Check(nil, "", "")
	if err == nil {
		t.Error("Expected error for nil config, got nil")
	}
}

func TestCheckFreshConfig(t *testing.T) {
	cfg := testConfig(t)

	result, err := Check(cfg, "", "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	if result.DotOutput.Status != "ready" {
		t.Errorf("DotOutput.Status = %q, want %q (%s)", result.DotOutput.Status, "ready", result.DotOutput.Error)
	}
	if result.Cache.Status != "empty" {
		t.Errorf("Cache.Status = %q, want %q", result.Cache.Status, "empty")
	}
	if !result.Healthy() {
		t.Error("Healthy() = false, want true")
	}

	entries, err := os.ReadDir(filepath.Dir(cfg.DotPath))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".cdfg-doctor-") {
			t.Errorf("scratch file %s left behind", e.Name())
		}
	}
}

func TestCheckDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.WriteDot = false
	cfg.CacheEnabled = false

	result, err := Check(cfg, "", "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.DotOutput.Status != "disabled" {
		t.Errorf("DotOutput.Status = %q, want %q", result.DotOutput.Status, "disabled")
	}
	if result.Cache.Status != "disabled" {
		t.Errorf("Cache.Status = %q, want %q", result.Cache.Status, "disabled")
	}
}

func TestCheckMissingDotDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.DotPath = filepath.Join(t.TempDir(), "missing", "bb_graph.dot")

	result, err := Check(cfg, "", "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.DotOutput.Status != "error" {
		t.Errorf("DotOutput.Status = %q, want %q", result.DotOutput.Status, "error")
	}
	if result.Healthy() {
		t.Error("Healthy() = true, want false")
	}
}

func TestCheckPopulatedCache(t *testing.T) {
	cfg := testConfig(t)

	store, err := cache.Open(cfg.CachePath, cfg.CacheMaxEntries)
	if err != nil {
		t.Fatal(err)
	}
	store.Put("a", []byte("1234"))
	store.Put("b", []byte("56"))
	if err := store.Flush(); err != nil {
		t.Fatal(err)
	}

	result, err := Check(cfg, "", "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.Cache.Status != "ready" {
		t.Errorf("Cache.Status = %q, want %q (%s)", result.Cache.Status, "ready", result.Cache.Error)
	}
	if result.Cache.Detail != "2 snapshots, 6 bytes" {
		t.Errorf("Cache.Detail = %q, want %q", result.Cache.Detail, "2 snapshots, 6 bytes")
	}
}

func TestCheckCorruptCache(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.CachePath, []byte{0xc1}, 0644); err != nil {
		t.Fatal(err)
	}

	result, err := Check(cfg, "", "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.Cache.Status != "error" {
		t.Errorf("Cache.Status = %q, want %q", result.Cache.Status, "error")
	}
}

func TestScopeFromPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{filepath.Join(home, ".cdfg", "config.yaml"), "global"},
		{".cdfg/config.yaml", "project"},
	}
	for _, tt := range tests {
		if got := scopeFromPath(tt.path); got != tt.want {
			t.Errorf("scopeFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
