package healthcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-cdfg/internal/config"
	"github.com/l3aro/go-cdfg/pkg/cache"
)

// ComponentStatus represents the health status of one output the tool writes.
type ComponentStatus struct {
	Path   string
	Status string // "ready", "disabled", "empty", "error"
	Detail string
	Error  string
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	SavedPath      string
	SavedScope     string // "global" or "project"
	EffectivePath  string
	EffectiveScope string // "global" or "project"
	DotOutput      ComponentStatus
	Cache          ComponentStatus
}

// Healthy reports whether no component is in error.
func (r *HealthCheckResult) Healthy() bool {
	return r.DotOutput.Status != "error" && r.Cache.Status != "error"
}

// Check performs a health check against the given config.
// savedPath is where the user saved config (may be empty outside init).
// effectivePath is the config file actually in use (considering priority).
func Check(cfg *config.Config, savedPath string, effectivePath string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &HealthCheckResult{
		SavedPath:      savedPath,
		SavedScope:     scopeFromPath(savedPath),
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
		DotOutput:      checkDotOutput(cfg),
		Cache:          checkCache(cfg),
	}, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, ".cdfg")
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}

	return "project"
}

// checkDotOutput verifies the block graph can be written by creating and
// removing a scratch file next to dot_path.
func checkDotOutput(cfg *config.Config) ComponentStatus {
	status := ComponentStatus{Path: cfg.DotPath, Detail: string(cfg.DotStyle)}
	if !cfg.WriteDot {
		status.Status = "disabled"
		return status
	}

	dir := filepath.Dir(cfg.DotPath)
	info, err := os.Stat(dir)
	if err != nil {
		status.Status = "error"
		status.Error = fmt.Sprintf("output directory %s: %v", dir, err)
		return status
	}
	if !info.IsDir() {
		status.Status = "error"
		status.Error = fmt.Sprintf("%s is not a directory", dir)
		return status
	}

	f, err := os.CreateTemp(dir, ".cdfg-doctor-*")
	if err != nil {
		status.Status = "error"
		status.Error = fmt.Sprintf("output directory %s is not writable: %v", dir, err)
		return status
	}
	f.Close()
	os.Remove(f.Name())

	status.Status = "ready"
	return status
}

// checkCache opens the snapshot cache and reports how many builds it holds.
func checkCache(cfg *config.Config) ComponentStatus {
	status := ComponentStatus{Path: cfg.CachePath}
	if !cfg.CacheEnabled {
		status.Status = "disabled"
		return status
	}

	if _, err := os.Stat(cfg.CachePath); os.IsNotExist(err) {
		status.Status = "empty"
		status.Detail = "no snapshots cached yet"
		return status
	}

	store, err := cache.Open(cfg.CachePath, cfg.CacheMaxEntries)
	if err != nil {
		status.Status = "error"
		status.Error = err.Error()
		return status
	}

	stats := store.Stats()
	status.Status = "ready"
	status.Detail = fmt.Sprintf("%d snapshots, %d bytes", stats.Length, stats.CurrentBytes)
	return status
}
