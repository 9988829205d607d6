package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/go-cdfg/internal/log"
)

// DotStyle selects how the block graph DOT file is rendered
type DotStyle string

const (
	// DotStylePlain is the minimal digraph written by pkg/graph
	DotStylePlain DotStyle = "plain"
	// DotStyleLattice is the styled CFG rendering from lattice
	DotStyleLattice DotStyle = "lattice"
)

// Config holds all configuration for cdfg
type Config struct {
	// DotPath is where the block graph of the last build is exported
	DotPath string `yaml:"dot_path" env:"CDFG_DOT_PATH"`

	// DotStyle selects the renderer used for DotPath
	DotStyle DotStyle `yaml:"dot_style" env:"CDFG_DOT_STYLE"`

	// WriteDot disables the block graph export when false
	WriteDot bool `yaml:"write_dot" env:"CDFG_WRITE_DOT"`

	// Snapshot cache
	CacheEnabled    bool   `yaml:"cache_enabled" env:"CDFG_CACHE_ENABLED"`
	CachePath       string `yaml:"cache_path" env:"CDFG_CACHE_PATH"`
	CacheMaxEntries int    `yaml:"cache_max_entries" env:"CDFG_CACHE_MAX_ENTRIES"`

	// Logging
	LogLevel string `yaml:"log_level" env:"CDFG_LOG_LEVEL"`
	JSONLogs bool   `yaml:"json_logs" env:"CDFG_JSON_LOGS"`
	Verbose  bool   `yaml:"verbose" env:"CDFG_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DotPath:         "bb_graph.dot",
		DotStyle:        DotStylePlain,
		WriteDot:        true,
		CacheEnabled:    true,
		CachePath:       defaultCachePath(),
		CacheMaxEntries: 64,
		LogLevel:        "info",
		JSONLogs:        false,
		Verbose:         false,
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cdfg", "snapshots.msgpack")
	}
	return filepath.Join(home, ".cdfg", "snapshots.msgpack")
}

// GlobalConfigFilePath returns the global config file path (~/.cdfg/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cdfg/config.yaml"
	}
	return filepath.Join(home, ".cdfg", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.cdfg/config.yaml)
func ProjectConfigFilePath() string {
	return ".cdfg/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.cdfg/config.yaml)
// 3. Global config (~/.cdfg/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigFilePath(), ProjectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CDFG_DOT_PATH"); v != "" {
		cfg.DotPath = v
	}
	if v := os.Getenv("CDFG_DOT_STYLE"); v != "" {
		cfg.DotStyle = DotStyle(v)
	}
	if v := os.Getenv("CDFG_WRITE_DOT"); v != "" {
		cfg.WriteDot = parseBool(v)
	}
	if v := os.Getenv("CDFG_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("CDFG_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("CDFG_CACHE_MAX_ENTRIES"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.CacheMaxEntries = i
		}
	}
	if v := os.Getenv("CDFG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CDFG_JSON_LOGS"); v != "" {
		cfg.JSONLogs = parseBool(v)
	}
	if v := os.Getenv("CDFG_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	switch c.DotStyle {
	case DotStylePlain, DotStyleLattice:
	default:
		return fmt.Errorf("invalid dot_style: %s (must be 'plain' or 'lattice')", c.DotStyle)
	}

	if c.WriteDot && c.DotPath == "" {
		return fmt.Errorf("dot_path is required when write_dot is enabled")
	}

	if c.CacheEnabled && c.CachePath == "" {
		return fmt.Errorf("cache_path is required when cache_enabled is true")
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries must be non-negative")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	return nil
}

// Level returns the effective log level. Verbose forces debug.
func (c *Config) Level() log.Level {
	if c.Verbose {
		return log.DebugLevel
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// NewLogger builds the logger described by the configuration.
func (c *Config) NewLogger() *log.DefaultLogger {
	return log.New(log.LoggerConfig{Level: c.Level(), JSONOutput: c.JSONLogs})
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}
