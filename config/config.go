package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/memfs/internal/util"
	"gopkg.in/yaml.v3"
)

// CLI verbosity values accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + util.MinVerbosity
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultScheme is the URI scheme the provider is registered under
	DefaultScheme = "memfs"

	DefaultLogLvl = util.InfoLevel

	DefaultReadOnly = false

	// DefaultWatchBuffer is the channel capacity handed to each watcher.
	// Events beyond it are queued, never dropped.
	DefaultWatchBuffer = 64

	DefaultSeedFile = ""
)

// Config contains runtime configuration values for the in-memory file system.
type Config struct {
	Scheme      string        // URI scheme served by the provider (Default "memfs")
	LogLvl      util.LogLevel // Internal log level (Default info)
	ReadOnly    bool          // Reject every mutation with NoPermissions (Default false)
	WatchBuffer int           // Per-watcher channel capacity (Default 64)
	SeedFile    string        // Optional YAML/JSON seed file applied at startup (Default none)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	Scheme      *string `yaml:"scheme,omitempty" json:"scheme,omitempty"`
	LogLvl      *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"` // CLI verbosity 1 (error) .. 5 (trace)
	ReadOnly    *bool   `yaml:"read_only,omitempty" json:"read_only,omitempty"`
	WatchBuffer *int    `yaml:"watch_buffer,omitempty" json:"watch_buffer,omitempty"`
	SeedFile    *string `yaml:"seed_file,omitempty" json:"seed_file,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		Scheme:      DefaultScheme,
		LogLvl:      DefaultLogLvl,
		ReadOnly:    DefaultReadOnly,
		WatchBuffer: DefaultWatchBuffer,
		SeedFile:    DefaultSeedFile,
	}
}

// NewConfig returns the defaults with override applied; override may be nil
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.Scheme != nil {
		c.Scheme = *override.Scheme
	}
	if override.LogLvl != nil {
		c.LogLvl = util.LevelFromVerbosity(*override.LogLvl)
	}
	if override.ReadOnly != nil {
		c.ReadOnly = *override.ReadOnly
	}
	if override.WatchBuffer != nil {
		c.WatchBuffer = *override.WatchBuffer
	}
	if override.SeedFile != nil {
		c.SeedFile = *override.SeedFile
	}
}

// Validate reports configuration values the file system cannot run with
func (c *Config) Validate() error {
	if c.Scheme == "" {
		return fmt.Errorf("scheme must not be empty")
	}
	if strings.ContainsAny(c.Scheme, ":/") {
		return fmt.Errorf("scheme %q must not contain ':' or '/'", c.Scheme)
	}
	if strings.ToLower(c.Scheme) != c.Scheme {
		// URI schemes are matched after lowercasing
		return fmt.Errorf("scheme %q must be lowercase", c.Scheme)
	}
	if c.WatchBuffer < 0 {
		return fmt.Errorf("watch_buffer must be >= 0, got %d", c.WatchBuffer)
	}
	return nil
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
