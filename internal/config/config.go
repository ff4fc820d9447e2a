package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Discovery source names accepted in binary.discovery_order.
const (
	SourcePath   = "path"
	SourceDirect = "direct"
	SourceNVM    = "nvm"
	SourceFNM    = "fnm"
)

// Config captures the user-level claudiatron configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Binary   BinaryConfig   `yaml:"binary"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BinaryConfig controls how the Claude CLI binary is discovered and probed.
type BinaryConfig struct {
	CommandNames   []string      `yaml:"command_names"`
	Shell          string        `yaml:"shell"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
	SidecarPath    string        `yaml:"sidecar_path"`
	ExtraDirs      []string      `yaml:"extra_dirs"`
	DiscoveryOrder []string      `yaml:"discovery_order"`
	MinimumVersion string        `yaml:"minimum_version"`
}

// DatabaseConfig locates the embedded settings database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig sets the file logger level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Binary: BinaryConfig{
			CommandNames:   []string{"claude", "claude-code"},
			Shell:          "/bin/sh",
			ProbeTimeout:   5 * time.Second,
			DiscoveryOrder: DefaultDiscoveryOrder(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultDiscoveryOrder is the order system installations are aggregated in
// when the config does not override it.
func DefaultDiscoveryOrder() []string {
	return []string{SourcePath, SourceDirect, SourceNVM, SourceFNM}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if len(c.Binary.CommandNames) == 0 {
		c.Binary.CommandNames = defaults.Binary.CommandNames
	}
	if c.Binary.Shell == "" {
		c.Binary.Shell = defaults.Binary.Shell
	}
	if c.Binary.ProbeTimeout == 0 {
		c.Binary.ProbeTimeout = defaults.Binary.ProbeTimeout
	}
	if len(c.Binary.DiscoveryOrder) == 0 {
		c.Binary.DiscoveryOrder = defaults.Binary.DiscoveryOrder
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
