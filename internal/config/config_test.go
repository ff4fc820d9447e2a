package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if got := strings.Join(cfg.Binary.CommandNames, ","); got != "claude,claude-code" {
		t.Errorf("unexpected command names %q", got)
	}
	if cfg.Binary.ProbeTimeout != 5*time.Second {
		t.Errorf("expected 5s probe timeout, got %s", cfg.Binary.ProbeTimeout)
	}
	if got := strings.Join(cfg.Binary.DiscoveryOrder, ","); got != "path,direct,nvm,fnm" {
		t.Errorf("unexpected discovery order %q", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "binary:\n  probe_timeout: 750ms\n  discovery_order: [nvm, path]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Binary.ProbeTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %s", cfg.Binary.ProbeTimeout)
	}
	if got := strings.Join(cfg.Binary.DiscoveryOrder, ","); got != "nvm,path" {
		t.Errorf("unexpected discovery order %q", got)
	}
	if cfg.Binary.Shell != "/bin/sh" {
		t.Errorf("expected default shell, got %q", cfg.Binary.Shell)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("binary: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestMarshalRoundTripsDuration(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), "probe_timeout: 5s") {
		t.Fatalf("expected human readable timeout, got:\n%s", data)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		level   string
		message string
	}{
		{
			name:    "unknown source",
			mutate:  func(c *Config) { c.Binary.DiscoveryOrder = []string{"path", "asdf"} },
			level:   "error",
			message: `unknown source "asdf"`,
		},
		{
			name:    "duplicate source",
			mutate:  func(c *Config) { c.Binary.DiscoveryOrder = []string{"path", "path"} },
			level:   "warning",
			message: "more than once",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Binary.ProbeTimeout = -time.Second },
			level:   "error",
			message: "probe_timeout",
		},
		{
			name:    "path in command name",
			mutate:  func(c *Config) { c.Binary.CommandNames = []string{"/usr/bin/claude"} },
			level:   "error",
			message: "bare command name",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			level:   "error",
			message: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			results := cfg.Validate()
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d: %+v", len(results), results)
			}
			if results[0].Level != tt.level {
				t.Errorf("got level %q, want %q", results[0].Level, tt.level)
			}
			if !strings.Contains(results[0].Message, tt.message) {
				t.Errorf("message %q does not contain %q", results[0].Message, tt.message)
			}
		})
	}
}

func TestValidateDefaultIsClean(t *testing.T) {
	if results := Default().Validate(); len(results) != 0 {
		t.Fatalf("expected no findings, got %+v", results)
	}
}
