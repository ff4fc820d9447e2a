package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate runs all validations against the config and returns structured
// results. An empty slice means the config is usable as-is.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateCommandNames()...)
	results = append(results, c.validateDiscoveryOrder()...)
	results = append(results, c.validateProbeTimeout()...)
	results = append(results, c.validatePaths()...)
	results = append(results, c.validateLogging()...)
	return results
}

func (c Config) validateCommandNames() []ValidationResult {
	if len(c.Binary.CommandNames) == 0 {
		return []ValidationResult{{Level: "error", Message: "binary.command_names must list at least one command"}}
	}
	var results []ValidationResult
	for _, name := range c.Binary.CommandNames {
		name = strings.TrimSpace(name)
		if name == "" {
			results = append(results, ValidationResult{Level: "error", Message: "binary.command_names contains an empty name"})
			continue
		}
		if strings.ContainsAny(name, `/\`) {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("binary.command_names entry %q must be a bare command name", name),
			})
		}
	}
	return results
}

func (c Config) validateDiscoveryOrder() []ValidationResult {
	known := map[string]bool{}
	for _, s := range DefaultDiscoveryOrder() {
		known[s] = true
	}

	var results []ValidationResult
	seen := map[string]bool{}
	for _, source := range c.Binary.DiscoveryOrder {
		source = strings.ToLower(strings.TrimSpace(source))
		if !known[source] {
			results = append(results, ValidationResult{
				Level: "error",
				Message: fmt.Sprintf("binary.discovery_order contains unknown source %q (known sources: %s)",
					source, strings.Join(DefaultDiscoveryOrder(), ", ")),
			})
			continue
		}
		if seen[source] {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("binary.discovery_order lists %q more than once", source),
			})
		}
		seen[source] = true
	}
	return results
}

func (c Config) validateProbeTimeout() []ValidationResult {
	if c.Binary.ProbeTimeout <= 0 {
		return []ValidationResult{{
			Level:   "error",
			Message: fmt.Sprintf("binary.probe_timeout must be positive, got %s", c.Binary.ProbeTimeout),
		}}
	}
	return nil
}

func (c Config) validatePaths() []ValidationResult {
	var results []ValidationResult
	if p := strings.TrimSpace(c.Binary.SidecarPath); p != "" && !filepath.IsAbs(p) {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("binary.sidecar_path %q is relative; it is resolved against the working directory", p),
		})
	}
	for _, dir := range c.Binary.ExtraDirs {
		if !filepath.IsAbs(dir) && !strings.HasPrefix(dir, "~/") {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("binary.extra_dirs entry %q is neither absolute nor home-relative", dir),
			})
		}
	}
	return results
}

func (c Config) validateLogging() []ValidationResult {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return []ValidationResult{{
			Level:   "error",
			Message: fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level),
		}}
	}
	return nil
}
