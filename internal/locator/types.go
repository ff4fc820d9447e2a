package locator

import (
	"fmt"
	"strings"
)

// BundledSentinel is stored and returned in place of a path to mean "use the
// sidecar bundled with the application".
const BundledSentinel = "claude-code"

// InstallationType classifies where an installation came from.
type InstallationType string

const (
	TypeBundled InstallationType = "bundled"
	TypeSystem  InstallationType = "system"
	TypeCustom  InstallationType = "custom"
)

// Source labels for installations that are not version-manager scoped.
const (
	SourceShellPath = "Shell PATH"
	SourceDirect    = "direct"
	SourceBundled   = "bundled"
	SourceCustom    = "custom"
)

// Installation describes one discovered candidate binary.
type Installation struct {
	Path    string           `json:"path"`
	Version string           `json:"version,omitempty"`
	Source  string           `json:"source"`
	Type    InstallationType `json:"installation_type"`
}

// Preference is the stored installation preference.
type Preference string

const (
	PreferenceUnset   Preference = ""
	PreferenceBundled Preference = "bundled"
	PreferenceSystem  Preference = "system"
)

// ParsePreference accepts "bundled", "system" and "unset"/"" (case-insensitive).
func ParsePreference(value string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "unset", "none":
		return PreferenceUnset, nil
	case "bundled":
		return PreferenceBundled, nil
	case "system":
		return PreferenceSystem, nil
	default:
		return PreferenceUnset, fmt.Errorf("unknown installation preference %q (want bundled, system or unset)", value)
	}
}

// String renders the unset preference as "unset".
func (p Preference) String() string {
	if p == PreferenceUnset {
		return "unset"
	}
	return string(p)
}

// VersionStatus reports whether the resolved binary runs and what it says
// about its version.
type VersionStatus struct {
	IsInstalled  bool   `json:"is_installed"`
	Version      string `json:"version,omitempty"`
	Output       string `json:"output"`
	Path         string `json:"path,omitempty"`
	MeetsMinimum bool   `json:"meets_minimum"`
}
