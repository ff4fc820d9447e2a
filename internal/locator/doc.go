// Package locator finds the Claude Code CLI binary that claudiatron should
// spawn and reports on its installation.
//
// # Resolution
//
// Locator.Resolve returns either an absolute path or BundledSentinel, the
// logical name of the sidecar shipped with the application. It applies, in
// order, short-circuiting on the first hit:
//  1. the in-memory cache
//  2. the stored path (settings key claude_binary_path), if it still exists
//  3. the bundled sidecar, when the stored preference is "bundled" or unset
//     and the sidecar answers --version
//  4. the first system installation found by discovery
//
// A stale stored path is bypassed, not deleted. Only total absence of any
// candidate surfaces as an error (*NotFoundError).
//
// # Discovery
//
// DiscoverSystemInstallations aggregates installations from the shell PATH,
// well-known bin directories, nvm and fnm, in the configured source order,
// and de-duplicates by path. Every probe that spawns a process runs under a
// hard timeout; a missing directory or failing probe contributes nothing.
//
// # Overrides
//
// SetCustomBinaryPath validates and stores a user-chosen binary;
// ResetToAutoDiscovery forgets it. SetPreference stores whether the bundled
// sidecar should win over system installations.
package locator
