package locator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const unknownVersion = "unknown"

func (l *Locator) nvmRoot() string {
	return filepath.Join(l.home, ".nvm", "versions", "node")
}

// nvmInstallations checks <nvm root>/<version>/bin for each command name.
func (l *Locator) nvmInstallations(ctx context.Context) []Installation {
	if l.home == "" {
		return nil
	}
	root := l.nvmRoot()
	var out []Installation
	for _, version := range listDir(root) {
		binDir := filepath.Join(root, version, "bin")
		for _, name := range l.names {
			path := filepath.Join(binDir, name)
			if !isFile(path) {
				continue
			}
			out = append(out, Installation{
				Path:    path,
				Version: l.VersionFromPath(ctx, path),
				Source:  fmt.Sprintf("nvm (Node %s)", strings.TrimPrefix(version, "v")),
				Type:    TypeSystem,
			})
		}
	}
	return out
}

func (l *Locator) fnmMultishellRoots() []string {
	return []string{
		filepath.Join(l.home, ".local", "state", "fnm_multishells"),
		filepath.Join(l.home, "Library", "Caches", "fnm_multishells"),
	}
}

func (l *Locator) fnmVersionRoots() []string {
	return []string{
		filepath.Join(l.home, ".local", "share", "fnm", "node-versions"),
		filepath.Join(l.home, "Library", "Application Support", "fnm", "node-versions"),
		filepath.Join(l.home, ".fnm", "node-versions"),
	}
}

// fnmCollector merges fnm candidates from both layouts. Shell sessions that
// point at the same node runtime and tool version collapse to one record.
type fnmCollector struct {
	l    *Locator
	seen map[string]bool
	out  []Installation
}

func (c *fnmCollector) add(ctx context.Context, binDir, nodeVersion string) {
	for _, name := range c.l.names {
		path := filepath.Join(binDir, name)
		if !isFile(path) {
			continue
		}
		toolVersion := c.l.VersionFromPath(ctx, path)
		key := orUnknown(nodeVersion) + "|" + orUnknown(toolVersion) + "|" + name
		if c.seen[key] {
			continue
		}
		c.seen[key] = true

		source := "fnm"
		if nodeVersion != "" {
			source = fmt.Sprintf("fnm (Node %s)", nodeVersion)
		}
		c.out = append(c.out, Installation{
			Path:    path,
			Version: toolVersion,
			Source:  source,
			Type:    TypeSystem,
		})
	}
}

func (l *Locator) fnmInstallations(ctx context.Context) []Installation {
	if l.home == "" {
		return nil
	}
	c := &fnmCollector{l: l, seen: map[string]bool{}}

	for _, root := range l.fnmMultishellRoots() {
		for _, session := range listDir(root) {
			sessionDir := filepath.Join(root, session)
			binDir := filepath.Join(sessionDir, "bin")
			if !isDir(binDir) {
				continue
			}
			c.add(ctx, binDir, l.multishellNodeVersion(ctx, sessionDir))
		}
	}

	for _, root := range l.fnmVersionRoots() {
		for _, version := range listDir(root) {
			binDir := filepath.Join(root, version, "installation", "bin")
			if !isDir(binDir) {
				continue
			}
			c.add(ctx, binDir, strings.TrimPrefix(version, "v"))
		}
	}
	return c.out
}

// multishellNodeVersion asks the session's node for its version and falls
// back to reading it out of the symlink target. "" means unknown.
func (l *Locator) multishellNodeVersion(ctx context.Context, sessionDir string) string {
	node := filepath.Join(sessionDir, "bin", "node")
	if res, err := l.run(ctx, node, "--version"); err == nil {
		if v := nodeVersionFromOutput(string(res.Stdout)); v != "" {
			return v
		}
	}
	for _, p := range []string{node, sessionDir} {
		resolved, err := filepath.EvalSymlinks(p)
		if err != nil {
			continue
		}
		if v := nodeVersionFromPath(resolved); v != "" {
			return v
		}
	}
	return ""
}

func orUnknown(v string) string {
	if v == "" {
		return unknownVersion
	}
	return v
}
