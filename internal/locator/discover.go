package locator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"claudiatron/internal/config"
	"claudiatron/internal/paths"
)

// DefaultSystemDirs are the absolute bin directories probed by the direct
// source.
func DefaultSystemDirs() []string {
	return []string{
		"/usr/local/bin",
		"/opt/homebrew/bin",
		"/usr/bin",
		"/bin",
	}
}

// homeBinDirs are probed relative to the user's home directory.
var homeBinDirs = []string{
	".claude/local",
	".local/bin",
	".npm-global/bin",
	".yarn/bin",
	".bun/bin",
	"bin",
	"node_modules/.bin",
	".config/yarn/global/node_modules/.bin",
}

// ProgressFunc observes discovery one source at a time. It is called with
// done=false before a source is probed and done=true with what it found,
// before de-duplication across sources.
type ProgressFunc func(source string, done bool, found []Installation)

// DiscoverSystemInstallations returns every system installation in source
// order, unique by path.
func (l *Locator) DiscoverSystemInstallations(ctx context.Context) []Installation {
	return l.DiscoverWithProgress(ctx, nil)
}

// DiscoverWithProgress is DiscoverSystemInstallations with a progress hook.
func (l *Locator) DiscoverWithProgress(ctx context.Context, progress ProgressFunc) []Installation {
	var all []Installation
	for _, source := range l.Sources() {
		if progress != nil {
			progress(source, false, nil)
		}
		found := l.discoverSource(ctx, source)
		l.log.Debug("discovery source probed", zap.String("source", source), zap.Int("found", len(found)))
		if progress != nil {
			progress(source, true, found)
		}
		all = append(all, found...)
	}
	return dedupeByPath(all)
}

// Sources returns the normalized discovery order.
func (l *Locator) Sources() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range l.order {
		s = strings.ToLower(strings.TrimSpace(s))
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (l *Locator) discoverSource(ctx context.Context, source string) []Installation {
	switch source {
	case config.SourcePath:
		return l.shellInstallations(ctx)
	case config.SourceDirect:
		return l.directInstallations(ctx)
	case config.SourceNVM:
		return l.nvmInstallations(ctx)
	case config.SourceFNM:
		return l.fnmInstallations(ctx)
	default:
		l.log.Warn("unknown discovery source ignored", zap.String("source", source))
		return nil
	}
}

// shellInstallations asks the shell to resolve each command name so that
// PATH mutations from shell startup files are honored.
func (l *Locator) shellInstallations(ctx context.Context) []Installation {
	var out []Installation
	for _, name := range l.names {
		res, err := l.run(ctx, l.shell, "-c", `command -v "$1"`, "sh", name)
		if err != nil {
			continue
		}
		path := strings.TrimSpace(firstLine(strings.TrimSpace(string(res.Stdout))))
		// Aliases and functions print something other than a path.
		if !filepath.IsAbs(path) {
			continue
		}
		out = append(out, Installation{
			Path:    path,
			Version: l.VersionFromPath(ctx, path),
			Source:  SourceShellPath,
			Type:    TypeSystem,
		})
	}
	return out
}

func (l *Locator) directDirs() []string {
	dirs := append([]string{}, l.sysDirs...)
	if l.home != "" {
		for _, rel := range homeBinDirs {
			dirs = append(dirs, filepath.Join(l.home, rel))
		}
	}
	for _, dir := range l.extra {
		dirs = append(dirs, paths.ExpandHome(l.home, dir))
	}
	return dirs
}

func (l *Locator) directInstallations(ctx context.Context) []Installation {
	var out []Installation
	for _, dir := range l.directDirs() {
		for _, name := range l.names {
			path := filepath.Join(dir, name)
			if !isFile(path) {
				continue
			}
			out = append(out, Installation{
				Path:    path,
				Version: l.VersionFromPath(ctx, path),
				Source:  SourceDirect,
				Type:    TypeSystem,
			})
		}
	}
	return out
}

// SearchedLocations lists every place discovery looks, for error messages
// and diagnostics.
func (l *Locator) SearchedLocations() []string {
	var out []string
	for _, source := range l.Sources() {
		switch source {
		case config.SourcePath:
			out = append(out, fmt.Sprintf("PATH (%s -c 'command -v %s')", l.shell, strings.Join(l.names, "|")))
		case config.SourceDirect:
			out = append(out, l.directDirs()...)
		case config.SourceNVM:
			out = append(out, l.nvmRoot())
		case config.SourceFNM:
			out = append(out, l.fnmMultishellRoots()...)
			out = append(out, l.fnmVersionRoots()...)
		}
	}
	return out
}

// dedupeByPath keeps the first installation seen for each path.
func dedupeByPath(installs []Installation) []Installation {
	seen := make(map[string]bool, len(installs))
	out := make([]Installation, 0, len(installs))
	for _, inst := range installs {
		if seen[inst.Path] {
			continue
		}
		seen[inst.Path] = true
		out = append(out, inst)
	}
	return out
}

func isFile(path string) bool {
	ok, err := paths.FileExists(path)
	return err == nil && ok
}

func isDir(path string) bool {
	ok, err := paths.DirExists(path)
	return err == nil && ok
}

// listDir returns entry names of dir sorted by name; a missing or unreadable
// directory yields nothing.
func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
