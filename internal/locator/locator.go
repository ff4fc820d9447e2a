package locator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"claudiatron/internal/config"
	"claudiatron/internal/settings"
)

// DefaultProbeTimeout bounds every spawned probe when Options leaves it unset.
const DefaultProbeTimeout = 5 * time.Second

// SettingsStore is the durable key/value collaborator the locator reads the
// stored path and preference from.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Options configures a Locator. Zero values fall back to defaults.
type Options struct {
	Store  SettingsStore
	Runner Runner
	Logger *zap.Logger

	// Home is the user's home directory; empty means os.UserHomeDir.
	Home string
	// CommandNames are the executable names probed in every location.
	CommandNames []string
	// Shell runs the `command -v` PATH lookup.
	Shell string
	// SidecarPath is the bundled binary; empty means claude-code next to the
	// running executable.
	SidecarPath string
	// SystemDirs replaces DefaultSystemDirs when non-nil.
	SystemDirs []string
	// ExtraDirs are searched after the well-known directories. A leading
	// "~/" is expanded against Home.
	ExtraDirs []string
	// SourceOrder lists discovery sources (path, direct, nvm, fnm).
	SourceOrder    []string
	ProbeTimeout   time.Duration
	MinimumVersion string
}

// OptionsFromConfig maps the binary section of the config onto Options.
func OptionsFromConfig(cfg config.BinaryConfig) Options {
	return Options{
		CommandNames:   cfg.CommandNames,
		Shell:          cfg.Shell,
		SidecarPath:    cfg.SidecarPath,
		ExtraDirs:      cfg.ExtraDirs,
		SourceOrder:    cfg.DiscoveryOrder,
		ProbeTimeout:   cfg.ProbeTimeout,
		MinimumVersion: cfg.MinimumVersion,
	}
}

// Locator resolves and manages the Claude CLI binary. It is safe for
// concurrent use.
type Locator struct {
	store   SettingsStore
	runner  Runner
	log     *zap.Logger
	home    string
	names   []string
	shell   string
	sidecar string
	sysDirs []string
	extra   []string
	order   []string
	timeout time.Duration
	minimum string

	mu     sync.Mutex
	cached string
	group  singleflight.Group
}

// New creates a Locator. Store is required.
func New(opts Options) (*Locator, error) {
	if opts.Store == nil {
		return nil, errors.New("locator: settings store is required")
	}

	l := &Locator{
		store:   opts.Store,
		runner:  opts.Runner,
		log:     opts.Logger,
		home:    opts.Home,
		names:   opts.CommandNames,
		shell:   opts.Shell,
		sidecar: opts.SidecarPath,
		sysDirs: opts.SystemDirs,
		extra:   opts.ExtraDirs,
		order:   opts.SourceOrder,
		timeout: opts.ProbeTimeout,
		minimum: strings.TrimSpace(opts.MinimumVersion),
	}

	if l.runner == nil {
		l.runner = CmdRunner{}
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	if l.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			l.home = home
		}
	}
	if len(l.names) == 0 {
		l.names = []string{"claude", "claude-code"}
	}
	if l.shell == "" {
		l.shell = "/bin/sh"
	}
	if l.sidecar == "" {
		l.sidecar = defaultSidecarPath()
	}
	if l.sysDirs == nil {
		l.sysDirs = DefaultSystemDirs()
	}
	if len(l.order) == 0 {
		l.order = config.DefaultDiscoveryOrder()
	}
	if l.timeout <= 0 {
		l.timeout = DefaultProbeTimeout
	}
	return l, nil
}

func defaultSidecarPath() string {
	name := BundledSentinel
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}

// Resolve returns the path of the Claude CLI to spawn, or BundledSentinel.
// Concurrent callers share a single in-flight resolution.
func (l *Locator) Resolve(ctx context.Context) (string, error) {
	if path, ok := l.Cached(); ok {
		return path, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The shared resolution must not inherit one caller's cancellation;
	// every probe it spawns is still bounded by the probe timeout.
	ch := l.group.DoChan("resolve", func() (any, error) {
		return l.resolve(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *Locator) resolve(ctx context.Context) (string, error) {
	if path, ok := l.Cached(); ok {
		return path, nil
	}

	stored, ok, err := l.store.Get(ctx, settings.KeyBinaryPath)
	switch {
	case err != nil:
		l.log.Warn("read stored claude binary path", zap.Error(err))
	case ok && stored == BundledSentinel:
		l.log.Debug("using stored bundled sidecar")
		l.setCached(stored)
		return stored, nil
	case ok && stored != "":
		if _, statErr := os.Stat(stored); statErr == nil {
			l.log.Debug("using stored claude binary path", zap.String("path", stored))
			l.setCached(stored)
			return stored, nil
		}
		l.log.Warn("stored claude binary path no longer exists, falling back to discovery", zap.String("path", stored))
	}

	pref := l.Preference(ctx)
	sidecarOK := l.IsSidecarAvailable(ctx)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch {
	case pref == PreferenceBundled && sidecarOK:
		l.log.Debug("using bundled sidecar (preferred)")
		l.setCached(BundledSentinel)
		return BundledSentinel, nil
	case pref == PreferenceUnset && sidecarOK:
		l.log.Debug("using bundled sidecar (default)")
		l.setCached(BundledSentinel)
		return BundledSentinel, nil
	case pref == PreferenceBundled:
		l.log.Info("bundled sidecar preferred but unavailable, falling back to system installations",
			zap.String("sidecar", l.sidecar))
	}

	installs := l.DiscoverSystemInstallations(ctx)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(installs) == 0 {
		return "", &NotFoundError{Searched: l.SearchedLocations()}
	}

	chosen := installs[0]
	l.log.Info("selected claude installation",
		zap.String("path", chosen.Path),
		zap.String("version", chosen.Version),
		zap.String("source", chosen.Source),
		zap.Int("candidates", len(installs)))
	l.setCached(chosen.Path)
	return chosen.Path, nil
}

// Cached returns the in-memory resolution, if any.
func (l *Locator) Cached() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cached, l.cached != ""
}

func (l *Locator) setCached(path string) {
	l.mu.Lock()
	l.cached = path
	l.mu.Unlock()
}

// Invalidate clears the in-memory cache without touching stored settings.
func (l *Locator) Invalidate() {
	l.setCached("")
}

// Executable maps a resolved reference onto something exec can run: the
// sentinel becomes the sidecar path, anything else is returned unchanged.
func (l *Locator) Executable(ref string) string {
	if ref == BundledSentinel {
		return l.sidecar
	}
	return ref
}

// SidecarPath returns the location of the bundled binary.
func (l *Locator) SidecarPath() string {
	return l.sidecar
}

// Preference reads the stored installation preference; read failures are
// logged and treated as unset.
func (l *Locator) Preference(ctx context.Context) Preference {
	value, ok, err := l.store.Get(ctx, settings.KeyInstallationPreference)
	if err != nil {
		l.log.Warn("read installation preference", zap.Error(err))
		return PreferenceUnset
	}
	if !ok {
		return PreferenceUnset
	}
	return Preference(strings.TrimSpace(value))
}

// SetPreference stores the installation preference and drops the cached
// resolution so the next Resolve applies it. PreferenceUnset deletes the key.
func (l *Locator) SetPreference(ctx context.Context, pref Preference) error {
	var err error
	if pref == PreferenceUnset {
		err = l.store.Delete(ctx, settings.KeyInstallationPreference)
	} else {
		err = l.store.Set(ctx, settings.KeyInstallationPreference, string(pref))
	}
	if err != nil {
		return fmt.Errorf("store installation preference: %w", err)
	}
	l.Invalidate()
	return nil
}

// IsSidecarAvailable reports whether the bundled sidecar answers --version.
func (l *Locator) IsSidecarAvailable(ctx context.Context) bool {
	if _, err := l.run(ctx, l.sidecar, "--version"); err != nil {
		l.log.Debug("bundled sidecar unavailable", zap.String("path", l.sidecar), zap.Error(err))
		return false
	}
	return true
}

// VersionFromPath runs `<path> --version` and returns its trimmed stdout, or
// "" on any failure.
func (l *Locator) VersionFromPath(ctx context.Context, path string) string {
	res, err := l.run(ctx, path, "--version")
	if err != nil {
		l.log.Debug("version probe failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(string(res.Stdout))
}

// CheckVersion resolves the binary and probes its version. It never fails;
// every failure is described in the returned status.
func (l *Locator) CheckVersion(ctx context.Context) VersionStatus {
	ref, err := l.Resolve(ctx)
	if err != nil {
		return VersionStatus{Output: err.Error()}
	}

	exe := l.Executable(ref)
	res, err := l.run(ctx, exe, "--version")
	if err != nil {
		output := strings.TrimSpace(string(res.Stderr))
		if output == "" {
			output = fmt.Sprintf("failed to run %s --version: %v", exe, err)
		}
		return VersionStatus{Path: ref, Output: output}
	}

	stdout := strings.TrimSpace(string(res.Stdout))
	status := VersionStatus{
		IsInstalled: true,
		Version:     ExtractVersion(stdout),
		Output:      stdout,
		Path:        ref,
	}
	status.MeetsMinimum = status.Version != "" && MeetsMinimum(status.Version, l.minimum)
	if !status.MeetsMinimum && l.minimum != "" {
		l.log.Warn("claude CLI version below configured minimum",
			zap.String("version", status.Version),
			zap.String("minimum", l.minimum))
	}
	return status
}

// SetCustomBinaryPath validates path and, if it runs and reports a version,
// stores it and makes it the cached resolution. On failure nothing changes.
func (l *Locator) SetCustomBinaryPath(ctx context.Context, path string) (Installation, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Installation{}, &ValidationError{Path: path, Reason: "cannot make path absolute", Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Installation{}, &ValidationError{Path: abs, Reason: "file does not exist", Err: err}
	}
	if info.IsDir() {
		return Installation{}, &ValidationError{Path: abs, Reason: "path is a directory"}
	}

	version := l.VersionFromPath(ctx, abs)
	if version == "" {
		return Installation{}, &ValidationError{Path: abs, Reason: "could not read a version from --version"}
	}

	if err := l.store.Set(ctx, settings.KeyBinaryPath, abs); err != nil {
		return Installation{}, fmt.Errorf("store custom binary path: %w", err)
	}
	l.setCached(abs)
	l.log.Info("custom claude binary set", zap.String("path", abs), zap.String("version", version))

	return Installation{Path: abs, Version: version, Source: SourceCustom, Type: TypeCustom}, nil
}

// UseBundled stores the sentinel as the chosen binary so every later Resolve
// returns the sidecar. It fails when the sidecar does not run.
func (l *Locator) UseBundled(ctx context.Context) error {
	if !l.IsSidecarAvailable(ctx) {
		return &ValidationError{Path: l.sidecar, Reason: "bundled sidecar does not run"}
	}
	if err := l.store.Set(ctx, settings.KeyBinaryPath, BundledSentinel); err != nil {
		return fmt.Errorf("store bundled selection: %w", err)
	}
	l.setCached(BundledSentinel)
	return nil
}

// ResetToAutoDiscovery forgets the stored path and the cached resolution.
func (l *Locator) ResetToAutoDiscovery(ctx context.Context) error {
	l.Invalidate()
	if err := l.store.Delete(ctx, settings.KeyBinaryPath); err != nil {
		return fmt.Errorf("delete stored binary path: %w", err)
	}
	l.log.Info("claude binary reset to auto-discovery")
	return nil
}

// AllInstallations lists the bundled sidecar (when it runs) followed by every
// system installation. Nothing is cached.
func (l *Locator) AllInstallations(ctx context.Context) []Installation {
	return l.AllInstallationsWithProgress(ctx, nil)
}

// AllInstallationsWithProgress is AllInstallations reporting each discovery
// source to progress.
func (l *Locator) AllInstallationsWithProgress(ctx context.Context, progress ProgressFunc) []Installation {
	var out []Installation
	if l.IsSidecarAvailable(ctx) {
		out = append(out, Installation{
			Path:    BundledSentinel,
			Version: l.VersionFromPath(ctx, l.sidecar),
			Source:  SourceBundled,
			Type:    TypeBundled,
		})
	}
	return dedupeByPath(append(out, l.DiscoverWithProgress(ctx, progress)...))
}

func (l *Locator) run(ctx context.Context, command string, args ...string) (RunResult, error) {
	return l.runner.Run(ctx, command, args, RunOptions{Timeout: l.timeout})
}
