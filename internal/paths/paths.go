package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"claudiatron/internal/config"
)

// AppPaths captures canonical locations for claudiatron's user-level state.
type AppPaths struct {
	Root         string
	ConfigFile   string
	DatabaseFile string
	LogsDir      string
}

// Resolve determines the application directory using the optional --home flag
// or ~/.claudiatron when the flag is empty.
func Resolve(homeFlag string) (AppPaths, error) {
	var (
		root string
		err  error
	)

	if homeFlag != "" {
		root, err = filepath.Abs(homeFlag)
	} else {
		var home string
		home, err = os.UserHomeDir()
		if err == nil {
			root = filepath.Join(home, ".claudiatron")
		}
	}
	if err != nil {
		return AppPaths{}, fmt.Errorf("resolve application dir: %w", err)
	}

	return newAppPaths(root), nil
}

func newAppPaths(root string) AppPaths {
	return AppPaths{
		Root:         root,
		ConfigFile:   filepath.Join(root, "config.yaml"),
		DatabaseFile: filepath.Join(root, "claudiatron.db"),
		LogsDir:      filepath.Join(root, "logs"),
	}
}

// ApplyConfig overrides locations the config file controls.
func ApplyConfig(p AppPaths, cfg config.Config) AppPaths {
	if db := strings.TrimSpace(cfg.Database.Path); db != "" {
		p.DatabaseFile = resolveAppPath(p.Root, db)
	}
	return p
}

func resolveAppPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureDirs creates the application root and logs directory.
func (p AppPaths) EnsureDirs() error {
	dirs := []string{p.Root, p.LogsDir, filepath.Dir(p.DatabaseFile)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the given home directory.
func ExpandHome(home, value string) string {
	if value == "~" {
		return home
	}
	if strings.HasPrefix(value, "~/") {
		return filepath.Join(home, value[2:])
	}
	return value
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
