package locator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory SettingsStore.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

var errProbe = errors.New("exit status 1")

// fakeRunner answers --version probes from a table keyed by command path and
// `command -v` lookups from a table keyed by command name. Everything else
// fails, as does every call made with a done context.
type fakeRunner struct {
	mu       sync.Mutex
	versions map[string]string
	// versionByBase answers for any command whose base name matches.
	versionByBase map[string]string
	shellHits     map[string]string
	calls         []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		versions:      map[string]string{},
		versionByBase: map[string]string{},
		shellHits:     map[string]string{},
	}
}

func (f *fakeRunner) Run(ctx context.Context, command string, args []string, _ RunOptions) (RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, command+" "+strings.Join(args, " "))

	if err := ctx.Err(); err != nil {
		return RunResult{ExitCode: -1}, err
	}

	if len(args) == 4 && args[0] == "-c" {
		if hit, ok := f.shellHits[args[3]]; ok {
			return RunResult{Stdout: []byte(hit + "\n")}, nil
		}
		return RunResult{ExitCode: 1}, errProbe
	}
	if len(args) == 1 && args[0] == "--version" {
		if v, ok := f.versions[command]; ok {
			return RunResult{Stdout: []byte(v + "\n")}, nil
		}
		if v, ok := f.versionByBase[filepath.Base(command)]; ok {
			return RunResult{Stdout: []byte(v + "\n")}, nil
		}
	}
	return RunResult{ExitCode: 1, Stderr: []byte("boom")}, errProbe
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) called(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

type testEnv struct {
	home    string
	sidecar string
	store   *memStore
	runner  *fakeRunner
	loc     *Locator
}

// newTestEnv builds a locator with an empty temporary home, no system
// directories and a sidecar that does not run unless the test registers it.
func newTestEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()
	env := &testEnv{
		home:   t.TempDir(),
		store:  newMemStore(),
		runner: newFakeRunner(),
	}
	env.sidecar = filepath.Join(t.TempDir(), BundledSentinel)

	opts := Options{
		Store:       env.store,
		Runner:      env.runner,
		Home:        env.home,
		SidecarPath: env.sidecar,
		SystemDirs:  []string{},
	}
	for _, m := range mutate {
		m(&opts)
	}
	loc, err := New(opts)
	require.NoError(t, err)
	env.loc = loc
	return env
}

// writeBinary creates an empty regular file (and parents) under root.
func writeBinary(t *testing.T, root string, rel ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root}, rel...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}
