package locator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchEvent reports that the cached binary changed on disk and what the
// locator resolved afterwards.
type WatchEvent struct {
	Path     string `json:"path"`
	Op       string `json:"op"`
	Resolved string `json:"resolved,omitempty"`
	Err      error  `json:"-"`
}

// CacheWatcher drops the locator's cached resolution whenever the resolved
// binary is removed, renamed or rewritten, then resolves again.
type CacheWatcher struct {
	l      *Locator
	w      *fsnotify.Watcher
	dir    string
	target string
	events chan WatchEvent
}

// NewCacheWatcher resolves the current binary and starts watching its
// directory. Call Run to process events.
func (l *Locator) NewCacheWatcher(ctx context.Context) (*CacheWatcher, error) {
	ref, err := l.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	cw := &CacheWatcher{l: l, w: w, events: make(chan WatchEvent, 8)}
	if err := cw.retarget(ref); err != nil {
		w.Close()
		return nil, err
	}
	return cw, nil
}

// Target is the executable currently being watched.
func (cw *CacheWatcher) Target() string {
	return cw.target
}

// Events delivers one WatchEvent per invalidation. It is closed when Run
// returns.
func (cw *CacheWatcher) Events() <-chan WatchEvent {
	return cw.events
}

// Run processes filesystem events until ctx is done, then releases the
// underlying watcher.
func (cw *CacheWatcher) Run(ctx context.Context) error {
	defer close(cw.events)
	defer cw.w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-cw.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != cw.target || ev.Op == fsnotify.Chmod {
				continue
			}
			out := cw.handle(ctx, ev)
			select {
			case cw.events <- out:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-cw.w.Errors:
			if !ok {
				return nil
			}
			cw.l.log.Warn("binary watcher error", zap.Error(err))
		}
	}
}

func (cw *CacheWatcher) handle(ctx context.Context, ev fsnotify.Event) WatchEvent {
	cw.l.log.Info("cached claude binary changed, invalidating",
		zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
	cw.l.Invalidate()

	out := WatchEvent{Path: ev.Name, Op: ev.Op.String()}
	ref, err := cw.l.Resolve(ctx)
	if err != nil {
		out.Err = err
		return out
	}
	out.Resolved = ref
	if err := cw.retarget(ref); err != nil {
		out.Err = err
	}
	return out
}

func (cw *CacheWatcher) retarget(ref string) error {
	exe := filepath.Clean(cw.l.Executable(ref))
	dir := filepath.Dir(exe)
	if dir != cw.dir {
		if err := cw.w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		if cw.dir != "" {
			_ = cw.w.Remove(cw.dir)
		}
		cw.dir = dir
	}
	cw.target = exe
	return nil
}
