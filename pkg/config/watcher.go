package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file on change and reports the new value
// through a callback. Only budget and log-level fields are meaningful
// to apply from a reload; the running research tree is never touched.
type Watcher struct {
	path string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// NewWatcher returns a Watcher over the config file at path.
func NewWatcher(path string) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolving path: %w", err)
	}
	return &Watcher{path: absPath}, nil
}

// Watch starts watching the config file and invokes onReload with the
// freshly loaded Config each time the file changes. Blocks until ctx is
// cancelled or Close is called.
func (w *Watcher) Watch(ctx context.Context, onReload func(*Config)) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("config: watcher is closed")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("config: creating file watcher: %w", err)
	}
	w.watcher = fw
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("config: watching %s: %w", dir, err)
	}

	slog.Info("watching config file", "path", w.path)

	var debounce *time.Timer
	const debounceDelay = 200 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			fw.Close()
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				cfg, err := Load(w.path)
				if err != nil {
					slog.Warn("config reload failed", "path", w.path, "error", err)
					return
				}
				onReload(cfg)
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("config watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
