package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watcher reapplies the log level whenever the config file changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	apply   func(level string) error
	logger  *slog.Logger
}

// NewWatcher watches the directory holding path so editors that replace
// the file on save are still seen.
func NewWatcher(path string, apply func(level string) error, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	return &Watcher{watcher: w, path: filepath.Clean(path), apply: apply, logger: logger}, nil
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher", "err", err)
		}
	}
}

func (w *Watcher) reload() {
	level, err := ReadLogLevel(w.path)
	if err != nil {
		w.logger.Warn("config reload", "path", w.path, "err", err)
		return
	}
	if err := w.apply(level); err != nil {
		w.logger.Warn("config reload", "log_level", level, "err", err)
		return
	}
	w.logger.Info("config reloaded", "log_level", level)
}
