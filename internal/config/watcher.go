package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/logfields"
)

// DefaultDebounce collapses bursts of editor writes into one reload.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc receives each successfully reloaded configuration.
type ReloadFunc func(ctx context.Context, cfg *Config) error

// Watcher monitors a configuration file and calls a ReloadFunc with the
// new contents after every change.
type Watcher struct {
	configPath string
	debounce   time.Duration
	onReload   ReloadFunc
	watcher    *fsnotify.Watcher
}

// NewWatcher creates a watcher for configPath.
func NewWatcher(configPath string, debounce time.Duration, onReload ReloadFunc) (*Watcher, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve config path").
			WithContext("path", configPath).
			Build()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	// Watch the directory: editors often replace the file rather than write it.
	dir := filepath.Dir(absPath)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to watch config directory").
			WithContext("path", dir).
			Build()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{configPath: absPath, debounce: debounce, onReload: onReload, watcher: w}, nil
}

// Run blocks until ctx is done and closes the watcher. Reload failures are logged and the
// previous output stays in place.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()
	slog.Info("Watching configuration", logfields.Path(w.configPath))

	name := filepath.Base(w.configPath)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Remove) {
				slog.Warn("Config file removed", logfields.Path(event.Name))
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				slog.Debug("Config file change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Config watcher error", logfields.Error(err))
		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	slog.Info("Reloading configuration", logfields.Path(w.configPath))
	cfg, err := Load(w.configPath)
	if err != nil {
		slog.Error("Failed to reload configuration", logfields.Error(err))
		return
	}
	if err := w.onReload(ctx, cfg); err != nil {
		slog.Error("Failed to apply configuration", logfields.Error(err))
	}
}
