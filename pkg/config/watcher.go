package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/pasteflow/api/v1beta1/configs"
	"github.com/macropower/pasteflow/pkg/log"
)

// Watcher reloads a configuration file into a [Store] when it changes.
//
// The parent directory is watched rather than the file itself, so that
// editors which replace the file by renaming are handled.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	onReload func(*configs.Configuration)
	onError  func(error)
	path     string
	opts     []LoaderOpt
}

// WatcherOpt configures a [Watcher].
type WatcherOpt func(*Watcher)

// OnReload is called with each successfully loaded configuration.
func OnReload(fn func(*configs.Configuration)) WatcherOpt {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// OnError is called when a changed file cannot be loaded.
func OnError(fn func(error)) WatcherOpt {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithLoaderOpts sets options for each reload.
func WithLoaderOpts(opts ...LoaderOpt) WatcherOpt {
	return func(w *Watcher) {
		w.opts = opts
	}
}

// NewWatcher creates a [Watcher] for the configuration file at path.
func NewWatcher(path string, store *Store, opts ...WatcherOpt) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	err = fw.Add(filepath.Dir(absPath))
	if err != nil {
		_ = fw.Close()

		return nil, fmt.Errorf("add path to watcher: %w", err)
	}

	w := &Watcher{
		path:    absPath,
		store:   store,
		watcher: fw,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Run handles file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	logger := log.WithContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(evt.Name) != w.path {
				continue
			}

			// Ignore events that are not related to file content changes.
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}

			logger.DebugContext(ctx, "config file changed", slog.String("event", evt.String()))

			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			logger.ErrorContext(ctx, "watch config", slog.Any("error", err))
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	logger := log.WithContext(ctx)

	cfg, err := Load(w.path, w.opts...)
	if err != nil {
		logger.ErrorContext(ctx, "reload config, keeping previous",
			slog.String("path", w.path),
			slog.Any("error", err),
		)

		if w.onError != nil {
			w.onError(err)
		}

		return
	}

	for _, warning := range cfg.Warnings() {
		logger.WarnContext(ctx, "config warning", slog.Any("error", warning))
	}

	w.store.Swap(cfg)

	logger.InfoContext(ctx, "reloaded config",
		slog.String("path", w.path),
		slog.Int("rules", len(cfg.Rules)),
	)

	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}

	return nil
}
