// Package watch re-runs a callback whenever a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDelay is the debounce window applied to bursts of events.
const DefaultDelay = 500 * time.Millisecond

// Func is invoked once on start and again after every change.
type Func func(ctx context.Context) error

// Watcher watches a single file.
type Watcher struct {
	logger zerolog.Logger
	delay  time.Duration
}

// New creates a watcher with the default debounce delay.
func New(logger zerolog.Logger) *Watcher {
	return &Watcher{
		logger: logger.With().Str("component", "watch").Logger(),
		delay:  DefaultDelay,
	}
}

// WithDelay returns a copy of w using the given debounce delay.
func (w *Watcher) WithDelay(d time.Duration) *Watcher {
	cp := *w
	cp.delay = d
	return &cp
}

// Run calls fn, then calls it again each time path is written or recreated,
// until ctx is done. Errors from fn are logged and do not stop the watch.
// The parent directory is watched so editors that replace the file on save
// are picked up.
func (w *Watcher) Run(ctx context.Context, path string, fn Func) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w.logger.Info().Str("file", abs).Msg("Watching for changes")
	w.invoke(ctx, abs, fn)

	timer := time.NewTimer(w.delay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("File changed")

			timer.Reset(w.delay)

		case <-timer.C:
			w.invoke(ctx, abs, fn)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) invoke(ctx context.Context, path string, fn Func) {
	start := time.Now()
	if err := fn(ctx); err != nil {
		w.logger.Error().Err(err).Str("file", path).Msg("Run failed")
		return
	}
	w.logger.Debug().
		Str("file", path).
		Dur("duration", time.Since(start)).
		Msg("Run completed")
}
