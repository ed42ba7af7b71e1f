// Package watch re-runs the conversion pipeline whenever the XML input
// directory changes. Events are debounced because Doxygen rewrites the whole
// directory file by file.
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/logfields"
)

// Watcher triggers a callback after a quiet period following filesystem
// changes in a directory.
type Watcher struct {
	debounce time.Duration
}

// New creates a watcher with the given debounce window.
func New(debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{debounce: debounce}
}

// Run watches dir until the context is canceled, invoking onChange after
// each debounced burst of events. A failing onChange is logged and watching
// continues: the next write may fix the input.
func (w *Watcher) Run(ctx context.Context, dir string, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryIO, "failed to create filesystem watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return errors.WrapFatal(err, errors.CategoryIO, "failed to watch input directory").
			WithContext("path", dir)
	}
	slog.Info("Watching input directory", logfields.Path(dir))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Input changed", logfields.Path(event.Name))
			pending = time.After(w.debounce)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(werr))
		case <-pending:
			pending = nil
			if err := onChange(); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}
