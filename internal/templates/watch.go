package templates

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a Renderer whenever a fragment file changes.
type Watcher struct {
	renderer *Renderer
	log      zerolog.Logger
	debounce time.Duration
	onReload func(error)
}

// NewWatcher creates a watcher for r. onReload, if set, is called after
// every reload attempt.
func NewWatcher(r *Renderer, log zerolog.Logger, onReload func(error)) *Watcher {
	return &Watcher{renderer: r, log: log, debounce: DefaultDebounce, onReload: onReload}
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("template watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.renderer.Dir()); err != nil {
		return fmt.Errorf("template watcher: %w", err)
	}
	w.log.Info().Str("dir", w.renderer.Dir()).Msg("watching templates")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".html" || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			w.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("template changed")
			pending = time.After(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("template watcher error")

		case <-pending:
			pending = nil
			err := w.renderer.Reload()
			if err != nil {
				w.log.Error().Err(err).Msg("template reload failed, keeping previous")
			} else {
				w.log.Info().Msg("templates reloaded")
			}
			if w.onReload != nil {
				w.onReload(err)
			}
		}
	}
}
