package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/donno/internal/storage"
)

// EventCallback is called after a watcher-driven invalidation.
// kind is one of "created", "updated", "deleted", "renamed".
type EventCallback func(kind string, path string)

// Invalidator is the part of Cache the watcher needs.
type Invalidator interface {
	Invalidate() error
}

// Watch starts an fsnotify watcher on the note directory and invalidates
// the cache whenever a note file changes, until ctx is cancelled. It calls
// cb (if non-nil) after each invalidation. Sub-directories are not watched
// since notes live directly inside dir.
func Watch(ctx context.Context, cache Invalidator, dir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, storage.NoteExt) || strings.HasPrefix(name, ".") {
				continue
			}

			kind := eventKind(ev.Op)
			if kind == "" {
				continue
			}
			if err := cache.Invalidate(); err != nil {
				logger.Warn("watcher: invalidate failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
				continue
			}
			logger.Debug("watcher: cache invalidated", slog.String("path", ev.Name), slog.String("op", kind))
			if cb != nil {
				cb(kind, ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func eventKind(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "created"
	case op&fsnotify.Write != 0:
		return "updated"
	case op&fsnotify.Remove != 0:
		return "deleted"
	case op&fsnotify.Rename != 0:
		return "renamed"
	}
	return ""
}
