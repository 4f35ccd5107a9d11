package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/donno/internal/index"
	"github.com/starford/donno/internal/noteservice"
	"github.com/starford/donno/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// NewLogger returns a JSON logger writing to w (stdout when nil).
func NewLogger(level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Components are the long-lived objects every command works with.
type Components struct {
	Store *storage.FS
	Cache *index.DB
	Notes *noteservice.Service
}

// Open creates the note directory if needed, opens the index cache and
// builds the note service. A cache file that cannot be read is replaced, so
// that listing commands always get a cache to write to.
func Open(cfg *Config, logger *slog.Logger) (*Components, error) {
	return open(cfg, logger, func(path string) (*index.DB, error) {
		cache, reset, err := index.OpenOrReset(path)
		if reset {
			logger.Warn("index: replaced unreadable cache", slog.String("path", path),
				slog.String("moved_to", path+".corrupt"))
		}
		return cache, err
	})
}

// OpenExisting is Open for commands that only address notes by ordinal. A
// missing or unreadable cache is reported as index.ErrStaleIndex and left
// for the next listing to replace.
func OpenExisting(cfg *Config, logger *slog.Logger) (*Components, error) {
	return open(cfg, logger, index.OpenExisting)
}

func open(cfg *Config, logger *slog.Logger, openCache func(string) (*index.DB, error)) (*Components, error) {
	if err := os.MkdirAll(cfg.Notes.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Notes.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	cache, err := openCache(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	svc := noteservice.NewService(store, cache,
		noteservice.WithLogger(logger),
		noteservice.WithStrictIndex(cfg.Index.Strict),
	)
	return &Components{Store: store, Cache: cache, Notes: svc}, nil
}

// Close releases the index cache.
func (c *Components) Close() error {
	return c.Cache.Close()
}
