// Package noteservice is the note store: it loads, creates and rewrites note
// files, runs searches over them and keeps the index cache in step with the
// last listing.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/starford/donno/internal/apperr"
	"github.com/starford/donno/internal/checksum"
	"github.com/starford/donno/internal/index"
	"github.com/starford/donno/internal/models"
	"github.com/starford/donno/internal/parser"
	"github.com/starford/donno/internal/query"
	"github.com/starford/donno/internal/storage"
)

// FileError records a note file that was skipped while loading.
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// LoadResult is the decoded content of the note directory.
type LoadResult struct {
	// Notes are sorted by Updated, newest first; ties keep file name order.
	Notes       []models.Note
	Failed      []FileError
	Fingerprint string
}

// Result is the outcome of a listing or search: the matching notes and the
// index cache listing that now addresses them.
type Result struct {
	Notes   []models.Note
	Listing *index.Listing
	Failed  []FileError
}

// NotebookCount is one line of the notebook overview.
type NotebookCount struct {
	Notebook string `json:"notebook"`
	Notes    int    `json:"notes"`
}

// Service coordinates storage, codec, search and the index cache.
type Service struct {
	store  storage.Provider
	cache  index.Cache
	logger *slog.Logger
	now    func() time.Time
	strict bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used to report skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces the wall clock used for new notes and edits.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStrictIndex makes Resolve refuse a cached listing whose directory
// fingerprint no longer matches the note directory.
func WithStrictIndex(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

// NewService creates a new note service.
func NewService(store storage.Provider, cache index.Cache, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cache:  cache,
		logger: slog.Default(),
		now:    models.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the note directory.
func (s *Service) Dir() string {
	return s.store.Root()
}

// Load decodes every note file. Malformed files are reported in Failed and
// left out; only a directory that cannot be listed is an error.
func (s *Service) Load(_ context.Context) (*LoadResult, error) {
	files, err := s.store.List()
	if err != nil {
		return nil, err
	}

	res := &LoadResult{Notes: make([]models.Note, 0, len(files))}
	// Checksums are recomputed from the decoded bytes.
	seen := make([]models.FileInfo, 0, len(files))
	for _, f := range files {
		data, err := s.store.Read(f.Path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		var n *models.Note
		if err == nil {
			f.Checksum = checksum.Sum(data)
			n, err = s.decode(f.Path, data)
		}
		seen = append(seen, f)
		if err != nil {
			s.logger.Warn("store: skipping note", slog.String("path", f.Path), slog.String("error", err.Error()))
			res.Failed = append(res.Failed, FileError{Path: f.Path, Err: err})
			continue
		}
		res.Notes = append(res.Notes, *n)
	}
	res.Fingerprint = index.Fingerprint(seen)

	sort.SliceStable(res.Notes, func(i, j int) bool {
		return res.Notes[i].Updated.After(res.Notes[j].Updated)
	})
	return res, nil
}

// List returns the limit most recently updated notes (all when limit <= 0)
// and rebuilds the index cache from them.
func (s *Service) List(ctx context.Context, limit int) (*Result, error) {
	loaded, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	notes := loaded.Notes
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}
	return s.publish(loaded, notes)
}

// Search compiles every pattern, then returns the notes matching all of
// them in store order and rebuilds the index cache. A pattern that does not
// compile fails the search before any file is read.
func (s *Service) Search(ctx context.Context, patterns []string) (*Result, error) {
	terms, err := query.ParseAll(patterns)
	if err != nil {
		return nil, err
	}
	loaded, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.publish(loaded, query.Filter(loaded.Notes, terms))
}

func (s *Service) publish(loaded *LoadResult, notes []models.Note) (*Result, error) {
	listing, err := s.cache.Rebuild(s.store.Root(), loaded.Fingerprint, notes)
	if err != nil {
		return nil, err
	}
	return &Result{Notes: notes, Listing: listing, Failed: loaded.Failed}, nil
}

// ResolvePath maps an ordinal from the last listing to a note location.
func (s *Service) ResolvePath(_ context.Context, ordinal int) (string, error) {
	if s.strict {
		fp, err := index.FingerprintStore(s.store)
		if err != nil {
			return "", err
		}
		if err := s.cache.CheckFresh(fp); err != nil {
			return "", err
		}
	}
	return s.cache.Resolve(ordinal)
}

// Resolve maps an ordinal from the last listing to its decoded note.
func (s *Service) Resolve(ctx context.Context, ordinal int) (*models.Note, error) {
	path, err := s.ResolvePath(ctx, ordinal)
	if err != nil {
		return nil, err
	}
	return s.Read(ctx, path)
}

// Read decodes the note at path.
func (s *Service) Read(_ context.Context, path string) (*models.Note, error) {
	return s.read(path)
}

func (s *Service) read(path string) (*models.Note, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, path)
		}
		return nil, err
	}
	return s.decode(path, data)
}

func (s *Service) decode(path string, data []byte) (*models.Note, error) {
	n, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	n.Path = s.abs(path)
	return n, nil
}

// Create validates draft and writes it to a new file named after the
// current second. Zero timestamps are set to now.
func (s *Service) Create(_ context.Context, draft models.Note) (string, error) {
	if err := parser.Validate(draft); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	now := s.now()
	if draft.Created.IsZero() {
		draft.Created = now
	}
	if draft.Updated.IsZero() {
		draft.Updated = draft.Created
	}

	name, err := s.allocateName(now)
	if err != nil {
		return "", err
	}
	if err := s.store.Write(name, parser.Format(draft)); err != nil {
		return "", err
	}
	path := s.abs(name)
	s.logger.Debug("store: created note", slog.String("path", path))
	return path, nil
}

// allocateName derives a file name from now. Notes created within the same
// second get a numeric suffix.
func (s *Service) allocateName(now time.Time) (string, error) {
	base := now.Format("20060102-150405")
	for i := 0; ; i++ {
		name := base + storage.NoteExt
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", base, i, storage.NoteExt)
		}
		exists, err := s.store.Exists(name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
	}
}

// Touch reads the note at path, applies mutate and writes it back. Fields
// mutate leaves alone, body included, are preserved exactly.
func (s *Service) Touch(_ context.Context, path string, mutate func(*models.Note)) (*models.Note, error) {
	n, err := s.read(path)
	if err != nil {
		return nil, err
	}
	mutate(n)
	if err := parser.ValidateEncodable(*n); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if err := s.store.Write(path, parser.Format(*n)); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkUpdated returns a Touch mutator that stamps the note as updated now.
func (s *Service) MarkUpdated() func(*models.Note) {
	now := s.now()
	return func(n *models.Note) { n.Updated = now }
}

// Delete removes the note at path.
func (s *Service) Delete(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", apperr.ErrNotFound, path)
		}
		return err
	}
	return nil
}

// Notebooks returns every notebook in use with its note count, sorted by
// name. Malformed files are skipped as in Load.
func (s *Service) Notebooks(ctx context.Context) ([]NotebookCount, error) {
	loaded, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, n := range loaded.Notes {
		counts[n.Notebook]++
	}
	names := lo.Keys(counts)
	sort.Strings(names)
	return lo.Map(names, func(nb string, _ int) NotebookCount {
		return NotebookCount{Notebook: nb, Notes: counts[nb]}
	}), nil
}

func (s *Service) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.store.Root(), path)
}
