package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/donno/internal/checksum"
	"github.com/starford/donno/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the repository directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute repository directory.
func (f *FS) Root() string { return f.root }

// safePath resolves path against the repository root and rejects any result
// that escapes it (directory traversal).
func (f *FS) safePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("storage: empty path")
	}
	joined := filepath.Clean(path)
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(f.root, joined)
	}
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes repository root: %s", path)
	}
	return abs, nil
}

// List returns metadata for every note file directly inside the root.
// Sub-directories (including .git) are not descended into. os.ReadDir
// returns entries sorted by name, which fixes the enumeration order.
func (f *FS) List() ([]models.FileInfo, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", f.root, err)
	}
	var out []models.FileInfo
	for _, e := range entries {
		if e.IsDir() || !isNoteFile(e.Name()) {
			continue
		}
		p := filepath.Join(f.root, e.Name())
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Removed between ReadDir and Info.
				continue
			}
			return nil, fmt.Errorf("storage: stat %s: %w", p, err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("storage: read %s: %w", p, err)
		}
		out = append(out, models.FileInfo{
			Path:      p,
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of a repository file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", abs, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	tmp, err := os.CreateTemp(dir, ".donno-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename %s: %w", abs, err)
	}
	success = true
	return nil
}

// Delete removes a file from the repository.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", abs, err)
	}
	return nil
}

// Exists reports whether a file exists at path.
func (f *FS) Exists(path string) (bool, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("storage: stat %s: %w", abs, err)
	}
}

func isNoteFile(name string) bool {
	return strings.HasSuffix(name, NoteExt) && !strings.HasPrefix(name, ".")
}
