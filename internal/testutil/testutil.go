// Package testutil provides shared test helpers for setting up note
// directories and index caches.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/donno/internal/index"
	"github.com/starford/donno/internal/models"
	"github.com/starford/donno/internal/parser"
	"github.com/starford/donno/internal/storage"
)

// TestCache creates a temporary index cache that is automatically closed.
func TestCache(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRepo creates a temporary note directory with a storage.Provider.
func TestRepo(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// Stamp parses a TimeLayout timestamp or fails the test.
func Stamp(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := models.ParseTime(s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

// WriteNote encodes n into dir/name and returns the absolute path.
func WriteNote(t *testing.T, dir, name string, n models.Note) string {
	t.Helper()
	if n.Tags == nil {
		n.Tags = []string{}
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, parser.Format(n), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
