package index

import (
	"errors"
	"fmt"
	"time"

	"github.com/starford/donno/internal/models"
)

var (
	ErrStaleIndex      = errors.New("index cache is stale or unreadable, re-run a listing command")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// OutOfRangeError reports an ordinal that the last listing did not assign.
type OutOfRangeError struct {
	Ordinal int
	Size    int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index: no note #%d in the last listing of %d notes, re-run a listing command", e.Ordinal, e.Size)
}

func (e *OutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

// Entry maps a 1-based ordinal to a note location.
type Entry struct {
	Ordinal int    `json:"index"`
	Path    string `json:"path"`
}

// Listing is the persisted result of the most recent listing or search.
// Generation increases with every rebuild; Fingerprint is the digest of the
// note directory at rebuild time and is cleared by Invalidate.
type Listing struct {
	Generation  int64     `json:"generation"`
	Dir         string    `json:"dir"`
	Fingerprint string    `json:"fingerprint"`
	BuiltAt     time.Time `json:"built_at"`
	Entries     []Entry   `json:"entries"`
}

// Cache defines the index cache operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Cache interface {
	Rebuild(dir, fingerprint string, notes []models.Note) (*Listing, error)
	Resolve(ordinal int) (string, error)
	Snapshot() (*Listing, error)
	CheckFresh(fingerprint string) error
	Invalidate() error
	Close() error
}

// Verify *DB satisfies Cache at compile time.
var _ Cache = (*DB)(nil)
