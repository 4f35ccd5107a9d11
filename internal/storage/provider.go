// Package storage defines the note repository file-system abstraction.
package storage

import "github.com/starford/donno/internal/models"

// NoteExt is the extension of note files inside the repository directory.
const NoteExt = ".md"

// Provider is the interface for repository file operations. Paths are either
// absolute (and must lie inside the repository) or relative to its root.
type Provider interface {
	// Root returns the absolute repository directory.
	Root() string
	// List returns metadata for every note file directly inside the root,
	// ordered by file name.
	List() ([]models.FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a file exists at path.
	Exists(path string) (bool, error)
}
