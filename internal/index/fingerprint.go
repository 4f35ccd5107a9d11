package index

import (
	"github.com/starford/donno/internal/checksum"
	"github.com/starford/donno/internal/models"
	"github.com/starford/donno/internal/storage"
)

// Fingerprint digests a directory listing: file paths and content checksums.
func Fingerprint(files []models.FileInfo) string {
	m := make(map[string]string, len(files))
	for _, f := range files {
		m[f.Path] = f.Checksum
	}
	return checksum.Directory(m)
}

// FingerprintStore lists store and digests the result.
func FingerprintStore(store storage.Provider) (string, error) {
	files, err := store.List()
	if err != nil {
		return "", err
	}
	return Fingerprint(files), nil
}
