package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/donno/internal/models"
)

// Rebuild replaces the cached listing with notes, assigning ordinals 1..N in
// slice order, and returns the new listing.
func (db *DB) Rebuild(dir, fingerprint string, notes []models.Note) (*Listing, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM listing`); err != nil {
		return nil, fmt.Errorf("index: clear listing: %w", err)
	}

	entries := make([]Entry, len(notes))
	if len(notes) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO listing (ordinal, path) VALUES (?, ?)`)
		if err != nil {
			return nil, fmt.Errorf("index: prepare insert: %w", err)
		}
		defer stmt.Close()
		for i, n := range notes {
			entries[i] = Entry{Ordinal: i + 1, Path: n.Path}
			if _, err := stmt.Exec(entries[i].Ordinal, entries[i].Path); err != nil {
				return nil, fmt.Errorf("index: insert entry %d: %w", entries[i].Ordinal, err)
			}
		}
	}

	var gen int64
	err = tx.QueryRow(`SELECT generation FROM listing_meta WHERE id = 1`).Scan(&gen)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: read generation: %w", err)
	}
	gen++

	builtAt := time.Now().UTC().Truncate(time.Second)
	_, err = tx.Exec(`
		INSERT INTO listing_meta (id, generation, dir, fingerprint, built_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generation  = excluded.generation,
			dir         = excluded.dir,
			fingerprint = excluded.fingerprint,
			built_at    = excluded.built_at
	`, gen, dir, fingerprint, builtAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("index: write meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("index: commit: %w", err)
	}
	return &Listing{
		Generation:  gen,
		Dir:         dir,
		Fingerprint: fingerprint,
		BuiltAt:     builtAt,
		Entries:     entries,
	}, nil
}

// Resolve returns the location assigned to ordinal by the last rebuild. It
// never looks at the note directory.
func (db *DB) Resolve(ordinal int) (string, error) {
	if _, err := db.meta(); err != nil {
		return "", err
	}
	var path string
	err := db.conn.QueryRow(`SELECT path FROM listing WHERE ordinal = ?`, ordinal).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		var size int
		if err := db.conn.QueryRow(`SELECT count(*) FROM listing`).Scan(&size); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStaleIndex, err)
		}
		return "", &OutOfRangeError{Ordinal: ordinal, Size: size}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStaleIndex, err)
	}
	return path, nil
}

// Snapshot returns the whole cached listing.
func (db *DB) Snapshot() (*Listing, error) {
	l, err := db.meta()
	if err != nil {
		return nil, err
	}
	rows, err := db.conn.Query(`SELECT ordinal, path FROM listing ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStaleIndex, err)
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Ordinal, &e.Path); err != nil {
			return nil, err
		}
		l.Entries = append(l.Entries, e)
	}
	return l, rows.Err()
}

// CheckFresh returns ErrStaleIndex unless the cached listing was built from
// a directory with the given fingerprint and has not been invalidated since.
func (db *DB) CheckFresh(fingerprint string) error {
	l, err := db.meta()
	if err != nil {
		return err
	}
	if l.Fingerprint == "" || l.Fingerprint != fingerprint {
		return fmt.Errorf("%w: notes changed since listing generation %d", ErrStaleIndex, l.Generation)
	}
	return nil
}

// Invalidate marks the cached listing as possibly out of date. Resolve keeps
// working; CheckFresh fails until the next rebuild.
func (db *DB) Invalidate() error {
	if _, err := db.conn.Exec(`UPDATE listing_meta SET fingerprint = '' WHERE id = 1`); err != nil {
		return fmt.Errorf("index: invalidate: %w", err)
	}
	return nil
}

func (db *DB) meta() (*Listing, error) {
	var (
		l       Listing
		builtAt string
	)
	err := db.conn.QueryRow(`SELECT generation, dir, fingerprint, built_at FROM listing_meta WHERE id = 1`).
		Scan(&l.Generation, &l.Dir, &l.Fingerprint, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no listing has been built yet", ErrStaleIndex)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStaleIndex, err)
	}
	l.BuiltAt, _ = time.Parse(time.RFC3339, builtAt)
	return &l, nil
}
