// Package index persists the ordinal-to-note mapping produced by the most
// recent listing or search, so that later invocations can address notes by
// a small integer.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS listing (
	ordinal INTEGER PRIMARY KEY,
	path    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS listing_meta (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	generation  INTEGER NOT NULL,
	dir         TEXT NOT NULL,
	fingerprint TEXT NOT NULL DEFAULT '',
	built_at    TEXT NOT NULL
);
`

// DB wraps a sql.DB holding the index cache.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the cache database and applies the schema.
func Open(dsn string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return nil, fmt.Errorf("index: create state dir: %w", err)
	}
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// OpenExisting opens a cache written by an earlier listing. A missing or
// unreadable cache file is reported as ErrStaleIndex.
func OpenExisting(dsn string) (*DB, error) {
	if _, err := os.Stat(dsn); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no cache at %s", ErrStaleIndex, dsn)
		}
		return nil, fmt.Errorf("%w: %v", ErrStaleIndex, err)
	}
	db, err := Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStaleIndex, err)
	}
	return db, nil
}

// OpenOrReset opens the cache at dsn for a listing command, which is about to
// overwrite it anyway. An existing file that is not a usable cache is moved
// to dsn+".corrupt" and a fresh cache is created; reset reports that case.
func OpenOrReset(dsn string) (db *DB, reset bool, err error) {
	db, err = Open(dsn)
	if err == nil {
		if err = db.check(); err == nil {
			return db, false, nil
		}
		db.Close()
	}
	if _, serr := os.Stat(dsn); serr != nil {
		return nil, false, err
	}
	if derr := discard(dsn); derr != nil {
		return nil, false, fmt.Errorf("%w (reset: %v)", err, derr)
	}
	db, err = Open(dsn)
	if err != nil {
		return nil, false, err
	}
	return db, true, nil
}

// check runs SQLite's integrity quick check.
func (db *DB) check() error {
	var res string
	if err := db.conn.QueryRow(`PRAGMA quick_check`).Scan(&res); err != nil {
		return fmt.Errorf("index: quick check: %w", err)
	}
	if res != "ok" {
		return fmt.Errorf("index: quick check: %s", res)
	}
	return nil
}

// discard moves an unusable cache file aside and drops its WAL files.
func discard(dsn string) error {
	if err := os.Rename(dsn, dsn+".corrupt"); err != nil {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dsn + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
