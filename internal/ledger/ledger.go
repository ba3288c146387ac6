// Package ledger persists the set of already-downloaded URLs.
//
// The ledger is what makes batch runs idempotent: before an item is
// transferred, the batch asks the ledger whether the URL was completed
// in an earlier run. Records are written only after an item fully
// succeeds, so an interrupted run never leaves a URL marked done.
package ledger

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger records completed downloads in a local SQLite database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path. Parent
// directories are created as needed.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS downloads (
		url     TEXT PRIMARY KEY,
		path    TEXT NOT NULL,
		title   TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{db: db}, nil
}

// Lookup returns the recorded output path for a URL and whether the
// URL has a record at all.
func (l *Ledger) Lookup(url string) (string, bool, error) {
	var path string
	err := l.db.QueryRow("SELECT path FROM downloads WHERE url = ?", url).Scan(&path)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

// Record marks a URL as completed. Re-recording an existing URL
// replaces the old row, so retried items keep a single entry.
func (l *Ledger) Record(url, path, title string) error {
	_, err := l.db.Exec(
		"INSERT OR REPLACE INTO downloads (url, path, title, created) VALUES (?, ?, ?, ?)",
		url, path, title, time.Now().Unix(),
	)
	return err
}

// Count returns the number of recorded downloads.
func (l *Ledger) Count() (int, error) {
	var n int
	err := l.db.QueryRow("SELECT COUNT(*) FROM downloads").Scan(&n)
	return n, err
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
