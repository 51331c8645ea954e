// Package index catalogues save blobs in sqlite so the server and
// cmd/inspect can list, resume and prune saves without decoding them.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS saves (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	version      INTEGER NOT NULL,
	created_at   TEXT NOT NULL,
	clock_micros INTEGER NOT NULL,
	settlements  INTEGER NOT NULL,
	path         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS saves_by_name ON saves(name, created_at DESC);
`

// Save is one catalogue row. CreatedAt is RFC 3339 text, which sorts
// chronologically.
type Save struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Version     int    `db:"version"`
	CreatedAt   string `db:"created_at"`
	ClockMicros int64  `db:"clock_micros"`
	Settlements int    `db:"settlements"`
	Path        string `db:"path"`
}

type Index struct {
	db *sqlx.DB
}

// Open creates or opens the catalogue at path.
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Index{db: db}, nil
}

func (i *Index) Close() error { return i.db.Close() }

// Record upserts one save row.
func (i *Index) Record(s Save) error {
	_, err := i.db.NamedExec(`
		INSERT OR REPLACE INTO saves
			(id, name, version, created_at, clock_micros, settlements, path)
		VALUES
			(:id, :name, :version, :created_at, :clock_micros, :settlements, :path)`, s)
	return err
}

// List returns every save, newest first.
func (i *Index) List() ([]Save, error) {
	var out []Save
	err := i.db.Select(&out, `SELECT * FROM saves ORDER BY created_at DESC, id`)
	return out, err
}

// Latest returns the newest save under a name; ok is false when none
// exists.
func (i *Index) Latest(name string) (Save, bool, error) {
	var s Save
	err := i.db.Get(&s,
		`SELECT * FROM saves WHERE name = ? ORDER BY created_at DESC, id LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return Save{}, false, nil
	}
	if err != nil {
		return Save{}, false, err
	}
	return s, true, nil
}

// Prune deletes rows for blobs that no longer exist on disk, returning the
// removed rows so callers can log them.
func (i *Index) Prune() ([]Save, error) {
	saves, err := i.List()
	if err != nil {
		return nil, err
	}
	var removed []Save
	for _, s := range saves {
		if _, err := os.Stat(s.Path); err == nil {
			continue
		}
		if _, err := i.db.Exec(`DELETE FROM saves WHERE id = ?`, s.ID); err != nil {
			return removed, err
		}
		removed = append(removed, s)
	}
	return removed, nil
}
