// Package store persists editable packages in SQLite.
//
// Rows live in the editables table; an in-memory B-tree mirrors them so
// lookups and ordered listing never hit the database.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lex00/pakman/errs"
	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Memory opens a database that lives only as long as the Store.
const Memory = ":memory:"

// Editable is a package consumed from a user folder instead of the cache.
type Editable struct {
	Reference string    `json:"reference"`
	Path      string    `json:"path"`
	Layout    string    `json:"layout,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the editable packages database.
type Store struct {
	mu sync.RWMutex
	db *sql.DB

	index *btree.Map[string, Editable]
}

// Open opens or creates the database at path and loads its rows.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errs.Wrap(errs.KindInvalidConfiguration, err, "failed to create editables directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection, so an in-memory database is shared by every query
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:    db,
		index: btree.NewMap[string, Editable](0),
	}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.load(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS editables (
		reference TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		layout TEXT,
		created_at INTEGER NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT reference, path, layout, created_at FROM editables")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e       Editable
			layout  sql.NullString
			created int64
		)
		if err := rows.Scan(&e.Reference, &e.Path, &layout, &created); err != nil {
			return err
		}
		e.Layout = layout.String
		e.CreatedAt = time.Unix(created, 0).UTC()
		s.index.Set(e.Reference, e)
	}
	return rows.Err()
}

// Add stores e, replacing any previous entry for the same reference.
func (s *Store) Add(ctx context.Context, e Editable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO editables (reference, path, layout, created_at) VALUES (?, ?, ?, ?)",
		e.Reference, e.Path, nullable(e.Layout), e.CreatedAt.Unix())
	if err != nil {
		return err
	}
	s.index.Set(e.Reference, e)
	return nil
}

// Remove deletes the entry for ref. It reports whether one existed.
func (s *Store) Remove(ctx context.Context, ref string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM editables WHERE reference = ?", ref)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	s.index.Delete(ref)
	return n > 0, nil
}

// Get returns the entry for ref.
func (s *Store) Get(ref string) (Editable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Get(ref)
}

// List returns every entry sorted by reference.
func (s *Store) List() []Editable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Editable, 0, s.index.Len())
	s.index.Scan(func(_ string, e Editable) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index.Clear()
	return s.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
