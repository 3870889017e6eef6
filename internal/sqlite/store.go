package sqlite

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrStoreClosed is returned by operations on a closed Store.
var ErrStoreClosed = errors.New("catalog store is closed")

// Entry describes one stored resource.
type Entry struct {
	Name      string
	Revision  string // UUID v7, regenerated on every Put
	Size      int64
	UpdatedAt time.Time
}

// Store is a SQLite-backed resource container. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	path string
	db   *sql.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing store schema: %w", err)
		}
	}
	return &Store{path: path, db: db}, nil
}

// Name returns the database path. Store satisfies container.Container.
func (s *Store) Name() string { return s.path }

// Open returns the resource stored under name. A missing resource yields an
// error wrapping fs.ErrNotExist.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	data, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Get returns the bytes stored under name.
func (s *Store) Get(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM resources WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Put stores data under name, replacing any previous content, and returns the
// new revision id.
func (s *Store) Put(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return "", ErrStoreClosed
	}
	rev := newRevision()
	_, err := s.db.Exec(
		`INSERT INTO resources (name, revision, data, size, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET revision = excluded.revision, data = excluded.data,
		 size = excluded.size, updated_at = excluded.updated_at`,
		name, rev, data, len(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return rev, nil
}

// Delete removes name. Deleting a missing resource is not an error.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrStoreClosed
	}
	if _, err := s.db.Exec(`DELETE FROM resources WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	return nil
}

// List returns every entry whose name starts with prefix, ordered by name.
func (s *Store) List(prefix string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	rows, err := s.db.Query(
		`SELECT name, revision, size, updated_at FROM resources WHERE instr(name, ?) = 1 ORDER BY name`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var updated string
		if err := rows.Scan(&e.Name, &e.Revision, &e.Size, &updated); err != nil {
			return nil, fmt.Errorf("scanning resource row: %w", err)
		}
		e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// newRevision generates a UUID v7 revision id.
func newRevision() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// hasPrefix matches the prefix test List performs in SQL.
func hasPrefix(name, prefix string) bool {
	return strings.HasPrefix(name, prefix)
}
