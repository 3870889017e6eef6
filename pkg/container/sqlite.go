package container

import (
	"io"
	"sync"

	"github.com/mesh-intelligence/tagindex/internal/sqlite"
)

// SQLiteContainer reads partitions from a SQLite catalog store built by
// "tagindex pack". The database is opened on the first Open call.
type SQLiteContainer struct {
	path string

	mu    sync.Mutex
	store *sqlite.Store
	err   error
}

// SQLite returns a container backed by the catalog store at path.
func SQLite(path string) *SQLiteContainer {
	return &SQLiteContainer{path: path}
}

// Name implements Container.
func (c *SQLiteContainer) Name() string { return c.path }

// Open implements Container.
func (c *SQLiteContainer) Open(p string) (io.ReadCloser, error) {
	s, err := c.open()
	if err != nil {
		return nil, err
	}
	return s.Open(p)
}

// Entries lists every resource name held by the store.
func (c *SQLiteContainer) Entries() ([]string, error) {
	s, err := c.open()
	if err != nil {
		return nil, err
	}
	entries, err := s.List("")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

func (c *SQLiteContainer) open() (*sqlite.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil && c.err == nil {
		c.store, c.err = sqlite.Open(c.path)
	}
	return c.store, c.err
}

// Close releases the database. Idempotent.
func (c *SQLiteContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	c.err = nil
	return err
}
