// Package sqlite provides the public API for SQLite catalog stores. A store
// holds catalog partitions as rows and can be added to a catalog scope as a
// container.
//
// Example:
//
//	entries, err := sqlite.Pack("catalog.db", "tagindex-out")
//	...
//	scope := catalog.NewScope(reg, container.SQLite("catalog.db"))
package sqlite

import (
	"github.com/mesh-intelligence/tagindex/internal/codec"
	"github.com/mesh-intelligence/tagindex/internal/sqlite"
)

// Entry describes one stored partition or dump.
type Entry = sqlite.Entry

// Pack imports every partition and dump under the scanner output directory
// dir into the store at dbPath, creating the store if needed. It returns the
// entries written.
func Pack(dbPath, dir string) ([]Entry, error) {
	s, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return sqlite.PackDir(s, dir, codec.PartitionPrefix)
}

// List returns the entries held by the store at dbPath.
func List(dbPath string) ([]Entry, error) {
	s, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.List("")
}
