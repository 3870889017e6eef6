package scanner

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/tagindex/internal/sqlite"
)

// Filer reads and writes partitions in the scanner's output location. Open
// returns an error satisfying errors.Is(err, fs.ErrNotExist) when the
// resource has never been written.
type Filer interface {
	Open(path string) (io.ReadCloser, error)
	WriteFile(path string, data []byte) error
}

type dirFiler struct {
	root string
}

// DirFiler returns a Filer rooted at an output directory. Writes go through
// a temp file that is synced and renamed into place.
func DirFiler(root string) Filer {
	return dirFiler{root: root}
}

func (f dirFiler) Open(path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(f.root, filepath.FromSlash(path)))
}

func (f dirFiler) WriteFile(path string, data []byte) error {
	dst := filepath.Join(f.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return writeAtomic(dst, data)
}

// writeAtomic replaces path with data via temp file, fsync and rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tagindex-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

type storeFiler struct {
	store *sqlite.Store
}

// StoreFiler returns a Filer that keeps partitions in a SQLite catalog store.
func StoreFiler(s *sqlite.Store) Filer {
	return storeFiler{store: s}
}

func (f storeFiler) Open(path string) (io.ReadCloser, error) {
	data, err := f.store.Get(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f storeFiler) WriteFile(path string, data []byte) error {
	_, err := f.store.Put(path, data)
	return err
}
