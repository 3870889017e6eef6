// Package container provides the resource containers a catalog scope reads
// partitions from: directories, fs.FS trees (including embed.FS), zip
// archives and SQLite catalog stores.
package container

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/mesh-intelligence/tagindex/internal/codec"
)

// Container resolves container-relative paths to byte streams.
type Container interface {
	// Name labels the container in logs and error messages.
	Name() string
	// Open returns the resource at path. A missing resource yields an error
	// satisfying errors.Is(err, fs.ErrNotExist).
	Open(path string) (io.ReadCloser, error)
}

// IsNotExist reports whether err means the resource is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

type fsContainer struct {
	name string
	fsys fs.FS
}

// FS wraps an fs.FS, for example an embed.FS holding catalog partitions
// compiled into the binary.
func FS(name string, fsys fs.FS) Container {
	return &fsContainer{name: name, fsys: fsys}
}

// Dir returns a container rooted at a directory on disk.
func Dir(dir string) Container {
	return &fsContainer{name: dir, fsys: os.DirFS(dir)}
}

func (c *fsContainer) Name() string { return c.name }

func (c *fsContainer) Open(p string) (io.ReadCloser, error) {
	if !fs.ValidPath(p) {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrInvalid}
	}
	f, err := c.fsys.Open(p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Entries lists every file under the container root.
func (c *fsContainer) Entries() ([]string, error) {
	var names []string
	err := fs.WalkDir(c.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, p)
		}
		return nil
	})
	return names, err
}

// Lister is implemented by containers that can enumerate their resources.
type Lister interface {
	Entries() ([]string, error)
}

// Markers returns the sorted names of the markers with a partition in c.
func Markers(c Container) ([]string, error) {
	l, ok := c.(Lister)
	if !ok {
		return nil, fmt.Errorf("%s cannot list its resources", c.Name())
	}
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if m, ok := codec.MarkerFromPath(e); ok {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ZipContainer reads resources from a zip archive. The archive is opened on
// the first Open call and stays open until Close.
type ZipContainer struct {
	path string

	mu  sync.Mutex
	zr  *zip.ReadCloser
	err error
}

// Zip returns a container backed by the zip archive at path.
func Zip(path string) *ZipContainer {
	return &ZipContainer{path: path}
}

// Name implements Container.
func (z *ZipContainer) Name() string { return z.path }

// Open implements Container.
func (z *ZipContainer) Open(p string) (io.ReadCloser, error) {
	zr, err := z.archive()
	if err != nil {
		return nil, err
	}
	f, err := zr.Open(path.Clean(p))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (z *ZipContainer) archive() (*zip.ReadCloser, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.zr == nil && z.err == nil {
		z.zr, z.err = zip.OpenReader(z.path)
		if z.err != nil {
			z.err = fmt.Errorf("opening archive %s: %w", z.path, z.err)
		}
	}
	return z.zr, z.err
}

// Entries lists every file name in the archive.
func (z *ZipContainer) Entries() ([]string, error) {
	zr, err := z.archive()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// Close releases the archive. Idempotent.
func (z *ZipContainer) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.zr == nil {
		return nil
	}
	err := z.zr.Close()
	z.zr = nil
	z.err = nil
	return err
}
