package sqlite

import (
	"fmt"
	"io/fs"
	"os"
	"path"
)

// PackDir copies every resource below prefix in dir into the store, keyed by
// its slash-separated path relative to dir. It returns the stored entries in
// walk order.
func PackDir(s *Store, dir, prefix string) ([]Entry, error) {
	fsys := os.DirFS(dir)
	root := path.Clean(prefix)
	if _, err := fs.Stat(fsys, root); err != nil {
		return nil, fmt.Errorf("packing %s: %w", dir, err)
	}

	var out []Entry
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasPrefix(p, prefix) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		rev, err := s.Put(p, data)
		if err != nil {
			return err
		}
		out = append(out, Entry{Name: p, Revision: rev, Size: int64(len(data))})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
