package container

import (
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/tagindex/internal/codec"
)

// Detect returns the container for path: a directory container for
// directories, and a zip or SQLite container for files with the matching
// magic bytes.
func Detect(path string) (Container, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return Dir(path), nil
	}
	format, err := SniffFile(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case codec.FormatZip:
		return Zip(path), nil
	case codec.FormatSQLite:
		return SQLite(path), nil
	default:
		return nil, fmt.Errorf("%s: %s file is not a container", path, format)
	}
}

// SniffFile reads the leading bytes of the file at path and classifies them.
func SniffFile(path string) (codec.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return codec.FormatUnknown, err
	}
	defer f.Close()
	buf := make([]byte, codec.SniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return codec.FormatUnknown, fmt.Errorf("reading %s: %w", path, err)
	}
	return codec.Sniff(buf[:n]), nil
}

// Closer is implemented by containers holding an open file or database.
type Closer interface {
	Close() error
}

// CloseAll closes every container that holds resources and returns the
// first error.
func CloseAll(cs []Container) error {
	var first error
	for _, c := range cs {
		if cl, ok := c.(Closer); ok {
			if err := cl.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
