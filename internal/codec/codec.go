package codec

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// Codec errors.
var (
	ErrCorrupt   = errors.New("corrupt partition")
	ErrTruncated = errors.New("partition ended without sentinel")
	ErrClosed    = errors.New("partition writer is closed")
)

// Writer streams records into a partition. Close writes the sentinel; it
// does not close the underlying writer.
type Writer struct {
	enc    *gob.Encoder
	closed bool
}

// NewWriter returns a Writer that encodes onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: gob.NewEncoder(w)}
}

// Write appends one record.
func (w *Writer) Write(r types.Record) error {
	if w.closed {
		return ErrClosed
	}
	wr, err := toWireRecord(r)
	if err != nil {
		return err
	}
	if err := w.enc.Encode(frame{Record: wr}); err != nil {
		return fmt.Errorf("encoding %s: %w", r.Identity(), err)
	}
	return nil
}

// Close terminates the partition with the sentinel frame. Idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.enc.Encode(frame{End: true}); err != nil {
		return fmt.Errorf("encoding sentinel: %w", err)
	}
	return nil
}

// Reader decodes records from a partition stream.
type Reader struct {
	dec  *gob.Decoder
	done bool
}

// NewReader returns a Reader that decodes from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: gob.NewDecoder(r)}
}

// Next returns the next record. It returns io.EOF once the sentinel has been
// read, ErrTruncated if the stream ends before the sentinel, and an error
// wrapping ErrCorrupt if a frame cannot be decoded.
func (r *Reader) Next() (types.Record, error) {
	if r.done {
		return types.Record{}, io.EOF
	}
	var f frame
	if err := r.dec.Decode(&f); err != nil {
		r.done = true
		if errors.Is(err, io.EOF) {
			return types.Record{}, ErrTruncated
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return types.Record{}, fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		return types.Record{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if f.End {
		r.done = true
		return types.Record{}, io.EOF
	}
	rec, err := fromWireRecord(f.Record)
	if err != nil {
		r.done = true
		return types.Record{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return rec, nil
}

// WritePartition writes records followed by the sentinel.
func WritePartition(w io.Writer, records []types.Record) error {
	pw := NewWriter(w)
	for _, r := range records {
		if err := pw.Write(r); err != nil {
			return err
		}
	}
	return pw.Close()
}

// ReadPartition reads every record up to the sentinel.
func ReadPartition(r io.Reader) ([]types.Record, error) {
	pr := NewReader(r)
	var out []types.Record
	for {
		rec, err := pr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// WriteDump writes one line per record in its string form. The dump is for
// people and tools that grep; readers never consult it.
func WriteDump(w io.Writer, records []types.Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := bw.WriteString(r.String()); err != nil {
			return fmt.Errorf("writing dump line: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing dump line: %w", err)
		}
	}
	return bw.Flush()
}

// Format is the result of sniffing the first bytes of a file.
type Format int

// Sniffed formats.
const (
	FormatUnknown Format = iota
	FormatZip
	FormatSQLite
	FormatPartition
)

// String returns a short name for the format.
func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatSQLite:
		return "sqlite"
	case FormatPartition:
		return "partition"
	default:
		return "unknown"
	}
}

var (
	zipMagic    = []byte{0x50, 0x4b, 0x03, 0x04}
	sqliteMagic = []byte("SQLite format 3\x00")
)

// SniffLen is the number of leading bytes Sniff needs to tell formats apart.
const SniffLen = 16

// Sniff classifies a file by its leading bytes. gob streams carry no magic
// number, so any other non-empty content is assumed to be a partition and
// left for the decoder to reject.
func Sniff(prefix []byte) Format {
	switch {
	case bytes.HasPrefix(prefix, zipMagic):
		return FormatZip
	case bytes.HasPrefix(prefix, sqliteMagic):
		return FormatSQLite
	case len(prefix) > 0:
		return FormatPartition
	default:
		return FormatUnknown
	}
}
