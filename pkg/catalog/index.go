package catalog

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"reflect"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tagindex/internal/codec"
	"github.com/mesh-intelligence/tagindex/pkg/container"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// DefaultLoopThreshold is the number of advance steps after which an
// iterator logs a one-time warning about a possibly endless scope.
const DefaultLoopThreshold = 9999

type options struct {
	logger    *zap.Logger
	threshold int
}

// Option configures Load and LoadMarker.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLoopThreshold overrides DefaultLoopThreshold.
func WithLoopThreshold(n int) Option {
	return func(o *options) { o.threshold = n }
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), threshold: DefaultLoopThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Index enumerates the catalog entries of one marker in a scope.
type Index[A any, I any] struct {
	marker *types.Marker
	scope  *Scope
	opts   options
}

// Load returns the index of marker type A, whose instances are expected to
// be of type I. It describes A but performs no container I/O.
func Load[A any, I any](scope *Scope, opts ...Option) (*Index[A, I], error) {
	t := reflect.TypeFor[A]()
	if !IsIndexable(t) {
		return nil, fmt.Errorf("%s: %w", t, types.ErrNotMarker)
	}
	m, err := DescribeType(t)
	if err != nil {
		return nil, err
	}
	return &Index[A, I]{marker: m, scope: scope, opts: newOptions(opts)}, nil
}

// LoadMarker returns an untyped index for a marker known only by its
// descriptor, as read by tools that never link the marker type.
func LoadMarker(scope *Scope, m *types.Marker, opts ...Option) *Index[*Proxy, any] {
	return &Index[*Proxy, any]{marker: m, scope: scope, opts: newOptions(opts)}
}

// Marker returns the indexed marker's descriptor.
func (x *Index[A, I]) Marker() *types.Marker { return x.marker }

// Iterator returns a fresh iterator. Each iterator keeps its own set of
// seen identities.
func (x *Index[A, I]) Iterator() *Iterator[A, I] {
	return &Iterator[A, I]{index: x, seen: make(map[string]bool)}
}

// All returns a range-over-func sequence of items. Breaking out of the loop
// closes the open partition. An error is yielded once and ends the sequence.
func (x *Index[A, I]) All() iter.Seq2[*Item[A, I], error] {
	return func(yield func(*Item[A, I], error) bool) {
		it := x.Iterator()
		defer it.Close()
		for {
			ok, err := it.HasNext()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			item, err := it.Next()
			if !yield(item, err) {
				return
			}
		}
	}
}

// Iterator walks the scope one container at a time. It is not safe for
// concurrent use.
type Iterator[A any, I any] struct {
	index *Index[A, I]

	pos     int // next container to try
	current container.Container
	stream  io.ReadCloser
	reader  *codec.Reader

	seen    map[string]bool
	next    *Item[A, I]
	started bool
	done    bool
	steps   int
	warned  bool
}

// HasNext reports whether another item is available, reading partitions as
// needed. Once it has returned false or an error it keeps returning false.
func (it *Iterator[A, I]) HasNext() (bool, error) {
	if it.next != nil {
		return true, nil
	}
	if it.done {
		return false, nil
	}
	item, err := it.advance()
	if err != nil {
		it.finish()
		return false, err
	}
	if item == nil {
		it.finish()
		return false, nil
	}
	it.next = item
	return true, nil
}

// Next returns the next item, or ErrExhausted past the end.
func (it *Iterator[A, I]) Next() (*Item[A, I], error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrExhausted
	}
	item := it.next
	it.next = nil
	return item, nil
}

// Close releases the open partition stream and ends iteration.
func (it *Iterator[A, I]) Close() error {
	err := it.closeStream()
	it.done = true
	it.next = nil
	return err
}

func (it *Iterator[A, I]) advance() (*Item[A, I], error) {
	x := it.index
	log := x.opts.logger
	marker := x.marker.Name
	if !it.started {
		it.started = true
		log.Debug("searching for catalog partitions",
			zap.String("marker", marker),
			zap.Strings("containers", x.scope.names()))
	}
	path := codec.PartitionPath(marker)
	for {
		it.steps++
		if it.steps > x.opts.threshold && !it.warned {
			it.warned = true
			log.Warn("possible endless loop reading catalog index",
				zap.String("marker", marker),
				zap.Int("steps", it.steps))
		}

		if it.reader == nil {
			if it.pos >= len(x.scope.Containers) {
				return nil, nil
			}
			c := x.scope.Containers[it.pos]
			it.pos++
			rc, err := c.Open(path)
			if container.IsNotExist(err) {
				continue
			}
			if err != nil {
				return nil, &IndexError{Marker: marker, Container: c.Name(), Err: err}
			}
			log.Debug("loading catalog partition", zap.String("container", c.Name()), zap.String("path", path))
			it.current, it.stream, it.reader = c, rc, codec.NewReader(rc)
			continue
		}

		rec, err := it.reader.Next()
		if errors.Is(err, io.EOF) {
			if err := it.closeStream(); err != nil {
				return nil, &IndexError{Marker: marker, Container: it.current.Name(), Err: err}
			}
			continue
		}
		if err != nil {
			name := it.current.Name()
			it.closeStream()
			return nil, &IndexError{Marker: marker, Container: name, Err: err}
		}
		id := rec.Identity()
		if it.seen[id] {
			log.Debug("skipping duplicate catalog entry", zap.String("identity", id), zap.String("container", it.current.Name()))
			continue
		}
		it.seen[id] = true
		return &Item[A, I]{
			rec:       rec,
			marker:    x.marker,
			container: it.current,
			scope:     x.scope,
			logger:    log,
		}, nil
	}
}

func (it *Iterator[A, I]) closeStream() error {
	if it.stream == nil {
		return nil
	}
	err := it.stream.Close()
	it.stream, it.reader = nil, nil
	return err
}

func (it *Iterator[A, I]) finish() {
	it.closeStream()
	it.done = true
}
