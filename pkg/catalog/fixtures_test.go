package catalog

import (
	"bytes"
	"io"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagindex/internal/codec"
	"github.com/mesh-intelligence/tagindex/pkg/container"
	"github.com/mesh-intelligence/tagindex/pkg/loader"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

const pkgPath = "github.com/mesh-intelligence/tagindex/pkg/catalog"

type Level int

const (
	Low Level = iota
	High
)

type Icon struct {
	Path string `default:""`
	Size int    `default:"16"`
}

type MenuItem struct {
	_ Indexable `targets:"type,func,var"`

	Title  string
	Weight int          `default:"100"`
	Key    rune         `marker:"key,char" default:"x"`
	Level  Level        `default:"Low"`
	Kind   reflect.Type `default:"github.com/mesh-intelligence/tagindex/pkg/catalog.ExitAction"`
	Icon   Icon         `default:""`
	Tags   []string     `default:""`
	Icons  []Icon       `default:""`
}

type Action interface {
	Run() string
}

type ExitAction struct{}

func (ExitAction) Run() string { return "exit" }

const menuMarker = pkgPath + ".MenuItem"

func newRegistry() *loader.Registry {
	r := loader.NewRegistry()
	loader.Type[ExitAction](r)
	loader.Type[Icon](r)
	loader.Enum(r, map[string]Level{"Low": Low, "High": High})
	return r
}

func partition(t *testing.T, recs ...types.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, codec.WritePartition(&buf, recs))
	return buf.Bytes()
}

func typeRec(decl string, values map[string]types.Value) types.Record {
	return types.Record{DeclaringType: decl, Kind: types.KindType, Values: values}
}

func fsContainer(name string, data []byte) container.Container {
	fsys := fstest.MapFS{}
	if data != nil {
		fsys[codec.PartitionPath(menuMarker)] = &fstest.MapFile{Data: data}
	}
	return container.FS(name, fsys)
}

// countingContainer records Open calls and Close calls on returned streams.
type countingContainer struct {
	container.Container
	opens  int
	closes int
}

func (c *countingContainer) Open(p string) (io.ReadCloser, error) {
	c.opens++
	rc, err := c.Container.Open(p)
	if err != nil {
		return nil, err
	}
	return &closeCounter{ReadCloser: rc, n: &c.closes}, nil
}

type closeCounter struct {
	io.ReadCloser
	n *int
}

func (c *closeCounter) Close() error {
	*c.n++
	return c.ReadCloser.Close()
}

// strictLoader fails the test if anything is resolved.
type strictLoader struct {
	t *testing.T
}

func (l strictLoader) Type(name string) (reflect.Type, error) {
	l.t.Fatalf("unexpected Type(%s)", name)
	return nil, nil
}

func (l strictLoader) Enum(typeName, constName string) (any, error) {
	l.t.Fatalf("unexpected Enum(%s, %s)", typeName, constName)
	return nil, nil
}

func (l strictLoader) Element(rec types.Record) (*loader.Element, error) {
	l.t.Fatalf("unexpected Element(%s)", rec.Identity())
	return nil, nil
}
