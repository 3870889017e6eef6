package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

func sampleRecords() []types.Record {
	return []types.Record{
		{
			DeclaringType: "example.com/impl.PrintAction",
			Kind:          types.KindType,
			Values: map[string]types.Value{
				"menu":  types.String("File"),
				"item":  types.String("Print"),
				"order": types.Int(-7),
				"key":   types.Char('p'),
				"on":    types.Bool(true),
				"impl":  types.TypeRef{Name: "example.com/impl.Printer"},
				"kind":  types.EnumRef{Type: "example.com/api.Kind", Name: "KindPrimary"},
				"icon": types.Composite{Marker: "example.com/api.Icon", Values: map[string]types.Value{
					"path":  types.String("print.png"),
					"sizes": types.Sequence{Elems: []types.Value{types.Int(16), types.Int(32)}},
				}},
				"tags":  types.Sequence{Elems: []types.Value{types.String("a"), types.String("b")}},
				"empty": types.Sequence{Elems: []types.Value{}},
				"icons": types.Sequence{Elems: []types.Value{
					types.Composite{Marker: "example.com/api.Icon", Values: map[string]types.Value{}},
				}},
			},
		},
		{DeclaringType: "example.com/impl", Member: "NewExit", Kind: types.KindMethod},
		{DeclaringType: "example.com/impl", Member: "Default", Kind: types.KindField, Values: map[string]types.Value{}},
	}
}

func TestPartitionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	records := sampleRecords()
	require.NoError(t, WritePartition(&buf, records))

	got, err := ReadPartition(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		assert.True(t, records[i].Equal(got[i]), "record %d: want %s, got %s", i, records[i], got[i])
		assert.Equal(t, records[i].Identity(), got[i].Identity())
	}
}

func TestEmptyPartition(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePartition(&buf, nil))
	assert.NotZero(t, buf.Len(), "sentinel must be written")

	got, err := ReadPartition(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReaderStopsAtSentinel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePartition(&buf, sampleRecords()[:1]))

	r := NewReader(&buf)
	_, err := r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF, "reader stays at end")
}

func TestReaderTruncated(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(sampleRecords()[1]))
	// No Close: the sentinel is missing.

	r := NewReader(&buf)
	_, err := r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReaderTruncatedMidFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePartition(&buf, sampleRecords()))
	cut := buf.Bytes()[:buf.Len()/2]

	_, err := ReadPartition(bytes.NewReader(cut))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncated) || errors.Is(err, ErrCorrupt), "got %v", err)
}

func TestReaderCorrupt(t *testing.T) {
	_, err := ReadPartition(strings.NewReader("definitely not a gob stream"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt) || errors.Is(err, ErrTruncated), "got %v", err)
}

func TestWriterRejectsInvalidValues(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	err := w.Write(types.Record{
		DeclaringType: "x.C",
		Kind:          types.KindType,
		Values: map[string]types.Value{
			"nested": types.Sequence{Elems: []types.Value{types.Sequence{}}},
		},
	})
	assert.ErrorIs(t, err, types.ErrNestedSequence)
}

func TestWriterClosed(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Write(sampleRecords()[1]), ErrClosed)
}

func TestWriteDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDump(&buf, []types.Record{
		{DeclaringType: "y.C", Member: "m", Kind: types.KindMethod, Values: map[string]types.Value{"x": types.Int(17)}},
		{DeclaringType: "y.C1", Kind: types.KindType},
	}))
	assert.Equal(t, "y.C#m(){x=17}\ny.C1{}\n", buf.String())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "META-INF/tagindex/example.com/api.MenuItem", PartitionPath("example.com/api.MenuItem"))
	assert.Equal(t, "META-INF/tagindex/example.com/api.MenuItem.txt", DumpPath("example.com/api.MenuItem"))

	name, ok := MarkerFromPath("META-INF/tagindex/example.com/api.MenuItem")
	assert.True(t, ok)
	assert.Equal(t, "example.com/api.MenuItem", name)

	_, ok = MarkerFromPath("META-INF/tagindex/example.com/api.MenuItem.txt")
	assert.False(t, ok)
	_, ok = MarkerFromPath("other/file")
	assert.False(t, ok)
}

func TestSniff(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePartition(&buf, nil))

	assert.Equal(t, FormatZip, Sniff([]byte("PK\x03\x04rest")))
	assert.Equal(t, FormatSQLite, Sniff([]byte("SQLite format 3\x00")))
	assert.Equal(t, FormatPartition, Sniff(buf.Bytes()))
	assert.Equal(t, FormatUnknown, Sniff(nil))
}
