package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagindex/internal/codec"
)

func TestPackAndList(t *testing.T) {
	out := t.TempDir()
	part := filepath.Join(out, filepath.FromSlash(codec.PartitionPath("x.M")))
	require.NoError(t, os.MkdirAll(filepath.Dir(part), 0o755))
	require.NoError(t, os.WriteFile(part, []byte("partition"), 0o644))
	require.NoError(t, os.WriteFile(part+codec.DumpExt, []byte("dump"), 0o644))

	db := filepath.Join(t.TempDir(), "catalog.db")
	written, err := Pack(db, out)
	require.NoError(t, err)
	assert.Len(t, written, 2)

	entries, err := List(db)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, codec.PartitionPath("x.M"), entries[0].Name)
	assert.Equal(t, codec.DumpPath("x.M"), entries[1].Name)
}
