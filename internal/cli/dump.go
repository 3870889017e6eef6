package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagindex/internal/codec"
	"github.com/mesh-intelligence/tagindex/pkg/container"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <partition|archive|store|dir>",
		Short: "Print the records of a partition or of every partition in a container",
		Long: "Print catalog records in their text form. The argument may be a raw\n" +
			"partition file, a zip archive, a SQLite store or a directory; the kind\n" +
			"is detected from the leading bytes.",
		Args: cobra.ExactArgs(1),
		RunE: runDump,
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return userError(err)
	}
	if !info.IsDir() {
		format, err := container.SniffFile(path)
		if err != nil {
			return sysError(err)
		}
		if format == codec.FormatPartition {
			return dumpPartitionFile(cmd.OutOrStdout(), path)
		}
	}

	c, err := container.Detect(path)
	if err != nil {
		return userError(err)
	}
	defer container.CloseAll([]container.Container{c})

	markers, err := container.Markers(c)
	if err != nil {
		return sysError(err)
	}
	out := cmd.OutOrStdout()
	for _, m := range markers {
		recs, err := readPartition(c, m)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(out, "# %s (%d)\n", m, len(recs))
		if err := codec.WriteDump(out, recs); err != nil {
			return sysError(err)
		}
	}
	return nil
}

func dumpPartitionFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return sysError(err)
	}
	defer f.Close()
	recs, err := codec.ReadPartition(f)
	if err != nil {
		return userError(fmt.Errorf("%s: %w", path, err))
	}
	if err := codec.WriteDump(w, recs); err != nil {
		return sysError(err)
	}
	return nil
}

func readPartition(c container.Container, marker string) ([]types.Record, error) {
	rc, err := c.Open(codec.PartitionPath(marker))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, err := codec.ReadPartition(rc)
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w", marker, c.Name(), err)
	}
	return recs, nil
}
