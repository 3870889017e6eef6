package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagindex/pkg/sqlite"
)

func newPackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pack <store.db>",
		Short: "Copy the output directory's partitions into a SQLite catalog store",
		Args:  cobra.ExactArgs(1),
		RunE:  runPack,
	}
}

func runPack(cmd *cobra.Command, args []string) error {
	cfg, err := settings()
	if err != nil {
		return userError(err)
	}
	entries, err := sqlite.Pack(args[0], cfg.OutputDir)
	if err != nil {
		return sysError(err)
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%d bytes\trev %s\n", e.Name, e.Size, e.Revision)
	}
	fmt.Fprintf(out, "%d resource(s) packed into %s\n", len(entries), args[0])
	return nil
}
