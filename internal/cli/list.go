package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagindex/pkg/catalog"
	"github.com/mesh-intelligence/tagindex/pkg/container"
	"github.com/mesh-intelligence/tagindex/pkg/loader"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <marker> [containers...]",
		Short: "List the items indexed under a marker across a scope",
		Long: "Read the marker's partitions from each container in order, skipping\n" +
			"entries already seen in an earlier container. Without container\n" +
			"arguments the scope is the configured containers, or the output directory.",
		Args: cobra.MinimumNArgs(1),
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := settings()
	if err != nil {
		return userError(err)
	}
	locations := args[1:]
	if len(locations) == 0 {
		locations = cfg.Containers
	}
	if len(locations) == 0 {
		locations = []string{cfg.OutputDir}
	}

	cs := make([]container.Container, 0, len(locations))
	for _, loc := range locations {
		c, err := container.Detect(loc)
		if err != nil {
			_ = container.CloseAll(cs)
			return userError(err)
		}
		cs = append(cs, c)
	}
	scope := catalog.NewScope(loader.NewRegistry(), cs...)
	defer scope.Close()

	idx := catalog.LoadMarker(scope, &types.Marker{Name: args[0]}, catalog.WithLogger(logger))
	out := cmd.OutOrStdout()
	n := 0
	for item, err := range idx.All() {
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(out, "%s\t%s\n", item, item.Container().Name())
		n++
	}
	if n == 0 {
		fmt.Fprintf(out, "no items indexed under %s\n", args[0])
	}
	return nil
}
