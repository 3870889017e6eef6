package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the tagindex release.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/tagindex"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tagindex version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "tagindex v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
