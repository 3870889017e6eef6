// Command tagindex scans Go packages for marked elements and maintains the
// catalog partitions they are indexed in.
package main

import (
	"os"

	"github.com/mesh-intelligence/tagindex/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
