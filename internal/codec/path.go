// Package codec reads and writes catalog partitions: one gob stream of
// records per marker type, terminated by a sentinel frame, plus an
// informational text dump.
package codec

import "strings"

// PartitionPrefix is the directory every partition lives under, relative to
// the root of a container.
const PartitionPrefix = "META-INF/tagindex/"

// DumpExt is appended to a partition path to name its text dump.
const DumpExt = ".txt"

// PartitionPath returns the container-relative path of the partition for the
// given fully qualified marker name.
func PartitionPath(marker string) string {
	return PartitionPrefix + marker
}

// DumpPath returns the path of the human-readable dump for a marker.
func DumpPath(marker string) string {
	return PartitionPath(marker) + DumpExt
}

// MarkerFromPath returns the marker name encoded in a partition path. It
// reports false for paths outside the prefix and for text dumps.
func MarkerFromPath(path string) (string, bool) {
	if !strings.HasPrefix(path, PartitionPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(path, PartitionPrefix)
	if name == "" || strings.HasSuffix(name, DumpExt) {
		return "", false
	}
	return name, true
}
