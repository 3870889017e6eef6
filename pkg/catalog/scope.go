package catalog

import (
	"github.com/mesh-intelligence/tagindex/pkg/container"
	"github.com/mesh-intelligence/tagindex/pkg/loader"
)

// Scope is the ordered set of containers partitions are read from, plus the
// loader that resolves catalog names. Items found through different Scope
// pointers are never equal.
type Scope struct {
	Containers []container.Container
	Loader     loader.Loader
}

// NewScope returns a scope searching containers in the given order.
func NewScope(l loader.Loader, containers ...container.Container) *Scope {
	return &Scope{Containers: containers, Loader: l}
}

// Close releases containers that hold open files or databases.
func (s *Scope) Close() error {
	return container.CloseAll(s.Containers)
}

func (s *Scope) names() []string {
	out := make([]string, len(s.Containers))
	for i, c := range s.Containers {
		out[i] = c.Name()
	}
	return out
}
