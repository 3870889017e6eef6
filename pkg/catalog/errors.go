package catalog

import (
	"errors"
	"fmt"
)

// Catalog errors.
var (
	ErrIndex      = errors.New("catalog index error")
	ErrResolution = errors.New("catalog resolution error")
	ErrExhausted  = errors.New("catalog iterator exhausted")
)

// IndexError reports a failure while advancing an iterator: a container
// could not be read or its partition could not be decoded.
type IndexError struct {
	Marker    string
	Container string
	Err       error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("reading %s index from %s: %v", e.Marker, e.Container, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIndex) match.
func (e *IndexError) Is(target error) bool { return target == ErrIndex }

// ResolutionError reports a failure to resolve or instantiate a catalog
// element. Stale is set when the element could not be found, which usually
// means the catalog was built from different code than is running.
type ResolutionError struct {
	Identity  string
	Container string
	Stale     bool
	Err       error
}

func (e *ResolutionError) Error() string {
	if e.Stale {
		return fmt.Sprintf("resolving %s: %s might need to be rebuilt: %v", e.Identity, e.Container, e.Err)
	}
	return fmt.Sprintf("resolving %s from %s: %v", e.Identity, e.Container, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrResolution) match.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }
