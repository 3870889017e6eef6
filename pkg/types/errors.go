package types

import "errors"

// Value model errors.
var (
	ErrNilValue       = errors.New("nil value")
	ErrNestedSequence = errors.New("sequence must not directly contain a sequence")
	ErrMixedSequence  = errors.New("sequence elements must share one kind")
	ErrShapeMismatch  = errors.New("value does not match accessor shape")
)

// Marker declaration errors.
var (
	ErrInherited        = errors.New("cannot be inherited")
	ErrNoTargets        = errors.New("must declare at least one target kind")
	ErrIllegalTarget    = errors.New("target kind must be type, func or var")
	ErrInvalidDefault   = errors.New("invalid default value")
	ErrNotMarker        = errors.New("not an indexable marker type")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrMissingAttribute = errors.New("missing required attribute")
)
