package scanner

import (
	"go/token"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// Environment is the build-time view the scanner works on. A frontend such
// as internal/gosrc builds one from source code.
type Environment interface {
	// Markers returns every declared indexable marker type, in a stable order.
	Markers() []MarkerDecl
	// Marker returns the descriptor of any known marker type, indexable or
	// not. Nested composite values are normalized with it.
	Marker(name string) (*types.Marker, bool)
	// Elements returns every element carrying the named marker.
	Elements(marker string) []Element
	// Assignable reports whether a value of valueType can be used where bound
	// is expected. An empty bound accepts everything.
	Assignable(valueType, bound string) bool
}

// MarkerDecl is an indexable marker type and where it was declared.
type MarkerDecl struct {
	Marker *types.Marker
	Pos    token.Position
}

// Element is one use of a marker on a program element, with the facts the
// legality rules need.
type Element struct {
	Kind          types.MemberKind
	Valid         bool // false when the marker sits on something that is not a type, func or var
	DeclaringType string
	Member        string
	Pos           token.Position

	Public              bool
	EnclosingPublic     bool // funcs and vars: the enclosing package or type is public
	Static              bool // types: not capturing an enclosing scope; funcs: no receiver
	Final               bool // vars: immutable
	Abstract            bool // types: interface types cannot be instantiated
	Nested              bool // types: declared inside another declaration
	HasNoArgConstructor bool
	Params              int

	// ValueType is the qualified name of the value the element yields: the
	// type itself, the func result, or the var type.
	ValueType string
	// Values holds the attribute values exactly as written, defaults included.
	Values map[string]types.Value
}

// Record returns the catalog record for the element with the given values.
func (e Element) Record(values map[string]types.Value) types.Record {
	return types.Record{
		DeclaringType: e.DeclaringType,
		Member:        e.Member,
		Kind:          e.Kind,
		Values:        values,
	}
}

// Identity returns the element's merge key.
func (e Element) Identity() string {
	return e.Record(nil).Identity()
}
