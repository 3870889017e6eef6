package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

// Value kinds. The set is closed; every switch over a Value handles all of them.
const (
	KindBool ValueKind = iota + 1
	KindInt
	KindChar
	KindString
	KindTypeRef
	KindEnumRef
	KindComposite
	KindSequence
)

// String returns the lower-case name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindTypeRef:
		return "type"
	case KindEnumRef:
		return "enum"
	case KindComposite:
		return "composite"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Value is a stored attribute value. Implementations are Bool, Int, Char,
// String, TypeRef, EnumRef, Composite and Sequence; no other type can satisfy
// the interface.
type Value interface {
	Kind() ValueKind
	isValue()
}

// Bool is a boolean primitive.
type Bool bool

// Int is an integer primitive.
type Int int64

// Char is a single character primitive.
type Char rune

// String is a string primitive.
type String string

// TypeRef names a type by its fully qualified name (import path + "." + name).
type TypeRef struct {
	Name string
}

// EnumRef names one constant of an enum type.
type EnumRef struct {
	Type string // fully qualified enum type name
	Name string // constant name
}

// Composite is a nested marker value.
type Composite struct {
	Marker string
	Values map[string]Value
}

// Sequence is a homogeneous, flattened list of values.
type Sequence struct {
	Elems []Value
}

func (Bool) Kind() ValueKind      { return KindBool }
func (Int) Kind() ValueKind       { return KindInt }
func (Char) Kind() ValueKind      { return KindChar }
func (String) Kind() ValueKind    { return KindString }
func (TypeRef) Kind() ValueKind   { return KindTypeRef }
func (EnumRef) Kind() ValueKind   { return KindEnumRef }
func (Composite) Kind() ValueKind { return KindComposite }
func (Sequence) Kind() ValueKind  { return KindSequence }

func (Bool) isValue()      {}
func (Int) isValue()       {}
func (Char) isValue()      {}
func (String) isValue()    {}
func (TypeRef) isValue()   {}
func (EnumRef) isValue()   {}
func (Composite) isValue() {}
func (Sequence) isValue()  {}

// Validate checks the sequence invariants: no directly nested sequence and a
// single element kind throughout.
func (s Sequence) Validate() error {
	var first ValueKind
	for i, e := range s.Elems {
		if e == nil {
			return fmt.Errorf("element %d: %w", i, ErrNilValue)
		}
		if e.Kind() == KindSequence {
			return ErrNestedSequence
		}
		if i == 0 {
			first = e.Kind()
			continue
		}
		if e.Kind() != first {
			return fmt.Errorf("element %d is %s, want %s: %w", i, e.Kind(), first, ErrMixedSequence)
		}
	}
	return nil
}

// ValuesEqual reports whether two values are structurally equal.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Bool, Int, Char, String, TypeRef, EnumRef:
		return a == b
	case Composite:
		bv := b.(Composite)
		return av.Marker == bv.Marker && MapsEqual(av.Values, bv.Values)
	case Sequence:
		bv := b.(Sequence)
		if len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !ValuesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MapsEqual reports whether two attribute maps hold equal values under the
// same keys. A nil map equals an empty one.
func MapsEqual(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !ValuesEqual(av, bv) {
			return false
		}
	}
	return true
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatValue renders v for humans. The output has no stability guarantee.
func FormatValue(v Value) string {
	switch tv := v.(type) {
	case nil:
		return "<nil>"
	case Bool:
		return strconv.FormatBool(bool(tv))
	case Int:
		return strconv.FormatInt(int64(tv), 10)
	case Char:
		return strconv.QuoteRune(rune(tv))
	case String:
		return strconv.Quote(string(tv))
	case TypeRef:
		return tv.Name
	case EnumRef:
		return tv.Name
	case Composite:
		return "@" + tv.Marker + FormatValues(tv.Values)
	case Sequence:
		parts := make([]string, len(tv.Elems))
		for i, e := range tv.Elems {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatValues renders an attribute map as {k1=v1, k2=v2} in key order.
func FormatValues(m map[string]Value) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range SortedKeys(m) {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(FormatValue(m[k]))
	}
	b.WriteByte('}')
	return b.String()
}
