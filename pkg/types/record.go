package types

import (
	"fmt"
	"strings"
)

// MemberKind is the kind of a marked element.
type MemberKind int

// Member kinds. A marker may be permitted on any subset of these.
const (
	KindType MemberKind = iota + 1
	KindMethod
	KindField
)

// String returns "type", "method" or "field".
func (k MemberKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindMethod:
		return "method"
	case KindField:
		return "field"
	default:
		return fmt.Sprintf("MemberKind(%d)", int(k))
	}
}

// ParseMemberKind accepts the String forms plus the Go spellings "func" and
// "var".
func ParseMemberKind(s string) (MemberKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "type":
		return KindType, nil
	case "method", "func":
		return KindMethod, nil
	case "field", "var":
		return KindField, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrIllegalTarget)
	}
}

// Record is one catalog entry: the identity of a marked element plus the
// attribute values that differ from the marker's defaults.
type Record struct {
	DeclaringType string           // import path, or import path + "." + type name
	Member        string           // func or var name; empty for KindType
	Kind          MemberKind       // kind of the marked element
	Values        map[string]Value // non-default attribute values
}

// Identity returns the merge and dedup key. Values do not take part in it.
func (r Record) Identity() string {
	switch {
	case r.Kind == KindMethod:
		return r.DeclaringType + "#" + r.Member + "()"
	case r.Member != "":
		return r.DeclaringType + "#" + r.Member
	default:
		return r.DeclaringType
	}
}

// Equal reports whether both records have the same identity and values.
func (r Record) Equal(o Record) bool {
	return r.DeclaringType == o.DeclaringType &&
		r.Member == o.Member &&
		r.Kind == o.Kind &&
		MapsEqual(r.Values, o.Values)
}

// String renders the record as identity{values}. Used by the text dump.
func (r Record) String() string {
	return r.Identity() + FormatValues(r.Values)
}
