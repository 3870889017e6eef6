package types

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Shape is the declared type of a marker accessor, minus sequence-ness.
type Shape int

// Accessor shapes.
const (
	ShapeBool Shape = iota + 1
	ShapeInt
	ShapeChar
	ShapeString
	ShapeType
	ShapeEnum
	ShapeComposite
)

// String returns the lower-case name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeBool:
		return "bool"
	case ShapeInt:
		return "int"
	case ShapeChar:
		return "char"
	case ShapeString:
		return "string"
	case ShapeType:
		return "type"
	case ShapeEnum:
		return "enum"
	case ShapeComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// valueKind maps a shape to the Value kind that carries it.
func (s Shape) valueKind() ValueKind {
	switch s {
	case ShapeBool:
		return KindBool
	case ShapeInt:
		return KindInt
	case ShapeChar:
		return KindChar
	case ShapeString:
		return KindString
	case ShapeType:
		return KindTypeRef
	case ShapeEnum:
		return KindEnumRef
	case ShapeComposite:
		return KindComposite
	default:
		return 0
	}
}

// Accessor describes one attribute of a marker type.
type Accessor struct {
	Name     string // attribute name as stored in records
	Field    string // Go struct field name
	Shape    Shape
	Type     string // enum or composite type name for ShapeEnum and ShapeComposite
	Sequence bool   // true for slice-typed accessors
	Default  Value  // nil when the attribute is required
}

// Required reports whether every use of the marker must set the attribute.
func (a Accessor) Required() bool {
	return a.Default == nil
}

// Marker describes a marker type: where it may be applied and which
// attributes it carries.
type Marker struct {
	Name      string       // fully qualified marker type name
	Targets   []MemberKind // element kinds the marker may be applied to
	Inherited bool         // always rejected; kept so the scanner can report it
	Bound     string       // type every instance must be assignable to; empty means any
	Accessors []Accessor
}

// Validate checks the marker declaration itself.
func (m *Marker) Validate() error {
	if m.Inherited {
		return ErrInherited
	}
	if len(m.Targets) == 0 {
		return ErrNoTargets
	}
	for _, t := range m.Targets {
		switch t {
		case KindType, KindMethod, KindField:
		default:
			return fmt.Errorf("%s: %w", t, ErrIllegalTarget)
		}
	}
	return nil
}

// Permits reports whether the marker may be applied to elements of kind k.
func (m *Marker) Permits(k MemberKind) bool {
	for _, t := range m.Targets {
		if t == k {
			return true
		}
	}
	return false
}

// Accessor returns the accessor with the given attribute name.
func (m *Marker) Accessor(name string) (Accessor, bool) {
	for _, a := range m.Accessors {
		if a.Name == name {
			return a, true
		}
	}
	return Accessor{}, false
}

// ParseTargets parses a comma-separated target list such as "type,func,var".
func ParseTargets(s string) ([]MemberKind, error) {
	var out []MemberKind
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := ParseMemberKind(part)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// ParseDefault converts the text of a default tag into a Value of the
// accessor's shape. Sequence defaults are comma separated; an empty text
// yields an empty sequence. Composite defaults may only be empty, meaning
// "the nested marker with all of its own defaults".
func ParseDefault(acc Accessor, text string) (Value, error) {
	if acc.Sequence {
		seq := Sequence{Elems: []Value{}}
		if strings.TrimSpace(text) == "" {
			return seq, nil
		}
		for _, part := range strings.Split(text, ",") {
			v, err := parseScalar(acc, strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			seq.Elems = append(seq.Elems, v)
		}
		return seq, nil
	}
	return parseScalar(acc, text)
}

func parseScalar(acc Accessor, text string) (Value, error) {
	switch acc.Shape {
	case ShapeBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("default %q for %s: %w", text, acc.Name, ErrInvalidDefault)
		}
		return Bool(b), nil
	case ShapeInt:
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q for %s: %w", text, acc.Name, ErrInvalidDefault)
		}
		return Int(n), nil
	case ShapeChar:
		if utf8.RuneCountInString(text) != 1 {
			return nil, fmt.Errorf("default %q for %s: %w", text, acc.Name, ErrInvalidDefault)
		}
		r, _ := utf8.DecodeRuneInString(text)
		return Char(r), nil
	case ShapeString:
		return String(text), nil
	case ShapeType:
		if !strings.Contains(text, ".") {
			return nil, fmt.Errorf("default %q for %s is not a qualified type name: %w", text, acc.Name, ErrInvalidDefault)
		}
		return TypeRef{Name: text}, nil
	case ShapeEnum:
		if text == "" {
			return nil, fmt.Errorf("empty default for %s: %w", acc.Name, ErrInvalidDefault)
		}
		return EnumRef{Type: acc.Type, Name: text}, nil
	case ShapeComposite:
		if text != "" {
			return nil, fmt.Errorf("composite default for %s must be empty: %w", acc.Name, ErrInvalidDefault)
		}
		return Composite{Marker: acc.Type, Values: map[string]Value{}}, nil
	default:
		return nil, fmt.Errorf("accessor %s has unknown shape: %w", acc.Name, ErrInvalidDefault)
	}
}

// Conforms checks that v has the shape declared by acc.
func Conforms(acc Accessor, v Value) error {
	if v == nil {
		return fmt.Errorf("%s: %w", acc.Name, ErrNilValue)
	}
	if acc.Sequence {
		seq, ok := v.(Sequence)
		if !ok {
			return fmt.Errorf("%s: got %s, want sequence of %s: %w", acc.Name, v.Kind(), acc.Shape, ErrShapeMismatch)
		}
		if err := seq.Validate(); err != nil {
			return fmt.Errorf("%s: %w", acc.Name, err)
		}
		for _, e := range seq.Elems {
			if err := conformsScalar(acc, e); err != nil {
				return err
			}
		}
		return nil
	}
	return conformsScalar(acc, v)
}

func conformsScalar(acc Accessor, v Value) error {
	if v.Kind() != acc.Shape.valueKind() {
		return fmt.Errorf("%s: got %s, want %s: %w", acc.Name, v.Kind(), acc.Shape, ErrShapeMismatch)
	}
	switch tv := v.(type) {
	case EnumRef:
		if acc.Type != "" && tv.Type != acc.Type {
			return fmt.Errorf("%s: enum %s, want %s: %w", acc.Name, tv.Type, acc.Type, ErrShapeMismatch)
		}
	case Composite:
		if acc.Type != "" && tv.Marker != acc.Type {
			return fmt.Errorf("%s: composite %s, want %s: %w", acc.Name, tv.Marker, acc.Type, ErrShapeMismatch)
		}
	}
	return nil
}

// AccessorName returns the attribute name for a marker struct field and
// whether the field carries the char option. The name comes from the marker
// tag, or is the field name with its first letter lowered.
func AccessorName(fieldName string, tag reflect.StructTag) (string, bool) {
	name, opts, _ := strings.Cut(tag.Get("marker"), ",")
	char := false
	for _, o := range strings.Split(opts, ",") {
		if o == "char" {
			char = true
		}
	}
	if name == "" {
		r, size := utf8.DecodeRuneInString(fieldName)
		name = string(unicode.ToLower(r)) + fieldName[size:]
	}
	return name, char
}
