package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesEqual(t *testing.T) {
	nested := Composite{Marker: "x.Icon", Values: map[string]Value{"path": String("a.png")}}
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "equal ints", a: Int(5), b: Int(5), want: true},
		{name: "int vs char with same code", a: Int(65), b: Char('A'), want: false},
		{name: "different strings", a: String("a"), b: String("b"), want: false},
		{name: "type refs", a: TypeRef{Name: "x.T"}, b: TypeRef{Name: "x.T"}, want: true},
		{name: "enum refs differ by constant", a: EnumRef{Type: "x.K", Name: "A"}, b: EnumRef{Type: "x.K", Name: "B"}, want: false},
		{name: "composites", a: nested, b: Composite{Marker: "x.Icon", Values: map[string]Value{"path": String("a.png")}}, want: true},
		{name: "composites with different markers", a: nested, b: Composite{Marker: "x.Other", Values: nested.Values}, want: false},
		{name: "empty sequences", a: Sequence{}, b: Sequence{Elems: []Value{}}, want: true},
		{name: "sequences differ in length", a: Sequence{Elems: []Value{Int(1)}}, b: Sequence{}, want: false},
		{name: "nil vs nil", a: nil, b: nil, want: true},
		{name: "nil vs value", a: nil, b: Bool(false), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuesEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, ValuesEqual(tt.b, tt.a))
		})
	}
}

func TestSequenceValidate(t *testing.T) {
	require.NoError(t, Sequence{Elems: []Value{String("a"), String("b")}}.Validate())
	require.NoError(t, Sequence{}.Validate())

	err := Sequence{Elems: []Value{Sequence{}}}.Validate()
	assert.ErrorIs(t, err, ErrNestedSequence)

	err = Sequence{Elems: []Value{String("a"), Int(1)}}.Validate()
	assert.ErrorIs(t, err, ErrMixedSequence)

	err = Sequence{Elems: []Value{nil}}.Validate()
	assert.ErrorIs(t, err, ErrNilValue)
}

func TestFormatValues(t *testing.T) {
	m := map[string]Value{
		"title": String("Exit"),
		"order": Int(10),
		"tags":  Sequence{Elems: []Value{Char('x'), Char('y')}},
		"icon":  Composite{Marker: "x.Icon", Values: map[string]Value{"size": Int(16)}},
		"kind":  EnumRef{Type: "x.Kind", Name: "Primary"},
	}
	got := FormatValues(m)
	assert.Equal(t, `{icon=@x.Icon{size=16}, kind=Primary, order=10, tags=['x', 'y'], title="Exit"}`, got)
	assert.Equal(t, "{}", FormatValues(nil))
}
