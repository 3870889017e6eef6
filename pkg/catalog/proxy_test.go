package catalog

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

func menuProxy(t *testing.T, values map[string]types.Value) *Proxy {
	t.Helper()
	m, err := Describe[MenuItem]()
	require.NoError(t, err)
	return NewProxy(m, values, newRegistry())
}

func TestDescribe(t *testing.T) {
	m, err := Describe[MenuItem]()
	require.NoError(t, err)
	again, err := DescribeType(reflect.TypeFor[*MenuItem]())
	require.NoError(t, err)
	assert.Same(t, m, again, "descriptors are cached per type")

	assert.Equal(t, menuMarker, m.Name)
	assert.Equal(t, []types.MemberKind{types.KindType, types.KindMethod, types.KindField}, m.Targets)

	var names []string
	for _, a := range m.Accessors {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"title", "weight", "key", "level", "kind", "icon", "tags", "icons"}, names)

	key, _ := m.Accessor("key")
	assert.Equal(t, types.ShapeChar, key.Shape)
	level, _ := m.Accessor("level")
	assert.Equal(t, types.ShapeEnum, level.Shape)
	assert.Equal(t, pkgPath+".Level", level.Type)
	icons, _ := m.Accessor("icons")
	assert.True(t, icons.Sequence)
	assert.Equal(t, types.ShapeComposite, icons.Shape)

	assert.True(t, IsIndexable(reflect.TypeFor[MenuItem]()))
	assert.False(t, IsIndexable(reflect.TypeFor[Icon]()))
}

type badDefault struct {
	_ Indexable `targets:"type"`
	N int       `default:"abc"`
}

type floaty struct {
	F float64
}

type nestedSlices struct {
	S [][]string
}

func TestDescribe_Errors(t *testing.T) {
	_, err := Describe[badDefault]()
	assert.ErrorIs(t, err, types.ErrInvalidDefault)

	_, err = Describe[floaty]()
	assert.ErrorIs(t, err, types.ErrShapeMismatch)

	_, err = Describe[nestedSlices]()
	assert.ErrorIs(t, err, types.ErrNestedSequence)

	_, err = Describe[string]()
	assert.ErrorIs(t, err, types.ErrNotMarker)
}

func TestProxy_Defaults(t *testing.T) {
	p := menuProxy(t, map[string]types.Value{"title": types.String("Exit")})

	get := func(name string) any {
		v, err := p.Get(name)
		require.NoError(t, err, name)
		return v
	}
	assert.Equal(t, "Exit", get("title"))
	assert.Equal(t, int64(100), get("weight"))
	assert.Equal(t, 'x', get("key"))
	assert.Equal(t, Low, get("level"))
	assert.Equal(t, reflect.TypeFor[ExitAction](), get("kind"))
	assert.Equal(t, []any{}, get("tags"))
	assert.Equal(t, []any{}, get("icons"))

	icon, ok := get("icon").(Annotation)
	require.True(t, ok)
	size, err := icon.Get("size")
	require.NoError(t, err)
	assert.Equal(t, int64(16), size)

	_, err = p.Get("nope")
	assert.ErrorIs(t, err, types.ErrUnknownAttribute)

	_, err = menuProxy(t, nil).Get("title")
	assert.ErrorIs(t, err, types.ErrMissingAttribute)
}

func TestProxy_StoredValues(t *testing.T) {
	p := menuProxy(t, map[string]types.Value{
		"title": types.String("About"),
		"level": types.EnumRef{Type: pkgPath + ".Level", Name: "High"},
		"tags":  types.Sequence{Elems: []types.Value{types.String("a"), types.String("b")}},
		"icons": types.Sequence{Elems: []types.Value{
			types.Composite{Marker: pkgPath + ".Icon", Values: map[string]types.Value{"path": types.String("p")}},
		}},
	})

	level, err := p.Get("level")
	require.NoError(t, err)
	assert.Equal(t, High, level)

	tags, err := p.Get("tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, tags)

	icons, err := p.Get("icons")
	require.NoError(t, err)
	require.Len(t, icons, 1)
	path, err := icons.([]any)[0].(Annotation).Get("path")
	require.NoError(t, err)
	assert.Equal(t, "p", path)

	assert.Equal(t, `@`+menuMarker+`{icons=[@`+pkgPath+`.Icon{path="p"}], level=High, tags=["a", "b"], title="About"}`, p.String())
}

func TestProxy_UnresolvableEnum(t *testing.T) {
	p := menuProxy(t, map[string]types.Value{
		"title": types.String("x"),
		"level": types.EnumRef{Type: pkgPath + ".Level", Name: "Missing"},
	})
	_, err := p.Get("level")
	assert.Error(t, err)

	// Other attributes still resolve
	_, err = p.Get("title")
	assert.NoError(t, err)
}

func TestEqualAndHashParity(t *testing.T) {
	liveValue := MenuItem{
		Title:  "Exit",
		Weight: 10,
		Key:    'x',
		Level:  High,
		Kind:   reflect.TypeFor[ExitAction](),
		Icon:   Icon{Size: 16},
		Tags:   []string{"a", "b"},
		Icons:  []Icon{{Path: "p", Size: 1}},
	}
	l, err := Live(liveValue)
	require.NoError(t, err)

	stored := map[string]types.Value{
		"title":  types.String("Exit"),
		"weight": types.Int(10),
		"level":  types.EnumRef{Type: pkgPath + ".Level", Name: "High"},
		"tags":   types.Sequence{Elems: []types.Value{types.String("a"), types.String("b")}},
		"icons": types.Sequence{Elems: []types.Value{
			types.Composite{Marker: pkgPath + ".Icon", Values: map[string]types.Value{"path": types.String("p"), "size": types.Int(1)}},
		}},
	}
	p := menuProxy(t, stored)

	assert.True(t, Equal(p, l))
	assert.True(t, Equal(l, p))
	assert.True(t, p.Equal(l))
	assert.Equal(t, Hash(l), p.Hash())

	lp, err := Live(&liveValue)
	require.NoError(t, err)
	assert.Equal(t, Hash(l), Hash(lp))

	stored["weight"] = types.Int(11)
	other := menuProxy(t, stored)
	assert.False(t, Equal(other, l))
	assert.False(t, Equal(other, p))
	assert.NotEqual(t, Hash(l), Hash(other))

	icon, err := Live(Icon{Size: 16})
	require.NoError(t, err)
	assert.False(t, Equal(icon, l), "different markers never compare equal")
}

func TestProxy_ValuesAreIsolated(t *testing.T) {
	stored := map[string]types.Value{"title": types.String("Exit"), "weight": types.Int(10)}
	p := menuProxy(t, stored)

	stored["weight"] = types.Int(11)
	got, err := p.Get("weight")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)

	p.Values()["title"] = types.String("Mutated")
	got, err = p.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "Exit", got)
	assert.Equal(t, types.String("Exit"), stored["title"])
}

func TestHashPrimitives(t *testing.T) {
	assert.Equal(t, int32(97), stringHash("a"))
	assert.Equal(t, int32(99162322), stringHash("hello"))
	assert.Equal(t, int32(0), stringHash(""))
	assert.Equal(t, int32(1231), valueHash(true))
	assert.Equal(t, int32(1237), valueHash(false))
	assert.Equal(t, int32(42), valueHash(int64(42)))
	assert.Equal(t, int32(0), valueHash(int64(-1)))
	assert.Equal(t, int32('x'), valueHash('x'))
	assert.Equal(t, int32(1), valueHash([]any{}))
	assert.Equal(t, int32(31+97), valueHash([]any{"a"}))
}

func TestDecode(t *testing.T) {
	p := menuProxy(t, map[string]types.Value{
		"title": types.String("Exit"),
		"level": types.EnumRef{Type: pkgPath + ".Level", Name: "High"},
		"tags":  types.Sequence{Elems: []types.Value{types.String("a")}},
		"icons": types.Sequence{Elems: []types.Value{
			types.Composite{Marker: pkgPath + ".Icon", Values: map[string]types.Value{"size": types.Int(8)}},
		}},
	})

	var m MenuItem
	require.NoError(t, Decode(p, &m))
	assert.Equal(t, "Exit", m.Title)
	assert.Equal(t, 100, m.Weight)
	assert.Equal(t, 'x', m.Key)
	assert.Equal(t, High, m.Level)
	assert.Equal(t, reflect.TypeFor[ExitAction](), m.Kind)
	assert.Equal(t, Icon{Size: 16}, m.Icon)
	assert.Equal(t, []string{"a"}, m.Tags)
	assert.Equal(t, []Icon{{Size: 8}}, m.Icons)

	// Round trip through Live
	l, err := Live(m)
	require.NoError(t, err)
	assert.True(t, Equal(p, l))

	var wrong Icon
	assert.ErrorIs(t, Decode(p, &wrong), types.ErrShapeMismatch)
	assert.Error(t, Decode(p, m))
}
