package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagindex/pkg/container"
	"github.com/mesh-intelligence/tagindex/pkg/loader"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

var defaultAction Action = ExitAction{}

func firstItem[I any](t *testing.T, scope *Scope) *Item[MenuItem, I] {
	t.Helper()
	x, err := Load[MenuItem, I](scope)
	require.NoError(t, err)
	item, err := x.Iterator().Next()
	require.NoError(t, err)
	return item
}

func titled(rec types.Record) types.Record {
	rec.Values = map[string]types.Value{"title": types.String("t")}
	return rec
}

func TestItem_InstanceKinds(t *testing.T) {
	r := newRegistry()
	loader.Func(r, pkgPath, "NewExit", func() Action { return ExitAction{} })
	loader.Var(r, pkgPath, "DefaultAction", &defaultAction)

	tests := []struct {
		name string
		rec  types.Record
	}{
		{"type", types.Record{DeclaringType: pkgPath + ".ExitAction", Kind: types.KindType}},
		{"func", types.Record{DeclaringType: pkgPath, Member: "NewExit", Kind: types.KindMethod}},
		{"var", types.Record{DeclaringType: pkgPath, Member: "DefaultAction", Kind: types.KindField}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := firstItem[Action](t, NewScope(r, fsContainer("c", partition(t, titled(tt.rec)))))

			el, err := item.Element()
			require.NoError(t, err)
			assert.Equal(t, tt.rec.Kind, el.Kind)
			again, err := item.Element()
			require.NoError(t, err)
			assert.Same(t, el, again)

			inst, err := item.Instance()
			require.NoError(t, err)
			assert.Equal(t, "exit", inst.Run())
		})
	}
}

func TestItem_InstanceMemoized(t *testing.T) {
	calls := 0
	r := newRegistry()
	loader.Func(r, pkgPath, "NewExit", func() Action {
		calls++
		return ExitAction{}
	})
	rec := titled(types.Record{DeclaringType: pkgPath, Member: "NewExit", Kind: types.KindMethod})
	item := firstItem[Action](t, NewScope(r, fsContainer("c", partition(t, rec))))

	for range 3 {
		_, err := item.Instance()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}

func TestItem_InstanceDereferencesTypes(t *testing.T) {
	rec := titled(types.Record{DeclaringType: pkgPath + ".ExitAction", Kind: types.KindType})
	item := firstItem[ExitAction](t, NewScope(newRegistry(), fsContainer("c", partition(t, rec))))

	inst, err := item.Instance()
	require.NoError(t, err)
	assert.Equal(t, ExitAction{}, inst)
}

func TestItem_StaleCatalog(t *testing.T) {
	rec := titled(types.Record{DeclaringType: pkgPath + ".Gone", Kind: types.KindType})
	item := firstItem[Action](t, NewScope(newRegistry(), fsContainer("plugin.zip", partition(t, rec))))

	_, err := item.Instance()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolution)
	assert.ErrorIs(t, err, loader.ErrNotRegistered)
	assert.Contains(t, err.Error(), "plugin.zip might need to be rebuilt")

	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.True(t, re.Stale)
	assert.Equal(t, pkgPath+".Gone", re.Identity)
}

func TestItem_IncompatibleInstance(t *testing.T) {
	rec := titled(types.Record{DeclaringType: pkgPath + ".ExitAction", Kind: types.KindType})
	item := firstItem[fmt.Stringer](t, NewScope(newRegistry(), fsContainer("c", partition(t, rec))))

	_, err := item.Instance()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolution)
	assert.Contains(t, err.Error(), "is not a fmt.Stringer")
	assert.NotContains(t, err.Error(), "rebuilt")
}

func TestItem_Annotation(t *testing.T) {
	rec := types.Record{DeclaringType: "y.C", Kind: types.KindType, Values: map[string]types.Value{
		"title":  types.String("Exit"),
		"weight": types.Int(5),
	}}
	item := firstItem[Action](t, NewScope(newRegistry(), fsContainer("c", partition(t, rec))))

	m, err := item.Annotation()
	require.NoError(t, err)
	assert.Equal(t, "Exit", m.Title)
	assert.Equal(t, 5, m.Weight)
	assert.Equal(t, Low, m.Level)
}

func TestItem_EqualAndKey(t *testing.T) {
	data := partition(t, titled(types.Record{DeclaringType: "y.C", Kind: types.KindType}))
	scope := NewScope(nil, fsContainer("a", data))

	a := firstItem[Action](t, scope)
	b := firstItem[Action](t, scope)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())

	other := firstItem[Action](t, NewScope(nil, fsContainer("a", data)))
	assert.False(t, a.Equal(other))
	assert.NotEqual(t, a.Key(), other.Key())
	assert.False(t, a.Equal(nil))

	set := map[string]*Item[MenuItem, Action]{a.Key(): a}
	_, ok := set[b.Key()]
	assert.True(t, ok)

	assert.Equal(t, "@"+menuMarker+`:y.C{title="t"}`, a.String())
}

var _ container.Container = fsContainer("x", nil)
