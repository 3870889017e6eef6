package catalog

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/mesh-intelligence/tagindex/pkg/loader"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

var (
	descriptors sync.Map // reflect.Type to *types.Marker
	markerTypes sync.Map // qualified name to reflect.Type

	indexableType = reflect.TypeFor[Indexable]()
	reflectType   = reflect.TypeFor[reflect.Type]()
)

// Describe returns the marker descriptor of struct type A.
func Describe[A any]() (*types.Marker, error) {
	return DescribeType(reflect.TypeFor[A]())
}

// DescribeType returns the marker descriptor of a struct type, or of the
// struct a pointer type points to. Descriptors are built once per type.
func DescribeType(t reflect.Type) (*types.Marker, error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t.Name() == "" {
		return nil, fmt.Errorf("%v: %w", t, types.ErrNotMarker)
	}
	if m, ok := descriptors.Load(t); ok {
		return m.(*types.Marker), nil
	}
	m, err := buildMarker(t)
	if err != nil {
		return nil, err
	}
	actual, _ := descriptors.LoadOrStore(t, m)
	markerTypes.LoadOrStore(m.Name, t)
	return actual.(*types.Marker), nil
}

// IsIndexable reports whether t is a struct type carrying the Indexable
// meta-marker.
func IsIndexable(t reflect.Type) bool {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return false
	}
	_, ok := indexableField(t)
	return ok
}

func indexableField(t reflect.Type) (reflect.StructField, bool) {
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Name == "_" && f.Type == indexableType {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func buildMarker(t reflect.Type) (*types.Marker, error) {
	m := &types.Marker{Name: loader.QualifiedName(t)}
	if f, ok := indexableField(t); ok {
		targets, err := types.ParseTargets(f.Tag.Get("targets"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		m.Targets = targets
		m.Bound = f.Tag.Get("bound")
		m.Inherited, _ = strconv.ParseBool(f.Tag.Get("inherited"))
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, char := types.AccessorName(f.Name, f.Tag)
		if name == "-" {
			continue
		}
		acc, err := fieldAccessor(name, char, f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", m.Name, f.Name, err)
		}
		m.Accessors = append(m.Accessors, acc)
	}
	return m, nil
}

func fieldAccessor(name string, char bool, f reflect.StructField) (types.Accessor, error) {
	acc := types.Accessor{Name: name, Field: f.Name}
	ft := f.Type
	if ft.Kind() == reflect.Slice {
		acc.Sequence = true
		ft = ft.Elem()
		if ft.Kind() == reflect.Slice {
			return acc, types.ErrNestedSequence
		}
	}
	shape, typeName, err := shapeOf(ft)
	if err != nil {
		return acc, err
	}
	if char {
		if shape != types.ShapeInt {
			return acc, fmt.Errorf("char option needs an integer field: %w", types.ErrShapeMismatch)
		}
		shape = types.ShapeChar
	}
	acc.Shape, acc.Type = shape, typeName
	if shape == types.ShapeComposite {
		markerTypes.LoadOrStore(typeName, ft)
	}
	if text, ok := f.Tag.Lookup("default"); ok {
		def, err := types.ParseDefault(acc, text)
		if err != nil {
			return acc, err
		}
		acc.Default = def
	}
	return acc, nil
}

// shapeOf classifies an accessor type. Unnamed basic types map to
// primitives, named structs to composites and other named types to enums.
func shapeOf(t reflect.Type) (types.Shape, string, error) {
	if t == reflectType {
		return types.ShapeType, "", nil
	}
	if t.PkgPath() != "" {
		if t.Kind() == reflect.Struct {
			return types.ShapeComposite, loader.QualifiedName(t), nil
		}
		switch t.Kind() {
		case reflect.Bool, reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return types.ShapeEnum, loader.QualifiedName(t), nil
		}
		return 0, "", fmt.Errorf("unsupported attribute type %s: %w", t, types.ErrShapeMismatch)
	}
	switch t.Kind() {
	case reflect.Bool:
		return types.ShapeBool, "", nil
	case reflect.String:
		return types.ShapeString, "", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return types.ShapeInt, "", nil
	}
	return 0, "", fmt.Errorf("unsupported attribute type %s: %w", t, types.ErrShapeMismatch)
}

// markerByName finds the descriptor of a nested composite marker: first
// among types already described, then through the loader.
func markerByName(name string, l loader.Loader) (*types.Marker, error) {
	if t, ok := markerTypes.Load(name); ok {
		return DescribeType(t.(reflect.Type))
	}
	if l == nil {
		return nil, fmt.Errorf("marker %s: %w", name, loader.ErrNotRegistered)
	}
	t, err := l.Type(name)
	if err != nil {
		return nil, err
	}
	return DescribeType(t)
}
