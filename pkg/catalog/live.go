package catalog

import (
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

type live struct {
	marker *types.Marker
	v      reflect.Value
}

// Live wraps a marker struct value, or a pointer to one, as an Annotation so
// it can be compared and hashed against proxies.
func Live(v any) (Annotation, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil %s: %w", rv.Type(), types.ErrNotMarker)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, fmt.Errorf("nil value: %w", types.ErrNotMarker)
	}
	m, err := DescribeType(rv.Type())
	if err != nil {
		return nil, err
	}
	return &live{marker: m, v: rv}, nil
}

func (l *live) Marker() *types.Marker { return l.marker }

func (l *live) Get(name string) (any, error) {
	acc, ok := l.marker.Accessor(name)
	if !ok {
		return nil, fmt.Errorf("%s has no attribute %q: %w", l.marker.Name, name, types.ErrUnknownAttribute)
	}
	fv := l.v.FieldByName(acc.Field)
	if !acc.Sequence {
		return liveScalar(fv, acc)
	}
	out := make([]any, fv.Len())
	for i := range out {
		e, err := liveScalar(fv.Index(i), acc)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func liveScalar(fv reflect.Value, acc types.Accessor) (any, error) {
	switch acc.Shape {
	case types.ShapeBool:
		return fv.Bool(), nil
	case types.ShapeInt:
		if fv.CanInt() {
			return fv.Int(), nil
		}
		return int64(fv.Uint()), nil
	case types.ShapeChar:
		if fv.CanInt() {
			return rune(fv.Int()), nil
		}
		return rune(fv.Uint()), nil
	case types.ShapeString:
		return fv.String(), nil
	case types.ShapeType:
		if fv.IsNil() {
			return nil, nil
		}
		return fv.Interface(), nil
	case types.ShapeEnum:
		return fv.Interface(), nil
	case types.ShapeComposite:
		return Live(fv.Interface())
	default:
		return nil, fmt.Errorf("%s: %w", acc.Name, types.ErrShapeMismatch)
	}
}

func (l *live) String() string {
	return fmt.Sprintf("@%s%+v", l.marker.Name, l.v.Interface())
}
