package catalog

import (
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// Decode fills the marker struct dst points to from an annotation. The
// struct's marker must be the annotation's marker.
func Decode(a Annotation, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", dst)
	}
	return decodeInto(a, rv.Elem())
}

func decodeInto(a Annotation, dst reflect.Value) error {
	m, err := DescribeType(dst.Type())
	if err != nil {
		return err
	}
	if m.Name != a.Marker().Name {
		return fmt.Errorf("cannot decode %s into %s: %w", a.Marker().Name, m.Name, types.ErrShapeMismatch)
	}
	for _, acc := range m.Accessors {
		v, err := a.Get(acc.Name)
		if err != nil {
			return err
		}
		if err := assign(dst.FieldByName(acc.Field), v); err != nil {
			return fmt.Errorf("%s.%s: %w", m.Name, acc.Name, err)
		}
	}
	return nil
}

func assign(f reflect.Value, v any) error {
	if v == nil {
		f.SetZero()
		return nil
	}
	if elems, ok := v.([]any); ok {
		if f.Kind() != reflect.Slice {
			return fmt.Errorf("sequence into %s: %w", f.Type(), types.ErrShapeMismatch)
		}
		s := reflect.MakeSlice(f.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := assign(s.Index(i), e); err != nil {
				return err
			}
		}
		f.Set(s)
		return nil
	}
	if nested, ok := v.(Annotation); ok {
		return decodeInto(nested, f)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(f.Type()) {
		f.Set(rv)
		return nil
	}
	if !rv.Type().ConvertibleTo(f.Type()) || (f.Kind() == reflect.String && rv.Kind() != reflect.String) {
		return fmt.Errorf("%s into %s: %w", rv.Type(), f.Type(), types.ErrShapeMismatch)
	}
	f.Set(rv.Convert(f.Type()))
	return nil
}
