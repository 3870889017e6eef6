package catalog

import (
	"reflect"
	"unicode/utf16"

	"github.com/mesh-intelligence/tagindex/pkg/loader"
)

// Equal reports whether two annotations have the same marker and equal
// values for every accessor. Sequences compare element by element. A proxy
// and a live instance with the same values are equal.
func Equal(a, b Annotation) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Marker().Name != b.Marker().Name {
		return false
	}
	for _, acc := range a.Marker().Accessors {
		va, err := a.Get(acc.Name)
		if err != nil {
			return false
		}
		vb, err := b.Get(acc.Name)
		if err != nil {
			return false
		}
		if !liveEqual(va, vb) {
			return false
		}
	}
	return true
}

func liveEqual(a, b any) bool {
	switch av := a.(type) {
	case Annotation:
		bv, ok := b.(Annotation)
		return ok && Equal(av, bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !liveEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		if a == nil || b == nil {
			return a == nil && b == nil
		}
		ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
		if ta != tb || !ta.Comparable() {
			return false
		}
		return a == b
	}
}

// Hash returns the sum over accessors of (31 * hash(name)) ^ hash(value).
// String, integer and boolean hashes follow the JVM conventions and
// sequences hash element-wise, so a proxy and a live instance hash alike.
func Hash(a Annotation) int32 {
	var h int32
	for _, acc := range a.Marker().Accessors {
		v, err := a.Get(acc.Name)
		if err != nil {
			continue
		}
		h += (31 * stringHash(acc.Name)) ^ valueHash(v)
	}
	return h
}

func stringHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return h
}

func longHash(v int64) int32 {
	return int32(v ^ int64(uint64(v)>>32))
}

func boolHash(b bool) int32 {
	if b {
		return 1231
	}
	return 1237
}

func valueHash(v any) int32 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		return boolHash(x)
	case int64:
		return longHash(x)
	case rune:
		return x
	case string:
		return stringHash(x)
	case reflect.Type:
		return stringHash(loader.QualifiedName(x))
	case Annotation:
		return Hash(x)
	case []any:
		h := int32(1)
		for _, e := range x {
			h = 31*h + valueHash(e)
		}
		return h
	default:
		return enumHash(reflect.ValueOf(v))
	}
}

// enumHash hashes an enum constant by its type name and underlying value.
func enumHash(rv reflect.Value) int32 {
	h := 31 * stringHash(loader.QualifiedName(rv.Type()))
	switch {
	case rv.CanInt():
		return h + longHash(rv.Int())
	case rv.CanUint():
		return h + longHash(int64(rv.Uint()))
	case rv.Kind() == reflect.String:
		return h + stringHash(rv.String())
	case rv.Kind() == reflect.Bool:
		return h + boolHash(rv.Bool())
	default:
		return h
	}
}
