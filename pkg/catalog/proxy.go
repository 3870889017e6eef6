package catalog

import (
	"fmt"
	"maps"

	"github.com/mesh-intelligence/tagindex/pkg/loader"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// Annotation answers a marker's accessor contract. Get returns the live form
// of an attribute: bool, int64, rune, string, reflect.Type, the enum
// constant's value, a nested Annotation, or []any for sequences.
type Annotation interface {
	Marker() *types.Marker
	Get(name string) (any, error)
}

// Proxy is an Annotation reconstructed from stored values. Attributes absent
// from the record fall back to the marker's declared defaults. Type and enum
// references go through the loader on every Get.
type Proxy struct {
	marker *types.Marker
	values map[string]types.Value
	loader loader.Loader
}

var _ Annotation = (*Proxy)(nil)

// NewProxy returns a proxy for m over a copy of the stored values.
func NewProxy(m *types.Marker, values map[string]types.Value, l loader.Loader) *Proxy {
	return &Proxy{marker: m, values: maps.Clone(values), loader: l}
}

// Marker implements Annotation.
func (p *Proxy) Marker() *types.Marker { return p.marker }

// Values returns a copy of the stored, non-default values.
func (p *Proxy) Values() map[string]types.Value { return maps.Clone(p.values) }

// Get implements Annotation.
func (p *Proxy) Get(name string) (any, error) {
	acc, ok := p.marker.Accessor(name)
	if !ok {
		return nil, fmt.Errorf("%s has no attribute %q: %w", p.marker.Name, name, types.ErrUnknownAttribute)
	}
	v, ok := p.values[name]
	if !ok {
		v = acc.Default
	}
	if v == nil {
		return nil, fmt.Errorf("%s.%s: %w", p.marker.Name, name, types.ErrMissingAttribute)
	}
	return p.resolve(v)
}

func (p *Proxy) resolve(v types.Value) (any, error) {
	switch tv := v.(type) {
	case types.Bool:
		return bool(tv), nil
	case types.Int:
		return int64(tv), nil
	case types.Char:
		return rune(tv), nil
	case types.String:
		return string(tv), nil
	case types.TypeRef:
		if p.loader == nil {
			return nil, fmt.Errorf("type %s: %w", tv.Name, loader.ErrNotRegistered)
		}
		return p.loader.Type(tv.Name)
	case types.EnumRef:
		if p.loader == nil {
			return nil, fmt.Errorf("enum %s.%s: %w", tv.Type, tv.Name, loader.ErrNotRegistered)
		}
		return p.loader.Enum(tv.Type, tv.Name)
	case types.Composite:
		m, err := markerByName(tv.Marker, p.loader)
		if err != nil {
			return nil, err
		}
		return NewProxy(m, tv.Values, p.loader), nil
	case types.Sequence:
		out := make([]any, len(tv.Elems))
		for i, e := range tv.Elems {
			r, err := p.resolve(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%T: %w", v, types.ErrShapeMismatch)
	}
}

// Equal reports whether the proxy and a are equal attribute for attribute.
func (p *Proxy) Equal(a Annotation) bool { return Equal(p, a) }

// Hash returns the annotation hash shared with live instances.
func (p *Proxy) Hash() int32 { return Hash(p) }

// String renders the stored values as @marker{...}. Informational only.
func (p *Proxy) String() string {
	return "@" + p.marker.Name + types.FormatValues(p.values)
}
