package scanner

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// checkMarker applies the declaration rules for an indexable marker type and
// returns the diagnostic message, or "" when the marker is legal.
func checkMarker(m *types.Marker) string {
	err := m.Validate()
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrInherited):
		return "indexable markers cannot be inherited"
	case errors.Is(err, types.ErrNoTargets):
		return "indexable markers must declare at least one target in the targets tag"
	default:
		return fmt.Sprintf("indexable markers may only target types, funcs or vars: %v", err)
	}
}

// checkElement applies the registration rules to one marked element and
// returns the first violated rule as a message, or "" when the element may be
// indexed. Each message names the rule it enforces.
func checkElement(env Environment, m *types.Marker, e Element) string {
	if !e.Valid {
		return "markers must be on types, funcs or vars"
	}
	if !m.Permits(e.Kind) {
		return fmt.Sprintf("marker not permitted on %s", kindNoun(e.Kind))
	}
	if !e.Public {
		return "marked elements must be public"
	}
	switch e.Kind {
	case types.KindType:
		if e.Abstract {
			return "marked types must not be abstract"
		}
		if !e.HasNoArgConstructor {
			return "marked types must have a public no-argument constructor"
		}
		if e.Nested && !e.Static {
			return "marked nested types must be static"
		}
	case types.KindMethod:
		if !e.EnclosingPublic {
			return "marked funcs must be contained in a public package"
		}
		if !e.Static {
			return "marked funcs must be static"
		}
		if e.Params != 0 {
			return "marked funcs must take no parameters"
		}
	case types.KindField:
		if !e.EnclosingPublic {
			return "marked vars must be contained in a public package"
		}
		if !e.Static {
			return "marked vars must be static"
		}
		if !e.Final {
			return "marked vars must be final"
		}
	}
	if m.Bound != "" && !env.Assignable(e.ValueType, m.Bound) {
		return fmt.Sprintf("%s is not assignable to %s", e.ValueType, m.Bound)
	}
	return ""
}

func kindNoun(k types.MemberKind) string {
	switch k {
	case types.KindType:
		return "types"
	case types.KindMethod:
		return "funcs"
	case types.KindField:
		return "vars"
	default:
		return k.String()
	}
}

// normalize checks explicit attribute values against the marker and drops
// those equal to their declared default. Nested composite values are
// normalized the same way when env knows their marker.
func normalize(env Environment, m *types.Marker, values map[string]types.Value) (map[string]types.Value, error) {
	out := make(map[string]types.Value, len(values))
	for _, name := range types.SortedKeys(values) {
		acc, ok := m.Accessor(name)
		if !ok {
			return nil, fmt.Errorf("%s has no attribute %q: %w", m.Name, name, types.ErrUnknownAttribute)
		}
		v := values[name]
		if err := types.Conforms(acc, v); err != nil {
			return nil, err
		}
		v, err := normalizeNested(env, acc, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if acc.Default != nil && types.ValuesEqual(v, acc.Default) {
			continue
		}
		out[name] = v
	}
	for _, acc := range m.Accessors {
		if _, ok := values[acc.Name]; !ok && acc.Required() {
			return nil, fmt.Errorf("%s requires %q: %w", m.Name, acc.Name, types.ErrMissingAttribute)
		}
	}
	return out, nil
}

func normalizeNested(env Environment, acc types.Accessor, v types.Value) (types.Value, error) {
	if acc.Shape != types.ShapeComposite {
		return v, nil
	}
	nested, ok := env.Marker(acc.Type)
	if !ok {
		return v, nil
	}
	switch tv := v.(type) {
	case types.Composite:
		vals, err := normalize(env, nested, tv.Values)
		if err != nil {
			return nil, err
		}
		return types.Composite{Marker: tv.Marker, Values: vals}, nil
	case types.Sequence:
		elems := make([]types.Value, len(tv.Elems))
		for i, e := range tv.Elems {
			c := e.(types.Composite)
			vals, err := normalize(env, nested, c.Values)
			if err != nil {
				return nil, err
			}
			elems[i] = types.Composite{Marker: c.Marker, Values: vals}
		}
		return types.Sequence{Elems: elems}, nil
	default:
		return v, nil
	}
}
