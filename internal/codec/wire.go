package codec

import (
	"fmt"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// frame is the unit written to the gob stream. A frame with End set carries
// no record and terminates the partition.
type frame struct {
	End    bool
	Record wireRecord
}

type wireRecord struct {
	DeclaringType string
	Member        string
	Kind          uint8
	Values        []wireField
}

type wireField struct {
	Name  string
	Value wireValue
}

// wireValue flattens the Value sum type. Kind selects which fields are
// meaningful.
type wireValue struct {
	Kind   uint8
	Bool   bool
	Int    int64
	Str    string
	Type   string
	Fields []wireField
	Elems  []wireValue
}

func toWireRecord(r types.Record) (wireRecord, error) {
	fields, err := toWireFields(r.Values)
	if err != nil {
		return wireRecord{}, fmt.Errorf("%s: %w", r.Identity(), err)
	}
	return wireRecord{
		DeclaringType: r.DeclaringType,
		Member:        r.Member,
		Kind:          uint8(r.Kind),
		Values:        fields,
	}, nil
}

func toWireFields(m map[string]types.Value) ([]wireField, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make([]wireField, 0, len(m))
	for _, k := range types.SortedKeys(m) {
		wv, err := toWireValue(m[k])
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		out = append(out, wireField{Name: k, Value: wv})
	}
	return out, nil
}

func toWireValue(v types.Value) (wireValue, error) {
	switch tv := v.(type) {
	case types.Bool:
		return wireValue{Kind: uint8(types.KindBool), Bool: bool(tv)}, nil
	case types.Int:
		return wireValue{Kind: uint8(types.KindInt), Int: int64(tv)}, nil
	case types.Char:
		return wireValue{Kind: uint8(types.KindChar), Int: int64(tv)}, nil
	case types.String:
		return wireValue{Kind: uint8(types.KindString), Str: string(tv)}, nil
	case types.TypeRef:
		return wireValue{Kind: uint8(types.KindTypeRef), Type: tv.Name}, nil
	case types.EnumRef:
		return wireValue{Kind: uint8(types.KindEnumRef), Type: tv.Type, Str: tv.Name}, nil
	case types.Composite:
		fields, err := toWireFields(tv.Values)
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{Kind: uint8(types.KindComposite), Type: tv.Marker, Fields: fields}, nil
	case types.Sequence:
		if err := tv.Validate(); err != nil {
			return wireValue{}, err
		}
		elems := make([]wireValue, len(tv.Elems))
		for i, e := range tv.Elems {
			we, err := toWireValue(e)
			if err != nil {
				return wireValue{}, err
			}
			elems[i] = we
		}
		return wireValue{Kind: uint8(types.KindSequence), Elems: elems}, nil
	case nil:
		return wireValue{}, types.ErrNilValue
	default:
		return wireValue{}, fmt.Errorf("unsupported value %T", v)
	}
}

func fromWireRecord(w wireRecord) (types.Record, error) {
	kind := types.MemberKind(w.Kind)
	switch kind {
	case types.KindType, types.KindMethod, types.KindField:
	default:
		return types.Record{}, fmt.Errorf("member kind %d: %w", w.Kind, ErrCorrupt)
	}
	values, err := fromWireFields(w.Values)
	if err != nil {
		return types.Record{}, err
	}
	return types.Record{
		DeclaringType: w.DeclaringType,
		Member:        w.Member,
		Kind:          kind,
		Values:        values,
	}, nil
}

func fromWireFields(fields []wireField) (map[string]types.Value, error) {
	out := make(map[string]types.Value, len(fields))
	for _, f := range fields {
		v, err := fromWireValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", f.Name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}

func fromWireValue(w wireValue) (types.Value, error) {
	switch types.ValueKind(w.Kind) {
	case types.KindBool:
		return types.Bool(w.Bool), nil
	case types.KindInt:
		return types.Int(w.Int), nil
	case types.KindChar:
		return types.Char(rune(w.Int)), nil
	case types.KindString:
		return types.String(w.Str), nil
	case types.KindTypeRef:
		return types.TypeRef{Name: w.Type}, nil
	case types.KindEnumRef:
		return types.EnumRef{Type: w.Type, Name: w.Str}, nil
	case types.KindComposite:
		values, err := fromWireFields(w.Fields)
		if err != nil {
			return nil, err
		}
		return types.Composite{Marker: w.Type, Values: values}, nil
	case types.KindSequence:
		seq := types.Sequence{Elems: make([]types.Value, len(w.Elems))}
		for i, we := range w.Elems {
			e, err := fromWireValue(we)
			if err != nil {
				return nil, err
			}
			seq.Elems[i] = e
		}
		if err := seq.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("value kind %d: %w", w.Kind, ErrCorrupt)
	}
}
