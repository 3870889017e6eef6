// Package loader resolves the names stored in a catalog to live Go symbols.
//
// Go cannot load code by name, so programs register the symbols that may be
// catalogued: named types, zero-argument functions, package-level variables
// and enum constants. Registration stores reflect handles only; no user code
// runs until Element.Instantiate is called.
package loader

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// Loader errors.
var (
	ErrNotRegistered = errors.New("symbol not registered")
	ErrBadSymbol     = errors.New("invalid symbol")
	ErrInstantiate   = errors.New("instantiation failed")
)

// Loader resolves catalog names. Implementations must not run user code.
type Loader interface {
	// Type returns the type registered under a fully qualified name.
	Type(name string) (reflect.Type, error)
	// Enum returns the value of a registered enum constant.
	Enum(typeName, constName string) (any, error)
	// Element returns the live element a record points at.
	Element(rec types.Record) (*Element, error)
}

// Element is a resolved catalog element.
type Element struct {
	Kind  types.MemberKind
	Name  string       // identity of the element
	Type  reflect.Type // the named type, the func result type, or the var type
	value reflect.Value
}

// Instantiate produces the element's value: a pointer to a new zero value
// for types, the result of calling the function for funcs, the current value
// for vars. A panic inside a function is reported as an error.
func (e *Element) Instantiate() (v any, err error) {
	switch e.Kind {
	case types.KindType:
		return reflect.New(e.Type).Interface(), nil
	case types.KindMethod:
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: panic: %v: %w", e.Name, r, ErrInstantiate)
			}
		}()
		out := e.value.Call(nil)
		return out[0].Interface(), nil
	case types.KindField:
		return e.value.Elem().Interface(), nil
	default:
		return nil, fmt.Errorf("%s: kind %s: %w", e.Name, e.Kind, ErrInstantiate)
	}
}

// QualifiedName returns import path + "." + name for a named type, and the
// reflect string form for anything else.
func QualifiedName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// Registry is the standard Loader. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	types  map[string]reflect.Type
	funcs  map[string]reflect.Value
	vars   map[string]reflect.Value
	consts map[string]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:  make(map[string]reflect.Type),
		funcs:  make(map[string]reflect.Value),
		vars:   make(map[string]reflect.Value),
		consts: make(map[string]any),
	}
}

// RegisterType registers a named type under its qualified name.
func (r *Registry) RegisterType(t reflect.Type) error {
	if t == nil || t.Name() == "" || t.PkgPath() == "" {
		return fmt.Errorf("type %v is not a named package-level type: %w", t, ErrBadSymbol)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[QualifiedName(t)] = t
	return nil
}

// RegisterFunc registers a zero-argument, single-result function declared in
// package pkg.
func (r *Registry) RegisterFunc(pkg, name string, fn any) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("%s.%s is not a function: %w", pkg, name, ErrBadSymbol)
	}
	if v.Type().NumIn() != 0 || v.Type().NumOut() != 1 {
		return fmt.Errorf("%s.%s must take no arguments and return one value: %w", pkg, name, ErrBadSymbol)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[methodKey(pkg, name)] = v
	return nil
}

// RegisterVar registers a package-level variable through a pointer to it.
func (r *Registry) RegisterVar(pkg, name string, ptr any) error {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("%s.%s must be registered by pointer: %w", pkg, name, ErrBadSymbol)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vars[fieldKey(pkg, name)] = v
	return nil
}

// RegisterEnum registers one constant of an enum type. The enum type name is
// taken from the dynamic type of value.
func (r *Registry) RegisterEnum(constName string, value any) error {
	t := reflect.TypeOf(value)
	if t == nil || t.Name() == "" || t.PkgPath() == "" {
		return fmt.Errorf("enum constant %s must have a named type: %w", constName, ErrBadSymbol)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consts[enumKey(QualifiedName(t), constName)] = value
	r.types[QualifiedName(t)] = t
	return nil
}

// Type implements Loader.
func (r *Registry) Type(name string) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("type %s: %w", name, ErrNotRegistered)
	}
	return t, nil
}

// Enum implements Loader.
func (r *Registry) Enum(typeName, constName string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.consts[enumKey(typeName, constName)]
	if !ok {
		return nil, fmt.Errorf("enum constant %s.%s: %w", typeName, constName, ErrNotRegistered)
	}
	return v, nil
}

// Element implements Loader.
func (r *Registry) Element(rec types.Record) (*Element, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name := rec.Identity()
	switch rec.Kind {
	case types.KindType:
		t, ok := r.types[rec.DeclaringType]
		if !ok {
			return nil, fmt.Errorf("type %s: %w", name, ErrNotRegistered)
		}
		return &Element{Kind: rec.Kind, Name: name, Type: t}, nil
	case types.KindMethod:
		fn, ok := r.funcs[name]
		if !ok {
			return nil, fmt.Errorf("func %s: %w", name, ErrNotRegistered)
		}
		return &Element{Kind: rec.Kind, Name: name, Type: fn.Type().Out(0), value: fn}, nil
	case types.KindField:
		ptr, ok := r.vars[name]
		if !ok {
			return nil, fmt.Errorf("var %s: %w", name, ErrNotRegistered)
		}
		return &Element{Kind: rec.Kind, Name: name, Type: ptr.Type().Elem(), value: ptr}, nil
	default:
		return nil, fmt.Errorf("%s: kind %s: %w", name, rec.Kind, ErrBadSymbol)
	}
}

func methodKey(pkg, name string) string {
	return types.Record{DeclaringType: pkg, Member: name, Kind: types.KindMethod}.Identity()
}

func fieldKey(pkg, name string) string {
	return types.Record{DeclaringType: pkg, Member: name, Kind: types.KindField}.Identity()
}

func enumKey(typeName, constName string) string {
	return typeName + "." + constName
}
