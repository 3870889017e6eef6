package catalog

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tagindex/pkg/container"
	"github.com/mesh-intelligence/tagindex/pkg/loader"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// Item is one catalog entry yielded by an Iterator. The projection methods
// never touch the marked code. Element and Instance are memoized and are not
// safe for concurrent use.
type Item[A any, I any] struct {
	rec       types.Record
	marker    *types.Marker
	container container.Container
	scope     *Scope
	logger    *zap.Logger

	element  *loader.Element
	instance I
	hasInst  bool
}

// Identity returns the element's identity key.
func (it *Item[A, I]) Identity() string { return it.rec.Identity() }

// Kind returns the kind of the marked element.
func (it *Item[A, I]) Kind() types.MemberKind { return it.rec.Kind }

// DeclaringType returns the qualified type name for types, or the import
// path for funcs and vars.
func (it *Item[A, I]) DeclaringType() string { return it.rec.DeclaringType }

// Member returns the func or var name, or "" for types.
func (it *Item[A, I]) Member() string { return it.rec.Member }

// Container returns the container the record was read from.
func (it *Item[A, I]) Container() container.Container { return it.container }

// Record returns the stored record.
func (it *Item[A, I]) Record() types.Record { return it.rec }

// Attribute returns a proxy over the stored attribute values.
func (it *Item[A, I]) Attribute() *Proxy {
	return NewProxy(it.marker, it.rec.Values, it.scope.Loader)
}

// Annotation returns the attribute values as the marker type A. When A is
// *Proxy or Annotation the proxy itself is returned.
func (it *Item[A, I]) Annotation() (A, error) {
	p := it.Attribute()
	if a, ok := any(p).(A); ok {
		return a, nil
	}
	var a A
	if err := Decode(p, &a); err != nil {
		return a, it.fail(false, err)
	}
	return a, nil
}

// Element resolves the marked element through the scope's loader.
func (it *Item[A, I]) Element() (*loader.Element, error) {
	if it.element != nil {
		return it.element, nil
	}
	if it.scope.Loader == nil {
		return nil, it.fail(true, loader.ErrNotRegistered)
	}
	el, err := it.scope.Loader.Element(it.rec)
	if err != nil {
		return nil, it.fail(true, err)
	}
	it.logger.Debug("resolved catalog element", zap.String("element", el.Name))
	it.element = el
	return el, nil
}

// Instance instantiates the element once and returns it as I. A type
// element yields a pointer to a new zero value; when I is the type itself
// the value is dereferenced.
func (it *Item[A, I]) Instance() (I, error) {
	if it.hasInst {
		return it.instance, nil
	}
	var zero I
	el, err := it.Element()
	if err != nil {
		return zero, err
	}
	v, err := el.Instantiate()
	if err != nil {
		return zero, it.fail(false, err)
	}
	inst, ok := v.(I)
	if !ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && !rv.IsNil() {
			inst, ok = rv.Elem().Interface().(I)
		}
	}
	if !ok {
		return zero, it.fail(false, fmt.Errorf("%T is not a %s", v, reflect.TypeFor[I]()))
	}
	it.logger.Debug("instantiated catalog element", zap.String("element", el.Name))
	it.instance, it.hasInst = inst, true
	return inst, nil
}

func (it *Item[A, I]) fail(stale bool, err error) error {
	return &ResolutionError{
		Identity:  it.Identity(),
		Container: it.container.Name(),
		Stale:     stale,
		Err:       err,
	}
}

// Equal reports whether both items denote the same element under the same
// marker and scope. Attribute values are not compared.
func (it *Item[A, I]) Equal(o *Item[A, I]) bool {
	if o == nil {
		return false
	}
	return it.rec.DeclaringType == o.rec.DeclaringType &&
		it.rec.Member == o.rec.Member &&
		it.rec.Kind == o.rec.Kind &&
		it.marker.Name == o.marker.Name &&
		it.scope == o.scope
}

// Key returns a map key consistent with Equal.
func (it *Item[A, I]) Key() string {
	return fmt.Sprintf("%p|%s|%s|%s", it.scope, it.marker.Name, it.rec.Kind, it.rec.Identity())
}

// String returns @marker:identity{values}.
func (it *Item[A, I]) String() string {
	return "@" + it.marker.Name + ":" + it.rec.String()
}
