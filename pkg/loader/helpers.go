package loader

import "reflect"

// Type registers T and returns the registry for chaining.
func Type[T any](r *Registry) *Registry {
	if err := r.RegisterType(reflect.TypeFor[T]()); err != nil {
		panic(err)
	}
	return r
}

// Func registers fn as pkg#name(). It panics on an invalid symbol, which is
// a programming error in the registering package.
func Func[T any](r *Registry, pkg, name string, fn func() T) *Registry {
	if err := r.RegisterFunc(pkg, name, fn); err != nil {
		panic(err)
	}
	return r
}

// Var registers *ptr as pkg#name.
func Var[T any](r *Registry, pkg, name string, ptr *T) *Registry {
	if err := r.RegisterVar(pkg, name, ptr); err != nil {
		panic(err)
	}
	return r
}

// Enum registers the constants of one enum type, keyed by constant name.
func Enum[T comparable](r *Registry, consts map[string]T) *Registry {
	for name, v := range consts {
		if err := r.RegisterEnum(name, v); err != nil {
			panic(err)
		}
	}
	return r
}
