package gosrc

import gotypes "go/types"

// Assignable implements scanner.Environment. Both names are resolved to
// checked types and compared with the language's assignability rules, so
// method signatures, promoted methods and interfaces from the standard
// library all count. A non-pointer named type is also assignable when its
// pointer is, since type elements are instantiated behind a pointer. Names
// that do not resolve are assignable only to themselves.
func (e *Env) Assignable(valueType, bound string) bool {
	switch {
	case bound == "" || bound == "any" || bound == "interface{}":
		return true
	case valueType == "":
		return false
	case valueType == bound:
		return true
	}
	v, t := e.resolveType(valueType), e.resolveType(bound)
	if v == nil || t == nil {
		return false
	}
	if gotypes.AssignableTo(v, t) {
		return true
	}
	if _, isPtr := v.(*gotypes.Pointer); isPtr || gotypes.IsInterface(v) {
		return false
	}
	return gotypes.AssignableTo(gotypes.NewPointer(v), t)
}
