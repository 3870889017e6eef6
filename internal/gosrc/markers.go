package gosrc

import (
	"fmt"
	"go/ast"
	"reflect"
	"strconv"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// isIndexable reports whether a type declaration is a struct carrying the
// blank Indexable field.
func isIndexable(td *typeDecl) bool {
	st, ok := td.spec.Type.(*ast.StructType)
	if !ok {
		return false
	}
	for _, field := range st.Fields.List {
		if isIndexableField(field, td.file) {
			return true
		}
	}
	return false
}

func isIndexableField(field *ast.Field, f *file) bool {
	if len(field.Names) != 1 || field.Names[0].Name != "_" {
		return false
	}
	switch t := field.Type.(type) {
	case *ast.SelectorExpr:
		x, ok := t.X.(*ast.Ident)
		return ok && t.Sel.Name == "Indexable" && f.imports[x.Name] == CatalogPath
	case *ast.Ident:
		return t.Name == "Indexable" && f.pkg.ImportPath == CatalogPath
	}
	return false
}

func fieldTag(field *ast.Field) reflect.StructTag {
	if field.Tag == nil {
		return ""
	}
	s, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return ""
	}
	return reflect.StructTag(s)
}

// describe builds the marker descriptor for a struct type declared in the
// loaded packages. Results, including failures, are memoized.
func (e *Env) describe(name string) (*types.Marker, error) {
	if m, ok := e.markers[name]; ok {
		return m, nil
	}
	if err, ok := e.failed[name]; ok {
		return nil, err
	}
	m, err := e.buildMarker(name)
	if err != nil {
		e.failed[name] = err
		return nil, err
	}
	e.markers[name] = m
	return m, nil
}

func (e *Env) buildMarker(name string) (*types.Marker, error) {
	td, ok := e.types[name]
	if !ok {
		return nil, fmt.Errorf("marker type %s is not declared in the scanned packages", name)
	}
	st, ok := td.spec.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, types.ErrNotMarker)
	}
	if e.building[name] {
		return nil, fmt.Errorf("marker type %s contains itself", name)
	}
	e.building[name] = true
	defer delete(e.building, name)

	m := &types.Marker{Name: name}
	for _, field := range st.Fields.List {
		if isIndexableField(field, td.file) {
			tag := fieldTag(field)
			targets, err := types.ParseTargets(tag.Get("targets"))
			if err != nil {
				return nil, err
			}
			m.Targets = targets
			m.Bound = tag.Get("bound")
			m.Inherited, _ = strconv.ParseBool(tag.Get("inherited"))
			continue
		}
		for _, ident := range field.Names {
			if !ident.IsExported() {
				continue
			}
			acc, skip, err := e.accessor(ident.Name, field, td.file)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", name, ident.Name, err)
			}
			if !skip {
				m.Accessors = append(m.Accessors, acc)
			}
		}
	}
	return m, nil
}

func (e *Env) accessor(fieldName string, field *ast.Field, f *file) (types.Accessor, bool, error) {
	tag := fieldTag(field)
	name, char := types.AccessorName(fieldName, tag)
	if name == "-" {
		return types.Accessor{}, true, nil
	}
	acc := types.Accessor{Name: name, Field: fieldName}

	expr := field.Type
	if at, ok := expr.(*ast.ArrayType); ok && at.Len == nil {
		acc.Sequence = true
		expr = at.Elt
		if inner, ok := expr.(*ast.ArrayType); ok && inner.Len == nil {
			return acc, false, types.ErrNestedSequence
		}
	}
	shape, typeName, err := e.shapeOf(expr, f)
	if err != nil {
		return acc, false, err
	}
	if char {
		if shape != types.ShapeInt {
			return acc, false, fmt.Errorf("char option needs an integer field: %w", types.ErrShapeMismatch)
		}
		shape = types.ShapeChar
	}
	acc.Shape, acc.Type = shape, typeName

	if text, ok := tag.Lookup("default"); ok {
		def, err := types.ParseDefault(acc, text)
		if err != nil {
			return acc, false, err
		}
		acc.Default = def
	}
	return acc, false, nil
}

var intTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true, "byte": true, "rune": true,
}

// shapeOf classifies a non-slice accessor field type. Struct types become
// composites, other named types enums.
func (e *Env) shapeOf(expr ast.Expr, f *file) (types.Shape, string, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		switch {
		case t.Name == "bool":
			return types.ShapeBool, "", nil
		case t.Name == "string":
			return types.ShapeString, "", nil
		case intTypes[t.Name]:
			return types.ShapeInt, "", nil
		case predeclared[t.Name]:
			return 0, "", fmt.Errorf("unsupported attribute type %s: %w", t.Name, types.ErrShapeMismatch)
		}
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok && f.imports[x.Name] == "reflect" && t.Sel.Name == "Type" {
			return types.ShapeType, "", nil
		}
	case *ast.ParenExpr:
		return e.shapeOf(t.X, f)
	default:
		return 0, "", fmt.Errorf("unsupported attribute type %T: %w", expr, types.ErrShapeMismatch)
	}
	q := qualify(expr, f)
	if q == "" {
		return 0, "", fmt.Errorf("unsupported attribute type: %w", types.ErrShapeMismatch)
	}
	if td, ok := e.types[q]; ok {
		if _, isStruct := td.spec.Type.(*ast.StructType); isStruct {
			return types.ShapeComposite, q, nil
		}
	}
	return types.ShapeEnum, q, nil
}

var predeclared = map[string]bool{
	"bool": true, "string": true, "error": true, "any": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

// qualify returns the fully qualified name of a type expression: import path
// plus name for named types, the bare name for predeclared types, and a
// leading "*" for pointers. It returns "" for anything else.
func qualify(expr ast.Expr, f *file) string {
	switch t := expr.(type) {
	case *ast.Ident:
		if predeclared[t.Name] || intTypes[t.Name] {
			return t.Name
		}
		return f.pkg.ImportPath + "." + t.Name
	case *ast.SelectorExpr:
		x, ok := t.X.(*ast.Ident)
		if !ok {
			return ""
		}
		p, ok := f.imports[x.Name]
		if !ok {
			return ""
		}
		return p + "." + t.Sel.Name
	case *ast.StarExpr:
		inner := qualify(t.X, f)
		if inner == "" {
			return ""
		}
		return "*" + inner
	case *ast.ParenExpr:
		return qualify(t.X, f)
	case *ast.IndexExpr:
		return qualify(t.X, f)
	case *ast.IndexListExpr:
		return qualify(t.X, f)
	default:
		return ""
	}
}
