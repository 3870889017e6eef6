package gosrc

import (
	"fmt"
	"go/ast"
	"go/token"
	gotypes "go/types"
	"strconv"
	"unicode/utf8"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// translateFields converts the keyed fields of a marker literal into
// attribute values. Values are kept as written; the scanner drops defaults.
func (e *Env) translateFields(lit *ast.CompositeLit, m *types.Marker, f *file) (map[string]types.Value, error) {
	values := make(map[string]types.Value, len(lit.Elts))
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return nil, fmt.Errorf("%s literal must use keyed fields", m.Name)
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("%s literal has a non-identifier key", m.Name)
		}
		acc, ok := accessorByField(m, key.Name)
		if !ok {
			return nil, fmt.Errorf("%s has no field %s: %w", m.Name, key.Name, types.ErrUnknownAttribute)
		}
		v, err := e.translate(kv.Value, acc, f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", m.Name, key.Name, err)
		}
		values[acc.Name] = v
	}
	return values, nil
}

func accessorByField(m *types.Marker, field string) (types.Accessor, bool) {
	for _, a := range m.Accessors {
		if a.Field == field {
			return a, true
		}
	}
	return types.Accessor{}, false
}

func (e *Env) translate(expr ast.Expr, acc types.Accessor, f *file) (types.Value, error) {
	if !acc.Sequence {
		return e.scalar(expr, acc, f)
	}
	if id, ok := expr.(*ast.Ident); ok && id.Name == "nil" {
		return types.Sequence{Elems: []types.Value{}}, nil
	}
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("want a slice literal: %w", types.ErrShapeMismatch)
	}
	if lit.Type != nil {
		if _, ok := lit.Type.(*ast.ArrayType); !ok {
			return nil, fmt.Errorf("want a slice literal: %w", types.ErrShapeMismatch)
		}
	}
	seq := types.Sequence{Elems: make([]types.Value, 0, len(lit.Elts))}
	for _, elt := range lit.Elts {
		if _, ok := elt.(*ast.KeyValueExpr); ok {
			return nil, fmt.Errorf("indexed slice elements are not supported: %w", types.ErrShapeMismatch)
		}
		v, err := e.scalar(elt, acc, f)
		if err != nil {
			return nil, err
		}
		seq.Elems = append(seq.Elems, v)
	}
	return seq, nil
}

func (e *Env) scalar(expr ast.Expr, acc types.Accessor, f *file) (types.Value, error) {
	if p, ok := expr.(*ast.ParenExpr); ok {
		return e.scalar(p.X, acc, f)
	}
	switch acc.Shape {
	case types.ShapeBool:
		if id, ok := expr.(*ast.Ident); ok && (id.Name == "true" || id.Name == "false") {
			return types.Bool(id.Name == "true"), nil
		}
	case types.ShapeInt:
		n, ok, err := intLit(expr)
		if err != nil {
			return nil, err
		}
		if ok {
			return types.Int(n), nil
		}
	case types.ShapeChar:
		if lit, ok := expr.(*ast.BasicLit); ok && lit.Kind == token.CHAR {
			s, err := strconv.Unquote(lit.Value)
			if err != nil {
				return nil, err
			}
			r, _ := utf8.DecodeRuneInString(s)
			return types.Char(r), nil
		}
	case types.ShapeString:
		if s, ok := stringLit(expr); ok {
			return types.String(s), nil
		}
	case types.ShapeType:
		if t := typeFor(expr, f); t != "" {
			return types.TypeRef{Name: t}, nil
		}
	case types.ShapeEnum:
		if ref, ok, err := e.enumConst(expr, acc, f); ok || err != nil {
			return ref, err
		}
	case types.ShapeComposite:
		return e.composite(expr, acc, f)
	}
	return nil, fmt.Errorf("unsupported %s expression: %w", acc.Shape, types.ErrShapeMismatch)
}

// enumConst resolves a constant named in a directive and checks that it
// belongs to the accessor's type. ok is false when expr is not a constant
// reference at all.
func (e *Env) enumConst(expr ast.Expr, acc types.Accessor, f *file) (types.Value, bool, error) {
	var pkgPath, name string
	switch v := expr.(type) {
	case *ast.Ident:
		pkgPath, name = f.pkg.ImportPath, v.Name
	case *ast.SelectorExpr:
		x, ok := v.X.(*ast.Ident)
		if !ok || f.imports[x.Name] == "" {
			return nil, false, nil
		}
		pkgPath, name = f.imports[x.Name], v.Sel.Name
	default:
		return nil, false, nil
	}
	c, ok := e.check.lookup(pkgPath, name).(*gotypes.Const)
	if !ok {
		return nil, true, fmt.Errorf("%s.%s is not a constant of %s: %w", pkgPath, name, acc.Type, types.ErrShapeMismatch)
	}
	if got := gotypes.TypeString(c.Type(), nil); got != acc.Type {
		return nil, true, fmt.Errorf("%s.%s has type %s, want %s: %w", pkgPath, name, got, acc.Type, types.ErrShapeMismatch)
	}
	return types.EnumRef{Type: acc.Type, Name: name}, true, nil
}

func (e *Env) composite(expr ast.Expr, acc types.Accessor, f *file) (types.Value, error) {
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("want a %s literal: %w", acc.Type, types.ErrShapeMismatch)
	}
	if lit.Type != nil {
		if name := qualify(lit.Type, f); name != acc.Type {
			return nil, fmt.Errorf("got %s literal, want %s: %w", name, acc.Type, types.ErrShapeMismatch)
		}
	}
	nested, err := e.describe(acc.Type)
	if err != nil {
		return nil, err
	}
	values, err := e.translateFields(lit, nested, f)
	if err != nil {
		return nil, err
	}
	return types.Composite{Marker: acc.Type, Values: values}, nil
}

func intLit(expr ast.Expr) (int64, bool, error) {
	switch v := expr.(type) {
	case *ast.BasicLit:
		if v.Kind == token.CHAR {
			s, err := strconv.Unquote(v.Value)
			if err != nil {
				return 0, false, err
			}
			r, _ := utf8.DecodeRuneInString(s)
			return int64(r), true, nil
		}
		if v.Kind != token.INT {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(v.Value, 0, 64)
		if err != nil {
			return 0, false, err
		}
		return n, true, nil
	case *ast.UnaryExpr:
		if v.Op != token.SUB && v.Op != token.ADD {
			return 0, false, nil
		}
		n, ok, err := intLit(v.X)
		if v.Op == token.SUB {
			n = -n
		}
		return n, ok, err
	case *ast.ParenExpr:
		return intLit(v.X)
	}
	return 0, false, nil
}

// stringLit evaluates a string literal or a concatenation of them.
func stringLit(expr ast.Expr) (string, bool) {
	switch v := expr.(type) {
	case *ast.BasicLit:
		if v.Kind != token.STRING {
			return "", false
		}
		s, err := strconv.Unquote(v.Value)
		return s, err == nil
	case *ast.BinaryExpr:
		if v.Op != token.ADD {
			return "", false
		}
		l, ok := stringLit(v.X)
		if !ok {
			return "", false
		}
		r, ok := stringLit(v.Y)
		return l + r, ok
	case *ast.ParenExpr:
		return stringLit(v.X)
	}
	return "", false
}

// typeFor recognizes reflect.TypeFor[T]() and returns the qualified T.
func typeFor(expr ast.Expr, f *file) string {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 0 {
		return ""
	}
	idx, ok := call.Fun.(*ast.IndexExpr)
	if !ok {
		return ""
	}
	sel, ok := idx.X.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "TypeFor" {
		return ""
	}
	if x, ok := sel.X.(*ast.Ident); !ok || f.imports[x.Name] != "reflect" {
		return ""
	}
	return qualify(idx.Index, f)
}
