package gosrc

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/mesh-intelligence/tagindex/internal/scanner"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// Directive marks the element whose doc comment carries it.
const Directive = "//tagindex:mark"

type directive struct {
	text string
	pos  token.Position
}

func (e *Env) directives(doc *ast.CommentGroup) []directive {
	if doc == nil {
		return nil
	}
	var out []directive
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		out = append(out, directive{text: strings.TrimSpace(rest), pos: e.fset.Position(c.Pos())})
	}
	return out
}

func (e *Env) collectElements(f *file) {
	for _, decl := range f.ast.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			e.genDecl(f, d, "")
		case *ast.FuncDecl:
			e.funcDecl(f, d)
		}
	}
}

// genDecl handles type, var and const declarations. scope is the name of
// the enclosing func for declarations inside a function body.
func (e *Env) genDecl(f *file, d *ast.GenDecl, scope string) {
	for _, spec := range d.Specs {
		var doc *ast.CommentGroup
		switch s := spec.(type) {
		case *ast.TypeSpec:
			doc = s.Doc
		case *ast.ValueSpec:
			doc = s.Doc
		}
		if doc == nil && !d.Lparen.IsValid() {
			doc = d.Doc
		}
		dirs := e.directives(doc)
		if len(dirs) == 0 {
			continue
		}
		switch s := spec.(type) {
		case *ast.TypeSpec:
			e.typeElement(f, s, scope, dirs)
		case *ast.ValueSpec:
			if scope != "" {
				for _, dir := range dirs {
					e.mark(f, dir, scanner.Element{
						Kind: types.KindField, Valid: false, Pos: dir.pos,
						DeclaringType: f.pkg.ImportPath + "." + scope, Member: s.Names[0].Name,
					})
				}
				continue
			}
			e.valueElements(f, s, dirs)
		}
	}
}

func (e *Env) typeElement(f *file, s *ast.TypeSpec, scope string, dirs []directive) {
	name := f.pkg.ImportPath + "." + s.Name.Name
	if scope != "" {
		name = f.pkg.ImportPath + "." + scope + "." + s.Name.Name
		if obj := e.check.info.Defs[s.Name]; obj != nil {
			e.local[name] = obj.Type()
		}
	}
	_, isInterface := s.Type.(*ast.InterfaceType)
	for _, dir := range dirs {
		e.mark(f, dir, scanner.Element{
			Kind:                types.KindType,
			Valid:               true,
			DeclaringType:       name,
			Pos:                 dir.pos,
			Public:              s.Name.IsExported(),
			EnclosingPublic:     true,
			Static:              scope == "",
			Abstract:            isInterface,
			Nested:              scope != "",
			HasNoArgConstructor: s.TypeParams == nil || len(s.TypeParams.List) == 0,
			ValueType:           name,
		})
	}
}

// valueElements marks every name of a package-level var or const spec. Go
// has no final vars; package-level vars count as final, and the registry
// reads their value at instantiation time.
func (e *Env) valueElements(f *file, s *ast.ValueSpec, dirs []directive) {
	for i, ident := range s.Names {
		if ident.Name == "_" {
			continue
		}
		valueType := ""
		if s.Type != nil {
			valueType = qualify(s.Type, f)
		} else if i < len(s.Values) {
			valueType = inferType(s.Values[i], f)
		}
		for _, dir := range dirs {
			e.mark(f, dir, scanner.Element{
				Kind:            types.KindField,
				Valid:           true,
				DeclaringType:   f.pkg.ImportPath,
				Member:          ident.Name,
				Pos:             dir.pos,
				Public:          ident.IsExported(),
				EnclosingPublic: true,
				Static:          true,
				Final:           true,
				ValueType:       valueType,
			})
		}
	}
}

// inferType recovers the type of an untyped var initializer where the
// syntax makes it obvious.
func inferType(expr ast.Expr, f *file) string {
	switch v := expr.(type) {
	case *ast.CompositeLit:
		if v.Type != nil {
			return qualify(v.Type, f)
		}
	case *ast.UnaryExpr:
		if v.Op == token.AND {
			if inner := inferType(v.X, f); inner != "" {
				return "*" + inner
			}
		}
	case *ast.BasicLit:
		switch v.Kind {
		case token.INT:
			return "int"
		case token.FLOAT:
			return "float64"
		case token.CHAR:
			return "rune"
		case token.STRING:
			return "string"
		}
	case *ast.ParenExpr:
		return inferType(v.X, f)
	}
	return ""
}

func (e *Env) funcDecl(f *file, d *ast.FuncDecl) {
	scope := d.Name.Name
	if d.Recv != nil && len(d.Recv.List) > 0 {
		scope = receiverName(d.Recv.List[0].Type) + "." + d.Name.Name
	}
	if d.Body != nil {
		ast.Inspect(d.Body, func(n ast.Node) bool {
			if ds, ok := n.(*ast.DeclStmt); ok {
				if gd, ok := ds.Decl.(*ast.GenDecl); ok {
					e.genDecl(f, gd, scope)
				}
			}
			return true
		})
	}

	dirs := e.directives(d.Doc)
	if len(dirs) == 0 {
		return
	}
	el := scanner.Element{
		Kind:            types.KindMethod,
		Valid:           true,
		DeclaringType:   f.pkg.ImportPath,
		Member:          d.Name.Name,
		Public:          d.Name.IsExported(),
		EnclosingPublic: true,
		Static:          d.Recv == nil,
		Params:          countFields(d.Type.Params),
	}
	if d.Recv != nil && len(d.Recv.List) > 0 {
		recv := receiverName(d.Recv.List[0].Type)
		el.DeclaringType = f.pkg.ImportPath + "." + recv
		el.EnclosingPublic = ast.IsExported(recv)
	}
	if d.Type.Results != nil && countFields(d.Type.Results) == 1 {
		el.ValueType = qualify(d.Type.Results.List[0].Type, f)
	}
	for _, dir := range dirs {
		el.Pos = dir.pos
		e.mark(f, dir, el)
	}
}

func countFields(fl *ast.FieldList) int {
	if fl == nil {
		return 0
	}
	n := 0
	for _, field := range fl.List {
		if len(field.Names) == 0 {
			n++
		} else {
			n += len(field.Names)
		}
	}
	return n
}

// mark parses a directive, translates its attribute values and files the
// element under its marker.
func (e *Env) mark(f *file, dir directive, el scanner.Element) {
	subject := el.Identity()
	expr, err := parser.ParseExpr(dir.text)
	if err != nil {
		e.report(dir.pos, subject, "malformed "+Directive+" directive: "+err.Error())
		return
	}
	lit, ok := expr.(*ast.CompositeLit)
	if !ok || lit.Type == nil {
		e.report(dir.pos, subject, Directive+" needs a marker composite literal such as pkg.Marker{...}")
		return
	}
	name := qualify(lit.Type, f)
	if name == "" || strings.HasPrefix(name, "*") {
		e.report(dir.pos, subject, "cannot resolve marker type in "+Directive+" directive")
		return
	}
	m, err := e.describe(name)
	if err != nil {
		e.report(dir.pos, subject, err.Error())
		return
	}
	if !e.isIndexableName(name) {
		e.report(dir.pos, subject, name+" is not an indexable marker")
		return
	}
	values, err := e.translateFields(lit, m, f)
	if err != nil {
		e.report(dir.pos, subject, err.Error())
		return
	}
	el.Values = values
	e.elements[name] = append(e.elements[name], el)
}

func (e *Env) isIndexableName(name string) bool {
	td, ok := e.types[name]
	return ok && isIndexable(td)
}
