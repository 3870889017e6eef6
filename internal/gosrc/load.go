package gosrc

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	gotypes "go/types"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/tagindex/internal/scanner"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

// CatalogPath is the import path that declares the Indexable meta-marker.
const CatalogPath = "github.com/mesh-intelligence/tagindex/pkg/catalog"

type file struct {
	pkg     Package
	ast     *ast.File
	imports map[string]string // local name to import path
}

type typeDecl struct {
	name string // qualified
	spec *ast.TypeSpec
	file *file
}

// Env is a scanner.Environment backed by parsed Go packages.
type Env struct {
	fset  *token.FileSet
	files []*file

	types map[string]*typeDecl
	check *checker
	local map[string]gotypes.Type // types declared inside function bodies

	markers   map[string]*types.Marker
	failed    map[string]error
	building  map[string]bool
	indexable []scanner.MarkerDecl
	elements  map[string][]scanner.Element
	diags     []scanner.Diagnostic
}

var _ scanner.Environment = (*Env)(nil)

// Load parses and type-checks every non-test Go file of pkgs and indexes
// their markers and marked elements. Syntax errors fail the load; type
// errors only leave gaps in what bounds and enum constants can resolve.
// Problems with individual markers or directives are recorded as
// diagnostics.
func Load(pkgs []Package) (*Env, error) {
	env := &Env{
		fset:     token.NewFileSet(),
		types:    make(map[string]*typeDecl),
		local:    make(map[string]gotypes.Type),
		markers:  make(map[string]*types.Marker),
		failed:   make(map[string]error),
		building: make(map[string]bool),
		elements: make(map[string][]scanner.Element),
	}

	parsed := make([][]*file, len(pkgs))
	var g errgroup.Group
	for i, p := range pkgs {
		g.Go(func() error {
			files, err := env.parsePackage(p)
			parsed[i] = files
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, files := range parsed {
		env.files = append(env.files, files...)
	}

	for _, f := range env.files {
		env.indexDecls(f)
	}
	env.check = newChecker(env.fset, env.files)
	env.check.checkAll()
	env.collectMarkers()
	for _, f := range env.files {
		env.collectElements(f)
	}
	return env, nil
}

func (e *Env) parsePackage(p Package) ([]*file, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading package %s: %w", p.ImportPath, err)
	}
	var out []*file
	for _, entry := range entries {
		if !isSourceFile(entry) {
			continue
		}
		name := filepath.Join(p.Dir, entry.Name())
		af, err := parser.ParseFile(e.fset, name, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}
		out = append(out, &file{pkg: p, ast: af, imports: fileImports(af)})
	}
	return out, nil
}

func fileImports(af *ast.File) map[string]string {
	m := make(map[string]string, len(af.Imports))
	for _, spec := range af.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := path.Base(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		m[name] = p
	}
	return m
}

func (e *Env) indexDecls(f *file) {
	for _, decl := range f.ast.Decls {
		d, ok := decl.(*ast.GenDecl)
		if !ok || d.Tok != token.TYPE {
			continue
		}
		for _, spec := range d.Specs {
			ts := spec.(*ast.TypeSpec)
			q := f.pkg.ImportPath + "." + ts.Name.Name
			e.types[q] = &typeDecl{name: q, spec: ts, file: f}
		}
	}
}

// receiverName strips pointers and type parameters from a receiver type.
func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return ""
	}
}

func (e *Env) collectMarkers() {
	names := make([]string, 0, len(e.types))
	for q, td := range e.types {
		if isIndexable(td) {
			names = append(names, q)
		}
	}
	sort.Strings(names)
	for _, q := range names {
		td := e.types[q]
		pos := e.fset.Position(td.spec.Pos())
		m, err := e.describe(q)
		if err != nil {
			e.report(pos, q, err.Error())
			continue
		}
		e.indexable = append(e.indexable, scanner.MarkerDecl{Marker: m, Pos: pos})
	}
}

func (e *Env) report(pos token.Position, subject, msg string) {
	e.diags = append(e.diags, scanner.Diagnostic{
		Severity: scanner.SeverityError,
		Pos:      pos,
		Subject:  subject,
		Message:  msg,
	})
}

// Markers implements scanner.Environment.
func (e *Env) Markers() []scanner.MarkerDecl {
	return append([]scanner.MarkerDecl(nil), e.indexable...)
}

// Marker implements scanner.Environment. Any struct type in the loaded
// packages can be described, so nested composite markers resolve too.
func (e *Env) Marker(name string) (*types.Marker, bool) {
	m, err := e.describe(name)
	if err != nil {
		return nil, false
	}
	return m, true
}

// Elements implements scanner.Environment.
func (e *Env) Elements(marker string) []scanner.Element {
	return e.elements[marker]
}

// Diagnostics returns the problems found while loading: malformed marker
// declarations and directives that could not be translated.
func (e *Env) Diagnostics() []scanner.Diagnostic {
	return e.diags
}

// Fset returns the file set positions refer to.
func (e *Env) Fset() *token.FileSet {
	return e.fset
}
