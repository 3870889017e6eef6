package gosrc

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/token"
	gotypes "go/types"
	"strings"
	"sync"
)

// std imports standard library packages from source. It is shared by every
// Env in the process; the library does not change under a running scan.
var std struct {
	sync.Mutex
	imp gotypes.Importer
}

func importStd(path string) (*gotypes.Package, error) {
	std.Lock()
	defer std.Unlock()
	if std.imp == nil {
		std.imp = importer.ForCompiler(token.NewFileSet(), "source", nil)
	}
	return std.imp.Import(path)
}

func isStdPath(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// checker type-checks the loaded packages from their parsed files. Loaded
// imports resolve to these checks, standard library imports to the source
// importer, and anything else fails. Type errors are swallowed so a package
// with unresolved imports still yields partial information.
type checker struct {
	fset    *token.FileSet
	byPath  map[string][]*ast.File
	checked map[string]*gotypes.Package
	active  map[string]bool
	info    *gotypes.Info
}

func newChecker(fset *token.FileSet, files []*file) *checker {
	c := &checker{
		fset:    fset,
		byPath:  make(map[string][]*ast.File),
		checked: make(map[string]*gotypes.Package),
		active:  make(map[string]bool),
		info:    &gotypes.Info{Defs: make(map[*ast.Ident]gotypes.Object)},
	}
	for _, f := range files {
		c.byPath[f.pkg.ImportPath] = append(c.byPath[f.pkg.ImportPath], f.ast)
	}
	return c
}

// Import implements types.Importer.
func (c *checker) Import(path string) (*gotypes.Package, error) {
	if path == "unsafe" {
		return gotypes.Unsafe, nil
	}
	if p, ok := c.checked[path]; ok {
		return p, nil
	}
	if _, ok := c.byPath[path]; ok {
		return c.check(path)
	}
	if !isStdPath(path) {
		return nil, fmt.Errorf("package %s is not loaded", path)
	}
	p, err := importStd(path)
	if err != nil {
		return nil, err
	}
	c.checked[path] = p
	return p, nil
}

func (c *checker) check(path string) (*gotypes.Package, error) {
	if c.active[path] {
		return nil, fmt.Errorf("import cycle through %s", path)
	}
	c.active[path] = true
	defer delete(c.active, path)

	conf := gotypes.Config{Importer: c, Error: func(error) {}}
	p, _ := conf.Check(path, c.fset, c.byPath[path], c.info)
	c.checked[path] = p
	return p, nil
}

func (c *checker) checkAll() {
	for path := range c.byPath {
		if _, ok := c.checked[path]; !ok {
			_, _ = c.check(path)
		}
	}
}

// lookup returns the package-level object name declared in path, or nil.
func (c *checker) lookup(path, name string) gotypes.Object {
	p, err := c.Import(path)
	if err != nil || p == nil {
		return nil
	}
	return p.Scope().Lookup(name)
}

// resolveType maps a qualified type name back to its checked type. Names
// without a package are predeclared; types declared inside a function body
// are found through the types registered for them while collecting
// elements. It returns nil when the name does not resolve.
func (e *Env) resolveType(q string) gotypes.Type {
	ptrs := 0
	for strings.HasPrefix(q, "*") {
		ptrs++
		q = q[1:]
	}
	var t gotypes.Type
	if lt, ok := e.local[q]; ok {
		t = lt
	} else if i := strings.LastIndex(q, "."); i < 0 {
		if tn, ok := gotypes.Universe.Lookup(q).(*gotypes.TypeName); ok {
			t = tn.Type()
		}
	} else if tn, ok := e.check.lookup(q[:i], q[i+1:]).(*gotypes.TypeName); ok {
		t = tn.Type()
	}
	if t == nil || t == gotypes.Typ[gotypes.Invalid] {
		return nil
	}
	for ; ptrs > 0; ptrs-- {
		t = gotypes.NewPointer(t)
	}
	return t
}
