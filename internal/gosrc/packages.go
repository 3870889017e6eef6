// Package gosrc builds a scanner environment from Go source files.
//
// Marker types are struct types carrying a blank catalog.Indexable field.
// Elements are marked with a directive in their doc comment:
//
//	//tagindex:mark menu.Item{Title: "Exit", Weight: 10}
//	type ExitAction struct{}
//
// Only syntax is inspected. Type names are qualified through each file's
// imports, and method sets for assignability checks come from the loaded
// packages alone.
package gosrc

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// Package is one directory of Go files and its import path.
type Package struct {
	Dir        string
	ImportPath string
}

// ResolvePackages maps directories to packages using the nearest go.mod.
// A directory ending in "/..." expands to every package directory below it.
func ResolvePackages(dirs []string) ([]Package, error) {
	var out []Package
	seen := make(map[string]bool)
	for _, d := range dirs {
		expanded, err := expand(d)
		if err != nil {
			return nil, err
		}
		for _, dir := range expanded {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, err
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true
			ip, err := importPath(abs)
			if err != nil {
				return nil, err
			}
			out = append(out, Package{Dir: abs, ImportPath: ip})
		}
	}
	return out, nil
}

func expand(dir string) ([]string, error) {
	root, ok := strings.CutSuffix(filepath.ToSlash(dir), "/...")
	if !ok {
		return []string{dir}, nil
	}
	if root == "" || root == "." {
		root = "."
	}
	var out []string
	err := filepath.WalkDir(filepath.FromSlash(root), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != filepath.FromSlash(root) && (name == "testdata" || name == "vendor" ||
			strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return filepath.SkipDir
		}
		if hasGoFiles(p) {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if isSourceFile(e) {
			return true
		}
	}
	return false
}

func isSourceFile(e fs.DirEntry) bool {
	name := e.Name()
	return !e.IsDir() && strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}

// importPath walks up from dir to the enclosing module.
func importPath(dir string) (string, error) {
	for cur := dir; ; {
		data, err := os.ReadFile(filepath.Join(cur, "go.mod"))
		if err == nil {
			mod := modfile.ModulePath(data)
			if mod == "" {
				return "", fmt.Errorf("%s: go.mod has no module line", cur)
			}
			rel, err := filepath.Rel(cur, dir)
			if err != nil {
				return "", err
			}
			if rel == "." {
				return mod, nil
			}
			return path.Join(mod, filepath.ToSlash(rel)), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("%s: no go.mod found", dir)
		}
		cur = parent
	}
}
