// Package modules discovers the compilable modules of a package and orders
// them by their intra-package imports.
//
// A module is a single .idr source file under the package's src/ directory,
// identified by its namespace: src/A.idr in package Pkg is Pkg.A (the root
// namespace follows the package name), src/Pkg/Sub/B.idr is Pkg.Sub.B.
// Imports of sibling modules constrain the compile order; imports whose head
// segment names another package are validated against the package's resolved
// dependency set and ordered by the package-level plan instead.
package modules

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Kiiyya/lair/pkg/dag"
	lairerrors "github.com/Kiiyya/lair/pkg/errors"
	"github.com/Kiiyya/lair/pkg/graph"
)

// SrcDir is the conventional source directory under a package root.
const SrcDir = "src"

// Module is one compilable source file.
// Modules are immutable once discovery returns.
type Module struct {
	// ID is the namespaced identifier, e.g. "Pkg.Data.List".
	ID string

	// Path is the source file location on disk.
	Path string

	// Imports holds the declared imports, in declaration order.
	Imports []string
}

// Discover derives the package's module set and returns it in compile
// order: if module M imports sibling module N, N precedes M. Ties are
// broken by module ID, so the order is deterministic.
//
// Returns a *CycleError for same-package import cycles and an
// *UnknownImportError for imports that resolve to neither a sibling nor a
// declared dependency.
func Discover(p *graph.Package) ([]Module, error) {
	mods, err := scan(p)
	if err != nil {
		return nil, err
	}
	return order(p, mods)
}

// scan walks src/ and parses every module's imports.
func scan(p *graph.Package) ([]Module, error) {
	srcRoot := filepath.Join(p.Root, SrcDir)
	if _, err := os.Stat(srcRoot); err != nil {
		if os.IsNotExist(err) {
			return nil, lairerrors.New(lairerrors.ErrCodeInvalidPackage,
				"package %q has no %s directory at %s", p.Name(), SrcDir, p.Root)
		}
		return nil, err
	}

	var mods []Module
	err := filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".idr") {
			return nil
		}

		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		imports, err := parseImports(f)
		f.Close()
		if err != nil {
			return err
		}

		mods = append(mods, Module{
			ID:      moduleID(p.Name(), rel),
			Path:    path,
			Imports: imports,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(mods, func(a, b Module) int { return strings.Compare(a.ID, b.ID) })
	return mods, nil
}

// moduleID maps a source path relative to src/ onto its namespace. The
// package name is the root namespace: a file already nested under a
// directory named like the package keeps its path namespace, everything
// else is prefixed.
func moduleID(pkg, rel string) string {
	id := strings.TrimSuffix(rel, ".idr")
	id = strings.ReplaceAll(id, string(filepath.Separator), ".")
	if id == pkg || strings.HasPrefix(id, pkg+".") {
		return id
	}
	return pkg + "." + id
}

// order topologically sorts the modules by their intra-package imports and
// validates cross-package imports against the resolved dependency set.
func order(p *graph.Package, mods []Module) ([]Module, error) {
	byID := make(map[string]Module, len(mods))
	g := dag.New()
	for _, m := range mods {
		byID[m.ID] = m
		if err := g.AddNode(dag.Node{ID: m.ID}); err != nil {
			return nil, err
		}
	}

	deps := make(map[string]bool, len(p.Deps))
	for _, d := range p.Deps {
		deps[d] = true
	}

	for _, m := range mods {
		for _, imp := range m.Imports {
			if _, sibling := byID[imp]; sibling {
				if err := g.AddEdge(dag.Edge{From: m.ID, To: imp}); err != nil {
					return nil, err
				}
				continue
			}
			if !deps[head(imp)] {
				return nil, &UnknownImportError{Module: m.ID, Import: imp}
			}
			// Cross-package import: ordered by the package-level plan,
			// not within this package's module graph.
		}
	}

	sorted, err := g.TopoSort()
	if err != nil {
		var ce *dag.CycleError
		if errors.As(err, &ce) {
			return nil, &CycleError{Package: p.Name(), Path: ce.Path}
		}
		return nil, err
	}

	ordered := make([]Module, len(sorted))
	for i, id := range sorted {
		ordered[i] = byID[id]
	}
	return ordered, nil
}

// head returns the first segment of a namespaced identifier.
func head(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}
