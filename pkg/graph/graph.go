// Package graph constructs the package dependency graph.
//
// Starting from a root manifest, the [Builder] follows dependency edges,
// fetching and parsing each newly encountered package, and links the results
// into an acyclic [Graph]. Construction is fail-fast: the first conflict,
// cycle, or fetch failure aborts with full context and no partial graph.
package graph

import (
	"github.com/Kiiyya/lair/pkg/dag"
	"github.com/Kiiyya/lair/pkg/manifest"
)

// Package is one resolved node of the dependency graph. Packages are
// immutable once Resolve returns.
type Package struct {
	// Manifest is the parsed Egg.toml of this package.
	Manifest *manifest.Manifest

	// Root is the local directory holding the package's source tree.
	Root string

	// Revision pins what was fetched (commit hash, or "local").
	Revision string

	// Deps holds dependency package names in declaration order.
	Deps []string

	// sourceKey is the identity of the source descriptor that produced
	// this node, used for conflict detection.
	sourceKey string

	// Source is the descriptor this package was fetched from.
	// Nil for the root package, which is never fetched.
	Source manifest.Source
}

// Name returns the package identity.
func (p *Package) Name() string { return p.Manifest.Name }

// Graph is the resolved, acyclic package graph. The arena maps package
// names to nodes; edges live on each node as name lists, so the structure
// holds no cyclic pointers.
type Graph struct {
	root     string
	packages map[string]*Package
	order    []string // discovery order, root first
}

func newGraph(root *Package) *Graph {
	g := &Graph{
		root:     root.Name(),
		packages: make(map[string]*Package),
	}
	g.add(root)
	return g
}

func (g *Graph) add(p *Package) {
	g.packages[p.Name()] = p
	g.order = append(g.order, p.Name())
}

// Root returns the root package.
func (g *Graph) Root() *Package { return g.packages[g.root] }

// Package returns the named package and true, or nil and false.
func (g *Graph) Package(name string) (*Package, bool) {
	p, ok := g.packages[name]
	return p, ok
}

// Packages returns all packages in discovery order, root first.
// Discovery order follows depth-first traversal of declaration order, so it
// is identical across runs over the same manifests.
func (g *Graph) Packages() []*Package {
	pkgs := make([]*Package, 0, len(g.order))
	for _, name := range g.order {
		pkgs = append(pkgs, g.packages[name])
	}
	return pkgs
}

// Len returns the number of resolved packages.
func (g *Graph) Len() int { return len(g.packages) }

// DAG projects the package graph onto a [dag.DAG], with one node per
// package (carrying version and revision metadata) and one edge per
// dependency, A -> B meaning A depends on B. Node insertion follows
// discovery order, so downstream ordering is deterministic.
func (g *Graph) DAG() *dag.DAG {
	d := dag.New()
	for _, p := range g.Packages() {
		_ = d.AddNode(dag.Node{ID: p.Name(), Meta: dag.Metadata{
			"version":  p.Manifest.Version,
			"revision": p.Revision,
		}})
	}
	for _, p := range g.Packages() {
		for _, dep := range p.Deps {
			_ = d.AddEdge(dag.Edge{From: p.Name(), To: dep})
		}
	}
	return d
}
