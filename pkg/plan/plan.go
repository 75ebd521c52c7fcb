// Package plan composes the executable build plan from a resolved package
// graph: a dependencies-first total order over packages, each carrying its
// modules in intra-package compile order.
package plan

import (
	"github.com/Kiiyya/lair/pkg/graph"
	"github.com/Kiiyya/lair/pkg/modules"
)

// Step is one package's position and workload within the plan.
type Step struct {
	// Package being built in this step.
	Package *graph.Package

	// Modules in compile order.
	Modules []modules.Module

	// DependsOn holds indices of earlier steps this step depends on,
	// in the package's dependency declaration order. Every index is
	// strictly smaller than this step's own index.
	DependsOn []int
}

// Plan is the fully ordered, executable sequence of build steps.
// Plans are immutable once composed.
type Plan struct {
	Steps []Step

	index map[string]int // package name -> step index
}

// StepIndex returns the plan position of the named package and true, or -1
// and false if the package is not in the plan.
func (p *Plan) StepIndex(name string) (int, bool) {
	i, ok := p.index[name]
	if !ok {
		return -1, false
	}
	return i, true
}

// Discoverer derives a package's ordered module sequence.
// Its standard implementation is [modules.Discover].
type Discoverer func(*graph.Package) ([]modules.Module, error)

// Compose produces the build plan for a resolved graph.
//
// Packages are ordered topologically, dependencies first; ties among
// mutually-independent packages are broken by discovery order (declaration
// order in the nearest dependent's manifest), so two runs over the same
// graph produce the same plan. The discoverer runs once per package in
// that order.
//
// Any dependency cycle would have been rejected during resolution, so a
// cycle here indicates graph corruption and surfaces as the DAG's error.
func Compose(g *graph.Graph, discover Discoverer) (*Plan, error) {
	if discover == nil {
		discover = modules.Discover
	}

	order, err := g.DAG().TopoSort()
	if err != nil {
		return nil, err
	}

	p := &Plan{index: make(map[string]int, len(order))}
	for i, name := range order {
		p.index[name] = i
	}

	for _, name := range order {
		pkg, _ := g.Package(name)
		mods, err := discover(pkg)
		if err != nil {
			return nil, err
		}

		deps := make([]int, 0, len(pkg.Deps))
		for _, dep := range pkg.Deps {
			deps = append(deps, p.index[dep])
		}
		p.Steps = append(p.Steps, Step{Package: pkg, Modules: mods, DependsOn: deps})
	}

	return p, nil
}
