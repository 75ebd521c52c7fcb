package graph

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/Kiiyya/lair/pkg/errors"
	"github.com/Kiiyya/lair/pkg/manifest"
	"github.com/Kiiyya/lair/pkg/source"
)

// visitState tracks traversal progress per package. InProgress marks nodes
// on the current DFS branch; hitting one again means a cycle.
type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

// Builder resolves a root manifest into a package [Graph].
type Builder struct {
	// Fetcher materializes dependency sources.
	Fetcher source.Fetcher

	// Parse reads a package manifest from a checked-out root directory.
	// Nil defaults to manifest.LoadDir.
	Parse func(root string) (*manifest.Manifest, error)

	// Logger receives per-package progress. Nil disables logging.
	Logger *log.Logger
}

// frame is one entry of the explicit traversal stack: a package plus a
// cursor into its dependency list. Using an explicit stack keeps traversal
// depth independent of the call stack for deep dependency chains.
type frame struct {
	pkg  *Package
	next int
}

// Resolve builds the dependency graph reachable from the root manifest.
// rootDir is the directory containing the root package's source tree.
//
// The traversal is depth-first over declaration order. For each edge it
// either links an existing node (same name, same source), fails with a
// *ConflictError (same name, different source), fails with a *CycleError
// (edge back into the current branch), or fetches, parses, and descends
// into a new package. Any error aborts construction immediately.
func (b *Builder) Resolve(ctx context.Context, root *manifest.Manifest, rootDir string) (*Graph, error) {
	parse := b.Parse
	if parse == nil {
		parse = manifest.LoadDir
	}

	rootPkg := &Package{
		Manifest:  root,
		Root:      rootDir,
		Revision:  source.LocalRevision,
		sourceKey: "root:" + root.Name,
	}
	g := newGraph(rootPkg)

	states := map[string]visitState{root.Name: inProgress}
	stack := []*frame{{pkg: rootPkg}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f := stack[len(stack)-1]
		deps := f.pkg.Manifest.Dependencies
		if f.next >= len(deps) {
			states[f.pkg.Name()] = done
			stack = stack[:len(stack)-1]
			continue
		}
		dep := deps[f.next]
		f.next++

		if existing, ok := g.Package(dep.Name); ok {
			// The cycle check comes first: an edge back into the current
			// branch is a cycle even when the descriptor also disagrees
			// (the chain is the dominant diagnosis).
			if states[dep.Name] == inProgress {
				return nil, &CycleError{Path: cyclePath(stack, dep.Name)}
			}
			if existing.sourceKey != dep.Source.Key() {
				return nil, &ConflictError{Name: dep.Name, A: existing.Source, B: dep.Source}
			}
			// Already resolved: link, do not refetch or re-descend.
			f.pkg.Deps = appendDep(f.pkg.Deps, dep.Name)
			continue
		}

		if b.Logger != nil {
			b.Logger.Debug("fetching dependency", "package", dep.Name, "source", dep.Source.String())
		}
		co, err := b.Fetcher.Fetch(ctx, dep.Name, dep.Source)
		if err != nil {
			return nil, &FetchFailedError{Name: dep.Name, Err: err}
		}

		man, err := parse(co.Root)
		if err != nil {
			return nil, err
		}
		if man.Name != dep.Name {
			return nil, errors.New(errors.ErrCodeInvalidPackage,
				"dependency %q resolves to a package named %q", dep.Name, man.Name)
		}

		pkg := &Package{
			Manifest:  man,
			Root:      co.Root,
			Revision:  co.Revision,
			Source:    dep.Source,
			sourceKey: dep.Source.Key(),
		}
		g.add(pkg)
		f.pkg.Deps = appendDep(f.pkg.Deps, dep.Name)
		states[dep.Name] = inProgress
		stack = append(stack, &frame{pkg: pkg})
	}

	return g, nil
}

// cyclePath renders the identity chain from the root to the repeated
// package, inclusive.
func cyclePath(stack []*frame, repeat string) []string {
	path := make([]string, 0, len(stack)+1)
	for _, f := range stack {
		path = append(path, f.pkg.Name())
	}
	return append(path, repeat)
}

func appendDep(deps []string, name string) []string {
	if slices.Contains(deps, name) {
		return deps
	}
	return append(deps, name)
}
