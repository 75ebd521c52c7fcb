package graph

import (
	"fmt"
	"strings"

	"github.com/Kiiyya/lair/pkg/manifest"
)

// ConflictError reports two dependency edges naming the same package with
// different source descriptors. Only one source per package name is allowed
// in a resolved graph.
type ConflictError struct {
	Name string
	A, B manifest.Source // A is the descriptor already in the graph; B the conflicting one
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting sources for package %q: %s vs %s", e.Name, describe(e.A), describe(e.B))
}

// describe renders a source for diagnostics; the root package has none.
func describe(s manifest.Source) string {
	if s == nil {
		return "<workspace root>"
	}
	return s.String()
}

// CycleError reports a dependency cycle. Path holds the package identities
// from the root down to the repeated package, inclusive, e.g. ["A", "B", "A"].
type CycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Path, " -> ")
}

// FetchFailedError reports that resolving a dependency's source failed.
// It wraps the fetcher's error (typically a *source.Error).
type FetchFailedError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("failed to fetch dependency %q: %v", e.Name, e.Err)
}

// Unwrap returns the underlying fetch error.
func (e *FetchFailedError) Unwrap() error { return e.Err }
