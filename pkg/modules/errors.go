package modules

import (
	"fmt"
	"strings"
)

// CycleError reports an import cycle among modules of one package. Unlike
// package-level cycles this has no legitimate resolution and is always
// fatal. Path holds the module identifiers closing the loop, e.g.
// ["Pkg.A", "Pkg.B", "Pkg.A"].
type CycleError struct {
	Package string
	Path    []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle in package %q: %s", e.Package, strings.Join(e.Path, " -> "))
}

// UnknownImportError reports an import that resolves neither to a module of
// the owning package nor to a resolved dependency package.
type UnknownImportError struct {
	Module string // module declaring the import
	Import string // the unresolvable import
}

// Error implements the error interface.
func (e *UnknownImportError) Error() string {
	return fmt.Sprintf("module %s imports %s, which is neither a sibling module nor provided by a declared dependency", e.Module, e.Import)
}
