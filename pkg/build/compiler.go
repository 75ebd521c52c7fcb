package build

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Kiiyya/lair/pkg/graph"
	"github.com/Kiiyya/lair/pkg/modules"
)

// CompileResult is the outcome of compiling one module.
type CompileResult struct {
	OK          bool
	Diagnostics string // compiler output, kept verbatim on failure
}

// Compiler checks a single module. searchPaths holds the artifact
// directories of the already-built dependency packages, in plan order;
// how outputs are located and cached on disk is the compiler's concern.
type Compiler interface {
	Compile(ctx context.Context, pkg *graph.Package, m modules.Module, searchPaths []string) CompileResult
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context, pkg *graph.Package, m modules.Module, searchPaths []string) CompileResult

// Compile implements Compiler.
func (f CompilerFunc) Compile(ctx context.Context, pkg *graph.Package, m modules.Module, searchPaths []string) CompileResult {
	return f(ctx, pkg, m, searchPaths)
}

// ArtifactDir returns where a package's compiled interface files land,
// conventionally <root>/build/ttc.
func ArtifactDir(p *graph.Package) string {
	return filepath.Join(p.Root, "build", "ttc")
}

// Idris2 drives the idris2 binary in check mode. Dependency artifacts are
// exposed through IDRIS2_PATH, and idris2 itself writes this package's
// artifacts under build/ttc relative to the working directory.
type Idris2 struct {
	// Bin is the compiler executable. Empty means "idris2" on PATH.
	Bin string
}

// Compile implements Compiler.
func (c *Idris2) Compile(ctx context.Context, pkg *graph.Package, m modules.Module, searchPaths []string) CompileResult {
	bin := c.Bin
	if bin == "" {
		bin = "idris2"
	}

	rel, err := filepath.Rel(pkg.Root, m.Path)
	if err != nil {
		rel = m.Path
	}

	cmd := exec.CommandContext(ctx, bin, "--check", "--source-dir", modules.SrcDir, rel)
	cmd.Dir = pkg.Root
	sep := string(filepath.ListSeparator)
	cmd.Env = append(cmd.Environ(), "IDRIS2_PATH="+strings.Join(searchPaths, sep))

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		diag := out.String()
		if diag == "" {
			diag = err.Error()
		}
		return CompileResult{OK: false, Diagnostics: diag}
	}
	return CompileResult{OK: true}
}

// Ensure Idris2 implements Compiler.
var _ Compiler = (*Idris2)(nil)
