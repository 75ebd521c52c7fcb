package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/Kiiyya/lair/pkg/build"
	"github.com/Kiiyya/lair/pkg/graph"
	"github.com/Kiiyya/lair/pkg/modules"
)

// writeWorkspace lays out an App package depending on a sibling Lib
// package through a path dependency.
func writeWorkspace(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(base, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	write("app/Egg.toml", `
[package]
name = "App"
version = "0.1.0"

[dependencies.Lib]
path = "../lib"
`)
	write("app/src/Main.idr", "module Main\n\nimport Lib.Core\n")
	write("lib/Egg.toml", `
[package]
name = "Lib"
version = "1.0.0"
`)
	write("lib/src/Core.idr", "module Core\n")

	return filepath.Join(base, "app")
}

// recordingCompiler succeeds every module and records the order.
type recordingCompiler struct {
	mu   sync.Mutex
	seen []string
	fail string // module ID to fail, if any
}

func (c *recordingCompiler) Compile(_ context.Context, _ *graph.Package, m modules.Module, _ []string) build.CompileResult {
	c.mu.Lock()
	c.seen = append(c.seen, m.ID)
	c.mu.Unlock()
	if m.ID == c.fail {
		return build.CompileResult{Diagnostics: "boom"}
	}
	return build.CompileResult{OK: true}
}

func TestRunnerBuild(t *testing.T) {
	dir := writeWorkspace(t)
	r := NewRunner(nil, nil)
	defer r.Close()

	c := &recordingCompiler{}
	res, err := r.Build(context.Background(), Options{Dir: dir, Jobs: 1, Compiler: c})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if !res.Outcome.OK() {
		t.Fatalf("build failed: %v", res.Outcome.Failed())
	}
	if res.Manifest.Name != "App" {
		t.Errorf("root manifest = %q", res.Manifest.Name)
	}
	if res.Stats.Packages != 2 || res.Stats.Modules != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if want := []string{"Lib.Core", "App.Main"}; !slices.Equal(c.seen, want) {
		t.Errorf("compile order = %v, want %v", c.seen, want)
	}
}

func TestRunnerBuildFailure(t *testing.T) {
	dir := writeWorkspace(t)
	r := NewRunner(nil, nil)
	defer r.Close()

	c := &recordingCompiler{fail: "App.Main"}
	res, err := r.Build(context.Background(), Options{Dir: dir, Compiler: c})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if res.Outcome.OK() {
		t.Fatal("expected a failed outcome")
	}
	if got := res.Outcome.Failed(); !slices.Equal(got, []string{"App"}) {
		t.Errorf("Failed() = %v, want [App]", got)
	}
	if got := res.Outcome.Status("Lib"); got != build.Succeeded {
		t.Errorf("Status(Lib) = %v, want succeeded", got)
	}
}

func TestRunnerPlan(t *testing.T) {
	dir := writeWorkspace(t)
	r := NewRunner(nil, nil)
	defer r.Close()

	p, g, err := r.Plan(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if g.Len() != 2 || len(p.Steps) != 2 {
		t.Fatalf("packages = %d, steps = %d", g.Len(), len(p.Steps))
	}
	if p.Steps[0].Package.Name() != "Lib" || p.Steps[1].Package.Name() != "App" {
		t.Errorf("plan order = [%s %s]", p.Steps[0].Package.Name(), p.Steps[1].Package.Name())
	}
}

func TestRunnerManifestMissing(t *testing.T) {
	r := NewRunner(nil, nil)
	if _, err := r.Manifest(Options{Dir: t.TempDir()}); err == nil {
		t.Error("expected an error for a directory without a manifest")
	}
}
