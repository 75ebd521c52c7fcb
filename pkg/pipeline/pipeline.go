// Package pipeline provides the core build pipeline for lair.
//
// The pipeline implements the complete manifest → resolve → plan → build
// flow shared by all CLI commands. Centralizing it here keeps the commands
// thin and guarantees that `lair plan`, `lair graph`, and `lair build` all
// see the same resolved world.
//
// # Stages
//
//  1. Manifest: load and validate the root Egg.toml
//  2. Resolve: fetch dependency sources and build the package graph
//  3. Plan: discover modules and compose the ordered build plan
//  4. Build: execute the plan on a worker pool
//
// Each stage can be run independently or as part of the complete pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	defer runner.Close()
//	result, err := runner.Build(ctx, pipeline.Options{Dir: "."})
package pipeline

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Kiiyya/lair/pkg/build"
	"github.com/Kiiyya/lair/pkg/graph"
	"github.com/Kiiyya/lair/pkg/manifest"
	"github.com/Kiiyya/lair/pkg/plan"
)

// DefaultDepsDir is where dependency checkouts land, relative to the
// package root.
var DefaultDepsDir = filepath.Join("build", "deps")

// Options configures a pipeline run.
type Options struct {
	// Dir is the root package directory. Empty means the current directory.
	Dir string

	// DepsDir overrides where dependency sources are checked out.
	// Empty means <Dir>/build/deps.
	DepsDir string

	// Jobs bounds concurrent build steps. Zero means GOMAXPROCS.
	Jobs int

	// FailFast cancels pending steps after the first compile failure.
	FailFast bool

	// Compiler overrides the module compiler. Nil means idris2 on PATH.
	Compiler build.Compiler

	// Events receives build progress notifications. Nil discards them.
	Events build.EventSink
}

// dir returns the effective package root.
func (o Options) dir() string {
	if o.Dir == "" {
		return "."
	}
	return o.Dir
}

// depsDir returns the effective checkout directory.
func (o Options) depsDir() string {
	if o.DepsDir != "" {
		return o.DepsDir
	}
	return filepath.Join(o.dir(), DefaultDepsDir)
}

func (o Options) compiler() build.Compiler {
	if o.Compiler != nil {
		return o.Compiler
	}
	return &build.Idris2{}
}

// Result contains the outputs of a pipeline run. Stages that did not run
// leave their fields nil.
type Result struct {
	Manifest *manifest.Manifest
	Graph    *graph.Graph
	Plan     *plan.Plan
	Outcome  *build.Outcome
	Stats    Stats
}

// Stats contains pipeline execution timing and sizes.
type Stats struct {
	Packages    int
	Modules     int
	ResolveTime time.Duration
	BuildTime   time.Duration
}

// applyLogger returns the runner's logger, never nil.
func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
