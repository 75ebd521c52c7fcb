package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Kiiyya/lair/pkg/build"
	"github.com/Kiiyya/lair/pkg/cache"
	"github.com/Kiiyya/lair/pkg/graph"
	"github.com/Kiiyya/lair/pkg/manifest"
	"github.com/Kiiyya/lair/pkg/plan"
	"github.com/Kiiyya/lair/pkg/source"
)

// Runner executes pipeline stages with shared infrastructure.
type Runner struct {
	// Cache persists resolved git revisions across runs. Nil disables
	// persistence; checkouts on disk are still reused.
	Cache cache.Cache

	// Logger for progress reporting.
	Logger *log.Logger

	// Fetcher overrides source fetching, mainly for tests. Nil builds a
	// source.Resolver per run.
	Fetcher source.Fetcher
}

// NewRunner creates a pipeline runner. A nil cache disables revision
// persistence, a nil logger falls back to log.Default().
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	return &Runner{Cache: c, Logger: logger}
}

// Manifest loads the root package manifest from the directory in opts.
func (r *Runner) Manifest(opts Options) (*manifest.Manifest, error) {
	return manifest.LoadDir(opts.dir())
}

// Resolve loads the root manifest and builds the full dependency graph,
// fetching sources as needed.
func (r *Runner) Resolve(ctx context.Context, opts Options) (*graph.Graph, error) {
	root, err := r.Manifest(opts)
	if err != nil {
		return nil, err
	}

	fetcher := r.Fetcher
	if fetcher == nil {
		fetcher = source.NewResolver(source.Options{
			DepsDir:   opts.depsDir(),
			BaseDir:   opts.dir(),
			Revisions: r.Cache,
		})
	}

	b := &graph.Builder{Fetcher: fetcher, Logger: r.logger()}
	return b.Resolve(ctx, root, opts.dir())
}

// Plan resolves the graph and composes the ordered build plan.
func (r *Runner) Plan(ctx context.Context, opts Options) (*plan.Plan, *graph.Graph, error) {
	g, err := r.Resolve(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	p, err := plan.Compose(g, nil)
	if err != nil {
		return nil, nil, err
	}
	return p, g, nil
}

// Build runs the complete pipeline and returns the populated result.
// Compile failures do not surface as an error; inspect Result.Outcome.
func (r *Runner) Build(ctx context.Context, opts Options) (*Result, error) {
	logger := r.logger()

	start := time.Now()
	p, g, err := r.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	resolveTime := time.Since(start)

	moduleCount := 0
	for _, s := range p.Steps {
		moduleCount += len(s.Modules)
	}
	logger.Debug("plan composed",
		"packages", g.Len(),
		"modules", moduleCount,
		"elapsed", resolveTime.Round(time.Millisecond))

	exec := build.NewExecutor(build.Options{
		Workers:  opts.Jobs,
		FailFast: opts.FailFast,
		Events:   opts.Events,
		Logger:   logger,
	})

	start = time.Now()
	outcome := exec.Execute(ctx, p, opts.compiler())

	return &Result{
		Manifest: g.Root().Manifest,
		Graph:    g,
		Plan:     p,
		Outcome:  outcome,
		Stats: Stats{
			Packages:    g.Len(),
			Modules:     moduleCount,
			ResolveTime: resolveTime,
			BuildTime:   time.Since(start),
		},
	}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
