package build

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Kiiyya/lair/pkg/plan"
)

// Options configures an Executor.
type Options struct {
	// Workers bounds concurrent steps. Zero means GOMAXPROCS.
	Workers int
	// FailFast cancels pending steps after the first failure instead of
	// letting unrelated branches run to completion. In-flight compiles
	// are allowed to finish either way.
	FailFast bool
	// Events receives progress notifications. Nil discards them.
	Events EventSink
	Logger *log.Logger
}

// Executor runs a build plan on a bounded worker pool. Steps become
// eligible as soon as every step they depend on has succeeded; a failed
// step marks all of its transitive dependents as Aborted without ever
// invoking the compiler for them.
type Executor struct {
	workers  int
	failFast bool
	events   EventSink
	log      *log.Logger
}

func NewExecutor(opts Options) *Executor {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	events := opts.Events
	if events == nil {
		events = discardSink{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{
		workers:  workers,
		failFast: opts.FailFast,
		events:   events,
		log:      logger,
	}
}

// stepRun is the mutable per-step state of one run. status and modules
// are written by exactly one worker (under done) and read only after
// every worker has finished.
type stepRun struct {
	remaining  atomic.Int32
	done       sync.Once
	modules    []ModuleResult
	dependents []int
}

// Execute compiles every step of the plan and reports the run outcome.
// Execute itself never returns an error: compile failures, skipped
// steps, and cancellation are all recorded per package in the Outcome.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan, c Compiler) *Outcome {
	n := len(p.Steps)
	out := &Outcome{
		RunID:    uuid.NewString(),
		plan:     p,
		statuses: make([]Status, n),
	}
	if n == 0 {
		return out
	}

	// gate only stops new steps and modules from starting; the parent ctx
	// is what compilers see, so in-flight compiles run to completion and
	// never leave half-written artifacts behind.
	gate, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := e.log.With("run", out.RunID)
	logger.Debug("starting build", "steps", n, "workers", e.workers)

	steps := make([]stepRun, n)
	for i, s := range p.Steps {
		steps[i].remaining.Store(int32(len(s.DependsOn)))
		for _, d := range s.DependsOn {
			steps[d].dependents = append(steps[d].dependents, i)
		}
	}
	paths := searchPaths(p)

	ready := make(chan int, n)
	var wg sync.WaitGroup
	wg.Add(n)

	// finish records a step's terminal state exactly once and either
	// releases or aborts its dependents.
	var finish func(i int, status Status)
	finish = func(i int, status Status) {
		st := &steps[i]
		st.done.Do(func() {
			out.statuses[i] = status
			e.events.StepChanged(p.Steps[i].Package.Name(), status)
			if status == Succeeded {
				for _, d := range st.dependents {
					if steps[d].remaining.Add(-1) == 0 {
						ready <- d
					}
				}
			} else {
				for _, d := range st.dependents {
					finish(d, Aborted)
				}
			}
			wg.Done()
		})
	}

	for i, s := range p.Steps {
		if len(s.DependsOn) == 0 {
			ready <- i
		}
	}

	for w := 0; w < e.workers; w++ {
		go func() {
			for i := range ready {
				e.runStep(ctx, gate, p, c, &steps[i], paths[i], i, finish, cancel, logger)
			}
		}()
	}

	wg.Wait()
	close(ready)

	for i := range steps {
		out.modules = append(out.modules, steps[i].modules...)
	}
	logger.Debug("build finished", "failed", len(out.Failed()), "aborted", len(out.Aborted()))
	return out
}

func (e *Executor) runStep(
	ctx context.Context,
	gate context.Context,
	p *plan.Plan,
	c Compiler,
	st *stepRun,
	searchPaths []string,
	i int,
	finish func(int, Status),
	cancel context.CancelFunc,
	logger *log.Logger,
) {
	step := p.Steps[i]
	name := step.Package.Name()

	if gate.Err() != nil {
		finish(i, Aborted)
		return
	}

	e.events.StepChanged(name, Running)
	logger.Info("compiling", "package", name, "modules", len(step.Modules))

	failed := false
	cancelled := false
	for _, m := range step.Modules {
		if gate.Err() != nil {
			cancelled = true
			break
		}
		res := c.Compile(ctx, step.Package, m, searchPaths)
		st.modules = append(st.modules, ModuleResult{
			Package: name,
			Module:  m.ID,
			Result:  res,
		})
		e.events.ModuleCompiled(name, m.ID, res)
		if !res.OK {
			// A compile killed by the run being cancelled is not a true
			// failure; only genuine compile errors mark the step Failed.
			if ctx.Err() != nil {
				cancelled = true
				break
			}
			// First failure settles the step; later modules would only
			// report cascading errors.
			logger.Error("compile failed", "package", name, "module", m.ID)
			failed = true
			break
		}
	}

	switch {
	case failed:
		finish(i, Failed)
		if e.failFast {
			cancel()
		}
	case cancelled:
		finish(i, Aborted)
	default:
		finish(i, Succeeded)
	}
}

// searchPaths precomputes, per step, the artifact directories of its
// transitive dependencies in plan order. Dependency indices always
// precede the step's own, so one forward pass suffices.
func searchPaths(p *plan.Plan) [][]string {
	n := len(p.Steps)
	closures := make([][]bool, n)
	paths := make([][]string, n)
	for i, s := range p.Steps {
		in := make([]bool, n)
		for _, d := range s.DependsOn {
			in[d] = true
			for j, ok := range closures[d] {
				if ok {
					in[j] = true
				}
			}
		}
		closures[i] = in
		for j := 0; j < i; j++ {
			if in[j] {
				paths[i] = append(paths[i], ArtifactDir(p.Steps[j].Package))
			}
		}
	}
	return paths
}
