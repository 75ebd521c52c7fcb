package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Kiiyya/lair/pkg/build"
	lairerrors "github.com/Kiiyya/lair/pkg/errors"
	"github.com/Kiiyya/lair/pkg/pipeline"
)

type buildOpts struct {
	dir      string
	jobs     int
	failFast bool
	noCache  bool
	progress bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{jobs: c.cfg.Jobs, failFast: c.cfg.FailFast}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Resolve dependencies and compile the package",
		Long: `Resolve the package's dependency graph, fetching git and path
dependencies as needed, then compile every package in dependency order.

Compiled artifacts land under build/ttc of each package; dependency
checkouts land under build/deps of the root package.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "C", "", "package directory (default: current directory)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "concurrent build steps (0 = all CPUs)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", opts.failFast, "cancel pending steps after the first failure")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the revision cache")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "show live per-package progress")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, opts buildOpts) error {
	runner := c.newRunner(opts.noCache)
	defer runner.Close()

	popts := c.pipelineOptions(opts.dir)
	popts.Jobs = opts.jobs
	popts.FailFast = opts.failFast

	track := newProgress(c.Logger)

	var res *pipeline.Result
	var err error
	if opts.progress {
		prog := tea.NewProgram(newBuildModel(), tea.WithOutput(os.Stderr))
		popts.Events = &teaSink{prog: prog}
		done := make(chan struct{})
		go func() {
			defer close(done)
			res, err = runner.Build(ctx, popts)
			prog.Send(buildDoneMsg{})
		}()
		if _, uiErr := prog.Run(); uiErr != nil {
			c.Logger.Warn("progress display failed", "err", uiErr)
		}
		// The display can quit before the pipeline returns (ctrl+c or a
		// render error); res and err are only valid once this closes.
		<-done
	} else {
		popts.Events = logSink{logger: c.Logger}
		res, err = runner.Build(ctx, popts)
	}
	if err != nil {
		return err
	}

	out := res.Outcome
	if out.OK() {
		track.done(fmt.Sprintf("Built %d packages", res.Stats.Packages))
		printSuccess("Build succeeded")
		printStats(res.Stats.Packages, res.Stats.Modules)
		return nil
	}

	// Diagnostics for the root causes; skipped packages are listed, not dumped.
	for _, mr := range out.Modules() {
		if mr.Result.OK || out.Status(mr.Package) != build.Failed {
			continue
		}
		printError("%s failed in module %s", mr.Package, mr.Module)
		for _, line := range strings.Split(strings.TrimSpace(mr.Result.Diagnostics), "\n") {
			printDetail("%s", line)
		}
	}
	if aborted := out.Aborted(); len(aborted) > 0 {
		printWarning("skipped: %s", strings.Join(aborted, ", "))
	}

	failed := out.Failed()
	return lairerrors.New(lairerrors.ErrCodeCompileFailed,
		"build failed: %d package(s) did not compile", len(failed))
}

// logSink reports executor events through the structured logger. Used when
// the live progress display is off.
type logSink struct {
	logger *log.Logger
}

func (s logSink) StepChanged(pkg string, status build.Status) {
	s.logger.Debug("build step", "package", pkg, "status", status)
}

func (s logSink) ModuleCompiled(pkg, module string, result build.CompileResult) {
	if result.OK {
		s.logger.Debug("compiled", "package", pkg, "module", module)
		return
	}
	s.logger.Error("compile failed", "package", pkg, "module", module)
}
