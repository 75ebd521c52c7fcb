package build

import (
	"github.com/Kiiyya/lair/pkg/plan"
)

// Status is the lifecycle state of one build step.
type Status int

const (
	Pending Status = iota
	Running
	Succeeded
	// Failed means a module in this step did not compile.
	Failed
	// Aborted means a dependency failed (or the run was cancelled)
	// before this step could start; its compiler was never invoked.
	Aborted
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ModuleResult pairs a compiled module with its result.
type ModuleResult struct {
	Package string
	Module  string
	Result  CompileResult
}

// Outcome is the record of one build run. It is assembled after all
// workers have stopped and is safe to read without synchronization.
type Outcome struct {
	// RunID uniquely identifies this run across logs and events.
	RunID string

	plan     *plan.Plan
	statuses []Status
	modules  []ModuleResult
}

// Status reports the final state of the named package, or Pending if
// the package is not part of the plan.
func (o *Outcome) Status(pkg string) Status {
	if i, ok := o.plan.StepIndex(pkg); ok {
		return o.statuses[i]
	}
	return Pending
}

// Modules returns every module result recorded during the run, grouped
// by step in plan order.
func (o *Outcome) Modules() []ModuleResult {
	return o.modules
}

// OK reports whether every step succeeded.
func (o *Outcome) OK() bool {
	for _, s := range o.statuses {
		if s != Succeeded {
			return false
		}
	}
	return true
}

// Failed returns the names of packages whose own modules failed to
// compile, in plan order. Packages skipped because of those failures
// are Aborted, not failed, and are not listed here.
func (o *Outcome) Failed() []string {
	return o.withStatus(Failed)
}

// Aborted returns the names of packages skipped because a dependency
// failed or the run was cancelled, in plan order.
func (o *Outcome) Aborted() []string {
	return o.withStatus(Aborted)
}

func (o *Outcome) withStatus(want Status) []string {
	var names []string
	for i, step := range o.plan.Steps {
		if o.statuses[i] == want {
			names = append(names, step.Package.Name())
		}
	}
	return names
}
