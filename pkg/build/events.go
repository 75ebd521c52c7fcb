package build

// EventSink receives build progress notifications. The executor calls
// sinks from worker goroutines, so implementations must be safe for
// concurrent use.
type EventSink interface {
	// StepChanged fires once per step state transition.
	StepChanged(pkg string, status Status)
	// ModuleCompiled fires after each module of a running step.
	ModuleCompiled(pkg, module string, result CompileResult)
}

type discardSink struct{}

func (discardSink) StepChanged(string, Status) {}

func (discardSink) ModuleCompiled(string, string, CompileResult) {}
