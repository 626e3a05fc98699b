package profile

import (
	"context"
	"runtime/pprof"
)

// Profiler describes one profiling session.
type Profiler struct {
	Mode  string // One of [Modes]; empty disables profiling
	Path  string // Output directory, or the pkg/profile default if empty
	Quiet bool   // Suppress the session start and stop messages
}

// Start begins profiling and returns a value whose Stop method ends it.
//
// If the pprof build tag is unset, or p.Mode is empty or unknown, Start
// returns a no-op. Stop is always safely callable.
func (p Profiler) Start() interface{ Stop() } {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p.Mode, p.Path, p.Quiet)
}

// Enabled reports whether the binary was built with profiling support.
func Enabled() bool { return len(Modes()) > 0 }

// Do calls fn with ctx labelled by the expression text, so samples taken
// while fn runs are attributed to that expression in CPU profiles.
func Do(ctx context.Context, expression string, fn func(context.Context)) {
	pprof.Do(ctx, pprof.Labels(LabelExpression, expression), fn)
}

// LabelExpression is the pprof label key set by [Do].
const LabelExpression = "expression"

type ignore struct{}

func (ignore) Stop() {}
