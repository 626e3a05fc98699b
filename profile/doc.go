// Package profile provides optional runtime profiling for scopexpr.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag. Without it, [Profiler.Start] returns a no-op and
// [Modes] is empty.
//
//	go build -tags pprof .
//	scopexpr --pprof-mode cpu --scope model.yaml eval 'gear * 2'
//
// Profiles are written to the directory in [Profiler.Path], by default
// $XDG_CACHE_HOME/scopexpr/pprof, as <mode>.pprof.
//
// # Labelling evaluations
//
// [Do] runs a function with a pprof label naming the expression being
// evaluated. CPU samples can then be split per expression:
//
//	go tool pprof -tagfocus='expression=gear * 2' cpu.pprof
//
// Labels are attached regardless of the build tag; they cost one context
// allocation per call.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
