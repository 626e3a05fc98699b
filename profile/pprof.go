//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the sorted profiling modes. The special mode "quiet" is
// omitted from the list.
var Modes = sync.OnceValue(
	func() []string {
		m := maps.Clone(mode)
		delete(m, "quiet")

		return slices.Sorted(maps.Keys(m))
	},
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
	"quiet":     profile.Quiet,
}

// option adds one setting to a session.
type option func([]func(*profile.Profile)) []func(*profile.Profile)

func start(m, path string, quiet bool) interface{ Stop() } {
	fn, ok := mode[m]
	if !ok || m == "quiet" {
		return ignore{}
	}

	settings := []func(*profile.Profile){fn, profile.NoShutdownHook}

	for _, opt := range []option{withPath(path), withQuiet(quiet)} {
		settings = opt(settings)
	}

	return profile.Start(settings...)
}

func withPath(p string) option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if p != "" {
			s = append(s, profile.ProfilePath(p))
		}

		return s
	}
}

func withQuiet(v bool) option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if v {
			s = append(s, profile.Quiet)
		}

		return s
	}
}
