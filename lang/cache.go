package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/scopexpr/log"
)

// globalCache stores compiled programs keyed by the hash of their rewritten
// text. Expressions that rewrite to the same text share one program.
var globalCache sync.Map

// cached is a program with the text it was compiled from, kept to reject
// hash collisions.
type cached struct {
	program *vm.Program
	text    string
}

func lookupProgram(
	ctx context.Context,
	text string,
	logger log.Logger,
) (*vm.Program, bool) {
	key := xxh3.HashString(text)

	value, ok := globalCache.Load(key)
	if ok {
		entry, _ := value.(cached)
		ok = entry.program != nil && entry.text == text

		if ok {
			logger.TraceContext(ctx, "cache lookup",
				slog.String("source_hash", strconv.FormatUint(key, 16)),
				slog.Bool("cache_hit", true),
			)

			return entry.program, true
		}
	}

	logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(key, 16)),
		slog.Bool("cache_hit", false),
	)

	return nil, false
}

func storeProgram(text string, program *vm.Program) {
	globalCache.Store(xxh3.HashString(text), cached{program: program, text: text})
}

// CacheLen returns the number of compiled programs currently cached.
func CacheLen() int {
	n := 0

	globalCache.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

// ClearCache removes all cached programs.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
