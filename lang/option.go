package lang

import "github.com/ardnew/scopexpr/log"

// Option configures an [Expression].
type Option func(*Expression)

// WithSingleName restricts the expression to a single path with optional
// indices, making it assignable through [Expression.Set].
func WithSingleName(single bool) Option {
	return func(e *Expression) { e.singleName = single }
}

// WithLazyCheck defers unresolved foreign names from the time the text is
// set to the time the expression is evaluated.
func WithLazyCheck(lazy bool) Option {
	return func(e *Expression) { e.lazyCheck = lazy }
}

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(e *Expression) { e.logger = logger }
}

func applyOptions(e *Expression, opts ...Option) {
	for _, opt := range opts {
		opt(e)
	}
}
