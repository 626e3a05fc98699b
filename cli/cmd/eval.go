package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/scopexpr/lang"
	"github.com/ardnew/scopexpr/log"
	"github.com/ardnew/scopexpr/profile"
)

// Eval evaluates an expression in a container of the scope tree.
type Eval struct {
	Expr string `arg:"" help:"Expression to evaluate, optionally assigning with '='" name:"expr"`
	At   string `       help:"Dotted path of the container to evaluate in"                      placeholder:"PATH" short:"a"`
	Lazy bool   `       help:"Check parent names when evaluating instead of when compiling"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	_, c, err := locate(ctx, e.At)
	if err != nil {
		return err
	}

	x, err := lang.New(ctx, e.Expr, lang.Strong(c),
		lang.WithLazyCheck(e.Lazy),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "eval"))
	}

	result, err := evaluate(ctx, x)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "eval"),
			slog.String("at", c.Path()),
		)
	}

	_, err = fmt.Fprintln(outputFrom(ctx), lang.FormatResult(result))

	return err
}

// evaluate runs x with a pprof label naming its text.
func evaluate(ctx context.Context, x *lang.Expression) (result any, err error) {
	profile.Do(ctx, x.Text(), func(ctx context.Context) {
		result, err = x.Evaluate(ctx)
	})

	return result, err
}
