package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/scopexpr/lang"
	"github.com/ardnew/scopexpr/log"
)

// Set evaluates an expression and assigns the result to a single name.
type Set struct {
	Target string `arg:"" help:"Name to assign, with optional indices (e.g. 'a.b[1]')" name:"target"`
	Value  string `arg:"" help:"Expression giving the value"                             name:"value"`
	At     string `       help:"Dotted path of the container to assign in"                           placeholder:"PATH" short:"a"`
}

// Run executes the set command. The target is read back after assignment
// and printed.
func (s *Set) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	_, c, err := locate(ctx, s.At)
	if err != nil {
		return err
	}

	attrs := []slog.Attr{
		slog.String("command", "set"),
		slog.String("target", s.Target),
	}

	value, err := lang.New(ctx, s.Value, lang.Strong(c),
		lang.WithLogger(log.Default()))
	if err != nil {
		return lang.WrapError(err).With(attrs...)
	}

	target, err := lang.New(ctx, s.Target, lang.Strong(c),
		lang.WithSingleName(true),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return lang.WrapError(err).With(attrs...)
	}

	v, err := evaluate(ctx, value)
	if err != nil {
		return lang.WrapError(err).With(attrs...)
	}

	if err := target.Set(ctx, v); err != nil {
		return lang.WrapError(err).With(attrs...)
	}

	got, err := evaluate(ctx, target)
	if err != nil {
		return lang.WrapError(err).With(attrs...)
	}

	_, err = fmt.Fprintln(outputFrom(ctx), lang.FormatResult(got))

	return err
}
