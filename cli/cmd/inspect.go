package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/scopexpr/lang"
	"github.com/ardnew/scopexpr/log"
)

// Inspect prints how an expression is translated without evaluating it.
type Inspect struct {
	Expr   string `arg:"" help:"Expression to translate"                                 name:"expr"`
	At     string `       help:"Dotted path of the container to resolve names in"                   placeholder:"PATH" short:"a"`
	Single bool   `       help:"Treat the expression as a single assignable name"`
	Lazy   bool   `       help:"Do not require foreign names to exist in the parent"`
	Format string `       help:"Output format"                               default:"text" enum:"text,yaml,json"            short:"f"`
	Indent int    `       help:"Indent width for yaml and json (0 for compact)" default:"2"`
}

// Run executes the inspect command.
func (i *Inspect) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	_, c, err := locate(ctx, i.At)
	if err != nil {
		return err
	}

	x, err := lang.New(ctx, i.Expr, lang.Strong(c),
		lang.WithSingleName(i.Single),
		lang.WithLazyCheck(i.Lazy),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "inspect"))
	}

	snap, w := x.Snapshot(), outputFrom(ctx)

	switch i.Format {
	case "yaml":
		err = snap.FormatYAML(ctx, w, i.Indent)

	case "json":
		err = snap.FormatJSON(ctx, w, i.Indent)

	default:
		err = snap.FormatText(ctx, w)
	}

	if err != nil {
		return ErrFormat.With(slog.String("format", i.Format)).Wrap(err)
	}

	return nil
}
