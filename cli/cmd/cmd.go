package cmd

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scopexpr/log"
	"github.com/ardnew/scopexpr/scope"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	scopeFileKey struct{}
	outputKey    struct{}
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithScopeFile returns a new context.Context naming the YAML file the
// commands load their scope tree from. An empty path gives an empty root
// and "-" reads stdin.
func WithScopeFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, scopeFileKey{}, path)
}

// WithOutput returns a new context.Context whose commands print to w
// instead of stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// builtins are declared on the root container unless the scope file
// declares the same name.
var builtins = map[string]any{
	"abs":   math.Abs,
	"sqrt":  math.Sqrt,
	"exp":   math.Exp,
	"log":   math.Log,
	"log10": math.Log10,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"atan2": math.Atan2,
	"hypot": math.Hypot,
	"min":   math.Min,
	"max":   math.Max,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"pi":    math.Pi,
}

// loadScope builds the scope tree named by [WithScopeFile].
func loadScope(ctx context.Context) (*scope.Container, error) {
	logger := log.Default()
	path, _ := ctx.Value(scopeFileKey{}).(string)

	var (
		root *scope.Container
		err  error
	)

	switch path {
	case "":
		root = scope.New(scope.DefaultName, scope.WithLogger(logger))

	case stdinSource:
		root, err = scope.Load(ctx, os.Stdin, scope.WithLogger(logger))

	default:
		var file *os.File

		file, err = os.Open(path)
		if err != nil {
			return nil, ErrLoadScope.With(slog.String("file", path)).Wrap(err)
		}
		defer file.Close()

		root, err = scope.Load(ctx, file, scope.WithLogger(logger))
	}

	if err != nil {
		return nil, ErrLoadScope.With(slog.String("file", path)).Wrap(err)
	}

	if err := declareBuiltins(root); err != nil {
		return nil, err
	}

	logger.TraceContext(ctx, "scope loaded",
		slog.String("file", path),
		slog.Any("names", root.Names()),
	)

	return root, nil
}

func declareBuiltins(root *scope.Container) error {
	for name, v := range builtins {
		if root.Contains(name) || root.HasAttr(name) {
			continue
		}

		var err error

		if _, ok := v.(float64); ok {
			err = root.Declare(name, v)
		} else {
			err = root.Func(name, v)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// locate returns the container at the dotted path at below root, or root
// itself if at is empty.
func locate(
	ctx context.Context,
	at string,
) (root, c *scope.Container, err error) {
	root, err = loadScope(ctx)
	if err != nil {
		return nil, nil, err
	}

	c, err = root.Lookup(at)
	if err != nil {
		return nil, nil, ErrLocate.With(slog.String("at", at)).Wrap(err)
	}

	return root, c, nil
}
