package lang

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/scopexpr/log"
)

// binding is the value bound to the scope references of one run.
type binding struct {
	scope Scope
	frame *frame
}

// frame records the first accessor failure of a run so the caller sees the
// original error rather than the compiler's wrapping of it.
type frame struct{ err error }

func (f *frame) fail(err error) error {
	if f.err == nil {
		f.err = err
	}

	return err
}

// divide is bound to the division function of a run. Both operands are
// converted to float64; a zero divisor fails.
func (f *frame) divide(x, y any) (any, error) {
	a, ok := asFloat(x)
	if !ok {
		return nil, f.fail(ErrInvalidOperation.
			With(slog.String("function", fnDiv)).
			Wrap(errors.New("cannot divide " + resultTypeName(x))))
	}

	b, ok := asFloat(y)
	if !ok {
		return nil, f.fail(ErrInvalidOperation.
			With(slog.String("function", fnDiv)).
			Wrap(errors.New("cannot divide by " + resultTypeName(y))))
	}

	if b == 0 {
		return nil, f.fail(ErrDivisionByZero.With(slog.Float64("dividend", a)))
	}

	return a / b, nil
}

func asFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}

	return 0, false
}

// accessors exposes the scope accessor protocol to compiled programs.
var accessors = []expr.Option{
	expr.Function(fnGet, callGet),
	expr.Function(fnSet, callSet),
	expr.Function(fnInvoke, callInvoke),
}

// target unpacks the leading (binding, name) arguments of an accessor call
// and checks that the binding can serve name.
func target(fn string, params []any) (*binding, string, error) {
	if len(params) < 2 {
		return nil, "", ErrInvalidOperation.
			With(slog.String("function", fn)).
			Wrap(errors.New("missing scope or name"))
	}

	b, ok := params[0].(*binding)
	if !ok {
		return nil, "", ErrInvalidOperation.
			With(slog.String("function", fn)).
			Wrap(errors.New("invalid scope reference"))
	}

	name, ok := params[1].(string)
	if !ok {
		return nil, "", b.frame.fail(ErrInvalidOperation.
			With(slog.String("function", fn)).
			Wrap(errors.New("invalid name")))
	}

	head, _, _ := strings.Cut(name, ".")
	if b.scope == nil || !b.scope.Contains(head) {
		return nil, "", b.frame.fail(unresolved(name))
	}

	return b, name, nil
}

func callGet(params ...any) (any, error) {
	b, name, err := target(fnGet, params)
	if err != nil {
		return nil, err
	}

	v, err := b.scope.Get(name, params[2:]...)
	if err != nil {
		return nil, b.frame.fail(err)
	}

	return v, nil
}

func callSet(params ...any) (any, error) {
	b, name, err := target(fnSet, params)
	if err != nil {
		return nil, err
	}

	if len(params) < 3 {
		return nil, b.frame.fail(ErrInvalidOperation.
			With(slog.String("function", fnSet)).
			Wrap(errors.New("missing value")))
	}

	value := params[2]

	if err := b.scope.Set(name, value, params[3:]...); err != nil {
		return nil, b.frame.fail(err)
	}

	return value, nil
}

func callInvoke(params ...any) (any, error) {
	b, name, err := target(fnInvoke, params)
	if err != nil {
		return nil, err
	}

	v, err := b.scope.Invoke(name, params[2:]...)
	if err != nil {
		return nil, b.frame.fail(err)
	}

	return v, nil
}

// compile returns the program for rewritten text, reusing a cached program
// when the same text was compiled before.
func compile(
	ctx context.Context,
	text string,
	logger log.Logger,
) (*vm.Program, error) {
	if program, ok := lookupProgram(ctx, text, logger); ok {
		return program, nil
	}

	program, err := expr.Compile(text, accessors...)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", text))
	}

	storeProgram(text, program)

	logger.TraceContext(ctx, "expression compiled",
		slog.String("source", text))

	return program, nil
}

// run executes program with the namespace of scope and the accessor
// bindings as environment. A failure inside an accessor is returned as it
// was produced by the scope.
func run(program *vm.Program, scope Scope, extra map[string]any) (any, error) {
	f := new(frame)

	ns := scope.Namespace()
	env := make(map[string]any, len(ns)+len(extra)+3)

	for k, v := range ns {
		env[k] = v
	}

	for k, v := range extra {
		env[k] = v
	}

	env[refScope] = &binding{scope: scope, frame: f}
	env[refParent] = &binding{scope: parentOf(scope), frame: f}
	env[fnDiv] = f.divide

	out, err := vm.Run(program, env)
	if err != nil {
		if f.err != nil {
			return nil, f.err
		}

		return nil, err
	}

	return out, nil
}
