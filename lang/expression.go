package lang

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/scopexpr/log"
)

// Expression is an arithmetic expression bound to a [Scope].
//
// The text is parsed, resolved and compiled when it is set; evaluating the
// expression only runs the compiled program. The scope is held through a
// [Ref], so an Expression bound with [Weak] does not keep its scope alive.
//
// An Expression performs no locking. Callers sharing one across goroutines
// must serialize calls to [Expression.SetText].
type Expression struct {
	ref    Ref
	logger log.Logger
	text   string
	state
	singleName bool
	lazyCheck  bool
}

// state is everything derived from the text. It is replaced as a whole.
type state struct {
	inputs     map[string]struct{}
	outputs    map[string]struct{}
	program    *vm.Program
	setter     *vm.Program
	rewritten  string
	setterText string
	lhs        string
	rhs        string
}

// New returns an Expression for text bound to the scope behind ref.
// Syntax errors and, unless [WithLazyCheck] is set, unresolved foreign
// names are reported here.
func New(
	ctx context.Context,
	text string,
	ref Ref,
	opts ...Option,
) (*Expression, error) {
	if ref == nil {
		ref = Strong(nil)
	}

	e := &Expression{ref: ref}

	applyOptions(e, opts...)

	if err := e.SetText(ctx, text); err != nil {
		return nil, err
	}

	return e, nil
}

// SetText replaces the source text, re-deriving the rewritten text, the
// compiled programs and the input and output names. On error the
// expression is left unchanged.
func (e *Expression) SetText(ctx context.Context, text string) error {
	scope, ok := e.ref.Resolve()
	if !ok {
		return ErrScopeGone.With(slog.String("source", text))
	}

	st, err := e.derive(ctx, scope, text)
	if err != nil {
		return err
	}

	e.text, e.state = text, st

	return nil
}

func (e *Expression) mode() resolveMode {
	if e.lazyCheck {
		return resolveLazy
	}

	return resolveEager
}

func (e *Expression) derive(
	ctx context.Context,
	scope Scope,
	text string,
) (st state, err error) {
	var (
		tree Node
		path *Path
	)

	if e.singleName {
		tree, err = parseWith(ctx, text, e.logger, (*parser).parseSingle)
		path, _ = tree.(*Path)
	} else {
		tree, err = parseWith(ctx, text, e.logger, (*parser).parseEquation)
	}

	if err != nil {
		return st, err
	}

	tr, err := translate(ctx, scope, tree, e.mode(), e.logger)
	if err != nil {
		return st, WrapError(err).With(slog.String("source", text))
	}

	st.program, err = compile(ctx, tr.rewritten, e.logger)
	if err != nil {
		return st, err
	}

	st.inputs, st.outputs = tr.inputs, tr.outputs
	st.rewritten, st.lhs, st.rhs = tr.rewritten, tr.lhs, tr.rhs

	if path == nil {
		return st, nil
	}

	// The target only has to exist once a value is assigned to it.
	assign := &Assign{Target: path, Value: &SetterRef{Pos: len(text)}}

	str, err := translate(ctx, scope, assign, resolveLazy, e.logger)
	if err != nil {
		return st, WrapError(err).With(slog.String("source", text))
	}

	st.setter, err = compile(ctx, str.rewritten, e.logger)
	if err != nil {
		return st, err
	}

	st.setterText = str.rewritten
	maps.Copy(st.outputs, str.outputs)

	return st, nil
}

// Evaluate runs the expression against its scope and returns the result.
func (e *Expression) Evaluate(ctx context.Context) (any, error) {
	scope, ok := e.ref.Resolve()
	if !ok {
		return nil, ErrScopeGone.With(slog.String("source", e.text))
	}

	out, err := run(e.program, scope, nil)
	if err != nil {
		e.logger.TraceContext(ctx, "evaluate failed",
			slog.String("source", e.text),
			slog.String("error", err.Error()))

		return nil, ErrEvaluation.Wrap(err).With(slog.String("source", e.text))
	}

	e.logger.TraceContext(ctx, "evaluate",
		slog.String("source", e.text),
		slog.String("result_type", resultTypeName(out)))

	return out, nil
}

// Set assigns value to the path named by a single-name expression.
func (e *Expression) Set(ctx context.Context, value any) error {
	if !e.singleName {
		return ErrInvalidOperation.
			Wrap(errors.New("cannot assign into a non-single-name expression")).
			With(slog.String("source", e.text))
	}

	scope, ok := e.ref.Resolve()
	if !ok {
		return ErrScopeGone.With(slog.String("source", e.text))
	}

	_, err := run(e.setter, scope, map[string]any{setterName: value})
	if err != nil {
		e.logger.TraceContext(ctx, "set failed",
			slog.String("source", e.text),
			slog.String("error", err.Error()))

		return ErrEvaluation.Wrap(err).With(slog.String("source", e.text))
	}

	e.logger.TraceContext(ctx, "set",
		slog.String("source", e.text),
		slog.String("value_type", resultTypeName(value)))

	return nil
}

// Text returns the source text.
func (e *Expression) Text() string { return e.text }

// String implements fmt.Stringer.
func (e *Expression) String() string { return e.text }

// Rewritten returns the text handed to the compiler, with every foreign
// reference replaced by an accessor call.
func (e *Expression) Rewritten() string { return e.rewritten }

// SetterRewritten returns the rewritten assignment used by
// [Expression.Set], or "" if the expression is not single-name.
func (e *Expression) SetterRewritten() string { return e.setterText }

// LHS returns the rewritten assignment target with the value slot left
// empty, or the whole rewritten text if there is no assignment.
func (e *Expression) LHS() string { return e.lhs }

// RHS returns the rewritten assigned value, or "" if there is no
// assignment.
func (e *Expression) RHS() string { return e.rhs }

// Inputs returns the sorted foreign names the expression reads.
func (e *Expression) Inputs() []string { return slices.Sorted(maps.Keys(e.inputs)) }

// Outputs returns the sorted foreign names the expression writes.
func (e *Expression) Outputs() []string { return slices.Sorted(maps.Keys(e.outputs)) }

// HasInput reports whether name is read from the parent scope.
func (e *Expression) HasInput(name string) bool {
	_, ok := e.inputs[name]

	return ok
}

// HasOutput reports whether name is written to the parent scope.
func (e *Expression) HasOutput(name string) bool {
	_, ok := e.outputs[name]

	return ok
}

// SingleName reports whether the expression is an assignable path.
func (e *Expression) SingleName() bool { return e.singleName }

// LazyCheck reports whether unresolved names are deferred to evaluation.
func (e *Expression) LazyCheck() bool { return e.lazyCheck }
