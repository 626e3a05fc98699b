package lang

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/builtin"

	"github.com/ardnew/scopexpr/log"
)

// resolveMode selects when a foreign name missing from the parent is
// reported.
type resolveMode int

const (
	// resolveEager fails resolution when the parent lacks the name.
	resolveEager resolveMode = iota
	// resolveLazy defers the failure to evaluation.
	resolveLazy
)

func (m resolveMode) String() string {
	if m == resolveLazy {
		return "lazy"
	}

	return "eager"
}

// exprKeywords are words the compiler reserves in addition to the names in
// [builtin.Index]. A local name spelled like one of these is read through
// the scope accessors instead of directly.
var exprKeywords = map[string]struct{}{
	"and": {}, "or": {}, "not": {}, "in": {}, "matches": {},
	"contains": {}, "startsWith": {}, "endsWith": {},
	"let": {}, "if": {}, "else": {}, "nil": {}, "true": {}, "false": {},
}

// translation is the result of rewriting one expression tree.
type translation struct {
	rewritten string
	lhs       string
	rhs       string
	inputs    map[string]struct{}
	outputs   map[string]struct{}
}

// resolver rewrites paths into local references or accessor calls and
// collects the foreign names it encounters.
type resolver struct {
	ctx     context.Context
	scope   Scope
	inputs  map[string]struct{}
	outputs map[string]struct{}
	logger  log.Logger
	mode    resolveMode
}

// translate resolves tree against scope and renders the rewritten text.
func translate(
	ctx context.Context,
	scope Scope,
	tree Node,
	mode resolveMode,
	logger log.Logger,
) (translation, error) {
	r := &resolver{
		ctx:     ctx,
		scope:   scope,
		inputs:  map[string]struct{}{},
		outputs: map[string]struct{}{},
		logger:  logger,
		mode:    mode,
	}

	var tr translation

	if assign, ok := tree.(*Assign); ok {
		target, err := r.write(assign.Target.(*Path), placeholder{})
		if err != nil {
			return tr, err
		}

		value, err := r.read(assign.Value)
		if err != nil {
			return tr, err
		}

		tmpl := Render(target)
		tr.rhs = Render(value)
		tr.lhs = strings.Replace(tmpl, rhsPlaceholder, "", 1)
		tr.rewritten = strings.Replace(tmpl, rhsPlaceholder, tr.rhs, 1)
	} else {
		n, err := r.read(tree)
		if err != nil {
			return tr, err
		}

		tr.rewritten = Render(n)
		tr.lhs = tr.rewritten
	}

	tr.inputs, tr.outputs = r.inputs, r.outputs

	logger.TraceContext(ctx, "expression resolved",
		slog.String("mode", mode.String()),
		slog.String("rewritten", tr.rewritten),
		slog.Any("inputs", slices.Sorted(maps.Keys(tr.inputs))),
		slog.Any("outputs", slices.Sorted(maps.Keys(tr.outputs))),
	)

	return tr, nil
}

// read resolves every path in n as a value reference.
func (r *resolver) read(n Node) (Node, error) {
	switch n := n.(type) {
	case *Number, *SetterRef, placeholder:
		return n, nil

	case *Unary:
		x, err := r.read(n.X)
		if err != nil {
			return nil, err
		}

		return &Unary{X: x, Op: n.Op, Pos: n.Pos}, nil

	case *Binary:
		x, err := r.read(n.X)
		if err != nil {
			return nil, err
		}

		y, err := r.read(n.Y)
		if err != nil {
			return nil, err
		}

		if n.Op == "/" {
			return &Quotient{X: x, Y: y, Pos: n.Pos}, nil
		}

		return &Binary{X: x, Y: y, Op: n.Op, Pos: n.Pos}, nil

	case *Group:
		x, err := r.read(n.X)
		if err != nil {
			return nil, err
		}

		return &Group{X: x, Pos: n.Pos}, nil

	case *Path:
		return r.readPath(n)

	default:
		return nil, ErrInvalidOperation.
			With(slog.String("node", Render(n))).
			Wrap(errors.New("not a value"))
	}
}

func (r *resolver) readList(list []Node) ([]Node, error) {
	if list == nil {
		return nil, nil
	}

	out := make([]Node, len(list))

	for i, n := range list {
		x, err := r.read(n)
		if err != nil {
			return nil, err
		}

		out[i] = x
	}

	return out, nil
}

func (r *resolver) readPath(p *Path) (Node, error) {
	indices, err := r.readList(p.flatIndices())
	if err != nil {
		return nil, err
	}

	args, err := r.readList(p.Args)
	if err != nil {
		return nil, err
	}

	head := p.Head()

	if head == setterName {
		return &LocalRef{
			Name: p.Name, Indices: indices, Args: args, Call: p.Call, Pos: p.Pos,
		}, nil
	}

	ref := refScope

	if !r.scope.Contains(head) {
		if err := r.foreign(p.Name, head); err != nil {
			return nil, err
		}

		r.inputs[p.Name] = struct{}{}
		ref = refParent
	} else if r.scope.HasAttr(head) && direct(p) {
		return &LocalRef{
			Name: p.Name, Indices: indices, Args: args, Call: p.Call, Pos: p.Pos,
		}, nil
	}

	if p.Call {
		return &AccessorInvoke{Ref: ref, Name: p.Name, Args: args, Pos: p.Pos}, nil
	}

	return &AccessorGet{Ref: ref, Name: p.Name, Indices: indices, Pos: p.Pos}, nil
}

// write resolves the assignment target p, producing a set call with value
// in the value slot.
func (r *resolver) write(p *Path, value Node) (*AccessorSet, error) {
	indices, err := r.readList(p.flatIndices())
	if err != nil {
		return nil, err
	}

	head := p.Head()
	ref := refScope

	if !r.scope.Contains(head) {
		if err := r.foreign(p.Name, head); err != nil {
			return nil, err
		}

		r.outputs[p.Name] = struct{}{}
		ref = refParent
	}

	return &AccessorSet{
		Value: value, Ref: ref, Name: p.Name, Indices: indices, Pos: p.Pos,
	}, nil
}

// foreign applies the checks for a name routed to the parent scope.
func (r *resolver) foreign(name, head string) error {
	if r.scope.HasAttr(head) {
		r.scope.Warning("attribute '" + head + "' is private" +
			" so a public value in the parent is" +
			" being used instead (if found)")
	}

	if r.mode == resolveLazy {
		return nil
	}

	parent := parentOf(r.scope)
	if parent == nil || !parent.Contains(head) {
		r.logger.TraceContext(r.ctx, "unresolved name",
			slog.String("name", name),
			slog.Bool("has_parent", parent != nil),
		)

		return unresolved(name)
	}

	return nil
}

// direct reports whether p can be compiled as a plain reference into the
// scope namespace.
func direct(p *Path) bool {
	segs := p.Segments()

	if p.Call && len(segs) > 1 {
		// Member calls would bind to Go methods, not scope attributes.
		return false
	}

	for _, seg := range segs {
		if _, ok := exprKeywords[seg]; ok {
			return false
		}

		if _, ok := builtin.Index[seg]; ok {
			return false
		}
	}

	return true
}

func unresolved(name string) *Error {
	return ErrUnresolvedName.
		Wrap(errors.New(strconv.Quote(name))).
		With(slog.String("name", name))
}
