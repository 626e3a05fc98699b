package lang

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goccy/go-yaml"
)

// Snapshot is the portable state of an [Expression]. Compiled programs and
// the scope are not part of it; [Restore] recompiles from the rewritten text
// and binds a new scope reference.
type Snapshot struct {
	Text       string   `json:"text"                yaml:"text"`
	Rewritten  string   `json:"rewritten"           yaml:"rewritten"`
	Setter     string   `json:"setter,omitempty"    yaml:"setter,omitempty"`
	LHS        string   `json:"lhs"                 yaml:"lhs"`
	RHS        string   `json:"rhs,omitempty"       yaml:"rhs,omitempty"`
	Inputs     []string `json:"inputs,omitempty"    yaml:"inputs,omitempty"`
	Outputs    []string `json:"outputs,omitempty"   yaml:"outputs,omitempty"`
	SingleName bool     `json:"single_name"         yaml:"single_name"`
	LazyCheck  bool     `json:"lazy_check"          yaml:"lazy_check"`
}

// Snapshot returns the portable state of e.
func (e *Expression) Snapshot() Snapshot {
	return Snapshot{
		Text:       e.text,
		Rewritten:  e.rewritten,
		Setter:     e.setterText,
		LHS:        e.lhs,
		RHS:        e.rhs,
		Inputs:     e.Inputs(),
		Outputs:    e.Outputs(),
		SingleName: e.singleName,
		LazyCheck:  e.lazyCheck,
	}
}

// MarshalYAML implements yaml.InterfaceMarshaler. There is no matching
// UnmarshalYAML since a decoded expression must be bound to a scope; use
// [Unmarshal] or [Restore].
func (e *Expression) MarshalYAML() (any, error) {
	return e.Snapshot(), nil
}

// Marshal encodes the snapshot of e as YAML.
func Marshal(ctx context.Context, e *Expression) ([]byte, error) {
	return yaml.MarshalContext(ctx, e.Snapshot())
}

// Unmarshal decodes a YAML snapshot and restores it against ref.
func Unmarshal(
	ctx context.Context,
	data []byte,
	ref Ref,
	opts ...Option,
) (*Expression, error) {
	var s Snapshot

	if err := yaml.UnmarshalContext(ctx, data, &s); err != nil {
		return nil, ErrSnapshot.Wrap(err)
	}

	return Restore(ctx, s, ref, opts...)
}

// Restore rebuilds an Expression from s bound to the scope behind ref.
// Only the compiled programs are re-derived; the names and rewritten text
// are taken from s as they were when it was captured.
func Restore(
	ctx context.Context,
	s Snapshot,
	ref Ref,
	opts ...Option,
) (*Expression, error) {
	if ref == nil {
		ref = Strong(nil)
	}

	switch {
	case s.Text == "" || s.Rewritten == "":
		return nil, ErrSnapshot.Wrap(errors.New("missing text"))

	case s.SingleName && s.Setter == "":
		return nil, ErrSnapshot.Wrap(errors.New("missing setter")).
			With(slog.String("source", s.Text))
	}

	e := &Expression{ref: ref}

	applyOptions(e, opts...)

	e.text, e.singleName, e.lazyCheck = s.Text, s.SingleName, s.LazyCheck

	st := state{
		inputs:     setOf(s.Inputs),
		outputs:    setOf(s.Outputs),
		rewritten:  s.Rewritten,
		setterText: s.Setter,
		lhs:        s.LHS,
		rhs:        s.RHS,
	}

	var err error

	st.program, err = compile(ctx, s.Rewritten, e.logger)
	if err != nil {
		return nil, ErrSnapshot.Wrap(err).With(slog.String("source", s.Text))
	}

	if s.SingleName {
		st.setter, err = compile(ctx, s.Setter, e.logger)
		if err != nil {
			return nil, ErrSnapshot.Wrap(err).With(slog.String("source", s.Text))
		}
	}

	e.state = st

	e.logger.TraceContext(ctx, "expression restored",
		slog.String("source", s.Text))

	return e, nil
}

func setOf(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))

	for _, name := range names {
		set[name] = struct{}{}
	}

	return set
}
