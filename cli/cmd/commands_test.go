package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/scopexpr/lang"
)

func TestEval_Run(t *testing.T) {
	tests := []struct {
		name string
		cmd  Eval
		want string
	}{
		{"root", Eval{Expr: "gear * 2"}, "8"},
		{"child reads parent", Eval{Expr: "velocity * gear", At: "comp"}, "40"},
		{"indexed local", Eval{Expr: "a.b[1] * 2", At: "comp"}, "3"},
		{"builtin from child", Eval{Expr: "hypot(3, velocity - 6)", At: "comp"}, "5"},
		{"assignment", Eval{Expr: "velocity = velocity / 4", At: "comp"}, "2.5"},
		{"grandchild", Eval{Expr: "v * velocity", At: "comp.sub"}, "25"},
		{"lazy", Eval{Expr: "v + 1", At: "comp.sub", Lazy: true}, "3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := withScope(t, gearbox)

			if err := tt.cmd.Run(ctx); err != nil {
				t.Fatalf("Eval.Run() error: %v", err)
			}

			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("Eval.Run() printed %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEval_RunErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  Eval
		want error
	}{
		{"syntax", Eval{Expr: "gear +"}, lang.ErrSyntax},
		{"unresolved", Eval{Expr: "wheel * 2", At: "comp"}, lang.ErrUnresolvedName},
		{"lazy unresolved", Eval{Expr: "wheel * 2", At: "comp", Lazy: true}, lang.ErrEvaluation},
		{"bad container", Eval{Expr: "1", At: "nope"}, ErrLocate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := withScope(t, gearbox)

			if err := tt.cmd.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Eval.Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSet_Run(t *testing.T) {
	tests := []struct {
		name string
		cmd  Set
		want string
	}{
		{"local", Set{Target: "velocity", Value: "gear * 3", At: "comp"}, "12"},
		{"local element", Set{Target: "a.b[0]", Value: "gear / 16", At: "comp"}, "0.25"},
		{"parent", Set{Target: "gear", Value: "velocity", At: "comp"}, "10"},
		{"root", Set{Target: "gear", Value: "floor(pi)"}, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := withScope(t, gearbox)

			if err := tt.cmd.Run(ctx); err != nil {
				t.Fatalf("Set.Run() error: %v", err)
			}

			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("Set.Run() printed %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSet_RunErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  Set
		want error
	}{
		{"target is an expression", Set{Target: "velocity + 1", Value: "2", At: "comp"}, lang.ErrSyntax},
		{"bad value", Set{Target: "velocity", Value: "(", At: "comp"}, lang.ErrSyntax},
		{"unknown target", Set{Target: "nope", Value: "1"}, lang.ErrUnresolvedName},
		{"not single name", Set{Target: "gear", Value: "1", At: "nope"}, ErrLocate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := withScope(t, gearbox)

			if err := tt.cmd.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Set.Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInspect_Run(t *testing.T) {
	const expr = "y = velocity * gear"

	ctx, out := withScope(t, gearbox)

	cmd := Inspect{Expr: expr, At: "comp", Lazy: true, Format: "yaml", Indent: 2}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Inspect.Run() error: %v", err)
	}

	var snap lang.Snapshot
	if err := yaml.Unmarshal(out.Bytes(), &snap); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}

	if snap.Text != expr {
		t.Errorf("text = %q, want %q", snap.Text, expr)
	}

	if want := `__set(__parent, "y", velocity * __get(__parent, "gear"))`; snap.Rewritten != want {
		t.Errorf("rewritten = %q, want %q", snap.Rewritten, want)
	}

	if len(snap.Inputs) != 1 || snap.Inputs[0] != "gear" {
		t.Errorf("inputs = %v, want [gear]", snap.Inputs)
	}

	if len(snap.Outputs) != 1 || snap.Outputs[0] != "y" {
		t.Errorf("outputs = %v, want [y]", snap.Outputs)
	}

	for _, format := range []string{"text", "json"} {
		t.Run(format, func(t *testing.T) {
			ctx, out := withScope(t, gearbox)

			cmd := Inspect{Expr: "a.b", At: "comp", Single: true, Format: format}
			if err := cmd.Run(ctx); err != nil {
				t.Fatalf("Inspect.Run() error: %v", err)
			}

			if !strings.Contains(out.String(), "_local_setter") {
				t.Errorf("output has no setter:\n%s", out)
			}
		})
	}
}
