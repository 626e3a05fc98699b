package scope

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/scopexpr/log"
)

// tree builds root{gear, a, b} with children comp{velocity, f, hidden}
// and comp.sub{v}.
func tree(t *testing.T) (root, comp, sub *Container) {
	t.Helper()

	root = New("root")
	comp = New("comp")
	sub = New("sub")

	must(t, root.Declare("gear", 4))
	must(t, root.Declare("a", [][]float64{{0, 1, 2}, {3, 4, 5}}))
	must(t, root.Declare("b", map[string]any{"c": []any{1, 2}, "d": 0.5}))
	must(t, root.Func("scale", func(x float64, k int) float64 { return x * float64(k) }))
	must(t, root.Add(comp))
	must(t, comp.Declare("velocity", 10))
	must(t, comp.Func("f", func(n int) int { return n * 10 }))
	must(t, comp.Private("hidden", 1))
	must(t, comp.Add(sub))
	must(t, sub.Declare("v", 2.5))

	return root, comp, sub
}

func must(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestContainer_Declarations(t *testing.T) {
	root, comp, sub := tree(t)

	tests := []struct {
		name     string
		c        *Container
		key      string
		contains bool
		attr     bool
	}{
		{"variable", root, "gear", true, true},
		{"function", root, "scale", true, true},
		{"child", root, "comp", true, false},
		{"private", comp, "hidden", false, true},
		{"nested child", comp, "sub", true, false},
		{"missing", sub, "gear", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Contains(tt.key); got != tt.contains {
				t.Errorf("Contains(%q) = %v, want %v", tt.key, got, tt.contains)
			}

			if got := tt.c.HasAttr(tt.key); got != tt.attr {
				t.Errorf("HasAttr(%q) = %v, want %v", tt.key, got, tt.attr)
			}

			_, inNS := tt.c.Namespace()[tt.key]
			if inNS != tt.attr {
				t.Errorf("Namespace()[%q] present = %v, want %v", tt.key, inNS, tt.attr)
			}
		})
	}
}

func TestContainer_Tree(t *testing.T) {
	root, comp, sub := tree(t)

	if root.Parent() != nil {
		t.Errorf("root Parent() = %v, want nil", root.Parent())
	}

	if comp.Parent() != root || sub.Parent() != comp {
		t.Error("Parent() does not follow Add")
	}

	if got := sub.Path(); got != "comp.sub" {
		t.Errorf("Path() = %q, want %q", got, "comp.sub")
	}

	if got := root.Path(); got != "" {
		t.Errorf("root Path() = %q, want empty", got)
	}

	found, err := root.Lookup("comp.sub")
	if err != nil || found != sub {
		t.Errorf("Lookup() = %v, %v", found, err)
	}

	if self, _ := root.Lookup(""); self != root {
		t.Error("Lookup(\"\") did not return the container itself")
	}

	if _, err := root.Lookup("comp.nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	want := []string{"a", "b", "comp", "gear", "scale"}
	if diff := cmp.Diff(want, root.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	var walked []string

	root.Walk(func(p string) { walked = append(walked, p) })

	want = []string{
		"a", "b", "comp", "comp.f", "comp.sub", "comp.sub.v",
		"comp.velocity", "gear", "scale",
	}
	if diff := cmp.Diff(want, walked); diff != "" {
		t.Errorf("Walk() mismatch (-want +got):\n%s", diff)
	}
}

func TestContainer_InvalidNames(t *testing.T) {
	root, comp, _ := tree(t)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"reserved", root.Declare("__x", 1), ErrDecode},
		{"dotted", root.Declare("a.b", 1), ErrDecode},
		{"digit first", root.Private("1x", 1), ErrDecode},
		{"empty", root.Func("", func() {}), ErrDecode},
		{"not a function", root.Func("g", 3), ErrNotCallable},
		{"shadow child", root.Declare("comp", 1), ErrDuplicate},
		{"child over variable", root.Add(New("gear")), ErrDuplicate},
		{"second parent", New("other").Add(comp), ErrDuplicate},
		{"self", root.Add(root), ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, tt.err)
			}
		})
	}
}

func TestContainer_Warning(t *testing.T) {
	var buf bytes.Buffer

	root := New("root", WithLogger(log.Make(&buf,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout(""),
	)))
	comp := New("comp")

	must(t, root.Add(comp))

	comp.Warning("attribute 'gear' is private")

	out := buf.String()
	for _, want := range []string{"level=WARN", "attribute 'gear' is private", "scope=comp"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestContainer_WithParent(t *testing.T) {
	root, _, _ := tree(t)
	detached := New("detached", WithParent(root))

	if detached.Parent() != root {
		t.Error("WithParent did not link the parent")
	}

	if root.Contains("detached") {
		t.Error("WithParent declared the container in its parent")
	}

	// A linked container can still be added to the same parent.
	must(t, root.Add(detached))
}
