package repl

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   functionCall
	}{
		{"no call", "gear", 4, functionCall{}},
		{"first argument", "torque(", 7, functionCall{"torque", 0, true}},
		{"typing first argument", "torque(1", 8, functionCall{"torque", 0, true}},
		{"second argument", "torque(1,", 9, functionCall{"torque", 1, true}},
		{"dotted name", "comp.scale(x, 2", 15, functionCall{"comp.scale", 1, true}},
		{"nested call inner", "torque(scale(1, ", 16, functionCall{"scale", 1, true}},
		{"nested call closed", "torque(scale(1, 2), ", 20, functionCall{"torque", 1, true}},
		{"index commas ignored", "torque(a[1, 2], ", 16, functionCall{"torque", 1, true}},
		{"inside index", "a[1, ", 5, functionCall{}},
		{"group is not a call", "2 * (1 + ", 9, functionCall{}},
		{"after closed call", "torque(1, 2) + ", 15, functionCall{}},
		{"cursor before call", "torque(1)", 3, functionCall{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got != tt.want {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want %+v",
					tt.input, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	_, comp := gearbox(t)

	tests := []struct {
		name   string
		fn     string
		want   []string
		wantOK bool
	}{
		{"local", "scale", []string{"float", "...int"}, true},
		{"parent", "torque", []string{"float", "float"}, true},
		{"not a function", "velocity", nil, false},
		{"unknown", "nope", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := signature(comp, tt.fn)
			if ok != tt.wantOK {
				t.Fatalf("signature(%q) ok = %v, want %v", tt.fn, ok, tt.wantOK)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("signature(%q) mismatch (-want +got):\n%s", tt.fn, diff)
			}
		})
	}
}

func TestFormatTypeName(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeFor[int64](), "int"},
		{reflect.TypeFor[uint8](), "int"},
		{reflect.TypeFor[float32](), "float"},
		{reflect.TypeFor[[]float64](), "[]float"},
		{reflect.TypeFor[[2][2]int](), "[][]int"},
		{reflect.TypeFor[map[string]int](), "map"},
		{reflect.TypeFor[*float64](), "float"},
		{reflect.TypeFor[any](), "any"},
		{reflect.TypeFor[func()](), "func"},
		{reflect.TypeFor[bool](), "bool"},
		{reflect.TypeFor[struct{}](), "arg"},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := formatTypeName(tt.typ); got != tt.want {
				t.Errorf("formatTypeName(%v) = %q, want %q", tt.typ, got, tt.want)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name    string
		params  []string
		current int
	}{
		{"no parameters", nil, 0},
		{"first", []string{"float", "float"}, 0},
		{"past variadic", []string{"float", "...int"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint("fn", tt.params, tt.current)

			for _, want := range append([]string{"fn", "(", ")"}, tt.params...) {
				if !strings.Contains(got, want) {
					t.Errorf("renderSignatureHint() = %q, missing %q", got, want)
				}
			}
		})
	}
}
