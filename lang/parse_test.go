package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"number", "42", "42"},
		{"float", "3.25", "3.25"},
		{"trailing dot", "2.", "2.0"},
		{"leading dot", ".5", "0.5"},
		{"exponent", "1e3", "1000.0"},
		{"signed exponent", "2.5E-1", "0.25"},
		{"leading zeros", "007", "7"},
		{"path", "a.b.c", "a.b.c"},
		{"precedence", "a+b*c", "a + b * c"},
		{"group", "(a+b)*c", "(a + b) * c"},
		{"left assoc", "a - b - c", "a - b - c"},
		{"power", "2**3**2", "2 ** 3 ** 2"},
		{"unary power", "-x**2", "-x ** 2"},
		{"negative exponent", "2 ** -1", "2 ** -1"},
		{"index", "a[1]", "a[1]"},
		{"chained index", "a[0][1]", "a[0][1]"},
		{"multi index", "a[1,2]", "a[1, 2]"},
		{"empty call", "f()", "f()"},
		{"call", "comp.y(x,2)", "comp.y(x, 2)"},
		{"assign", "x=y", "x = y"},
		{"indexed assign", "a.b[i+1] = 2*x", "a.b[i + 1] = 2 * x"},
		{"whitespace", " \ta \n+ b ", "a + b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if got := Render(n); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		found  string
		column int
	}{
		{"empty", "", "", 1},
		{"dangling operator", "a +", "", 4},
		{"double operator", "a + * b", "*", 5},
		{"trailing dot", "a.b. + 1", "a.b.", 1},
		{"space in path", "a. b", "a.", 1},
		{"reserved name", "__x + 1", "__x", 1},
		{"reserved segment", "a.__b", "a.__b", 1},
		{"index after call", "a(1)[2]", "[", 5},
		{"assign to number", "1 = 2", "=", 3},
		{"chained assign", "a = b = c", "=", 7},
		{"assign to call", "f() = 1", "=", 5},
		{"unclosed group", "(a + b", "", 7},
		{"empty index", "a[]", "]", 3},
		{"missing comma", "f(a b)", "b", 5},
		{"invalid character", "a $ b", "$", 3},
		{"double unary", "--a", "-", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			if err == nil {
				t.Fatalf("expected syntax error for %q", tt.input)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("errors.Is(err, ErrSyntax) = false for %v", err)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}

			if se.Found != tt.found {
				t.Errorf("Found = %q, want %q", se.Found, tt.found)
			}

			if se.Column != tt.column {
				t.Errorf("Column = %d, want %d", se.Column, tt.column)
			}
		})
	}
}

func TestSyntaxError_Snippet(t *testing.T) {
	_, err := Parse(context.Background(), "a + * b")

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}

	want := "  | a + * b\n        ^\n"
	if got := se.Snippet(); got != want {
		t.Errorf("Snippet() = %q, want %q", got, want)
	}

	if !strings.Contains(se.Error(), "column 5") {
		t.Errorf("Error() = %q, want column 5", se.Error())
	}
}

func TestParseSingleName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"path", "a.b", "a.b", false},
		{"indexed", "a.b[0]", "a.b[0]", false},
		{"multi indexed", "m[i, j][k]", "m[i, j][k]", false},
		{"expression", "a + b", "", true},
		{"call", "f(1)", "", true},
		{"number", "1", "", true},
		{"assignment", "a = 1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseSingleName(context.Background(), tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrSyntax) {
					t.Fatalf("expected syntax error, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if got := Render(p); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func FuzzParse(f *testing.F) {
	f.Add("a + b * c")
	f.Add("comp.y(x, 2)")
	f.Add("a.b[0] = -x ** 2")
	f.Add("m[1,2][3]")
	f.Add(".5e-3")
	f.Add("((")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		n, err := Parse(context.Background(), input)
		if err != nil {
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("unexpected error kind for %q: %v", input, err)
			}

			return
		}

		// Rendered text must parse to the same rendering.
		again, err := Parse(context.Background(), Render(n))
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", Render(n), err)
		}

		if Render(again) != Render(n) {
			t.Errorf("render not stable: %q vs %q", Render(n), Render(again))
		}
	})
}
