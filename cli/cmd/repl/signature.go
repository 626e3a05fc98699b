package repl

import (
	"reflect"
	"strings"

	"github.com/ardnew/scopexpr/scope"
)

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string // dotted path of the function
	argIndex int    // argument under the cursor, 0-based
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor and
// the index of the argument being typed.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open, depth := -1, 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')', ']':
			depth++

		case '(', '[':
			if depth == 0 {
				if input[i] == '[' {
					return functionCall{}
				}

				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 && isPathByte(input[start-1]) {
		start--
	}

	name := input[start:open]
	if name == "" || name[0] == '.' || isDigit(name[0]) {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(', '[':
			depth++

		case ')', ']':
			depth--

		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

func isPathByte(c byte) bool {
	return c == '.' || c == '_' || isDigit(c) ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// signature returns the parameter names of the function name as it resolves
// from c, and false if name is not a function.
func signature(c *scope.Container, name string) (params []string, ok bool) {
	if c == nil {
		return nil, false
	}

	for _, from := range lookupOrder(c) {
		if t, err := from.Signature(name); err == nil {
			return parameters(t), true
		}
	}

	return nil, false
}

// parameters lists the parameter types of function type t, with a "..."
// prefix on a variadic parameter.
func parameters(t reflect.Type) []string {
	params := make([]string, t.NumIn())

	for i := range params {
		in := t.In(i)
		if t.IsVariadic() && i == len(params)-1 {
			params[i] = "..." + formatTypeName(in.Elem())
		} else {
			params[i] = formatTypeName(in)
		}
	}

	return params
}

// formatTypeName returns a short readable name for a parameter type.
func formatTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"

	case reflect.Float32, reflect.Float64:
		return "float"

	case reflect.Slice, reflect.Array:
		return "[]" + formatTypeName(t.Elem())

	case reflect.Map:
		return "map"

	case reflect.Func:
		return "func"

	case reflect.Pointer:
		return formatTypeName(t.Elem())

	case reflect.Interface:
		return "any"

	default:
		if t.Name() != "" {
			return t.Name()
		}

		return "arg"
	}
}

// renderSignatureHint renders name(params...) with the parameter at index
// current highlighted. A variadic parameter stays highlighted for every
// argument past it.
func renderSignatureHint(name string, params []string, current int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")
		if current == i || (variadic && current > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
