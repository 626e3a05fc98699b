package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax           = NewError("syntax error")
	ErrUnresolvedName   = NewError("cannot find variable")
	ErrScopeGone        = NewError("scope is no longer available")
	ErrInvalidOperation = NewError("invalid operation")
	ErrEvaluation       = NewError("evaluation failed")
	ErrDivisionByZero   = NewError("division by zero")
	ErrCompile          = NewError("compilation failed")
	ErrSnapshot         = NewError("invalid snapshot")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message, so a sentinel
// matches every value derived from it with [Error.Wrap] or [Error.With].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.msg == "" {
		return false
	}

	return e.msg == t.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns a copy of the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// SyntaxError reports text that does not match the expression grammar.
// It matches [ErrSyntax] with errors.Is.
type SyntaxError struct {
	Source   string   // The original source input
	Found    string   // Offending token text, empty at end of input
	Expected []string // What the parser would have accepted
	Column   int      // 1-based column of the offending token
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var buf strings.Builder

	buf.WriteString("syntax error at column ")
	buf.WriteString(strconv.Itoa(e.Column))

	if e.Found == "" {
		buf.WriteString(": unexpected end of input")
	} else {
		buf.WriteString(": unexpected ")
		buf.WriteString(strconv.Quote(e.Found))
	}

	if len(e.Expected) > 0 {
		buf.WriteString(" (expected ")
		buf.WriteString(strings.Join(e.Expected, " or "))
		buf.WriteString(")")
	}

	return buf.String()
}

// Is makes SyntaxError match [ErrSyntax].
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax || errors.Is(ErrSyntax, target)
}

// Snippet renders the source with a caret under the offending column.
func (e *SyntaxError) Snippet() string {
	var src strings.Builder

	src.WriteString("  | ")
	src.WriteString(e.Source)
	src.WriteRune('\n')

	// +4 accounts for: 2 leading spaces + "| " (2 chars)
	padding := strings.Repeat(" ", 4)
	if e.Column > 0 {
		padding += strings.Repeat(" ", e.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrSyntax.msg),
		slog.String("source", e.Source),
		slog.Int("column", e.Column),
		slog.String("found", e.Found),
		slog.Any("expected", e.Expected),
	)
}
