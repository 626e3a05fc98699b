// Package lang compiles arithmetic expressions over dotted attribute paths
// and evaluates them against a hierarchy of scopes.
//
// # Grammar
//
// Informal EBNF (precedence low to high):
//
//	Equation → [Path Index* '='] Expr EOF
//	Expr     → Term (('+' | '-') Term)*
//	Term     → Factor (('*' | '/') Factor)*
//	Factor   → '-'? Power
//	Power    → Primary ('**' Factor)?
//	Primary  → Number | Path (Index+ | Call)? | '(' Expr ')'
//	Index    → '[' Expr (',' Expr)* ']'
//	Call     → '(' (Expr (',' Expr)*)? ')'
//
// Paths are identifiers joined by dots with no surrounding whitespace.
// Identifiers beginning with "__" are reserved.
//
// # Resolution
//
// Only the first segment of a path is resolved. If the [Scope] contains it,
// the path is local and reads straight from the scope namespace. Otherwise
// the path is foreign and is rewritten into an accessor call on the parent
// scope, and the full dotted name is recorded as an input (read) or output
// (written):
//
//	x + comp.y(x, 2)   →   x + __invoke(__parent, "comp.y", x, 2)
//	a.b[0] = 2 * x     →   __set(__parent, "a.b", 2 * x, 0)
//
// Division is rewritten into a checked call, so a zero divisor fails with
// [ErrDivisionByZero] instead of producing an infinity:
//
//	velocity / gear    →   __div(velocity, __get(__parent, "gear"))
//
// A local name wins over a parent name of the same spelling. When a scope
// holds a name as a plain attribute without declaring it, the parent value
// is used and [Scope.Warning] is called.
//
// # Compilation
//
// The rewritten text is compiled with [github.com/expr-lang/expr] when the
// text is set. Programs are cached by rewritten text, so expressions that
// rewrite identically share one program.
//
// # Example
//
//	e, err := lang.New(ctx, "velocity + 5", lang.Weak(component))
//	if err != nil {
//		return err
//	}
//
//	v, err := e.Evaluate(ctx)
package lang
