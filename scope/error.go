package scope

import "github.com/ardnew/scopexpr/lang"

// Predefined errors (sentinel values).
var (
	ErrNotFound    = lang.NewError("no such attribute")
	ErrIndex       = lang.NewError("invalid index")
	ErrNotCallable = lang.NewError("not callable")
	ErrType        = lang.NewError("type mismatch")
	ErrDecode      = lang.NewError("invalid scope definition")
	ErrDuplicate   = lang.NewError("name already declared")
)
