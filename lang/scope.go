package lang

import (
	"reflect"
	"weak"
)

// Scope is the object graph an expression is evaluated against.
//
// A name is local when Contains reports it; the expression then reads it
// straight from Namespace when HasAttr also reports it, or through the
// scope's own accessors otherwise. Every other name is foreign and is read
// or written through the accessors of Parent.
type Scope interface {
	// Contains reports whether name is declared by the scope.
	Contains(name string) bool
	// HasAttr reports whether name is held as a plain attribute.
	HasAttr(name string) bool
	// Namespace returns the plain attributes visible to expressions.
	Namespace() map[string]any

	Get(path string, index ...any) (any, error)
	Set(path string, value any, index ...any) error
	Invoke(path string, args ...any) (any, error)

	// Parent returns the enclosing scope, or nil at the root. The root
	// should return an untyped nil; a nil pointer wrapped in Scope is
	// treated the same way but costs a reflection check per call.
	Parent() Scope
	// Warning reports a non-fatal condition.
	Warning(msg string)
}

// parentOf returns the parent of s, or nil at the root.
func parentOf(s Scope) Scope {
	p := s.Parent()
	if p == nil {
		return nil
	}

	if v := reflect.ValueOf(p); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}

	return p
}

// Ref is a handle to a [Scope] that may not keep it alive.
type Ref interface {
	// Resolve returns the scope, or false if it no longer exists.
	Resolve() (Scope, bool)
}

// Weak returns a [Ref] that does not keep s reachable. Once s is collected,
// Resolve reports false.
func Weak[T any, P interface {
	*T
	Scope
}](s P) Ref {
	if s == nil {
		return Strong(nil)
	}

	return weakRef[T, P]{ptr: weak.Make((*T)(s))}
}

type weakRef[T any, P interface {
	*T
	Scope
}] struct {
	ptr weak.Pointer[T]
}

func (r weakRef[T, P]) Resolve() (Scope, bool) {
	v := r.ptr.Value()
	if v == nil {
		return nil, false
	}

	return P(v), true
}

// Strong returns a [Ref] that keeps s reachable.
func Strong(s Scope) Ref { return strongRef{s} }

type strongRef struct{ s Scope }

func (r strongRef) Resolve() (Scope, bool) { return r.s, r.s != nil }
