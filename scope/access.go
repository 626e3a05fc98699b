package scope

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/ardnew/scopexpr/lang"
)

// step is one move into a value: a named member or an index.
type step struct {
	index any
	name  string
	field bool
}

func (s step) String() string {
	if s.field {
		return s.name
	}

	return "[" + fmt.Sprint(s.index) + "]"
}

func steps(fields []string, index []any) []step {
	out := make([]step, 0, len(fields)+len(index))

	for _, f := range fields {
		out = append(out, step{name: f, field: true})
	}

	for _, i := range index {
		out = append(out, step{index: i})
	}

	return out
}

// descend follows the leading segments of path that name child containers
// and returns the deepest one with the segments left over.
func (c *Container) descend(path string) (*Container, []string) {
	segs := strings.Split(path, ".")
	cur := c

	for len(segs) > 0 {
		child, ok := cur.Child(segs[0])
		if !ok {
			break
		}

		cur, segs = child, segs[1:]
	}

	return cur, segs
}

// member returns the declared value name. The caller holds c.mu.
func (c *Container) member(name string) (any, bool) {
	if v, ok := c.vars[name]; ok {
		return v, true
	}

	if f, ok := c.funcs[name]; ok {
		return f.call, true
	}

	return nil, false
}

// Get returns the value at the dotted path. Segments after a variable
// select map entries or exported struct fields; each index selects an
// element of a slice, array or map, with negative indices counting from
// the end.
func (c *Container) Get(path string, index ...any) (any, error) {
	owner, segs := c.descend(path)

	if len(segs) == 0 {
		if len(index) > 0 {
			return nil, ErrIndex.
				Wrap(errors.New("cannot index a container")).
				With(slog.String("path", path))
		}

		return owner, nil
	}

	owner.mu.RLock()
	defer owner.mu.RUnlock()

	v, ok := owner.member(segs[0])
	if !ok {
		return nil, notFound(path)
	}

	rv, err := getIn(reflect.ValueOf(v), steps(segs[1:], index))
	if err != nil {
		return nil, annotate(err, path)
	}

	if !rv.IsValid() {
		return nil, nil
	}

	return rv.Interface(), nil
}

// Set assigns value at the dotted path. A variable is replaced as is;
// elements and fields take the value converted to their type.
func (c *Container) Set(path string, value any, index ...any) error {
	owner, segs := c.descend(path)

	if len(segs) == 0 {
		return ErrType.
			Wrap(errors.New("cannot assign to a container")).
			With(slog.String("path", path))
	}

	owner.mu.Lock()
	defer owner.mu.Unlock()

	name := segs[0]

	cur, ok := owner.vars[name]
	if !ok {
		if _, isFunc := owner.funcs[name]; isFunc {
			return ErrType.
				Wrap(errors.New("cannot assign to a function")).
				With(slog.String("path", path))
		}

		return notFound(path)
	}

	if len(segs) == 1 && len(index) == 0 {
		owner.vars[name] = value

		return nil
	}

	nv, err := setIn(reflect.ValueOf(cur), steps(segs[1:], index), value)
	if err != nil {
		return annotate(err, path)
	}

	owner.vars[name] = nv.Interface()

	return nil
}

// Invoke calls the function at the dotted path with args. The path may
// name a callable, a variable holding a function, or a method of a
// variable's value.
func (c *Container) Invoke(path string, args ...any) (any, error) {
	fn, err := c.function(path)
	if err != nil {
		return nil, err
	}

	out, err := fn.call(args...)
	if err != nil {
		return nil, annotate(err, path)
	}

	return out, nil
}

// Signature returns the type of the function reached by path, as [Invoke]
// would call it.
func (c *Container) Signature(path string) (reflect.Type, error) {
	fn, err := c.function(path)
	if err != nil {
		return nil, err
	}

	return fn.fn.Type(), nil
}

func (c *Container) function(path string) (callable, error) {
	owner, segs := c.descend(path)

	if len(segs) == 0 {
		return callable{}, ErrNotCallable.With(slog.String("path", path))
	}

	owner.mu.RLock()
	defer owner.mu.RUnlock()

	if f, ok := owner.funcs[segs[0]]; ok && len(segs) == 1 {
		return f, nil
	}

	v, ok := owner.vars[segs[0]]
	if !ok {
		return callable{}, notFound(path)
	}

	last := len(segs) - 1
	rv := reflect.ValueOf(v)

	if last > 0 {
		base, err := getIn(rv, steps(segs[1:last], nil))
		if err != nil {
			return callable{}, annotate(err, path)
		}

		rv, err = getIn(base, steps(segs[last:], nil))
		if err != nil {
			// Not a member value; try a method of the same name.
			if m := method(base, segs[last]); m.IsValid() {
				return callable{fn: m, name: path}, nil
			}

			return callable{}, annotate(err, path)
		}
	}

	rv = unwrap(rv)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return callable{}, ErrNotCallable.With(slog.String("path", path))
	}

	return callable{fn: rv, name: path}, nil
}

func method(v reflect.Value, name string) reflect.Value {
	if !v.IsValid() {
		return reflect.Value{}
	}

	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	if m := v.MethodByName(name); m.IsValid() {
		return m
	}

	if v.Kind() != reflect.Pointer && v.IsValid() {
		p := reflect.New(v.Type())
		p.Elem().Set(v)

		return p.MethodByName(name)
	}

	return reflect.Value{}
}

// unwrap removes interface and pointer indirection.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

func getIn(v reflect.Value, path []step) (reflect.Value, error) {
	for _, s := range path {
		v = unwrap(v)
		if !v.IsValid() {
			return v, ErrType.Wrap(errors.New("nil value at " + s.String()))
		}

		next, err := into(v, s)
		if err != nil {
			return next, err
		}

		v = next
	}

	return v, nil
}

// into selects one step from v, which has no indirection left.
func into(v reflect.Value, s step) (reflect.Value, error) {
	switch v.Kind() {
	case reflect.Map:
		key, err := mapKey(v.Type().Key(), s)
		if err != nil {
			return reflect.Value{}, err
		}

		e := v.MapIndex(key)
		if !e.IsValid() {
			return e, ErrNotFound.Wrap(errors.New("no key " + s.String()))
		}

		return e, nil

	case reflect.Slice, reflect.Array, reflect.String:
		if s.field {
			break
		}

		i, err := position(s.index, v.Len())
		if err != nil {
			return reflect.Value{}, err
		}

		return v.Index(i), nil

	case reflect.Struct:
		if !s.field {
			break
		}

		f := v.FieldByName(s.name)
		if !f.IsValid() || !f.CanInterface() {
			return f, ErrNotFound.Wrap(errors.New("no field " + s.name))
		}

		return f, nil
	}

	if s.field {
		return reflect.Value{}, ErrNotFound.
			Wrap(errors.New("no member " + s.name + " in " + v.Type().String()))
	}

	return reflect.Value{}, ErrIndex.
		Wrap(errors.New("cannot index " + v.Type().String()))
}

// setIn returns v with value stored at path. Maps, slices and pointers are
// updated in place; arrays and structs are copied.
func setIn(v reflect.Value, path []step, value any) (reflect.Value, error) {
	if len(path) == 0 {
		if !v.IsValid() {
			return reflect.ValueOf(value), nil
		}

		return convert(value, v.Type())
	}

	if v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, ErrType.Wrap(errors.New("nil value at " + path[0].String()))
		}

		v = v.Elem()
	}

	if !v.IsValid() {
		return v, ErrType.Wrap(errors.New("nil value at " + path[0].String()))
	}

	s, rest := path[0], path[1:]

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v, ErrType.Wrap(errors.New("nil pointer at " + s.String()))
		}

		e := v.Elem()

		nv, err := setIn(e, path, value)
		if err != nil {
			return v, err
		}

		e.Set(nv)

		return v, nil

	case reflect.Map:
		if v.IsNil() {
			return v, ErrType.Wrap(errors.New("nil map at " + s.String()))
		}

		key, err := mapKey(v.Type().Key(), s)
		if err != nil {
			return v, err
		}

		cur := v.MapIndex(key)
		if !cur.IsValid() {
			if len(rest) > 0 {
				return v, ErrNotFound.Wrap(errors.New("no key " + s.String()))
			}

			cur = reflect.Zero(v.Type().Elem())
		}

		nv, err := setIn(cur, rest, value)
		if err != nil {
			return v, err
		}

		v.SetMapIndex(key, nv)

		return v, nil

	case reflect.Slice:
		if s.field {
			break
		}

		i, err := position(s.index, v.Len())
		if err != nil {
			return v, err
		}

		e := v.Index(i)

		nv, err := setIn(e, rest, value)
		if err != nil {
			return v, err
		}

		e.Set(nv)

		return v, nil

	case reflect.Array, reflect.Struct:
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)

		var e reflect.Value

		if v.Kind() == reflect.Array {
			if s.field {
				break
			}

			i, err := position(s.index, v.Len())
			if err != nil {
				return v, err
			}

			e = cp.Index(i)
		} else {
			if !s.field {
				break
			}

			e = cp.FieldByName(s.name)
			if !e.IsValid() || !e.CanSet() {
				return v, ErrNotFound.Wrap(errors.New("no field " + s.name))
			}
		}

		nv, err := setIn(e, rest, value)
		if err != nil {
			return v, err
		}

		e.Set(nv)

		return cp, nil
	}

	if s.field {
		return v, ErrNotFound.
			Wrap(errors.New("no member " + s.name + " in " + v.Type().String()))
	}

	return v, ErrIndex.Wrap(errors.New("cannot index " + v.Type().String()))
}

func mapKey(t reflect.Type, s step) (reflect.Value, error) {
	var k any = s.index
	if s.field {
		k = s.name
	}

	key, err := convert(k, t)
	if err != nil {
		return key, ErrIndex.Wrap(err)
	}

	return key, nil
}

// annotate attaches the accessed path to err.
func annotate(err error, path string) error {
	return with(err, slog.String("path", path))
}

func with(err error, attrs ...slog.Attr) error {
	if e, ok := err.(*lang.Error); ok {
		return e.With(attrs...)
	}

	return err
}
