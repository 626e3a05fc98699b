package scope

import (
	"errors"
	"log/slog"
	"reflect"
	"strconv"
)

var errorType = reflect.TypeFor[error]()

// callable is a function called by reflection with converted arguments.
type callable struct {
	fn   reflect.Value
	name string
}

func newCallable(name string, fn any) (callable, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return callable{}, ErrNotCallable.
			Wrap(errors.New(typeName(fn) + " is not a function")).
			With(slog.String("name", name))
	}

	return callable{fn: v, name: name}, nil
}

// call converts args to the parameter types of f and calls it. A trailing
// error result becomes the returned error; one other result is returned as
// is and several are returned as a []any.
func (f callable) call(args ...any) (any, error) {
	if !f.fn.IsValid() {
		return nil, ErrNotCallable.With(slog.String("name", f.name))
	}

	in, err := f.arguments(args)
	if err != nil {
		return nil, err
	}

	return results(f.fn.Type(), f.fn.Call(in))
}

func (f callable) arguments(args []any) ([]reflect.Value, error) {
	t := f.fn.Type()
	n := t.NumIn()

	if t.IsVariadic() && len(args) < n-1 || !t.IsVariadic() && len(args) != n {
		want := strconv.Itoa(n)
		if t.IsVariadic() {
			want = "at least " + strconv.Itoa(n-1)
		}

		return nil, ErrType.
			Wrap(errors.New("want " + want + " arguments, got " +
				strconv.Itoa(len(args)))).
			With(slog.String("name", f.name))
	}

	in := make([]reflect.Value, len(args))

	for i, a := range args {
		var pt reflect.Type

		if t.IsVariadic() && i >= n-1 {
			pt = t.In(n - 1).Elem()
		} else {
			pt = t.In(i)
		}

		v, err := convert(a, pt)
		if err != nil {
			return nil, with(err, slog.Int("argument", i), slog.String("name", f.name))
		}

		in[i] = v
	}

	return in, nil
}

func results(t reflect.Type, out []reflect.Value) (any, error) {
	var err error

	if n := len(out); n > 0 && t.Out(n-1) == errorType {
		if e := out[n-1]; !e.IsNil() {
			err, _ = e.Interface().(error)
		}

		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, err

	case 1:
		return out[0].Interface(), err
	}

	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}

	return vals, err
}
