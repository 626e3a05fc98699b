package scope

import (
	"errors"
	"math"
	"reflect"
	"strconv"
)

// convert returns value as a reflect.Value of type t. Numbers convert
// between numeric kinds as long as no integral part is lost.
func convert(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice,
			reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}

		return reflect.Value{}, ErrType.
			Wrap(errors.New("cannot use nil as " + t.String()))
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}

	if numeric(v.Kind()) && numeric(t.Kind()) {
		if isInt(t.Kind()) && isFloat(v.Kind()) {
			f := v.Float()
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				return reflect.Value{}, ErrType.
					Wrap(errors.New("cannot use " + strconv.FormatFloat(f, 'g', -1, 64) +
						" as " + t.String()))
			}
		}

		return v.Convert(t), nil
	}

	if v.Kind() == reflect.String && t.Kind() == reflect.String {
		return v.Convert(t), nil
	}

	return reflect.Value{}, ErrType.
		Wrap(errors.New("cannot use " + v.Type().String() + " as " + t.String()))
}

// position converts an index value to an element position in a sequence
// of length n.
func position(index any, n int) (int, error) {
	i, ok := integer(index)
	if !ok {
		return 0, ErrIndex.
			Wrap(errors.New("index must be an integer, not " + typeName(index)))
	}

	if i < 0 {
		i += n
	}

	if i < 0 || i >= n {
		return 0, ErrIndex.
			Wrap(errors.New("index " + strconv.Itoa(i) + " out of range [0:" +
				strconv.Itoa(n) + "]"))
	}

	return i, nil
}

func integer(v any) (int, bool) {
	rv := reflect.ValueOf(v)

	switch {
	case !rv.IsValid():
		return 0, false

	case isInt(rv.Kind()):
		if rv.CanInt() {
			return int(rv.Int()), true
		}

		return int(rv.Uint()), true

	case isFloat(rv.Kind()):
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, false
		}

		return int(f), true
	}

	return 0, false
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}

	return reflect.TypeOf(v).String()
}

func numeric(k reflect.Kind) bool { return isInt(k) || isFloat(k) }

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
