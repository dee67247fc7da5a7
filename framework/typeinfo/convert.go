package typeinfo

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// ErrTypeMismatch is wrapped by Convert when a value cannot be used as the target type.
var ErrTypeMismatch = errors.New("typeinfo: type mismatch")

// Convert turns v into a value of type t.
//
// Assignable values pass through. nil becomes the zero value of nilable
// kinds. Numeric kinds convert between each other (rule files decode numbers
// as int or float64) when the value fits the target exactly: no overflow, no
// fractional part for integers, no sign for unsigned kinds. Strings convert
// to named string types, and slices convert element by element.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil is not a valid %s", ErrTypeMismatch, t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	switch {
	case isNumeric(rv.Kind()) && isNumeric(t.Kind()):
		if !fits(rv, t) {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit in %s", ErrTypeMismatch, v, t)
		}
		return rv.Convert(t), nil
	case rv.Kind() == reflect.String && t.Kind() == reflect.String:
		return rv.Convert(t), nil
	case rv.Kind() == reflect.Slice && t.Kind() == reflect.Slice:
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := Convert(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s", ErrTypeMismatch, rv.Type(), t)
}

// IsSequence reports whether v is a slice or array that can be spliced into
// variadic arguments.
func IsSequence(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// fits reports whether the numeric value rv converts to t without changing
// its value. Float targets only reject values outside their range.
func fits(rv reflect.Value, t reflect.Type) bool {
	z := reflect.Zero(t)
	to := t.Kind()

	switch from := rv.Kind(); {
	case isInt(from):
		n := rv.Int()
		switch {
		case isInt(to):
			return !z.OverflowInt(n)
		case isUint(to):
			return n >= 0 && !z.OverflowUint(uint64(n))
		}
		return true

	case isUint(from):
		n := rv.Uint()
		switch {
		case isInt(to):
			return n <= math.MaxInt64 && !z.OverflowInt(int64(n))
		case isUint(to):
			return !z.OverflowUint(n)
		}
		return true
	}

	f := rv.Float()
	switch {
	case isInt(to):
		return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !z.OverflowInt(int64(f))
	case isUint(to):
		return f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !z.OverflowUint(uint64(f))
	}
	return math.IsInf(f, 0) || math.IsNaN(f) || !z.OverflowFloat(f)
}
