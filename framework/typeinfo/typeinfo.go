package typeinfo

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ── Provider ──────────────────────────────────────────────────────────────────

// Provider is the introspection capability the container consumes.
//
// Implementations may be backed by runtime reflection (see Registry), a
// generated descriptor table, or anything else that can answer these
// questions by type name.
type Provider interface {
	// Lookup returns the descriptor registered under name.
	Lookup(name string) (*Type, bool)

	// Ancestors returns the ancestor type names of name, nearest first.
	Ancestors(name string) []string

	// NameOf returns the registered name of the runtime type of v.
	NameOf(v any) (string, bool)
}

var (
	// ErrNotFunc is returned when a constructor is not a function.
	ErrNotFunc = errors.New("typeinfo: constructor is not a function")
	// ErrBadReturn is returned when a constructor does not return T or (T, error).
	ErrBadReturn = errors.New("typeinfo: constructor must return T or (T, error)")
	// ErrNoMethod is returned by Invoke when the method does not exist.
	ErrNoMethod = errors.New("typeinfo: no such method")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Normalize folds a type name into its lookup key.
//
//	Normalize(" \\App.Logger") // "app.logger"
func Normalize(name string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(name), `.\`))
}

// ── Param ─────────────────────────────────────────────────────────────────────

// Param describes one constructor parameter.
type Param struct {
	// Name is the declared name, or the position ("0", "1", …) when none was given.
	Name string
	// Type is the Go type of the parameter. For variadic parameters it is the slice type.
	Type reflect.Type
	// TypeName is the registered name of the parameter's type, empty when unregistered.
	TypeName string
	Variadic bool

	HasDefault bool
	Default    any
}

// Elem returns the type of a single argument: the element type for variadic
// parameters, Type otherwise.
func (p Param) Elem() reflect.Type {
	if p.Variadic {
		return p.Type.Elem()
	}
	return p.Type
}

// ── Type ──────────────────────────────────────────────────────────────────────

// Type describes how to build one named type.
type Type struct {
	name     string
	goType   reflect.Type
	ctor     reflect.Value
	params   []Param
	parents  []string
	abstract bool
	hasErr   bool
}

// TypeOption configures a Type at registration.
type TypeOption func(*Type) error

// Params names the constructor parameters in declaration order.
// Unnamed trailing parameters keep their positional names.
func Params(names ...string) TypeOption {
	return func(t *Type) error {
		if len(names) > len(t.params) {
			return fmt.Errorf("typeinfo: %s: %d names for %d parameters", t.name, len(names), len(t.params))
		}
		for i, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				t.params[i].Name = n
			}
		}
		return nil
	}
}

// Default declares a default value for the named parameter.
func Default(param string, value any) TypeOption {
	return func(t *Type) error {
		for i := range t.params {
			if t.params[i].Name == param {
				t.params[i].HasDefault = true
				t.params[i].Default = value
				return nil
			}
		}
		return fmt.Errorf("typeinfo: %s has no parameter %q", t.name, param)
	}
}

// Extends declares explicit parent type names, nearest first.
func Extends(parents ...string) TypeOption {
	return func(t *Type) error {
		t.parents = append(t.parents, parents...)
		return nil
	}
}

// NewType builds a descriptor.
//
// ctor is either a constructor function returning T or (T, error), or a
// sample value (such as (*Logger)(nil)) for types built without a constructor.
func NewType(name string, ctor any, opts ...TypeOption) (*Type, error) {
	if ctor == nil {
		return nil, ErrNotFunc
	}
	t := &Type{name: strings.TrimLeft(strings.TrimSpace(name), `.\`)}

	cv := reflect.ValueOf(ctor)
	if cv.Kind() == reflect.Func {
		ct := cv.Type()
		switch {
		case ct.NumOut() == 1:
		case ct.NumOut() == 2 && ct.Out(1) == errorType:
			t.hasErr = true
		default:
			return nil, ErrBadReturn
		}
		t.ctor = cv
		t.goType = ct.Out(0)
		t.params = make([]Param, ct.NumIn())
		for i := range t.params {
			t.params[i] = Param{
				Name:     strconv.Itoa(i),
				Type:     ct.In(i),
				Variadic: ct.IsVariadic() && i == ct.NumIn()-1,
			}
		}
	} else {
		gt := cv.Type()
		if gt.Kind() != reflect.Pointer {
			gt = reflect.PointerTo(gt)
		}
		t.goType = gt
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// newInterface builds an abstract descriptor for an interface type.
func newInterface(name string, iface reflect.Type, opts ...TypeOption) (*Type, error) {
	t := &Type{name: strings.TrimLeft(strings.TrimSpace(name), `.\`), goType: iface, abstract: true}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Name returns the registered name with its original case.
func (t *Type) Name() string { return t.name }

// GoType returns the type of the instances this descriptor builds.
func (t *Type) GoType() reflect.Type { return t.goType }

// Abstract reports whether the type cannot be instantiated directly.
func (t *Type) Abstract() bool { return t.abstract }

// HasConstructor reports whether instances are built by calling a constructor.
func (t *Type) HasConstructor() bool { return t.ctor.IsValid() }

// Params returns a copy of the constructor parameters.
func (t *Type) Params() []Param {
	out := make([]Param, len(t.params))
	copy(out, t.params)
	return out
}

// Parents returns the explicitly declared parent names.
func (t *Type) Parents() []string { return t.parents }

// New builds an instance. args must already match the constructor signature,
// with variadic arguments spread out individually.
func (t *Type) New(args []reflect.Value) (any, error) {
	if !t.ctor.IsValid() {
		if t.goType.Kind() != reflect.Pointer {
			return reflect.Zero(t.goType).Interface(), nil
		}
		return reflect.New(t.goType.Elem()).Interface(), nil
	}
	out := t.ctor.Call(args)
	if t.hasErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// HasMethod reports whether instances of the type expose the named method.
func (t *Type) HasMethod(name string) bool {
	_, ok := t.goType.MethodByName(name)
	return ok
}

// Invoke calls method on instance, converting args to the method's parameter
// types. A trailing error result is returned as the call error.
func Invoke(instance any, method string, args []any) error {
	m := reflect.ValueOf(instance).MethodByName(method)
	if !m.IsValid() {
		return fmt.Errorf("%w: %T.%s", ErrNoMethod, instance, method)
	}
	mt := m.Type()

	in := make([]reflect.Value, 0, len(args))
	for i, a := range args {
		var pt reflect.Type
		switch {
		case mt.IsVariadic() && i >= mt.NumIn()-1:
			pt = mt.In(mt.NumIn() - 1).Elem()
		case i < mt.NumIn():
			pt = mt.In(i)
		default:
			return fmt.Errorf("typeinfo: %T.%s takes %d arguments, got %d", instance, method, mt.NumIn(), len(args))
		}
		v, err := Convert(a, pt)
		if err != nil {
			return fmt.Errorf("typeinfo: %T.%s argument %d: %w", instance, method, i, err)
		}
		in = append(in, v)
	}
	if want := mt.NumIn(); mt.IsVariadic() {
		if len(in) < want-1 {
			return fmt.Errorf("typeinfo: %T.%s takes at least %d arguments, got %d", instance, method, want-1, len(in))
		}
	} else if len(in) != want {
		return fmt.Errorf("typeinfo: %T.%s takes %d arguments, got %d", instance, method, want, len(in))
	}

	out := m.Call(in)
	if n := len(out); n > 0 && mt.Out(n-1) == errorType && !out[n-1].IsNil() {
		return out[n-1].Interface().(error)
	}
	return nil
}
