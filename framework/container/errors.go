package container

import (
	"strings"
)

// Kind categorizes a resolution or registration failure.
type Kind string

const (
	KindNotFound      Kind = "not_found"      // no such type
	KindAbstract      Kind = "abstract"       // interface without InstanceOf
	KindMissingMethod Kind = "missing_method" // post-construction call target
	KindNotCallable   Kind = "not_callable"   // nil deferred value
	KindNotInstance   Kind = "not_instance"   // AddInstances entry
	KindUnresolvable  Kind = "unresolvable"   // constructor parameter
	KindCycle         Kind = "cycle"          // type requires itself
	KindTypeMismatch  Kind = "type_mismatch"  // value not usable as parameter type
	KindConstruct     Kind = "construct"      // constructor or call returned an error
	KindInvalidRule   Kind = "invalid_rule"   // rejected at AddRule
)

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAbstract      = &Error{Kind: KindAbstract}
	ErrMissingMethod = &Error{Kind: KindMissingMethod}
	ErrNotCallable   = &Error{Kind: KindNotCallable}
	ErrNotInstance   = &Error{Kind: KindNotInstance}
	ErrUnresolvable  = &Error{Kind: KindUnresolvable}
	ErrCycle         = &Error{Kind: KindCycle}
	ErrTypeMismatch  = &Error{Kind: KindTypeMismatch}
	ErrConstruct     = &Error{Kind: KindConstruct}
	ErrInvalidRule   = &Error{Kind: KindInvalidRule}
)

// Error is the structured error returned by the container.
//
//	var e *container.Error
//	if errors.As(err, &e) && e.Kind == container.KindUnresolvable {
//	    log.Printf("%s needs %s", e.Type, e.Param)
//	}
type Error struct {
	Kind   Kind
	Type   string   // type being built or registered
	Param  string   // constructor parameter, if any
	Method string   // post-construction method, if any
	Detail string
	Path   []string // resolution chain, outermost first
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("container: ")
	b.WriteString(string(e.Kind))
	if e.Type != "" {
		b.WriteString(" [")
		b.WriteString(e.Type)
		if e.Param != "" {
			b.WriteString(" $")
			b.WriteString(e.Param)
		}
		if e.Method != "" {
			b.WriteString(" ->")
			b.WriteString(e.Method)
			b.WriteString("()")
		}
		b.WriteByte(']')
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Path) > 0 {
		b.WriteString(" (via ")
		b.WriteString(strings.Join(e.Path, " -> "))
		b.WriteByte(')')
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same Kind, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, typ string) *Error {
	return &Error{Kind: kind, Type: typ}
}

func (e *Error) detail(msg string) *Error {
	e.Detail = msg
	return e
}

func (e *Error) cause(err error) *Error {
	e.Cause = err
	return e
}

func (e *Error) via(path []string) *Error {
	if len(path) > 0 {
		e.Path = append([]string(nil), path...)
	}
	return e
}
