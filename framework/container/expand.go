package container

import (
	"os"
)

// Scope is the build in progress a Deferred is evaluated for. It embeds the
// container; its Get resolves on the same resolution path, so a dependency
// cycle that runs through a deferred value fails with KindCycle.
type Scope struct {
	*Container
	share []any
	path  []string
}

// Get resolves another type as part of the current build. The current
// share set is passed along.
func (s *Scope) Get(name string, opts ...ResolveOption) (any, error) {
	return s.Container.getOn(name, opts, s.share, s.path)
}

// Share returns the instances shared with the build in progress.
func (s *Scope) Share() []any { return s.share }

// Deferred is a value computed at resolution time. Wherever a Deferred
// appears in ConstructParams, a substitution or call arguments, including
// inside nested Args, map[string]any or []any values, it is replaced by the
// result of invoking it. The result is not expanded further.
type Deferred func(s *Scope) (any, error)

// Lazy wraps a function computed on every build. Resolve through s.Get
// rather than the container so cycles are detected.
//
//	container.ConstructParams(container.Args{
//	    "started": container.Lazy(func(*container.Scope) (any, error) { return time.Now(), nil }),
//	})
func Lazy(fn func(s *Scope) (any, error)) Deferred {
	if fn == nil {
		return nil
	}
	return Deferred(fn)
}

// Ref resolves another type.
//
//	container.Substitute("Transport", container.Ref("SMTPTransport"))
func Ref(name string, opts ...ResolveOption) Deferred {
	return func(s *Scope) (any, error) { return s.Get(name, opts...) }
}

// Self yields the container itself.
var Self Deferred = func(s *Scope) (any, error) { return s.Container, nil }

// Env reads an environment variable at resolution time.
func Env(key string) Deferred {
	return func(*Scope) (any, error) { return os.Getenv(key), nil }
}

// expand replaces every Deferred in v. Plain containers are copied, never
// mutated; any other value, instances included, is returned untouched.
func (c *Container) expand(v any, share []any, path []string) (any, error) {
	switch x := v.(type) {
	case Deferred:
		if x == nil {
			return nil, newError(KindNotCallable, "").detail("deferred value is nil")
		}
		return x(&Scope{Container: c, share: share, path: path})
	case Args:
		return c.expandMap(x, share, path)
	case map[string]any:
		m, err := c.expandMap(x, share, path)
		return map[string]any(m), err
	case []any:
		return c.expandSlice(x, share, path)
	}
	return v, nil
}

func (c *Container) expandMap(m map[string]any, share []any, path []string) (Args, error) {
	if m == nil {
		return nil, nil
	}
	out := make(Args, len(m))
	for k, e := range m {
		ev, err := c.expand(e, share, path)
		if err != nil {
			return nil, err
		}
		out[k] = ev
	}
	return out, nil
}

func (c *Container) expandSlice(s []any, share []any, path []string) ([]any, error) {
	out := make([]any, len(s))
	for i, e := range s {
		ev, err := c.expand(e, share, path)
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}
