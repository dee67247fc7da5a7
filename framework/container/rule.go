package container

import (
	"maps"
	"slices"

	"github.com/km-arc/go-dice/framework/typeinfo"
)

// Wildcard is the key of the default rule every other rule is merged over.
const Wildcard = "*"

// Args maps constructor parameter names to values. Values may be Deferred
// or plain containers holding Deferred values at any depth.
type Args map[string]any

// Call is a post-construction method invocation.
type Call struct {
	Method string
	Args   []any
}

// Rule describes how instances of one type are built.
type Rule struct {
	Name            string
	Shared          bool
	Inherit         bool
	InstanceOf      string
	ConstructParams Args
	Substitutions   map[string]any
	NewInstances    []string
	ShareInstances  []string
	Call            []Call
}

// defaultRule is the wildcard rule a new Container starts with.
func defaultRule() Rule {
	return Rule{Name: Wildcard, Inherit: true}
}

// clone returns a copy that shares no mutable state with r. Leaf values in
// ConstructParams and Substitutions are shared.
func (r Rule) clone() Rule {
	cp := r
	cp.ConstructParams = maps.Clone(r.ConstructParams)
	cp.Substitutions = maps.Clone(r.Substitutions)
	cp.NewInstances = slices.Clone(r.NewInstances)
	cp.ShareInstances = slices.Clone(r.ShareInstances)
	cp.Call = slices.Clone(r.Call)
	return cp
}

// forcesNew reports whether name is listed in NewInstances.
func (r Rule) forcesNew(name string) bool {
	key := typeinfo.Normalize(name)
	for _, n := range r.NewInstances {
		if typeinfo.Normalize(n) == key {
			return true
		}
	}
	return false
}

// substitution returns the substitution declared for a dependency type.
func (r Rule) substitution(name string) (any, bool) {
	if name == "" {
		return nil, false
	}
	v, ok := r.Substitutions[typeinfo.Normalize(name)]
	return v, ok
}

// ── Options ───────────────────────────────────────────────────────────────────

// RuleOption sets one field of a rule being registered.
type RuleOption func(*Rule) error

// Shared caches the first built instance and reuses it for every request.
func Shared(shared bool) RuleOption {
	return func(r *Rule) error { r.Shared = shared; return nil }
}

// Inherit lets types without a rule of their own use this rule when they
// descend from the ruled type.
func Inherit(inherit bool) RuleOption {
	return func(r *Rule) error { r.Inherit = inherit; return nil }
}

// InstanceOf builds the named concrete type whenever the ruled name is requested.
//
//	c.AddRule("Cache", container.InstanceOf("RedisCache"))
func InstanceOf(name string) RuleOption {
	return func(r *Rule) error { r.InstanceOf = name; return nil }
}

// ConstructParams sets constructor arguments by parameter name. Keys are
// merged over the template's params; caller arguments to Get win over both.
func ConstructParams(args Args) RuleOption {
	return func(r *Rule) error {
		if r.ConstructParams == nil {
			r.ConstructParams = make(Args, len(args))
		}
		maps.Copy(r.ConstructParams, args)
		return nil
	}
}

// Substitute replaces auto-resolution of the dependency type dep. A string
// value names a type to build instead; a Deferred is invoked; anything else
// is used as is after deferred expansion.
//
//	c.AddRule("Mailer", container.Substitute("Transport", container.Ref("SMTPTransport")))
func Substitute(dep string, value any) RuleOption {
	return func(r *Rule) error {
		if typeinfo.Normalize(dep) == "" {
			return newError(KindInvalidRule, r.Name).detail("substitution without a type name")
		}
		if r.Substitutions == nil {
			r.Substitutions = make(map[string]any)
		}
		r.Substitutions[typeinfo.Normalize(dep)] = value
		return nil
	}
}

// NewInstances forces a fresh instance of each named dependency, bypassing
// the shared cache.
func NewInstances(names ...string) RuleOption {
	return func(r *Rule) error { r.NewInstances = append(r.NewInstances, names...); return nil }
}

// ShareInstances resolves each named type once per build and offers the
// instances to every parameter of the dependency tree below it.
func ShareInstances(names ...string) RuleOption {
	return func(r *Rule) error { r.ShareInstances = append(r.ShareInstances, names...); return nil }
}

// CallMethod appends a post-construction call. Arguments are deferred-expanded
// at build time but not auto-injected.
func CallMethod(method string, args ...any) RuleOption {
	return func(r *Rule) error {
		if method == "" {
			return newError(KindInvalidRule, r.Name).detail("call without a method name")
		}
		r.Call = append(r.Call, Call{Method: method, Args: args})
		return nil
	}
}
