package container

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-dice/framework/typeinfo"
)

// builder constructs one instance of a type. It is built once per type key
// and memoized for the lifetime of the container.
type builder func(args Args, share []any, forceNew bool, path []string) (any, error)

// ── Container ─────────────────────────────────────────────────────────────────

// Container resolves type names into fully wired instances according to rules.
//
// It owns:
//   - the rule store (type key → Rule, plus the wildcard template)
//   - memoized builders (type key → builder)
//   - the shared-instance cache (type key → instance)
//   - deferred provider hooks (type key → registration callback)
//
// Rules are meant to be registered during initialisation, before the first
// Get. Map access is guarded by mu; the lock is never held while user
// constructors run, so resolution may re-enter the container freely.
type Container struct {
	mu sync.RWMutex

	types typeinfo.Provider
	log   *zap.Logger

	// type key → rule; always holds Wildcard
	rules map[string]Rule

	// type key → memoized builder
	builders map[string]builder

	// type key → shared instance
	instances map[string]any

	// type key → one-shot registration run before the first build
	pending map[string]func() error
}

// New creates a container that describes types through types.
func New(types typeinfo.Provider, opts ...Option) *Container {
	c := &Container{
		types:     types,
		log:       zap.NewNop(),
		rules:     map[string]Rule{Wildcard: defaultRule()},
		builders:  make(map[string]builder),
		instances: make(map[string]any),
		pending:   make(map[string]func() error),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Types returns the type provider the container was created with.
func (c *Container) Types() typeinfo.Provider { return c.types }

// ── Resolution ────────────────────────────────────────────────────────────────

type resolveConfig struct {
	args     Args
	forceNew bool
	share    []any
}

// ResolveOption tunes a single Get call.
type ResolveOption func(*resolveConfig)

// WithArgs passes constructor arguments by parameter name. They take
// precedence over the rule's ConstructParams.
func WithArgs(args Args) ResolveOption {
	return func(rc *resolveConfig) {
		if rc.args == nil {
			rc.args = make(Args, len(args))
		}
		for k, v := range args {
			rc.args[k] = v
		}
	}
}

// ForceNew builds a fresh instance even when the type is shared. The fresh
// instance does not replace the cached one.
func ForceNew() ResolveOption {
	return func(rc *resolveConfig) { rc.forceNew = true }
}

// WithShare offers instances to every parameter of the dependency tree.
// String entries are resolved as type names first.
func WithShare(share ...any) ResolveOption {
	return func(rc *resolveConfig) { rc.share = append(rc.share, share...) }
}

// Get returns an instance of the named type.
//
//	svc, err := c.Get("Service", container.WithArgs(container.Args{"name": "api"}))
func (c *Container) Get(name string, opts ...ResolveOption) (any, error) {
	return c.getOn(name, opts, nil, nil)
}

// getOn resolves name for a build already in progress: share is the
// inherited share set and path the keys being built.
func (c *Container) getOn(name string, opts []ResolveOption, share []any, path []string) (any, error) {
	var rc resolveConfig
	for _, opt := range opts {
		opt(&rc)
	}
	extra, err := c.resolveShare(rc.share, path)
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		share = append(share[:len(share):len(share)], extra...)
	}
	return c.get(name, rc.args, rc.forceNew, share, path)
}

// MustGet is like Get but panics on error.
func (c *Container) MustGet(name string, opts ...ResolveOption) any {
	v, err := c.Get(name, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// resolveShare resolves string entries of a share list, one level deep.
func (c *Container) resolveShare(share []any, path []string) ([]any, error) {
	if len(share) == 0 {
		return nil, nil
	}
	out := make([]any, 0, len(share))
	for _, s := range share {
		name, ok := s.(string)
		if !ok {
			out = append(out, s)
			continue
		}
		inst, err := c.get(name, nil, false, nil, path)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (c *Container) get(name string, args Args, forceNew bool, share []any, path []string) (any, error) {
	key := typeinfo.Normalize(name)

	if !forceNew {
		c.mu.RLock()
		inst, ok := c.instances[key]
		c.mu.RUnlock()
		if ok {
			return inst, nil
		}
	}

	for _, p := range path {
		if p == key {
			return nil, newError(KindCycle, name).
				detail(fmt.Sprintf("%s requires itself", name)).
				via(append(path, key))
		}
	}

	if err := c.runPending(key); err != nil {
		return nil, err
	}

	b, err := c.builder(name, key)
	if err != nil {
		return nil, err
	}
	return b(args, share, forceNew, append(path[:len(path):len(path)], key))
}

// builder returns the memoized builder for key, building it on first use.
func (c *Container) builder(name, key string) (builder, error) {
	c.mu.RLock()
	b, ok := c.builders[key]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}

	b, err := c.newBuilder(name, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.builders[key]; ok {
		return prev, nil
	}
	c.builders[key] = b
	return b, nil
}

// newBuilder assembles the builder for one type key:
//
//  1. the rule for name, directed at rule.InstanceOf when set
//  2. the constructor plan, when the type has a constructor
//  3. a call wrapper when the rule declares post-construction calls
//  4. a shared wrapper when the rule is shared
func (c *Container) newBuilder(name, key string) (builder, error) {
	rule := c.rule(name)

	target := name
	if rule.InstanceOf != "" {
		target = rule.InstanceOf
	}
	t, ok := c.types.Lookup(target)
	if !ok {
		e := newError(KindNotFound, target)
		if target != name {
			e.detail(fmt.Sprintf("instanceOf target of %s", name))
		}
		return nil, e
	}
	if t.Abstract() {
		return nil, newError(KindAbstract, t.Name()).detail("register an InstanceOf rule or seed an instance")
	}

	var p *plan
	if t.HasConstructor() {
		p = c.newPlan(t, rule)
	}

	build := func(args Args, share []any, _ bool, path []string) (any, error) {
		var in []reflect.Value
		if p != nil {
			var err error
			if in, err = p.resolve(args, share, path); err != nil {
				return nil, err
			}
		}
		inst, err := t.New(in)
		if err != nil {
			return nil, newError(KindConstruct, t.Name()).cause(err).via(path[:len(path)-1])
		}
		return inst, nil
	}

	if len(rule.Call) > 0 {
		for _, call := range rule.Call {
			if !t.HasMethod(call.Method) {
				return nil, &Error{Kind: KindMissingMethod, Type: t.Name(), Method: call.Method}
			}
		}
		build = c.withCalls(t.Name(), rule.Call, build)
	}

	// Only an instance whose calls all succeeded is cached.
	if rule.Shared && !rule.forcesNew(name) {
		build = c.shared(key, build)
	}

	c.log.Debug("builder created",
		zap.String("type", name),
		zap.String("target", t.Name()),
		zap.Bool("shared", rule.Shared),
		zap.Int("params", len(t.Params())),
		zap.Int("calls", len(rule.Call)),
	)
	return build, nil
}

// shared wraps build so the first instance is cached under key. A forced
// build bypasses the cache in both directions.
func (c *Container) shared(key string, build builder) builder {
	return func(args Args, share []any, forceNew bool, path []string) (any, error) {
		if !forceNew {
			c.mu.RLock()
			inst, ok := c.instances[key]
			c.mu.RUnlock()
			if ok {
				return inst, nil
			}
		}

		inst, err := build(args, share, forceNew, path)
		if err != nil || forceNew {
			return inst, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if prev, ok := c.instances[key]; ok {
			return prev, nil
		}
		c.instances[key] = inst
		c.log.Debug("shared instance stored", zap.String("type", key))
		return inst, nil
	}
}

// withCalls wraps build so each declared method runs after construction, in
// order, with its arguments deferred-expanded.
func (c *Container) withCalls(typ string, calls []Call, build builder) builder {
	return func(args Args, share []any, forceNew bool, path []string) (any, error) {
		inst, err := build(args, share, forceNew, path)
		if err != nil {
			return nil, err
		}
		for _, call := range calls {
			callArgs, err := c.expandSlice(call.Args, share, path)
			if err != nil {
				return nil, err
			}
			if err := typeinfo.Invoke(inst, call.Method, callArgs); err != nil {
				return nil, &Error{Kind: KindConstruct, Type: typ, Method: call.Method, Cause: err}
			}
		}
		return inst, nil
	}
}

// ── Instances ─────────────────────────────────────────────────────────────────

// AddInstances seeds the shared cache with pre-built instances. An empty key
// takes the registered name of the instance's runtime type.
//
//	c.AddInstances(map[string]any{
//	    "Config": cfg,
//	    "":       logger, // keyed by its registered type name
//	})
func (c *Container) AddInstances(instances map[string]any) error {
	seeded := make(map[string]any, len(instances))
	for name, inst := range instances {
		if !isInstance(inst) {
			return newError(KindNotInstance, name).detail(fmt.Sprintf("%T is not an instance", inst))
		}
		if name == "" {
			n, ok := c.types.NameOf(inst)
			if !ok {
				return newError(KindNotFound, fmt.Sprintf("%T", inst)).detail("instance type is not registered")
			}
			name = n
		}
		seeded[typeinfo.Normalize(name)] = inst
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, inst := range seeded {
		c.instances[k] = inst
	}
	return nil
}

func isInstance(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	case reflect.Struct:
		return true
	}
	return false
}

// Has reports whether name can be resolved: it has a seeded or cached
// instance, or a registered, non-abstract type (directly or via InstanceOf).
func (c *Container) Has(name string) bool {
	key := typeinfo.Normalize(name)
	c.mu.RLock()
	_, cached := c.instances[key]
	_, pending := c.pending[key]
	c.mu.RUnlock()
	if cached || pending {
		return true
	}
	target := name
	if r := c.rule(name); r.InstanceOf != "" {
		target = r.InstanceOf
	}
	t, ok := c.types.Lookup(target)
	return ok && !t.Abstract()
}

// Resolved reports whether a shared instance is cached for name.
func (c *Container) Resolved(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[typeinfo.Normalize(name)]
	return ok
}

// Instances returns the keys of all cached shared instances, sorted.
func (c *Container) Instances() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.instances))
	for k := range c.instances {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ── Deferred registration ─────────────────────────────────────────────────────

// Defer runs register the first time any of names is resolved, before its
// rule is looked up. It is how deferred service providers stay lazy.
func (c *Container) Defer(names []string, register func() error) {
	var once sync.Once
	var err error
	run := func() error {
		once.Do(func() { err = register() })
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		c.pending[typeinfo.Normalize(n)] = run
	}
	c.log.Debug("registration deferred", zap.Strings("types", names))
}

func (c *Container) runPending(key string) error {
	c.mu.RLock()
	run, ok := c.pending[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := run(); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
	return nil
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Make resolves name and type-asserts the result.
//
//	svc, err := container.Make[*Service](c, "Service")
func Make[T any](c *Container, name string, opts ...ResolveOption) (T, error) {
	var zero T
	inst, err := c.Get(name, opts...)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, newError(KindTypeMismatch, name).detail(fmt.Sprintf("resolved to %T, want %T", inst, zero))
	}
	return typed, nil
}

// MustMake is like Make but panics on error.
func MustMake[T any](c *Container, name string, opts ...ResolveOption) T {
	v, err := Make[T](c, name, opts...)
	if err != nil {
		panic(err)
	}
	return v
}
