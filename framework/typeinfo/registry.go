package typeinfo

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

var (
	// ErrEmptyName is returned when a type is registered without a name.
	ErrEmptyName = errors.New("typeinfo: empty type name")
	// ErrNotInterface is returned by RegisterInterface for non-interface samples.
	ErrNotInterface = errors.New("typeinfo: sample is not a pointer to an interface")
	// ErrConflictingRegistration indicates a Go type registered under two names.
	ErrConflictingRegistration = errors.New("typeinfo: conflicting type registration")
)

// Registry is a reflect-backed Provider. Types are registered by name with
// their constructor; parameter types are matched back to registered names so
// the container knows which parameters it can inject.
//
//	reg := typeinfo.NewRegistry()
//	reg.MustRegister("Logger", NewLogger)
//	reg.MustRegister("Service", NewService, typeinfo.Params("name", "logger"))
//
// Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
	byGo  map[reflect.Type]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Type),
		byGo:  make(map[reflect.Type]string),
	}
}

// Register adds a named type built by ctor. See NewType for accepted ctor values.
// Re-registering a name replaces the previous descriptor.
func (r *Registry) Register(name string, ctor any, opts ...TypeOption) error {
	if Normalize(name) == "" {
		return ErrEmptyName
	}
	t, err := NewType(name, ctor, opts...)
	if err != nil {
		return err
	}
	return r.add(t)
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, ctor any, opts ...TypeOption) {
	if err := r.Register(name, ctor, opts...); err != nil {
		panic(err)
	}
}

// RegisterInterface adds an abstract type. sample must be a nil pointer to
// the interface, e.g. (*io.Writer)(nil). Abstract types can only be resolved
// through a rule's InstanceOf, a substitution, or a seeded instance.
func (r *Registry) RegisterInterface(name string, sample any, opts ...TypeOption) error {
	if Normalize(name) == "" {
		return ErrEmptyName
	}
	st := reflect.TypeOf(sample)
	if st == nil || st.Kind() != reflect.Pointer || st.Elem().Kind() != reflect.Interface {
		return ErrNotInterface
	}
	t, err := newInterface(name, st.Elem(), opts...)
	if err != nil {
		return err
	}
	return r.add(t)
}

func (r *Registry) add(t *Type) error {
	key := Normalize(t.name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byGo[t.goType]; ok && old != key {
		return fmt.Errorf("%w: %s already registered as %q", ErrConflictingRegistration, t.goType, old)
	}
	if prev, ok := r.types[key]; ok {
		delete(r.byGo, prev.goType)
	}
	r.types[key] = t
	r.byGo[t.goType] = key
	return nil
}

// Lookup implements Provider. Parameter TypeNames are filled in at lookup
// time, so registration order does not matter.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[Normalize(name)]
	if !ok {
		return nil, false
	}
	if len(t.params) == 0 {
		return t, true
	}
	cp := *t
	cp.params = t.Params()
	for i := range cp.params {
		if key, ok := r.byGo[cp.params[i].Elem()]; ok {
			cp.params[i].TypeName = r.types[key].name
		}
	}
	return &cp, true
}

// NameOf implements Provider.
func (r *Registry) NameOf(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.byGo[reflect.TypeOf(v)]
	if !ok {
		return "", false
	}
	return r.types[key].name, true
}

// Ancestors implements Provider. Parents are the explicitly declared ones
// followed by registered embedded struct fields; the walk is breadth-first so
// nearer ancestors come first.
func (r *Registry) Ancestors(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start, ok := r.types[Normalize(name)]
	if !ok {
		return nil
	}
	seen := map[string]bool{Normalize(name): true}
	var out []string
	queue := []*Type{start}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for _, p := range r.parentsOf(t) {
			key := Normalize(p)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, p)
			if pt, ok := r.types[key]; ok {
				queue = append(queue, pt)
			}
		}
	}
	return out
}

// parentsOf must be called with r.mu held.
func (r *Registry) parentsOf(t *Type) []string {
	parents := append([]string(nil), t.parents...)

	st := t.goType
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return parents
	}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.Anonymous {
			continue
		}
		for _, ft := range []reflect.Type{f.Type, reflect.PointerTo(f.Type)} {
			if key, ok := r.byGo[ft]; ok {
				parents = append(parents, r.types[key].name)
				break
			}
		}
	}
	return parents
}

// Names returns the registered names sorted by key.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.types))
	for k := range r.types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = r.types[k].name
	}
	return out
}
