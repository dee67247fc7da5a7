package container

// ContextualBuilder implements the fluent contextual substitution API.
//
//	c.When("PhotoController").Needs("Filesystem").GiveType("S3Filesystem")
//
// is shorthand for adding container.Substitute("Filesystem", "S3Filesystem")
// to PhotoController's rule. The substitution is added to the type's current
// rule, or to a copy of the wildcard rule when it has none.
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// When starts a contextual substitution for the consumer type concrete.
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// Needs names the dependency type being substituted.
func (b *ContextualBuilder) Needs(dep string) *ContextualBuilder {
	b.needs = dep
	return b
}

// Give substitutes a value. Deferred values and containers holding them are
// expanded at build time; other values are injected as they are.
//
//	c.When("Uploader").Needs("Storage").Give(&MemoryStorage{})
func (b *ContextualBuilder) Give(value any) error {
	return b.container.extendRule(b.concrete, Substitute(b.needs, value))
}

// GiveType substitutes an instance of another registered type.
func (b *ContextualBuilder) GiveType(name string) error {
	return b.Give(name)
}

// GiveFunc substitutes the result of fn, computed on every build.
//
//	c.When("Report").Needs("Clock").GiveFunc(func(*container.Scope) (any, error) {
//	    return FixedClock{At: time.Unix(0, 0)}, nil
//	})
func (b *ContextualBuilder) GiveFunc(fn func(s *Scope) (any, error)) error {
	if fn == nil {
		return newError(KindNotCallable, b.concrete).detail("nil substitution function for " + b.needs)
	}
	return b.Give(Lazy(fn))
}
