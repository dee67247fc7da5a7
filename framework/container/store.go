package container

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/go-dice/framework/typeinfo"
)

// ── Rule store ────────────────────────────────────────────────────────────────

// AddRule registers the rule for name. The rule starts as a copy of the
// current wildcard rule and the options are applied over it. Registering a
// name again replaces its rule entirely.
//
// Registering Wildcard changes the template for rules registered afterwards;
// rules already stored keep their values.
//
// Rules must be registered before the first Get of the type: builders are
// memoized and never invalidated.
//
//	c.AddRule("Logger", container.Shared(true))
//	c.AddRule("Service", container.ConstructParams(container.Args{"name": "svc"}))
func (c *Container) AddRule(name string, opts ...RuleOption) error {
	key := typeinfo.Normalize(name)
	if key == "" {
		return newError(KindInvalidRule, name).detail("empty type name")
	}

	c.mu.RLock()
	rule := c.rules[Wildcard].clone()
	c.mu.RUnlock()

	rule.Name = strings.TrimLeft(strings.TrimSpace(name), `.\`)
	if err := applyOptions(&rule, opts); err != nil {
		return err
	}
	if key == Wildcard && rule.InstanceOf != "" {
		return newError(KindInvalidRule, name).detail("the wildcard rule cannot set InstanceOf")
	}

	c.mu.Lock()
	c.rules[key] = rule
	c.mu.Unlock()

	c.log.Debug("rule registered",
		zap.String("type", rule.Name),
		zap.Bool("shared", rule.Shared),
		zap.Bool("inherit", rule.Inherit),
		zap.String("instanceOf", rule.InstanceOf),
	)
	return nil
}

// extendRule applies opts over the exact rule for name (or a wildcard copy)
// and stores the result.
func (c *Container) extendRule(name string, opts ...RuleOption) error {
	key := typeinfo.Normalize(name)
	if key == "" {
		return newError(KindInvalidRule, name).detail("empty type name")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	rule, ok := c.rules[key]
	if ok {
		rule = rule.clone()
	} else {
		rule = c.rules[Wildcard].clone()
		rule.Name = strings.TrimLeft(strings.TrimSpace(name), `.\`)
	}
	if err := applyOptions(&rule, opts); err != nil {
		return err
	}
	c.rules[key] = rule
	return nil
}

func applyOptions(rule *Rule, opts []RuleOption) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(rule); err != nil {
			return err
		}
	}
	return nil
}

// ── Rule resolver ─────────────────────────────────────────────────────────────

// Rule returns the rule that applies to name: its own rule, else the rule of
// the nearest ancestor that allows inheritance, else the wildcard rule.
// The result is a copy.
func (c *Container) Rule(name string) Rule {
	return c.rule(name).clone()
}

func (c *Container) rule(name string) Rule {
	key := typeinfo.Normalize(name)

	c.mu.RLock()
	if r, ok := c.rules[key]; ok {
		c.mu.RUnlock()
		return r
	}
	c.mu.RUnlock()

	// Ancestors come from the provider, which has its own locking.
	ancestors := c.types.Ancestors(name)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range ancestors {
		if r, ok := c.rules[typeinfo.Normalize(a)]; ok && r.Inherit {
			return r
		}
	}
	return c.rules[Wildcard]
}

// HasRule reports whether name has a rule of its own.
func (c *Container) HasRule(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rules[typeinfo.Normalize(name)]
	return ok
}

// RuleNames returns the keys of all registered rules, wildcard included, sorted.
func (c *Container) RuleNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.rules))
	for k := range c.rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
