package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-dice/framework/container"
	"github.com/km-arc/go-dice/framework/http/validation"
)

// ErrNotMapping is returned when the top level of a rule file is not a mapping.
var ErrNotMapping = errors.New("rules: top level must be a mapping of type names to rules")

// ── Loading ───────────────────────────────────────────────────────────────────

// Load reads and parses a rule file.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes a rule document. Unknown keys are rejected. Entries come
// back in document order, except that the wildcard rule is moved first so
// it acts as the template for every other entry in the file.
func Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	// The node tree gives key order; the strict decode gives the values.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var specs map[string]Spec
	if err := dec.Decode(&specs); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	entries := make([]Entry, 0, len(specs))
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		spec := specs[name]
		if err := validate(name, spec); err != nil {
			return nil, fmt.Errorf("rules: line %d: %s: %w", root.Content[i].Line, name, err)
		}
		entries = append(entries, Entry{Name: name, Spec: spec})
	}

	// Stable, so the rest keep document order.
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Name == container.Wildcard && b.Name != container.Wildcard:
			return -1
		case b.Name == container.Wildcard && a.Name != container.Wildcard:
			return 1
		}
		return 0
	})
	return entries, nil
}

func validate(name string, s Spec) error {
	data := map[string]string{"name": name, "instance_of": s.InstanceOf}
	checks := validation.Rules{"name": "required|identifier", "instance_of": "nullable|identifier"}

	for i, n := range s.NewInstances {
		key := fmt.Sprintf("new_instances.%d", i)
		data[key], checks[key] = n, "required|identifier"
	}
	for i, n := range s.ShareInstances {
		key := fmt.Sprintf("share_instances.%d", i)
		data[key], checks[key] = n, "required|identifier"
	}
	for dep := range s.Substitutions {
		key := "substitutions." + dep
		data[key], checks[key] = dep, "required|identifier"
	}
	for i, c := range s.Call {
		key := fmt.Sprintf("call.%d.method", i)
		data[key], checks[key] = c.Method, `required|regex:^[A-Z][A-Za-z0-9_]*$`
	}
	return validation.Check(data, checks)
}

// ── Applying ──────────────────────────────────────────────────────────────────

// Apply registers every entry with c, in order. It stops at the first
// rejected rule.
func Apply(c *container.Container, entries []Entry) error {
	for _, e := range entries {
		if err := c.AddRule(e.Name, e.Spec.Options()...); err != nil {
			return fmt.Errorf("rules: %s: %w", e.Name, err)
		}
	}
	c.Logger().Info("rules applied", zap.Int("count", len(entries)))
	return nil
}

// LoadInto is Load followed by Apply.
//
//	if err := rules.LoadInto(c, "config/rules.yaml"); err != nil {
//	    return err
//	}
func LoadInto(c *container.Container, path string) error {
	entries, err := Load(path)
	if err != nil {
		return err
	}
	return Apply(c, entries)
}

// ── Dumping ───────────────────────────────────────────────────────────────────

// Dump writes the effective rules of c as YAML, wildcard first. Deferred
// values print as !deferred and live objects as !instance with their type.
func Dump(w io.Writer, c *container.Container) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range c.RuleNames() {
		r := c.Rule(key)

		var val yaml.Node
		if err := val.Encode(FromRule(r)); err != nil {
			return fmt.Errorf("rules: %s: %w", r.Name, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: r.Name},
			&val,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return enc.Close()
}
