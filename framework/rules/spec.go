package rules

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-dice/framework/container"
)

// Custom YAML tags that become deferred values.
const (
	TagRef      = "!ref"      // !ref Logger     resolve another type
	TagEnv      = "!env"      // !env MAIL_HOST  read an environment variable
	TagSelf     = "!self"     // !self           the container itself
	tagDeferred = "!deferred" // written by Dump for values that cannot be printed
	tagInstance = "!instance" // written by Dump for live objects
)

// Spec is the YAML form of one rule. Pointer fields distinguish "not set,
// keep the wildcard's value" from an explicit false.
type Spec struct {
	Shared          *bool            `yaml:"shared,omitempty"`
	Inherit         *bool            `yaml:"inherit,omitempty"`
	InstanceOf      string           `yaml:"instance_of,omitempty"`
	ConstructParams map[string]Value `yaml:"construct_params,omitempty"`
	Substitutions   map[string]Value `yaml:"substitutions,omitempty"`
	NewInstances    []string         `yaml:"new_instances,omitempty"`
	ShareInstances  []string         `yaml:"share_instances,omitempty"`
	Call            []CallSpec       `yaml:"call,omitempty"`
}

// CallSpec is one post-construction call.
type CallSpec struct {
	Method string  `yaml:"method"`
	Args   []Value `yaml:"args,omitempty"`
}

// Entry is a named rule in file order.
type Entry struct {
	Name string
	Spec Spec
}

// Options converts the spec into container rule options.
func (s Spec) Options() []container.RuleOption {
	var opts []container.RuleOption
	if s.Shared != nil {
		opts = append(opts, container.Shared(*s.Shared))
	}
	if s.Inherit != nil {
		opts = append(opts, container.Inherit(*s.Inherit))
	}
	if s.InstanceOf != "" {
		opts = append(opts, container.InstanceOf(s.InstanceOf))
	}
	if len(s.ConstructParams) > 0 {
		args := make(container.Args, len(s.ConstructParams))
		for k, v := range s.ConstructParams {
			args[k] = v.V
		}
		opts = append(opts, container.ConstructParams(args))
	}
	for _, dep := range slices.Sorted(maps.Keys(s.Substitutions)) {
		opts = append(opts, container.Substitute(dep, s.Substitutions[dep].V))
	}
	if len(s.NewInstances) > 0 {
		opts = append(opts, container.NewInstances(s.NewInstances...))
	}
	if len(s.ShareInstances) > 0 {
		opts = append(opts, container.ShareInstances(s.ShareInstances...))
	}
	for _, call := range s.Call {
		args := make([]any, len(call.Args))
		for i, a := range call.Args {
			args[i] = a.V
		}
		opts = append(opts, container.CallMethod(call.Method, args...))
	}
	return opts
}

// FromRule is the inverse of Options, used to print effective rules.
func FromRule(r container.Rule) Spec {
	shared, inherit := r.Shared, r.Inherit
	s := Spec{
		Shared:         &shared,
		Inherit:        &inherit,
		InstanceOf:     r.InstanceOf,
		NewInstances:   r.NewInstances,
		ShareInstances: r.ShareInstances,
	}
	if len(r.ConstructParams) > 0 {
		s.ConstructParams = make(map[string]Value, len(r.ConstructParams))
		for k, v := range r.ConstructParams {
			s.ConstructParams[k] = Value{V: v}
		}
	}
	if len(r.Substitutions) > 0 {
		s.Substitutions = make(map[string]Value, len(r.Substitutions))
		for k, v := range r.Substitutions {
			s.Substitutions[k] = Value{V: v}
		}
	}
	for _, call := range r.Call {
		cs := CallSpec{Method: call.Method}
		for _, a := range call.Args {
			cs.Args = append(cs.Args, Value{V: a})
		}
		s.Call = append(s.Call, cs)
	}
	return s
}

// ── Value ─────────────────────────────────────────────────────────────────────

// Value is a rule value decoded from YAML: a plain scalar, map[string]any,
// []any, or a container.Deferred for the custom tags, at any depth.
type Value struct {
	V any
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	x, err := decodeNode(n)
	if err != nil {
		return err
	}
	v.V = x
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return encodeValue(v.V), nil
}

func decodeNode(n *yaml.Node) (any, error) {
	switch n.Tag {
	case TagRef:
		name := strings.TrimSpace(n.Value)
		if n.Kind != yaml.ScalarNode || name == "" {
			return nil, fmt.Errorf("line %d: %s needs a type name", n.Line, TagRef)
		}
		return container.Ref(name), nil
	case TagEnv:
		key := strings.TrimSpace(n.Value)
		if n.Kind != yaml.ScalarNode || key == "" {
			return nil, fmt.Errorf("line %d: %s needs a variable name", n.Line, TagEnv)
		}
		return container.Env(key), nil
	case TagSelf:
		return container.Self, nil
	}
	if strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		return nil, fmt.Errorf("line %d: unknown tag %s", n.Line, n.Tag)
	}

	switch n.Kind {
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := decodeNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = val
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	}

	var x any
	if err := n.Decode(&x); err != nil {
		return nil, err
	}
	return x, nil
}

func encodeValue(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int, int64, float64:
		return x
	case container.Deferred:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagDeferred, Value: ""}
	case container.Args:
		return encodeValue(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = encodeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = encodeValue(e)
		}
		return out
	case []string:
		return x
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagInstance, Value: fmt.Sprintf("%T", v)}
}
