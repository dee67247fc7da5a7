package inspect

import (
	"fmt"

	"github.com/km-arc/go-dice/framework/container"
	"github.com/km-arc/go-dice/framework/typeinfo"
)

// RuleView is the JSON form of a rule. Deferred values render as
// "<deferred>" and live objects as "<instance *pkg.Type>".
type RuleView struct {
	Name            string         `json:"name"`
	Own             bool           `json:"own"`
	Shared          bool           `json:"shared"`
	Inherit         bool           `json:"inherit"`
	InstanceOf      string         `json:"instance_of,omitempty"`
	ConstructParams map[string]any `json:"construct_params,omitempty"`
	Substitutions   map[string]any `json:"substitutions,omitempty"`
	NewInstances    []string       `json:"new_instances,omitempty"`
	ShareInstances  []string       `json:"share_instances,omitempty"`
	Call            []CallView     `json:"call,omitempty"`
}

type CallView struct {
	Method string `json:"method"`
	Args   []any  `json:"args,omitempty"`
}

// TypeView is the JSON form of a type descriptor.
type TypeView struct {
	Name        string      `json:"name"`
	GoType      string      `json:"go_type"`
	Abstract    bool        `json:"abstract"`
	Constructor bool        `json:"constructor"`
	Params      []ParamView `json:"params,omitempty"`
	Ancestors   []string    `json:"ancestors,omitempty"`
}

type ParamView struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	TypeName string `json:"type_name,omitempty"`
	Variadic bool   `json:"variadic,omitempty"`
	Default  any    `json:"default,omitempty"`
}

func viewRule(r container.Rule, own bool) RuleView {
	v := RuleView{
		Name:           r.Name,
		Own:            own,
		Shared:         r.Shared,
		Inherit:        r.Inherit,
		InstanceOf:     r.InstanceOf,
		NewInstances:   r.NewInstances,
		ShareInstances: r.ShareInstances,
	}
	if len(r.ConstructParams) > 0 {
		v.ConstructParams = describe(map[string]any(r.ConstructParams)).(map[string]any)
	}
	if len(r.Substitutions) > 0 {
		v.Substitutions = describe(r.Substitutions).(map[string]any)
	}
	for _, c := range r.Call {
		cv := CallView{Method: c.Method}
		if len(c.Args) > 0 {
			cv.Args = describe(c.Args).([]any)
		}
		v.Call = append(v.Call, cv)
	}
	return v
}

func viewType(t *typeinfo.Type, ancestors []string) TypeView {
	v := TypeView{
		Name:        t.Name(),
		GoType:      t.GoType().String(),
		Abstract:    t.Abstract(),
		Constructor: t.HasConstructor(),
		Ancestors:   ancestors,
	}
	for _, p := range t.Params() {
		pv := ParamView{Name: p.Name, Type: p.Type.String(), TypeName: p.TypeName, Variadic: p.Variadic}
		if p.HasDefault {
			pv.Default = describe(p.Default)
		}
		v.Params = append(v.Params, pv)
	}
	return v
}

// describe makes v safe for JSON encoding.
func describe(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int, int64, float64:
		return x
	case container.Deferred:
		return "<deferred>"
	case container.Args:
		return describe(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = describe(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = describe(e)
		}
		return out
	case []string:
		return x
	}
	return fmt.Sprintf("<instance %T>", v)
}
