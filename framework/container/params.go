package container

import (
	"reflect"

	"github.com/km-arc/go-dice/framework/typeinfo"
)

var containerType = reflect.TypeOf((*Container)(nil))

// plan is the parameter-resolution plan for one constructor, bound to the
// rule in force when the builder was created.
type plan struct {
	c      *Container
	owner  string
	rule   Rule
	params []planParam
}

type planParam struct {
	typeinfo.Param

	sub      any
	hasSub   bool
	forceNew bool
}

// depName is the key used for substitutions and injection: the registered
// type name when there is one, the Go type string otherwise.
func (p planParam) depName() string {
	if p.TypeName != "" {
		return p.TypeName
	}
	return p.Elem().String()
}

func (c *Container) newPlan(t *typeinfo.Type, rule Rule) *plan {
	params := t.Params()
	p := &plan{c: c, owner: t.Name(), rule: rule, params: make([]planParam, len(params))}
	for i, param := range params {
		pp := planParam{Param: param}
		pp.sub, pp.hasSub = rule.substitution(pp.depName())
		if param.TypeName != "" {
			pp.forceNew = rule.forcesNew(param.TypeName)
		}
		p.params[i] = pp
	}
	return p
}

// resolve produces the constructor arguments, variadic ones spread out.
// For each parameter the first applicable source wins:
//
//  1. an argument of the same name (rule ConstructParams, overridden by args)
//  2. a shared instance assignable to the parameter type
//  3. a substitution for the parameter's type
//  4. the container itself, or an injected instance of a registered type
//  5. the declared default
//
// Variadic parameters with no source receive no arguments; any other
// parameter without a source fails the build.
func (p *plan) resolve(args Args, share []any, path []string) ([]reflect.Value, error) {
	c := p.c

	if len(p.rule.ShareInstances) > 0 {
		extra := make([]any, len(p.rule.ShareInstances))
		for i, n := range p.rule.ShareInstances {
			extra[i] = n
		}
		resolved, err := c.resolveShare(extra, path)
		if err != nil {
			return nil, err
		}
		share = append(share[:len(share):len(share)], resolved...)
	}

	merged := args
	if len(p.rule.ConstructParams) > 0 {
		expanded, err := c.expandMap(p.rule.ConstructParams, share, path)
		if err != nil {
			return nil, err
		}
		for k, v := range args {
			expanded[k] = v
		}
		merged = expanded
	}

	out := make([]reflect.Value, 0, len(p.params))
	for _, param := range p.params {
		if v, ok := merged[param.Name]; ok {
			vals, err := p.explicit(param, v, path)
			if err != nil {
				return nil, err
			}
			out = append(out, vals...)
			continue
		}

		if !param.Variadic {
			if v, ok := fromShare(share, param.Type); ok {
				out = append(out, v)
				continue
			}
		}

		if param.hasSub {
			v, err := p.substitute(param, share, path)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			continue
		}

		if param.Type == containerType {
			out = append(out, reflect.ValueOf(c))
			continue
		}

		if param.TypeName != "" && !param.Variadic {
			inst, err := c.get(param.TypeName, nil, param.forceNew, share, path)
			if err != nil {
				return nil, err
			}
			v, err := p.convert(param, inst, path)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			continue
		}

		if param.HasDefault {
			vals, err := p.explicit(param, param.Default, path)
			if err != nil {
				return nil, err
			}
			out = append(out, vals...)
			continue
		}

		if param.Variadic {
			continue
		}

		return nil, &Error{
			Kind:   KindUnresolvable,
			Type:   p.owner,
			Param:  param.Name,
			Detail: "no argument, substitution, injectable type or default",
			Path:   append([]string(nil), path[:len(path)-1]...),
		}
	}
	return out, nil
}

// explicit converts a supplied value. A sequence given to a variadic
// parameter is spliced into individual arguments.
func (p *plan) explicit(param planParam, v any, path []string) ([]reflect.Value, error) {
	if !param.Variadic {
		cv, err := p.convert(param, v, path)
		if err != nil {
			return nil, err
		}
		return []reflect.Value{cv}, nil
	}

	if !typeinfo.IsSequence(v) {
		cv, err := p.convert(param, v, path)
		if err != nil {
			return nil, err
		}
		return []reflect.Value{cv}, nil
	}

	rv := reflect.ValueOf(v)
	out := make([]reflect.Value, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		cv, err := p.convert(param, rv.Index(i).Interface(), path)
		if err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, nil
}

func (p *plan) substitute(param planParam, share []any, path []string) (reflect.Value, error) {
	var (
		v   any
		err error
	)
	if name, ok := param.sub.(string); ok {
		v, err = p.c.get(name, nil, param.forceNew, share, path)
	} else {
		v, err = p.c.expand(param.sub, share, path)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return p.convert(param, v, path)
}

// convert converts v to the type of a single argument of param.
func (p *plan) convert(param planParam, v any, path []string) (reflect.Value, error) {
	cv, err := typeinfo.Convert(v, param.Elem())
	if err != nil {
		return reflect.Value{}, &Error{
			Kind:  KindTypeMismatch,
			Type:  p.owner,
			Param: param.Name,
			Path:  append([]string(nil), path[:len(path)-1]...),
			Cause: err,
		}
	}
	return cv, nil
}

// fromShare returns the first shared instance usable as t. Only pointer and
// non-empty interface parameters take part: scalars and `any` are never
// matched by type.
func fromShare(share []any, t reflect.Type) (reflect.Value, bool) {
	switch {
	case t.Kind() == reflect.Pointer:
	case t.Kind() == reflect.Interface && t.NumMethod() > 0:
	default:
		return reflect.Value{}, false
	}
	for _, s := range share {
		if s == nil {
			continue
		}
		if rv := reflect.ValueOf(s); rv.Type().AssignableTo(t) {
			return rv, true
		}
	}
	return reflect.Value{}, false
}
