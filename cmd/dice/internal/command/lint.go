package command

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-dice/framework/container"
	"github.com/km-arc/go-dice/framework/rules"
	"github.com/km-arc/go-dice/framework/typeinfo"
)

// ErrLintFailed is returned when a rule file has problems.
var ErrLintFailed = errors.New("lint failed")

type LintOptions struct {
	Path    string
	Resolve bool
}

func NewLintCommand(cli *CLI) *cobra.Command {
	var opts LintOptions

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check a rule file against the type catalogue",
		Long: Highlight("dice lint -f <path>") + "\n\n" +
			"Parse a rule file and check every rule against the registered types.\n" +
			"Unknown types, unknown instance_of targets and missing call methods\n" +
			"are reported. With --resolve every ruled type is also built.\n\n" +
			"Examples:\n" +
			"  dice lint -f config/rules.yaml\n" +
			"  dice lint -f config/rules.yaml --resolve\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunLint(cmd.Context(), cli, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Path, "file", "f", "", "Path to the rule file")
	cmd.Flags().BoolVar(&opts.Resolve, "resolve", false, "Resolve every ruled type")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func RunLint(_ context.Context, cli *CLI, opts LintOptions) error {
	entries, err := rules.Load(opts.Path)
	if err != nil {
		cli.fail("%v", err)
		return ErrLintFailed
	}

	cfg := cli.config()
	cfg.Container.RulesPath = ""
	a, err := newApplication(cfg)
	if err != nil {
		return err
	}
	if err := rules.Apply(a.Container, entries); err != nil {
		cli.fail("%v", err)
		return ErrLintFailed
	}

	problems := 0
	for _, e := range entries {
		if e.Name == container.Wildcard {
			continue
		}
		for _, msg := range checkEntry(a.Types, e) {
			cli.fail("%s: %s", e.Name, msg)
			problems++
		}
	}

	if opts.Resolve {
		for _, e := range entries {
			if e.Name == container.Wildcard {
				continue
			}
			if _, err := a.Get(e.Name, container.ForceNew()); err != nil {
				cli.fail("%s: %v", e.Name, err)
				problems++
			}
		}
	}

	if problems > 0 {
		cli.warn("%s: %d rules, %d problems", opts.Path, len(entries), problems)
		return ErrLintFailed
	}
	cli.ok("%s: %d rules", opts.Path, len(entries))
	return nil
}

type lookup interface {
	Lookup(name string) (*typeinfo.Type, bool)
}

// checkEntry returns the problems found in one rule.
func checkEntry(types lookup, e rules.Entry) []string {
	var out []string

	t, ok := types.Lookup(e.Name)
	if !ok {
		out = append(out, "unknown type")
	}
	if e.Spec.InstanceOf != "" {
		target, ok := types.Lookup(e.Spec.InstanceOf)
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("instance_of %s: unknown type", e.Spec.InstanceOf))
		case target.Abstract():
			out = append(out, fmt.Sprintf("instance_of %s: abstract type", e.Spec.InstanceOf))
		default:
			t = target
		}
	}

	for _, dep := range slices.Sorted(maps.Keys(e.Spec.Substitutions)) {
		if _, ok := types.Lookup(dep); !ok {
			out = append(out, fmt.Sprintf("substitution %s: unknown type", dep))
		}
		if name, isName := e.Spec.Substitutions[dep].V.(string); isName {
			if _, ok := types.Lookup(name); !ok {
				out = append(out, fmt.Sprintf("substitution %s: unknown type %s", dep, name))
			}
		}
	}
	for _, name := range append(slices.Clone(e.Spec.NewInstances), e.Spec.ShareInstances...) {
		if _, ok := types.Lookup(name); !ok {
			out = append(out, fmt.Sprintf("instance list: unknown type %s", name))
		}
	}

	if t != nil && !t.Abstract() {
		for _, call := range e.Spec.Call {
			if !t.HasMethod(call.Method) {
				out = append(out, fmt.Sprintf("call %s: no such method on %s", call.Method, t.GoType()))
			}
		}
	}
	return out
}
