package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-dice/framework/container"
)

type ResolveOptions struct {
	Name     string
	Args     map[string]string
	ForceNew bool
}

func NewResolveCommand(cli *CLI) *cobra.Command {
	var opts ResolveOptions

	cmd := &cobra.Command{
		Use:   "resolve <type>",
		Short: "Build a type and print the result",
		Long: Highlight("dice resolve <type> [--arg name=value]") + "\n\n" +
			"Resolve a registered type through the container and print the built\n" +
			"value. Failures are printed with their kind, the failing parameter\n" +
			"and the resolution path.\n\n" +
			"Examples:\n" +
			"  dice resolve Newsletter\n" +
			"  dice resolve SMTPTransport --arg host=mail.internal --arg port=2525\n",
		Args: ExactArgsWithUsage(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			return RunResolve(cmd.Context(), cli, opts)
		},
	}

	cmd.Flags().StringToStringVar(&opts.Args, "arg", nil, "Constructor argument as name=value, repeatable")
	cmd.Flags().BoolVar(&opts.ForceNew, "new", false, "Bypass the shared instance cache")
	return cmd
}

func RunResolve(_ context.Context, cli *CLI, opts ResolveOptions) error {
	a, err := cli.application()
	if err != nil {
		return err
	}

	resolveOpts := []container.ResolveOption{}
	if len(opts.Args) > 0 {
		args := make(container.Args, len(opts.Args))
		for k, v := range opts.Args {
			args[k] = scalar(v)
		}
		resolveOpts = append(resolveOpts, container.WithArgs(args))
	}
	if opts.ForceNew {
		resolveOpts = append(resolveOpts, container.ForceNew())
	}

	v, err := a.Get(opts.Name, resolveOpts...)
	if err != nil {
		printError(cli, err)
		return fmt.Errorf("cannot resolve %s", opts.Name)
	}

	cli.ok("%s → %s", opts.Name, Highlight("%T", v))
	cli.Printf("%+v\n", v)
	return nil
}

// scalar reads a flag value the way a YAML rule file would, so numbers and
// booleans reach the constructor typed.
func scalar(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return s
	}
	switch v.(type) {
	case int, float64, bool, string:
		return v
	}
	return s
}

// printError writes the fields of a container error, one per line.
func printError(cli *CLI, err error) {
	var e *container.Error
	if !errors.As(err, &e) {
		cli.fail("%v", err)
		return
	}
	cli.fail("%s", e.Kind)
	if e.Type != "" {
		cli.Printf("  type:   %s\n", e.Type)
	}
	if e.Param != "" {
		cli.Printf("  param:  %s\n", e.Param)
	}
	if e.Method != "" {
		cli.Printf("  method: %s\n", e.Method)
	}
	if e.Detail != "" {
		cli.Printf("  detail: %s\n", e.Detail)
	}
	if len(e.Path) > 0 {
		cli.Printf("  path:   %s\n", strings.Join(e.Path, " → "))
	}
	if e.Cause != nil {
		cli.Printf("  cause:  %v\n", e.Cause)
	}
}
