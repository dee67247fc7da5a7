package command

import (
	"context"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-dice/framework/rules"
)

type RulesOptions struct {
	Names []string
}

func NewRulesCommand(cli *CLI) *cobra.Command {
	var opts RulesOptions

	cmd := &cobra.Command{
		Use:   "rules [type...]",
		Short: "Print the effective rules",
		Long: Highlight("dice rules [type...]") + "\n\n" +
			"Print the rules of a booted application as YAML. Without arguments\n" +
			"every registered rule is printed, wildcard first. With type names the\n" +
			"effective rule of each type is printed, including rules inherited from\n" +
			"an ancestor or the wildcard.\n\n" +
			"Examples:\n" +
			"  dice rules\n" +
			"  dice rules Mailer Newsletter -r config/rules.yaml\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Names = args
			return RunRules(cmd.Context(), cli, opts)
		},
	}
	return cmd
}

func RunRules(_ context.Context, cli *CLI, opts RulesOptions) error {
	a, err := cli.application()
	if err != nil {
		return err
	}
	if len(opts.Names) == 0 {
		return rules.Dump(cli.Out, a.Container)
	}

	enc := yaml.NewEncoder(cli.Out)
	enc.SetIndent(2)
	for _, name := range opts.Names {
		r := a.Rule(name)
		cli.Printf("%s\n", Highlight("# %s (rule %q)", name, r.Name))
		if err := enc.Encode(map[string]rules.Spec{name: rules.FromRule(r)}); err != nil {
			return err
		}
	}
	return enc.Close()
}
