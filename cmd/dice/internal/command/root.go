package command

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-dice/framework/app"
)

func NewRootCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dice",
		Short: "Rule-driven dependency resolution for Go services",
		Long: Highlight("Usage: dice [global options] <subcommand> [args]") + "\n\n" +
			"dice builds object graphs from registered constructors and a set of\n" +
			"rules. It can lint rule files, print the effective rules, resolve a\n" +
			"type from the command line, and serve the inspection API.\n",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				_ = cmd.Help()
			}
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringSliceVar(&cli.EnvFiles, "env-file", nil, "Dotenv files to load (default .env)")
	cmd.PersistentFlags().StringVarP(&cli.RulesPath, "rules", "r", "", "Rule file to load, overrides DICE_RULES")
	cmd.PersistentFlags().StringVar(&cli.LogLevel, "log-level", "", "Log level, overrides DICE_LOG_LEVEL")
	cmd.SetOut(cli.Out)
	cmd.SetErr(cli.Err)

	setUsageTemplate(cmd)
	cmd.SetVersionTemplate("{{.Version}}\n")
	return cmd
}

func setUsageTemplate(root *cobra.Command) {
	cobra.AddTemplateFunc("StyleHeading", color.RGB(50, 108, 229).SprintFunc())
	usageTemplate := strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Examples:`, `{{StyleHeading "Examples:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(root.UsageTemplate())
	root.SetUsageTemplate(usageTemplate)
}

// AddCommands registers all subcommands to the root command.
func AddCommands(root *cobra.Command, cli *CLI) {
	root.AddCommand(
		NewVersionCommand(cli),
		NewLintCommand(cli),
		NewRulesCommand(cli),
		NewResolveCommand(cli),
		NewServeCommand(cli),
	)
}

func Execute() {
	// Disable color output if NO_COLOR is set in the environment
	_, noColor := os.LookupEnv("NO_COLOR")
	color.NoColor = noColor

	cli := NewCLI(os.Stdout, os.Stderr)
	root := NewRootCommand(cli)
	AddCommands(root, cli)

	if err := root.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			cli.fail("%s", msg)
		}
		os.Exit(1)
	}
}
