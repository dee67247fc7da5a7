package command

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-dice/cmd/dice/internal/catalog"
	"github.com/km-arc/go-dice/framework/app"
	"github.com/km-arc/go-dice/framework/config"
)

// CLI is shared state passed from the root command to every subcommand.
// The global flags write into it.
type CLI struct {
	Out io.Writer
	Err io.Writer

	EnvFiles  []string
	RulesPath string
	LogLevel  string
}

func NewCLI(out, errOut io.Writer) *CLI {
	return &CLI{Out: out, Err: errOut}
}

// Highlight applies a blue color to the given format and arguments.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

func (cli *CLI) Printf(format string, a ...any) {
	fmt.Fprintf(cli.Out, format, a...)
}

func (cli *CLI) Println(a ...any) {
	fmt.Fprintln(cli.Out, a...)
}

func (cli *CLI) ok(format string, a ...any) {
	fmt.Fprintln(cli.Out, color.GreenString("✓ ")+fmt.Sprintf(format, a...))
}

func (cli *CLI) fail(format string, a ...any) {
	fmt.Fprintln(cli.Out, color.RedString("✗ ")+fmt.Sprintf(format, a...))
}

func (cli *CLI) warn(format string, a ...any) {
	fmt.Fprintln(cli.Out, color.YellowString("! ")+fmt.Sprintf(format, a...))
}

// config loads the environment and applies the global flag overrides.
func (cli *CLI) config() *config.Config {
	cfg := config.Load(cli.EnvFiles...)
	if cli.RulesPath != "" {
		cfg.Container.RulesPath = cli.RulesPath
	}
	if cli.LogLevel != "" {
		cfg.Container.LogLevel = cli.LogLevel
	}
	return cfg
}

// application boots an application over the demo catalogue.
func (cli *CLI) application() (*app.Application, error) {
	return newApplication(cli.config())
}

func newApplication(cfg *config.Config) (*app.Application, error) {
	a, err := app.NewWithConfig(catalog.Registry(), cfg)
	if err != nil {
		return nil, err
	}
	if err := a.Register(&catalog.Provider{}); err != nil {
		return nil, err
	}
	if err := a.Boot(); err != nil {
		return nil, err
	}
	return a, nil
}

// ExactArgsWithUsage returns an error if there is not the exact number of args,
// and shows usage information.
func ExactArgsWithUsage(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == number {
			return nil
		}
		_ = cmd.Usage()
		if number == 1 {
			return fmt.Errorf("requires exactly 1 argument")
		}
		return fmt.Errorf("requires exactly %d arguments", number)
	}
}
