package command

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-dice/framework/app"
)

func NewVersionCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dice version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cli.Printf("dice %s (%s)\n", app.Version, runtime.Version())
		},
	}
}
