package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type ServeOptions struct {
	Addr string
}

func NewServeCommand(cli *CLI) *cobra.Command {
	var opts ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspection API",
		Long: Highlight("dice serve [--addr host:port]") + "\n\n" +
			"Boot the application and serve the read-only inspection API until\n" +
			"interrupted. The address defaults to DICE_INSPECT_ADDR.\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return RunServe(ctx, cli, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address, overrides DICE_INSPECT_ADDR")
	return cmd
}

func RunServe(ctx context.Context, cli *CLI, opts ServeOptions) error {
	cfg := cli.config()
	if opts.Addr != "" {
		cfg.Inspect.Addr = opts.Addr
	}
	a, err := newApplication(cfg)
	if err != nil {
		return err
	}
	router, err := a.Router()
	if err != nil {
		return err
	}

	cli.ok("serving inspection API on %s", Highlight("%s", cfg.Inspect.Addr))
	for _, r := range router.Routes() {
		cli.Printf("  %-6s %s\n", r.Method, r.Pattern)
	}
	return a.Run(ctx)
}
