package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gdpmap/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		warmup bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve treemap views over HTTP",
		Long: `Serve frames, SVG and PDF renders, hit tests and zoom transitions over
HTTP until interrupted. See the server package for the routes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			if warmup {
				prog := newProgress(logger)
				if _, _, err := runner.FontSettings(ctx); err != nil {
					return err
				}
				if _, _, err := runner.LoadData(ctx, cfg.Data.Year, false); err != nil {
					return err
				}
				prog.done("Warmed up")
			}

			printInfo("Listening on %s", cfg.Server.Addr)
			return server.New(runner, logger).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&warmup, "warmup", true, "load font metrics and the default year before listening")
	return cmd
}
