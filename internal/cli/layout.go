package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		view    viewFlags
		output  string
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out one view and print the frame as JSON",
		Long: `Lay out one treemap view and print the frame: every cell with its
rectangle, role and fitted labels. Unlike "render -f json" the frame carries
no colors or legend.`,
		Example: `  gdpmap layout --zoom ECS --width 1200 -o ecs.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := view.options()
			opts.Refresh = refresh
			if err := opts.ValidateAndSetDefaults(cfg); err != nil {
				return err
			}

			prog := newProgress(logger)
			settings, _, err := runner.FontSettings(ctx)
			if err != nil {
				return fmt.Errorf("font metrics: %w", err)
			}
			ds, _, err := runner.LoadData(ctx, opts.Year, opts.Refresh)
			if err != nil {
				return fmt.Errorf("load data: %w", err)
			}
			frame, hit, err := runner.Layout(ctx, ds, settings, opts)
			if err != nil {
				return fmt.Errorf("layout: %w", err)
			}

			data, err := json.MarshalIndent(frame, "", "  ")
			if err != nil {
				return err
			}
			if err := writeOutput(output, append(data, '\n')); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Laid out %s", opts.ZoomState(ds.Tree)))
			if output != "" && output != "-" {
				printSuccess("Frame %s", frame.Focus)
				printStats(ds.Tree.Len(), len(frame.Cells), hit)
				printFile(output)
			}
			return nil
		},
	}
	view.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached data and layouts")
	return cmd
}
