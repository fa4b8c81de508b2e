package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gdpmap/pkg/pipeline"
)

type renderOpts struct {
	view    viewFlags
	formats string
	output  string
	refresh bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one view to SVG, PDF or JSON",
		Long: `Render one treemap view. Output files are named after --output with
the format as extension; the default base name is "gdpmap" for the world view
and "gdpmap-<zoom>" when zoomed.`,
		Example: `  gdpmap render
  gdpmap render -f svg,pdf --zoom NAC -o out/north-america
  gdpmap render --year 2022 --width 1600 --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, &opts)
		},
	}
	opts.view.register(cmd)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "comma-separated formats: svg, pdf, json (default svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached data, layouts and renders")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
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

	popts := opts.view.options()
	popts.Formats = parseFormats(opts.formats)
	popts.Refresh = opts.refresh

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Rendering")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}
	logger.Debug("stages",
		"fonts", result.Stats.FontsTime,
		"load", result.Stats.LoadTime,
		"layout", result.Stats.LayoutTime,
		"render", result.Stats.RenderTime)

	base := basePath(opts.output, popts.Zoom)
	paths, err := writeArtifacts(base, result.Artifacts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d formats", len(paths)))

	printSuccess("Rendered %s", result.Frame.Focus)
	printStats(result.Stats.Nodes, result.Stats.Cells, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// basePath strips a known format extension from output, or derives the
// base name from the zoom code.
func basePath(output, zoom string) string {
	if output == "" {
		if zoom == "" {
			return appName
		}
		return appName + "-" + strings.ToLower(zoom)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes base.<format> for every artifact in format order.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	var paths []string
	for _, format := range []string{pipeline.FormatSVG, pipeline.FormatPDF, pipeline.FormatJSON} {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if err := writeOutput(path, data); err != nil {
			return paths, fmt.Errorf("write %s: %w", format, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
