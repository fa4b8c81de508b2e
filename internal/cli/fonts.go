package cli

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gdpmap/pkg/config"
	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
)

// fontFlags override the [fonts] config section.
type fontFlags struct {
	path     string
	family   string
	weight   string
	measurer string
}

func (f *fontFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "font", "", "font file (TTF, OTF, WOFF or WOFF2; default embedded Go Bold)")
	cmd.Flags().StringVar(&f.family, "family", "", "CSS font family recorded in the settings")
	cmd.Flags().StringVar(&f.weight, "weight", "", "CSS font weight")
	cmd.Flags().StringVar(&f.measurer, "measurer", "", "glyph measurer: opentype or canvas")
}

func (f *fontFlags) apply(cfg *config.Config) error {
	if f.path != "" {
		cfg.Fonts.Path = f.path
		cfg.Fonts.Settings = ""
	}
	if f.family != "" {
		cfg.Fonts.Family = f.family
	}
	if f.weight != "" {
		cfg.Fonts.Weight = f.weight
	}
	if f.measurer != "" {
		cfg.Fonts.Measurer = f.measurer
	}
	return cfg.Validate()
}

func (c *CLI) fontsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "Build or inspect font metrics",
	}
	cmd.AddCommand(c.fontsGenerateCommand())
	cmd.AddCommand(c.fontsShowCommand())
	return cmd
}

func (c *CLI) fontsGenerateCommand() *cobra.Command {
	var (
		flags  fontFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Measure a font and write its settings JSON",
		Long: `Measure every character of the alphabet at every ladder size and write
the font settings the label fitter uses. Point fonts.settings at the result
to skip the measurement on later runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cfg.Fonts.Settings = ""
			if err := flags.apply(cfg); err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(loggerFromContext(ctx))
			spinner := newSpinner(ctx, "Measuring "+cfg.Fonts.Family)
			spinner.Start()
			s, err := runner.BuildSettings(ctx)
			spinner.Stop()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := fontmetrics.Encode(&buf, s); err != nil {
				return err
			}
			if err := writeOutput(output, buf.Bytes()); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Measured %d sizes", len(s.FontSizes)))
			if output != "" && output != "-" {
				printSuccess("Font settings for %s", s.FontFamily)
				printFile(output)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) fontsShowCommand() *cobra.Command {
	var flags fontFlags
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a summary of the font metrics in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cfg); err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			s, hit, err := runner.FontSettings(ctx)
			if err != nil {
				return err
			}
			printKeyValue("Family", s.FontFamily)
			printKeyValue("Key", s.Key())
			printKeyValue("Characters", strconv.Itoa(len(s.CharWidths[s.FontSizes[0]])))
			if hit {
				printKeyValue("Source", iconCached)
			} else {
				printKeyValue("Source", iconFresh)
			}
			fmt.Println(settingsTable(s))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// settingsTable renders one row per ladder size.
func settingsTable(s *fontmetrics.Settings) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, 0, len(s.FontSizes))
	for _, size := range s.FontSizes {
		pairs := make([]string, 0, len(s.Pairs(size)))
		for _, p := range s.Pairs(size) {
			pairs = append(pairs, strconv.Itoa(p))
		}
		rows = append(rows, []string{
			strconv.Itoa(size),
			strconv.Itoa(s.LineHeight(size)),
			strconv.Itoa(s.Padding(size)),
			strconv.FormatFloat(s.CharWidths[size]["M"], 'f', 2, 64),
			strings.Join(pairs, " "),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Size", "Height", "Padding", "Width(M)", "Pairs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
