package render

import (
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/gdpmap/pkg/colorscale"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/fonts"
	"github.com/matzehuels/gdpmap/pkg/tooltip"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

const (
	// LabelShadowID is the id of the label drop-shadow filter.
	LabelShadowID = "treemapLabelShadow"
	// DefaultLabelColor is the fill of every treemap label.
	DefaultLabelColor = "#ffffff"
	// DefaultLegendTicks is the requested tick count of the legend row.
	DefaultLegendTicks = 7

	// labelDY moves a line's vertical center to its baseline, in em.
	labelDY = 0.32

	legendHeight   = 28.0
	legendSwatch   = 12.0
	legendSpacing  = 64.0
	legendFontSize = 11
	legendInset    = 8.0
)

// Option configures a renderer.
type Option func(*options)

type options struct {
	scale      *colorscale.Scale
	font       *fonts.Font
	legend     int
	tooltips   bool
	labelColor string
	background string
}

// WithScale sets the color scale of leaf rectangles.
func WithScale(s *colorscale.Scale) Option { return func(o *options) { o.scale = s } }

// WithFont sets the font embedded in SVG output. A nil font embeds nothing
// and leaves text to the viewer's fallback fonts.
func WithFont(f *fonts.Font) Option { return func(o *options) { o.font = f } }

// WithLegend sets the tick count of the legend row below the treemap.
// Zero omits the legend.
func WithLegend(ticks int) Option { return func(o *options) { o.legend = ticks } }

// WithoutTooltips omits leaf tooltips.
func WithoutTooltips() Option { return func(o *options) { o.tooltips = false } }

// WithLabelColor sets the label fill as a hex color.
func WithLabelColor(hex string) Option { return func(o *options) { o.labelColor = hex } }

// WithBackground fills the whole document with a hex color.
func WithBackground(hex string) Option { return func(o *options) { o.background = hex } }

func newOptions(opts []Option) options {
	o := options{
		scale:      colorscale.Default(),
		font:       fonts.Default(),
		legend:     DefaultLegendTicks,
		tooltips:   true,
		labelColor: DefaultLabelColor,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scale == nil {
		o.scale = colorscale.Default()
	}
	return o
}

// height returns the document height: the frame plus the legend row.
func (o options) height(f *treemap.Frame) float64 {
	if o.legend > 0 {
		return f.Height + legendHeight
	}
	return f.Height
}

func (o options) swatches() []colorscale.Swatch {
	if o.legend <= 0 {
		return nil
	}
	return o.scale.Legend(o.legend)
}

// fill returns the fill of a cell. Only cells with a growth value are
// colored.
func (o options) fill(c treemap.Cell) (colorful.Color, bool) {
	if c.Change == nil {
		return colorful.Color{}, false
	}
	return o.scale.At(*c.Change), true
}

func (o options) tooltip(c treemap.Cell) (tooltip.Content, bool) {
	if !o.tooltips || c.Role != treemap.RoleLeaf {
		return tooltip.Content{}, false
	}
	return tooltip.New(c.Name, c.Value, c.Change), true
}

func validateFrame(f *treemap.Frame) error {
	if f == nil {
		return errors.New(errors.ErrCodeInvalidInput, "frame is nil")
	}
	return errors.ValidateWidth(f.Width)
}

func parseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse color %q", hex)
	}
	return c, nil
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
