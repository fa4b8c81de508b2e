package label

import (
	"strings"

	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
)

const (
	// DefaultNarrowWidth is the box width at or below which the trailing
	// unit of a secondary label is dropped.
	DefaultNarrowWidth = 32.0
	// DefaultUnit is the unit suffix dropped from narrow secondary labels.
	DefaultUnit = "%"

	// fallbackGlyph stands in for characters missing from the width table.
	fallbackGlyph = "W"
)

// Header describes the strip at the top of a parent rectangle that holds
// its breadcrumb.
type Header struct {
	Height  float64 // strip height; also caps the breadcrumb font size
	Padding float64 // inset before the first and after the last label
	Gap     float64 // spacing around the breadcrumb separator
}

// DefaultHeader matches the 16px parent padding of the treemap layout.
var DefaultHeader = Header{Height: 16, Padding: 4, Gap: 4}

// Fitter fits labels using one immutable [fontmetrics.Settings].
// A Fitter is read-only after construction and safe for concurrent use.
type Fitter struct {
	settings    *fontmetrics.Settings
	widths      map[int]map[rune]float64
	fallback    map[int]float64
	narrowWidth float64
	unit        string
	header      Header
}

// Option configures a [Fitter].
type Option func(*Fitter)

// WithNarrowWidth sets the width at or below which secondary labels lose
// their unit suffix.
func WithNarrowWidth(w float64) Option { return func(f *Fitter) { f.narrowWidth = w } }

// WithUnit sets the unit suffix dropped from narrow secondary labels.
func WithUnit(unit string) Option { return func(f *Fitter) { f.unit = unit } }

// WithHeader sets the breadcrumb strip geometry.
func WithHeader(h Header) Option { return func(f *Fitter) { f.header = h } }

// New returns a Fitter over s.
func New(s *fontmetrics.Settings, opts ...Option) *Fitter {
	f := &Fitter{
		settings:    s,
		widths:      make(map[int]map[rune]float64, len(s.CharWidths)),
		fallback:    make(map[int]float64, len(s.CharWidths)),
		narrowWidth: DefaultNarrowWidth,
		unit:        DefaultUnit,
		header:      DefaultHeader,
	}
	for _, opt := range opts {
		opt(f)
	}

	for fs, table := range s.CharWidths {
		runes := make(map[rune]float64, len(table))
		var widest float64
		for c, w := range table {
			r := []rune(c)
			if len(r) != 1 {
				continue
			}
			runes[r[0]] = w
			widest = max(widest, w)
		}
		f.widths[fs] = runes
		if w, ok := table[fallbackGlyph]; ok {
			f.fallback[fs] = w
		} else {
			f.fallback[fs] = widest
		}
	}
	return f
}

// Settings returns the font settings the fitter reads.
func (f *Fitter) Settings() *fontmetrics.Settings { return f.settings }

// Header returns the breadcrumb strip geometry.
func (f *Fitter) Header() Header { return f.header }

// charWidth returns the width of r at size, or the width of "W" for
// characters outside the measured alphabet.
func (f *Fitter) charWidth(size int, r rune) float64 {
	if w, ok := f.widths[size][r]; ok {
		return w
	}
	return f.fallback[size]
}

// TextWidth returns the summed character widths of text at size.
func (f *Fitter) TextWidth(text string, size int) float64 {
	var w float64
	for _, r := range text {
		w += f.charWidth(size, r)
	}
	return w
}

// Truncate returns the longest prefix of text whose width at size does not
// exceed width. It never adds an ellipsis. A non-positive width, or a size
// that was never measured, yields "".
func (f *Fitter) Truncate(text string, size int, width float64) string {
	if width <= 0 {
		return ""
	}
	if _, ok := f.widths[size]; !ok {
		return ""
	}
	var acc float64
	for i, r := range text {
		acc += f.charWidth(size, r)
		if acc > width {
			return text[:i]
		}
	}
	return text
}

// SelectFontSize returns the first size of candidates at which text fits
// the box whole: its width within the box minus the padding for that size
// on both sides, and its line height strictly below height. Candidates are
// expected largest first. The boolean is false when no size fits, which
// callers treat as "omit the label".
func (f *Fitter) SelectFontSize(text string, width, height float64, candidates []int) (int, bool) {
	for _, fs := range candidates {
		if !f.settings.Has(fs) {
			continue
		}
		avail := max(0, width-2*float64(f.settings.Padding(fs)))
		if f.Truncate(text, fs, avail) == text && float64(f.settings.LineHeight(fs)) < height {
			return fs, true
		}
	}
	return 0, false
}

// Leaf lays out the labels of a leaf rectangle: primary (the country code)
// over secondary (the growth rate), centered as a block.
//
// If primary fits at no ladder size the result is empty. The secondary line
// only considers the sizes paired with the chosen primary size and the
// height the primary line leaves; in boxes no wider than the narrow width
// its unit suffix is dropped first.
func (f *Fitter) Leaf(width, height float64, primary, secondary string) []Spec {
	fs, ok := f.SelectFontSize(primary, width, height, f.settings.FontSizes)
	if !ok {
		return nil
	}
	left := width / 2
	primaryHeight := float64(f.settings.LineHeight(fs))
	specs := []Spec{{Text: primary, FontSize: fs, Left: left, Height: primaryHeight}}

	if secondary != "" {
		if width <= f.narrowWidth {
			secondary = strings.TrimSuffix(secondary, f.unit)
		}
		if sfs, ok := f.SelectFontSize(secondary, width, height-primaryHeight, f.settings.Pairs(fs)); ok {
			specs = append(specs, Spec{
				Text:     secondary,
				FontSize: sfs,
				Left:     left,
				Height:   float64(f.settings.LineHeight(sfs)),
			})
		}
	}

	stack(specs, height)
	return specs
}

// stack centers the lines vertically in a box of the given height; each
// Top is the middle of its line.
func stack(specs []Spec, height float64) {
	var total float64
	for _, s := range specs {
		total += s.Height
	}
	top := height/2 - total/2
	for i := range specs {
		specs[i].Top = top + specs[i].Height/2
		top += specs[i].Height
	}
}
