// Package fontmetricstest provides a deterministic [fontmetrics.Measurer]
// and prebuilt settings for tests.
//
// Every glyph advance is a multiple of a quarter em, so widths at integer
// sizes are exact and survive two-decimal rounding unchanged.
// Line height is 1.25 em for any string.
package fontmetricstest

import (
	"unicode"

	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
)

// Em fractions used by [Measurer].
const (
	Digit     = 0.5
	Upper     = 0.75
	Wide      = 1.0 // M, W, %
	Lower     = 0.5
	Narrow    = 0.25 // period, space
	Symbol    = 0.5
	Unknown   = 0.75
	LineRatio = 1.25
)

// Unit returns the em fraction for r.
func Unit(r rune) float64 {
	switch {
	case r == 'M' || r == 'W' || r == '%':
		return Wide
	case r == '.' || r == ' ':
		return Narrow
	case unicode.IsDigit(r):
		return Digit
	case unicode.IsUpper(r):
		return Upper
	case unicode.IsLower(r):
		return Lower
	case r == '+' || r == '-' || r == '‹' || r == '›' || r == '•':
		return Symbol
	default:
		return Unknown
	}
}

// Width returns the stub advance of text at size.
func Width(text string, size int) float64 {
	var w float64
	for _, r := range text {
		w += Unit(r) * float64(size)
	}
	return w
}

// Measurer returns the deterministic stub measurer.
func Measurer() fontmetrics.Measurer {
	return fontmetrics.MeasurerFunc(func(text string, size int, _ fontmetrics.Style) (fontmetrics.Extent, error) {
		return fontmetrics.Extent{
			Width:  Width(text, size),
			Height: LineRatio * float64(size),
		}, nil
	})
}

// Settings builds settings for ladder with the default alphabet and the
// stub measurer. It panics on invalid ladders.
func Settings(ladder ...int) *fontmetrics.Settings {
	if len(ladder) == 0 {
		ladder = fontmetrics.DefaultLadder
	}
	s, err := fontmetrics.Build(fontmetrics.DefaultAlphabet, ladder, fontmetrics.DefaultStyle, Measurer())
	if err != nil {
		panic(err)
	}
	return s
}
