// Package fontmetrics measures a fixed character alphabet at a ladder of
// font sizes and bundles the results into an immutable [Settings] value.
//
// # Overview
//
// Treemap labels are fitted without runtime text measurement: every
// character width and every line height the layout will ever need is
// measured once, ahead of time, by [Build]. The result is the
// font-settings.json document consumed by the label fitter:
//
//	{
//	  "fontFamily": "sans-serif",
//	  "fontSizes": [36, 30, 24, ...],
//	  "fontSizePairs": {"36": [20, 18, 14, 13, 12], ...},
//	  "fontSizePadding": {"36": 20, ...},
//	  "charWidths": {"36": {"0": 20.02, "A": 26.01, " ": 10.01, ...}, ...},
//	  "charHeights": {"36": 42, ...}
//	}
//
// # Measurement
//
// [Build] never touches a rendering surface directly. It asks a [Measurer]
// for the extent of a string at a size and style:
//
//   - [OpenTypeMeasurer] uses golang.org/x/image with the Go fonts or any
//     TrueType/OpenType file
//   - [CanvasMeasurer] uses github.com/tdewolff/canvas font families
//   - [MeasurerFunc] adapts a plain function, which is what tests use
//
// Widths are rounded up to two decimals and heights up to whole pixels, so
// a label judged to fit never overflows its box. The space character is
// measured indirectly from ". ." because reported space advances differ
// between engines.
//
// # Derived Tables
//
//   - fontSizePairs: for each primary size, up to five secondary sizes no
//     larger than 60% of it (floored at the smallest ladder size)
//   - fontSizePadding: size/2 rounded to a multiple of four
package fontmetrics
