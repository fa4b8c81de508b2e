// Package render writes a laid-out treemap [treemap.Frame] to an output
// format.
//
// # Formats
//
//   - [SVG]: a standalone document. The label font is embedded as a data
//     URI so browsers draw text with the exact widths the labels were
//     fitted with. Leaves carry a <title> tooltip.
//   - [PDF]: vector output through github.com/tdewolff/canvas. Text is set
//     with the same font face the metrics were measured with.
//   - [JSON]: the frame itself, plus tooltips and the color legend, for
//     clients that draw on their own.
//
// All renderers are pure functions of the frame and options, so one frame
// can be written to several formats concurrently.
//
// # Styling
//
// Rectangles of countries with a growth value are filled from a
// [colorscale.Scale]; every other rectangle is transparent so the parent
// frames show only through their paddings. Labels are white with a one
// pixel drop shadow. Their vertical position is the center of the line
// shifted down by 0.32em, which puts the baseline where a browser puts it
// for dominant-baseline "central".
//
//	frame, _ := treemap.Pass(tree, treemap.Root(), 960, fitter)
//	svg := render.SVG(frame)
//	pdf, err := render.PDF(frame, measurer, render.WithLegend(0))
package render
