// Package label fits text into treemap rectangles using precomputed font
// metrics.
//
// A [Fitter] wraps an immutable [fontmetrics.Settings] and answers three
// questions without measuring text at runtime:
//
//   - how much of a string fits a width at a size ([Fitter.Truncate])
//   - which is the largest size at which a string fits a box
//     ([Fitter.SelectFontSize])
//   - where the labels of a leaf or a breadcrumb go ([Fitter.Leaf],
//     [Fitter.ZoomIn], [Fitter.ZoomOut])
//
// Nothing here returns an error. A box too small for its text yields fewer
// or shorter labels, or none at all, and callers render exactly what they
// get back.
package label
