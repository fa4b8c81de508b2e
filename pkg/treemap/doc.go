// Package treemap lays out a [hierarchy.Tree] as a zoomable squarified
// treemap and attaches fitted labels to every rectangle.
//
// # Frames
//
// [Pass] is the whole render step: given the tree, the current [Zoom] and
// the container width it returns a [Frame] holding one [Cell] per visible
// node, each with its rectangle, its role and its label specs:
//
//	fitter := label.New(settings)
//	frame, err := treemap.Pass(tree, treemap.Root(), 960, fitter)
//
// The frame height follows from the width through [FrameSize]: a 16:9
// frame, stretched vertically when it would cover less than 240000 square
// pixels.
//
// # Layout
//
// [Squarify] tiles each parent with the squarified algorithm at the golden
// ratio, children ordered by descending value. Nodes below the world level
// are inset by one pixel between siblings, two pixels at their outer edge
// and sixteen pixels at the top, which is where breadcrumbs go.
//
// # Zoom
//
// A [Zoom] is either the root view or focused on one inner node. The root
// view shows regions with a "›" zoom-in breadcrumb; a focused view shows
// the focus with a "‹ PARENT • NAME" zoom-out breadcrumb.
//
// Pass is pure: the same inputs always produce the same frame, and none of
// them is modified.
package treemap
