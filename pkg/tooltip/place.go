package tooltip

// Placement defaults.
const (
	DefaultOffset  = 16.0
	DefaultPadding = 4.0
)

// Point is a position in chart pixels.
type Point struct{ X, Y float64 }

// Size is a width and height in pixels.
type Size struct{ Width, Height float64 }

// Placer positions tooltips inside a chart.
type Placer struct {
	Offset  float64 // vertical distance between pointer and tooltip
	Padding float64 // minimum distance to the chart edges
}

// DefaultPlacer uses a 16px offset and 4px padding.
var DefaultPlacer = Placer{Offset: DefaultOffset, Padding: DefaultPadding}

// Place returns the top-left corner of a tooltip of size tip for a pointer
// at p in a chart of size bounds.
//
// The tooltip is centered above the pointer and shifted horizontally to
// stay inside the padding. If it would cross the top edge it goes below
// the pointer instead, pulled back up if that crosses the bottom edge.
func (pl Placer) Place(p Point, tip, bounds Size) Point {
	x := p.X - tip.Width/2
	if x < pl.Padding {
		x = pl.Padding
	} else if x+tip.Width > bounds.Width-pl.Padding {
		x = bounds.Width - pl.Padding - tip.Width
	}

	y := p.Y - pl.Offset - tip.Height
	if y < pl.Padding {
		y = p.Y + pl.Offset
		if y+tip.Height > bounds.Height-pl.Padding {
			y = bounds.Height - pl.Padding - tip.Height
		}
	}
	return Point{X: x, Y: y}
}
