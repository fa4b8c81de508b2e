package treemap

import (
	"math"

	"github.com/matzehuels/gdpmap/pkg/hierarchy"
)

// phi is the target aspect ratio of squarified rows.
var phi = (1 + math.Sqrt(5)) / 2

// Rect is an axis-aligned rectangle in frame pixels.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y < r.Y1
}

// inset shrinks r by the given amounts, collapsing to the center line when
// an axis would invert.
func (r Rect) inset(left, top, right, bottom float64) Rect {
	out := Rect{X0: r.X0 + left, Y0: r.Y0 + top, X1: r.X1 - right, Y1: r.Y1 - bottom}
	if out.X1 < out.X0 {
		out.X0 = (out.X0 + out.X1) / 2
		out.X1 = out.X0
	}
	if out.Y1 < out.Y0 {
		out.Y0 = (out.Y0 + out.Y1) / 2
		out.Y1 = out.Y0
	}
	return out
}

// Padding is the inset applied around and between the children of a node.
type Padding struct {
	Inner float64 // between siblings
	Outer float64 // left, right and bottom edge of the parent
	Top   float64 // top edge of the parent, the breadcrumb strip
}

// DefaultPadding applies to every node below the world level.
var DefaultPadding = Padding{Inner: 1, Outer: 2, Top: 16}

// Box is a laid-out node.
type Box struct {
	Node  *hierarchy.Node
	Depth int // distance from the laid-out root
	Rect  Rect
}

// Squarify lays out the subtree rooted at root inside a width by height
// frame. Boxes are returned breadth first, so every parent precedes its
// children. Nodes at the world level get no padding.
func Squarify(tree *hierarchy.Tree, root *hierarchy.Node, width, height float64, pad Padding) []Box {
	type item struct {
		node  *hierarchy.Node
		depth int
		rect  Rect
		inset float64
	}

	var boxes []Box
	queue := []item{{node: root, rect: Rect{X1: width, Y1: height}}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		r := it.rect.inset(it.inset, it.inset, it.inset, it.inset)
		boxes = append(boxes, Box{Node: it.node, Depth: it.depth, Rect: r})

		children := tree.Children(it.node)
		if len(children) == 0 {
			continue
		}
		p := Padding{}
		if it.node.Level > hierarchy.LevelWorld {
			p = pad
		}
		half := p.Inner / 2
		inner := r.inset(p.Outer-half, p.Top-half, p.Outer-half, p.Outer-half)

		values := make([]float64, len(children))
		for i, c := range children {
			values[i] = tree.Value(c)
		}
		for i, cr := range squarify(values, inner) {
			queue = append(queue, item{node: children[i], depth: it.depth + 1, rect: cr, inset: half})
		}
	}
	return boxes
}

// squarify tiles r with one rectangle per value, in order, packing rows
// while their worst aspect ratio does not get further from phi.
func squarify(values []float64, r Rect) []Rect {
	out := make([]Rect, len(values))
	var value float64
	for _, v := range values {
		value += v
	}

	x0, y0, x1, y1 := r.X0, r.Y0, r.X1, r.Y1
	n := len(values)
	for i0, i1 := 0, 0; i0 < n; i0 = i1 {
		dx, dy := x1-x0, y1-y0

		// Zero values join the row of the next non-zero value.
		var sum float64
		for {
			sum = values[i1]
			i1++
			if sum != 0 || i1 >= n {
				break
			}
		}
		minV, maxV := sum, sum
		alpha := math.Max(dy/dx, dx/dy) / (value * phi)
		beta := sum * sum * alpha
		minRatio := math.Max(maxV/beta, beta/minV)

		for ; i1 < n; i1++ {
			v := values[i1]
			sum += v
			minV = min(minV, v)
			maxV = max(maxV, v)
			beta = sum * sum * alpha
			ratio := math.Max(maxV/beta, beta/minV)
			if ratio > minRatio {
				sum -= v
				break
			}
			minRatio = ratio
		}

		row, rects := values[i0:i1], out[i0:i1]
		if dx < dy {
			ry0, ry1 := y0, y1
			if value != 0 {
				y0 += dy * sum / value
				ry1 = y0
			}
			dice(rects, row, sum, Rect{X0: x0, Y0: ry0, X1: x1, Y1: ry1})
		} else {
			rx0, rx1 := x0, x1
			if value != 0 {
				x0 += dx * sum / value
				rx1 = x0
			}
			slice(rects, row, sum, Rect{X0: rx0, Y0: y0, X1: rx1, Y1: y1})
		}
		value -= sum
	}
	return out
}

// dice splits r horizontally in proportion to values.
func dice(out []Rect, values []float64, total float64, r Rect) {
	k := 0.0
	if total != 0 {
		k = r.Width() / total
	}
	x := r.X0
	for i, v := range values {
		out[i] = Rect{X0: x, Y0: r.Y0, X1: x + v*k, Y1: r.Y1}
		x += v * k
	}
}

// slice splits r vertically in proportion to values.
func slice(out []Rect, values []float64, total float64, r Rect) {
	k := 0.0
	if total != 0 {
		k = r.Height() / total
	}
	y := r.Y0
	for i, v := range values {
		out[i] = Rect{X0: r.X0, Y0: y, X1: r.X1, Y1: y + v*k}
		y += v * k
	}
}

// FrameSize returns the frame height for a container width: width/aspect,
// or minArea/width when the aspect height would leave the frame smaller
// than minArea. Both are rounded to whole pixels.
func FrameSize(width, aspect, minArea float64) float64 {
	if width*width/aspect > minArea {
		return math.Round(width / aspect)
	}
	return math.Round(minArea / width)
}
