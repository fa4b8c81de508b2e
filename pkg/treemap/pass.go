package treemap

import (
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/format"
	"github.com/matzehuels/gdpmap/pkg/hierarchy"
	"github.com/matzehuels/gdpmap/pkg/label"
)

// Frame defaults.
const (
	DefaultAspect  = 16.0 / 9.0
	DefaultMinArea = 240000.0
)

// Role says how a cell behaves and which labels it carries.
type Role string

const (
	// RoleLeaf is a country: code and growth labels, tooltip on hover.
	RoleLeaf Role = "leaf"
	// RoleZoomIn is an inner node below the focus: "NAME ›" breadcrumb.
	RoleZoomIn Role = "zoom-in"
	// RoleZoomOut is the focus itself: "‹ PARENT • NAME" breadcrumb.
	RoleZoomOut Role = "zoom-out"
)

// Cell is one drawn rectangle.
type Cell struct {
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Level  int          `json:"level"`
	Role   Role         `json:"role"`
	Rect   Rect         `json:"rect"`
	Value  float64      `json:"value"`
	Change *float64     `json:"change,omitempty"`
	Labels []label.Spec `json:"labels"`
}

// Frame is the result of one render pass.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Focus  string  `json:"focus"`
	Parent string  `json:"parent,omitempty"`
	Cells  []Cell  `json:"cells"`
}

// Cell returns the cell with the given code.
func (f *Frame) Cell(code string) (Cell, bool) {
	for _, c := range f.Cells {
		if c.Code == code {
			return c, true
		}
	}
	return Cell{}, false
}

// Hit returns the topmost cell containing the point (x, y).
func (f *Frame) Hit(x, y float64) (Cell, bool) {
	for i := len(f.Cells) - 1; i >= 0; i-- {
		if f.Cells[i].Rect.Contains(x, y) {
			return f.Cells[i], true
		}
	}
	return Cell{}, false
}

// PassOption configures [Pass].
type PassOption func(*passOptions)

type passOptions struct {
	aspect       float64
	minArea      float64
	padding      Padding
	formatChange func(float64) string
}

// WithAspect sets the frame aspect ratio (width over height).
func WithAspect(aspect float64) PassOption { return func(o *passOptions) { o.aspect = aspect } }

// WithMinArea sets the area below which the frame grows taller than its
// aspect ratio.
func WithMinArea(area float64) PassOption { return func(o *passOptions) { o.minArea = area } }

// WithPadding sets the padding of nodes below the world level.
func WithPadding(p Padding) PassOption { return func(o *passOptions) { o.padding = p } }

// WithChangeFormat sets the formatter of the secondary leaf label.
func WithChangeFormat(fn func(float64) string) PassOption {
	return func(o *passOptions) { o.formatChange = fn }
}

// Pass lays out the view z of tree in a frame of the given width and fits
// every label with f. Cells cover every laid-out node below the world
// level, parents before children.
func Pass(tree *hierarchy.Tree, z Zoom, width float64, f *label.Fitter, opts ...PassOption) (*Frame, error) {
	if err := errors.ValidateWidth(width); err != nil {
		return nil, err
	}
	o := passOptions{
		aspect:       DefaultAspect,
		minArea:      DefaultMinArea,
		padding:      DefaultPadding,
		formatChange: format.Change,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.aspect <= 0 || o.minArea < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "aspect %g and minimum area %g must be positive", o.aspect, o.minArea)
	}

	focus, err := z.Focus(tree)
	if err != nil {
		return nil, err
	}
	parent := tree.Parent(focus)

	height := FrameSize(width, o.aspect, o.minArea)
	frame := &Frame{Width: width, Height: height, Focus: focus.Code}
	if parent != nil {
		frame.Parent = parent.Code
	}

	for _, b := range Squarify(tree, focus, width, height, o.padding) {
		n := b.Node
		if n.Level <= hierarchy.LevelWorld {
			continue
		}
		c := Cell{
			Code:   n.Code,
			Name:   n.Name,
			Level:  n.Level,
			Rect:   b.Rect,
			Value:  tree.Value(n),
			Change: n.Change,
		}
		w, h := b.Rect.Width(), b.Rect.Height()
		switch {
		case n.IsLeaf():
			c.Role = RoleLeaf
			secondary := ""
			if n.Change != nil {
				secondary = o.formatChange(*n.Change)
			}
			c.Labels = f.Leaf(w, h, n.Code, secondary)
		case n == focus:
			c.Role = RoleZoomOut
			c.Labels = f.ZoomOut(w, n.Name, parent.Name)
		default:
			c.Role = RoleZoomIn
			c.Labels = f.ZoomIn(w, n.Name)
		}
		frame.Cells = append(frame.Cells, c)
	}
	return frame, nil
}
