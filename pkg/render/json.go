package render

import (
	"encoding/json"

	"github.com/matzehuels/gdpmap/pkg/colorscale"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/tooltip"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

// Document is the JSON form of a rendered frame.
type Document struct {
	Width  float64             `json:"width"`
	Height float64             `json:"height"`
	Focus  string              `json:"focus"`
	Parent string              `json:"parent,omitempty"`
	Cells  []DocumentCell      `json:"cells"`
	Legend []colorscale.Swatch `json:"legend,omitempty"`
}

// DocumentCell is a frame cell with its resolved fill and tooltip.
type DocumentCell struct {
	treemap.Cell
	Fill    string           `json:"fill,omitempty"`
	Tooltip *tooltip.Content `json:"tooltip,omitempty"`
}

// NewDocument resolves the colors and tooltips of f. Height is the frame
// height; the legend row is left to the client.
func NewDocument(f *treemap.Frame, opts ...Option) (*Document, error) {
	if err := validateFrame(f); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	doc := &Document{
		Width:  f.Width,
		Height: f.Height,
		Focus:  f.Focus,
		Parent: f.Parent,
		Cells:  make([]DocumentCell, len(f.Cells)),
		Legend: o.swatches(),
	}
	for i, c := range f.Cells {
		dc := DocumentCell{Cell: c}
		if col, ok := o.fill(c); ok {
			dc.Fill = col.Hex()
		}
		if tip, ok := o.tooltip(c); ok {
			dc.Tooltip = &tip
		}
		doc.Cells[i] = dc
	}
	return doc, nil
}

// JSON renders the frame as an indented [Document].
func JSON(f *treemap.Frame, opts ...Option) ([]byte, error) {
	doc, err := NewDocument(f, opts...)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode frame")
	}
	return data, nil
}
