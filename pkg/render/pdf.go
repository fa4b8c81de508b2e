package render

import (
	"bytes"
	"image/color"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

// mmPerPx maps one pixel to one point, canvas works in millimetres.
const mmPerPx = 25.4 / 72

var transparent = color.RGBA{}

// PDF renders the frame as a single-page PDF. Text is set with faces from
// m, which should be the measurer the label metrics were built with.
//
// The font embedded in SVG output does not apply here; tooltips are
// omitted.
func PDF(f *treemap.Frame, m *fontmetrics.CanvasMeasurer, opts ...Option) ([]byte, error) {
	if err := validateFrame(f); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New(errors.ErrCodeEnvironment, "no canvas font loaded for PDF output")
	}
	o := newOptions(opts)
	labelColor, err := parseColor(o.labelColor)
	if err != nil {
		return nil, err
	}

	width, height := f.Width*mmPerPx, o.height(f)*mmPerPx
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)
	ctx.SetStrokeColor(transparent)

	if o.background != "" {
		bg, err := parseColor(o.background)
		if err != nil {
			return nil, err
		}
		ctx.SetFillColor(bg)
		ctx.DrawPath(0, 0, canvas.Rectangle(width, height))
	}

	for _, cell := range f.Cells {
		if col, ok := o.fill(cell); ok {
			ctx.SetFillColor(col)
			ctx.DrawPath(cell.Rect.X0*mmPerPx, cell.Rect.Y0*mmPerPx,
				canvas.Rectangle(cell.Rect.Width()*mmPerPx, cell.Rect.Height()*mmPerPx))
		}
	}
	for _, cell := range f.Cells {
		align := canvas.Left
		if cell.Role == treemap.RoleLeaf {
			align = canvas.Center
		}
		for _, s := range cell.Labels {
			face := m.Face(s.FontSize, labelColor)
			x := (cell.Rect.X0 + s.Left) * mmPerPx
			baseline := (cell.Rect.Y0 + s.Top + labelDY*float64(s.FontSize)) * mmPerPx
			ctx.DrawText(x, baseline, canvas.NewTextLine(face, s.Text, align))
		}
	}
	drawLegend(ctx, o, f, m)

	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write PDF")
	}
	return buf.Bytes(), nil
}

func drawLegend(ctx *canvas.Context, o options, f *treemap.Frame, m *fontmetrics.CanvasMeasurer) {
	swatches := o.swatches()
	if len(swatches) == 0 {
		return
	}
	top := f.Height + (legendHeight-legendSwatch)/2
	baseline := f.Height + legendHeight/2 + labelDY*legendFontSize
	face := m.Face(legendFontSize, color.Black)
	for i, s := range swatches {
		x := legendInset + float64(i)*legendSpacing
		ctx.SetFillColor(o.scale.At(s.Value))
		ctx.DrawPath(x*mmPerPx, top*mmPerPx, canvas.Rectangle(legendSwatch*mmPerPx, legendSwatch*mmPerPx))
		ctx.DrawText((x+legendSwatch+4)*mmPerPx, baseline*mmPerPx, canvas.NewTextLine(face, s.Label, canvas.Left))
	}
}
