package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/gdpmap/pkg/fonts"
	"github.com/matzehuels/gdpmap/pkg/label"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

const labelCSS = `
    .node__label { font-family: %s; font-weight: bold; fill: %s; }
    .node__label--clickable { cursor: pointer; }
    .legend__label { font-family: %s; fill: currentColor; }`

// SVG renders the frame as a standalone SVG document. A nil frame yields
// an empty document.
func SVG(f *treemap.Frame, opts ...Option) []byte {
	o := newOptions(opts)
	if f == nil {
		f = &treemap.Frame{}
	}
	height := o.height(f)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" class="treemap" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(f.Width), num(height), num(f.Width), num(height))

	renderDefs(&buf, o)
	if o.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(o.background))
	}

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, c := range f.Cells {
		renderCell(&buf, o, c)
	}
	buf.WriteString("  </g>\n")

	renderLegend(&buf, o, f)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, o options) {
	family := `"` + fonts.DefaultFamily + `", ` + fonts.FallbackFamily
	buf.WriteString("  <defs>\n    <style>")
	if o.font != nil {
		family = o.font.CSSFamily()
		fmt.Fprintf(buf, "\n    @font-face { font-family: %q;", o.font.Family)
		if o.font.Weight != "" {
			fmt.Fprintf(buf, " font-weight: %s;", o.font.Weight)
		}
		fmt.Fprintf(buf, " src: url(%s) format(%q); }", o.font.DataURI(), string(o.font.Format))
	}
	fmt.Fprintf(buf, labelCSS, family, escapeXML(o.labelColor), family)
	buf.WriteString("\n    </style>\n")
	fmt.Fprintf(buf, `    <filter id="%s"><feDropShadow dx="0" dy="1" stdDeviation="0" flood-opacity="0.5"/></filter>`+"\n", LabelShadowID)
	buf.WriteString("  </defs>\n")
}

func renderCell(buf *bytes.Buffer, o options, c treemap.Cell) {
	fill := "transparent"
	if col, ok := o.fill(c); ok {
		fill = col.Hex()
	}
	fmt.Fprintf(buf, `    <g class="node node--%s" data-code="%s" transform="translate(%s,%s)">`+"\n",
		c.Role, escapeXML(c.Code), num(c.Rect.X0), num(c.Rect.Y0))
	fmt.Fprintf(buf, `      <rect class="node__rect" width="%s" height="%s" fill="%s"/>`+"\n",
		num(c.Rect.Width()), num(c.Rect.Height()), fill)
	if tip, ok := o.tooltip(c); ok {
		fmt.Fprintf(buf, "      <title>%s</title>\n", escapeXML(tip.String()))
	}
	if len(c.Labels) > 0 {
		buf.WriteString(`      <g class="node__labels">` + "\n")
		for i, s := range c.Labels {
			renderLabel(buf, c.Role, i, s)
		}
		buf.WriteString("      </g>\n")
	}
	buf.WriteString("    </g>\n")
}

// renderLabel writes one label. Zoom-in breadcrumbs and the parent part of
// a zoom-out breadcrumb are clickable.
func renderLabel(buf *bytes.Buffer, role treemap.Role, i int, s label.Spec) {
	class := "node__label"
	if role == treemap.RoleZoomIn || (role == treemap.RoleZoomOut && i == 0) {
		class += " node__label--clickable"
	}
	anchor := ""
	if role == treemap.RoleLeaf {
		anchor = ` text-anchor="middle"`
	}
	fmt.Fprintf(buf, `        <text class="%s" dy="%gem" filter="url(#%s)"%s x="%s" y="%s" font-size="%d">%s</text>`+"\n",
		class, labelDY, LabelShadowID, anchor, num(s.Left), num(s.Top), s.FontSize, escapeXML(s.Text))
}

func renderLegend(buf *bytes.Buffer, o options, f *treemap.Frame) {
	swatches := o.swatches()
	if len(swatches) == 0 {
		return
	}
	fmt.Fprintf(buf, `  <g class="legend" transform="translate(0,%s)">`+"\n", num(f.Height))
	top := (legendHeight - legendSwatch) / 2
	for i, s := range swatches {
		x := legendInset + float64(i)*legendSpacing
		fmt.Fprintf(buf, `    <rect class="legend__swatch" x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(x), num(top), num(legendSwatch), num(legendSwatch), s.Color)
		fmt.Fprintf(buf, `    <text class="legend__label" dy="%gem" x="%s" y="%s" font-size="%d">%s</text>`+"\n",
			labelDY, num(x+legendSwatch+4), num(legendHeight/2), legendFontSize, escapeXML(s.Label))
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
