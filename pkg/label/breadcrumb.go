package label

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Breadcrumb glyphs.
const (
	ArrowIn   = "›"
	ArrowOut  = "‹"
	Separator = "•"
)

// BreadcrumbSize returns the font size used for breadcrumbs: the largest
// measured size that fits the header strip.
func (f *Fitter) BreadcrumbSize() (int, bool) {
	return f.settings.LargestAtMost(int(f.header.Height))
}

// ZoomIn lays out the breadcrumb of a parent rectangle that can be zoomed
// into: the upper-cased name, truncated to the strip, followed by " ›".
func (f *Fitter) ZoomIn(width float64, name string) []Spec {
	fs, ok := f.BreadcrumbSize()
	if !ok {
		return nil
	}
	h := f.header
	avail := width - 2*h.Padding - f.charWidth(fs, ' ') - f.charWidth(fs, '›')
	text := f.Truncate(upper(name), fs, avail)
	return []Spec{{
		Text:     text + " " + ArrowIn,
		FontSize: fs,
		Left:     h.Padding,
		Top:      h.Height / 2,
	}}
}

// ZoomOut lays out the breadcrumb of the focused rectangle: "‹ PARENT",
// then, only if room remains, a "•" separator and the focused name.
//
// The room left for the focused name is computed by deducting the gap once
// before the parent label and twice after it, while the separator is placed
// one space width after the parent label, so the name can be cut slightly
// earlier than the box strictly requires.
func (f *Fitter) ZoomOut(width float64, current, parent string) []Spec {
	fs, ok := f.BreadcrumbSize()
	if !ok {
		return nil
	}
	h := f.header
	top := h.Height / 2
	arrow := f.charWidth(fs, '‹')
	bullet := f.charWidth(fs, '•')

	avail := width - 2*h.Padding - h.Gap - arrow
	parentName := f.Truncate(upper(parent), fs, avail)
	left := h.Padding
	specs := []Spec{{Text: ArrowOut + " " + parentName, FontSize: fs, Left: left, Top: top}}

	parentWidth := f.TextWidth(parentName, fs)
	avail -= parentWidth + 2*h.Gap + bullet
	name := f.Truncate(upper(current), fs, avail)
	if name == "" {
		return specs
	}

	left += parentWidth + arrow + f.charWidth(fs, ' ') + h.Gap
	specs = append(specs, Spec{Text: Separator, FontSize: fs, Left: left, Top: top})
	left += bullet + h.Gap
	specs = append(specs, Spec{Text: name, FontSize: fs, Left: left, Top: top})
	return specs
}

// upper returns name in upper case. A Caser keeps state, so each call gets
// its own.
func upper(name string) string {
	return cases.Upper(language.English).String(name)
}
