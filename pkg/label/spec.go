package label

// Spec is one positioned piece of fitted text inside its rectangle.
//
// Left and Top are relative to the rectangle's top-left corner. For leaf
// labels Left is the horizontal center and Top the vertical center of the
// line; for breadcrumbs Left is the start of the text. Height is the
// measured line height at FontSize.
type Spec struct {
	Text     string  `json:"text"`
	FontSize int     `json:"fontSize"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Height   float64 `json:"height,omitempty"`
}
