package fontmetrics

// Extent is the rendered size of a string in pixels.
type Extent struct {
	Width  float64
	Height float64
}

// Measurer reports the rendered extent of text at a font size and style.
// Implementations must be deterministic for identical inputs.
type Measurer interface {
	Measure(text string, size int, style Style) (Extent, error)
}

// MeasurerFunc adapts an ordinary function to the [Measurer] interface.
type MeasurerFunc func(text string, size int, style Style) (Extent, error)

// Measure calls f(text, size, style).
func (f MeasurerFunc) Measure(text string, size int, style Style) (Extent, error) {
	return f(text, size, style)
}
