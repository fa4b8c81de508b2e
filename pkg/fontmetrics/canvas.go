package fontmetrics

import (
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

// mmPerPx converts canvas millimetres back to pixels under the one point
// per pixel convention used for all faces.
const mmPerPx = 25.4 / 72

// CanvasMeasurer measures text with a github.com/tdewolff/canvas font
// family. It accepts any font format canvas can load (TTF, OTF, WOFF, WOFF2).
//
// Widths are canvas advance widths. Heights are the face ascent plus
// descent, which canvas reports per font rather than per string.
type CanvasMeasurer struct {
	mu     sync.Mutex
	family *canvas.FontFamily
	loaded canvas.FontStyle
	faces  map[faceKey]*canvas.FontFace
}

// NewCanvasMeasurer loads data into a font family registered under the
// given style's weight.
func NewCanvasMeasurer(data []byte, style Style) (*CanvasMeasurer, error) {
	name := style.Family
	if name == "" {
		name = "gdpmap"
	}
	family := canvas.NewFontFamily(name)
	loaded := canvasStyle(style.Weight)
	if err := family.LoadFont(data, 0, loaded); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "load font into canvas family %q", name)
	}
	return &CanvasMeasurer{
		family: family,
		loaded: loaded,
		faces:  make(map[faceKey]*canvas.FontFace),
	}, nil
}

// Measure returns the advance width of text and the line height of the face.
func (m *CanvasMeasurer) Measure(text string, size int, style Style) (Extent, error) {
	face := m.face(size)
	metrics := face.Metrics()
	height := metrics.Ascent + math.Abs(metrics.Descent)
	return Extent{
		Width:  face.TextWidth(text) / mmPerPx,
		Height: height / mmPerPx,
	}, nil
}

// Face returns a face of the loaded font at size pixels filled with col,
// for drawing text with the font the widths were measured with.
func (m *CanvasMeasurer) Face(size int, col color.Color) *canvas.FontFace {
	return m.family.Face(float64(size), col, m.loaded, canvas.FontNormal)
}

func (m *CanvasMeasurer) face(size int) *canvas.FontFace {
	key := faceKey{size: size}

	m.mu.Lock()
	defer m.mu.Unlock()

	if face, ok := m.faces[key]; ok {
		return face
	}
	face := m.Face(size, color.Black)
	m.faces[key] = face
	return face
}

// Family returns the underlying font family.
func (m *CanvasMeasurer) Family() *canvas.FontFamily { return m.family }

func canvasStyle(weight string) canvas.FontStyle {
	switch strings.ToLower(strings.TrimSpace(weight)) {
	case "black", "900":
		return canvas.FontBlack
	case "extrabold", "800":
		return canvas.FontExtraBold
	case "bold", "bolder", "700":
		return canvas.FontBold
	case "semibold", "600":
		return canvas.FontSemiBold
	case "medium", "500":
		return canvas.FontMedium
	case "light", "lighter", "300":
		return canvas.FontLight
	default:
		return canvas.FontRegular
	}
}

var _ Measurer = (*CanvasMeasurer)(nil)
