package fontmetrics

import (
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

// OpenTypeMeasurer measures text with golang.org/x/image font faces at
// 72 DPI, so one point equals one pixel.
//
// Without a custom font it uses the Go fonts, picking Go Bold, Go Medium or
// Go Regular from the style weight; the family name is only recorded. With
// a custom font every weight maps to that font.
//
// Faces are not safe for concurrent use, so measurements are serialized
// on the same mutex that guards the face cache.
type OpenTypeMeasurer struct {
	mu     sync.Mutex
	custom *opentype.Font
	fonts  map[string]*opentype.Font
	faces  map[faceKey]font.Face
}

type faceKey struct {
	weight string
	size   int
}

// NewOpenTypeMeasurer returns a measurer backed by the Go fonts.
func NewOpenTypeMeasurer() *OpenTypeMeasurer {
	return &OpenTypeMeasurer{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// NewOpenTypeMeasurerFromData returns a measurer backed by a single
// TrueType or OpenType font.
func NewOpenTypeMeasurerFromData(data []byte) (*OpenTypeMeasurer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "parse font")
	}
	m := NewOpenTypeMeasurer()
	m.custom = f
	return m, nil
}

// Measure returns the advance width and the ink height of text.
func (m *OpenTypeMeasurer) Measure(text string, size int, style Style) (Extent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(size, style)
	if err != nil {
		return Extent{}, err
	}
	bounds, advance := font.BoundString(face, text)
	return Extent{
		Width:  fixedToFloat(advance),
		Height: fixedToFloat(bounds.Max.Y - bounds.Min.Y),
	}, nil
}

// Close releases every cached face.
func (m *OpenTypeMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, face := range m.faces {
		_ = face.Close()
		delete(m.faces, k)
	}
	return nil
}

// face must be called with m.mu held.
func (m *OpenTypeMeasurer) face(size int, style Style) (font.Face, error) {
	weight := weightClass(style.Weight)
	key := faceKey{weight: weight, size: size}

	if face, ok := m.faces[key]; ok {
		return face, nil
	}
	f, err := m.font(weight)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "create %s face at %dpx", weight, size)
	}
	m.faces[key] = face
	return face, nil
}

// font must be called with m.mu held.
func (m *OpenTypeMeasurer) font(weight string) (*opentype.Font, error) {
	if m.custom != nil {
		return m.custom, nil
	}
	if f, ok := m.fonts[weight]; ok {
		return f, nil
	}
	var ttf []byte
	switch weight {
	case "bold":
		ttf = gobold.TTF
	case "medium":
		ttf = gomedium.TTF
	default:
		ttf = goregular.TTF
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "parse Go %s font", weight)
	}
	m.fonts[weight] = f
	return f, nil
}

// weightClass folds CSS weights into the three Go font weights.
func weightClass(weight string) string {
	switch strings.ToLower(strings.TrimSpace(weight)) {
	case "bold", "bolder", "700", "800", "900":
		return "bold"
	case "medium", "semibold", "500", "600":
		return "medium"
	default:
		return "regular"
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

var _ Measurer = (*OpenTypeMeasurer)(nil)
