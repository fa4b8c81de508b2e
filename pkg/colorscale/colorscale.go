// Package colorscale maps GDP growth to fill colors: a diverging scale
// from a negative color through a neutral color to a positive color,
// interpolated in HCL space and clamped to its domain.
package colorscale

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/format"
)

// Default colors and domain.
const (
	DefaultNegative = "#c4463a"
	DefaultNeutral  = "#525252"
	DefaultPositive = "#2a9d6f"
	DefaultExtent   = 0.06
)

// Scale is a clamped three-stop diverging color scale.
// It is immutable and safe for concurrent use.
type Scale struct {
	domain [3]float64
	stops  [3]colorful.Color
}

// Option configures a [Scale].
type Option func(*Scale)

// WithDomain sets the values mapped to the negative, neutral and positive
// colors.
func WithDomain(lo, mid, hi float64) Option {
	return func(s *Scale) { s.domain = [3]float64{lo, mid, hi} }
}

// New returns a scale through the three hex colors. The domain defaults to
// [-0.06, 0, 0.06]. It fails with INVALID_INPUT for malformed colors or a
// domain that is not strictly increasing.
func New(negative, neutral, positive string, opts ...Option) (*Scale, error) {
	s := &Scale{domain: [3]float64{-DefaultExtent, 0, DefaultExtent}}
	for i, hex := range []string{negative, neutral, positive} {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse color %q", hex)
		}
		s.stops[i] = c
	}
	for _, opt := range opts {
		opt(s)
	}
	if !(s.domain[0] < s.domain[1] && s.domain[1] < s.domain[2]) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "domain %v is not increasing", s.domain)
	}
	return s, nil
}

// Default returns the scale with the default colors and domain.
func Default() *Scale {
	s, err := New(DefaultNegative, DefaultNeutral, DefaultPositive)
	if err != nil {
		panic(err)
	}
	return s
}

// Domain returns the negative, neutral and positive domain values.
func (s *Scale) Domain() [3]float64 { return s.domain }

// At returns the color for v. Values outside the domain take the color of
// the nearest end; NaN takes the neutral color.
func (s *Scale) At(v float64) colorful.Color {
	t := s.position(v)
	if t <= 0.5 {
		return s.stops[0].BlendHcl(s.stops[1], t*2).Clamped()
	}
	return s.stops[1].BlendHcl(s.stops[2], t*2-1).Clamped()
}

// Hex returns the color for v as "#rrggbb".
func (s *Scale) Hex(v float64) string { return s.At(v).Hex() }

// position maps v to [0, 1], the neutral value to 0.5.
func (s *Scale) position(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	lo, mid, hi := s.domain[0], s.domain[1], s.domain[2]
	var t float64
	if v < mid {
		t = 0.5 + 0.5*(v-mid)/(mid-lo)
	} else {
		t = 0.5 + 0.5*(v-mid)/(hi-mid)
	}
	return min(1, max(0, t))
}

// Swatch is one entry of the color legend.
type Swatch struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
	Label string  `json:"label"`
}

// Legend returns one swatch per tick of the domain extent.
func (s *Scale) Legend(count int) []Swatch {
	ticks := Ticks(s.domain[0], s.domain[2], count)
	swatches := make([]Swatch, len(ticks))
	for i, v := range ticks {
		swatches[i] = Swatch{Value: v, Color: s.Hex(v), Label: format.Tick(v)}
	}
	return swatches
}
