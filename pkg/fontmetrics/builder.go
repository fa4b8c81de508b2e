package fontmetrics

import (
	"math"
	"slices"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

const (
	// DefaultPairFraction bounds a secondary size relative to its primary.
	DefaultPairFraction = 0.6
	// DefaultMaxPairs is the maximum number of secondary sizes per primary.
	DefaultMaxPairs = 5
	// DefaultPaddingStep is the rounding step of the per-size padding.
	DefaultPaddingStep = 4

	// spaceProbe brackets a space with periods so its advance can be
	// recovered without trusting the font's own space metric.
	spaceProbe = ". ."
)

type options struct {
	pairFraction float64
	maxPairs     int
	paddingStep  int
}

// Option configures [Build].
type Option func(*options)

// WithPairFraction sets the fraction of a primary size that its secondary
// sizes may not exceed.
func WithPairFraction(f float64) Option { return func(o *options) { o.pairFraction = f } }

// WithMaxPairs sets the maximum length of each fontSizePairs entry.
func WithMaxPairs(n int) Option { return func(o *options) { o.maxPairs = n } }

// WithPaddingStep sets the multiple fontSizePadding values are rounded to.
func WithPaddingStep(step int) Option { return func(o *options) { o.paddingStep = step } }

func newOptions(opts []Option) (options, error) {
	o := options{
		pairFraction: DefaultPairFraction,
		maxPairs:     DefaultMaxPairs,
		paddingStep:  DefaultPaddingStep,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pairFraction <= 0 || o.pairFraction > 1 {
		return o, errors.New(errors.ErrCodeConfiguration, "pair fraction must be in (0, 1], got %g", o.pairFraction)
	}
	if o.maxPairs < 1 {
		return o, errors.New(errors.ErrCodeConfiguration, "max pairs must be at least 1, got %d", o.maxPairs)
	}
	if o.paddingStep < 1 {
		return o, errors.New(errors.ErrCodeConfiguration, "padding step must be at least 1, got %d", o.paddingStep)
	}
	return o, nil
}

// Build measures every character of alphabet at every size of ladder and
// derives the pairing and padding tables.
//
// Build fails with a CONFIGURATION error for an empty alphabet, an invalid
// ladder or invalid options, and with an ENVIRONMENT error when m is nil or
// a measurement fails. It never returns partial settings.
func Build(alphabet Alphabet, ladder Ladder, style Style, m Measurer, opts ...Option) (*Settings, error) {
	if len(alphabet) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "alphabet is empty")
	}
	if err := ladder.Validate(); err != nil {
		return nil, err
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New(errors.ErrCodeEnvironment, "no text measurer available")
	}

	s := &Settings{
		FontFamily:      style.Family,
		FontSizes:       slices.Clone(ladder),
		FontSizePairs:   fontSizePairs(ladder, o.pairFraction, o.maxPairs),
		FontSizePadding: fontSizePadding(ladder, o.paddingStep),
		CharWidths:      make(map[int]map[string]float64, len(ladder)),
		CharHeights:     make(map[int]int, len(ladder)),
	}

	for _, fs := range ladder {
		widths, err := measureWidths(alphabet, fs, style, m)
		if err != nil {
			return nil, err
		}
		s.CharWidths[fs] = widths

		block, err := measure(m, alphabet.String(), fs, style)
		if err != nil {
			return nil, err
		}
		s.CharHeights[fs] = int(math.Ceil(block.Height))
	}
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "built settings are inconsistent")
	}
	return s, nil
}

func measureWidths(alphabet Alphabet, fs int, style Style, m Measurer) (map[string]float64, error) {
	widths := make(map[string]float64, len(alphabet)+1)
	for _, c := range alphabet {
		ext, err := measure(m, string(c), fs, style)
		if err != nil {
			return nil, err
		}
		widths[string(c)] = ceil2(ext.Width)
	}

	period, ok := widths["."]
	if !ok {
		ext, err := measure(m, ".", fs, style)
		if err != nil {
			return nil, err
		}
		period = ceil2(ext.Width)
	}
	probe, err := measure(m, spaceProbe, fs, style)
	if err != nil {
		return nil, err
	}
	widths[" "] = SpaceWidth(probe.Width, period)
	return widths, nil
}

func measure(m Measurer, text string, fs int, style Style) (Extent, error) {
	ext, err := m.Measure(text, fs, style)
	if err != nil {
		return Extent{}, errors.Wrap(errors.ErrCodeEnvironment, err, "measure %q at %dpx", text, fs)
	}
	if !validLength(ext.Width) || !validLength(ext.Height) {
		return Extent{}, errors.New(errors.ErrCodeEnvironment,
			"measurer returned %gx%g for %q at %dpx", ext.Width, ext.Height, text, fs)
	}
	return ext, nil
}

func validLength(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// SpaceWidth derives the width of a space from the measured width of ". ."
// and the (already rounded) width of a single period.
func SpaceWidth(probeWidth, periodWidth float64) float64 {
	return max(0, ceil2(probeWidth-2*periodWidth))
}

// fontSizePairs maps each size to up to maxCount ladder sizes starting at
// the first one not above max(ceil(fs*fraction), smallest).
func fontSizePairs(ladder Ladder, fraction float64, maxCount int) map[int][]int {
	smallest := ladder.Smallest()
	pairs := make(map[int][]int, len(ladder))
	for _, fs := range ladder {
		threshold := max(int(math.Ceil(float64(fs)*fraction)), smallest)
		i := slices.IndexFunc(ladder, func(d int) bool { return d <= threshold })
		end := min(i+maxCount, len(ladder))
		pairs[fs] = slices.Clone(ladder[i:end])
	}
	return pairs
}

func fontSizePadding(ladder Ladder, step int) map[int]int {
	padding := make(map[int]int, len(ladder))
	for _, fs := range ladder {
		padding[fs] = int(math.Round(float64(fs)/2/float64(step))) * step
	}
	return padding
}

// ceil2 rounds x up to two decimal places.
func ceil2(x float64) float64 {
	return math.Ceil(x*100) / 100
}
