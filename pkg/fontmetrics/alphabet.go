package fontmetrics

import (
	"slices"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

// Alphabet is the ordered set of glyphs measured by [Build].
type Alphabet []rune

// DefaultAlphabet covers country codes, growth percentages and region
// breadcrumbs.
var DefaultAlphabet = Alphabet("0123456789+-%." +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"‹›•")

// String returns the alphabet as one string, the sample used for line
// height measurement.
func (a Alphabet) String() string { return string(a) }

// Contains reports whether r is part of the alphabet.
func (a Alphabet) Contains(r rune) bool { return slices.Contains(a, r) }

// Ladder is a strictly descending list of candidate font sizes in pixels.
type Ladder []int

// DefaultLadder is the font size ladder used by the visualization.
var DefaultLadder = Ladder{36, 30, 24, 20, 18, 14, 13, 12, 11, 10, 9, 8}

// Validate checks that the ladder is non-empty, positive and strictly
// descending.
func (l Ladder) Validate() error {
	if len(l) == 0 {
		return errors.New(errors.ErrCodeConfiguration, "font size ladder is empty")
	}
	for i, fs := range l {
		if fs <= 0 {
			return errors.New(errors.ErrCodeConfiguration, "font size must be positive, got %d", fs)
		}
		if i > 0 && fs >= l[i-1] {
			return errors.New(errors.ErrCodeConfiguration,
				"font sizes must be strictly descending: %d follows %d", fs, l[i-1])
		}
	}
	return nil
}

// Smallest returns the last (smallest) size of the ladder, or 0 if empty.
func (l Ladder) Smallest() int {
	if len(l) == 0 {
		return 0
	}
	return l[len(l)-1]
}

// Style selects the font family and weight measurements are taken with.
type Style struct {
	Family string `json:"family" toml:"family"`
	Weight string `json:"weight" toml:"weight"`
}

// DefaultStyle matches the bold sans-serif labels of the treemap.
var DefaultStyle = Style{Family: "sans-serif", Weight: "bold"}
