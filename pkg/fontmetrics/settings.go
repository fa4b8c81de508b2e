package fontmetrics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"slices"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

// Settings is the measured font configuration consumed by the label fitter.
// The JSON field names are the font-settings.json wire contract.
//
// A Settings value is built once and never mutated afterwards; it is safe
// to share between goroutines.
type Settings struct {
	FontFamily      string                     `json:"fontFamily"`
	FontSizes       []int                      `json:"fontSizes"`
	FontSizePairs   map[int][]int              `json:"fontSizePairs"`
	FontSizePadding map[int]int                `json:"fontSizePadding"`
	CharWidths      map[int]map[string]float64 `json:"charWidths"`
	CharHeights     map[int]int                `json:"charHeights"`
}

// Ladder returns the font sizes as a [Ladder].
func (s *Settings) Ladder() Ladder { return Ladder(s.FontSizes) }

// Has reports whether size is one of the measured font sizes.
func (s *Settings) Has(size int) bool {
	_, ok := s.CharWidths[size]
	return ok
}

// LineHeight returns the measured line height at size.
func (s *Settings) LineHeight(size int) int { return s.CharHeights[size] }

// Padding returns the horizontal inset reserved on each side of text at size.
func (s *Settings) Padding(size int) int { return s.FontSizePadding[size] }

// Pairs returns the secondary sizes compatible with the primary size.
func (s *Settings) Pairs(size int) []int { return s.FontSizePairs[size] }

// LargestAtMost returns the largest measured size not exceeding limit.
func (s *Settings) LargestAtMost(limit int) (int, bool) {
	for _, fs := range s.FontSizes {
		if fs <= limit {
			return fs, true
		}
	}
	return 0, false
}

// Validate checks the table invariants: every size has widths, a height, a
// padding and a non-empty, non-increasing pairs list bounded by the size.
// It is meant for settings decoded from a file or a cache.
func (s *Settings) Validate() error {
	if err := s.Ladder().Validate(); err != nil {
		return err
	}
	for _, fs := range s.FontSizes {
		widths, ok := s.CharWidths[fs]
		if !ok || len(widths) == 0 {
			return errors.New(errors.ErrCodeConfiguration, "missing char widths for size %d", fs)
		}
		for c, w := range widths {
			if w < 0 {
				return errors.New(errors.ErrCodeConfiguration, "negative width %g for %q at size %d", w, c, fs)
			}
		}
		if _, ok := s.CharHeights[fs]; !ok {
			return errors.New(errors.ErrCodeConfiguration, "missing char height for size %d", fs)
		}
		if _, ok := s.FontSizePadding[fs]; !ok {
			return errors.New(errors.ErrCodeConfiguration, "missing padding for size %d", fs)
		}
		pairs := s.FontSizePairs[fs]
		if len(pairs) == 0 {
			return errors.New(errors.ErrCodeConfiguration, "missing size pairs for size %d", fs)
		}
		if pairs[0] > fs {
			return errors.New(errors.ErrCodeConfiguration, "size pair %d exceeds primary size %d", pairs[0], fs)
		}
		if !slices.IsSortedFunc(pairs, func(a, b int) int { return b - a }) {
			return errors.New(errors.ErrCodeConfiguration, "size pairs for %d are not descending", fs)
		}
	}
	return nil
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s *Settings) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}

// Decode reads and validates settings written by [Encode] or by the
// original font-settings generator.
func Decode(r io.Reader) (*Settings, error) {
	var s Settings
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode font settings")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Key returns a content hash of s. Map keys are encoded in sorted order, so
// equal settings always hash alike.
func (s *Settings) Key() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
