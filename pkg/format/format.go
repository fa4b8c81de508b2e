// Package format renders GDP values and growth rates the way the treemap
// labels, tooltips and legend show them.
//
// Numbers are printed through an English [message.Printer], so large
// values get thousands separators.
package format

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Minus is the sign used by legend ticks.
const Minus = "−"

var compactSuffixes = []string{"", "K", "M", "B", "T"}

func printer() *message.Printer { return message.NewPrinter(language.English) }

// Value formats a US dollar amount in compact notation with three
// significant digits: 27360935000000 becomes "$27.4T" and 22977677860
// becomes "$23.0B".
func Value(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "–"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}

	exp := 0
	for exp < len(compactSuffixes)-1 && v >= 1000 {
		v /= 1000
		exp++
	}
	v = roundSignificant(v, 3)
	if v >= 1000 && exp < len(compactSuffixes)-1 {
		v /= 1000
		exp++
	}

	// Three significant digits: v is in [0, 1000) here, or above when
	// there is no larger suffix.
	verb := "%.2f"
	switch {
	case v >= 100:
		verb = "%.0f"
	case v >= 10:
		verb = "%.1f"
	}
	return sign + "$" + printer().Sprintf(verb, v) + compactSuffixes[exp]
}

// Change formats a growth fraction as a percentage with two decimals:
// 0.0254 becomes "2.54%".
func Change(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "–"
	}
	return printer().Sprintf("%.2f%%", v*100)
}

// Tick formats a legend tick as a whole percentage with a true minus
// sign: -0.06 becomes "−6%".
func Tick(v float64) string {
	s := printer().Sprintf("%.0f%%", v*100)
	if s == "-0%" {
		return "0%"
	}
	return strings.Replace(s, "-", Minus, 1)
}

func roundSignificant(v float64, digits int) float64 {
	if v == 0 {
		return 0
	}
	scale := math.Pow(10, float64(digits-1-int(math.Floor(math.Log10(v)))))
	return math.Round(v*scale) / scale
}
