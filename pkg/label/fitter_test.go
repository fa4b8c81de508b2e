package label

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/gdpmap/pkg/fontmetrics/fontmetricstest"
)

func TestTruncate(t *testing.T) {
	f := New(fontmetricstest.Settings())

	tests := []struct {
		name  string
		text  string
		size  int
		width float64
		want  string
	}{
		{"exact fit", "EUROPE", 14, 31.5, "EUR"},
		{"just short", "EUROPE", 14, 31.4, "EU"},
		{"everything fits", "EUROPE", 14, 1000, "EUROPE"},
		{"zero width", "EUROPE", 14, 0, ""},
		{"negative width", "EUROPE", 14, -5, ""},
		{"empty text", "", 14, 100, ""},
		{"unknown char uses W width", "A&B", 14, 10.5 + 14, "A&"},
		{"unmeasured size", "EUROPE", 15, 1000, ""},
		{"multibyte glyph", "‹ AB", 14, 7 + 3.5 + 10.5, "‹ A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Truncate(tt.text, tt.size, tt.width); got != tt.want {
				t.Errorf("Truncate(%q, %d, %v) = %q, want %q", tt.text, tt.size, tt.width, got, tt.want)
			}
		})
	}
}

func TestTruncateIsMonotonic(t *testing.T) {
	f := New(fontmetricstest.Settings())
	text := "Latin America & Caribbean"

	for _, fs := range f.Settings().FontSizes {
		prev := 0
		for w := 0.0; w <= 600; w += 0.5 {
			n := len(f.Truncate(text, fs, w))
			if n < prev {
				t.Fatalf("size %d: prefix shrank from %d to %d bytes at width %v", fs, prev, n, w)
			}
			prev = n
		}
	}
}

func TestTruncateAtOwnWidthKeepsText(t *testing.T) {
	f := New(fontmetricstest.Settings())

	for _, text := range []string{"USA", "-1.25%", "Sub-Saharan Africa", "‹ WORLD", "Côte d'Ivoire"} {
		for _, fs := range f.Settings().FontSizes {
			if got := f.Truncate(text, fs, f.TextWidth(text, fs)); got != text {
				t.Errorf("Truncate(%q, %d, own width) = %q", text, fs, got)
			}
		}
	}
}

func TestFallbackWithoutW(t *testing.T) {
	s := fontmetricstest.Settings(12)
	delete(s.CharWidths[12], "W")
	f := New(s)

	// '%' is the widest remaining glyph (one em).
	if got := f.TextWidth("&", 12); got != 12 {
		t.Errorf("TextWidth(&) = %v, want widest glyph 12", got)
	}
}

func TestSelectFontSize(t *testing.T) {
	f := New(fontmetricstest.Settings())
	ladder := f.Settings().FontSizes

	tests := []struct {
		name   string
		text   string
		width  float64
		height float64
		want   int
		ok     bool
	}{
		// USA at 36 is 81 wide against 120-40; at 30 it is 67.5 against 88.
		{"largest that fits width", "USA", 120, 100, 30, true},
		// Line height at 30 is 38, at 24 it is 30, at 20 it is 25.
		{"height must be strictly greater", "USA", 120, 30, 20, true},
		{"no height", "USA", 120, 5, 0, false},
		{"too narrow", "RUSSIAN FEDERATION", 20, 100, 0, false},
		{"padding consumes box", "A", 8, 100, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.SelectFontSize(tt.text, tt.width, tt.height, ladder)
			if got != tt.want || ok != tt.ok {
				t.Errorf("SelectFontSize(%q, %v, %v) = (%d, %v), want (%d, %v)",
					tt.text, tt.width, tt.height, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSelectFontSizeSkipsUnmeasured(t *testing.T) {
	f := New(fontmetricstest.Settings())

	got, ok := f.SelectFontSize("USA", 200, 200, []int{40, 15, 12})
	if !ok || got != 12 {
		t.Errorf("SelectFontSize() = (%d, %v), want (12, true)", got, ok)
	}
}

func TestLeafSingleLine(t *testing.T) {
	f := New(fontmetricstest.Settings(20, 10))

	got := f.Leaf(100, 30, "USA", "2.54%")
	want := []Spec{{Text: "USA", FontSize: 20, Left: 50, Top: 15, Height: 25}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Leaf() mismatch (-want +got):\n%s", diff)
	}
}

func TestLeafTwoLines(t *testing.T) {
	f := New(fontmetricstest.Settings())

	got := f.Leaf(120, 100, "USA", "2.54%")
	want := []Spec{
		{Text: "USA", FontSize: 30, Left: 60, Top: 38.5, Height: 38},
		{Text: "2.54%", FontSize: 18, Left: 60, Top: 69, Height: 23},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Leaf() mismatch (-want +got):\n%s", diff)
	}
}

func TestLeafSecondaryNeverLargerThanPrimary(t *testing.T) {
	f := New(fontmetricstest.Settings())

	for _, box := range [][2]float64{{40, 40}, {80, 200}, {300, 300}, {60, 25}} {
		specs := f.Leaf(box[0], box[1], "ABW", "12.34%")
		if len(specs) == 2 && specs[1].FontSize > specs[0].FontSize {
			t.Errorf("box %v: secondary %d larger than primary %d", box, specs[1].FontSize, specs[0].FontSize)
		}
	}
}

func TestLeafNarrowDropsUnit(t *testing.T) {
	f := New(fontmetricstest.Settings())

	narrow := f.Leaf(32, 60, "CHN", "5.25%")
	if len(narrow) != 2 {
		t.Fatalf("Leaf(32) returned %d specs, want 2", len(narrow))
	}
	if narrow[0].FontSize != 10 || narrow[1].Text != "5.25" || narrow[1].FontSize != 8 {
		t.Errorf("Leaf(32) = %+v", narrow)
	}

	wider := f.Leaf(33, 60, "CHN", "5.25%")
	if len(wider) != 2 || wider[1].Text != "5.25%" {
		t.Errorf("Leaf(33) = %+v, want unit kept", wider)
	}
}

func TestLeafNoFit(t *testing.T) {
	f := New(fontmetricstest.Settings())

	if got := f.Leaf(20, 100, "RUSSIAN FEDERATION", "-3.60%"); len(got) != 0 {
		t.Errorf("Leaf() = %+v, want no labels", got)
	}
	if got := f.Leaf(200, 4, "USA", "2.54%"); len(got) != 0 {
		t.Errorf("Leaf() in a flat box = %+v, want no labels", got)
	}
}

func TestLeafIsIdempotent(t *testing.T) {
	f := New(fontmetricstest.Settings())

	a := f.Leaf(140, 90, "DEU", "-0.30%")
	b := f.Leaf(140, 90, "DEU", "-0.30%")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Leaf() not idempotent (-first +second):\n%s", diff)
	}
}
