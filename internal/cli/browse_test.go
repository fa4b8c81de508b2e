package cli

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/gdpmap/pkg/hierarchy"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

func loadTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	open := func(name string) *os.File {
		f, err := os.Open("testdata/" + name)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { f.Close() })
		return f
	}
	tree, err := hierarchy.LoadWorldBank(open("gdp.csv"), open("growth.csv"), open("meta.csv"), "2023")
	if err != nil {
		t.Fatalf("LoadWorldBank() error: %v", err)
	}
	return tree
}

func press(m browseModel, keys ...string) browseModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(browseModel)
	}
	return m
}

func codes(nodes []*hierarchy.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Code
	}
	return out
}

func TestBrowseStartsAtRoot(t *testing.T) {
	m, err := newBrowseModel(loadTree(t), treemap.Root())
	if err != nil {
		t.Fatalf("newBrowseModel() error: %v", err)
	}
	if got := strings.Join(codes(m.items), ","); got != "NAC,ECS" {
		t.Errorf("items = %s, want NAC,ECS", got)
	}
	if m.breadcrumb() != "World" {
		t.Errorf("breadcrumb = %q, want World", m.breadcrumb())
	}
}

func TestBrowseZoom(t *testing.T) {
	m, err := newBrowseModel(loadTree(t), treemap.Root())
	if err != nil {
		t.Fatal(err)
	}

	m = press(m, "down", "enter")
	if m.zoom != treemap.Zoomed("ECS") {
		t.Fatalf("zoom = %s, want zoomed(ECS)", m.zoom)
	}
	if got := strings.Join(codes(m.items), ","); got != "DEU,ALB" {
		t.Errorf("items = %s, want DEU,ALB", got)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 after zooming", m.cursor)
	}
	if m.breadcrumb() != "World › Europe & Central Asia" {
		t.Errorf("breadcrumb = %q", m.breadcrumb())
	}

	// Leaves cannot be zoomed into.
	m = press(m, "enter")
	if m.zoom != treemap.Zoomed("ECS") {
		t.Errorf("zoom = %s after enter on a leaf", m.zoom)
	}

	m = press(m, "backspace")
	if !m.zoom.IsRoot() {
		t.Errorf("zoom = %s, want root", m.zoom)
	}

	m = press(m, "h")
	if m.status == "" {
		t.Error("zooming out of the root view should report a status")
	}
	m = press(m, "j")
	if m.status != "" {
		t.Errorf("status = %q, want cleared on the next key", m.status)
	}
}

func TestBrowseCursorBounds(t *testing.T) {
	m, err := newBrowseModel(loadTree(t), treemap.Zoomed("NAC"))
	if err != nil {
		t.Fatal(err)
	}
	m = press(m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	m = press(m, "down", "down", "down")
	if m.cursor != len(m.items)-1 {
		t.Errorf("cursor = %d, want %d", m.cursor, len(m.items)-1)
	}
}

func TestBrowseScrolls(t *testing.T) {
	m, err := newBrowseModel(loadTree(t), treemap.Root())
	if err != nil {
		t.Fatal(err)
	}
	m.height = 1
	m = press(m, "down")
	if m.offset != 1 {
		t.Errorf("offset = %d, want 1", m.offset)
	}
	m = press(m, "up")
	if m.offset != 0 {
		t.Errorf("offset = %d, want 0", m.offset)
	}
}

func TestBrowseRejectsLeafZoom(t *testing.T) {
	if _, err := newBrowseModel(loadTree(t), treemap.Zoomed("USA")); err == nil {
		t.Error("newBrowseModel() should fail for a leaf focus")
	}
}

func TestBrowseQuit(t *testing.T) {
	m, err := newBrowseModel(loadTree(t), treemap.Root())
	if err != nil {
		t.Fatal(err)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowseView(t *testing.T) {
	m, err := newBrowseModel(loadTree(t), treemap.Zoomed("NAC"))
	if err != nil {
		t.Fatal(err)
	}
	view := m.View()
	for _, want := range []string{"World › North America", "United States", "USA", "[1/2]", "GDP growth"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestBrowseJump(t *testing.T) {
	m, err := newBrowseModel(loadTree(t), treemap.Root())
	if err != nil {
		t.Fatal(err)
	}

	m = press(m, "/", "can", "enter")
	if m.zoom != treemap.Zoomed("NAC") {
		t.Fatalf("zoom = %s, want zoomed(NAC)", m.zoom)
	}
	if n := m.selected(); n == nil || n.Code != "CAN" {
		t.Errorf("selected = %v, want CAN", n)
	}
	if m.searching {
		t.Error("enter should close the search prompt")
	}

	m = press(m, "/", "ecs", "enter")
	if m.zoom != treemap.Zoomed("ECS") {
		t.Errorf("zoom = %s, want zoomed(ECS)", m.zoom)
	}

	m = press(m, "/", "wld", "enter")
	if !m.zoom.IsRoot() {
		t.Errorf("zoom = %s, want root", m.zoom)
	}

	m = press(m, "/", "xyz", "enter")
	if m.status == "" {
		t.Error("jumping to an unknown code should report a status")
	}
	if !m.zoom.IsRoot() {
		t.Errorf("zoom = %s, want unchanged", m.zoom)
	}
}

func TestBrowseSearchEscape(t *testing.T) {
	m, err := newBrowseModel(loadTree(t), treemap.Root())
	if err != nil {
		t.Fatal(err)
	}
	m = press(m, "/", "q")
	if !m.searching {
		t.Fatal("q inside the prompt should be typed, not quit")
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(browseModel)
	if m.searching {
		t.Error("esc should close the prompt")
	}
}
