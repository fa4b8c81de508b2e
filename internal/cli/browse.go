package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/format"
	"github.com/matzehuels/gdpmap/pkg/hierarchy"
	"github.com/matzehuels/gdpmap/pkg/pipeline"
	"github.com/matzehuels/gdpmap/pkg/tooltip"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

var (
	browseGrowthStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	browseDeclineStyle = lipgloss.NewStyle().Foreground(colorRed)
	browseErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	browseCardStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

func (c *CLI) browseCommand() *cobra.Command {
	var (
		year string
		zoom string
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Walk the region tree in the terminal",
		Long: `Browse the loaded hierarchy with the same zoom rules as the treemap:
enter descends into a region, backspace goes back up to the parent view and
/ jumps to any code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.Options{Year: year, Zoom: zoom}
			if err := opts.ValidateAndSetDefaults(cfg); err != nil {
				return err
			}
			ds, _, err := runner.LoadData(ctx, opts.Year, false)
			if err != nil {
				return err
			}
			model, err := newBrowseModel(ds.Tree, opts.ZoomState(ds.Tree))
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "data year (default from config)")
	cmd.Flags().StringVarP(&zoom, "zoom", "z", "", "region code to start in")
	return cmd
}

// browseModel lists the children of the focused node.
type browseModel struct {
	tree   *hierarchy.Tree
	zoom   treemap.Zoom
	focus  *hierarchy.Node
	items  []*hierarchy.Node
	cursor int
	offset int
	height int
	status string // last refused navigation

	search    textinput.Model
	searching bool
}

func newBrowseModel(tree *hierarchy.Tree, zoom treemap.Zoom) (browseModel, error) {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "code"
	search.CharLimit = 3
	m := browseModel{tree: tree, height: 15, search: search}
	if err := m.show(zoom); err != nil {
		return m, err
	}
	return m, nil
}

// show focuses zoom and resets the cursor.
func (m *browseModel) show(zoom treemap.Zoom) error {
	focus, err := zoom.Focus(m.tree)
	if err != nil {
		return err
	}
	m.zoom = zoom
	m.focus = focus
	m.items = m.tree.Children(focus)
	m.cursor, m.offset = 0, 0
	return nil
}

// jump shows the node with code: an inner node becomes the focus, a leaf
// is selected in its parent's view.
func (m *browseModel) jump(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := errors.ValidateCode(code); err != nil {
		return err
	}
	n, ok := m.tree.Find(code)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no node with code %q", code)
	}
	if !n.IsLeaf() {
		if n == m.tree.Root() {
			return m.show(treemap.Root())
		}
		return m.show(treemap.Zoomed(code))
	}
	parent := m.tree.Parent(n)
	zoom := treemap.Zoomed(parent.Code)
	if parent == m.tree.Root() {
		zoom = treemap.Root()
	}
	if err := m.show(zoom); err != nil {
		return err
	}
	for i, item := range m.items {
		if item == n {
			m.cursor = i
			m.offset = max(0, i-m.height+1)
		}
	}
	return nil
}

func (m browseModel) selected() *hierarchy.Node {
	if m.cursor < len(m.items) {
		return m.items[m.cursor]
	}
	return nil
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", "right", "l":
			n := m.selected()
			if n == nil || n.IsLeaf() {
				return m, nil
			}
			next, err := m.zoom.In(m.tree, n.Code)
			if err == nil {
				err = m.show(next)
			}
			if err != nil {
				m.status = errors.UserMessage(err)
			}
		case "/":
			m.searching = true
			m.search.SetValue("")
			return m, m.search.Focus()
		case "backspace", "left", "h":
			if m.zoom.IsRoot() {
				m.status = "already at the top"
				return m, nil
			}
			if err := m.show(m.zoom.Out(m.tree)); err != nil {
				m.status = errors.UserMessage(err)
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		if err := m.jump(m.search.Value()); err != nil {
			m.status = errors.UserMessage(err)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.breadcrumb()))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(format.Value(m.tree.Value(m.focus))))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ zoom in  ⌫ zoom out  / jump  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.items))
	total := m.tree.Value(m.focus)
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		n := m.items[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		name := n.Name
		if !n.IsLeaf() {
			name += " ›"
		}
		growth := "—"
		if n.Change != nil {
			growth = format.Change(*n.Change)
		}
		share := "—"
		if total > 0 {
			share = fmt.Sprintf("%.1f%%", 100*m.tree.Value(n)/total)
		}
		rows = append(rows, []string{cursor, n.Code, name, format.Value(m.tree.Value(n)), growth, share})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Code", "Name", "GDP", "Growth", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			n := m.items[m.offset+row]
			base := lipgloss.NewStyle()
			if col == 4 && n.Change != nil {
				if *n.Change < 0 {
					base = browseDeclineStyle
				} else {
					base = browseGrowthStyle
				}
			}
			if m.offset+row == m.cursor {
				return base.Bold(true)
			}
			return base
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if n := m.selected(); n != nil && n.IsLeaf() {
		b.WriteString(browseCardStyle.Render(tooltip.For(n).String()))
		b.WriteString("\n")
	}
	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(browseErrorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.items))))
	return b.String()
}

// breadcrumb joins the names from the root down to the focus.
func (m browseModel) breadcrumb() string {
	var names []string
	for n := m.focus; n != nil; n = m.tree.Parent(n) {
		names = append([]string{n.Name}, names...)
	}
	return strings.Join(names, " › ")
}
