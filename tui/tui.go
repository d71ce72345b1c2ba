// Package tui provides an interactive terminal UI for reviewing analysed
// images and picking the ones to enhance
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2)

	itemStyle = lipgloss.NewStyle().PaddingLeft(4)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("#7D56F4")).
				Bold(true)

	checkedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	uncheckedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1)
)

// Item is one analysed image
type Item struct {
	Path        string
	Size        int64
	Kind        string // portrait, landscape, night, unknown
	Temperature string
	Brightness  string
	Warmth      float64
	Score       float64
	Mean        string // #rrggbb
	Dominant    string // #rrggbb
	Recipe      string
	Selected    bool
}

// kinds is the filter cycle; "" shows everything
var kinds = []string{"", "portrait", "landscape", "night", "unknown"}

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Filter    key.Binding
	Confirm   key.Binding
	Quit      key.Binding
	Help      key.Binding
	Preview   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("space", " "),
		key.WithHelp("space", "toggle selection"),
	),
	ToggleAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "toggle all shown"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter by kind"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "enhance selected"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Preview: key.NewBinding(
		key.WithKeys("p", "tab"),
		key.WithHelp("p/tab", "toggle details"),
	),
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Confirm, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.ToggleAll},
		{k.Filter, k.Confirm, k.Preview, k.Help, k.Quit},
	}
}

// Model is the TUI state
type Model struct {
	items       []Item
	filter      int
	cursor      int
	showHelp    bool
	showPreview bool
	confirmed   bool
	quitting    bool
	width       int
	height      int
	keys        keyMap
	help        help.Model
	title       string
}

// New creates a new TUI model
func New(title string, items []Item) Model {
	return Model{
		items:       items,
		showPreview: true,
		keys:        keys,
		help:        help.New(),
		title:       title,
	}
}

// Init initializes the TUI
func (m Model) Init() tea.Cmd {
	return nil
}

// visible returns indexes into m.items that pass the kind filter
func (m Model) visible() []int {
	var idx []int
	for i, it := range m.items {
		if kinds[m.filter] == "" || it.Kind == kinds[m.filter] {
			idx = append(idx, i)
		}
	}
	return idx
}

// Update handles messages and user input
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		shown := m.visible()
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp

		case key.Matches(msg, m.keys.Preview):
			m.showPreview = !m.showPreview

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(shown)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Filter):
			m.filter = (m.filter + 1) % len(kinds)
			m.cursor = 0

		case key.Matches(msg, m.keys.Toggle):
			if m.cursor < len(shown) {
				it := &m.items[shown[m.cursor]]
				it.Selected = !it.Selected
			}

		case key.Matches(msg, m.keys.ToggleAll):
			allSelected := len(shown) > 0
			for _, i := range shown {
				if !m.items[i].Selected {
					allSelected = false
					break
				}
			}
			for _, i := range shown {
				m.items[i].Selected = !allSelected
			}

		case key.Matches(msg, m.keys.Confirm):
			m.confirmed = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) status() string {
	selected := 0
	for _, it := range m.items {
		if it.Selected {
			selected++
		}
	}
	filter := "all"
	if kinds[m.filter] != "" {
		filter = kinds[m.filter]
	}
	return fmt.Sprintf("Selected: %d/%d | Showing: %s", selected, len(m.items), filter)
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.confirmed {
		return m.renderConfirmation()
	}
	if len(m.items) == 0 {
		return "No images found!\n"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(" " + m.title + " "))
	s.WriteString("\n\n")
	s.WriteString(headerStyle.Render("Images"))
	s.WriteString("\n\n")

	shown := m.visible()
	s.WriteString(m.renderList(shown))
	s.WriteString("\n")

	if m.showPreview && m.cursor < len(shown) {
		s.WriteString(previewStyle.Render(renderDetails(m.items[shown[m.cursor]])))
		s.WriteString("\n")
	}

	s.WriteString(infoStyle.Render(m.status()))
	s.WriteString("\n\n")
	if m.showHelp {
		s.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		s.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return s.String()
}

func (m Model) renderList(shown []int) string {
	var s strings.Builder
	for row, i := range shown {
		it := m.items[i]
		var line strings.Builder

		if it.Selected {
			line.WriteString(checkedStyle.Render("[✓] "))
		} else {
			line.WriteString(uncheckedStyle.Render("[ ] "))
		}
		line.WriteString(swatch(it.Mean))
		line.WriteString(" ")

		name := filepath.Base(it.Path)
		if row == m.cursor {
			line.WriteString(selectedItemStyle.Render("> " + name))
		} else {
			line.WriteString(itemStyle.Render(name))
		}
		line.WriteString(infoStyle.Render(fmt.Sprintf(" (%s, %s, %s)", it.Kind, it.Temperature, it.Brightness)))

		s.WriteString(line.String())
		s.WriteString("\n")
	}
	if len(shown) == 0 {
		s.WriteString(infoStyle.Render("    nothing matches this filter\n"))
	}
	return s.String()
}

func swatch(hex string) string {
	if hex == "" {
		return "  "
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

// contrastColor picks black or white text for a #rrggbb background by its
// CIE L*. It returns "" for anything that is not a hex colour.
func contrastColor(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ""
	}
	if l, _, _ := c.Lab(); l < 0.5 {
		return "#ffffff"
	}
	return "#000000"
}

// hexSwatch prints the hex code on its own colour.
func hexSwatch(hex string) string {
	fg := contrastColor(hex)
	if fg == "" {
		return hex
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(lipgloss.Color(fg)).
		Render(" " + hex + " ")
}

func renderDetails(it Item) string {
	var s strings.Builder
	fmt.Fprintf(&s, "%s  %s\n", it.Path, formatBytes(it.Size))
	fmt.Fprintf(&s, "kind:        %s\n", it.Kind)
	fmt.Fprintf(&s, "temperature: %s (%.2f)\n", it.Temperature, it.Warmth)
	fmt.Fprintf(&s, "brightness:  %s (%.2f)\n", it.Brightness, it.Score)
	fmt.Fprintf(&s, "mean:        %s\n", hexSwatch(it.Mean))
	fmt.Fprintf(&s, "dominant:    %s\n", hexSwatch(it.Dominant))
	if it.Recipe != "" {
		fmt.Fprintf(&s, "recipe:      %s", it.Recipe)
	}
	return s.String()
}

func (m Model) renderConfirmation() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" Confirmation "))
	s.WriteString("\n\n")

	sel := m.Selected()
	if len(sel) == 0 {
		s.WriteString("No images selected.\n")
		return s.String()
	}
	s.WriteString(fmt.Sprintf("Enhancing %d images:\n\n", len(sel)))
	for i, path := range sel {
		if i >= 10 {
			s.WriteString(fmt.Sprintf("... and %d more\n", len(sel)-10))
			break
		}
		s.WriteString(fmt.Sprintf("  • %s\n", path))
	}
	return s.String()
}

// Selected returns the paths of the selected images, or nil if the user
// quit without confirming
func (m Model) Selected() []string {
	if m.quitting {
		return nil
	}
	var out []string
	for _, it := range m.items {
		if it.Selected {
			out = append(out, it.Path)
		}
	}
	return out
}

// Confirmed reports whether the user pressed enter
func (m Model) Confirmed() bool {
	return m.confirmed
}

// Run starts the TUI and returns the selected image paths
func Run(title string, items []Item) ([]string, error) {
	p := tea.NewProgram(New(title, items), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}
	model := m.(Model)
	if !model.Confirmed() {
		return nil, nil
	}
	return model.Selected(), nil
}

// formatBytes formats bytes into human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
