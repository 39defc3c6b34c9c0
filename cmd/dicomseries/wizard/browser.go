// Package wizard holds the interactive screens of dicomseries: a registry
// browser and a reverse lookup form.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/dicomseries/cmd/dicomseries/wizard/components"
	"github.com/mrsinham/dicomseries/internal/sr"
)

type browserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Filter key.Binding
	Select key.Binding
	Quit   key.Binding
}

var browserKeys = browserKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Browser lists the structure types of a registry next to the coded fields
// of the one under the cursor.
type Browser struct {
	registry *sr.Registry
	all      []string
	visible  []string
	cursor   int

	filter    textinput.Model
	filtering bool

	panel    *components.EntryPanel
	selected string
	height   int
}

// NewBrowser creates a browser over registry.
func NewBrowser(registry *sr.Registry) *Browser {
	filter := textinput.New()
	filter.Prompt = "Filter: "
	filter.Placeholder = "structure type"

	b := &Browser{
		registry: registry,
		all:      registry.StructureTypes(),
		filter:   filter,
		panel:    components.NewEntryPanel(),
		height:   20,
	}
	b.applyFilter()
	return b
}

// Selected returns the structure type chosen with enter, "" if the browser
// was quit.
func (b *Browser) Selected() string {
	return b.selected
}

// Init implements tea.Model
func (b *Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.height = msg.Height
		b.panel.SetWidth(msg.Width / 2)
		return b, nil

	case tea.KeyMsg:
		if b.filtering {
			return b.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, browserKeys.Quit):
			return b, tea.Quit
		case key.Matches(msg, browserKeys.Up):
			b.moveCursor(-1)
		case key.Matches(msg, browserKeys.Down):
			b.moveCursor(1)
		case key.Matches(msg, browserKeys.Filter):
			b.filtering = true
			return b, b.filter.Focus()
		case key.Matches(msg, browserKeys.Select):
			if len(b.visible) > 0 {
				b.selected = b.visible[b.cursor]
				return b, tea.Quit
			}
		}
	}
	return b, nil
}

func (b *Browser) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		b.filtering = false
		b.filter.Blur()
		return b, nil
	case tea.KeyCtrlC:
		return b, tea.Quit
	}

	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	b.applyFilter()
	return b, cmd
}

// applyFilter keeps the structure types containing the filter text, case
// insensitively, and moves the cursor back to the first one.
func (b *Browser) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(b.filter.Value()))
	b.visible = b.visible[:0]
	for _, structureType := range b.all {
		if needle == "" || strings.Contains(strings.ToLower(structureType), needle) {
			b.visible = append(b.visible, structureType)
		}
	}
	b.cursor = 0
	b.refreshPanel()
}

func (b *Browser) moveCursor(delta int) {
	if len(b.visible) == 0 {
		return
	}
	b.cursor = min(max(b.cursor+delta, 0), len(b.visible)-1)
	b.refreshPanel()
}

func (b *Browser) refreshPanel() {
	if len(b.visible) == 0 {
		b.panel.SetEntry("", sr.Entry{})
		return
	}
	structureType := b.visible[b.cursor]
	b.panel.SetEntry(structureType, b.registry.Entry(structureType))
}

// View implements tea.Model
func (b *Browser) View() string {
	var sb strings.Builder
	sb.WriteString(components.TitleStyle.Render("Segmented property registry"))
	sb.WriteString("\n")
	sb.WriteString(components.SubtitleStyle.Render(fmt.Sprintf("%d of %d structure types", len(b.visible), len(b.all))))
	sb.WriteString("\n")
	if b.filtering || b.filter.Value() != "" {
		sb.WriteString(b.filter.View())
		sb.WriteString("\n\n")
	}

	var list strings.Builder
	if len(b.visible) == 0 {
		list.WriteString(components.EmptyStyle.Render("No match"))
	}
	start, end := b.window()
	for i := start; i < end; i++ {
		if i == b.cursor {
			list.WriteString(components.SelectedItemStyle.Render("> " + b.visible[i]))
		} else {
			list.WriteString(components.ItemStyle.Render(b.visible[i]))
		}
		list.WriteString("\n")
	}

	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(32).Render(list.String()), b.panel.View()))
	sb.WriteString("\n")
	sb.WriteString(components.SubtitleStyle.Render(b.helpLine()))
	return sb.String()
}

// window returns the range of visible rows that fits the terminal and keeps
// the cursor in view.
func (b *Browser) window() (int, int) {
	rows := max(b.height-8, 5)
	start := 0
	if b.cursor >= rows {
		start = b.cursor - rows + 1
	}
	return start, min(start+rows, len(b.visible))
}

func (b *Browser) helpLine() string {
	bindings := []key.Binding{browserKeys.Up, browserKeys.Down, browserKeys.Filter, browserKeys.Select, browserKeys.Quit}
	parts := make([]string, len(bindings))
	for i, binding := range bindings {
		h := binding.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, " • ")
}

// RunBrowser runs the browser full screen and returns the selected structure
// type, "" if none was chosen.
func RunBrowser(registry *sr.Registry) (string, error) {
	browser := NewBrowser(registry)
	if _, err := tea.NewProgram(browser, tea.WithAltScreen()).Run(); err != nil {
		return "", fmt.Errorf("registry browser: %w", err)
	}
	return browser.Selected(), nil
}
