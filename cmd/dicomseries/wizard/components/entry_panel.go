package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/dicomseries/cmd/dicomseries/wizard/help"
	"github.com/mrsinham/dicomseries/internal/sr"
)

var (
	entryPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Width(60)

	entryTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true)

	fieldTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// EntryPanel displays the coded fields of one registry entry
type EntryPanel struct {
	structureType string
	entry         sr.Entry
	width         int
}

// NewEntryPanel creates an empty entry panel
func NewEntryPanel() *EntryPanel {
	return &EntryPanel{width: 60}
}

// SetEntry updates the displayed entry. An empty structure type clears the
// panel.
func (p *EntryPanel) SetEntry(structureType string, entry sr.Entry) {
	p.structureType = structureType
	p.entry = entry
}

// SetWidth updates the panel width
func (p *EntryPanel) SetWidth(width int) {
	p.width = width
}

// View renders the entry panel
func (p *EntryPanel) View() string {
	style := entryPanelStyle.Width(max(p.width-4, 20))

	if p.structureType == "" {
		return style.Render("No structure type selected")
	}

	var sb strings.Builder
	sb.WriteString(entryTitleStyle.Render(p.structureType))
	for pos, key := range help.Fields {
		sb.WriteString("\n\n")
		sb.WriteString(fieldTitleStyle.Render(help.Texts[key].Title))
		attrs := p.entry.CodedAttributes(pos)
		if len(attrs) == 0 {
			sb.WriteString("\n")
			sb.WriteString(codeStyle.Render("  (none)"))
			continue
		}
		for _, attr := range attrs {
			sb.WriteString("\n  ")
			sb.WriteString(attr.CodeMeaning)
			sb.WriteString(" ")
			sb.WriteString(codeStyle.Render(attr.CodeValue + " " + attr.CodingSchemeDesignator))
		}
	}
	return style.Render(sb.String())
}
