package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/zametka/internal/models"
)

const dateTimeLayout = "2006-01-02 15:04"

var (
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1)
	menuStyle   = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// renderNote frames a note as a card: header, timestamps, then the body.
func renderNote(n models.Note) string {
	header := fmt.Sprintf(labelNote, n.ID, n.Title)
	created := fmt.Sprintf(labelCreated, n.CreationDate.Format(dateTimeLayout))
	modified := fmt.Sprintf(labelModified, n.LastChangeDate.Format(dateTimeLayout))

	width := max(lipgloss.Width(header), lipgloss.Width(created), lipgloss.Width(modified))
	for _, line := range strings.Split(n.Body, "\n") {
		width = max(width, lipgloss.Width(line))
	}
	divider := strings.Repeat("─", width)

	lines := []string{headerStyle.Render(header), divider, created, modified}
	if n.Body != "" {
		lines = append(lines, divider, n.Body)
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderMenu draws the menu box with its keys aligned.
func renderMenu(m menu) string {
	keyWidth := 0
	for _, it := range m.items {
		keyWidth = max(keyWidth, lipgloss.Width(it.label()))
	}
	rows := make([]string, 0, len(m.items)+2)
	rows = append(rows, headerStyle.Render(m.header), "")
	for _, it := range m.items {
		key := lipgloss.NewStyle().Width(keyWidth).Align(lipgloss.Center).Render(it.label())
		rows = append(rows, key+" ▸ "+it.name)
	}
	return menuStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
