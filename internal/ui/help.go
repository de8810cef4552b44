package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	// Help content
	sections := []helpSection{
		{
			title: "Views",
			items: []helpItem{
				{"m", "Sensor monitor"},
				{"g", "Live plot"},
				{"p", "Profiles"},
				{"L", "Log tail"},
			},
		},
		{
			title: "Thresholds",
			items: []helpItem{
				{"←/→", "Select sensor"},
				{"↑/↓", "Adjust by 1"},
				{"shift+↑/↓", "Adjust by 5"},
				{"pgup/pgdn", "Adjust by 10"},
				{"=", "Enter a value"},
				{"s", "Save on device"},
			},
		},
		{
			title: "Plot",
			items: []helpItem{
				{"1-9", "Show/hide sensor"},
			},
		},
		{
			title: "Profiles",
			items: []helpItem{
				{"↑/↓", "Select profile"},
				{"enter", "Activate profile"},
				{"a", "Add from current"},
				{"d", "Remove profile (asks first)"},
			},
		},
		{
			title: "Logs",
			items: []helpItem{
				{"↑/↓", "Scroll"},
				{"pgup/pgdn", "Page"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	// Build help content
	var b strings.Builder

	// Title
	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		// Section title
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			// Key
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(12)
			b.WriteString(keyStyle.Render(item.key))
			// Description
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	// Build the modal
	content := b.String()

	// Calculate modal dimensions
	modalWidth := 40

	// Modal style
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	// Center the modal
	modalContent := modal.Render(content)

	// Create overlay
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
