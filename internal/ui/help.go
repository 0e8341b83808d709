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
			title: "Navigation",
			items: []helpItem{
				{"p/u", "Products/Users"},
				{"esc", "Back"},
				{"j/k", "Move up/down"},
				{"h/l", "Previous/next page"},
				{"enter", "Open"},
			},
		},
		{
			title: "Lists",
			items: []helpItem{
				{"/", "Search"},
				{"1-9", "Sort by column"},
				{"n", "New"},
				{"e", "Edit"},
				{"d", "Delete"},
				{"r", "Reload products"},
			},
		},
		{
			title: "Forms",
			items: []helpItem{
				{"tab", "Next field"},
				{"shift+tab", "Previous field"},
				{"enter", "Next or submit"},
				{"ctrl+s", "Submit"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"a", "Activity log"},
				{"x", "Dismiss alert"},
				{"T", "Cycle theme"},
				{"?", "Toggle help"},
				{"ctrl+l", "Logout"},
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
