package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// Update returns the updated modal, a command, and whether the modal closes.
// A non-nil command is treated as a submission.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal asks a yes/no question and runs onYes on confirmation.
type confirmModal struct {
	title  string
	prompt string
	onYes  tea.Cmd
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Yes):
		return c, c.onYes, true
	case key.Matches(km, keys.No):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.DangerText.Bold(true).Render(c.title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(c.prompt))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("y/enter"))
	b.WriteString(styles.MutedText.Render(" delete   "))
	b.WriteString(styles.AccentText.Render("n/esc"))
	b.WriteString(styles.MutedText.Render(" cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Danger)).
		Padding(1, 2).
		Width(min(60, max(width-4, 20))).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
