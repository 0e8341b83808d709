package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleActivityKey processes keyboard input while the activity log is open.
func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Activity):
		m.showActivity = false
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadActivityCmd()
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

// setActivity loads formatted log lines into the viewport, newest at the
// bottom.
func (m *Model) setActivity(msg activityMsg) {
	styles := m.theme.Styles()
	switch {
	case msg.err != nil:
		m.activity.SetContent(styles.DangerText.Render("Could not read " + m.logPath + ": " + msg.err.Error()))
	case len(msg.lines) == 0:
		m.activity.SetContent(styles.MutedText.Render("No activity recorded yet"))
	default:
		m.activity.SetContent(strings.Join(msg.lines, "\n"))
	}
	m.activity.GotoBottom()
}

// renderActivity renders the activity overlay.
func (m Model) renderActivity() string {
	return m.renderTitledBox("Activity", m.activity.View(), m.width, m.contentHeight(), true)
}
