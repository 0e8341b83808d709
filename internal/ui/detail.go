package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/route"
	"github.com/five82/shelf/internal/state"
)

// handleDetailKey processes keyboard input for the product detail screen.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) {
		return m, m.navigate(route.PathProducts)
	}
	p, ok := m.products.SelectByID(m.route.ID)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Edit):
		return m, m.navigate(route.ProductEditPath(p.ID))
	case key.Matches(msg, m.keys.Delete):
		m.modal = m.confirmDeleteProduct(p, route.PathProducts)
	}
	return m, nil
}

// renderProductDetail renders every field of the routed product.
func (m Model) renderProductDetail() string {
	bgColor := m.theme.SurfaceAlt
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)
	height := m.contentHeight()
	title := "Product #" + strconv.FormatInt(m.route.ID, 10)

	p, ok := m.products.SelectByID(m.route.ID)
	if !ok {
		msg := "Product not found"
		if m.productSnap.Status == state.StatusLoading || m.productSnap.Status == state.StatusIdle {
			msg = "Loading product..."
		}
		return m.renderTitledBox(title, bg.Render(msg, styles.MutedText), m.width, height, true)
	}

	valueWidth := max(m.width-4-detailLabelWidth, 20)
	field := func(label, value string, style lipgloss.Style) []string {
		wrapped := wrapText(value, valueWidth)
		out := make([]string, 0, len(wrapped))
		for i, line := range wrapped {
			l := ""
			if i == 0 {
				l = label
			}
			out = append(out, bg.Render(padRight(l, detailLabelWidth), styles.MutedText)+bg.Render(line, style))
		}
		return out
	}

	var lines []string
	lines = append(lines, bg.Render(p.Title, styles.Text.Bold(true)), "")
	lines = append(lines, field("ID", strconv.FormatInt(p.ID, 10), styles.Text)...)
	lines = append(lines, field("Price", formatPrice(p.Price), styles.SuccessText)...)
	lines = append(lines, field("Category", p.Category, styles.AccentText)...)
	lines = append(lines, field("Rating", fmt.Sprintf("%.1f (%d reviews)", p.Rating.Rate, p.Rating.Count), styles.WarningText)...)
	lines = append(lines, field("Image", p.Image, styles.InfoText)...)
	lines = append(lines, "")
	lines = append(lines, field("Description", p.Description, styles.Text)...)
	if m.errLine != "" {
		lines = append(lines, "", bg.Render(m.errLine, styles.DangerText))
	}

	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, height, true)
}

const detailLabelWidth = 14

// renderNotFound renders the screen for unknown paths.
func (m Model) renderNotFound() string {
	styles := m.theme.Styles()
	msg := styles.DangerText.Bold(true).Render("404") + "\n\n" +
		styles.Text.Render("Nothing lives at "+m.route.Path) + "\n\n" +
		styles.MutedText.Render("Press esc to go back to products")
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, msg)
}
