package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/route"
	"github.com/five82/shelf/internal/state"
)

// sectionLabel names the current screen for the header.
func (m Model) sectionLabel() string {
	id := itoa(m.route.ID)
	switch m.route.Name {
	case route.Login:
		return "Sign in"
	case route.Products:
		return "Products"
	case route.ProductCreate:
		return "Products › New"
	case route.ProductEdit:
		return "Products › Edit #" + id
	case route.ProductDetail:
		return "Products › #" + id
	case route.Users:
		return "Users"
	case route.UserCreate:
		return "Users › New"
	case route.UserEdit:
		return "Users › Edit #" + id
	default:
		return "Not found"
	}
}

// renderHeader renders the status bar: logo, section, activity, alert and
// the logout hint.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("shelf", styles.Logo),
		bg.Render(m.sectionLabel(), styles.Text.Bold(true)),
	}

	if m.gate.Authenticated() {
		parts = append(parts,
			bg.Render("Products:", styles.MutedText)+bg.Space()+
				bg.Render(itoa(int64(m.productSnap.Len())), styles.Text)+sep+
				bg.Render("Users:", styles.MutedText)+bg.Space()+
				bg.Render(itoa(int64(m.userSnap.Len())), styles.Text))
	}

	switch {
	case m.busy:
		parts = append(parts, bg.Render("● Working", styles.WarningText))
	case m.productSnap.Status == state.StatusLoading:
		parts = append(parts, bg.Render("● Loading catalog", styles.WarningText))
	}

	if msg, ok := m.alert.Message(); ok {
		width := max(m.width/3, 20)
		if m.width < LayoutCompactWidth {
			width = 24
		}
		parts = append(parts, styles.Alert.Render(truncate(msg, width))+bg.Space()+bg.Render("x", styles.FaintText))
	}

	left := strings.Join(parts, sep)
	right := ""
	if m.gate.Authenticated() {
		right = bg.Render("ctrl+l", styles.AccentText) + bg.Sep(":") +
			bg.Render("Logout", styles.MutedText) + bg.Space()
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Header.Width(m.width).Render(left)
	}
	return styles.Header.Width(m.width).Render(left + bg.Spaces(gap) + right)
}

// renderCommandBar renders the key hints for the current screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var hints []hint
	switch {
	case m.showActivity:
		hints = []hint{{"j/k", "Scroll"}, {"r", "Reload"}, {"esc", "Close"}}
	case m.modal != nil:
		hints = []hint{{"y", "Confirm"}, {"n", "Cancel"}}
	default:
		hints = m.routeHints()
	}

	bar := bg.Hints(hints, styles.AccentText, styles.MutedText)

	// Search pattern on list screens
	var query string
	switch m.route.Name {
	case route.Products:
		query = m.productList.search.Value()
	case route.Users:
		query = m.userList.search.Value()
	}
	if query != "" {
		bar += bg.Spaces(2) + bg.Render("/"+truncate(query, 18), styles.AccentText)
	}

	bar += bg.Spaces(2) + bg.Render("T", styles.AccentText) + bg.Sep(":") + bg.Render(m.theme.Name, styles.FaintText)
	return styles.Header.Width(m.width).Render(bar)
}

func (m Model) routeHints() []hint {
	switch m.route.Name {
	case route.Login:
		return []hint{{"tab", "Next"}, {"enter", "Sign in"}, {"ctrl+c", "Quit"}}
	case route.ProductCreate, route.ProductEdit, route.UserCreate, route.UserEdit:
		return []hint{{"tab", "Next"}, {"ctrl+s", "Save"}, {"esc", "Cancel"}}
	case route.Products:
		if m.productList.searching {
			return []hint{{"enter", "Apply"}, {"esc", "Clear"}}
		}
		return []hint{
			{"/", "Search"}, {"1-3", "Sort"}, {"j/k", "Move"}, {"h/l", "Page"},
			{"enter", "Open"}, {"n", "New"}, {"e", "Edit"}, {"d", "Delete"},
			{"r", "Reload"}, {"u", "Users"}, {"?", "More"},
		}
	case route.Users:
		if m.userList.searching {
			return []hint{{"enter", "Apply"}, {"esc", "Clear"}}
		}
		return []hint{
			{"/", "Search"}, {"1-4", "Sort"}, {"j/k", "Move"}, {"h/l", "Page"},
			{"n", "New"}, {"e", "Edit"}, {"d", "Delete"}, {"p", "Products"}, {"?", "More"},
		}
	case route.ProductDetail:
		return []hint{{"e", "Edit"}, {"d", "Delete"}, {"esc", "Back"}, {"?", "More"}}
	default:
		return []hint{{"esc", "Products"}, {"q", "Quit"}}
	}
}

// renderFatal shows the error that ended the session.
func (m Model) renderFatal() string {
	styles := m.theme.Styles()
	return styles.DangerText.Bold(true).Render("shelf stopped: local storage failed") + "\n\n" +
		styles.Text.Render(m.fatal.Error()) + "\n"
}
