package ui

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/listing"
	"github.com/five82/shelf/internal/route"
	"github.com/five82/shelf/internal/state"
)

var userColumns = []listing.Column[state.User]{
	{
		Key: "id", Label: "ID", Sortable: true, Width: 14,
		Value:   func(u state.User) any { return u.ID },
		Compare: func(a, b state.User) int { return cmp.Compare(a.ID, b.ID) },
	},
	{
		Key: "username", Label: "Username", Sortable: true,
		Value:   func(u state.User) any { return u.Username },
		Compare: func(a, b state.User) int { return listing.CompareStrings(a.Username, b.Username) },
	},
	{
		Key: "password", Label: "Password", Sortable: true, Width: 18,
		Render:  func(u state.User) string { return maskHash(u.Password) },
		Compare: func(a, b state.User) int { return strings.Compare(a.Password, b.Password) },
	},
	{
		Key: "name", Label: "Name", Sortable: true,
		Value:   func(u state.User) any { return u.Name },
		Compare: func(a, b state.User) int { return listing.CompareStrings(a.Name, b.Name) },
	},
}

func userUsername(u state.User) string { return u.Username }

func (m Model) visibleUsers() (all, page []state.User) {
	return rows(m.userList, m.userSnap.Items, userColumns, userUsername)
}

func (m Model) visibleUserCount() int {
	all, _ := m.visibleUsers()
	return len(all)
}

func (m Model) selectedUser() (state.User, bool) {
	_, page := m.visibleUsers()
	if m.userList.cursor < 0 || m.userList.cursor >= len(page) {
		return state.User{}, false
	}
	return page[m.userList.cursor], true
}

// handleUsersKey processes keyboard input for the users list.
func (m Model) handleUsersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.visibleUserCount()
	m.userList.clamp(n)
	if ok, cmd := m.userList.handleKey(msg, m.keys, n); ok {
		m.userList.clamp(m.visibleUserCount())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Sort):
		if toggleSort(&m.userList, userColumns, msg.String()) {
			m.prefs.Users = m.userList.prefsSort()
			m.savePrefs()
		}
		return m, nil
	case key.Matches(msg, m.keys.Create):
		return m, m.navigate(route.UserCreatePath())
	}

	u, ok := m.selectedUser()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Edit):
		return m, m.navigate(route.UserEditPath(u.ID))
	case key.Matches(msg, m.keys.Delete):
		m.modal = confirmModal{
			title:  "Delete user",
			prompt: fmt.Sprintf("Delete %s (#%d)?", u.Username, u.ID),
			onYes:  m.deleteUserCmd(u.ID),
		}
	}
	return m, nil
}

// renderUsers renders the users list screen.
func (m Model) renderUsers() string {
	bgColor := m.theme.SurfaceAlt
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)
	width := m.width - 2

	var lines []string
	if m.userList.searching || m.userList.search.Value() != "" {
		lines = append(lines, bg.FillLine(m.userList.search.View(), width), "")
	}

	all, page := m.visibleUsers()
	if len(all) == 0 {
		lines = append(lines, bg.Render("No users found", styles.MutedText))
	} else {
		ls := m.userList
		ls.clamp(len(all))
		t := table[state.User]{
			cols:    userColumns,
			rows:    page,
			sort:    ls.sort,
			cursor:  ls.cursor,
			actions: true,
		}
		lines = append(lines, m.renderTable(t, width, bgColor), "")
		lines = append(lines, m.renderPager(ls, len(all), "users", styles, bg))
	}
	if m.errLine != "" {
		lines = append(lines, "", bg.Render(m.errLine, styles.DangerText))
	}

	return m.renderTitledBox("Users", strings.Join(lines, "\n"), m.width, m.contentHeight(), true)
}
