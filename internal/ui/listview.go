package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/listing"
	"github.com/five82/shelf/internal/prefs"
)

// listState is the search, sort and page state of one list screen. The
// paginator tracks the page; listing does the slicing.
type listState struct {
	search    textinput.Model
	searching bool
	sort      listing.Sort
	pager     paginator.Model
	cursor    int // row within the current page
}

func newListState(placeholder string, pageSize int, sort listing.Sort) listState {
	search := textinput.New()
	search.Placeholder = placeholder
	search.Prompt = "/ "
	search.CharLimit = 100

	pager := paginator.New()
	pager.Type = paginator.Dots
	pager.PerPage = pageSize
	pager.ActiveDot = "●"
	pager.InactiveDot = "○"
	pager.TotalPages = 1

	return listState{search: search, sort: sort, pager: pager}
}

// reset clears the search and returns to the first page. Sort survives.
func (ls *listState) reset() {
	ls.search.SetValue("")
	ls.search.Blur()
	ls.searching = false
	ls.pager.Page = 0
	ls.cursor = 0
}

// clamp fits page and cursor to n visible rows.
func (ls *listState) clamp(n int) {
	size := ls.pager.PerPage
	// The pager always shows at least one page.
	ls.pager.TotalPages = max(listing.PageCount(n, size), 1)
	ls.pager.Page = listing.ClampPage(ls.pager.Page, n, size)
	onPage := min(size, n-ls.pager.Page*size)
	ls.cursor = max(0, min(ls.cursor, onPage-1))
}

// rows returns the filtered and sorted rows and the current page of them.
func rows[T any](ls listState, items []T, cols []listing.Column[T], searchKey func(T) string) (all, page []T) {
	all = listing.SortRows(listing.Filter(items, ls.search.Value(), searchKey), cols, ls.sort)
	return all, listing.Page(all, ls.pager.Page, ls.pager.PerPage)
}

// prefsSort converts the sort for storage.
func (ls listState) prefsSort() prefs.Sort {
	return prefs.Sort{Field: ls.sort.Field, Order: string(ls.sort.Order)}
}

// handleKey applies the keys shared by list screens over n visible rows.
// It reports whether the key was consumed.
func (ls *listState) handleKey(msg tea.KeyMsg, keys keyMap, n int) (bool, tea.Cmd) {
	if ls.searching {
		switch msg.Type {
		case tea.KeyEnter:
			ls.searching = false
			ls.search.Blur()
			return true, nil
		case tea.KeyEsc:
			ls.searching = false
			ls.search.Blur()
			ls.search.SetValue("")
			ls.pager.Page = 0
			return true, nil
		}
		before := ls.search.Value()
		var cmd tea.Cmd
		ls.search, cmd = ls.search.Update(msg)
		if ls.search.Value() != before {
			ls.pager.Page = 0
			ls.cursor = 0
		}
		return true, cmd
	}

	size := ls.pager.PerPage
	onPage := min(size, n-ls.pager.Page*size)
	switch {
	case key.Matches(msg, keys.Search):
		ls.searching = true
		return true, ls.search.Focus()
	case key.Matches(msg, keys.Down):
		switch {
		case ls.cursor < onPage-1:
			ls.cursor++
		case !ls.pager.OnLastPage():
			ls.pager.NextPage()
			ls.cursor = 0
		}
		return true, nil
	case key.Matches(msg, keys.Up):
		switch {
		case ls.cursor > 0:
			ls.cursor--
		case !ls.pager.OnFirstPage():
			ls.pager.PrevPage()
			ls.cursor = size - 1
		}
		return true, nil
	case key.Matches(msg, keys.NextPage):
		ls.pager.NextPage()
		ls.cursor = 0
		return true, nil
	case key.Matches(msg, keys.PrevPage):
		ls.pager.PrevPage()
		ls.cursor = 0
		return true, nil
	}
	return false, nil
}

// toggleSort handles a digit key against cols.
func toggleSort[T any](ls *listState, cols []listing.Column[T], k string) bool {
	field, ok := sortFieldForKey(cols, k)
	if !ok {
		return false
	}
	ls.sort = ls.sort.Toggle(field)
	return true
}
