package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/listing"
)

// actionsWidth is the width of the trailing actions column.
const actionsWidth = 18

// table is one rendered page of a list view. It holds no state of its own;
// the list view passes in sort, cursor and the rows of the current page.
type table[T any] struct {
	cols    []listing.Column[T]
	rows    []T
	sort    listing.Sort
	cursor  int
	actions bool
}

// sortableKeys returns the keys of sortable columns in display order. The
// n-th entry is bound to the digit key n.
func sortableKeys[T any](cols []listing.Column[T]) []string {
	var keys []string
	for _, c := range cols {
		if c.Sortable {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// sortFieldForKey maps a digit key to a sortable column key.
func sortFieldForKey[T any](cols []listing.Column[T], k string) (string, bool) {
	n, err := strconv.Atoi(k)
	if err != nil {
		return "", false
	}
	keys := sortableKeys(cols)
	if n < 1 || n > len(keys) {
		return "", false
	}
	return keys[n-1], true
}

// columnWidths gives fixed columns their width and splits what is left
// between flexible ones.
func columnWidths[T any](cols []listing.Column[T], width int, actions bool) []int {
	widths := make([]int, len(cols))
	avail := width
	if actions {
		avail -= actionsWidth + 1
	}
	flexible := 0
	for i, c := range cols {
		if c.Width > 0 {
			widths[i] = c.Width
			avail -= c.Width + 1
		} else {
			flexible++
		}
	}
	if flexible > 0 {
		each := max((avail-flexible)/flexible, 6)
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = each
			}
		}
	}
	return widths
}

func (t table[T]) headerLabels() []string {
	digit := 0
	labels := make([]string, len(t.cols))
	for i, c := range t.cols {
		label := c.Label
		if c.Sortable {
			digit++
			label += " " + strconv.Itoa(digit)
			if ind := t.sort.Indicator(c.Key); ind != "" {
				label += ind
			}
		}
		labels[i] = label
	}
	return labels
}

// renderTable renders the header and rows of t into width columns.
func (m Model) renderTable(t tableLike, width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	headers, rows := t.cells()
	widths := t.widths(width)
	actions := t.hasActions()

	var lines []string
	header := make([]string, 0, len(headers)+1)
	for i, h := range headers {
		header = append(header, fitCell(h, widths[i]))
	}
	if actions {
		header = append(header, fitCell("Actions", actionsWidth))
	}
	lines = append(lines, bg.FillLine(bg.Render(strings.Join(header, " "), styles.TableHeader), width))
	lines = append(lines, bg.FillLine(bg.Render(strings.Repeat("─", width), styles.FaintText), width))

	for r, row := range rows {
		cells := make([]string, 0, len(row)+1)
		for i, c := range row {
			cells = append(cells, fitCell(c, widths[i]))
		}
		if actions {
			cells = append(cells, fitCell("e:edit d:delete", actionsWidth))
		}
		text := strings.Join(cells, " ")
		if r == t.selected() {
			sel := lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.SelectionBg)).
				Foreground(lipgloss.Color(m.theme.SelectionText)).
				Width(width)
			lines = append(lines, sel.Render(text))
			continue
		}
		lines = append(lines, bg.FillLine(bg.Render(text, styles.Text), width))
	}
	return strings.Join(lines, "\n")
}

// tableLike erases the row type so Model can render any table.
type tableLike interface {
	cells() (headers []string, rows [][]string)
	widths(width int) []int
	hasActions() bool
	selected() int
}

func (t table[T]) cells() ([]string, [][]string) {
	rows := make([][]string, len(t.rows))
	for r, row := range t.rows {
		cells := make([]string, len(t.cols))
		for i, c := range t.cols {
			cells[i] = c.Cell(row)
		}
		rows[r] = cells
	}
	return t.headerLabels(), rows
}

func (t table[T]) widths(width int) []int { return columnWidths(t.cols, width, t.actions) }

func (t table[T]) hasActions() bool { return t.actions }

func (t table[T]) selected() int { return t.cursor }
