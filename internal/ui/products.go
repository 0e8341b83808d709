package ui

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/listing"
	"github.com/five82/shelf/internal/route"
	"github.com/five82/shelf/internal/state"
)

var productColumns = []listing.Column[fakestore.Product]{
	{
		Key: "id", Label: "ID", Sortable: true, Width: 14,
		Value:   func(p fakestore.Product) any { return p.ID },
		Compare: func(a, b fakestore.Product) int { return cmp.Compare(a.ID, b.ID) },
	},
	{
		Key: "title", Label: "Title", Sortable: true,
		Value:   func(p fakestore.Product) any { return p.Title },
		Compare: func(a, b fakestore.Product) int { return listing.CompareStrings(a.Title, b.Title) },
	},
	{
		Key: "price", Label: "Price", Sortable: true, Width: 11,
		Render:  func(p fakestore.Product) string { return formatPrice(p.Price) },
		Compare: func(a, b fakestore.Product) int { return cmp.Compare(a.Price, b.Price) },
	},
	{
		Key: "category", Label: "Category", Width: 18,
		Value: func(p fakestore.Product) any { return p.Category },
	},
}

func productTitle(p fakestore.Product) string { return p.Title }

// visibleProducts returns the searched and sorted products and the current
// page of them.
func (m Model) visibleProducts() (all, page []fakestore.Product) {
	return rows(m.productList, m.productSnap.Items, productColumns, productTitle)
}

// selectedProduct returns the product under the cursor.
func (m Model) selectedProduct() (fakestore.Product, bool) {
	_, page := m.visibleProducts()
	if m.productList.cursor < 0 || m.productList.cursor >= len(page) {
		return fakestore.Product{}, false
	}
	return page[m.productList.cursor], true
}

// handleProductsKey processes keyboard input for the products list.
func (m Model) handleProductsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	all, _ := m.visibleProducts()
	m.productList.clamp(len(all))
	if ok, cmd := m.productList.handleKey(msg, m.keys, len(all)); ok {
		m.productList.clamp(m.visibleProductCount())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Sort):
		if toggleSort(&m.productList, productColumns, msg.String()) {
			m.prefs.Products = m.productList.prefsSort()
			m.savePrefs()
		}
	case key.Matches(msg, m.keys.Create):
		return m, m.navigate(route.ProductCreatePath())
	case key.Matches(msg, m.keys.Refresh):
		if !m.loading {
			return m, m.loadProductsCmd(true)
		}
	}

	p, ok := m.selectedProduct()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Open):
		return m, m.navigate(route.ProductPath(p.ID))
	case key.Matches(msg, m.keys.Edit):
		return m, m.navigate(route.ProductEditPath(p.ID))
	case key.Matches(msg, m.keys.Delete):
		m.modal = m.confirmDeleteProduct(p, "")
	}
	return m, nil
}

func (m Model) visibleProductCount() int {
	all, _ := m.visibleProducts()
	return len(all)
}

// confirmDeleteProduct asks before deleting p. next is where to go
// afterwards; empty stays on the current screen.
func (m Model) confirmDeleteProduct(p fakestore.Product, next string) Modal {
	return confirmModal{
		title:  "Delete product",
		prompt: fmt.Sprintf("Delete %q (#%d)?", truncate(p.Title, 40), p.ID),
		onYes:  m.deleteProductCmd(p.ID, next),
	}
}

// renderProducts renders the products list screen.
func (m Model) renderProducts() string {
	height := m.contentHeight()
	bgColor := m.theme.SurfaceAlt
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)
	width := m.width - 2
	snap := m.productSnap

	var lines []string
	if m.productList.searching || m.productList.search.Value() != "" {
		lines = append(lines, bg.FillLine(m.productList.search.View(), width), "")
	}

	all, page := m.visibleProducts()
	switch {
	case snap.Status == state.StatusLoading && len(snap.Items) == 0:
		lines = append(lines, bg.Render("Loading products...", styles.WarningText))
	case len(all) == 0 && snap.Status != state.StatusFailed:
		lines = append(lines, bg.Render("No products found", styles.MutedText))
	case len(all) > 0:
		ls := m.productList
		ls.clamp(len(all))
		t := table[fakestore.Product]{
			cols:    productColumns,
			rows:    page,
			sort:    ls.sort,
			cursor:  ls.cursor,
			actions: true,
		}
		lines = append(lines, m.renderTable(t, width, bgColor), "")
		lines = append(lines, m.renderPager(ls, len(all), "products", styles, bg))
	}

	if snap.Status == state.StatusLoading && len(snap.Items) > 0 {
		lines = append(lines, bg.Render("Refreshing...", styles.WarningText))
	}
	if line := m.productsErrorLine(); line != "" {
		lines = append(lines, "", bg.Render(line, styles.DangerText))
	}

	return m.renderTitledBox("Products", strings.Join(lines, "\n"), m.width, height, true)
}

// productsErrorLine is the static failure line: the last command error if
// one was recorded, otherwise the container's failure.
func (m Model) productsErrorLine() string {
	if m.errLine != "" {
		return m.errLine
	}
	if m.productSnap.Status == state.StatusFailed && m.productSnap.Error != "" {
		return "Last catalog request failed: " + m.productSnap.Error
	}
	return ""
}

// renderPager renders the paginator dots and counts.
func (m Model) renderPager(ls listState, total int, noun string, styles Styles, bg BgStyle) string {
	dots := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Background(bg.bg).Render(ls.pager.View())
	info := fmt.Sprintf("page %d of %d · %d %s", ls.pager.Page+1, ls.pager.TotalPages, total, noun)
	return dots + bg.Spaces(2) + bg.Render(info, styles.MutedText)
}
