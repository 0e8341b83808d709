// Package listing holds the stateless parts of the list views: column
// definitions, sort toggling, filtering and paging. Views own the sort and
// page state and pass it in.
package listing

import (
	"fmt"
	"slices"
	"strings"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Column describes one table column over rows of type T.
type Column[T any] struct {
	Key      string
	Label    string
	Sortable bool
	Width    int
	// Render formats the cell; nil uses fmt's default formatting of Value.
	Render func(T) string
	// Value extracts the raw cell value for default rendering.
	Value func(T) any
	// Compare orders two rows ascending; required when Sortable.
	Compare func(a, b T) int
}

// Cell renders row in column c.
func (c Column[T]) Cell(row T) string {
	switch {
	case c.Render != nil:
		return c.Render(row)
	case c.Value != nil:
		return fmt.Sprint(c.Value(row))
	default:
		return ""
	}
}

// Sort is the current sort state of a list view. A zero Sort leaves rows in
// collection order.
type Sort struct {
	Field string
	Order Order
}

// Toggle returns the sort after the header for field is activated: a new
// field sorts ascending, the same field flips direction.
func (s Sort) Toggle(field string) Sort {
	if s.Field != field {
		return Sort{Field: field, Order: Asc}
	}
	if s.Order == Asc {
		return Sort{Field: field, Order: Desc}
	}
	return Sort{Field: field, Order: Asc}
}

// Indicator returns the arrow shown next to a sorted header.
func (s Sort) Indicator(field string) string {
	if s.Field != field {
		return ""
	}
	if s.Order == Desc {
		return "▼"
	}
	return "▲"
}

// SortRows returns rows ordered by s. Rows that compare equal keep their
// relative order. An unknown or unsortable field returns a copy unchanged.
func SortRows[T any](rows []T, cols []Column[T], s Sort) []T {
	out := slices.Clone(rows)
	idx := slices.IndexFunc(cols, func(c Column[T]) bool { return c.Key == s.Field })
	if idx < 0 || !cols[idx].Sortable || cols[idx].Compare == nil {
		return out
	}
	cmp := cols[idx].Compare
	slices.SortStableFunc(out, func(a, b T) int {
		if s.Order == Desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return out
}

// Filter keeps rows whose key contains query, case-insensitively. A blank
// query keeps everything.
func Filter[T any](rows []T, query string, key func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(rows)
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(key(row)), q) {
			out = append(out, row)
		}
	}
	return out
}

// PageCount returns ceil(n/size). An empty list has no pages.
func PageCount(n, size int) int {
	if size <= 0 {
		size = 1
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage keeps a zero-based page index within range. An empty list
// clamps to page 0.
func ClampPage(page, n, size int) int {
	last := PageCount(n, size) - 1
	return max(0, min(page, last))
}

// Page returns the zero-based page of rows.
func Page[T any](rows []T, page, size int) []T {
	if size <= 0 {
		size = 1
	}
	page = ClampPage(page, len(rows), size)
	start := page * size
	end := min(start+size, len(rows))
	if start >= end {
		return nil
	}
	return rows[start:end]
}

// CompareStrings orders strings case-insensitively.
func CompareStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
