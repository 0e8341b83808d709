package ui

import (
	"strings"
	"testing"

	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/listing"
	"github.com/five82/shelf/internal/state"
)

func TestSortFieldForKey(t *testing.T) {
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"1", "id", true},
		{"2", "title", true},
		{"3", "price", true},
		{"4", "", false}, // category is not sortable
		{"0", "", false},
		{"x", "", false},
	}
	for _, tt := range tests {
		got, ok := sortFieldForKey(productColumns, tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("sortFieldForKey(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}

	if keys := sortableKeys(userColumns); strings.Join(keys, ",") != "id,username,password,name" {
		t.Fatalf("user sortable keys = %v", keys)
	}
}

func TestColumnWidths_SplitsFlexible(t *testing.T) {
	widths := columnWidths(productColumns, 100, true)
	if widths[0] != 14 || widths[2] != 11 || widths[3] != 18 {
		t.Fatalf("fixed widths = %v", widths)
	}
	// 100 - actions(19) - fixed(15+12+19) = 35, minus one separator
	if widths[1] != 34 {
		t.Fatalf("flexible width = %d, want 34", widths[1])
	}
}

func TestTableHeaderShowsSortIndicator(t *testing.T) {
	tbl := table[fakestore.Product]{
		cols: productColumns,
		sort: listing.Sort{Field: "price", Order: listing.Desc},
	}
	headers, _ := tbl.cells()
	want := []string{"ID 1", "Title 2", "Price 3▼", "Category"}
	if strings.Join(headers, "|") != strings.Join(want, "|") {
		t.Fatalf("headers = %q, want %q", headers, want)
	}
}

func TestTableCellsUseRender(t *testing.T) {
	tbl := table[state.User]{
		cols: userColumns,
		rows: []state.User{{ID: 7, Name: "Nia", Username: "nia@shelf.dev", Password: "$2a$10$abcdefghijklmnopqrstuv"}},
	}
	_, rows := tbl.cells()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	got := rows[0]
	if got[0] != "7" || got[1] != "nia@shelf.dev" || got[3] != "Nia" {
		t.Fatalf("cells = %q", got)
	}
	if got[2] == "$2a$10$abcdefghijklmnopqrstuv" || !strings.HasSuffix(got[2], "...") {
		t.Fatalf("password cell not masked: %q", got[2])
	}
}

func TestRenderTitledBoxDimensions(t *testing.T) {
	m := Model{theme: GetTheme("Slate")}
	out := m.renderTitledBox("Users", "a\nb", 30, 6, false)
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("box has %d lines, want 6", len(lines))
	}
	if !strings.Contains(lines[0], " Users ") {
		t.Fatalf("title missing from top border: %q", lines[0])
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("a quick brown fox jumps", 10)
	want := []string{"a quick", "brown fox", "jumps"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("wrapText = %q, want %q", got, want)
	}
}
