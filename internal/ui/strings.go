package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// fitCell truncates then pads so table columns line up.
func fitCell(s string, width int) string {
	return padRight(truncate(s, width), width)
}

// wrapText breaks value into lines of at most width runes on word boundaries.
func wrapText(value string, width int) []string {
	words := strings.Fields(value)
	if width <= 0 || len(words) == 0 {
		return []string{value}
	}
	var lines []string
	var line []rune
	for _, w := range words {
		wr := []rune(w)
		switch {
		case len(line) == 0:
			line = wr
		case len(line)+1+len(wr) <= width:
			line = append(append(line, ' '), wr...)
		default:
			lines = append(lines, string(line))
			line = wr
		}
	}
	return append(lines, string(line))
}

// maskHash shortens a stored password hash for display.
func maskHash(hash string) string {
	if hash == "" {
		return ""
	}
	return truncate(hash, 16)
}

// formatPrice renders a product price.
func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
