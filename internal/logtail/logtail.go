package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file has no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded slog JSON record.
type Entry struct {
	Time       time.Time
	Level      string
	Message    string
	Collection string
	Attrs      map[string]string
}

// reserved keys are rendered in the header rather than as attributes.
var reserved = map[string]bool{"time": true, "level": true, "msg": true, "collection": true, "pid": true}

// Parse decodes a JSON log line. ok is false for lines that are not JSON
// objects.
func Parse(line string) (Entry, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Entry{}, false
	}
	e := Entry{Attrs: map[string]string{}}
	for key, value := range fields {
		text := fmt.Sprint(value)
		switch key {
		case "time":
			e.Time, _ = time.Parse(time.RFC3339Nano, text)
		case "level":
			e.Level = strings.ToUpper(text)
		case "msg":
			e.Message = text
		case "collection":
			e.Collection = text
		default:
			if !reserved[key] {
				if f, isNum := value.(float64); isNum {
					text = formatNumber(f)
				}
				e.Attrs[key] = text
			}
		}
	}
	return e, true
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// Format renders e on one line:
//
//	15:04:05 WARN [products] – create product failed  error=… id=7
func Format(e Entry) string {
	parts := make([]string, 0, 4)
	if !e.Time.IsZero() {
		parts = append(parts, e.Time.In(time.Local).Format("15:04:05"))
	}
	level := e.Level
	if level == "" {
		level = "INFO"
	}
	parts = append(parts, level)
	if e.Collection != "" {
		parts = append(parts, "["+e.Collection+"]")
	}
	header := strings.Join(parts, " ")
	if msg := strings.TrimSpace(e.Message); msg != "" {
		header += " – " + msg
	}
	if len(e.Attrs) == 0 {
		return header
	}
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(" ")
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(e.Attrs[k])
	}
	return b.String()
}

// FormatLines parses and formats lines. Lines that are not JSON pass through
// unchanged.
func FormatLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if e, ok := Parse(line); ok {
			out = append(out, Format(e))
			continue
		}
		out = append(out, line)
	}
	return out
}
