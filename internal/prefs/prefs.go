// Package prefs persists shelf's UI preferences in ~/.config/shelf/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Sort is a remembered list ordering.
type Sort struct {
	Field string `toml:"field"`
	Order string `toml:"order"`
}

// Prefs holds user preferences.
type Prefs struct {
	Theme    string `toml:"theme"`
	Products Sort   `toml:"products"`
	Users    Sort   `toml:"users"`
}

const (
	defaultPrefsPath = "~/.config/shelf/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// Load reads preferences from path. A missing file yields defaults and no
// error. Any other problem also yields defaults, along with the error so the
// caller can report it.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return defaults(), err
	}

	file, err := os.Open(resolved)
	if errors.Is(err, os.ErrNotExist) {
		return defaults(), nil
	}
	if err != nil {
		return defaults(), fmt.Errorf("open prefs: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return defaults(), fmt.Errorf("read prefs: %w", err)
	}

	prefs := defaults()
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return defaults(), fmt.Errorf("parse prefs %s: %w", resolved, err)
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	prefs.Products = prefs.Products.normalized()
	prefs.Users = prefs.Users.normalized()
	return prefs, nil
}

// normalized drops an order that is neither asc nor desc.
func (s Sort) normalized() Sort {
	s.Field = strings.TrimSpace(s.Field)
	s.Order = strings.ToLower(strings.TrimSpace(s.Order))
	if s.Field == "" || (s.Order != "asc" && s.Order != "desc") {
		return Sort{}
	}
	return s
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
