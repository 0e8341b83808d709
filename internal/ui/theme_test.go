package ui

import "testing"

func TestNextThemeCycles(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	for i, name := range names {
		want := names[(i+1)%len(names)]
		if got := NextTheme(name); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %q", name, got, want)
		}
	}
	if got := NextTheme("Unknown"); got != names[0] {
		t.Fatalf("NextTheme(Unknown) = %q, want %q", got, names[0])
	}
}

func TestGetThemeFallsBack(t *testing.T) {
	if got := GetTheme("missing").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(missing) = %q, want Nightfox", got)
	}
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa) = %q", got)
	}
}
