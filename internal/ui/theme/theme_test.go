package theme

import "testing"

func TestByNameMatchesConfigNames(t *testing.T) {
	for _, name := range []string{"nord", "dracula", "gruvbox", "catppuccin"} {
		if _, ok := ByName(name); !ok {
			t.Errorf("theme %q not available", name)
		}
	}
	if _, ok := ByName("solarized"); ok {
		t.Error("unexpected theme solarized")
	}
}

func TestNextCycles(t *testing.T) {
	defer SetTheme(Nord)

	SetTheme(Nord)
	seen := map[string]bool{}
	for range Available() {
		next := Next()
		seen[next.Name] = true
		SetTheme(next)
	}
	if len(seen) != len(Available()) {
		t.Errorf("cycle visited %d themes, want %d", len(seen), len(Available()))
	}
	if Current.Theme.Name != "nord" {
		t.Errorf("cycle ended on %q, want nord", Current.Theme.Name)
	}
}
