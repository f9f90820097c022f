package session

import (
	"context"
	"testing"

	"github.com/abrezinsky/partyvote/internal/storage"
)

func newTestLocal(t *testing.T) *storage.LocalScope {
	t.Helper()
	repo, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo.Local()
}

func TestPreferences_DefaultTheme(t *testing.T) {
	tests := []struct {
		name string
		def  Theme
		want Theme
	}{
		{"dark default", ThemeDark, ThemeDark},
		{"light default", ThemeLight, ThemeLight},
		{"invalid default", Theme("neon"), ThemeDark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPreferences(newTestLocal(t), tt.def).Theme(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPreferences_ToggleTheme(t *testing.T) {
	local := newTestLocal(t)
	ctx := context.Background()
	prefs := NewPreferences(local, ThemeDark)

	next, err := prefs.ToggleTheme(ctx)
	if err != nil {
		t.Fatalf("ToggleTheme failed: %v", err)
	}
	if next != ThemeLight {
		t.Errorf("expected light, got %s", next)
	}

	// The preference is durable: a fresh Preferences sees it
	got, _ := NewPreferences(local, ThemeDark).Theme(ctx)
	if got != ThemeLight {
		t.Errorf("expected stored light theme, got %s", got)
	}

	next, _ = prefs.ToggleTheme(ctx)
	if next != ThemeDark {
		t.Errorf("expected dark after second toggle, got %s", next)
	}
}

func TestPreferences_InvalidStoredTheme(t *testing.T) {
	local := newTestLocal(t)
	ctx := context.Background()
	local.SetItem(ctx, KeyTheme, "sepia")

	got, err := NewPreferences(local, ThemeLight).Theme(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ThemeLight {
		t.Errorf("expected default for unknown stored theme, got %s", got)
	}
}

func TestPreferences_SetInvalidThemeStoresDefault(t *testing.T) {
	local := newTestLocal(t)
	ctx := context.Background()
	prefs := NewPreferences(local, ThemeDark)

	if err := prefs.SetTheme(ctx, Theme("")); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	value, _, _ := local.GetItem(ctx, KeyTheme)
	if value != string(ThemeDark) {
		t.Errorf("expected default to be stored, got %q", value)
	}
}
