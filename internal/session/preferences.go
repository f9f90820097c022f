package session

import (
	"context"

	"github.com/abrezinsky/partyvote/internal/storage"
)

// KeyTheme is the durable theme preference key
const KeyTheme = "theme"

// Theme is the UI colour scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// Toggle returns the other theme
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Preferences reads and writes settings that outlive a session
type Preferences struct {
	scope storage.Scope
	def   Theme
}

// NewPreferences creates preferences backed by scope.
// def is used when no theme is stored; an invalid def falls back to dark.
func NewPreferences(scope storage.Scope, def Theme) *Preferences {
	if !def.Valid() {
		def = ThemeDark
	}
	return &Preferences{scope: scope, def: def}
}

// Theme returns the stored theme, or the default
func (p *Preferences) Theme(ctx context.Context) (Theme, error) {
	value, ok, err := p.scope.GetItem(ctx, KeyTheme)
	if err != nil {
		return p.def, err
	}
	if !ok || !Theme(value).Valid() {
		return p.def, nil
	}
	return Theme(value), nil
}

// SetTheme stores t
func (p *Preferences) SetTheme(ctx context.Context, t Theme) error {
	if !t.Valid() {
		t = p.def
	}
	return p.scope.SetItem(ctx, KeyTheme, string(t))
}

// ToggleTheme flips the stored theme and returns the new one
func (p *Preferences) ToggleTheme(ctx context.Context) (Theme, error) {
	current, err := p.Theme(ctx)
	if err != nil {
		return current, err
	}
	next := current.Toggle()
	return next, p.SetTheme(ctx, next)
}
