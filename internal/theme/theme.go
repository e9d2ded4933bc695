// Package theme provides editor color themes.
//
// A Theme is a comparable value: two themes with the same colors are equal,
// so consumers can detect real changes with ==. Themes come from three
// places: the built-in set derived from chroma's style registry, YAML theme
// files, and themes registered programmatically.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by theme operations.
var (
	ErrThemeNotFound = errors.New("theme not found")
	ErrInvalidTheme  = errors.New("invalid theme")
)

// Appearance is the light/dark classification of a theme or of the system.
type Appearance int

const (
	// AppearanceUnspecified means no appearance is declared or known.
	AppearanceUnspecified Appearance = iota
	// AppearanceDark is a dark background with light text.
	AppearanceDark
	// AppearanceLight is a light background with dark text.
	AppearanceLight
)

// String returns the appearance name.
func (a Appearance) String() string {
	switch a {
	case AppearanceDark:
		return "dark"
	case AppearanceLight:
		return "light"
	default:
		return "unspecified"
	}
}

// ParseAppearance parses "dark", "light" or "" (unspecified).
func ParseAppearance(s string) (Appearance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark":
		return AppearanceDark, nil
	case "light":
		return AppearanceLight, nil
	case "", "unspecified", "auto":
		return AppearanceUnspecified, nil
	default:
		return AppearanceUnspecified, fmt.Errorf("unknown appearance %q", s)
	}
}

// Theme is an editor color theme.
type Theme struct {
	ID         string
	Name       string
	Appearance Appearance

	Text          Color
	Background    Color
	Insertion     Color
	LineHighlight Color
	Selection     Color
	Comments      Color
}

// Validate checks the theme is usable.
func (t Theme) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidTheme)
	}
	return nil
}

// DisplayName returns the theme's name, falling back to its id.
func (t Theme) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// InferAppearance classifies the theme from its background lightness.
func (t Theme) InferAppearance() Appearance {
	if t.Background.IsDark() {
		return AppearanceDark
	}
	return AppearanceLight
}

// Fallback returns the theme used when a requested theme does not exist.
func Fallback() Theme {
	return Theme{
		ID:            "default",
		Name:          "Default",
		Appearance:    AppearanceUnspecified,
		Text:          MustParseColor("#D4D4D4"),
		Background:    MustParseColor("#1E1E1E"),
		Insertion:     MustParseColor("#AEAFAD"),
		LineHighlight: MustParseColor("#2A2D2E"),
		Selection:     MustParseColor("#264F78"),
		Comments:      MustParseColor("#6A9955"),
	}
}
