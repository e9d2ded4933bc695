package config

import (
	"github.com/dshills/editstate/internal/config/registry"
)

// Definitions returns the definition of every built-in setting.
func Definitions() []registry.Setting {
	return []registry.Setting{
		{
			Path:        KeyFontName,
			Type:        registry.TypeString,
			Default:     "SF Mono",
			Description: "Font family used by the editor.",
		},
		{
			Path:        KeyFontSize,
			Type:        registry.TypeFloat,
			Default:     12.0,
			Description: "Font size in points.",
			Minimum:     registry.MinValue(4),
			Maximum:     registry.MaxValue(96),
		},
		{
			Path:        KeyTabWidth,
			Type:        registry.TypeInt,
			Default:     4,
			Description: "Visual width of a tab character, in columns.",
			Minimum:     registry.MinValue(1),
			Maximum:     registry.MaxValue(16),
		},
		{
			Path:        KeyIndentType,
			Type:        registry.TypeEnum,
			Default:     string(IndentSpaces),
			Description: "Insert tabs or spaces when indenting.",
			Enum:        []string{string(IndentSpaces), string(IndentTab)},
		},
		{
			Path:        KeyIndentSpaceCount,
			Type:        registry.TypeInt,
			Default:     4,
			Description: "Number of spaces per indent level.",
			Minimum:     registry.MinValue(1),
			Maximum:     registry.MaxValue(16),
		},
		{
			Path:        KeyLineHeight,
			Type:        registry.TypeFloat,
			Default:     1.2,
			Description: "Line height as a multiple of the font's natural line height.",
			Minimum:     registry.MinValue(0.75),
			Maximum:     registry.MaxValue(3),
		},
		{
			Path:        KeyWrapLines,
			Type:        registry.TypeBool,
			Default:     true,
			Description: "Wrap lines at the editor width.",
		},
		{
			Path:        KeyLetterSpacing,
			Type:        registry.TypeFloat,
			Default:     1.0,
			Description: "Letter spacing as a multiple of the font's advance.",
			Minimum:     registry.MinValue(0.5),
			Maximum:     registry.MaxValue(2),
		},
		{
			Path:        KeyBracketMode,
			Type:        registry.TypeEnum,
			Default:     string(BracketBordered),
			Description: "How matching brackets are highlighted.",
			Enum: []string{
				string(BracketDisabled),
				string(BracketFlash),
				string(BracketBordered),
				string(BracketUnderline),
			},
		},
		{
			Path:        KeyBracketCustomColor,
			Type:        registry.TypeBool,
			Default:     false,
			Description: "Use the custom bracket color instead of the theme text color.",
		},
		{
			Path:        KeyBracketColor,
			Type:        registry.TypeString,
			Default:     "#FFFFFF",
			Description: "Custom bracket highlight color (#RRGGBB or #RRGGBBAA).",
			Pattern:     `^#([0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`,
		},
		{
			Path:        KeyTheme,
			Type:        registry.TypeString,
			Default:     "github-dark",
			Description: "Active theme id.",
		},
		{
			Path:        KeyDarkTheme,
			Type:        registry.TypeString,
			Default:     "github-dark",
			Description: "Theme used when matching a dark system appearance.",
		},
		{
			Path:        KeyLightTheme,
			Type:        registry.TypeString,
			Default:     "github",
			Description: "Theme used when matching a light system appearance.",
		},
		{
			Path:        KeyMatchAppearance,
			Type:        registry.TypeBool,
			Default:     true,
			Description: "Switch between the dark and light theme with the system appearance.",
		},
		{
			Path:        KeyUseThemeBackground,
			Type:        registry.TypeBool,
			Default:     true,
			Description: "Paint the editor with the theme background color.",
		},
		{
			Path:        KeyAutoSaveDelay,
			Type:        registry.TypeInt,
			Default:     250,
			Description: "Quiet period in milliseconds before edits are persisted.",
			Minimum:     registry.MinValue(0),
			Maximum:     registry.MaxValue(60000),
		},
		{
			Path:        KeyLogLevel,
			Type:        registry.TypeEnum,
			Default:     "info",
			Description: "Minimum log level.",
			Enum:        []string{"debug", "info", "warn", "error"},
		},
	}
}

// builtin is the registry of Definitions shared by snapshots.
var builtin = mustRegistry()

func mustRegistry() *registry.Registry {
	r, err := registry.NewWith(Definitions())
	if err != nil {
		panic(err)
	}
	return r
}

// Registry returns the registry of built-in settings.
func Registry() *registry.Registry {
	return builtin
}
