package projector

import (
	"strconv"

	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/theme"
)

// BracketAlpha is the opacity applied to a theme's text color when it is
// used as the bracket highlight color.
const BracketAlpha = 0.8

// Indent is a resolved indentation descriptor.
type Indent struct {
	Type config.IndentType
	// Width is the number of spaces per level. Zero for tab indentation.
	Width int
}

// String returns "tab" or "spaces(n)".
func (i Indent) String() string {
	if i.Type == config.IndentTab {
		return "tab"
	}
	return "spaces(" + strconv.Itoa(i.Width) + ")"
}

// BracketHighlight is a resolved bracket-match highlight.
type BracketHighlight struct {
	Mode config.BracketMode
	// Color is set only for bordered and underline modes.
	Color    theme.RGBA
	HasColor bool
}

// Enabled reports whether matching brackets are highlighted at all.
func (b BracketHighlight) Enabled() bool {
	return b.Mode != "" && b.Mode != config.BracketDisabled
}

// DerivedEditorConfig is the resolved configuration handed to the editing
// widget. Values are comparable; equal inputs produce equal configs.
type DerivedEditorConfig struct {
	Font               config.Font
	Indent             Indent
	Bracket            BracketHighlight
	Theme              theme.Theme
	ColorScheme        theme.Appearance
	TabWidth           int
	LineHeight         float64
	LetterSpacing      float64
	WrapLines          bool
	UseThemeBackground bool
}

// Inputs is everything a DerivedEditorConfig is computed from.
type Inputs struct {
	Snapshot   config.Snapshot
	Theme      theme.Theme
	Appearance theme.Appearance
}

// Compute derives a complete configuration from inputs.
func Compute(in Inputs) DerivedEditorConfig {
	var cfg DerivedEditorConfig
	for f := Field(0); f < FieldCount; f++ {
		derive(f, in, &cfg)
	}
	return cfg
}

// derive recomputes a single field of cfg.
func derive(f Field, in Inputs, cfg *DerivedEditorConfig) {
	s := in.Snapshot
	switch f {
	case FieldFont:
		cfg.Font = s.Font
	case FieldIndent:
		cfg.Indent = resolveIndent(s)
	case FieldBracket:
		cfg.Bracket = resolveBracket(s, in.Theme)
	case FieldColorScheme:
		cfg.ColorScheme = resolveColorScheme(s, in.Theme, in.Appearance)
	case FieldTheme:
		cfg.Theme = in.Theme
	case FieldTabWidth:
		cfg.TabWidth = s.TabWidth
	case FieldLineHeight:
		cfg.LineHeight = s.LineHeightMultiple
	case FieldLetterSpacing:
		cfg.LetterSpacing = s.LetterSpacing
	case FieldWrapLines:
		cfg.WrapLines = s.WrapLines
	case FieldUseThemeBackground:
		cfg.UseThemeBackground = s.UseThemeBackground
	}
}

func resolveIndent(s config.Snapshot) Indent {
	if s.IndentType == config.IndentTab {
		return Indent{Type: config.IndentTab}
	}
	return Indent{Type: config.IndentSpaces, Width: s.IndentSpaceCount}
}

// resolveBracket applies the bracket highlight rules: a disabled mode has no
// highlight; otherwise the custom color wins when its flag is set, else the
// theme text color at BracketAlpha. Flash highlights carry no color.
func resolveBracket(s config.Snapshot, th theme.Theme) BracketHighlight {
	switch s.BracketMode {
	case config.BracketDisabled, "":
		return BracketHighlight{Mode: config.BracketDisabled}
	case config.BracketFlash:
		return BracketHighlight{Mode: config.BracketFlash}
	}

	color := th.Text.WithAlpha(BracketAlpha)
	if s.BracketUseCustomColor {
		if custom, err := theme.ParseRGBA(s.BracketColor); err == nil {
			color = custom
		}
	}
	return BracketHighlight{Mode: s.BracketMode, Color: color, HasColor: true}
}

// resolveColorScheme returns the theme's declared appearance. A theme that
// declares none follows the system appearance when matching is enabled and
// is light otherwise.
func resolveColorScheme(s config.Snapshot, th theme.Theme, system theme.Appearance) theme.Appearance {
	if th.Appearance != theme.AppearanceUnspecified {
		return th.Appearance
	}
	if s.MatchAppearance && system != theme.AppearanceUnspecified {
		return system
	}
	return theme.AppearanceLight
}
