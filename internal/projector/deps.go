package projector

import "github.com/dshills/editstate/internal/config"

// Field identifies one field of DerivedEditorConfig.
type Field uint8

const (
	FieldFont Field = iota
	FieldIndent
	FieldBracket
	FieldColorScheme
	FieldTheme
	FieldTabWidth
	FieldLineHeight
	FieldLetterSpacing
	FieldWrapLines
	FieldUseThemeBackground

	// FieldCount is the number of fields.
	FieldCount
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldFont:
		return "font"
	case FieldIndent:
		return "indent"
	case FieldBracket:
		return "bracketHighlight"
	case FieldColorScheme:
		return "colorScheme"
	case FieldTheme:
		return "theme"
	case FieldTabWidth:
		return "tabWidth"
	case FieldLineHeight:
		return "lineHeight"
	case FieldLetterSpacing:
		return "letterSpacing"
	case FieldWrapLines:
		return "wrapLines"
	case FieldUseThemeBackground:
		return "useThemeBackground"
	default:
		return "unknown"
	}
}

// Inputs that are not settings keys.
const (
	// InputTheme changes when the resolved active theme value changes,
	// whether through selection or an edit of the theme itself.
	InputTheme = "@theme"
	// InputAppearance changes with the system appearance.
	InputAppearance = "@appearance"
)

// dependencies declares the inputs of every derived field. A field is
// recomputed only when one of its inputs changed.
var dependencies = [FieldCount][]string{
	FieldFont:               {config.KeyFontName, config.KeyFontSize},
	FieldIndent:             {config.KeyIndentType, config.KeyIndentSpaceCount},
	FieldBracket:            {config.KeyBracketMode, config.KeyBracketCustomColor, config.KeyBracketColor, InputTheme},
	FieldColorScheme:        {InputTheme, config.KeyMatchAppearance, InputAppearance},
	FieldTheme:              {InputTheme},
	FieldTabWidth:           {config.KeyTabWidth},
	FieldLineHeight:         {config.KeyLineHeight},
	FieldLetterSpacing:      {config.KeyLetterSpacing},
	FieldWrapLines:          {config.KeyWrapLines},
	FieldUseThemeBackground: {config.KeyUseThemeBackground},
}

// themeSelectors are the settings that decide which theme is active.
var themeSelectors = []string{
	config.KeyTheme,
	config.KeyDarkTheme,
	config.KeyLightTheme,
	config.KeyMatchAppearance,
}

// dependents maps each input to the fields that read it.
var dependents = func() map[string][]Field {
	m := make(map[string][]Field)
	for f, inputs := range dependencies {
		for _, in := range inputs {
			m[in] = append(m[in], Field(f))
		}
	}
	return m
}()

// tracked reports whether a settings key affects any derived field, either
// directly or through theme selection.
func tracked(key string) bool {
	if _, ok := dependents[key]; ok {
		return true
	}
	for _, k := range themeSelectors {
		if k == key {
			return true
		}
	}
	return false
}

// Dependencies returns the declared inputs of f.
func Dependencies(f Field) []string {
	if f >= FieldCount {
		return nil
	}
	out := make([]string, len(dependencies[f]))
	copy(out, dependencies[f])
	return out
}

// affected returns the fields whose inputs intersect changed, in field
// order.
func affected(changed map[string]bool) []Field {
	var mark [FieldCount]bool
	for in := range changed {
		for _, f := range dependents[in] {
			mark[f] = true
		}
	}
	var out []Field
	for f := Field(0); f < FieldCount; f++ {
		if mark[f] {
			out = append(out, f)
		}
	}
	return out
}
