package theme

import (
	"sort"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// Builtins returns a theme for every style in chroma's registry, sorted by
// id.
func Builtins() []Theme {
	names := make([]string, 0, len(styles.Registry))
	for name := range styles.Registry {
		names = append(names, name)
	}
	sort.Strings(names)

	themes := make([]Theme, 0, len(names))
	for _, name := range names {
		themes = append(themes, FromChroma(styles.Registry[name]))
	}
	return themes
}

// Builtin returns the built-in theme with the given id.
func Builtin(id string) (Theme, bool) {
	style, ok := styles.Registry[id]
	if !ok {
		return Theme{}, false
	}
	return FromChroma(style), true
}

// FromChroma derives an editor theme from a chroma syntax style. The
// appearance is inferred from the background.
func FromChroma(style *chroma.Style) Theme {
	fb := Fallback()
	bgEntry := style.Get(chroma.Background)

	t := Theme{
		ID:            style.Name,
		Name:          style.Name,
		Text:          colourOr(style.Get(chroma.Text).Colour, colourOr(bgEntry.Colour, fb.Text)),
		Background:    colourOr(bgEntry.Background, fb.Background),
		LineHighlight: colourOr(style.Get(chroma.LineHighlight).Background, fb.LineHighlight),
		Comments:      colourOr(style.Get(chroma.Comment).Colour, fb.Comments),
	}
	t.Insertion = t.Text
	t.Selection = t.LineHighlight.Blend(t.Text, 0.2)
	t.Appearance = t.InferAppearance()
	return t
}

func colourOr(c chroma.Colour, fallback Color) Color {
	if !c.IsSet() {
		return fallback
	}
	return Color{R: c.Red(), G: c.Green(), B: c.Blue()}
}
