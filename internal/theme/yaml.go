package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ThemeExt is the file extension of theme files.
const ThemeExt = ".yaml"

// themeFile is the on-disk form of a theme.
//
//	id: solarized-dark
//	name: Solarized Dark
//	appearance: dark
//	colors:
//	  text: "#839496"
//	  background: "#002B36"
type themeFile struct {
	ID         string     `yaml:"id"`
	Name       string     `yaml:"name,omitempty"`
	Appearance string     `yaml:"appearance,omitempty"`
	Colors     fileColors `yaml:"colors"`
}

type fileColors struct {
	Text          string `yaml:"text"`
	Background    string `yaml:"background"`
	Insertion     string `yaml:"insertion,omitempty"`
	LineHighlight string `yaml:"lineHighlight,omitempty"`
	Selection     string `yaml:"selection,omitempty"`
	Comments      string `yaml:"comments,omitempty"`
}

// ParseYAML decodes a theme from YAML. The id defaults to defaultID when the
// document has none. Colors missing from the document are derived from the
// text and background colors; an undeclared appearance is inferred from the
// background.
func ParseYAML(data []byte, defaultID string) (Theme, error) {
	var f themeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if f.ID == "" {
		f.ID = defaultID
	}

	t := Theme{ID: f.ID, Name: f.Name}
	appearance, err := ParseAppearance(f.Appearance)
	if err != nil {
		return Theme{}, fmt.Errorf("%w: %s: %v", ErrInvalidTheme, f.ID, err)
	}

	required := []struct {
		name string
		hex  string
		dst  *Color
	}{
		{"text", f.Colors.Text, &t.Text},
		{"background", f.Colors.Background, &t.Background},
	}
	for _, c := range required {
		if c.hex == "" {
			return Theme{}, fmt.Errorf("%w: %s: missing %s color", ErrInvalidTheme, f.ID, c.name)
		}
		if *c.dst, err = ParseColor(c.hex); err != nil {
			return Theme{}, fmt.Errorf("%w: %s: %s: %v", ErrInvalidTheme, f.ID, c.name, err)
		}
	}

	optional := []struct {
		name     string
		hex      string
		dst      *Color
		fallback Color
	}{
		{"insertion", f.Colors.Insertion, &t.Insertion, t.Text},
		{"lineHighlight", f.Colors.LineHighlight, &t.LineHighlight, t.Background.Blend(t.Text, 0.08)},
		{"selection", f.Colors.Selection, &t.Selection, t.Background.Blend(t.Text, 0.25)},
		{"comments", f.Colors.Comments, &t.Comments, t.Background.Blend(t.Text, 0.5)},
	}
	for _, c := range optional {
		if c.hex == "" {
			*c.dst = c.fallback
			continue
		}
		if *c.dst, err = ParseColor(c.hex); err != nil {
			return Theme{}, fmt.Errorf("%w: %s: %s: %v", ErrInvalidTheme, f.ID, c.name, err)
		}
	}

	t.Appearance = appearance
	if t.Appearance == AppearanceUnspecified {
		t.Appearance = t.InferAppearance()
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// MarshalYAML encodes a theme in the theme file format.
func MarshalYAML(t Theme) ([]byte, error) {
	f := themeFile{
		ID:   t.ID,
		Name: t.Name,
		Colors: fileColors{
			Text:          t.Text.Hex(),
			Background:    t.Background.Hex(),
			Insertion:     t.Insertion.Hex(),
			LineHighlight: t.LineHighlight.Hex(),
			Selection:     t.Selection.Hex(),
			Comments:      t.Comments.Hex(),
		},
	}
	if t.Appearance != AppearanceUnspecified {
		f.Appearance = t.Appearance.String()
	}
	return yaml.Marshal(&f)
}

// LoadFile reads a theme file. The file's base name is the default id.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	t, err := ParseYAML(data, IDForPath(path))
	if err != nil {
		return Theme{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// IDForPath returns the default theme id for a theme file path.
func IDForPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
