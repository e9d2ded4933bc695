package theme

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque 24-bit color. The zero value is black.
type Color struct {
	R, G, B uint8
}

// Common colors.
var (
	Black = Color{R: 0, G: 0, B: 0}
	White = Color{R: 255, G: 255, B: 255}
)

// ParseColor parses a hex color.
// Supports formats: "#RGB", "#RRGGBB", "RGB", "RRGGBB".
func ParseColor(hex string) (Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 3 && len(s) != 6 {
		return Color{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
	c, err := colorful.Hex("#" + s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %q", hex)
	}
	return fromColorful(c), nil
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(hex string) Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Colorful returns the color in go-colorful's representation.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Hex returns the color as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// String returns the hex form of the color.
func (c Color) String() string {
	return c.Hex()
}

// Lightness returns the perceptual lightness (CIE L*) in [0, 1].
func (c Color) Lightness() float64 {
	l, _, _ := c.Colorful().Lab()
	return l
}

// IsDark reports whether the color reads as dark.
func (c Color) IsDark() bool {
	return c.Lightness() < 0.5
}

// Blend mixes c toward other by t in [0, 1], interpolating in Lab space.
func (c Color) Blend(other Color, t float64) Color {
	switch {
	case t <= 0:
		return c
	case t >= 1:
		return other
	}
	return fromColorful(c.Colorful().BlendLab(other.Colorful(), clamp01(t)))
}

// WithAlpha returns c with the given opacity.
func (c Color) WithAlpha(alpha float64) RGBA {
	return RGBA{Color: c, Alpha: clamp01(alpha)}
}

// TCell converts the color to a terminal true color.
func (c Color) TCell() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// RGBA is a color with an opacity in [0, 1]. RGBA values are comparable.
type RGBA struct {
	Color
	Alpha float64
}

// ParseRGBA parses "#RRGGBB" (fully opaque) or "#RRGGBBAA".
func ParseRGBA(hex string) (RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 8 {
		c, err := ParseColor(hex)
		if err != nil {
			return RGBA{}, err
		}
		return c.WithAlpha(1), nil
	}

	c, err := ParseColor(s[:6])
	if err != nil {
		return RGBA{}, err
	}
	a, err := strconv.ParseUint(s[6:], 16, 8)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid alpha in %q", hex)
	}
	return c.WithAlpha(float64(a) / 255), nil
}

// Hex returns "#RRGGBB" for opaque colors and "#RRGGBBAA" otherwise.
func (c RGBA) Hex() string {
	if c.Alpha >= 1 {
		return c.Color.Hex()
	}
	return fmt.Sprintf("%s%02X", c.Color.Hex(), uint8(math.Round(c.Alpha*255)))
}

// String returns the hex form of the color.
func (c RGBA) String() string {
	return c.Hex()
}

// Over composites c over an opaque background.
func (c RGBA) Over(bg Color) Color {
	return fromColorful(bg.Colorful().BlendRgb(c.Color.Colorful(), c.Alpha))
}

// TCell converts the color to a terminal color by compositing it over bg.
// Terminals have no alpha channel.
func (c RGBA) TCell(bg Color) tcell.Color {
	return c.Over(bg).TCell()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
