package theme

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#334455", Color{R: 0x33, G: 0x44, B: 0x55}, false},
		{"aaaaaa", Color{R: 0xAA, G: 0xAA, B: 0xAA}, false},
		{"#fff", White, false},
		{"#1234", Color{}, true},
		{"#GGGGGG", Color{}, true},
		{"", Color{}, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColor_HexRoundTrip(t *testing.T) {
	for _, hex := range []string{"#000000", "#FFFFFF", "#334455", "#AAAAAA", "#0A0B0C"} {
		if got := MustParseColor(hex).Hex(); got != hex {
			t.Errorf("Hex() = %s, want %s", got, hex)
		}
	}
}

func TestColor_IsDark(t *testing.T) {
	if !Black.IsDark() {
		t.Error("black should be dark")
	}
	if White.IsDark() {
		t.Error("white should not be dark")
	}
	if !MustParseColor("#1E1E1E").IsDark() {
		t.Error("#1E1E1E should be dark")
	}
}

func TestColor_Blend(t *testing.T) {
	c := MustParseColor("#336699")
	if got := c.Blend(White, 0); got != c {
		t.Errorf("Blend(0) = %v, want %v", got, c)
	}
	if got := c.Blend(White, 1); got != White {
		t.Errorf("Blend(1) = %v, want white", got)
	}
}

func TestParseRGBA(t *testing.T) {
	tests := []struct {
		in        string
		wantColor Color
		wantAlpha float64
		wantErr   bool
	}{
		{"#334455", Color{R: 0x33, G: 0x44, B: 0x55}, 1, false},
		{"#334455FF", Color{R: 0x33, G: 0x44, B: 0x55}, 1, false},
		{"#33445500", Color{R: 0x33, G: 0x44, B: 0x55}, 0, false},
		{"#334455ZZ", Color{}, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseRGBA(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRGBA(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if got.Color != tt.wantColor || got.Alpha != tt.wantAlpha {
			t.Errorf("ParseRGBA(%q) = %v/%v, want %v/%v", tt.in, got.Color, got.Alpha, tt.wantColor, tt.wantAlpha)
		}
	}
}

func TestRGBA_Hex(t *testing.T) {
	c := MustParseColor("#334455")
	if got := c.WithAlpha(1).Hex(); got != "#334455" {
		t.Errorf("opaque Hex() = %s", got)
	}
	if got := c.WithAlpha(0.8).Hex(); got != "#334455CC" {
		t.Errorf("0.8 Hex() = %s, want #334455CC", got)
	}
}

func TestRGBA_WithAlphaComparable(t *testing.T) {
	a := MustParseColor("#334455").WithAlpha(0.8)
	b := MustParseColor("#334455").WithAlpha(0.8)
	if a != b {
		t.Error("equal RGBA values compare unequal")
	}
	if a == MustParseColor("#AAAAAA").WithAlpha(0.8) {
		t.Error("different RGBA values compare equal")
	}
}

func TestRGBA_Over(t *testing.T) {
	c := White.WithAlpha(1)
	if got := c.Over(Black); got != White {
		t.Errorf("opaque Over = %v, want white", got)
	}
	if got := White.WithAlpha(0).Over(Black); got != Black {
		t.Errorf("transparent Over = %v, want black", got)
	}
}

func TestColor_TCell(t *testing.T) {
	c := MustParseColor("#334455")
	r, g, b := c.TCell().RGB()
	if r != 0x33 || g != 0x44 || b != 0x55 {
		t.Errorf("TCell().RGB() = %d,%d,%d", r, g, b)
	}
	if c.TCell()&tcell.ColorIsRGB == 0 {
		t.Error("TCell() is not a true color")
	}
}
