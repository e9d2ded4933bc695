package config

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultSnapshot(t *testing.T) {
	s := DefaultSnapshot()

	if s.Font != (Font{Name: "SF Mono", Size: 12}) {
		t.Errorf("Font = %+v", s.Font)
	}
	if s.TabWidth != 4 || s.IndentType != IndentSpaces || s.IndentSpaceCount != 4 {
		t.Errorf("indent defaults = %d %s %d", s.TabWidth, s.IndentType, s.IndentSpaceCount)
	}
	if s.BracketMode != BracketBordered || s.BracketUseCustomColor {
		t.Errorf("bracket defaults = %s %v", s.BracketMode, s.BracketUseCustomColor)
	}
	if !s.MatchAppearance || s.DarkTheme != "github-dark" || s.LightTheme != "github" {
		t.Errorf("theme defaults = %+v", s)
	}
	if s.AutoSaveDelay != 250*time.Millisecond {
		t.Errorf("AutoSaveDelay = %v, want 250ms", s.AutoSaveDelay)
	}
}

func TestSnapshot_Apply(t *testing.T) {
	tests := []struct {
		key     string
		value   any
		changed bool
		check   func(Snapshot) bool
	}{
		{KeyFontName, "Menlo", true, func(s Snapshot) bool { return s.Font.Name == "Menlo" }},
		{KeyFontSize, int64(14), true, func(s Snapshot) bool { return s.Font.Size == 14 }},
		{KeyFontSize, 12.0, false, nil},
		{KeyIndentType, "tab", true, func(s Snapshot) bool { return s.IndentType == IndentTab }},
		{KeyBracketMode, "underline", true, func(s Snapshot) bool { return s.BracketMode == BracketUnderline }},
		{KeyBracketColor, "#334455CC", true, func(s Snapshot) bool { return s.BracketColor == "#334455CC" }},
		{KeyAutoSaveDelay, 1000, true, func(s Snapshot) bool { return s.AutoSaveDelay == time.Second }},
		{KeyUseThemeBackground, false, true, func(s Snapshot) bool { return !s.UseThemeBackground }},
		{KeyLogLevel, "debug", false, nil},
		{"unknown.key", 1, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := DefaultSnapshot()
			changed, err := s.Apply(tt.key, tt.value)
			if err != nil {
				t.Fatalf("Apply error = %v", err)
			}
			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
			if tt.check != nil && !tt.check(s) {
				t.Errorf("snapshot after Apply = %+v", s)
			}
		})
	}
}

func TestSnapshot_ApplyInvalidKeepsValue(t *testing.T) {
	s := DefaultSnapshot()
	before := s

	if _, err := s.Apply(KeyBracketColor, "red"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Apply(red) error = %v", err)
	}
	if _, err := s.Apply(KeyTabWidth, "4"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Apply(\"4\") error = %v", err)
	}
	if s != before {
		t.Error("invalid Apply modified the snapshot")
	}
}

func TestSnapshot_ValueRoundTrip(t *testing.T) {
	s := DefaultSnapshot()
	for _, def := range Registry().All() {
		v, ok := s.Value(def.Path)
		if def.Path == KeyLogLevel {
			if ok {
				t.Error("log level is not a snapshot field")
			}
			continue
		}
		if !ok {
			t.Errorf("Value(%s) missing", def.Path)
			continue
		}
		if v != def.Default {
			t.Errorf("Value(%s) = %v (%T), want default %v (%T)", def.Path, v, v, def.Default, def.Default)
		}
		if !Known(def.Path) {
			t.Errorf("Known(%s) = false", def.Path)
		}
	}
	if Known("nope") {
		t.Error("Known(nope) = true")
	}
}

func TestSnapshotOf(t *testing.T) {
	s, errs := SnapshotOf(map[string]any{
		"textEditing": map[string]any{
			"defaultTabWidth": int64(2),
			"letterSpacing":   "wide",
		},
	})
	if s.TabWidth != 2 {
		t.Errorf("TabWidth = %d, want 2", s.TabWidth)
	}
	if s.LetterSpacing != DefaultSnapshot().LetterSpacing {
		t.Errorf("LetterSpacing = %v, want default", s.LetterSpacing)
	}
	if len(errs) != 1 {
		t.Errorf("errs = %v, want 1", errs)
	}
}

func TestMigrateKeys(t *testing.T) {
	data := map[string]any{
		"editor": map[string]any{"fontFamily": "Fira Code", "tabSize": int64(8)},
		"textEditing": map[string]any{
			"font":            map[string]any{"family": "Hack"},
			"defaultTabWidth": int64(2),
		},
	}

	found := migrateKeys(data)
	if len(found) != 3 {
		t.Errorf("found = %v, want 3 retired keys", found)
	}

	s, _ := SnapshotOf(data)
	if s.Font.Name != "Fira Code" {
		t.Errorf("Font.Name = %q, want first retired key in sorted order", s.Font.Name)
	}
	if s.TabWidth != 2 {
		t.Errorf("TabWidth = %d; current key must win over retired", s.TabWidth)
	}
	if _, ok := data["editor"]; ok {
		t.Error("empty editor section should be pruned")
	}
}
