package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/editstate/internal/config/layer"
)

func TestTOMLLoader_Load(t *testing.T) {
	memfs := newMemFS()
	memfs.add("/settings.toml", `
[textEditing]
defaultTabWidth = 2
wrapLinesToEditorWidth = false

[textEditing.font]
name = "Menlo"
size = 13.5

[theme]
selectedTheme = "dracula"
`)

	settings, err := NewTOMLLoaderWithFS(memfs, "/settings.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"textEditing.defaultTabWidth", int64(2)},
		{"textEditing.wrapLinesToEditorWidth", false},
		{"textEditing.font.name", "Menlo"},
		{"textEditing.font.size", 13.5},
		{"theme.selectedTheme", "dracula"},
	}
	for _, tt := range tests {
		got, ok := layer.GetByPath(settings, tt.path)
		if !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, got, got, tt.want)
		}
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	settings, err := NewTOMLLoaderWithFS(newMemFS(), "/nope.toml").Load()
	if err != nil {
		t.Fatalf("Load of missing file returned error: %v", err)
	}
	if settings != nil {
		t.Errorf("Load of missing file = %v, want nil", settings)
	}
}

func TestTOMLLoader_ParseErrorPosition(t *testing.T) {
	memfs := newMemFS()
	memfs.add("/bad.toml", "[textEditing]\ndefaultTabWidth = = 4\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
	if !strings.Contains(perr.Error(), "/bad.toml") {
		t.Errorf("Error() = %q, should name the file", perr.Error())
	}
}

func TestTOMLLoader_Includes(t *testing.T) {
	memfs := newMemFS()
	memfs.add("/cfg/base.toml", `
[textEditing]
defaultTabWidth = 8
letterSpacing = 1.0
`)
	memfs.add("/cfg/settings.toml", `
"@include" = "base.toml"

[textEditing]
defaultTabWidth = 4
`)

	settings, err := NewTOMLLoaderWithFS(memfs, "/cfg/settings.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, _ := layer.GetByPath(settings, "textEditing.defaultTabWidth"); v != int64(4) {
		t.Errorf("defaultTabWidth = %v, want 4 (including file wins)", v)
	}
	if v, _ := layer.GetByPath(settings, "textEditing.letterSpacing"); v != 1.0 {
		t.Errorf("letterSpacing = %v, want 1.0 from include", v)
	}
	if _, ok := settings["@include"]; ok {
		t.Error("@include key should be removed")
	}
}

func TestTOMLLoader_IncludeCycle(t *testing.T) {
	memfs := newMemFS()
	memfs.add("/a.toml", `"@include" = "b.toml"`)
	memfs.add("/b.toml", `"@include" = "a.toml"`)

	if _, err := NewTOMLLoaderWithFS(memfs, "/a.toml").Load(); err == nil {
		t.Error("include cycle should fail")
	}
}

func TestTOMLLoader_Save(t *testing.T) {
	memfs := newMemFS()
	memfs.add("/settings.toml", `
[textEditing]
defaultTabWidth = 4
letterSpacing = 1.0
`)
	l := NewTOMLLoaderWithFS(memfs, "/settings.toml")

	err := l.Save(map[string]any{
		"textEditing.font.size":     14,
		"textEditing.letterSpacing": nil,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	settings, err := l.Load()
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}
	if v, _ := layer.GetByPath(settings, "textEditing.font.size"); v != int64(14) {
		t.Errorf("font.size = %v, want 14", v)
	}
	if v, _ := layer.GetByPath(settings, "textEditing.defaultTabWidth"); v != int64(4) {
		t.Errorf("defaultTabWidth = %v, want 4 (kept)", v)
	}
	if _, ok := layer.GetByPath(settings, "textEditing.letterSpacing"); ok {
		t.Error("letterSpacing should be removed")
	}
}

func TestForPath(t *testing.T) {
	memfs := newMemFS()

	if l, err := ForPath(memfs, "/x/settings.toml"); err != nil {
		t.Errorf("ForPath(toml) error = %v", err)
	} else if _, ok := l.(*TOMLLoader); !ok {
		t.Errorf("ForPath(toml) = %T", l)
	}
	if l, err := ForPath(memfs, "/x/settings.JSON"); err != nil {
		t.Errorf("ForPath(json) error = %v", err)
	} else if _, ok := l.(*JSONLoader); !ok {
		t.Errorf("ForPath(json) = %T", l)
	}
	if _, err := ForPath(memfs, "/x/settings.ini"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ForPath(ini) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFindSettings(t *testing.T) {
	memfs := newMemFS()
	if _, ok := FindSettings(memfs, "/dir"); ok {
		t.Error("FindSettings on empty dir should report false")
	}

	memfs.add("/dir/settings.json", "{}")
	if p, ok := FindSettings(memfs, "/dir"); !ok || p != "/dir/settings.json" {
		t.Errorf("FindSettings = %q, %v", p, ok)
	}

	memfs.add("/dir/settings.toml", "")
	if p, _ := FindSettings(memfs, "/dir"); p != "/dir/settings.toml" {
		t.Errorf("FindSettings = %q, want settings.toml to win", p)
	}
}
