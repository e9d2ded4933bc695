package registry

import (
	"errors"
	"testing"

	"github.com/dshills/editstate/internal/config/layer"
)

func testSettings() []Setting {
	return []Setting{
		{Path: "textEditing.font.name", Type: TypeString, Default: "Menlo"},
		{Path: "textEditing.font.size", Type: TypeFloat, Default: 13},
		{Path: "textEditing.bracketHighlight.highlightType", Type: TypeEnum, Default: "bordered", Enum: []string{"disabled", "bordered"}},
		{Path: "textEditing.bracketHighlight.useCustomColor", Type: TypeBool, Default: false},
		{Path: "theme.selectedTheme", Type: TypeString, Default: "github-dark"},
	}
}

func TestNewWith(t *testing.T) {
	r, err := NewWith(testSettings())
	if err != nil {
		t.Fatalf("NewWith failed: %v", err)
	}

	if !r.Has("textEditing.font.size") {
		t.Error("font.size should be registered")
	}
	if r.Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}
	if got := r.Get("textEditing.font.size").Default; got != 13.0 {
		t.Errorf("font.size default = %v (%T), want normalized 13.0", got, got)
	}

	sections := r.Sections()
	if len(sections) != 2 || sections[0] != "textEditing" || sections[1] != "theme" {
		t.Errorf("Sections() = %v", sections)
	}
}

func TestRegister_Errors(t *testing.T) {
	r := New()
	r.MustRegister(Setting{Path: "a", Type: TypeBool, Default: true})

	if err := r.Register(Setting{Path: "a", Type: TypeBool}); !errors.Is(err, ErrSettingAlreadyRegistered) {
		t.Errorf("duplicate Register error = %v", err)
	}
	if err := r.Register(Setting{Path: "b", Type: TypeString, Pattern: "("}); err == nil {
		t.Error("Register with bad pattern should fail")
	}
	if err := r.Register(Setting{Path: "c", Type: TypeInt, Default: "x"}); err == nil {
		t.Error("Register with invalid default should fail")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRegister duplicate should panic")
		}
	}()
	r.MustRegister(Setting{Path: "a", Type: TypeBool})
}

func TestRegistry_Match(t *testing.T) {
	r, _ := NewWith(testSettings())

	got := r.Match("textEditing.bracketHighlight.*")
	if len(got) != 2 {
		t.Fatalf("Match returned %d settings, want 2", len(got))
	}
	if got[0].Path != "textEditing.bracketHighlight.highlightType" {
		t.Errorf("Match not sorted: %s first", got[0].Path)
	}
	if n := len(r.Match("*.font.*")); n != 2 {
		t.Errorf("Match(*.font.*) = %d, want 2", n)
	}
	if n := len(r.All()); n != 5 {
		t.Errorf("All() = %d, want 5", n)
	}
	if paths := r.Paths(); paths[len(paths)-1] != "theme.selectedTheme" {
		t.Errorf("Paths() = %v", paths)
	}
}

func TestRegistry_Defaults(t *testing.T) {
	r, _ := NewWith(testSettings())
	defaults := r.Defaults()

	if v, _ := layer.GetByPath(defaults, "textEditing.font.name"); v != "Menlo" {
		t.Errorf("font.name default = %v", v)
	}
	if v, _ := layer.GetByPath(defaults, "theme.selectedTheme"); v != "github-dark" {
		t.Errorf("selectedTheme default = %v", v)
	}
}

func TestRegistry_Normalize(t *testing.T) {
	r, _ := NewWith(testSettings())

	if v, err := r.Normalize("textEditing.font.size", int64(15)); err != nil || v != 15.0 {
		t.Errorf("Normalize(font.size) = %v, %v", v, err)
	}
	if v, err := r.Normalize("unknown.key", "anything"); err != nil || v != "anything" {
		t.Errorf("Normalize(unknown) = %v, %v", v, err)
	}
	if err := r.Validate("textEditing.bracketHighlight.highlightType", "flash"); err == nil {
		t.Error("Validate should reject value outside enum")
	}
}
