package projector

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/logging"
	"github.com/dshills/editstate/internal/theme"
)

// themeMap is a ThemeSource backed by a map.
type themeMap map[string]theme.Theme

func (m themeMap) Get(id string) (theme.Theme, bool) {
	t, ok := m[id]
	return t, ok
}

func testThemes() themeMap {
	return themeMap{
		"grey": {
			ID: "grey", Appearance: theme.AppearanceDark,
			Text: theme.MustParseColor("#AAAAAA"), Background: theme.MustParseColor("#111111"),
		},
		"harbor": {
			ID: "harbor", Appearance: theme.AppearanceDark,
			Text: theme.MustParseColor("#334455"), Background: theme.MustParseColor("#0B0C0D"),
		},
		"day": {
			ID: "day", Appearance: theme.AppearanceLight,
			Text: theme.MustParseColor("#222222"), Background: theme.MustParseColor("#FAFAFA"),
		},
		"night": {
			ID: "night", Appearance: theme.AppearanceDark,
			Text: theme.MustParseColor("#DDDDDD"), Background: theme.MustParseColor("#101010"),
		},
		"plain": {
			ID: "plain",
			Text: theme.MustParseColor("#808080"), Background: theme.MustParseColor("#404040"),
		},
	}
}

func testSnapshot() config.Snapshot {
	s := config.DefaultSnapshot()
	s.Theme = "grey"
	s.DarkTheme = "night"
	s.LightTheme = "day"
	s.BracketMode = config.BracketBordered
	s.BracketUseCustomColor = false
	return s
}

func newTestProjector(opts ...Option) *Projector {
	opts = append([]Option{WithSnapshot(testSnapshot()), WithLogger(logging.Null)}, opts...)
	return New(testThemes(), opts...)
}

func TestProjector_InitialConfig(t *testing.T) {
	p := newTestProjector()
	cfg := p.Current()

	if cfg.Theme.ID != "grey" {
		t.Errorf("Theme = %s, want grey", cfg.Theme.ID)
	}
	want := theme.MustParseColor("#AAAAAA").WithAlpha(BracketAlpha)
	if !cfg.Bracket.HasColor || cfg.Bracket.Color != want {
		t.Errorf("Bracket = %+v, want %v", cfg.Bracket, want)
	}
	if cfg.ColorScheme != theme.AppearanceDark {
		t.Errorf("ColorScheme = %v, want dark", cfg.ColorScheme)
	}
	if p.Generation() != 0 {
		t.Errorf("Generation() = %d, want 0", p.Generation())
	}
}

func TestProjector_ThemeChangeRecolorsBrackets(t *testing.T) {
	p := newTestProjector()

	var published []DerivedEditorConfig
	p.Subscribe(func(cfg DerivedEditorConfig) { published = append(published, cfg) })

	p.HandleChange(config.KeyTheme, "harbor")

	if len(published) != 1 {
		t.Fatalf("published %d configs, want 1", len(published))
	}
	got := published[0].Bracket
	want := theme.MustParseColor("#334455").WithAlpha(0.8)
	if got.Mode != config.BracketBordered || got.Color != want {
		t.Errorf("Bracket = %+v, want bordered %v", got, want)
	}
	if got.Color.Hex() != "#334455CC" {
		t.Errorf("Bracket color hex = %s", got.Color.Hex())
	}

	st := p.Stats()
	if st.Recomputed[FieldBracket] != 1 {
		t.Errorf("bracket recomputed %d times, want 1", st.Recomputed[FieldBracket])
	}
	if st.Recomputed[FieldFont] != 0 || st.Recomputed[FieldIndent] != 0 {
		t.Errorf("unrelated fields recomputed: %+v", st.Recomputed)
	}
}

func TestProjector_CustomColorTakesPrecedence(t *testing.T) {
	p := newTestProjector()
	p.Apply(
		Change{config.KeyBracketCustomColor, true},
		Change{config.KeyBracketColor, "#FF000080"},
	)
	p.HandleChange(config.KeyTheme, "harbor")

	got := p.Current().Bracket.Color
	want, _ := theme.ParseRGBA("#FF000080")
	if got != want {
		t.Errorf("Bracket color = %v, want custom %v", got, want)
	}
}

func TestProjector_BracketModes(t *testing.T) {
	tests := []struct {
		mode     config.BracketMode
		enabled  bool
		hasColor bool
	}{
		{config.BracketDisabled, false, false},
		{config.BracketFlash, true, false},
		{config.BracketBordered, true, true},
		{config.BracketUnderline, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			p := newTestProjector()
			p.HandleChange(config.KeyBracketMode, string(tt.mode))
			b := p.Current().Bracket
			if b.Mode != tt.mode || b.Enabled() != tt.enabled || b.HasColor != tt.hasColor {
				t.Errorf("Bracket = %+v", b)
			}
		})
	}
}

func TestProjector_IgnoresUnrelatedKeys(t *testing.T) {
	p := newTestProjector()

	var count int
	p.Subscribe(func(DerivedEditorConfig) { count++ })

	p.HandleChange(config.KeyAutoSaveDelay, 1000)
	p.HandleChange("git.defaultBranch", "main")

	st := p.Stats()
	if st.Ignored != 2 || st.Passes != 0 {
		t.Errorf("Ignored = %d, Passes = %d", st.Ignored, st.Passes)
	}
	if count != 0 {
		t.Errorf("published %d configs for unrelated keys", count)
	}
}

func TestProjector_OnlyDependentFieldsRecomputed(t *testing.T) {
	p := newTestProjector()
	p.HandleChange(config.KeyTabWidth, 2)

	st := p.Stats()
	for f := Field(0); f < FieldCount; f++ {
		want := uint64(0)
		if f == FieldTabWidth {
			want = 1
		}
		if st.Recomputed[f] != want {
			t.Errorf("%s recomputed %d times, want %d", f, st.Recomputed[f], want)
		}
	}
	if p.Current().TabWidth != 2 {
		t.Errorf("TabWidth = %d, want 2", p.Current().TabWidth)
	}
}

func TestProjector_UnchangedValueIsNoOp(t *testing.T) {
	p := newTestProjector()
	p.HandleChange(config.KeyTabWidth, p.Current().TabWidth)

	if st := p.Stats(); st.Passes != 0 {
		t.Errorf("Passes = %d for an unchanged value", st.Passes)
	}
}

func TestProjector_InvalidValueKeepsPrevious(t *testing.T) {
	p := newTestProjector()
	before := p.Current()

	p.HandleChange(config.KeyTabWidth, "wide")
	p.HandleChange(config.KeyBracketMode, "sparkle")

	if p.Current() != before {
		t.Error("invalid values changed the config")
	}
	if st := p.Stats(); st.Invalid != 2 {
		t.Errorf("Invalid = %d, want 2", st.Invalid)
	}
}

func TestProjector_IndentResolution(t *testing.T) {
	p := newTestProjector()
	p.Apply(Change{config.KeyIndentType, "spaces"}, Change{config.KeyIndentSpaceCount, 2})
	if got := p.Current().Indent; got != (Indent{Type: config.IndentSpaces, Width: 2}) {
		t.Errorf("Indent = %v", got)
	}

	p.HandleChange(config.KeyIndentType, "tab")
	if got := p.Current().Indent; got.String() != "tab" {
		t.Errorf("Indent = %v, want tab", got)
	}
}

func TestProjector_AppearanceChangeSinglePass(t *testing.T) {
	var selected []string
	p := newTestProjector(
		WithAppearance(theme.AppearanceLight),
		WithThemeSelector(func(id string) { selected = append(selected, id) }),
	)
	p.HandleChange(config.KeyTheme, "day")
	before := p.Stats()

	var published []DerivedEditorConfig
	p.Subscribe(func(cfg DerivedEditorConfig) { published = append(published, cfg) })

	p.SystemAppearanceChanged(theme.AppearanceDark)

	after := p.Stats()
	if after.Passes-before.Passes != 1 {
		t.Errorf("passes = %d, want 1", after.Passes-before.Passes)
	}
	for _, f := range []Field{FieldBracket, FieldColorScheme, FieldTheme} {
		if n := after.Recomputed[f] - before.Recomputed[f]; n != 1 {
			t.Errorf("%s recomputed %d times, want 1", f, n)
		}
	}
	if len(published) != 1 {
		t.Fatalf("published %d configs, want 1", len(published))
	}
	cfg := published[0]
	if cfg.Theme.ID != "night" || cfg.ColorScheme != theme.AppearanceDark {
		t.Errorf("theme = %s, scheme = %v", cfg.Theme.ID, cfg.ColorScheme)
	}
	if len(selected) != 1 || selected[0] != "night" {
		t.Errorf("selector calls = %v, want [night]", selected)
	}

	// The store echoing the selection back must not cause another pass.
	p.HandleChange(config.KeyTheme, "night")
	if p.Stats().Passes != after.Passes {
		t.Error("echoed theme selection triggered a pass")
	}
}

func TestProjector_AppearanceWithoutMatching(t *testing.T) {
	p := newTestProjector(WithAppearance(theme.AppearanceLight))
	p.HandleChange(config.KeyMatchAppearance, false)

	p.SystemAppearanceChanged(theme.AppearanceDark)
	if got := p.Current().Theme.ID; got != "grey" {
		t.Errorf("Theme = %s, want grey", got)
	}
}

func TestProjector_ColorSchemeRule(t *testing.T) {
	tests := []struct {
		name   string
		theme  string
		match  bool
		system theme.Appearance
		want   theme.Appearance
	}{
		{"declared dark", "grey", true, theme.AppearanceLight, theme.AppearanceDark},
		{"declared light", "day", false, theme.AppearanceDark, theme.AppearanceLight},
		{"undeclared follows system", "plain", true, theme.AppearanceDark, theme.AppearanceDark},
		{"undeclared without matching", "plain", false, theme.AppearanceDark, theme.AppearanceLight},
		{"undeclared unknown system", "plain", true, theme.AppearanceUnspecified, theme.AppearanceLight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSnapshot()
			s.Theme = tt.theme
			s.MatchAppearance = tt.match
			s.DarkTheme, s.LightTheme = "", ""
			p := New(testThemes(), WithSnapshot(s), WithAppearance(tt.system), WithLogger(logging.Null))
			if got := p.Current().ColorScheme; got != tt.want {
				t.Errorf("ColorScheme = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjector_ThemeUpdated(t *testing.T) {
	themes := testThemes()
	s := testSnapshot()
	p := New(themes, WithSnapshot(s), WithLogger(logging.Null))

	edited := themes["grey"]
	edited.Text = theme.MustParseColor("#123456")
	p.ThemeUpdated(edited)
	if got := p.Current().Bracket.Color.Color; got != edited.Text {
		t.Errorf("bracket color = %v, want %v", got, edited.Text)
	}

	passes := p.Stats().Passes
	other := themes["harbor"]
	other.Text = theme.White
	p.ThemeUpdated(other)
	p.ThemeUpdated(edited)
	if p.Stats().Passes != passes {
		t.Error("inactive or unchanged theme update triggered a pass")
	}
}

func TestProjector_UnknownThemeFallsBack(t *testing.T) {
	p := newTestProjector()
	p.HandleChange(config.KeyTheme, "missing")
	if got := p.Current().Theme; got != theme.Fallback() {
		t.Errorf("Theme = %s, want fallback", got.ID)
	}
}

func TestProjector_ReplayEqualsRecompute(t *testing.T) {
	values := map[string][]any{
		config.KeyFontName:           {"Menlo", "SF Mono", "Fira Code"},
		config.KeyFontSize:           {11.0, 12, 14.5},
		config.KeyTabWidth:           {2, 4, 8},
		config.KeyIndentType:         {"tab", "spaces"},
		config.KeyIndentSpaceCount:   {2, 4},
		config.KeyLineHeight:         {1.0, 1.2, 1.5},
		config.KeyWrapLines:          {true, false},
		config.KeyLetterSpacing:      {0.9, 1.0, 1.1},
		config.KeyBracketMode:        {"disabled", "flash", "bordered", "underline"},
		config.KeyBracketCustomColor: {true, false},
		config.KeyBracketColor:       {"#FF0000", "#00FF00CC"},
		config.KeyTheme:              {"grey", "harbor", "day", "night", "plain", "missing"},
		config.KeyMatchAppearance:    {true, false},
		config.KeyUseThemeBackground: {true, false},
		config.KeyTabWidth + "x":     {1},
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	// Map order is random; sort for a reproducible sequence.
	sort.Strings(keys)

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 20; run++ {
		p := newTestProjector()
		for i := 0; i < 200; i++ {
			if rng.Intn(10) == 0 {
				p.SystemAppearanceChanged(theme.Appearance(rng.Intn(3)))
				continue
			}
			key := keys[rng.Intn(len(keys))]
			vals := values[key]
			p.HandleChange(key, vals[rng.Intn(len(vals))])
		}

		snap := p.Snapshot()
		th, ok := testThemes().Get(snap.Theme)
		if !ok {
			th = theme.Fallback()
		}
		want := Compute(Inputs{Snapshot: snap, Theme: th, Appearance: p.Appearance()})
		if got := p.Current(); got != want {
			t.Fatalf("run %d: replayed config differs from recompute:\n got %+v\nwant %+v", run, got, want)
		}
	}
}

func TestProjector_ReentrantSubscriberCoalesces(t *testing.T) {
	p := newTestProjector()

	var seen []int
	p.Subscribe(func(cfg DerivedEditorConfig) {
		seen = append(seen, cfg.TabWidth)
		if cfg.TabWidth == 2 {
			p.HandleChange(config.KeyTabWidth, 3)
			p.HandleChange(config.KeyTabWidth, 8)
		}
	})
	var last DerivedEditorConfig
	p.Subscribe(func(cfg DerivedEditorConfig) { last = cfg })

	p.HandleChange(config.KeyTabWidth, 2)

	if len(seen) != 2 || seen[0] != 2 || seen[1] != 8 {
		t.Errorf("seen = %v, want [2 8]", seen)
	}
	if last.TabWidth != 8 {
		t.Errorf("last subscriber saw %d, want 8", last.TabWidth)
	}
	if st := p.Stats(); st.Coalesced != 1 {
		t.Errorf("Coalesced = %d, want 1", st.Coalesced)
	}
}

func TestProjector_Unsubscribe(t *testing.T) {
	p := newTestProjector()
	var count int
	unsubscribe := p.Subscribe(func(DerivedEditorConfig) { count++ })

	p.HandleChange(config.KeyTabWidth, 2)
	unsubscribe()
	p.HandleChange(config.KeyTabWidth, 3)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestProjector_ApplyBatchIsOnePass(t *testing.T) {
	p := newTestProjector()
	p.Apply(
		Change{config.KeyFontName, "Menlo"},
		Change{config.KeyFontSize, 14},
		Change{config.KeyTheme, "harbor"},
	)
	st := p.Stats()
	if st.Passes != 1 || st.Recomputed[FieldFont] != 1 {
		t.Errorf("Passes = %d, font recomputed %d", st.Passes, st.Recomputed[FieldFont])
	}
	if got := p.Current().Font; got != (config.Font{Name: "Menlo", Size: 14}) {
		t.Errorf("Font = %+v", got)
	}
}

func TestDependencies(t *testing.T) {
	for f := Field(0); f < FieldCount; f++ {
		if len(Dependencies(f)) == 0 {
			t.Errorf("%s has no declared inputs", f)
		}
	}
	bracket := Dependencies(FieldBracket)
	found := false
	for _, in := range bracket {
		if in == InputTheme {
			found = true
		}
	}
	if !found {
		t.Error("bracket highlight does not depend on the theme")
	}
}
