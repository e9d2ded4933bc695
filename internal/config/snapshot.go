package config

import (
	"fmt"
	"time"

	"github.com/dshills/editstate/internal/config/layer"
)

// Font describes a font family and point size.
type Font struct {
	Name string
	Size float64
}

// Snapshot is a typed, comparable view of every editor-relevant setting.
// Snapshots are values; Apply returns nothing shared with the original.
type Snapshot struct {
	Font               Font
	TabWidth           int
	IndentType         IndentType
	IndentSpaceCount   int
	LineHeightMultiple float64
	WrapLines          bool
	LetterSpacing      float64

	BracketMode           BracketMode
	BracketUseCustomColor bool
	BracketColor          string

	Theme              string
	DarkTheme          string
	LightTheme         string
	MatchAppearance    bool
	UseThemeBackground bool

	AutoSaveDelay time.Duration
}

// DefaultSnapshot returns the snapshot of the built-in defaults.
func DefaultSnapshot() Snapshot {
	var s Snapshot
	for _, def := range builtin.All() {
		if _, err := s.Apply(def.Path, def.Default); err != nil {
			panic(fmt.Sprintf("default for %s: %v", def.Path, err))
		}
	}
	return s
}

// SnapshotOf builds a snapshot from a nested settings map. Keys that are
// missing or hold invalid values keep their default; the validation errors
// are returned alongside.
func SnapshotOf(settings map[string]any) (Snapshot, []error) {
	s := DefaultSnapshot()
	var errs []error
	for _, def := range builtin.All() {
		v, ok := layer.GetByPath(settings, def.Path)
		if !ok {
			continue
		}
		if _, err := s.Apply(def.Path, v); err != nil {
			errs = append(errs, err)
		}
	}
	return s, errs
}

// Known reports whether key is a snapshot field.
func Known(key string) bool {
	return builtin.Has(key)
}

// Apply validates value and stores it in the field for key. It reports
// whether the field changed. Unknown keys are ignored. On error the
// snapshot is unchanged.
func (s *Snapshot) Apply(key string, value any) (bool, error) {
	def := builtin.Get(key)
	if def == nil {
		return false, nil
	}
	v, err := def.Normalize(value)
	if err != nil {
		return false, err
	}

	before := *s
	switch key {
	case KeyFontName:
		s.Font.Name = v.(string)
	case KeyFontSize:
		s.Font.Size = v.(float64)
	case KeyTabWidth:
		s.TabWidth = v.(int)
	case KeyIndentType:
		s.IndentType = IndentType(v.(string))
	case KeyIndentSpaceCount:
		s.IndentSpaceCount = v.(int)
	case KeyLineHeight:
		s.LineHeightMultiple = v.(float64)
	case KeyWrapLines:
		s.WrapLines = v.(bool)
	case KeyLetterSpacing:
		s.LetterSpacing = v.(float64)
	case KeyBracketMode:
		s.BracketMode = BracketMode(v.(string))
	case KeyBracketCustomColor:
		s.BracketUseCustomColor = v.(bool)
	case KeyBracketColor:
		s.BracketColor = v.(string)
	case KeyTheme:
		s.Theme = v.(string)
	case KeyDarkTheme:
		s.DarkTheme = v.(string)
	case KeyLightTheme:
		s.LightTheme = v.(string)
	case KeyMatchAppearance:
		s.MatchAppearance = v.(bool)
	case KeyUseThemeBackground:
		s.UseThemeBackground = v.(bool)
	case KeyAutoSaveDelay:
		s.AutoSaveDelay = time.Duration(v.(int)) * time.Millisecond
	default:
		return false, nil
	}
	return *s != before, nil
}

// Value returns the canonical value stored for key.
func (s Snapshot) Value(key string) (any, bool) {
	switch key {
	case KeyFontName:
		return s.Font.Name, true
	case KeyFontSize:
		return s.Font.Size, true
	case KeyTabWidth:
		return s.TabWidth, true
	case KeyIndentType:
		return string(s.IndentType), true
	case KeyIndentSpaceCount:
		return s.IndentSpaceCount, true
	case KeyLineHeight:
		return s.LineHeightMultiple, true
	case KeyWrapLines:
		return s.WrapLines, true
	case KeyLetterSpacing:
		return s.LetterSpacing, true
	case KeyBracketMode:
		return string(s.BracketMode), true
	case KeyBracketCustomColor:
		return s.BracketUseCustomColor, true
	case KeyBracketColor:
		return s.BracketColor, true
	case KeyTheme:
		return s.Theme, true
	case KeyDarkTheme:
		return s.DarkTheme, true
	case KeyLightTheme:
		return s.LightTheme, true
	case KeyMatchAppearance:
		return s.MatchAppearance, true
	case KeyUseThemeBackground:
		return s.UseThemeBackground, true
	case KeyAutoSaveDelay:
		return int(s.AutoSaveDelay / time.Millisecond), true
	default:
		return nil, false
	}
}
