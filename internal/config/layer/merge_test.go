package layer

import (
	"reflect"
	"testing"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		dst      map[string]any
		src      map[string]any
		expected map[string]any
	}{
		{
			name:     "nil dst",
			dst:      nil,
			src:      map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "nil src",
			dst:      map[string]any{"a": 1},
			src:      nil,
			expected: map[string]any{"a": 1},
		},
		{
			name:     "src overrides dst",
			dst:      map[string]any{"a": 1},
			src:      map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name: "nested merge",
			dst: map[string]any{
				"font": map[string]any{"name": "Menlo", "size": 13},
			},
			src: map[string]any{
				"font": map[string]any{"size": 14},
			},
			expected: map[string]any{
				"font": map[string]any{"name": "Menlo", "size": 14},
			},
		},
		{
			name:     "scalar replaces map",
			dst:      map[string]any{"font": map[string]any{"size": 13}},
			src:      map[string]any{"font": "Menlo"},
			expected: map[string]any{"font": "Menlo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeepMerge(tt.dst, tt.src)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("DeepMerge() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPathHelpers(t *testing.T) {
	data := map[string]any{}

	SetByPath(data, "textEditing.font.name", "Menlo")
	SetByPath(data, "textEditing.defaultTabWidth", 4)

	if v, ok := GetByPath(data, "textEditing.font.name"); !ok || v != "Menlo" {
		t.Errorf("GetByPath(font.name) = %v, %v", v, ok)
	}
	if _, ok := GetByPath(data, "textEditing.font.name.extra"); ok {
		t.Error("GetByPath through scalar should fail")
	}
	if _, ok := GetByPath(data, ""); ok {
		t.Error("GetByPath(\"\") should fail")
	}

	SetByPath(data, "textEditing.defaultTabWidth.x", 1)
	if v, ok := GetByPath(data, "textEditing.defaultTabWidth.x"); !ok || v != 1 {
		t.Errorf("SetByPath should replace scalar with map, got %v, %v", v, ok)
	}

	if !DeleteByPath(data, "textEditing.font.name") {
		t.Error("DeleteByPath(font.name) = false, want true")
	}
	if DeleteByPath(data, "textEditing.font.name") {
		t.Error("second DeleteByPath(font.name) = true, want false")
	}
	if DeleteByPath(data, "missing.path") {
		t.Error("DeleteByPath(missing.path) = true, want false")
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten(map[string]any{
		"textEditing": map[string]any{
			"font":  map[string]any{"size": 13},
			"empty": map[string]any{},
		},
		"files": map[string]any{"autoSaveDelay": 0.25},
	})

	want := map[string]any{
		"textEditing.font.size": 13,
		"textEditing.empty":     map[string]any{},
		"files.autoSaveDelay":   0.25,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestDiff(t *testing.T) {
	old := map[string]any{
		"textEditing": map[string]any{
			"defaultTabWidth": int64(4),
			"letterSpacing":   1.0,
			"font":            map[string]any{"name": "Menlo"},
		},
	}
	new := map[string]any{
		"textEditing": map[string]any{
			"defaultTabWidth": 4.0,
			"letterSpacing":   1.2,
		},
		"theme": map[string]any{"selectedTheme": "dracula"},
	}

	got := Diff(old, new)
	want := []Delta{
		{Path: "textEditing.font.name", Old: "Menlo", Removed: true},
		{Path: "textEditing.letterSpacing", Old: 1.0, New: 1.2},
		{Path: "theme.selectedTheme", New: "dracula"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() = %+v, want %+v", got, want)
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{4, int64(4), true},
		{4, 4.0, true},
		{float32(0.5), 0.5, true},
		{4, 5, false},
		{"4", 4, false},
		{[]any{"a"}, []any{"a"}, true},
		{nil, nil, true},
		{nil, 0, false},
	}
	for _, tt := range tests {
		if got := ValuesEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("ValuesEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
