package config

import (
	"sort"

	"github.com/dshills/editstate/internal/config/layer"
)

// renamedKeys maps retired setting keys to their current names.
var renamedKeys = map[string]string{
	"editor.tabSize":                   KeyTabWidth,
	"editor.wordWrap":                  KeyWrapLines,
	"editor.fontFamily":                KeyFontName,
	"editor.fontSize":                  KeyFontSize,
	"textEditing.font.family":          KeyFontName,
	"textEditing.bracketPairHighlight": KeyBracketMode,
	"theme.useSystemAppearance":        KeyMatchAppearance,
	"ui.theme":                         KeyTheme,
}

// migrateKeys moves values stored under retired keys to their current
// keys in place. A value already present under the current key wins, and
// retired keys are applied in sorted order. It returns the retired keys
// found.
func migrateKeys(data map[string]any) []string {
	retired := make([]string, 0, len(renamedKeys))
	for old := range renamedKeys {
		retired = append(retired, old)
	}
	sort.Strings(retired)

	var found []string
	for _, old := range retired {
		current := renamedKeys[old]
		v, ok := layer.GetByPath(data, old)
		if !ok {
			continue
		}
		found = append(found, old)
		layer.DeleteByPath(data, old)
		if _, exists := layer.GetByPath(data, current); !exists {
			layer.SetByPath(data, current, convertRetired(old, v))
		}
	}
	if len(found) > 0 {
		pruneEmpty(data)
	}
	return found
}

// convertRetired adapts values whose representation changed along with
// the key.
func convertRetired(old string, v any) any {
	switch old {
	case "editor.wordWrap":
		if s, ok := v.(string); ok {
			return s != "off"
		}
	case "textEditing.bracketPairHighlight":
		if b, ok := v.(bool); ok {
			if b {
				return string(BracketBordered)
			}
			return string(BracketDisabled)
		}
	}
	return v
}

// pruneEmpty removes maps left empty by migration.
func pruneEmpty(data map[string]any) {
	for k, v := range data {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		pruneEmpty(m)
		if len(m) == 0 {
			delete(data, k)
		}
	}
}
