package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/dshills/editstate/internal/config/layer"
)

// EnvPrefix is the prefix of environment variables read by EnvLoader.
const EnvPrefix = "EDITSTATE_"

// EnvLoader loads settings overrides from environment variables.
//
// Well-known variables map to their settings path through the mapping
// table. Any other prefixed variable is translated by splitting on double
// underscores: EDITSTATE_TEXTEDITING__FONT__SIZE names textEditing.font.size
// when that path is in the known key set passed to WithKnownPaths.
type EnvLoader struct {
	prefix  string
	mapping map[string]string // Env var -> settings path
	known   map[string]string // lower-cased path -> canonical path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		known:   make(map[string]string),
		environ: os.Environ,
	}
}

// WithKnownPaths registers the settings paths generic variables may name.
func (l *EnvLoader) WithKnownPaths(paths []string) *EnvLoader {
	for _, p := range paths {
		l.known[strings.ToLower(p)] = p
	}
	return l
}

// WithEnviron replaces the environment source. Used by tests.
func (l *EnvLoader) WithEnviron(environ func() []string) *EnvLoader {
	l.environ = environ
	return l
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "FONT":             "textEditing.font.name",
		prefix + "FONT_SIZE":        "textEditing.font.size",
		prefix + "TAB_WIDTH":        "textEditing.defaultTabWidth",
		prefix + "THEME":            "theme.selectedTheme",
		prefix + "WRAP_LINES":       "textEditing.wrapLinesToEditorWidth",
		prefix + "AUTOSAVE_DELAY":   "files.autoSaveDelay",
		prefix + "MATCH_APPEARANCE": "theme.matchAppearance",
	}
}

// Load reads environment variables and returns a nested settings map.
// Returns nil, nil when no variable applies.
func (l *EnvLoader) Load() (map[string]any, error) {
	settings := make(map[string]any)

	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, ok := l.mapping[name]
		if !ok {
			path, ok = l.pathFor(name)
		}
		if !ok {
			continue
		}
		layer.SetByPath(settings, path, parseEnvValue(value))
	}

	if len(settings) == 0 {
		return nil, nil
	}
	return settings, nil
}

// pathFor converts EDITSTATE_TEXTEDITING__FONT__SIZE to
// textEditing.font.size using the known path set.
func (l *EnvLoader) pathFor(name string) (string, bool) {
	rest := strings.TrimPrefix(name, l.prefix)
	if !strings.Contains(rest, "__") {
		return "", false
	}
	lower := strings.ToLower(strings.ReplaceAll(rest, "__", "."))
	path, ok := l.known[lower]
	return path, ok
}

// parseEnvValue parses bools and numbers; everything else stays a string.
func parseEnvValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
