package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/editstate/internal/config/layer"
)

// JSONLoader loads settings from JSON files. Keys may be nested objects
// ({"textEditing": {"font": {"size": 13}}}) or dotted paths
// ({"textEditing.font.size": 13}); both produce the same nested map.
type JSONLoader struct {
	fs   FileSystem
	path string
}

// NewJSONLoader creates a JSON loader for the given path.
func NewJSONLoader(path string) *JSONLoader {
	return NewJSONLoaderWithFS(DefaultFS(), path)
}

// NewJSONLoaderWithFS creates a JSON loader with a custom file system.
func NewJSONLoaderWithFS(fs FileSystem, path string) *JSONLoader {
	return &JSONLoader{fs: fs, path: path}
}

// Path returns the file path.
func (l *JSONLoader) Path() string {
	return l.path
}

// Load reads settings from the configured path.
func (l *JSONLoader) Load() (map[string]any, error) {
	data, err := readIfExists(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}
	return l.Parse(l.path, data)
}

// Parse parses a JSON settings document. source names the data in errors.
func (l *JSONLoader) Parse(source string, data []byte) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return make(map[string]any), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: source, Message: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Path: source, Message: "top-level value must be an object"}
	}

	settings := make(map[string]any)
	collect(settings, "", root)
	return settings, nil
}

// collect walks obj, expanding dotted keys into nested maps.
func collect(dst map[string]any, prefix string, obj gjson.Result) {
	obj.ForEach(func(key, value gjson.Result) bool {
		path := key.String()
		if prefix != "" {
			path = prefix + "." + path
		}
		if value.IsObject() {
			collect(dst, path, value)
			return true
		}
		layer.SetByPath(dst, path, jsonValue(value))
		return true
	})
}

// jsonValue converts a gjson value. Integral numbers written without a
// fraction decode as int64, matching the TOML loader.
func jsonValue(v gjson.Result) any {
	if v.Type == gjson.Number && !strings.ContainsAny(v.Raw, ".eE") {
		return v.Int()
	}
	if v.IsArray() {
		arr := v.Array()
		out := make([]any, len(arr))
		for i, item := range arr {
			if item.IsObject() {
				m := make(map[string]any)
				collect(m, "", item)
				out[i] = m
				continue
			}
			out[i] = jsonValue(item)
		}
		return out
	}
	return v.Value()
}

// Save writes values into the file in place. Keys already stored as
// dotted names are updated under that name; other keys are written as
// nested objects. A nil value removes the key. The result is re-indented.
func (l *JSONLoader) Save(values map[string]any) error {
	data, err := readIfExists(l.fs, l.path)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		data = []byte("{}")
	}
	if !gjson.ValidBytes(data) {
		return &ParseError{Path: l.path, Message: "invalid JSON"}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if flat := escapePath(k); gjson.GetBytes(data, flat).Exists() {
			path = flat
		}
		if values[k] == nil {
			data, err = sjson.DeleteBytes(data, path)
		} else {
			data, err = sjson.SetBytes(data, path, values[k])
		}
		if err != nil {
			return fmt.Errorf("updating %s in %s: %w", k, l.path, err)
		}
	}

	if err := l.fs.WriteFile(l.path, pretty.Pretty(data)); err != nil {
		return fmt.Errorf("writing settings file %s: %w", l.path, err)
	}
	return nil
}

// escapePath turns a dotted settings key into a gjson/sjson path naming a
// single top-level member.
func escapePath(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(key)
}
