package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/editstate/internal/config/layer"
)

// TOMLLoader loads settings from TOML files.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader creates a new TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return NewTOMLLoaderWithFS(DefaultFS(), path)
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom file system.
func NewTOMLLoaderWithFS(fs FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{
		fs:   fs,
		path: path,
	}
}

// Path returns the file path.
func (l *TOMLLoader) Path() string {
	return l.path
}

// Load reads settings from the configured path, following @include
// directives up to four levels deep.
func (l *TOMLLoader) Load() (map[string]any, error) {
	return l.loadWithIncludes(l.path, 4)
}

// Parse parses TOML data into a map. source names the data in errors.
func (l *TOMLLoader) Parse(source string, data []byte) (map[string]any, error) {
	var settings map[string]any
	if err := toml.Unmarshal(data, &settings); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	if settings == nil {
		settings = make(map[string]any)
	}
	return settings, nil
}

// Save merges values into the file and rewrites it. A nil value removes
// the key.
func (l *TOMLLoader) Save(values map[string]any) error {
	current, err := l.loadFile(l.path)
	if err != nil {
		return err
	}
	if current == nil {
		current = make(map[string]any)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if values[k] == nil {
			layer.DeleteByPath(current, k)
			continue
		}
		layer.SetByPath(current, k, values[k])
	}

	data, err := toml.Marshal(current)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", l.path, err)
	}
	if err := l.fs.WriteFile(l.path, data); err != nil {
		return fmt.Errorf("writing settings file %s: %w", l.path, err)
	}
	return nil
}

func (l *TOMLLoader) loadFile(path string) (map[string]any, error) {
	data, err := readIfExists(l.fs, path)
	if err != nil || data == nil {
		return nil, err
	}
	return l.Parse(path, data)
}

// loadWithIncludes loads a TOML file and processes @include directives.
// Included files are lower priority than the including file.
func (l *TOMLLoader) loadWithIncludes(path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("include depth exceeded for %s", path)
	}

	settings, err := l.loadFile(path)
	if err != nil || settings == nil {
		return nil, err
	}

	includes, ok := settings["@include"]
	if !ok {
		return settings, nil
	}
	delete(settings, "@include")

	var list []string
	switch v := includes.(type) {
	case string:
		list = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: @include must be string or array of strings", path)
			}
			list = append(list, s)
		}
	default:
		return nil, fmt.Errorf("%s: @include must be string or array of strings, got %T", path, includes)
	}

	merged := make(map[string]any)
	for _, inc := range list {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		incSettings, err := l.loadWithIncludes(inc, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", inc, err)
		}
		merged = layer.DeepMerge(merged, incSettings)
	}
	return layer.DeepMerge(merged, settings), nil
}
