package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/match"

	"github.com/dshills/editstate/internal/config/layer"
)

// Registry maintains all known setting definitions.
type Registry struct {
	mu       sync.RWMutex
	settings map[string]*Setting
	sections map[string][]*Setting // Settings grouped by first path segment
}

// New creates an empty settings registry.
func New() *Registry {
	return &Registry{
		settings: make(map[string]*Setting),
		sections: make(map[string][]*Setting),
	}
}

// NewWith creates a registry holding settings.
func NewWith(settings []Setting) (*Registry, error) {
	r := New()
	for _, s := range settings {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a setting definition to the registry.
// Returns an error if a setting with the same path already exists.
func (r *Registry) Register(setting Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[setting.Path]; exists {
		return fmt.Errorf("%w: %s", ErrSettingAlreadyRegistered, setting.Path)
	}

	s := &setting
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern for %s: %w", s.Path, err)
		}
		s.compiledPattern = re
	}
	if s.Default != nil {
		def, err := s.Normalize(s.Default)
		if err != nil {
			return fmt.Errorf("default for %s: %w", s.Path, err)
		}
		s.Default = def
	}
	r.settings[setting.Path] = s
	section := extractSection(setting.Path)
	r.sections[section] = append(r.sections[section], s)
	return nil
}

// MustRegister registers a setting and panics on error.
func (r *Registry) MustRegister(setting Setting) {
	if err := r.Register(setting); err != nil {
		panic(err)
	}
}

// Get returns the setting definition for path, or nil.
func (r *Registry) Get(path string) *Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings[path]
}

// Has checks if a setting is registered.
func (r *Registry) Has(path string) bool {
	return r.Get(path) != nil
}

// All returns all registered settings sorted by path.
func (r *Registry) All() []*Setting {
	return r.Match("*")
}

// Paths returns every registered path, sorted.
func (r *Registry) Paths() []string {
	all := r.All()
	paths := make([]string, len(all))
	for i, s := range all {
		paths[i] = s.Path
	}
	return paths
}

// Match returns the settings whose path matches a glob pattern
// ("textEditing.bracketHighlight.*"), sorted by path.
func (r *Registry) Match(pattern string) []*Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Setting
	for path, s := range r.settings {
		if match.Match(path, pattern) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result
}

// Sections returns all section names.
func (r *Registry) Sections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.sections))
	for section := range r.sections {
		result = append(result, section)
	}
	sort.Strings(result)
	return result
}

// Defaults returns the default values as a nested map.
func (r *Registry) Defaults() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]any)
	for path, s := range r.settings {
		layer.SetByPath(result, path, s.Default)
	}
	return result
}

// Normalize validates value for path and returns it in canonical form.
// Unregistered paths are returned unchanged.
func (r *Registry) Normalize(path string, value any) (any, error) {
	s := r.Get(path)
	if s == nil {
		return value, nil
	}
	return s.Normalize(value)
}

// Validate checks value against the definition for path.
func (r *Registry) Validate(path string, value any) error {
	_, err := r.Normalize(path, value)
	return err
}

func extractSection(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}
