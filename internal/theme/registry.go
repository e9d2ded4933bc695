package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/editstate/internal/logging"
)

// Registry holds the available themes by id.
type Registry struct {
	mu       sync.RWMutex
	themes   map[string]Theme
	files    map[string]string // file path -> theme id
	handlers []func(Theme)
	logger   *logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithBuiltins registers the chroma-derived built-in themes.
func WithBuiltins() Option {
	return func(r *Registry) {
		for _, t := range Builtins() {
			r.themes[t.ID] = t
		}
	}
}

// WithLogger sets the registry's logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates a theme registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		themes: make(map[string]Theme),
		files:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.Or(r.logger).WithComponent("theme")
	return r
}

// Register adds or replaces a theme. Update handlers run when an existing
// theme's value changes.
func (r *Registry) Register(t Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	old, exists := r.themes[t.ID]
	r.themes[t.ID] = t
	var handlers []func(Theme)
	if exists && old != t {
		handlers = make([]func(Theme), len(r.handlers))
		copy(handlers, r.handlers)
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(t)
	}
	return nil
}

// Get returns the theme with the given id.
func (r *Registry) Get(id string) (Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.themes[id]
	return t, ok
}

// Lookup returns the theme with the given id or an ErrThemeNotFound error.
func (r *Registry) Lookup(id string) (Theme, error) {
	t, ok := r.Get(id)
	if !ok {
		return Theme{}, fmt.Errorf("%w: %s", ErrThemeNotFound, id)
	}
	return t, nil
}

// IDs returns all theme ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.themes))
	for id := range r.themes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered themes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.themes)
}

// OnUpdate registers a handler called with the new value whenever an
// already registered theme changes.
func (r *Registry) OnUpdate(handler func(Theme)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, handler)
}

// LoadFile loads or reloads a theme file.
func (r *Registry) LoadFile(path string) (Theme, error) {
	t, err := LoadFile(path)
	if err != nil {
		return Theme{}, err
	}

	r.mu.Lock()
	if prev, ok := r.files[path]; ok && prev != t.ID {
		delete(r.themes, prev)
	}
	r.files[path] = t.ID
	r.mu.Unlock()

	if err := r.Register(t); err != nil {
		return Theme{}, err
	}
	r.logger.Debug("loaded theme %s from %s", t.ID, path)
	return t, nil
}

// ForgetFile removes the theme loaded from path. It reports whether a theme
// was removed.
func (r *Registry) ForgetFile(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.files[path]
	if !ok {
		return false
	}
	delete(r.files, path)
	delete(r.themes, id)
	return true
}

// LoadDir loads every theme file in dir. A missing directory is not an
// error. Files that fail to load are skipped; their errors are joined into
// the returned error.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	var (
		loaded int
		errs   []error
	)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ThemeExt) {
			continue
		}
		if _, err := r.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			r.logger.Warn("skipping theme file: %v", err)
			errs = append(errs, err)
			continue
		}
		loaded++
	}
	return loaded, errors.Join(errs...)
}
