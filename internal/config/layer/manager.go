package layer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Errors returned by Manager operations.
var (
	ErrLayerNotFound = errors.New("layer not found")
	ErrReadOnly      = errors.New("layer is read-only")
)

// Manager manages settings layers and provides merged access.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer       // Sorted by priority (ascending)
	merged map[string]any // Cached merged result
	dirty  bool
}

// NewManager creates a new layer manager.
func NewManager() *Manager {
	return &Manager{dirty: true}
}

// Put adds a layer, replacing any existing layer with the same name.
func (m *Manager) Put(layer *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, l := range m.layers {
		if l.Name == layer.Name {
			m.layers[i] = layer
			m.dirty = true
			return
		}
	}
	m.layers = append(m.layers, layer)
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
	m.dirty = true
}

// Remove removes a layer by name.
// Returns true if the layer was found and removed.
func (m *Manager) Remove(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, l := range m.layers {
		if l.Name == name {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			m.dirty = true
			return true
		}
	}
	return false
}

// Layer returns a copy of the named layer.
func (m *Manager) Layer(name string) (*Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if l := m.find(name); l != nil {
		return l.Clone(), true
	}
	return nil, false
}

// Names returns the layer names in priority order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.layers))
	for i, l := range m.layers {
		names[i] = l.Name
	}
	return names
}

// Merge combines all layers into a single settings map. The result is a
// copy and may be modified by the caller.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMap(m.mergedLocked())
}

// Get returns the effective value for a settings path.
func (m *Manager) Get(path string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := GetByPath(m.mergedLocked(), path)
	return cloneValue(v), ok
}

// Which returns the name of the highest priority layer defining path.
func (m *Manager) Which(path string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.layers) - 1; i >= 0; i-- {
		if _, ok := GetByPath(m.layers[i].Data, path); ok {
			return m.layers[i].Name
		}
	}
	return ""
}

// Set sets a value in the named layer.
func (m *Manager) Set(layerName, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.writable(layerName)
	if err != nil {
		return err
	}
	SetByPath(l.Data, path, value)
	m.dirty = true
	return nil
}

// Delete removes a value from the named layer.
func (m *Manager) Delete(layerName, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.writable(layerName)
	if err != nil {
		return err
	}
	if DeleteByPath(l.Data, path) {
		m.dirty = true
	}
	return nil
}

func (m *Manager) writable(name string) (*Layer, error) {
	l := m.find(name)
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, name)
	}
	if l.ReadOnly {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	if l.Data == nil {
		l.Data = make(map[string]any)
	}
	return l, nil
}

func (m *Manager) mergedLocked() map[string]any {
	if !m.dirty && m.merged != nil {
		return m.merged
	}
	result := make(map[string]any)
	for _, l := range m.layers {
		result = DeepMerge(result, l.Data)
	}
	m.merged = result
	m.dirty = false
	return result
}

func (m *Manager) find(name string) *Layer {
	for _, l := range m.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}
