// Package layer manages prioritized settings layers.
//
// Settings come from several sources (built-in defaults, the user settings
// file, the workspace settings file, environment overrides, in-memory
// session overrides). Each source is a Layer; higher priority layers
// override lower ones when merged.
package layer

import (
	"time"
)

// Layer represents a single settings layer.
type Layer struct {
	// Name identifies the layer ("defaults", "user", "workspace", "session").
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	// Source indicates where this layer was loaded from.
	Source Source

	// Path is the file path, if the layer was loaded from a file.
	Path string

	// Data holds the settings values as a nested map.
	Data map[string]any

	// ModTime is when the layer data was last replaced.
	ModTime time.Time

	// ReadOnly prevents modifications through the manager.
	ReadOnly bool
}

// New creates an empty layer with the standard name and priority for
// source.
func New(source Source) *Layer {
	return NewWithData(source, make(map[string]any))
}

// NewWithData creates a layer with initial data.
func NewWithData(source Source, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{
		Name:     source.String(),
		Source:   source,
		Priority: source.Priority(),
		Data:     data,
		ModTime:  time.Now(),
		ReadOnly: source == SourceBuiltin,
	}
}

// Clone creates a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	return &Layer{
		Name:     l.Name,
		Priority: l.Priority,
		Source:   l.Source,
		Path:     l.Path,
		Data:     cloneMap(l.Data),
		ModTime:  l.ModTime,
		ReadOnly: l.ReadOnly,
	}
}

// Source indicates where a settings layer came from.
type Source uint8

const (
	// SourceBuiltin represents the built-in defaults.
	SourceBuiltin Source = iota
	// SourceUser represents the user settings file.
	SourceUser
	// SourceWorkspace represents the workspace settings file.
	SourceWorkspace
	// SourceEnv represents EDITSTATE_* environment overrides.
	SourceEnv
	// SourceSession represents in-memory overrides made while running.
	SourceSession
)

// String returns the standard layer name for the source.
func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "defaults"
	case SourceUser:
		return "user"
	case SourceWorkspace:
		return "workspace"
	case SourceEnv:
		return "env"
	case SourceSession:
		return "session"
	default:
		return "unknown"
	}
}

// Standard priority levels. Higher values override lower values.
const (
	PriorityBuiltin   = 0
	PriorityUser      = 100
	PriorityWorkspace = 200
	PriorityEnv       = 300
	PrioritySession   = 1000
)

// Priority returns the standard priority for the source.
func (s Source) Priority() int {
	switch s {
	case SourceUser:
		return PriorityUser
	case SourceWorkspace:
		return PriorityWorkspace
	case SourceEnv:
		return PriorityEnv
	case SourceSession:
		return PrioritySession
	default:
		return PriorityBuiltin
	}
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = cloneValue(val)
	}
	return dst
}

func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = cloneValue(val)
	}
	return dst
}

func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}
