package config

import (
	"errors"
	"fmt"

	"github.com/dshills/editstate/internal/config/layer"
	"github.com/dshills/editstate/internal/config/registry"
)

// Errors returned by settings operations.
var (
	// ErrSettingNotFound indicates the setting path doesn't exist.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates the value fails registry validation.
	ErrValidationFailed = registry.ErrInvalidValue

	// ErrReadOnly indicates modification was attempted on a read-only layer.
	ErrReadOnly = layer.ErrReadOnly

	// ErrLayerNotFound indicates the specified layer doesn't exist.
	ErrLayerNotFound = layer.ErrLayerNotFound

	// ErrNoSettingsFile indicates a layer has no backing file to save to.
	ErrNoSettingsFile = errors.New("layer has no settings file")

	// ErrClosed indicates the store was closed.
	ErrClosed = errors.New("settings store closed")
)

// TypeError is returned when a typed getter finds a value of another type.
type TypeError struct {
	// Path is the setting path.
	Path string
	// Expected is the expected type name.
	Expected string
	// Actual is the actual Go type.
	Actual any
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("type error for %s: expected %s, got %T", e.Path, e.Expected, e.Actual)
}

// Is implements error matching for TypeError.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
