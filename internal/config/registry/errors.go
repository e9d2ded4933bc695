package registry

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	ErrSettingAlreadyRegistered = errors.New("setting already registered")
	ErrSettingNotFound          = errors.New("setting not found")
	ErrInvalidValue             = errors.New("invalid setting value")
)

// TypeError reports a value of the wrong type for a setting.
type TypeError struct {
	Path string
	Want SettingType
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %T", e.Path, e.Want, e.Got)
}

// Is reports ErrInvalidValue so callers can test with errors.Is.
func (e *TypeError) Is(target error) bool {
	return target == ErrInvalidValue
}
