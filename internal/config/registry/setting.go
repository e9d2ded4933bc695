// Package registry holds the definitions of every known editor setting:
// its type, default value and validation rules.
package registry

import (
	"fmt"
	"regexp"
)

// Setting defines an editor setting with its metadata.
type Setting struct {
	// Path is the dot-separated key (e.g., "textEditing.defaultTabWidth").
	Path string

	// Type is the setting's data type.
	Type SettingType

	// Default is the built-in value.
	Default any

	// Description is human-readable documentation.
	Description string

	// Enum lists allowed values for enum types.
	Enum []string

	// Minimum for numeric types (nil means no minimum).
	Minimum *float64

	// Maximum for numeric types (nil means no maximum).
	Maximum *float64

	// Pattern for string validation (regex).
	Pattern string

	// compiledPattern is set when the setting is registered.
	compiledPattern *regexp.Regexp
}

// Validate checks if a value is valid for this setting.
func (s *Setting) Validate(value any) error {
	if _, err := s.Normalize(value); err != nil {
		return err
	}
	return nil
}

// Normalize checks value and converts it to the setting's canonical Go
// type: int for integers, float64 for numbers, string, bool.
func (s *Setting) Normalize(value any) (any, error) {
	switch s.Type {
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return nil, &TypeError{Path: s.Path, Want: s.Type, Got: value}
		}
		if err := s.validatePattern(str); err != nil {
			return nil, err
		}
		return str, nil

	case TypeEnum:
		str, ok := value.(string)
		if !ok {
			return nil, &TypeError{Path: s.Path, Want: s.Type, Got: value}
		}
		for _, e := range s.Enum {
			if e == str {
				return str, nil
			}
		}
		return nil, fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidValue, s.Path, s.Enum, str)

	case TypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, &TypeError{Path: s.Path, Want: s.Type, Got: value}
		}
		return b, nil

	case TypeInt:
		f, ok := toFloat(value)
		if !ok || f != float64(int64(f)) {
			return nil, &TypeError{Path: s.Path, Want: s.Type, Got: value}
		}
		if err := s.validateRange(f); err != nil {
			return nil, err
		}
		return int(f), nil

	case TypeFloat:
		f, ok := toFloat(value)
		if !ok {
			return nil, &TypeError{Path: s.Path, Want: s.Type, Got: value}
		}
		if err := s.validateRange(f); err != nil {
			return nil, err
		}
		return f, nil
	}
	return value, nil
}

func (s *Setting) validateRange(f float64) error {
	if s.Minimum != nil && f < *s.Minimum {
		return fmt.Errorf("%w: %s = %v is less than minimum %v", ErrInvalidValue, s.Path, f, *s.Minimum)
	}
	if s.Maximum != nil && f > *s.Maximum {
		return fmt.Errorf("%w: %s = %v is greater than maximum %v", ErrInvalidValue, s.Path, f, *s.Maximum)
	}
	return nil
}

func (s *Setting) validatePattern(str string) error {
	if s.Pattern == "" {
		return nil
	}
	re := s.compiledPattern
	if re == nil {
		var err error
		if re, err = regexp.Compile(s.Pattern); err != nil {
			return fmt.Errorf("invalid pattern for %s: %w", s.Path, err)
		}
	}
	if !re.MatchString(str) {
		return fmt.Errorf("%w: %s = %q does not match %s", ErrInvalidValue, s.Path, str, s.Pattern)
	}
	return nil
}

// SettingType represents the data type of a setting.
type SettingType uint8

const (
	// TypeString represents a string value.
	TypeString SettingType = iota
	// TypeInt represents an integer value.
	TypeInt
	// TypeFloat represents a floating-point value.
	TypeFloat
	// TypeBool represents a boolean value.
	TypeBool
	// TypeEnum represents a string from a fixed set.
	TypeEnum
)

// String returns the string representation of the type.
func (t SettingType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// MinValue creates a pointer to a float64 for use as Minimum.
func MinValue(v float64) *float64 {
	return &v
}

// MaxValue creates a pointer to a float64 for use as Maximum.
func MaxValue(v float64) *float64 {
	return &v
}
