package focus

import (
	"errors"
	"fmt"
)

// ErrInvalidTarget is returned for focus transitions naming an unknown
// group.
var ErrInvalidTarget = errors.New("invalid focus target")

// ErrDuplicateGroup is returned when registering a group twice.
var ErrDuplicateGroup = errors.New("group already registered")

// ErrBusy is returned by Unregister while a transition is being
// propagated.
var ErrBusy = errors.New("focus transition in progress")

// TargetError describes a rejected focus transition.
type TargetError struct {
	Op string
	ID GroupID
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s: %v: %q", e.Op, ErrInvalidTarget, e.ID)
}

func (e *TargetError) Is(target error) bool {
	return target == ErrInvalidTarget
}
