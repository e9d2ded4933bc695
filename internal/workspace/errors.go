package workspace

import (
	"errors"
	"fmt"
)

// Workspace errors.
var (
	// ErrClosed indicates the workspace has been closed.
	ErrClosed = errors.New("workspace closed")

	// ErrBusy indicates the event queue is full.
	ErrBusy = errors.New("workspace event queue full")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
