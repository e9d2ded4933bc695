package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Sentinel errors for session operations.
var (
	ErrClosed          = errors.New("session closed")
	ErrSessionNotFound = errors.New("session not found")
)

// PersistError reports a failed persist attempt. The session stays dirty
// and the next mutation or close retries.
type PersistError struct {
	SessionID uuid.UUID
	Path      string
	Revision  uint64
	AttemptID ulid.ULID
	Err       error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s at revision %d (attempt %s): %v", e.Path, e.Revision, e.AttemptID, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsPersistError reports whether err is or wraps a PersistError.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
