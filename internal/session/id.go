package session

import (
	"net/url"
	"path/filepath"

	"github.com/google/uuid"
)

// IDFor returns the stable session id for a resource path: a name-based
// (version 5) UUID of the path's file URL. Equivalent spellings of the same
// path yield the same id.
func IDFor(path string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(resourceURL(path)))
}

func resourceURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Clean(path))}
	return u.String()
}
