package api

import (
	"errors"
	"fmt"
)

// NetworkError reports a transport failure, a non-success status or an
// undecodable response body.
type NetworkError struct {
	Op         string // "list posts", "get post", "fetch photo"
	StatusCode int    // zero when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Message returns the text shown to readers.
func (e *NetworkError) Message() string {
	switch e.Op {
	case opListPosts:
		return "Failed to fetch posts"
	case opGetPost:
		return "Failed to fetch post"
	case opFetchPhoto:
		return "Failed to fetch photo"
	}
	return "An error occurred"
}

// NotFoundError reports that the backend has no resource for Key.
type NotFoundError struct {
	Resource string // "post" or "photo"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Message returns the text shown to readers.
func (e *NotFoundError) Message() string {
	if e.Resource == "photo" {
		return "Photo not found"
	}
	return "Post not found"
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
