package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable covers transport failures, timeouts and cancellation.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrUnauthorized means the credential was rejected (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the credential is valid but not allowed (HTTP 403).
	ErrForbidden = errors.New("forbidden")
	// ErrMalformedResponse means a 2xx body did not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is a non-2xx answer from the backend.
type Error struct {
	Status int
	// Msg is the server-supplied "msg" (or "error") field, possibly empty.
	Msg string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Msg)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return nil
	}
}

// Message returns the text to show the user for err: the server message when
// there is one, fallback otherwise.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}
