package session

import "errors"

var (
	// ErrInvalidInput marks a request rejected by backend validation (422).
	ErrInvalidInput = errors.New("invalid input")
)

// AuthError is a non-2xx authentication response with a server-supplied
// message, surfaced verbatim for display.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	return e.Detail
}
