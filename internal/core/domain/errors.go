package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired is returned when the backend rejected the session token.
	// The local session has already been cleared when a caller sees it.
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// APIError is a non-2xx response from a remote service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// GenericHTTPMessage is the fallback message when a failed response carries
// no usable error text.
func GenericHTTPMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
