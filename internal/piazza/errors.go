package piazza

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when an RPC is issued before Login
var ErrNotAuthenticated = errors.New("not authenticated, call Login first")

// AuthenticationError reports a rejected or failed login
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("could not authenticate: %s", e.Reason)
}

// RequestError reports a non-null error field in an RPC envelope
type RequestError struct {
	Method  string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Method, e.Message)
}
