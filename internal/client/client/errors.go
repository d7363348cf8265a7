package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a failure reported by the backend: a 4xx answer or a
// success:false envelope.
type APIError struct {
	StatusCode int
	Message    string
	// Errors holds field-level validation errors as sent by the server.
	Errors json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// withDefaultMessage fills an empty APIError message with msg.
func withDefaultMessage(err error, msg string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message == "" {
		apiErr.Message = msg
	}
	return err
}
