package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError represents a failure response from the control plane.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("control plane returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("control plane returned %d", e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
