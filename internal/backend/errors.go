package backend

import (
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}
