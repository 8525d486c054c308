package llm

import "errors"

// ErrInvalidResponse means a backend reply had no usable "response" field.
var ErrInvalidResponse = errors.New("invalid response format from server")

// ErrorResponse represents an error body returned by the backend.
type ErrorResponse struct {
	Error string `json:"error"`
}
