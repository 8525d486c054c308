package client

import "time"

// DefaultBaseURL is the backend origin used when nothing else is configured.
const DefaultBaseURL = "http://127.0.0.1:3000"

// Config is the backend client configuration.
type Config struct {
	// BaseURL is the backend origin (e.g., "http://127.0.0.1:3000")
	BaseURL string

	// Timeout bounds a single request. Zero means no timeout; requests
	// then run until they complete or their context is cancelled.
	Timeout time.Duration
}
