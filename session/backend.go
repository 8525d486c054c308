package session

import (
	"context"
	"io"
)

// Backend is the remote service the session talks to. client.Client is the
// HTTP implementation.
type Backend interface {
	// Start fetches the greeting text.
	Start(ctx context.Context) (string, error)

	// Query sends a prompt and returns the assistant response text.
	Query(ctx context.Context, prompt string) (string, error)

	// Send uploads a file under the given name.
	Send(ctx context.Context, filename string, r io.Reader) error
}
