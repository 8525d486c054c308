package session_test

import (
	"context"
	"io"
	"sync"
)

// fakeBackend is a scriptable session.Backend.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	startFn func(ctx context.Context) (string, error)
	queryFn func(ctx context.Context, prompt string) (string, error)
	sendFn  func(ctx context.Context, filename string, data []byte) error

	prompts []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: make(map[string]int),
		startFn: func(context.Context) (string, error) {
			return "Hello", nil
		},
		queryFn: func(_ context.Context, prompt string) (string, error) {
			return "echo: " + prompt, nil
		},
		sendFn: func(context.Context, string, []byte) error {
			return nil
		},
	}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Start(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.calls["start"]++
	fn := f.startFn
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeBackend) Query(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls["query"]++
	f.prompts = append(f.prompts, prompt)
	fn := f.queryFn
	f.mu.Unlock()
	return fn(ctx, prompt)
}

func (f *fakeBackend) Send(ctx context.Context, filename string, r io.Reader) error {
	f.mu.Lock()
	f.calls["send"]++
	fn := f.sendFn
	f.mu.Unlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return fn(ctx, filename, data)
}
