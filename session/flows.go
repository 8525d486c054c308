package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/archiveai/pkg/conversation"
	"github.com/papercomputeco/archiveai/pkg/llm"
)

// defaultQueryFailure is shown when a failed query carries no description.
const defaultQueryFailure = "Failed to send message. Please try again."

var (
	// ErrEmptyGreeting is logged when /start answers with an empty greeting.
	ErrEmptyGreeting = errors.New("empty greeting")

	// ErrInvalidResponse is the failure recorded for a prompt that came back
	// without a response. It is the same error the HTTP client returns.
	ErrInvalidResponse = llm.ErrInvalidResponse
)

// BeginGreeting marks the greeting as in flight. It returns false if the
// greeting already ran (or is running) in this session.
func (s *Session) BeginGreeting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.greeted || s.pendingResponse {
		return false
	}
	s.greeted = true
	s.pendingResponse = true
	return true
}

// DoGreeting performs the /start round-trip.
func (s *Session) DoGreeting(ctx context.Context) (string, error) {
	var text string
	err := guard(func() error {
		var err error
		text, err = s.backend.Start(ctx)
		return err
	})
	return text, err
}

// SettleGreeting records the greeting outcome. Failures are logged and leave
// the transcript untouched.
func (s *Session) SettleGreeting(text string, err error) {
	defer s.clearPendingResponse()

	if err == nil && text == "" {
		err = ErrEmptyGreeting
	}
	if err != nil {
		s.logger.Warn("failed to fetch greeting", zap.Error(err))
		return
	}

	s.appendMessage(conversation.KindAssistant, text)
	s.logger.Debug("greeting received", zap.Int("length", len(text)))
}

// Greet runs the greeting flow to completion. It is a no-op after the first
// call.
func (s *Session) Greet(ctx context.Context) {
	if !s.BeginGreeting() {
		return
	}
	text, err := s.DoGreeting(ctx)
	s.SettleGreeting(text, err)
}

// BeginSubmit commits the draft: it trims it, clears the composer, echoes the
// user message into the transcript and marks the response as pending. It
// returns the prompt to send, or false when there is nothing to do (blank
// draft, or a response already pending).
func (s *Session) BeginSubmit() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingResponse {
		return "", false
	}
	prompt := strings.TrimSpace(s.draft)
	if prompt == "" {
		return "", false
	}

	s.draft = ""
	s.followUp = false
	s.appendMessage(conversation.KindUser, prompt)
	s.pendingResponse = true
	return prompt, true
}

// DoQuery performs the /query round-trip.
func (s *Session) DoQuery(ctx context.Context, prompt string) (string, error) {
	var text string
	err := guard(func() error {
		var err error
		text, err = s.backend.Query(ctx, prompt)
		return err
	})
	return text, err
}

// SettleQuery records the outcome of a prompt and returns the message it
// appended.
func (s *Session) SettleQuery(text string, err error) conversation.Message {
	defer s.clearPendingResponse()

	if err == nil && text == "" {
		err = ErrInvalidResponse
	}
	if err != nil {
		s.logger.Warn("query failed", zap.Error(err))

		desc := err.Error()
		if desc == "" {
			desc = defaultQueryFailure
		}
		return s.appendMessage(conversation.KindError, "Error: "+desc)
	}

	return s.appendMessage(conversation.KindAssistant, text)
}

// Submit runs the prompt flow for the current draft. ok is false when the
// submission was a no-op.
func (s *Session) Submit(ctx context.Context) (msg conversation.Message, ok bool) {
	prompt, ok := s.BeginSubmit()
	if !ok {
		return conversation.Message{}, false
	}
	text, err := s.DoQuery(ctx, prompt)
	return s.SettleQuery(text, err), true
}

// BeginUpload marks the selected file as uploading and returns its path. It
// returns false when nothing is selected or an upload is already running.
func (s *Session) BeginUpload() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingUpload || s.selected == "" {
		return "", false
	}
	s.pendingUpload = true
	return s.selected, true
}

// DoUpload sends the file at path to /send under its base name.
func (s *Session) DoUpload(ctx context.Context, path string) error {
	return guard(func() error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()

		return s.backend.Send(ctx, filepath.Base(path), f)
	})
}

// SettleUpload records the upload outcome, then clears the pending flag and
// the selection.
func (s *Session) SettleUpload(path string, err error) conversation.Message {
	defer func() {
		s.mu.Lock()
		s.pendingUpload = false
		s.selected = ""
		s.mu.Unlock()
	}()

	name := filepath.Base(path)
	if err != nil {
		s.logger.Warn("upload failed", zap.String("file", name), zap.Error(err))
		return s.appendMessage(conversation.KindError, "Failed to upload "+name)
	}

	s.logger.Info("upload succeeded", zap.String("file", name))
	return s.appendMessage(conversation.KindSystem, "Successfully uploaded "+name)
}

// Upload runs the upload flow for the selected file.
func (s *Session) Upload(ctx context.Context) (msg conversation.Message, ok bool) {
	path, ok := s.BeginUpload()
	if !ok {
		return conversation.Message{}, false
	}
	err := s.DoUpload(ctx, path)
	return s.SettleUpload(path, err), true
}

func (s *Session) clearPendingResponse() {
	s.mu.Lock()
	s.pendingResponse = false
	s.mu.Unlock()
}

// guard runs fn and turns a panic into an error so a flow always settles.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return fn()
}
