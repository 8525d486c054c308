// Package session implements the conversation client: it owns the transcript
// and the session flags, and runs the greeting, prompt and upload flows
// against a Backend.
//
// Every flow comes in two forms. The split form (Begin*, Do*, Settle*) lets an
// event loop mutate state synchronously and run the network round-trip
// elsewhere. The blocking form (Greet, Submit, Upload) chains the three steps
// and always settles, even when the backend panics.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/archiveai/pkg/conversation"
)

// FollowUpPrefix switches the composer into follow-up styling. It has no
// effect on what is sent.
const FollowUpPrefix = "/followup"

// Session is a single client session. The zero value is not usable; create
// one with New.
type Session struct {
	id      string
	backend Backend
	logger  *zap.Logger
	log     *conversation.Log

	// mu guards the flags below. It is never held across a backend call.
	mu              sync.Mutex
	greeted         bool
	pendingResponse bool
	pendingUpload   bool
	draft           string
	followUp        bool
	selected        string
}

// New creates a session talking to backend.
func New(backend Backend, logger *zap.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		backend: backend,
		logger:  logger.With(zap.String("session_id", id)),
		log:     conversation.NewLog(),
	}
}

// ID returns the session identifier used in log lines.
func (s *Session) ID() string {
	return s.id
}

// Messages returns the transcript, oldest first.
func (s *Session) Messages() []conversation.Message {
	return s.log.Messages()
}

// PendingResponse reports whether a greeting or prompt request is in flight.
func (s *Session) PendingResponse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingResponse
}

// PendingUpload reports whether an upload is in flight.
func (s *Session) PendingUpload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingUpload
}

// Draft returns the uncommitted composer text.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the composer text and recomputes the follow-up flag.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
	s.followUp = strings.HasPrefix(text, FollowUpPrefix)
}

// FollowUp reports whether the draft starts with FollowUpPrefix.
func (s *Session) FollowUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.followUp
}

// Selected returns the file picked for upload, or "".
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SelectFile sets the upload selection. It is refused while an upload is in
// flight, matching a disabled upload control.
func (s *Session) SelectFile(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingUpload {
		return false
	}
	s.selected = path
	return true
}

func (s *Session) appendMessage(kind conversation.Kind, content string) conversation.Message {
	msg := conversation.NewMessage(kind, content)
	if err := s.log.Append(msg); err != nil {
		// Only reachable with a programming error in this package.
		s.logger.Error("failed to append message", zap.Error(err))
	}
	return msg
}
