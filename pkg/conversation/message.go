// Package conversation holds the chat transcript: an ordered, append-only
// log of messages owned by a single client session.
package conversation

import "time"

// Kind is the type of a message. It decides how the message is rendered and
// never changes after creation.
type Kind string

const (
	KindUser      Kind = "user"
	KindAssistant Kind = "assistant"
	KindSystem    Kind = "system"
	KindError     Kind = "error"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindUser, KindAssistant, KindSystem, KindError:
		return true
	}
	return false
}

// Message is a single transcript entry.
type Message struct {
	Kind      Kind      `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(kind Kind, content string) Message {
	return Message{
		Kind:      kind,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
