package conversation

import (
	"fmt"
	"sync"
)

// Log is an ordered, append-only sequence of messages. Insertion order is the
// chat order; nothing is ever reordered or removed.
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds msg to the end of the log.
func (l *Log) Append(msg Message) error {
	if !msg.Kind.Valid() {
		return fmt.Errorf("invalid message kind %q", msg.Kind)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, msg)
	return nil
}

// Messages returns a copy of the log, oldest first.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the newest message, if any.
func (l *Log) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}
