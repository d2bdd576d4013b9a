package core

import "sync"

// Log is the append-only conversation history shared by every actor of one
// orchestrator run. It is safe for concurrent access.
//
// Contract:
//   - Append adds to the end and never fails
//   - No deletion or reordering operation exists
//   - Messages and Since return defensive copies
//   - Clone produces an independent log sharing the current prefix
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

// NewLog creates a log seeded with the given messages in order.
func NewLog(seed ...Message) *Log {
	l := &Log{messages: make([]Message, 0, len(seed)+8)}
	l.messages = append(l.messages, seed...)
	return l
}

// Append adds a message to the end of the log.
func (l *Log) Append(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Latest returns the most recent message. The boolean is false (and the
// message zero) when the log is empty.
func (l *Log) Latest() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Messages returns a defensive copy of the full history.
func (l *Log) Messages() []Message {
	return l.Since(0)
}

// Since returns a copy of the messages at positions >= n.
func (l *Log) Since(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(l.messages) {
		return []Message{}
	}
	out := make([]Message, len(l.messages)-n)
	copy(out, l.messages[n:])
	return out
}

// Clone returns an independent log with the same prefix.
func (l *Log) Clone() *Log {
	return NewLog(l.Messages()...)
}
