// Package transcript holds the per-conversation message history.
package transcript

import (
	"sync"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one utterance in a conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Space separates general chat history from study-mode history.
type Space string

const (
	SpaceChat  Space = "chat"
	SpaceStudy Space = "study"
)

// Key names one conversation: a space plus the subject it belongs to.
type Key struct {
	Space Space  `json:"space"`
	ID    string `json:"id"`
}

// ChatKey returns the general-chat key for a subject id.
func ChatKey(subjectID string) Key { return Key{Space: SpaceChat, ID: subjectID} }

// StudyKey returns the study-mode key for a subject id.
func StudyKey(subjectID string) Key { return Key{Space: SpaceStudy, ID: subjectID} }

func (k Key) String() string { return string(k.Space) + "/" + k.ID }

// Store keeps ordered message sequences keyed by conversation.
// Sequences are append-only; readers always get a copy.
type Store struct {
	mu    sync.RWMutex
	convs map[Key][]Message
	now   func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		convs: make(map[Key][]Message),
		now:   time.Now,
	}
}

// Append adds a message to the end of key's sequence, creating the
// sequence when absent.
func (s *Store) Append(key Key, role Role, content string) Message {
	msg := Message{Role: role, Content: content, CreatedAt: s.now().UTC()}
	s.mu.Lock()
	s.convs[key] = append(s.convs[key], msg)
	s.mu.Unlock()
	return msg
}

// Get returns a copy of key's sequence, or an empty slice.
func (s *Store) Get(key Key) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.convs[key]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Load replaces key's sequence.
func (s *Store) Load(key Key, msgs []Message) {
	cp := make([]Message, len(msgs))
	copy(cp, msgs)
	s.mu.Lock()
	s.convs[key] = cp
	s.mu.Unlock()
}

// Len returns the number of messages stored under key.
func (s *Store) Len(key Key) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs[key])
}

// Clear drops every in-memory sequence.
func (s *Store) Clear() {
	s.mu.Lock()
	s.convs = make(map[Key][]Message)
	s.mu.Unlock()
}

// Window returns at most the newest max messages of msgs.
// max <= 0 returns msgs unchanged.
func Window(msgs []Message, max int) []Message {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}
	return msgs[len(msgs)-max:]
}
