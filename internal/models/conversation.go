package models

import (
	"strconv"
	"sync"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps backend role labels onto a Role. The backend has used both
// "assistant" and "ai" for model turns; anything that is not the user is the assistant.
func ParseRole(s string) Role {
	if s == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

// Message is a single turn in a conversation. Messages are immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one conversation thread with its ordered message log.
// An empty ID marks a local draft that has not been persisted yet.
type Session struct {
	ID           string
	Title        string
	Messages     []Message
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// IsDraft reports whether the session only exists locally.
func (s *Session) IsDraft() bool {
	return s.ID == ""
}

// Summary returns the list entry for the session.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Title:        s.Title,
		CreatedAt:    Time{s.CreatedAt},
		UpdatedAt:    Time{s.UpdatedAt},
		MessageCount: s.MessageCount,
	}
}

// SessionSummary is a session list entry as returned by the history service.
type SessionSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    Time   `json:"created_at"`
	UpdatedAt    Time   `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NewMessageID returns a local message id derived from t in milliseconds.
// IDs are strictly increasing within the process and never reused, even when
// several messages are created in the same millisecond.
func NewMessageID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()

	id := t.UnixMilli()
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return strconv.FormatInt(id, 10)
}

// NewMessage creates a message stamped with now.
func NewMessage(role Role, content string, now time.Time) Message {
	return Message{
		ID:        NewMessageID(now),
		Role:      role,
		Content:   content,
		Timestamp: now,
	}
}

// ChatRequest is one user turn sent to the assistant.
type ChatRequest struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatReply is the assistant's answer. SessionID is the session the backend
// stored the turn in; the backend creates one when the request carried none.
type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id,omitempty"`
}
