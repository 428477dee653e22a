package core

import (
	"fmt"
	"strings"
	"time"
)

// SessionKey scopes every turn to one owner's conversation.
type SessionKey struct {
	OwnerID        string `json:"owner_id"`
	ConversationID string `json:"conversation_id"`
}

// String implements fmt.Stringer.
func (k SessionKey) String() string { return k.OwnerID + "/" + k.ConversationID }

// Message is one inbound chat message. It is immutable once received.
type Message struct {
	Text           string    `json:"text"`
	OwnerID        string    `json:"sender_owner_id"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// Key returns the session key of the message.
func (m Message) Key() SessionKey {
	return SessionKey{OwnerID: m.OwnerID, ConversationID: m.ConversationID}
}

// Validate rejects messages that cannot be scoped to a session.
func (m Message) Validate() error {
	if strings.TrimSpace(m.OwnerID) == "" {
		return fmt.Errorf("%w: owner id is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.ConversationID) == "" {
		return fmt.Errorf("%w: conversation id is required", ErrInvalidMessage)
	}
	return nil
}

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one logged message used as context for the reasoning provider.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
