package testutil

import (
	"time"

	"github.com/hupe1980/jobtrack/core"
)

// MessageBuilder provides a fluent helper for constructing inbound messages.
// Example:
//
//	msg := NewMessageBuilder("u1", "c1").Text("I applied to Tesla").Build()
type MessageBuilder struct {
	msg core.Message
}

// NewMessageBuilder creates a builder scoped to (ownerID, conversationID).
func NewMessageBuilder(ownerID, conversationID string) *MessageBuilder {
	return &MessageBuilder{msg: core.Message{OwnerID: ownerID, ConversationID: conversationID}}
}

// Text sets the message text (chainable).
func (b *MessageBuilder) Text(t string) *MessageBuilder { b.msg.Text = t; return b }

// At sets the message timestamp (chainable).
func (b *MessageBuilder) At(ts time.Time) *MessageBuilder { b.msg.Timestamp = ts; return b }

// Build returns the message; a zero timestamp defaults to now.
func (b *MessageBuilder) Build() core.Message {
	m := b.msg
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return m
}
