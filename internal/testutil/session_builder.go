package testutil

import (
	"github.com/hupe1980/jobtrack/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("u1", "c1").AwaitingSlots(core.Slots{JobTitle: "SWE"}).Build()
type SessionBuilder struct {
	key        core.SessionKey
	mode       core.Mode
	slots      core.Slots
	op         core.PendingOperation
	candidates []core.Candidate
}

// NewSessionBuilder creates a new builder for an idle session.
// Use chainable methods (AwaitingSlots, AwaitingSelection) then call Build.
func NewSessionBuilder(ownerID, conversationID string) *SessionBuilder {
	return &SessionBuilder{
		key:  core.SessionKey{OwnerID: ownerID, ConversationID: conversationID},
		mode: core.ModeIdle,
	}
}

// AwaitingSlots puts the session into slot collection with slots known (chainable).
func (b *SessionBuilder) AwaitingSlots(slots core.Slots) *SessionBuilder {
	b.mode = core.ModeAwaitingSlot
	b.slots = slots
	b.op = core.PendingOperation{Intent: core.IntentNewJob}
	return b
}

// AwaitingSelection puts the session into candidate selection for op (chainable).
func (b *SessionBuilder) AwaitingSelection(op core.PendingOperation, cands ...core.Candidate) *SessionBuilder {
	b.mode = core.ModeAwaitingSelection
	b.op = op
	b.candidates = append(b.candidates, cands...)
	return b
}

// Build returns a *core.Session with the configured pending state.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.key)
	s.Mode = b.mode
	s.Slots = b.slots.Clone()
	s.Operation = b.op
	s.Candidates = append([]core.Candidate(nil), b.candidates...)
	return s
}
