package core

import "time"

// Mode is the pending state of a conversation.
type Mode string

const (
	ModeIdle              Mode = "IDLE"
	ModeAwaitingSlot      Mode = "AWAITING_SLOT"
	ModeAwaitingSelection Mode = "AWAITING_SELECTION"
)

// Slots hold the known fields of an in-progress job creation.
type Slots struct {
	JobTitle  string   `json:"job_title,omitempty"`
	Companies []string `json:"companies,omitempty"`
	Status    Status   `json:"status,omitempty"`
	Link      string   `json:"link,omitempty"`

	// LinkChecked is set once enrichment ran for Link.
	LinkChecked bool `json:"link_checked,omitempty"`
}

// Clone returns a copy that shares no slices with s.
func (s Slots) Clone() Slots {
	c := s
	c.Companies = append([]string(nil), s.Companies...)
	return c
}

// View is the user-facing projection of the slots.
func (s Slots) View() *SlotsView {
	return &SlotsView{JobTitle: s.JobTitle, Companies: append([]string(nil), s.Companies...), Status: s.Status, Link: s.Link}
}

// SlotsView mirrors Slots for phrasers.
type SlotsView struct {
	JobTitle  string   `json:"job_title,omitempty"`
	Companies []string `json:"companies,omitempty"`
	Status    Status   `json:"status,omitempty"`
	Link      string   `json:"link,omitempty"`
}

// PendingOperation is the operation a pending selection resolves to.
type PendingOperation struct {
	Intent Intent `json:"intent,omitempty"`
	Status Status `json:"status,omitempty"`
}

// Session tracks the pending state of one (owner, conversation). It is
// created on the first message and mutated after every turn.
type Session struct {
	OwnerID        string           `json:"owner_id"`
	ConversationID string           `json:"conversation_id"`
	Mode           Mode             `json:"pending_mode"`
	Slots          Slots            `json:"pending_slots"`
	Operation      PendingOperation `json:"pending_operation"`
	Candidates     []Candidate      `json:"pending_candidates,omitempty"`
	LastActivityAt time.Time        `json:"last_activity_at"`
}

// NewSession creates an idle session for key.
func NewSession(key SessionKey) *Session {
	return &Session{OwnerID: key.OwnerID, ConversationID: key.ConversationID, Mode: ModeIdle}
}

// Key returns the session key.
func (s *Session) Key() SessionKey {
	return SessionKey{OwnerID: s.OwnerID, ConversationID: s.ConversationID}
}

// Clone returns a deep copy safe for independent mutation.
func (s *Session) Clone() *Session {
	c := *s
	c.Slots = s.Slots.Clone()
	c.Candidates = append([]Candidate(nil), s.Candidates...)
	return &c
}
