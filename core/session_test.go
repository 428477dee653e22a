package core

import "testing"

func TestSession_CloneIsDeep(t *testing.T) {
	s := NewSession(SessionKey{OwnerID: "u1", ConversationID: "c1"})
	s.Mode = ModeAwaitingSelection
	s.Slots.Companies = []string{"Tesla"}
	s.Candidates = []Candidate{{RecordID: "r1", CompanyName: "Tesla"}}

	clone := s.Clone()
	if clone == s {
		t.Fatal("Clone should be a different pointer")
	}

	clone.Slots.Companies[0] = "xAI"
	clone.Candidates[0].RecordID = "r2"
	if s.Slots.Companies[0] != "Tesla" {
		t.Error("original slots should not change with clone")
	}
	if s.Candidates[0].RecordID != "r1" {
		t.Error("original candidates should not change with clone")
	}
}

func TestSession_NewSessionIsIdle(t *testing.T) {
	key := SessionKey{OwnerID: "u1", ConversationID: "c1"}
	s := NewSession(key)
	if s.Mode != ModeIdle {
		t.Fatalf("expected IDLE, got %s", s.Mode)
	}
	if s.Key() != key {
		t.Fatalf("unexpected key %v", s.Key())
	}
}
