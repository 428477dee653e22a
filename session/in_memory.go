package session

import (
	"context"
	"sync"

	"github.com/hupe1980/jobtrack/core"
)

// InMemoryStore is a volatile SessionStore implementation storing
// sessions in a process local map. It is safe for concurrent access and best
// suited for tests or ephemeral demo servers. Each returned session is cloned
// to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[core.SessionKey]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[core.SessionKey]*core.Session)}
}

// Get returns a clone of the stored session or a new idle one. Nothing is
// stored until Save.
func (s *InMemoryStore) Get(_ context.Context, key core.SessionKey) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[key]; ok {
		return session.Clone(), nil
	}
	return core.NewSession(key), nil
}

// Save stores a clone of the provided session snapshot.
func (s *InMemoryStore) Save(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Key()] = session.Clone()
	return nil
}

// Len returns the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// DefaultHistoryCap bounds the turns kept per conversation.
const DefaultHistoryCap = 50

// InMemoryHistory is a volatile HistoryStore keeping the most recent turns
// of every conversation.
type InMemoryHistory struct {
	mu    sync.RWMutex
	limit int
	turns map[core.SessionKey][]core.Turn
}

// NewInMemoryHistory constructs a history store keeping up to capacity turns
// per conversation (DefaultHistoryCap when capacity <= 0).
func NewInMemoryHistory(capacity int) *InMemoryHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &InMemoryHistory{limit: capacity, turns: make(map[core.SessionKey][]core.Turn)}
}

// Append adds a turn, dropping the oldest beyond capacity.
func (h *InMemoryHistory) Append(_ context.Context, key core.SessionKey, turn core.Turn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := append(h.turns[key], turn)
	if len(turns) > h.limit {
		turns = append([]core.Turn(nil), turns[len(turns)-h.limit:]...)
	}
	h.turns[key] = turns
	return nil
}

// Recent returns up to limit most recent turns, oldest first.
func (h *InMemoryHistory) Recent(_ context.Context, key core.SessionKey, limit int) ([]core.Turn, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	turns := h.turns[key]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return append([]core.Turn(nil), turns...), nil
}
