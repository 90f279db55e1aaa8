package memory

import (
	"context"
	"sync"

	"drone-assembly-service/internal/engine"
)

// SessionStore is an in-memory implementation of engine.SessionRepository.
// Sessions live for the process lifetime; there is nothing to restore from,
// so Release keeps them resumable across reconnects.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*engine.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*engine.Session),
	}
}

func (s *SessionStore) GetOrCreate(_ context.Context, sessionID string, create func() *engine.Session) (*engine.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return session, nil
	}
	session := create()
	s.sessions[sessionID] = session
	return session, nil
}

func (s *SessionStore) Get(sessionID string) (*engine.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// Release is a no-op: evicting would lose the only copy of the state.
func (s *SessionStore) Release(string) {}

// Delete removes a session outright. Used by tests.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
