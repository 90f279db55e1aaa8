package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"drone-assembly-service/internal/domain"
	"drone-assembly-service/internal/engine"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-backed implementation of engine.SessionRepository.
// Live sessions stay in a local map; Redis holds the single serializable
// session blob (parts, lock-event log with frozen questions, counters) so a
// session survives process restarts and reconnects. Persistence is
// best-effort: a write failure is logged, never surfaced to gameplay.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*engine.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*engine.Session),
	}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, sessionID string, create func() *engine.Session) (*engine.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return session, nil
	}

	session := create()
	if blob, err := s.client.Get(ctx, s.key(sessionID)).Bytes(); err == nil {
		var state domain.SessionState
		if err := json.Unmarshal(blob, &state); err != nil {
			log.Printf("session %s: discarding corrupt persisted state: %v", sessionID, err)
		} else if err := session.RestoreState(state); err != nil {
			log.Printf("session %s: discarding stale persisted state: %v", sessionID, err)
		}
	}

	session.SetOnChange(func(state domain.SessionState) {
		s.persist(state)
	})
	s.persist(session.State())

	s.sessions[sessionID] = session
	return session, nil
}

func (s *SessionStore) Get(sessionID string) (*engine.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// Release evicts the in-memory session; the persisted blob keeps it
// resumable through GetOrCreate.
func (s *SessionStore) Release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	s.persist(session.State())
	delete(s.sessions, sessionID)
}

func (s *SessionStore) persist(state domain.SessionState) {
	blob, err := json.Marshal(state)
	if err != nil {
		log.Printf("session %s: marshal state: %v", state.SessionID, err)
		return
	}
	if err := s.client.Set(context.Background(), s.key(state.SessionID), blob, s.ttl).Err(); err != nil {
		log.Printf("session %s: persist state: %v", state.SessionID, err)
	}
}

func (s *SessionStore) key(sessionID string) string {
	return "assembly:session:" + sessionID
}
