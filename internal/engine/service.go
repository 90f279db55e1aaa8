package engine

import (
	"context"

	"drone-assembly-service/internal/board"
	"drone-assembly-service/internal/config"
	"drone-assembly-service/internal/content"
	"drone-assembly-service/internal/domain"
)

// SessionRepository abstracts how sessions are stored (in-memory, Redis-backed).
// GetOrCreate calls create for a cold session; a Redis store additionally
// restores persisted state into it and attaches its persistence hook.
type SessionRepository interface {
	GetOrCreate(ctx context.Context, sessionID string, create func() *Session) (*Session, error)
	Get(sessionID string) (*Session, bool)
	Release(sessionID string)
}

// PackRepository loads lesson-pack content (from cache/backing store).
type PackRepository interface {
	GetPack(ctx context.Context, packID string) (content.Pack, error)
}

// AssemblyService wires the engine use cases to session and content storage.
type AssemblyService struct {
	sessions SessionRepository
	packs    PackRepository
	registry *board.Registry
	packID   string
	rules    config.Rules
}

func NewAssemblyService(sessions SessionRepository, packs PackRepository, registry *board.Registry, packID string, rules config.Rules) *AssemblyService {
	if packID == "" {
		packID = content.DefaultPackID
	}
	return &AssemblyService{
		sessions: sessions,
		packs:    packs,
		registry: registry,
		packID:   packID,
		rules:    rules,
	}
}

// Join loads the lesson pack, creates or resumes the session, and returns its
// snapshot.
func (s *AssemblyService) Join(ctx context.Context, sessionID string) (domain.SessionView, error) {
	pack, err := s.packs.GetPack(ctx, s.packID)
	if err != nil {
		return domain.SessionView{}, err
	}
	if err := pack.Validate(); err != nil {
		return domain.SessionView{}, err
	}

	session, err := s.sessions.GetOrCreate(ctx, sessionID, func() *Session {
		return NewSession(sessionID, s.registry, pack, s.rules)
	})
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.Snapshot(), nil
}

// Drop forwards one drag-end to the placement engine.
func (s *AssemblyService) Drop(ctx context.Context, sessionID, partID string, x, y float64) (domain.DropResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.DropResult{}, domain.ErrSessionNotFound
	}
	return session.AttemptDrop(partID, x, y)
}

// Answer forwards a quiz submission to the session.
func (s *AssemblyService) Answer(ctx context.Context, sessionID, eventID string, optionIndex int) (domain.AnswerResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	return session.SubmitAnswer(eventID, optionIndex)
}

// CloseLesson dismisses the pending quiz dialog without scoring.
func (s *AssemblyService) CloseLesson(_ context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.CloseLesson()
	return nil
}

// SetToggles updates the presentation flags.
func (s *AssemblyService) SetToggles(_ context.Context, sessionID string, toggles domain.Toggles) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.SetToggles(toggles)
	return nil
}

// Reset reinitializes the session and restages all parts.
func (s *AssemblyService) Reset(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.Reset(), nil
}

// Snapshot returns the current read-only projection.
func (s *AssemblyService) Snapshot(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Subscribe returns a channel receiving snapshots after every mutation.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AssemblyService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionView, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leave releases the session once its last subscriber is gone. A persistent
// store evicts it from memory; the blob stays recoverable.
func (s *AssemblyService) Leave(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	if session.SubscriberCount() == 0 {
		s.sessions.Release(sessionID)
	}
}
