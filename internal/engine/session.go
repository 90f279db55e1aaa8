// Package engine implements the placement-and-scoring engine: part positions,
// zone occupancy, snap detection, locking, scoring deltas, streaks, and the
// exactly-once quiz award rule. All state lives in a Session and every
// operation is one atomic transition under the session mutex.
package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"drone-assembly-service/internal/board"
	"drone-assembly-service/internal/config"
	"drone-assembly-service/internal/content"
	"drone-assembly-service/internal/domain"
)

// Session is one learner's assembly mission.
type Session struct {
	id    string
	reg   *board.Registry
	pack  content.Pack
	rules config.Rules
	now   func() time.Time
	rng   *rand.Rand

	mu          sync.RWMutex
	parts       map[string]*domain.Part
	partOrder   []string
	events      []*domain.LockEvent
	eventByID   map[string]*domain.LockEvent
	pendingID   string
	startTime   time.Time
	score       int
	wrongDrops  int
	streak      int
	bestStreak  int
	quizPoints  int
	quizCorrect int
	quizTotal   int
	won         bool
	toggles     domain.Toggles

	subscribers map[chan domain.SessionView]struct{}
	onChange    func(domain.SessionState)
}

// NewSession creates a session with all parts staged and counters zeroed.
func NewSession(id string, reg *board.Registry, pack content.Pack, rules config.Rules) *Session {
	return NewSessionWithClock(id, reg, pack, rules, time.Now, rand.NewSource(time.Now().UnixNano()))
}

// NewSessionWithClock is for deterministic timestamps and question selection
// in tests.
func NewSessionWithClock(id string, reg *board.Registry, pack content.Pack, rules config.Rules, now func() time.Time, src rand.Source) *Session {
	s := &Session{
		id:          id,
		reg:         reg,
		pack:        pack,
		rules:       rules,
		now:         now,
		rng:         rand.New(src),
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
	s.resetLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetOnChange installs a best-effort persistence hook invoked with the full
// serializable state after every mutation.
func (s *Session) SetOnChange(fn func(domain.SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Session) resetLocked() {
	s.parts = make(map[string]*domain.Part)
	s.partOrder = s.partOrder[:0]
	for _, p := range s.reg.StagedParts() {
		part := p
		s.parts[part.ID] = &part
		s.partOrder = append(s.partOrder, part.ID)
	}
	s.events = nil
	s.eventByID = make(map[string]*domain.LockEvent)
	s.pendingID = ""
	s.startTime = s.now()
	s.score = 0
	s.wrongDrops = 0
	s.streak = 0
	s.bestStreak = 0
	s.quizPoints = 0
	s.quizCorrect = 0
	s.quizTotal = 0
	s.won = false
	s.toggles = domain.DefaultToggles()
}

// Reset restages all parts and replaces the session state wholesale.
func (s *Session) Reset() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	return s.commitLocked()
}

// AttemptDrop evaluates one completed drag gesture. Game-logic outcomes
// (moved, occupied, wrong-kind) are results, not errors; only an unknown part
// ID errors.
func (s *Session) AttemptDrop(partID string, x, y float64) (domain.DropResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	part, ok := s.parts[partID]
	if !ok {
		return domain.DropResult{}, fmt.Errorf("%w: %q", domain.ErrPartNotFound, partID)
	}

	// A locked part can never be moved by drag.
	if part.Locked {
		return domain.DropResult{Outcome: domain.DropIgnoredLocked, Position: part.Position, ZoneKey: part.LockedZone}, nil
	}

	// The UI already moved the visual node; record the raw position before
	// deciding anything else.
	raw := domain.Point{X: x, Y: y}
	part.Position = raw

	zone, dist := s.reg.Nearest(raw)
	if dist > s.rules.SnapRadius {
		result := domain.DropResult{Outcome: domain.DropMoved, Position: raw}
		s.commitLocked()
		return result, nil
	}

	// Only locked parts create occupancy conflicts.
	if occupant := s.lockedOccupantLocked(zone.Key); occupant != nil && occupant.ID != part.ID {
		s.wrongDrops++
		s.score += s.rules.WrongPenalty
		result := domain.DropResult{
			Outcome:    domain.DropOccupied,
			ScoreDelta: s.rules.WrongPenalty,
			Position:   raw,
			ZoneKey:    zone.Key,
		}
		s.commitLocked()
		return result, nil
	}

	// Snap: the zone anchor is authoritative, the raw drop point is discarded.
	part.Position = zone.Position

	if !zone.Allows(part.Kind) {
		s.wrongDrops++
		s.score += s.rules.WrongPenalty
		result := domain.DropResult{
			Outcome:    domain.DropWrongKind,
			ScoreDelta: s.rules.WrongPenalty,
			Position:   part.Position,
			ZoneKey:    zone.Key,
		}
		s.commitLocked()
		return result, nil
	}

	delta := s.rules.CorrectReward
	s.score += delta

	if !s.toggles.LockOnCorrect {
		result := domain.DropResult{
			Outcome:    domain.DropCorrectUnlocked,
			ScoreDelta: delta,
			Position:   part.Position,
			ZoneKey:    zone.Key,
		}
		s.commitLocked()
		return result, nil
	}

	s.score += s.rules.LockBonus
	delta += s.rules.LockBonus
	part.Locked = true
	part.LockedZone = zone.Key

	event := s.newLockEventLocked(part, zone)
	s.events = append(s.events, event)
	s.eventByID[event.EventID] = event
	s.pendingID = event.EventID

	justWon := false
	if !s.won && s.allLockedLocked() {
		s.won = true
		justWon = true
	}

	eventCopy := *event
	result := domain.DropResult{
		Outcome:    domain.DropLocked,
		ScoreDelta: delta,
		Position:   part.Position,
		ZoneKey:    zone.Key,
		Event:      &eventCopy,
		JustWon:    justWon,
	}
	s.commitLocked()
	return result, nil
}

// newLockEventLocked freezes the lesson and one question variant into the
// event so redisplay never reselects.
func (s *Session) newLockEventLocked(part *domain.Part, zone domain.Zone) *domain.LockEvent {
	lesson, err := s.pack.Lesson(part.Kind)
	if err != nil {
		// Packs are validated to cover every kind before a session exists.
		panic(err)
	}
	question := lesson.Questions[s.rng.Intn(len(lesson.Questions))]
	now := s.now()
	return &domain.LockEvent{
		EventID:   fmt.Sprintf("%d_%s_%s", now.UnixMilli(), part.ID, zone.Key),
		PartID:    part.ID,
		PartLabel: part.Label,
		PartKind:  part.Kind,
		ZoneKey:   zone.Key,
		ZoneName:  zone.DisplayName,
		CreatedAt: now,
		Title:     lesson.Title,
		Summary:   lesson.Summary,
		Gotchas:   lesson.Gotchas,
		Question:  question,
	}
}

// SubmitAnswer scores a quiz submission for a lock event. A replay on an
// already-scored event is a no-op that reports AlreadyScored.
func (s *Session) SubmitAnswer(eventID string, optionIndex int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.eventByID[eventID]
	if !ok {
		return domain.AnswerResult{}, fmt.Errorf("%w: %q", domain.ErrEventNotFound, eventID)
	}

	if event.Scored {
		result := domain.AnswerResult{
			EventID:       eventID,
			AlreadyScored: true,
			CorrectIndex:  event.Question.CorrectIndex,
			Streak:        s.streak,
			BestStreak:    s.bestStreak,
		}
		if event.WasCorrect != nil {
			result.Correct = *event.WasCorrect
		}
		return result, nil
	}

	correct := optionIndex == event.Question.CorrectIndex
	event.Scored = true
	event.WasCorrect = &correct
	s.quizTotal++

	var delta int
	bonus := false
	if correct {
		s.quizCorrect++
		delta = s.rules.QuizCorrect
		s.streak++
		if s.streak > s.bestStreak {
			s.bestStreak = s.streak
		}
		if s.rules.StreakEvery > 0 && s.streak%s.rules.StreakEvery == 0 {
			delta += s.rules.StreakBonus
			bonus = true
		}
	} else {
		delta = s.rules.QuizWrong
		s.streak = 0
	}
	s.score += delta
	s.quizPoints += delta

	result := domain.AnswerResult{
		EventID:      eventID,
		Correct:      correct,
		CorrectIndex: event.Question.CorrectIndex,
		ScoreDelta:   delta,
		Streak:       s.streak,
		BestStreak:   s.bestStreak,
		StreakBonus:  bonus,
	}
	s.commitLocked()
	return result, nil
}

// CloseLesson dismisses the pending quiz dialog without scoring it. The event
// stays in the log and remains answerable later.
func (s *Session) CloseLesson() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingID == "" {
		return
	}
	s.pendingID = ""
	s.commitLocked()
}

// SetToggles replaces the presentation flags. Only LockOnCorrect affects
// engine behavior; the rest are passed through to snapshots untouched.
func (s *Session) SetToggles(t domain.Toggles) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggles = t
	s.commitLocked()
}

// Grade recomputes the mission grade from current counters.
func (s *Session) Grade() domain.Grade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gradeLocked()
}

func (s *Session) gradeLocked() domain.Grade {
	elapsed := s.now().Sub(s.startTime)
	return ComputeGrade(elapsed, s.wrongDrops, s.quizCorrect, s.quizTotal, s.bestStreak)
}

// Snapshot returns the read-only projection for rendering.
func (s *Session) Snapshot() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.SessionView {
	now := s.now()
	parts := make([]domain.Part, 0, len(s.partOrder))
	locked := 0
	for _, id := range s.partOrder {
		p := *s.parts[id]
		parts = append(parts, p)
		if p.Locked {
			locked++
		}
	}

	occupancy := s.occupancyLocked()

	buildLog := make([]domain.LockEvent, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		buildLog = append(buildLog, *s.events[i])
	}

	var pending *domain.LockEvent
	if s.pendingID != "" {
		if ev, ok := s.eventByID[s.pendingID]; ok {
			evCopy := *ev
			pending = &evCopy
		}
	}

	return domain.SessionView{
		SessionID:       s.id,
		Score:           s.score,
		ElapsedSeconds:  int(now.Sub(s.startTime).Seconds()),
		WrongDrops:      s.wrongDrops,
		QuizStreak:      s.streak,
		QuizBestStreak:  s.bestStreak,
		QuizPointsTotal: s.quizPoints,
		QuizCorrect:     s.quizCorrect,
		QuizAttempts:    s.quizTotal,
		Grade:           s.gradeLocked(),
		Parts:           parts,
		Occupancy:       occupancy,
		FilledZones:     len(occupancy),
		TotalZones:      s.reg.ZoneCount(),
		LockedParts:     locked,
		TotalParts:      len(parts),
		Won:             s.won,
		Pending:         pending,
		BuildLog:        buildLog,
		Toggles:         s.toggles,
		UpdatedAt:       now,
	}
}

// occupancyLocked derives the zone->part map from the part store; it is a
// computed view, never stored. A locked part claims its zone; an unlocked
// part parked exactly on a free zone anchor occupies it visually.
func (s *Session) occupancyLocked() map[string]string {
	occupancy := make(map[string]string)
	for _, id := range s.partOrder {
		p := s.parts[id]
		if p.Locked {
			occupancy[p.LockedZone] = p.ID
		}
	}
	for _, z := range s.reg.Zones() {
		if _, taken := occupancy[z.Key]; taken {
			continue
		}
		for _, id := range s.partOrder {
			p := s.parts[id]
			if !p.Locked && p.Position == z.Position {
				occupancy[z.Key] = p.ID
				break
			}
		}
	}
	return occupancy
}

func (s *Session) lockedOccupantLocked(zoneKey string) *domain.Part {
	for _, id := range s.partOrder {
		p := s.parts[id]
		if p.Locked && p.LockedZone == zoneKey {
			return p
		}
	}
	return nil
}

func (s *Session) allLockedLocked() bool {
	for _, id := range s.partOrder {
		if !s.parts[id].Locked {
			return false
		}
	}
	return len(s.partOrder) > 0
}

// State returns the serializable session blob.
func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() domain.SessionState {
	parts := make([]domain.Part, 0, len(s.partOrder))
	for _, id := range s.partOrder {
		parts = append(parts, *s.parts[id])
	}
	events := make([]domain.LockEvent, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, *ev)
	}
	return domain.SessionState{
		SessionID:       s.id,
		StartTime:       s.startTime,
		Score:           s.score,
		WrongDrops:      s.wrongDrops,
		QuizStreak:      s.streak,
		QuizBestStreak:  s.bestStreak,
		QuizPointsTotal: s.quizPoints,
		QuizCorrect:     s.quizCorrect,
		QuizAttempts:    s.quizTotal,
		Won:             s.won,
		PendingEventID:  s.pendingID,
		Toggles:         s.toggles,
		Parts:           parts,
		Events:          events,
	}
}

// RestoreState replaces the session contents with a persisted blob.
func (s *Session) RestoreState(state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := make(map[string]*domain.Part, len(state.Parts))
	order := make([]string, 0, len(state.Parts))
	for i := range state.Parts {
		p := state.Parts[i]
		if _, dup := parts[p.ID]; dup {
			return fmt.Errorf("restore session %s: duplicate part %q", s.id, p.ID)
		}
		if p.Locked != (p.LockedZone != "") {
			return fmt.Errorf("restore session %s: part %q locked/zone mismatch", s.id, p.ID)
		}
		if p.LockedZone != "" {
			if _, err := s.reg.ZoneByKey(p.LockedZone); err != nil {
				return fmt.Errorf("restore session %s: part %q: %w", s.id, p.ID, err)
			}
		}
		parts[p.ID] = &p
		order = append(order, p.ID)
	}

	events := make([]*domain.LockEvent, 0, len(state.Events))
	byID := make(map[string]*domain.LockEvent, len(state.Events))
	for i := range state.Events {
		ev := state.Events[i]
		events = append(events, &ev)
		byID[ev.EventID] = &ev
	}
	if state.PendingEventID != "" {
		if _, ok := byID[state.PendingEventID]; !ok {
			return fmt.Errorf("restore session %s: pending event %q not in log", s.id, state.PendingEventID)
		}
	}

	s.parts = parts
	s.partOrder = order
	s.events = events
	s.eventByID = byID
	s.pendingID = state.PendingEventID
	s.startTime = state.StartTime
	s.score = state.Score
	s.wrongDrops = state.WrongDrops
	s.streak = state.QuizStreak
	s.bestStreak = state.QuizBestStreak
	s.quizPoints = state.QuizPointsTotal
	s.quizCorrect = state.QuizCorrect
	s.quizTotal = state.QuizAttempts
	s.won = state.Won
	s.toggles = state.Toggles
	return nil
}

// Subscribe returns a channel receiving a snapshot after every mutation.
// The caller must invoke the cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// SubscriberCount reports active snapshot subscribers.
func (s *Session) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// commitLocked finishes a mutation: fan the new snapshot out to subscribers
// (dropping stale updates for slow consumers) and run the persistence hook.
func (s *Session) commitLocked() domain.SessionView {
	view := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	if s.onChange != nil {
		s.onChange(s.stateLocked())
	}
	return view
}
