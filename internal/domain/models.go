package domain

import (
	"math"
	"time"
)

// Point is a normalized schematic coordinate in [0,1]x[0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Hypot(dx, dy)
}

// Zone is a fixed drop target on the schematic. Zones are immutable static
// data; Position is the snap anchor and AllowedKinds the correctness rule.
type Zone struct {
	Key          string `json:"key"`
	DisplayName  string `json:"displayName"`
	Position     Point  `json:"position"`
	AllowedKinds []Kind `json:"allowedKinds"`
}

// Allows reports whether the zone accepts parts of the given kind.
func (z Zone) Allows(kind Kind) bool {
	for _, k := range z.AllowedKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Part is a draggable entity. Locked is true iff LockedZone is set; a locked
// part can never be moved again within the session.
type Part struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Kind       Kind   `json:"kind"`
	Position   Point  `json:"position"`
	Locked     bool   `json:"locked"`
	LockedZone string `json:"lockedZone,omitempty"`
}

// Question is a single multiple-choice check frozen into a lock event.
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// LockEvent records one successful lock. The lesson content and question are
// frozen at creation time so reopening the dialog never reselects; Scored
// flips exactly once and gates all quiz rewards for this event.
type LockEvent struct {
	EventID    string    `json:"eventId"`
	PartID     string    `json:"partId"`
	PartLabel  string    `json:"partLabel"`
	PartKind   Kind      `json:"partKind"`
	ZoneKey    string    `json:"zoneKey"`
	ZoneName   string    `json:"zoneName"`
	CreatedAt  time.Time `json:"createdAt"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Gotchas    []string  `json:"gotchas,omitempty"`
	Question   Question  `json:"question"`
	Scored     bool      `json:"scored"`
	WasCorrect *bool     `json:"wasCorrect,omitempty"`
}

// DropOutcome classifies the result of a drag-end. These are modeled game
// outcomes, not errors; only unknown IDs error out of the engine.
type DropOutcome string

const (
	DropIgnoredLocked   DropOutcome = "ignored-locked"
	DropMoved           DropOutcome = "moved"
	DropOccupied        DropOutcome = "occupied"
	DropWrongKind       DropOutcome = "wrong-kind"
	DropCorrectUnlocked DropOutcome = "correct-unlocked"
	DropLocked          DropOutcome = "locked"
)

// DropResult is returned by the placement engine for every completed drag.
type DropResult struct {
	Outcome    DropOutcome `json:"outcome"`
	ScoreDelta int         `json:"scoreDelta"`
	Position   Point       `json:"position"`
	ZoneKey    string      `json:"zoneKey,omitempty"`
	Event      *LockEvent  `json:"event,omitempty"`
	JustWon    bool        `json:"justWon,omitempty"`
}

// AnswerResult summarizes one quiz submission. AlreadyScored marks the
// anti-farming no-op path: nothing changed, the original verdict is echoed.
type AnswerResult struct {
	EventID       string `json:"eventId"`
	AlreadyScored bool   `json:"alreadyScored"`
	Correct       bool   `json:"correct"`
	CorrectIndex  int    `json:"correctIndex"`
	ScoreDelta    int    `json:"scoreDelta"`
	Streak        int    `json:"streak"`
	BestStreak    int    `json:"bestStreak"`
	StreakBonus   bool   `json:"streakBonus,omitempty"`
}

// Toggles are presentation flags carried through the session untouched;
// only LockOnCorrect changes engine behavior.
type Toggles struct {
	Hints         bool `json:"hints"`
	ZoneLabels    bool `json:"zoneLabels"`
	LockOnCorrect bool `json:"lockOnCorrect"`
	Sound         bool `json:"sound"`
}

// DefaultToggles matches the original trainer defaults (everything on).
func DefaultToggles() Toggles {
	return Toggles{Hints: true, ZoneLabels: true, LockOnCorrect: true, Sound: true}
}

// Grade is the derived mission grade. Purely computed from session counters,
// never persisted.
type Grade struct {
	Letter        string  `json:"letter"`
	Score         float64 `json:"score"`
	TimeScore     float64 `json:"timeScore"`
	AccuracyScore float64 `json:"accuracyScore"`
	StreakScore   float64 `json:"streakScore"`
	Penalty       float64 `json:"penalty"`
}

// SessionView is the read-only projection handed to presentation.
type SessionView struct {
	SessionID       string            `json:"sessionId"`
	Score           int               `json:"score"`
	ElapsedSeconds  int               `json:"elapsedSeconds"`
	WrongDrops      int               `json:"wrongDrops"`
	QuizStreak      int               `json:"quizStreak"`
	QuizBestStreak  int               `json:"quizBestStreak"`
	QuizPointsTotal int               `json:"quizPointsTotal"`
	QuizCorrect     int               `json:"quizCorrect"`
	QuizAttempts    int               `json:"quizAttempts"`
	Grade           Grade             `json:"grade"`
	Parts           []Part            `json:"parts"`
	Occupancy       map[string]string `json:"occupancy"`
	FilledZones     int               `json:"filledZones"`
	TotalZones      int               `json:"totalZones"`
	LockedParts     int               `json:"lockedParts"`
	TotalParts      int               `json:"totalParts"`
	Won             bool              `json:"won"`
	Pending         *LockEvent        `json:"pending,omitempty"`
	BuildLog        []LockEvent       `json:"buildLog"`
	Toggles         Toggles           `json:"toggles"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// SessionState is the single serializable blob a session persists: the part
// array, the lock-event log with frozen questions, and the scalar counters.
type SessionState struct {
	SessionID       string      `json:"sessionId"`
	StartTime       time.Time   `json:"startTime"`
	Score           int         `json:"score"`
	WrongDrops      int         `json:"wrongDrops"`
	QuizStreak      int         `json:"quizStreak"`
	QuizBestStreak  int         `json:"quizBestStreak"`
	QuizPointsTotal int         `json:"quizPointsTotal"`
	QuizCorrect     int         `json:"quizCorrect"`
	QuizAttempts    int         `json:"quizAttempts"`
	Won             bool        `json:"won"`
	PendingEventID  string      `json:"pendingEventId,omitempty"`
	Toggles         Toggles     `json:"toggles"`
	Parts           []Part      `json:"parts"`
	Events          []LockEvent `json:"events"`
}
