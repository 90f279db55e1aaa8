package engine_test

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"drone-assembly-service/internal/board"
	"drone-assembly-service/internal/config"
	"drone-assembly-service/internal/content"
	"drone-assembly-service/internal/domain"
	"drone-assembly-service/internal/engine"
)

func newTestSession(t *testing.T) *engine.Session {
	t.Helper()
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	return engine.NewSessionWithClock("s1", board.Default(), content.Builtin(), config.DefaultRules(), func() time.Time { return base }, rand.NewSource(1))
}

func mustDrop(t *testing.T, s *engine.Session, partID string, x, y float64) domain.DropResult {
	t.Helper()
	result, err := s.AttemptDrop(partID, x, y)
	if err != nil {
		t.Fatalf("drop %s: %v", partID, err)
	}
	return result
}

func zoneCenter(t *testing.T, key string) domain.Point {
	t.Helper()
	z, err := board.Default().ZoneByKey(key)
	if err != nil {
		t.Fatalf("zone %s: %v", key, err)
	}
	return z.Position
}

func TestCorrectDropLocksAndAwards(t *testing.T) {
	s := newTestSession(t)

	center := zoneCenter(t, "z_prop_tl")
	result := mustDrop(t, s, "prop-1", center.X+0.01, center.Y-0.01)

	if result.Outcome != domain.DropLocked {
		t.Fatalf("expected locked outcome, got %s", result.Outcome)
	}
	if result.ScoreDelta != 25 {
		t.Fatalf("expected +25 (correct 10 + lock 15), got %d", result.ScoreDelta)
	}
	if result.Position != center {
		t.Fatalf("expected snap to exact zone center %+v, got %+v", center, result.Position)
	}
	if result.Event == nil || result.Event.Question.Prompt == "" {
		t.Fatalf("expected lock event with frozen question, got %+v", result.Event)
	}

	view := s.Snapshot()
	if view.Score != 25 {
		t.Fatalf("expected score 25, got %d", view.Score)
	}
	if view.Pending == nil || view.Pending.EventID != result.Event.EventID {
		t.Fatalf("expected pending event %s, got %+v", result.Event.EventID, view.Pending)
	}
	if len(view.BuildLog) != 1 {
		t.Fatalf("expected 1 build log entry, got %d", len(view.BuildLog))
	}
	if view.Occupancy["z_prop_tl"] != "prop-1" {
		t.Fatalf("expected prop-1 occupying z_prop_tl, got %v", view.Occupancy)
	}
}

func TestFrozenQuestionNeverReselects(t *testing.T) {
	s := newTestSession(t)
	center := zoneCenter(t, "z_prop_tl")
	result := mustDrop(t, s, "prop-1", center.X, center.Y)

	frozen := result.Event.Question
	for i := 0; i < 5; i++ {
		view := s.Snapshot()
		if view.Pending.Question.Prompt != frozen.Prompt || view.Pending.Question.CorrectIndex != frozen.CorrectIndex {
			t.Fatalf("question changed on redisplay: %+v vs %+v", view.Pending.Question, frozen)
		}
	}
}

func TestWrongKindParksAtCenterUnlocked(t *testing.T) {
	s := newTestSession(t)

	center := zoneCenter(t, "z_prop_tl")
	result := mustDrop(t, s, "motor-1", center.X, center.Y)

	if result.Outcome != domain.DropWrongKind {
		t.Fatalf("expected wrong-kind, got %s", result.Outcome)
	}
	if result.ScoreDelta != -3 {
		t.Fatalf("expected -3, got %d", result.ScoreDelta)
	}

	view := s.Snapshot()
	if view.Score != -3 {
		t.Fatalf("expected score -3, got %d", view.Score)
	}
	if view.WrongDrops != 1 {
		t.Fatalf("expected 1 wrong drop, got %d", view.WrongDrops)
	}
	for _, p := range view.Parts {
		if p.ID != "motor-1" {
			continue
		}
		if p.Position != center {
			t.Fatalf("expected motor-1 parked at zone center, got %+v", p.Position)
		}
		if p.Locked {
			t.Fatalf("wrong-kind part must stay unlocked")
		}
	}
}

func TestMovedOutsideSnapRadius(t *testing.T) {
	s := newTestSession(t)

	result := mustDrop(t, s, "prop-1", 0.45, 0.95)
	if result.Outcome != domain.DropMoved {
		t.Fatalf("expected moved, got %s", result.Outcome)
	}
	if result.ScoreDelta != 0 {
		t.Fatalf("free move must not score, got %d", result.ScoreDelta)
	}
	if result.Position != (domain.Point{X: 0.45, Y: 0.95}) {
		t.Fatalf("free move keeps the raw position, got %+v", result.Position)
	}
}

func TestLockedPartIgnoresFurtherDrops(t *testing.T) {
	s := newTestSession(t)
	center := zoneCenter(t, "z_prop_tl")
	mustDrop(t, s, "prop-1", center.X, center.Y)

	for _, target := range []domain.Point{{X: 0.5, Y: 0.5}, zoneCenter(t, "z_prop_tr"), {X: 0.0, Y: 0.0}} {
		result := mustDrop(t, s, "prop-1", target.X, target.Y)
		if result.Outcome != domain.DropIgnoredLocked {
			t.Fatalf("expected ignored-locked, got %s", result.Outcome)
		}
	}

	view := s.Snapshot()
	for _, p := range view.Parts {
		if p.ID == "prop-1" {
			if !p.Locked || p.LockedZone != "z_prop_tl" || p.Position != center {
				t.Fatalf("locking must be monotonic, got %+v", p)
			}
		}
	}
}

func TestOccupiedZoneRejectsSecondPart(t *testing.T) {
	s := newTestSession(t)
	center := zoneCenter(t, "z_prop_tl")
	mustDrop(t, s, "prop-1", center.X, center.Y)

	raw := domain.Point{X: center.X + 0.02, Y: center.Y + 0.01}
	result := mustDrop(t, s, "prop-2", raw.X, raw.Y)

	if result.Outcome != domain.DropOccupied {
		t.Fatalf("expected occupied, got %s", result.Outcome)
	}
	if result.ScoreDelta != -3 {
		t.Fatalf("occupied carries the wrong-drop penalty, got %d", result.ScoreDelta)
	}
	if result.Position != raw {
		t.Fatalf("occupied drop must stay unsnapped at %+v, got %+v", raw, result.Position)
	}

	view := s.Snapshot()
	if view.Occupancy["z_prop_tl"] != "prop-1" {
		t.Fatalf("zone must keep its locked occupant, got %v", view.Occupancy)
	}
}

func TestUnlockedOccupantDoesNotBlock(t *testing.T) {
	s := newTestSession(t)
	center := zoneCenter(t, "z_prop_tl")

	// Park a wrong-kind part on the zone, then drop the right part there.
	mustDrop(t, s, "motor-1", center.X, center.Y)
	result := mustDrop(t, s, "prop-1", center.X, center.Y)

	if result.Outcome != domain.DropLocked {
		t.Fatalf("unlocked parts must not create occupancy conflicts, got %s", result.Outcome)
	}
}

func TestLockOnCorrectToggleOff(t *testing.T) {
	s := newTestSession(t)
	toggles := domain.DefaultToggles()
	toggles.LockOnCorrect = false
	s.SetToggles(toggles)

	center := zoneCenter(t, "z_prop_tl")
	result := mustDrop(t, s, "prop-1", center.X, center.Y)

	if result.Outcome != domain.DropCorrectUnlocked {
		t.Fatalf("expected correct-unlocked, got %s", result.Outcome)
	}
	if result.ScoreDelta != 10 {
		t.Fatalf("no lock bonus without locking, got %d", result.ScoreDelta)
	}
	if result.Event != nil {
		t.Fatalf("no lock event without locking")
	}

	// Re-dragging re-triggers the whole evaluation.
	again := mustDrop(t, s, "prop-1", center.X+0.01, center.Y)
	if again.Outcome != domain.DropCorrectUnlocked {
		t.Fatalf("expected correct-unlocked on re-drop, got %s", again.Outcome)
	}
}

func TestUnknownPartIsError(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.AttemptDrop("no-such-part", 0.5, 0.5); err == nil {
		t.Fatalf("expected error for unknown part")
	}
}

func TestQuizExactlyOnce(t *testing.T) {
	s := newTestSession(t)
	center := zoneCenter(t, "z_prop_tl")
	result := mustDrop(t, s, "prop-1", center.X, center.Y)
	eventID := result.Event.EventID
	correctIdx := result.Event.Question.CorrectIndex

	first, err := s.SubmitAnswer(eventID, correctIdx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.AlreadyScored || !first.Correct || first.ScoreDelta != 15 {
		t.Fatalf("expected fresh correct answer +15, got %+v", first)
	}
	scoreAfter := s.Snapshot().Score

	second, err := s.SubmitAnswer(eventID, correctIdx)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !second.AlreadyScored || second.ScoreDelta != 0 {
		t.Fatalf("expected already-scored no-op, got %+v", second)
	}
	view := s.Snapshot()
	if view.Score != scoreAfter || view.QuizStreak != 1 || view.QuizBestStreak != 1 {
		t.Fatalf("replay must not change score or streaks: %+v", view)
	}
}

func TestQuizWrongThenRetryRejected(t *testing.T) {
	s := newTestSession(t)
	center := zoneCenter(t, "z_prop_tl")
	result := mustDrop(t, s, "prop-1", center.X, center.Y)
	eventID := result.Event.EventID
	wrongIdx := result.Event.Question.CorrectIndex + 1

	first, err := s.SubmitAnswer(eventID, wrongIdx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.Correct || first.ScoreDelta != -5 || first.Streak != 0 {
		t.Fatalf("expected wrong answer -5 and streak reset, got %+v", first)
	}
	scoreAfter := s.Snapshot().Score

	second, err := s.SubmitAnswer(eventID, result.Event.Question.CorrectIndex)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !second.AlreadyScored {
		t.Fatalf("expected already-scored, got %+v", second)
	}
	if s.Snapshot().Score != scoreAfter {
		t.Fatalf("late correct answer must not score")
	}
}

func TestStreakBonusAtThird(t *testing.T) {
	s := newTestSession(t)

	locks := []struct{ part, zone string }{
		{"prop-1", "z_prop_tl"},
		{"prop-2", "z_prop_tr"},
		{"prop-3", "z_prop_bl"},
	}
	for i, l := range locks {
		center := zoneCenter(t, l.zone)
		result := mustDrop(t, s, l.part, center.X, center.Y)
		answer, err := s.SubmitAnswer(result.Event.EventID, result.Event.Question.CorrectIndex)
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		want := 15
		wantBonus := false
		if i == 2 {
			want = 25 // quiz reward + streak bonus, once, at the 3rd
			wantBonus = true
		}
		if answer.ScoreDelta != want || answer.StreakBonus != wantBonus {
			t.Fatalf("answer %d: expected delta %d bonus %v, got %+v", i, want, wantBonus, answer)
		}
	}

	view := s.Snapshot()
	if view.QuizStreak != 3 || view.QuizBestStreak != 3 {
		t.Fatalf("expected streak 3/3, got %d/%d", view.QuizStreak, view.QuizBestStreak)
	}
	if view.QuizPointsTotal != 55 {
		t.Fatalf("expected quiz points 15+15+25=55, got %d", view.QuizPointsTotal)
	}
}

func TestCloseLessonKeepsEventAnswerable(t *testing.T) {
	s := newTestSession(t)
	center := zoneCenter(t, "z_prop_tl")
	result := mustDrop(t, s, "prop-1", center.X, center.Y)

	s.CloseLesson()
	view := s.Snapshot()
	if view.Pending != nil {
		t.Fatalf("expected pending cleared, got %+v", view.Pending)
	}
	if len(view.BuildLog) != 1 {
		t.Fatalf("event must remain in the log")
	}

	answer, err := s.SubmitAnswer(result.Event.EventID, result.Event.Question.CorrectIndex)
	if err != nil {
		t.Fatalf("answer after close: %v", err)
	}
	if answer.AlreadyScored || !answer.Correct {
		t.Fatalf("closed-then-answered event must still score, got %+v", answer)
	}
}

func TestUnknownEventIsError(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.SubmitAnswer("bogus", 0); err == nil {
		t.Fatalf("expected error for unknown event")
	}
}

func TestWinWhenAllPartsLocked(t *testing.T) {
	s := newTestSession(t)

	placements := []struct{ part, zone string }{
		{"prop-1", "z_prop_tl"}, {"prop-2", "z_prop_tr"}, {"prop-3", "z_prop_bl"}, {"prop-4", "z_prop_br"},
		{"motor-1", "z_motor_tl"}, {"motor-2", "z_motor_tr"}, {"motor-3", "z_motor_bl"}, {"motor-4", "z_motor_br"},
		{"esc-1", "z_esc_tl"}, {"esc-2", "z_esc_tr"}, {"esc-3", "z_esc_bl"}, {"esc-4", "z_esc_br"},
		{"receiver", "z_receiver"}, {"vtx", "z_tx"}, {"antenna", "z_antenna"},
		{"pdb", "z_pdb"}, {"fc", "z_fc"}, {"camera", "z_camera"},
	}
	for i, pl := range placements {
		center := zoneCenter(t, pl.zone)
		result := mustDrop(t, s, pl.part, center.X, center.Y)
		if result.Outcome != domain.DropLocked {
			t.Fatalf("placement %d (%s -> %s): expected lock, got %s", i, pl.part, pl.zone, result.Outcome)
		}
		wantWin := i == len(placements)-1
		if result.JustWon != wantWin {
			t.Fatalf("placement %d: expected justWon=%v, got %v", i, wantWin, result.JustWon)
		}
	}

	view := s.Snapshot()
	if !view.Won || view.LockedParts != view.TotalParts {
		t.Fatalf("expected win with all parts locked, got %+v", view)
	}
}

func TestResetRestagesEverything(t *testing.T) {
	s := newTestSession(t)
	center := zoneCenter(t, "z_prop_tl")
	result := mustDrop(t, s, "prop-1", center.X, center.Y)
	if _, err := s.SubmitAnswer(result.Event.EventID, result.Event.Question.CorrectIndex); err != nil {
		t.Fatalf("answer: %v", err)
	}

	view := s.Reset()
	if view.Score != 0 || view.WrongDrops != 0 || view.QuizStreak != 0 || view.QuizBestStreak != 0 {
		t.Fatalf("expected zeroed counters, got %+v", view)
	}
	if len(view.BuildLog) != 0 || view.Pending != nil {
		t.Fatalf("expected empty log, got %+v", view)
	}
	staged := board.Default().StagedParts()
	for i, p := range view.Parts {
		if p.Locked || p.Position != staged[i].Position {
			t.Fatalf("expected part %s restaged, got %+v", p.ID, p)
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := newTestSession(t)
	center := zoneCenter(t, "z_prop_tl")
	result := mustDrop(t, s, "prop-1", center.X, center.Y)
	if _, err := s.SubmitAnswer(result.Event.EventID, result.Event.Question.CorrectIndex+1); err != nil {
		t.Fatalf("answer: %v", err)
	}

	blob, err := json.Marshal(s.State())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var state domain.SessionState
	if err := json.Unmarshal(blob, &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := newTestSession(t)
	if err := restored.RestoreState(state); err != nil {
		t.Fatalf("restore: %v", err)
	}

	want := s.Snapshot()
	got := restored.Snapshot()
	if got.Score != want.Score || got.WrongDrops != want.WrongDrops || got.QuizAttempts != want.QuizAttempts {
		t.Fatalf("restored counters differ: %+v vs %+v", got, want)
	}
	if len(got.BuildLog) != 1 || !reflect.DeepEqual(got.BuildLog[0].Question, want.BuildLog[0].Question) {
		t.Fatalf("restored log must keep the frozen question")
	}
	if !got.BuildLog[0].Scored {
		t.Fatalf("restored event must stay scored")
	}

	// The anti-farming guarantee survives persistence.
	replay, err := restored.SubmitAnswer(state.Events[0].EventID, state.Events[0].Question.CorrectIndex)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !replay.AlreadyScored {
		t.Fatalf("restored event must reject re-scoring, got %+v", replay)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	s := newTestSession(t)
	ch, cancel := s.Subscribe()
	defer cancel()

	<-ch // initial snapshot

	center := zoneCenter(t, "z_prop_tl")
	mustDrop(t, s, "prop-1", center.X, center.Y)

	update := <-ch
	if update.Score != 25 {
		t.Fatalf("expected broadcast score 25, got %d", update.Score)
	}
}
