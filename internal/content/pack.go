// Package content models the micro-lesson packs: per-kind lesson text and
// the question bank the quiz engine draws from on each lock.
package content

import (
	"fmt"

	"drone-assembly-service/internal/domain"
)

// Lesson is the teaching material attached to one part kind.
type Lesson struct {
	Title     string            `json:"title"`
	Summary   string            `json:"summary"`
	Gotchas   []string          `json:"gotchas,omitempty"`
	Questions []domain.Question `json:"questions"`
}

// Pack is one complete lesson pack. Lessons is keyed by kind tag; a pack must
// cover every kind so a lock can always produce a question.
type Pack struct {
	ID      string                 `json:"id"`
	Lessons map[domain.Kind]Lesson `json:"lessons"`
}

// Validate checks the pack covers the full kind enumeration and that every
// question is answerable.
func (p Pack) Validate() error {
	if len(p.Lessons) == 0 {
		return fmt.Errorf("pack %q: no lessons", p.ID)
	}
	for _, kind := range domain.AllKinds {
		lesson, ok := p.Lessons[kind]
		if !ok {
			return fmt.Errorf("pack %q: missing lesson for kind %s", p.ID, kind)
		}
		if lesson.Title == "" {
			return fmt.Errorf("pack %q: kind %s: empty title", p.ID, kind)
		}
		if len(lesson.Questions) == 0 {
			return fmt.Errorf("pack %q: kind %s: no questions", p.ID, kind)
		}
		for i, q := range lesson.Questions {
			if len(q.Options) < 2 {
				return fmt.Errorf("pack %q: kind %s: question %d has %d options", p.ID, kind, i, len(q.Options))
			}
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return fmt.Errorf("pack %q: kind %s: question %d correct index %d out of range", p.ID, kind, i, q.CorrectIndex)
			}
		}
	}
	return nil
}

// Lesson returns the lesson for a kind. Packs are validated at load time, so
// a miss here is a programmer error.
func (p Pack) Lesson(kind domain.Kind) (Lesson, error) {
	lesson, ok := p.Lessons[kind]
	if !ok {
		return Lesson{}, fmt.Errorf("%w: no lesson for kind %s in pack %q", domain.ErrPackNotFound, kind, p.ID)
	}
	return lesson, nil
}
