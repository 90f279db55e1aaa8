package engine

import (
	"math"
	"time"

	"drone-assembly-service/internal/domain"
)

// Grade weights: time and quiz accuracy dominate, best streak rounds it out,
// wrong drops subtract up to 20 points.
const (
	gradeTimeMax     = 35.0
	gradeAccuracyMax = 35.0
	gradeStreakMax   = 20.0
	gradePenaltyMax  = 20.0

	gradeTimeFloorSeconds = 120.0
	gradeTimeSpanSeconds  = 360.0
	gradeStreakTarget     = 10.0
	gradePenaltyPerDrop   = 2.0
)

// ComputeGrade derives the mission grade from session counters. It is a pure
// function; calling it twice with unchanged inputs yields identical results.
func ComputeGrade(elapsed time.Duration, wrongDrops, quizCorrect, quizTotal, bestStreak int) domain.Grade {
	elapsedSeconds := elapsed.Seconds()

	// Full marks inside two minutes, decaying to zero by eight.
	timeScore := gradeTimeMax * (1 - clamp01((elapsedSeconds-gradeTimeFloorSeconds)/gradeTimeSpanSeconds))

	accuracyScore := 0.0
	if quizTotal > 0 {
		accuracyScore = gradeAccuracyMax * float64(quizCorrect) / float64(quizTotal)
	}

	streakScore := gradeStreakMax * math.Min(1, float64(bestStreak)/gradeStreakTarget)

	penalty := math.Min(gradePenaltyMax, float64(wrongDrops)*gradePenaltyPerDrop)

	raw := timeScore + accuracyScore + streakScore - penalty
	raw = math.Max(0, math.Min(100, raw))

	return domain.Grade{
		Letter:        letterFor(raw),
		Score:         raw,
		TimeScore:     timeScore,
		AccuracyScore: accuracyScore,
		StreakScore:   streakScore,
		Penalty:       penalty,
	}
}

func letterFor(score float64) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
