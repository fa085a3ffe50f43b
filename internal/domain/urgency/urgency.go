// Package urgency scores how pressing a goal is right now on a 0-1 scale.
//
// All functions here are pure: they depend only on the goal and the supplied
// clock instant, never on ambient state. The weight and threshold constants
// are contract values asserted by tests and by the widget renderer; do not
// tune them casually.
package urgency

import (
	"time"

	"github.com/okian/glance/internal/domain/model"
)

// Daily goal scoring weights. They sum to 1.0.
const (
	dailyProgressWeight = 0.5
	dailyTimeWeight     = 0.3
	dailyStreakCeiling  = 0.2
	streakNormalizer    = 30 // days of streak for full streak factor
)

// Long-term goal scoring constants.
const (
	undatedCeiling      = 0.3 // undated goals never feel urgent
	deadlineWeight      = 0.6
	progressDeficitWght = 0.4
)

// Active day window (hours, local time) used for the daily time factor.
const (
	dayWindowStartHour = 6
	dayWindowEndHour   = 22
)

// Level buckets an urgency score for pool selection and theming.
type Level string

// Urgency levels in ascending order.
const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Level thresholds. A score below thresholdMedium is low, and so on.
const (
	thresholdMedium   = 0.35
	thresholdHigh     = 0.6
	thresholdCritical = 0.85
)

// Score computes the urgency of a goal at the given instant, in [0,1].
// A completed goal always scores 0.
func Score(g *model.Goal, now time.Time) float64 {
	if g == nil || g.IsCompleted() {
		return 0
	}
	if g.GoalType == model.GoalTypeDaily {
		return scoreDaily(g, now)
	}
	return scoreLongTerm(g, now)
}

func scoreDaily(g *model.Goal, now time.Time) float64 {
	progressFactor := 1 - g.ProgressToday(now)

	timeFactor := dayFraction(now)

	streakFactor := 0.0
	if !g.CompletedToday(now) {
		streakFactor = float64(g.CurrentStreak) / streakNormalizer
		if streakFactor > 1 {
			streakFactor = 1
		}
	}

	u := progressFactor*dailyProgressWeight +
		timeFactor*dailyTimeWeight +
		streakFactor*dailyStreakCeiling
	return clamp01(u)
}

func scoreLongTerm(g *model.Goal, now time.Time) float64 {
	progress := g.Progress()

	if g.Deadline == nil {
		return clamp01((1 - progress) * undatedCeiling)
	}

	// Past-deadline and incomplete is maximally urgent, regardless of
	// how close to done the goal is.
	if now.After(*g.Deadline) {
		return 1.0
	}

	total := g.Deadline.Sub(g.CreatedAt)
	deadlineFactor := 1.0
	if total > 0 {
		deadlineFactor = clamp01(float64(now.Sub(g.CreatedAt)) / float64(total))
	}

	deficit := clamp01(deadlineFactor - progress)

	return clamp01(deadlineFactor*deadlineWeight + deficit*progressDeficitWght)
}

// dayFraction returns how much of the active day window has elapsed,
// clamped to [0,1]: 0 before the window opens, 1 after it closes.
func dayFraction(now time.Time) float64 {
	start := time.Date(now.Year(), now.Month(), now.Day(), dayWindowStartHour, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), dayWindowEndHour, 0, 0, 0, now.Location())
	if !now.After(start) {
		return 0
	}
	if !now.Before(end) {
		return 1
	}
	return float64(now.Sub(start)) / float64(end.Sub(start))
}

// MostUrgent returns the incomplete goal with the strictly greatest urgency.
// Ties keep the earliest-encountered goal: the scan only replaces the
// current pick on a strict improvement. Callers depend on this ordering.
// Returns nil when every goal is completed or the slice is empty.
func MostUrgent(goals []model.Goal, now time.Time) *model.Goal {
	var best *model.Goal
	bestScore := -1.0
	for i := range goals {
		g := &goals[i]
		if g.IsCompleted() {
			continue
		}
		if s := Score(g, now); s > bestScore {
			best = g
			bestScore = s
		}
	}
	return best
}

// LevelOf buckets a score into one of the four urgency levels.
func LevelOf(score float64) Level {
	switch {
	case score < thresholdMedium:
		return LevelLow
	case score < thresholdHigh:
		return LevelMedium
	case score < thresholdCritical:
		return LevelHigh
	default:
		return LevelCritical
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
