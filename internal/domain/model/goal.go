// Package model contains domain models passed between layers.
package model

import "time"

// GoalType distinguishes recurring daily goals from dated long-term goals.
type GoalType string

// Goal type values.
const (
	GoalTypeDaily    GoalType = "daily"
	GoalTypeLongTerm GoalType = "longTerm"
)

// ProgressType describes how progress toward a goal is measured.
type ProgressType string

// Progress type values.
const (
	ProgressCompletion ProgressType = "completion"
	ProgressPercentage ProgressType = "percentage"
	ProgressMilestones ProgressType = "milestones"
	ProgressNumeric    ProgressType = "numeric"
)

// Milestone is a single step of a milestone-tracked goal.
type Milestone struct {
	ID          string
	Title       string
	Completed   bool
	CompletedAt *time.Time
}

// Goal is a read-only view of a goal record. Goals are owned and mutated
// exclusively by the external goal store; this process only derives
// display state from them.
type Goal struct {
	ID               string
	Title            string
	GoalType         GoalType
	ProgressType     ProgressType
	TargetValue      *float64
	CurrentValue     float64
	Unit             string
	PercentComplete  float64
	Milestones       []Milestone
	Deadline         *time.Time
	TodayCompletions []time.Time
	CurrentStreak    int
	LongestStreak    int
	LastCompletedAt  *time.Time
	CreatedAt        time.Time
}

// Progress returns overall completion in [0,1] for any progress type.
// Invalid inputs (zero or missing targets) count as zero progress rather
// than erroring.
func (g *Goal) Progress() float64 {
	switch g.ProgressType {
	case ProgressCompletion:
		if g.CurrentValue >= 1 {
			return 1
		}
		return 0
	case ProgressPercentage:
		return clamp01(g.PercentComplete / 100)
	case ProgressMilestones:
		if len(g.Milestones) == 0 {
			return 0
		}
		done := 0
		for _, m := range g.Milestones {
			if m.Completed {
				done++
			}
		}
		return float64(done) / float64(len(g.Milestones))
	case ProgressNumeric:
		if g.TargetValue == nil || *g.TargetValue <= 0 {
			return 0
		}
		return clamp01(g.CurrentValue / *g.TargetValue)
	}
	return 0
}

// IsCompleted reports whether the goal has reached full progress.
func (g *Goal) IsCompleted() bool {
	return g.Progress() >= 1
}

// ProgressToday returns today's completion in [0,1] for daily goals.
// Completion-type goals are done-or-not for the day; numeric goals count
// today's logged completions against the daily target.
func (g *Goal) ProgressToday(now time.Time) float64 {
	switch g.ProgressType {
	case ProgressNumeric:
		if g.TargetValue == nil || *g.TargetValue <= 0 {
			return 0
		}
		return clamp01(float64(g.completionsOn(now)) / *g.TargetValue)
	default:
		if g.completionsOn(now) > 0 {
			return 1
		}
		return 0
	}
}

// CompletedToday reports whether the daily goal is done for the given day.
func (g *Goal) CompletedToday(now time.Time) bool {
	return g.ProgressToday(now) >= 1
}

func (g *Goal) completionsOn(now time.Time) int {
	n := 0
	for _, ts := range g.TodayCompletions {
		if sameDay(ts, now) {
			n++
		}
	}
	return n
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
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

// ChangeKind classifies a goal store change notification.
type ChangeKind string

// Change kinds emitted by the goal store subscription.
const (
	ChangeCreated   ChangeKind = "created"
	ChangeUpdated   ChangeKind = "updated"
	ChangeDeleted   ChangeKind = "deleted"
	ChangeCompleted ChangeKind = "completed"
)

// ChangeEvent notifies that goal data changed. Celebration marks a logged
// completion that the display should acknowledge with the celebrate mascot.
type ChangeEvent struct {
	ID          string // assigned by the emitter, for log correlation
	Kind        ChangeKind
	GoalID      string // optional; empty when the change is not goal-specific
	Celebration bool
	At          time.Time
}
