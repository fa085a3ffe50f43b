// Package cta selects the rotating call-to-action prompt shown on the
// widget. Selection is fully deterministic: given the same goal context and
// the same 5-minute wall-clock block, Generate always returns the same
// string. There is no randomness anywhere in this package.
package cta

import (
	"fmt"
	"time"

	"github.com/okian/glance/internal/domain/mascot"
	"github.com/okian/glance/internal/domain/model"
	"github.com/okian/glance/internal/domain/urgency"
)

// rotationBlockMinutes is the rotation granularity. The selection index is
// (hour*blocksPerHour + minute/rotationBlockMinutes) mod len(pool); this
// formula is a contract with the renderer's tests, not an implementation
// detail.
const (
	rotationBlockMinutes = 5
	blocksPerHour        = 12
)

// Fallback is returned when a candidate pool ends up empty.
const Fallback = "Keep going!"

// Context describes the displayed goal for message selection. A nil Context
// means the user has no goals at all.
type Context struct {
	Title         string
	GoalType      model.GoalType
	Progress      float64 // [0,1]
	Urgency       float64 // [0,1]
	ProgressLabel string  // optional, e.g. "3/5 milestones"
}

// Generate picks the prompt for the given goal context, mascot state, and
// instant.
func Generate(goal *Context, m mascot.State, now time.Time) string {
	bucket := bucketForHour(now.Hour())

	if goal == nil {
		return pick(emptyPools[bucket], now)
	}

	if goal.Progress >= 1 {
		if goal.GoalType == model.GoalTypeDaily {
			return pick(completedDailyPool, now)
		}
		return pick(completedLongTermPool, now)
	}

	if m.Celebrating(now) {
		pool := append([]string{}, celebrationPool...)
		if goal.Title != "" {
			for _, tpl := range celebrationTitleTemplates {
				pool = append(pool, fmt.Sprintf(tpl, goal.Title))
			}
		}
		return pick(pool, now)
	}

	level := string(urgency.LevelOf(goal.Urgency))
	pool := append([]string{}, levelPools[level]...)
	pool = append(pool, progressPools[progressBucket(goal.Progress)]...)
	pool = append(pool, timePools[bucket]...)
	if goal.Title != "" {
		for _, tpl := range titleTemplates {
			pool = append(pool, fmt.Sprintf(tpl, goal.Title))
		}
	}
	if goal.ProgressLabel != "" {
		for _, tpl := range progressLabelTemplates {
			pool = append(pool, fmt.Sprintf(tpl, goal.ProgressLabel))
		}
	}

	return pick(pool, now)
}

// RotationIndex exposes the deterministic rotation index for a pool of the
// given size at the given instant.
func RotationIndex(now time.Time, poolLen int) int {
	if poolLen <= 0 {
		return 0
	}
	return (now.Hour()*blocksPerHour + now.Minute()/rotationBlockMinutes) % poolLen
}

// NextRotation returns the start of the next 5-minute rotation block.
func NextRotation(now time.Time) time.Time {
	block := now.Truncate(time.Duration(rotationBlockMinutes) * time.Minute)
	return block.Add(time.Duration(rotationBlockMinutes) * time.Minute)
}

func pick(pool []string, now time.Time) string {
	if len(pool) == 0 {
		return Fallback
	}
	return pool[RotationIndex(now, len(pool))]
}

func progressBucket(progress float64) string {
	switch {
	case progress < earlyProgressMax:
		return "early"
	case progress < nearCompleteCutoff:
		return "mid"
	default:
		return "nearComplete"
	}
}
