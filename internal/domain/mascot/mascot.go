// Package mascot drives the widget's emotional-state machine.
//
// The mascot tracks urgency through four derived emotions and supports a
// fifth, celebrate, which is a sticky override with a wall-clock expiry.
// Celebration is modeled explicitly in the State value passed between
// recomputes rather than as hidden mutable state.
package mascot

import (
	"time"

	"github.com/okian/glance/internal/domain/model"
	"github.com/okian/glance/internal/domain/urgency"
)

// Emotion is one of the five mascot emotions.
type Emotion string

// Mascot emotions.
const (
	EmotionHappy     Emotion = "happy"
	EmotionNeutral   Emotion = "neutral"
	EmotionWorried   Emotion = "worried"
	EmotionSad       Emotion = "sad"
	EmotionCelebrate Emotion = "celebrate"
)

// Urgency bands mapping score to emotion. Below happyBand the mascot is
// happy, below neutralBand neutral, below worriedBand worried, else sad.
const (
	happyBand   = 0.35
	neutralBand = 0.6
	worriedBand = 0.85
)

// CelebrationDuration is how long a celebrate override suppresses the
// urgency-derived emotion.
const CelebrationDuration = 5 * time.Minute

// State is the mascot's current display state. A celebrating state carries
// a non-nil ExpiresAt; derived states never do.
type State struct {
	Emotion    Emotion
	FrameIndex int
	ExpiresAt  *time.Time
}

// Celebrating reports whether the state is a live celebrate override at
// the given instant.
func (s State) Celebrating(now time.Time) bool {
	return s.Emotion == EmotionCelebrate && s.ExpiresAt != nil && now.Before(*s.ExpiresAt)
}

// Initial returns the default state used before any goal data is seen.
func Initial() State {
	return State{Emotion: EmotionNeutral, FrameIndex: 0}
}

// Compute advances the state machine one step.
//
// A live celebration is returned unchanged; urgency is ignored entirely
// until it expires. The first call at or after the expiry instant performs
// exactly one transition back to the urgency-derived emotion. FrameIndex
// toggles between 0 and 1 on every non-celebrating recompute as a cosmetic
// animation tick; it does not toggle while celebrating.
func Compute(g *model.Goal, now time.Time, prev State) State {
	if prev.Celebrating(now) {
		return prev
	}
	return State{
		Emotion:    emotionFor(urgency.Score(g, now)),
		FrameIndex: 1 - frameOf(prev),
	}
}

// Celebrate creates the sticky override fired when a completion is logged.
// It takes priority over Compute's derived emotion until it expires.
func Celebrate(now time.Time) State {
	expires := now.Add(CelebrationDuration)
	return State{
		Emotion:    EmotionCelebrate,
		FrameIndex: 0,
		ExpiresAt:  &expires,
	}
}

func emotionFor(score float64) Emotion {
	switch {
	case score < happyBand:
		return EmotionHappy
	case score < neutralBand:
		return EmotionNeutral
	case score < worriedBand:
		return EmotionWorried
	default:
		return EmotionSad
	}
}

func frameOf(s State) int {
	if s.FrameIndex == 1 {
		return 1
	}
	return 0
}
