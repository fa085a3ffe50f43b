package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/glance/internal/domain/cta"
	"github.com/okian/glance/internal/domain/mascot"
	"github.com/okian/glance/internal/domain/model"
	"github.com/okian/glance/internal/domain/urgency"
	"github.com/okian/glance/pkg/logger"
	"github.com/okian/glance/pkg/metrics"
)

// Display timing constants.
const (
	// recentCompletionWindow is how long after a logged completion the
	// widget keeps showing the celebration context.
	recentCompletionWindow = 5 * time.Minute

	// endOfDayStartHour is when the widget switches to the wind-down view.
	endOfDayStartHour = 21

	// Long-term focus window: long-term goals are foregrounded in this
	// band when the user has no daily goals.
	focusStartHour = 9
	focusEndHour   = 17
)

// GoalSource reads the full goal set from the external goal store.
type GoalSource interface {
	ReadAll(ctx context.Context) ([]model.Goal, error)
}

// Store persists the single snapshot record and reads it back.
type Store interface {
	// Save overwrites the persisted snapshot.
	Save(ctx context.Context, data []byte) error
	// Load returns the raw persisted snapshot, or nil when absent.
	Load(ctx context.Context) ([]byte, error)
}

// Builder assembles and persists widget snapshots.
//
// Generate is not reentrant-safe: concurrent calls could interleave store
// writes. The update scheduler's single-flight gate is the only caller.
type Builder struct {
	source GoalSource
	store  Store
	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder over the given goal source and store.
func NewBuilder(source GoalSource, store Store, opts ...Option) *Builder {
	b := &Builder{
		source: source,
		store:  store,
		now:    time.Now,
		logger: logger.Get().Named("snapshot"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Generate reads the goal set, derives the display state, persists it,
// and returns the new snapshot. prev carries the mascot state from the
// previous snapshot so celebrations survive recomputes; celebration forces
// a fresh celebrate override regardless of urgency.
func (b *Builder) Generate(ctx context.Context, prev mascot.State, celebration bool) (*Snapshot, error) {
	now := b.now()

	goals, err := b.source.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadGoals, err)
	}

	var snap *Snapshot
	if len(goals) == 0 {
		snap = b.emptySnapshot(now)
	} else {
		snap = b.buildSnapshot(goals, now, prev, celebration)
	}

	data, err := Encode(snap)
	if err != nil {
		return nil, err
	}
	if err := b.store.Save(ctx, data); err != nil {
		metrics.RecordSnapshotWriteError()
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	metrics.RecordSnapshotWrite()
	metrics.UpdateLastSnapshotUnix(snap.GeneratedAt)
	metrics.UpdateGoalsTracked(len(goals))

	b.logger.Debug(ctx, "snapshot generated",
		logger.String("status", snap.BackgroundStatus),
		logger.String("emotion", snap.Mascot.Emotion),
		logger.Int("goals", len(goals)),
	)
	return snap, nil
}

// Latest is a defensive read of the persisted snapshot. Missing or
// malformed data yields (nil, nil); only transport failures surface.
func (b *Builder) Latest(ctx context.Context) (*Snapshot, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	snap, err := Decode(data)
	if err != nil {
		b.logger.Warn(ctx, "discarding malformed persisted snapshot", logger.Error(err))
		return nil, nil
	}
	return snap, nil
}

func (b *Builder) emptySnapshot(now time.Time) *Snapshot {
	m := mascot.Initial()
	band := timeBandFor(now.Hour())
	status := statusFor(contextEmpty)
	return &Snapshot{
		Version:            CurrentVersion,
		GeneratedAt:        now.Unix(),
		TopGoal:            nil,
		Mascot:             MascotFrom(m),
		CTA:                cta.Generate(nil, m, now),
		BackgroundStatus:   status,
		BackgroundTimeBand: string(band),
		BackgroundVariant:  variantFor(status, now.Hour()),
	}
}

func (b *Builder) buildSnapshot(goals []model.Goal, now time.Time, prev mascot.State, celebration bool) *Snapshot {
	dc, goal := selectContext(goals, now, celebration)

	var m mascot.State
	if dc == contextCelebration {
		m = mascot.Celebrate(now)
		metrics.RecordCelebration()
	} else {
		m = mascot.Compute(goal, now, prev)
	}

	top := buildTopGoal(goal, now)
	status := statusFor(dc)
	band := timeBandFor(now.Hour())

	ctaCtx := &cta.Context{
		Title:    top.Title,
		GoalType: top.GoalType,
		Progress: top.Progress,
		Urgency:  top.Urgency,
	}
	if top.ProgressLabel != nil {
		ctaCtx.ProgressLabel = *top.ProgressLabel
	}

	return &Snapshot{
		Version:            CurrentVersion,
		GeneratedAt:        now.Unix(),
		TopGoal:            top,
		Mascot:             MascotFrom(m),
		CTA:                cta.Generate(ctaCtx, m, now),
		BackgroundStatus:   status,
		BackgroundTimeBand: string(band),
		BackgroundVariant:  variantFor(status, now.Hour()),
	}
}

// selectContext picks the display context and the goal to feature, in
// strict priority order. The returned goal is never nil for a non-empty
// goal set.
func selectContext(goals []model.Goal, now time.Time, celebration bool) (displayContext, *model.Goal) {
	// (a) A completion within the celebration window, or an explicit
	// celebration signal, wins over everything.
	if recent := mostRecentlyCompleted(goals, now); recent != nil {
		return contextCelebration, recent
	}
	if celebration {
		if g := lastCompleted(goals); g != nil {
			return contextCelebration, g
		}
	}

	// (b) Wind-down view late in the day.
	if now.Hour() >= endOfDayStartHour {
		return contextEndOfDay, featured(goals, now)
	}

	// (c) Every daily goal done for the day.
	if daily := dailyGoals(goals); len(daily) > 0 && allCompletedToday(daily, now) {
		if g := lastCompleted(daily); g != nil {
			return contextAllDailyComplete, g
		}
		return contextAllDailyComplete, &daily[0]
	} else if len(daily) == 0 && inFocusWindow(now) {
		// (d) Long-term focus hours apply only without daily goals.
		return contextLongTermFocus, featured(goals, now)
	} else if g := mostUrgentIncompleteDaily(daily, now); g != nil {
		// (e) An incomplete daily goal takes the spotlight.
		return contextDailyInProgress, g
	}

	// (f) Fall back to the most urgent goal overall.
	return contextMostUrgent, featured(goals, now)
}

// featured returns the most urgent incomplete goal, or an arbitrary stable
// pick when everything is complete, so a non-empty goal set always has a
// featured goal.
func featured(goals []model.Goal, now time.Time) *model.Goal {
	if g := urgency.MostUrgent(goals, now); g != nil {
		return g
	}
	if g := lastCompleted(goals); g != nil {
		return g
	}
	return &goals[0]
}

func dailyGoals(goals []model.Goal) []model.Goal {
	var out []model.Goal
	for _, g := range goals {
		if g.GoalType == model.GoalTypeDaily {
			out = append(out, g)
		}
	}
	return out
}

func allCompletedToday(daily []model.Goal, now time.Time) bool {
	for i := range daily {
		if !daily[i].CompletedToday(now) {
			return false
		}
	}
	return true
}

func mostUrgentIncompleteDaily(daily []model.Goal, now time.Time) *model.Goal {
	var incomplete []model.Goal
	for _, g := range daily {
		if !g.CompletedToday(now) && !g.IsCompleted() {
			incomplete = append(incomplete, g)
		}
	}
	if len(incomplete) == 0 {
		return nil
	}
	if g := urgency.MostUrgent(incomplete, now); g != nil {
		return g
	}
	return &incomplete[0]
}

// mostRecentlyCompleted returns the goal whose last completion falls inside
// the celebration window, preferring the newest completion.
func mostRecentlyCompleted(goals []model.Goal, now time.Time) *model.Goal {
	var best *model.Goal
	var bestAt time.Time
	for i := range goals {
		g := &goals[i]
		if g.LastCompletedAt == nil {
			continue
		}
		at := *g.LastCompletedAt
		if now.Sub(at) >= 0 && now.Sub(at) < recentCompletionWindow && at.After(bestAt) {
			best = g
			bestAt = at
		}
	}
	return best
}

// lastCompleted returns the goal with the newest completion, regardless of
// how long ago it happened.
func lastCompleted(goals []model.Goal) *model.Goal {
	var best *model.Goal
	var bestAt time.Time
	for i := range goals {
		g := &goals[i]
		if g.LastCompletedAt != nil && g.LastCompletedAt.After(bestAt) {
			best = g
			bestAt = *g.LastCompletedAt
		}
	}
	return best
}

func inFocusWindow(now time.Time) bool {
	h := now.Hour()
	return h >= focusStartHour && h < focusEndHour
}

// buildTopGoal projects a goal into the serialized featured-goal shape.
// Daily goals report today's progress; long-term goals report overall
// progress and their deadline.
func buildTopGoal(g *model.Goal, now time.Time) *TopGoal {
	top := &TopGoal{
		ID:           g.ID,
		Title:        g.Title,
		GoalType:     g.GoalType,
		ProgressType: g.ProgressType,
		Urgency:      urgency.Score(g, now),
	}

	if g.GoalType == model.GoalTypeDaily {
		top.Progress = g.ProgressToday(now)
		due := time.Date(now.Year(), now.Month(), now.Day(), endOfDayStartHour, 0, 0, 0, now.Location())
		if !top.completed() {
			epoch := due.Unix()
			top.NextDueEpoch = &epoch
		}
	} else {
		top.Progress = g.Progress()
		if g.Deadline != nil {
			epoch := g.Deadline.Unix()
			top.NextDueEpoch = &epoch
		}
	}

	if label := progressLabel(g, now); label != "" {
		top.ProgressLabel = &label
	}
	return top
}

func (t *TopGoal) completed() bool {
	return t.Progress >= 1
}

// progressLabel renders a short human-readable progress string per
// progress type. Completion-type goals have none.
func progressLabel(g *model.Goal, now time.Time) string {
	switch g.ProgressType {
	case model.ProgressMilestones:
		done := 0
		for _, m := range g.Milestones {
			if m.Completed {
				done++
			}
		}
		return fmt.Sprintf("%d/%d milestones", done, len(g.Milestones))
	case model.ProgressNumeric:
		if g.TargetValue == nil || *g.TargetValue <= 0 {
			return ""
		}
		current := g.CurrentValue
		if g.GoalType == model.GoalTypeDaily {
			current = *g.TargetValue * g.ProgressToday(now)
		}
		if g.Unit != "" {
			return fmt.Sprintf("%.0f of %.0f %s", current, *g.TargetValue, g.Unit)
		}
		return fmt.Sprintf("%.0f of %.0f", current, *g.TargetValue)
	case model.ProgressPercentage:
		return fmt.Sprintf("%.0f%%", g.PercentComplete)
	default:
		return ""
	}
}
