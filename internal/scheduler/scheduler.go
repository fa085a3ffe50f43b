// Package scheduler decides when the widget snapshot is recomputed.
//
// It is the only component with mutable state and the only trigger of the
// snapshot builder. It coalesces bursts of goal-change events behind a
// short debounce, guarantees at most one rebuild in flight (with at most
// one more owed, never a queue), and arms a single wake timer for the next
// wall-clock instant the display must change even without data changes.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/glance/internal/domain/mascot"
	"github.com/okian/glance/internal/domain/model"
	"github.com/okian/glance/internal/snapshot"
	"github.com/okian/glance/pkg/logger"
	"github.com/okian/glance/pkg/metrics"
)

// Scheduling constants.
const (
	// defaultDebounce coalesces rapid goal-change bursts into one rebuild.
	defaultDebounce = 300 * time.Millisecond

	// rotationInterval keeps the CTA visibly fresh without data changes.
	rotationInterval = 30 * time.Minute

	rebuildTimeout = 30 * time.Second
)

// transitionHours are the fixed daily hours at which the display context
// can flip regardless of goal data: midnight (end-of-day end), the
// long-term focus window edges, and the end-of-day start.
var transitionHours = []int{0, 9, 17, 21}

// Builder generates and persists a snapshot. The scheduler is its only
// caller; Generate is not reentrant-safe.
type Builder interface {
	Generate(ctx context.Context, prev mascot.State, celebration bool) (*snapshot.Snapshot, error)
}

// Notifier signals the native renderer to re-read the snapshot. Failures
// are tolerated; the persisted snapshot is already durable by the time
// Notify runs.
type Notifier interface {
	Notify(ctx context.Context) error
}

// Scheduler owns the debounce timer, the wake timer, the single-flight
// gate, and the pending-celebration accumulator. All fields are guarded by
// mu; the engines and builder it drives are stateless.
type Scheduler struct {
	builder  Builder
	notifier Notifier

	mu                 sync.Mutex
	debounceTimer      *time.Timer
	debounceGen        uint64
	wakeTimer          *time.Timer
	inFlight           bool
	rerunOwed          bool
	pendingCelebration bool
	closed             bool
	prevMascot         mascot.State

	debounce time.Duration
	now      func() time.Time
	logger   logger.Logger
}

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithClock overrides the wall clock used for wake computation.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInitialMascot seeds the mascot state carried into the first rebuild,
// typically recovered from the persisted snapshot so a live celebration
// survives a process restart.
func WithInitialMascot(m mascot.State) Option {
	return func(s *Scheduler) {
		s.prevMascot = m
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Scheduler driving the given builder and notifier.
func New(builder Builder, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		builder:    builder,
		notifier:   notifier,
		debounce:   defaultDebounce,
		now:        time.Now,
		prevMascot: mascot.Initial(),
		logger:     logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange handles a goal store change notification. The event's
// celebration flag is OR-merged into the pending accumulator so it
// survives debouncing; the debounce timer is re-armed, superseding any
// previous one.
func (s *Scheduler) OnChange(ev model.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.pendingCelebration = s.pendingCelebration || ev.Celebration
	metrics.RecordChangeEvent()

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		metrics.RecordCoalescedEvent()
	}
	// The generation tags the armed timer. A superseded timer can still
	// fire if Stop raced its callback; the tag keeps that stale firing
	// from clearing the newer timer or triggering a duplicate rebuild.
	s.debounceGen++
	gen := s.debounceGen
	s.debounceTimer = time.AfterFunc(s.debounce, func() { s.onDebounceFired(gen) })

	s.logger.Debug(context.Background(), "change event",
		logger.String("id", ev.ID),
		logger.String("kind", string(ev.Kind)),
		logger.Any("celebration", ev.Celebration),
	)
}

// ForceUpdate requests an immediate rebuild, subject to the same
// single-flight gate as debounce and wake firings. It is safe to call from
// any trigger, including redundant external alarms.
func (s *Scheduler) ForceUpdate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startRebuildLocked()
}

// Close tears the scheduler down: all timers are cancelled and no further
// callbacks fire. An in-flight rebuild finishes but schedules nothing new.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	if s.wakeTimer != nil {
		s.wakeTimer.Stop()
		s.wakeTimer = nil
	}
}

func (s *Scheduler) onDebounceFired(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.debounceGen {
		return
	}
	s.debounceTimer = nil
	s.startRebuildLocked()
}

func (s *Scheduler) onWakeFired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wakeTimer = nil
	s.startRebuildLocked()
}

// startRebuildLocked begins a rebuild if none is in flight, or records
// that exactly one more is owed. The celebration accumulator is consumed
// only when a rebuild actually starts. Callers must hold mu.
func (s *Scheduler) startRebuildLocked() {
	if s.closed {
		return
	}
	if s.inFlight {
		s.rerunOwed = true
		return
	}
	s.inFlight = true
	celebration := s.pendingCelebration
	s.pendingCelebration = false
	prev := s.prevMascot

	go s.rebuild(celebration, prev)
}

// rebuild runs one snapshot generation cycle. Errors are absorbed here so
// the scheduler keeps listening and stays schedulable; the in-flight flag
// is always cleared.
func (s *Scheduler) rebuild(celebration bool, prev mascot.State) {
	ctx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
	defer cancel()

	start := s.now()
	snap, err := s.generate(ctx, prev, celebration)
	metrics.RecordRebuildDuration(s.now().Sub(start).Seconds())

	if err != nil {
		metrics.RecordRebuildError()
		s.logger.Error(ctx, "rebuild failed; previous snapshot remains authoritative", logger.Error(err))
	} else {
		metrics.RecordRebuild()
		if nerr := s.notifier.Notify(ctx); nerr != nil {
			// The write is durable; a lost refresh signal only delays the
			// renderer until its own staleness check.
			s.logger.Warn(ctx, "renderer notify failed", logger.Error(nerr))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err == nil && snap != nil {
		s.prevMascot = snap.Mascot.State()
	}
	if s.closed {
		return
	}
	if s.rerunOwed {
		s.rerunOwed = false
		s.startRebuildLocked()
		return
	}
	s.armWakeLocked()
}

// generate invokes the builder, converting panics into errors so a bad
// rebuild can never take the scheduler down.
func (s *Scheduler) generate(ctx context.Context, prev mascot.State, celebration bool) (snap *snapshot.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = fmt.Errorf("rebuild panicked: %v", r)
		}
	}()
	return s.builder.Generate(ctx, prev, celebration)
}

// armWakeLocked arms the single wake timer for the next time-based
// transition: the next rotation boundary, the celebration expiry if one is
// live, or the next fixed daily transition hour, whichever comes first.
// Callers must hold mu.
func (s *Scheduler) armWakeLocked() {
	now := s.now()
	next := nextWake(now, s.prevMascot)

	if s.wakeTimer != nil {
		s.wakeTimer.Stop()
	}
	s.wakeTimer = time.AfterFunc(next.Sub(now), s.onWakeFired)
	metrics.UpdateNextWakeUnix(next.Unix())

	s.logger.Debug(context.Background(), "wake timer armed",
		logger.String("at", next.Format(time.RFC3339)),
	)
}

// nextWake computes the earliest future instant the display must refresh
// without a data change.
func nextWake(now time.Time, m mascot.State) time.Time {
	next := now.Truncate(rotationInterval).Add(rotationInterval)

	if m.Celebrating(now) && m.ExpiresAt.Before(next) {
		next = *m.ExpiresAt
	}

	for _, h := range transitionHours {
		at := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		if at.Before(next) {
			next = at
		}
	}
	return next
}
