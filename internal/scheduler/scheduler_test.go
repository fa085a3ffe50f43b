package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/glance/internal/domain/mascot"
	"github.com/okian/glance/internal/domain/model"
	"github.com/okian/glance/internal/scheduler"
	"github.com/okian/glance/internal/snapshot"
	"github.com/okian/glance/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockBuilder records Generate invocations and can block or fail on demand.
type mockBuilder struct {
	mu           sync.Mutex
	calls        int
	celebrations []bool
	prevs        []mascot.State
	err          error
	block        chan struct{} // when set, Generate waits on it
}

func (b *mockBuilder) Generate(_ context.Context, prev mascot.State, celebration bool) (*snapshot.Snapshot, error) {
	b.mu.Lock()
	b.calls++
	b.celebrations = append(b.celebrations, celebration)
	b.prevs = append(b.prevs, prev)
	block := b.block
	err := b.err
	b.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return &snapshot.Snapshot{
		Version:     snapshot.CurrentVersion,
		GeneratedAt: time.Now().Unix(),
		Mascot:      snapshot.MascotFrom(mascot.Initial()),
	}, nil
}

func (b *mockBuilder) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *mockBuilder) celebrationArgs() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bool(nil), b.celebrations...)
}

func (b *mockBuilder) prevArgs() []mascot.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]mascot.State(nil), b.prevs...)
}

// mockNotifier counts refresh signals.
type mockNotifier struct {
	mu    sync.Mutex
	count int
	err   error
}

func (n *mockNotifier) Notify(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	return n.err
}

func (n *mockNotifier) notifyCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

func eventually(f func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if f() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return f()
}

func change(celebration bool) model.ChangeEvent {
	return model.ChangeEvent{
		ID:          "ev",
		Kind:        model.ChangeUpdated,
		Celebration: celebration,
		At:          time.Now(),
	}
}

func TestScheduler_DebounceCoalesces(t *testing.T) {
	Convey("Given a scheduler with a short debounce", t, func() {
		builder := &mockBuilder{}
		notifier := &mockNotifier{}
		s := scheduler.New(builder, notifier, scheduler.WithDebounce(50*time.Millisecond))
		defer s.Close()

		Convey("When several events land inside one debounce window", func() {
			s.OnChange(change(false))
			s.OnChange(change(true))
			s.OnChange(change(false))

			Convey("Then exactly one rebuild runs once the window elapses", func() {
				So(eventually(func() bool { return builder.callCount() == 1 }, time.Second), ShouldBeTrue)
				time.Sleep(100 * time.Millisecond) // no extra rebuilds trail behind
				So(builder.callCount(), ShouldEqual, 1)

				Convey("And the accumulated celebration flag was not lost", func() {
					So(builder.celebrationArgs(), ShouldResemble, []bool{true})
				})

				Convey("And the renderer was notified exactly once", func() {
					So(eventually(func() bool { return notifier.notifyCount() == 1 }, time.Second), ShouldBeTrue)
				})
			})
		})

		Convey("When events arrive with gaps wider than the window", func() {
			s.OnChange(change(false))
			So(eventually(func() bool { return builder.callCount() == 1 }, time.Second), ShouldBeTrue)

			s.OnChange(change(false))
			So(eventually(func() bool { return builder.callCount() == 2 }, time.Second), ShouldBeTrue)

			Convey("Then each burst rebuilds once, without celebrations", func() {
				So(builder.celebrationArgs(), ShouldResemble, []bool{false, false})
			})
		})
	})
}

func TestScheduler_SingleFlight(t *testing.T) {
	Convey("Given a rebuild blocked in flight", t, func() {
		builder := &mockBuilder{block: make(chan struct{})}
		notifier := &mockNotifier{}
		s := scheduler.New(builder, notifier, scheduler.WithDebounce(10*time.Millisecond))
		defer s.Close()

		s.ForceUpdate()
		So(eventually(func() bool { return builder.callCount() == 1 }, time.Second), ShouldBeTrue)

		Convey("When more triggers arrive while it is running", func() {
			s.ForceUpdate()
			s.ForceUpdate()
			s.ForceUpdate()

			Convey("Then no second rebuild starts concurrently", func() {
				time.Sleep(50 * time.Millisecond)
				So(builder.callCount(), ShouldEqual, 1)
			})

			Convey("And exactly one owed rebuild follows the first", func() {
				close(builder.block)
				So(eventually(func() bool { return builder.callCount() == 2 }, time.Second), ShouldBeTrue)
				time.Sleep(100 * time.Millisecond)
				So(builder.callCount(), ShouldEqual, 2)
			})
		})
	})
}

func TestScheduler_RebuildFailure(t *testing.T) {
	Convey("Given a builder that fails", t, func() {
		builder := &mockBuilder{err: errors.New("store unavailable")}
		notifier := &mockNotifier{}
		s := scheduler.New(builder, notifier, scheduler.WithDebounce(10*time.Millisecond))
		defer s.Close()

		s.ForceUpdate()
		So(eventually(func() bool { return builder.callCount() == 1 }, time.Second), ShouldBeTrue)

		Convey("The failure does not notify the renderer", func() {
			time.Sleep(50 * time.Millisecond)
			So(notifier.notifyCount(), ShouldEqual, 0)
		})

		Convey("And the scheduler is not stuck in flight", func() {
			builder.mu.Lock()
			builder.err = nil
			builder.mu.Unlock()

			s.ForceUpdate()
			So(eventually(func() bool { return builder.callCount() == 2 }, time.Second), ShouldBeTrue)
			So(eventually(func() bool { return notifier.notifyCount() == 1 }, time.Second), ShouldBeTrue)
		})
	})

	Convey("Given a notifier that fails", t, func() {
		builder := &mockBuilder{}
		notifier := &mockNotifier{err: errors.New("renderer gone")}
		s := scheduler.New(builder, notifier, scheduler.WithDebounce(10*time.Millisecond))
		defer s.Close()

		Convey("Rebuilds still complete", func() {
			s.ForceUpdate()
			So(eventually(func() bool { return builder.callCount() == 1 }, time.Second), ShouldBeTrue)

			s.ForceUpdate()
			So(eventually(func() bool { return builder.callCount() == 2 }, time.Second), ShouldBeTrue)
		})
	})
}

func TestScheduler_Close(t *testing.T) {
	Convey("Given a closed scheduler", t, func() {
		builder := &mockBuilder{}
		s := scheduler.New(builder, &mockNotifier{}, scheduler.WithDebounce(10*time.Millisecond))
		s.Close()

		Convey("Events and manual triggers no longer fire rebuilds", func() {
			s.OnChange(change(true))
			s.ForceUpdate()
			time.Sleep(100 * time.Millisecond)
			So(builder.callCount(), ShouldEqual, 0)
		})

		Convey("Closing again is harmless", func() {
			So(s.Close, ShouldNotPanic)
		})
	})

	Convey("Given a scheduler with a pending debounce", t, func() {
		builder := &mockBuilder{}
		s := scheduler.New(builder, &mockNotifier{}, scheduler.WithDebounce(50*time.Millisecond))

		s.OnChange(change(false))
		s.Close()

		Convey("The pending debounce never fires after teardown", func() {
			time.Sleep(150 * time.Millisecond)
			So(builder.callCount(), ShouldEqual, 0)
		})
	})
}

func TestScheduler_NextWake(t *testing.T) {
	at := func(hour, min int) time.Time {
		return time.Date(2026, 3, 14, hour, min, 13, 0, time.UTC)
	}

	Convey("Given the wake-instant computation", t, func() {
		derived := mascot.Initial()

		Convey("Mid-hour it lands on the next half-hour boundary", func() {
			next := scheduler.NextWake(at(10, 7), derived)
			So(next.Equal(time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("A celebration expiring before the boundary wins", func() {
			m := mascot.Celebrate(at(10, 7))
			next := scheduler.NextWake(at(10, 7), m)
			So(next.Equal(*m.ExpiresAt), ShouldBeTrue)
		})

		Convey("A celebration expiring after the boundary does not delay it", func() {
			exp := at(10, 45)
			m := mascot.State{Emotion: mascot.EmotionCelebrate, ExpiresAt: &exp}
			next := scheduler.NextWake(at(10, 7), m)
			So(next.Equal(time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("An already-expired celebration is ignored", func() {
			exp := at(10, 0)
			m := mascot.State{Emotion: mascot.EmotionCelebrate, ExpiresAt: &exp}
			next := scheduler.NextWake(at(10, 7), m)
			So(next.Equal(time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("Approaching a transition hour it wakes exactly on the hour", func() {
			next := scheduler.NextWake(at(16, 59), derived)
			So(next.Equal(time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("Late at night it wakes at midnight", func() {
			next := scheduler.NextWake(at(23, 47), derived)
			So(next.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("The wake instant is always strictly in the future", func() {
			for hour := 0; hour < 24; hour++ {
				now := at(hour, 29)
				So(scheduler.NextWake(now, derived).After(now), ShouldBeTrue)
			}
		})
	})
}

func TestScheduler_StaleDebounceFiring(t *testing.T) {
	Convey("Given a debounce window superseded by a later event", t, func() {
		builder := &mockBuilder{}
		s := scheduler.New(builder, &mockNotifier{}, scheduler.WithDebounce(time.Hour))
		defer s.Close()

		s.OnChange(change(false))
		s.OnChange(change(true))

		Convey("A firing from the superseded timer is a no-op", func() {
			s.FireDebounce(1)
			time.Sleep(50 * time.Millisecond)
			So(builder.callCount(), ShouldEqual, 0)

			Convey("And the current window still delivers the celebration", func() {
				s.FireDebounce(2)
				So(eventually(func() bool { return builder.callCount() == 1 }, time.Second), ShouldBeTrue)
				So(builder.celebrationArgs(), ShouldResemble, []bool{true})
			})
		})
	})
}

func TestScheduler_InitialMascot(t *testing.T) {
	Convey("Given a scheduler seeded with a recovered celebration", t, func() {
		seed := mascot.Celebrate(time.Now())
		builder := &mockBuilder{}
		s := scheduler.New(builder, &mockNotifier{},
			scheduler.WithDebounce(10*time.Millisecond),
			scheduler.WithInitialMascot(seed),
		)
		defer s.Close()

		Convey("The first rebuild carries the seeded state", func() {
			s.ForceUpdate()
			So(eventually(func() bool { return builder.callCount() == 1 }, time.Second), ShouldBeTrue)
			So(builder.prevArgs()[0], ShouldResemble, seed)
		})
	})
}

func TestScheduler_PanicContainment(t *testing.T) {
	Convey("Given a builder that panics", t, func() {
		builder := &panickyBuilder{}
		s := scheduler.New(builder, &mockNotifier{}, scheduler.WithDebounce(10*time.Millisecond))
		defer s.Close()

		Convey("The scheduler absorbs the panic and keeps scheduling", func() {
			s.ForceUpdate()
			So(eventually(func() bool { return builder.callCount() == 1 }, time.Second), ShouldBeTrue)

			s.ForceUpdate()
			So(eventually(func() bool { return builder.callCount() == 2 }, time.Second), ShouldBeTrue)
		})
	})
}

type panickyBuilder struct {
	mu    sync.Mutex
	calls int
}

func (b *panickyBuilder) Generate(context.Context, mascot.State, bool) (*snapshot.Snapshot, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	panic("boom")
}

func (b *panickyBuilder) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}
