package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	c "github.com/smartystreets/goconvey/convey"
)

// resetWithPrivateRegistry rebinds the global manager to a fresh registry so
// tests never double-register on the process-wide default.
func resetWithPrivateRegistry(t *testing.T) {
	t.Helper()
	Reset()
	if err := Init(WithRegistry(prometheus.NewRegistry())); err != nil {
		t.Fatalf("initializing metrics: %v", err)
	}
}

func TestManagerCreation(t *testing.T) {
	c.Convey("Given metrics manager creation", t, func() {
		c.Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			c.Convey("Then it should be created successfully", func() {
				c.So(manager, c.ShouldNotBeNil)
			})
		})

		c.Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(registry),
			)

			c.Convey("Then it should be created successfully", func() {
				c.So(manager, c.ShouldNotBeNil)
			})
		})
	})
}

func TestInitAndReset(t *testing.T) {
	c.Convey("Given the global manager", t, func() {
		Reset()

		c.Convey("Init succeeds once", func() {
			c.So(Init(WithRegistry(prometheus.NewRegistry())), c.ShouldBeNil)

			c.Convey("And a second Init is rejected", func() {
				c.So(Init(), c.ShouldEqual, ErrAlreadyInitialized)
			})

			c.Convey("And Get returns the initialized manager", func() {
				c.So(Get(), c.ShouldNotBeNil)
			})
		})

		Reset()
		c.So(Init(WithRegistry(prometheus.NewRegistry())), c.ShouldBeNil)
	})
}

func TestRecording(t *testing.T) {
	resetWithPrivateRegistry(t)

	c.Convey("Given the recording helpers", t, func() {
		c.Convey("Scheduler counters record without panicking", func() {
			c.So(func() {
				RecordRebuild()
				RecordRebuildError()
				RecordRebuildDuration(0.05)
				RecordChangeEvent()
				RecordCoalescedEvent()
				RecordCelebration()
				UpdateNextWakeUnix(1700000000)
			}, c.ShouldNotPanic)
		})

		c.Convey("Snapshot store counters record without panicking", func() {
			c.So(func() {
				RecordSnapshotWrite()
				RecordSnapshotWriteError()
				UpdateLastSnapshotUnix(1700000000)
				UpdateGoalsTracked(5)
			}, c.ShouldNotPanic)
		})

		c.Convey("Edge values are accepted", func() {
			c.So(func() {
				RecordRebuildDuration(0.0)
				RecordRebuildDuration(3600.0)
				UpdateNextWakeUnix(0)
				UpdateGoalsTracked(0)
				UpdateLastSnapshotUnix(-1)
			}, c.ShouldNotPanic)
		})
	})
}

func TestConcurrency(t *testing.T) {
	resetWithPrivateRegistry(t)

	c.Convey("Given concurrent recording", t, func() {
		done := make(chan bool, 10)

		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordRebuild()
					RecordChangeEvent()
					RecordRebuildDuration(float64(j) / 1000)
					UpdateGoalsTracked(j)
				}
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		c.Convey("Then it should handle concurrent access without panics", func() {
			c.So(true, c.ShouldBeTrue)
		})
	})
}
