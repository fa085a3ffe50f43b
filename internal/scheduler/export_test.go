package scheduler

import (
	"time"

	"github.com/okian/glance/internal/domain/mascot"
)

// NextWake exposes the wake-instant computation to the package tests.
func NextWake(now time.Time, m mascot.State) time.Time {
	return nextWake(now, m)
}

// FireDebounce invokes the debounce callback with an explicit generation,
// standing in for a timer firing.
func (s *Scheduler) FireDebounce(gen uint64) {
	s.onDebounceFired(gen)
}
