// Package metrics provides Prometheus metrics for the glance snapshot
// producer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the snapshot producer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scheduler metrics
	rebuilds        prometheus.Counter
	rebuildErrors   prometheus.Counter
	rebuildDuration prometheus.Histogram
	changeEvents    prometheus.Counter
	coalescedEvents prometheus.Counter
	celebrations    prometheus.Counter
	nextWakeUnix    prometheus.Gauge

	// Snapshot store metrics
	snapshotWrites      prometheus.Counter
	snapshotWriteErrors prometheus.Counter
	lastSnapshotUnix    prometheus.Gauge

	// Goal data metrics
	goalsTracked prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Init initializes the global metrics manager.
func Init(opts ...Option) error {
	if globalManager != nil {
		return ErrAlreadyInitialized
	}
	globalManager = NewManager(opts...)
	return nil
}

// Get returns the global metrics manager, initializing it with defaults on
// first use.
func Get() *Manager {
	if globalManager == nil {
		globalManager = NewManager()
	}
	return globalManager
}

// Reset clears the global manager. Intended for tests.
func Reset() {
	globalManager = nil
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "glance",
		subsystem:        "widget",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.rebuilds = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rebuilds_total",
		Help: "Completed snapshot rebuilds.",
	})
	m.rebuildErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rebuild_errors_total",
		Help: "Rebuilds that failed and were absorbed at the rebuild boundary.",
	})
	m.rebuildDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "rebuild_duration_seconds",
		Help:    "Snapshot rebuild wall time.",
		Buckets: m.histogramBuckets,
	})
	m.changeEvents = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "change_events_total",
		Help: "Goal change events received from the goal store.",
	})
	m.coalescedEvents = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "coalesced_events_total",
		Help: "Change events superseded inside a debounce window.",
	})
	m.celebrations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "celebrations_total",
		Help: "Celebration overrides applied to the mascot.",
	})
	m.nextWakeUnix = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "next_wake_unix",
		Help: "Unix time of the next armed time-based rebuild.",
	})
	m.snapshotWrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_writes_total",
		Help: "Successful snapshot store writes.",
	})
	m.snapshotWriteErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_write_errors_total",
		Help: "Failed snapshot store writes.",
	})
	m.lastSnapshotUnix = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "last_snapshot_unix",
		Help: "generatedAt of the most recent persisted snapshot.",
	})
	m.goalsTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "goals_tracked",
		Help: "Goals present in the last snapshot generation.",
	})

	return m
}

// Package-level helpers recording against the global manager.

func RecordRebuild()                  { Get().rebuilds.Inc() }
func RecordRebuildError()             { Get().rebuildErrors.Inc() }
func RecordRebuildDuration(s float64) { Get().rebuildDuration.Observe(s) }
func RecordChangeEvent()              { Get().changeEvents.Inc() }
func RecordCoalescedEvent()           { Get().coalescedEvents.Inc() }
func RecordCelebration()              { Get().celebrations.Inc() }
func UpdateNextWakeUnix(t int64)      { Get().nextWakeUnix.Set(float64(t)) }
func RecordSnapshotWrite()            { Get().snapshotWrites.Inc() }
func RecordSnapshotWriteError()       { Get().snapshotWriteErrors.Inc() }
func UpdateLastSnapshotUnix(t int64)  { Get().lastSnapshotUnix.Set(float64(t)) }
func UpdateGoalsTracked(n int)        { Get().goalsTracked.Set(float64(n)) }
