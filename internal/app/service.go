// Package app wires the goal store, snapshot builder, scheduler, and
// notifier into one runnable service. All collaborators are constructed
// and passed explicitly; there is no ambient global wiring.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/okian/glance/internal/adapters/goalstore"
	"github.com/okian/glance/internal/adapters/notify"
	"github.com/okian/glance/internal/adapters/repository"
	"github.com/okian/glance/internal/scheduler"
	"github.com/okian/glance/internal/snapshot"
	"github.com/okian/glance/pkg/logger"
)

// Service implements the glance snapshot producer.
type Service struct {
	mu sync.Mutex

	// Core components
	goalReader *goalstore.SQLiteReader
	watcher    goalstore.Subscription
	store      repository.Store
	builder    *snapshot.Builder
	scheduler  *scheduler.Scheduler
	notifier   notify.Notifier

	// Configuration
	goalDBPath     string
	snapshotDBPath string
	notifyPath     string
	debounce       time.Duration

	// State
	started  bool
	pumpDone chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGoalDB sets the goal database path.
func WithGoalDB(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.goalDBPath = path
		}
	}
}

// WithSnapshotDB sets the shared snapshot database path.
func WithSnapshotDB(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.snapshotDBPath = path
		}
	}
}

// WithNotifyPath sets the renderer notify marker file. Empty leaves the
// notify channel disabled.
func WithNotifyPath(path string) Option {
	return func(s *Service) {
		s.notifyPath = path
	}
}

// WithDebounce sets the goal-change debounce window.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		goalDBPath:     "goals.db",
		snapshotDBPath: "widget.db",
		debounce:       300 * time.Millisecond,
		logger:         nil, // resolved at Start
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the stores, wires the scheduler, begins listening for goal
// changes, and triggers the initial snapshot rebuild.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting snapshot producer...")

	reader, err := goalstore.NewSQLiteReader(s.goalDBPath)
	if err != nil {
		return err
	}
	s.goalReader = reader

	store, err := repository.NewSQLiteStore(s.snapshotDBPath)
	if err != nil {
		reader.Close()
		return err
	}
	s.store = store

	if s.notifyPath != "" {
		s.notifier = notify.FileTouch{Path: s.notifyPath}
	} else {
		// Tolerate absence of the notify channel, e.g. at cold start
		// before the renderer has registered one.
		s.notifier = notify.Nop{}
	}

	s.builder = snapshot.NewBuilder(reader, store,
		snapshot.WithLogger(s.logger.Named("snapshot")),
	)

	schedOpts := []scheduler.Option{
		scheduler.WithDebounce(s.debounce),
		scheduler.WithLogger(s.logger.Named("scheduler")),
	}
	// Recover the persisted mascot so a live celebration (and its
	// expiry-driven wake) survives a restart.
	if snap, err := s.builder.Latest(ctx); err == nil && snap != nil {
		schedOpts = append(schedOpts, scheduler.WithInitialMascot(snap.Mascot.State()))
	}
	s.scheduler = scheduler.New(s.builder, s.notifier, schedOpts...)

	watcher, err := goalstore.NewWatcher(reader,
		goalstore.WithWatcherLogger(s.logger.Named("goalwatch")),
	)
	if err != nil {
		// Without the watcher the producer degrades to timer-driven
		// updates instead of crashing.
		s.logger.Warn(ctx, "goal change subscription unavailable; running timer-driven only", logger.Error(err))
	} else {
		s.watcher = watcher
		s.pumpDone = make(chan struct{})
		go s.pumpEvents()
	}

	// Publish an initial snapshot so the renderer never starts blank.
	s.scheduler.ForceUpdate()

	s.started = true
	s.logger.Info(ctx, "snapshot producer started",
		logger.String("goalDB", s.goalDBPath),
		logger.String("snapshotDB", s.snapshotDBPath),
		logger.Duration("debounce", s.debounce),
	)
	return nil
}

// pumpEvents forwards goal store change events into the scheduler.
func (s *Service) pumpEvents() {
	defer close(s.pumpDone)
	for ev := range s.watcher.Events() {
		s.scheduler.OnChange(ev)
	}
}

// ForceUpdate requests an immediate rebuild, e.g. from an external alarm.
func (s *Service) ForceUpdate() {
	s.mu.Lock()
	sched := s.scheduler
	s.mu.Unlock()
	if sched != nil {
		sched.ForceUpdate()
	}
}

// Snapshot returns the currently persisted snapshot, or nil when none
// exists or the record is malformed.
func (s *Service) Snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	s.mu.Lock()
	builder := s.builder
	s.mu.Unlock()
	if builder == nil {
		return nil, nil
	}
	return builder.Latest(ctx)
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping snapshot producer...")

	if s.scheduler != nil {
		s.scheduler.Close()
	}
	if s.watcher != nil {
		_ = s.watcher.Close()
		<-s.pumpDone
	}
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.goalReader != nil {
		_ = s.goalReader.Close()
	}

	s.started = false
	s.logger.Info(ctx, "snapshot producer stopped")
}
