package goalstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/ulid/v2"

	"github.com/okian/glance/internal/domain/model"
	"github.com/okian/glance/pkg/logger"
)

// eventBuffer bounds the change channel. The scheduler debounces anyway,
// so dropping under extreme backpressure loses nothing but an extra
// trigger.
const eventBuffer = 64

// Watcher turns filesystem activity on the goal database into goal-change
// events. The goal-tracking app writes the database from another process;
// every write surfaces here as a ChangeEvent. A completion newer than the
// last one observed is flagged as a celebration so the signal survives the
// scheduler's debounce.
type Watcher struct {
	reader  *SQLiteReader
	watcher *fsnotify.Watcher
	events  chan model.ChangeEvent
	cancel  context.CancelFunc
	done    chan struct{}
	now     func() time.Time
	logger  logger.Logger

	lastCompletion time.Time
}

// WatcherOption applies a configuration option to the Watcher.
type WatcherOption func(*Watcher)

// WithWatcherClock overrides the wall clock, for deterministic tests.
func WithWatcherClock(now func() time.Time) WatcherOption {
	return func(w *Watcher) {
		if now != nil {
			w.now = now
		}
	}
}

// WithWatcherLogger sets a custom logger for the watcher.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher starts watching the reader's database file. The returned
// Watcher implements Subscription.
func NewWatcher(reader *SQLiteReader, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatch, err)
	}
	// Watch the directory: SQLite swaps WAL and journal files around, and
	// watching the file inode directly breaks on rename.
	dir := filepath.Dir(reader.Path())
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("%w: %v", ErrWatch, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		reader:  reader,
		watcher: fsw,
		events:  make(chan model.ChangeEvent, eventBuffer),
		cancel:  cancel,
		done:    make(chan struct{}),
		now:     time.Now,
		logger:  logger.Get().Named("goalwatch"),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.seedLastCompletion(ctx)
	go w.run(ctx)
	return w, nil
}

// Events returns the change stream.
func (w *Watcher) Events() <-chan model.ChangeEvent {
	return w.events
}

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

// seedLastCompletion records the newest completion present at startup so a
// cold start does not replay an old celebration.
func (w *Watcher) seedLastCompletion(ctx context.Context) {
	goals, err := w.reader.ReadAll(ctx)
	if err != nil {
		w.logger.Warn(ctx, "seeding completion watermark failed", logger.Error(err))
		return
	}
	for i := range goals {
		if at := goals[i].LastCompletedAt; at != nil && at.After(w.lastCompletion) {
			w.lastCompletion = *at
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)

	base := filepath.Base(w.reader.Path())
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relatesTo(ev.Name, base) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.emit(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "goal store watch error", logger.Error(err))
		}
	}
}

// relatesTo matches the database file and its WAL/journal side files.
func relatesTo(path, base string) bool {
	return strings.HasPrefix(filepath.Base(path), base)
}

// emit publishes a change event, peeking at goal data to classify it.
func (w *Watcher) emit(ctx context.Context) {
	ev := model.ChangeEvent{
		ID:   ulid.Make().String(),
		Kind: model.ChangeUpdated,
		At:   w.now(),
	}

	if goals, err := w.reader.ReadAll(ctx); err == nil {
		for i := range goals {
			if at := goals[i].LastCompletedAt; at != nil && at.After(w.lastCompletion) {
				w.lastCompletion = *at
				ev.Kind = model.ChangeCompleted
				ev.GoalID = goals[i].ID
				ev.Celebration = true
			}
		}
	} else {
		// Classification is best-effort; an unclassified change still
		// triggers a rebuild.
		w.logger.Debug(ctx, "change classification failed", logger.Error(err))
	}

	select {
	case w.events <- ev:
	default:
		w.logger.Warn(ctx, "dropping change event, subscriber backlogged",
			logger.String("id", ev.ID),
		)
	}
}
