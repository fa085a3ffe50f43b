package goalstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/okian/glance/internal/domain/model"
)

// Schema is the goal store layout this reader understands. The schema is
// owned by the goal-tracking app; it is exported here so dev tooling
// (cmd/seed-goals) can create a compatible database.
const Schema = `
CREATE TABLE IF NOT EXISTS goals (
    id                TEXT PRIMARY KEY,
    title             TEXT NOT NULL,
    goal_type         TEXT NOT NULL,
    progress_type     TEXT NOT NULL,
    target_value      REAL,
    current_value     REAL NOT NULL DEFAULT 0,
    unit              TEXT NOT NULL DEFAULT '',
    percent_complete  REAL NOT NULL DEFAULT 0,
    deadline          INTEGER,
    current_streak    INTEGER NOT NULL DEFAULT 0,
    longest_streak    INTEGER NOT NULL DEFAULT 0,
    last_completed_at INTEGER,
    created_at        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS milestones (
    id           TEXT PRIMARY KEY,
    goal_id      TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
    title        TEXT NOT NULL,
    completed    INTEGER NOT NULL DEFAULT 0,
    completed_at INTEGER,
    sort_order   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS completions (
    goal_id      TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
    completed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_milestones_goal ON milestones(goal_id);
CREATE INDEX IF NOT EXISTS idx_completions_goal ON completions(goal_id, completed_at);`

type goalRow struct {
	ID              string   `db:"id"`
	Title           string   `db:"title"`
	GoalType        string   `db:"goal_type"`
	ProgressType    string   `db:"progress_type"`
	TargetValue     *float64 `db:"target_value"`
	CurrentValue    float64  `db:"current_value"`
	Unit            string   `db:"unit"`
	PercentComplete float64  `db:"percent_complete"`
	Deadline        *int64   `db:"deadline"`
	CurrentStreak   int      `db:"current_streak"`
	LongestStreak   int      `db:"longest_streak"`
	LastCompletedAt *int64   `db:"last_completed_at"`
	CreatedAt       int64    `db:"created_at"`
}

type milestoneRow struct {
	ID          string `db:"id"`
	GoalID      string `db:"goal_id"`
	Title       string `db:"title"`
	Completed   bool   `db:"completed"`
	CompletedAt *int64 `db:"completed_at"`
}

type completionRow struct {
	GoalID      string `db:"goal_id"`
	CompletedAt int64  `db:"completed_at"`
}

// SQLiteReader implements Reader over the goal-tracking app's SQLite
// database, strictly read-only.
type SQLiteReader struct {
	db   *sqlx.DB
	path string
	now  func() time.Time
}

// ReaderOption applies a configuration option to the SQLiteReader.
type ReaderOption func(*SQLiteReader)

// WithReaderClock overrides the clock used to bound "today's" completions.
func WithReaderClock(now func() time.Time) ReaderOption {
	return func(r *SQLiteReader) {
		if now != nil {
			r.now = now
		}
	}
}

// NewSQLiteReader opens the goal database at path for reading.
func NewSQLiteReader(path string, opts ...ReaderOption) (*SQLiteReader, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenStore, err)
	}
	// Writers elsewhere run WAL; a plain read connection is enough here.
	r := &SQLiteReader{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Path returns the database file path, used by the change watcher.
func (r *SQLiteReader) Path() string {
	return r.path
}

// ReadAll returns every goal with its milestones and today's completions.
func (r *SQLiteReader) ReadAll(ctx context.Context) ([]model.Goal, error) {
	var rows []goalRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT * FROM goals ORDER BY created_at, id"); err != nil {
		return nil, fmt.Errorf("reading goals: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var mrows []milestoneRow
	if err := r.db.SelectContext(ctx, &mrows,
		"SELECT id, goal_id, title, completed, completed_at FROM milestones ORDER BY goal_id, sort_order, id"); err != nil {
		return nil, fmt.Errorf("reading milestones: %w", err)
	}
	milestones := make(map[string][]model.Milestone)
	for _, m := range mrows {
		milestones[m.GoalID] = append(milestones[m.GoalID], model.Milestone{
			ID:          m.ID,
			Title:       m.Title,
			Completed:   m.Completed,
			CompletedAt: epochToTime(m.CompletedAt),
		})
	}

	now := r.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var crows []completionRow
	if err := r.db.SelectContext(ctx, &crows,
		"SELECT goal_id, completed_at FROM completions WHERE completed_at >= ? ORDER BY completed_at",
		dayStart.Unix()); err != nil {
		return nil, fmt.Errorf("reading completions: %w", err)
	}
	completions := make(map[string][]time.Time)
	for _, c := range crows {
		completions[c.GoalID] = append(completions[c.GoalID], time.Unix(c.CompletedAt, 0))
	}

	goals := make([]model.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, model.Goal{
			ID:               row.ID,
			Title:            row.Title,
			GoalType:         model.GoalType(row.GoalType),
			ProgressType:     model.ProgressType(row.ProgressType),
			TargetValue:      row.TargetValue,
			CurrentValue:     row.CurrentValue,
			Unit:             row.Unit,
			PercentComplete:  row.PercentComplete,
			Milestones:       milestones[row.ID],
			Deadline:         epochToTime(row.Deadline),
			TodayCompletions: completions[row.ID],
			CurrentStreak:    row.CurrentStreak,
			LongestStreak:    row.LongestStreak,
			LastCompletedAt:  epochToTime(row.LastCompletedAt),
			CreatedAt:        time.Unix(row.CreatedAt, 0),
		})
	}
	return goals, nil
}

// Close closes the underlying database.
func (r *SQLiteReader) Close() error {
	return r.db.Close()
}

func epochToTime(epoch *int64) *time.Time {
	if epoch == nil {
		return nil
	}
	t := time.Unix(*epoch, 0)
	return &t
}
