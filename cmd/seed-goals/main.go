// Command seed-goals creates a goal database compatible with the glance
// reader and fills it with representative sample goals. It exists for
// local development and manual widget testing; the real database is owned
// by the goal-tracking app.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/okian/glance/internal/adapters/goalstore"
)

func main() {
	path := flag.String("db", "goals.db", "goal database path")
	completeDaily := flag.Bool("complete-daily", false, "mark the daily goals completed for today")
	flag.Parse()

	if err := run(*path, *completeDaily); err != nil {
		fmt.Fprintln(os.Stderr, "seed-goals:", err)
		os.Exit(1)
	}
}

func run(path string, completeDaily bool) error {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := db.Exec(goalstore.Schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	now := time.Now()

	type seed struct {
		title        string
		goalType     string
		progressType string
		target       *float64
		current      float64
		unit         string
		percent      float64
		deadline     *time.Time
		streak       int
		milestones   []string
		doneStones   int
	}
	target := func(v float64) *float64 { return &v }
	deadline := now.AddDate(0, 2, 0)

	seeds := []seed{
		{title: "Morning run", goalType: "daily", progressType: "completion", streak: 5},
		{title: "Drink water", goalType: "daily", progressType: "numeric", target: target(8), unit: "glasses", streak: 12},
		{title: "Read 20 pages", goalType: "daily", progressType: "numeric", target: target(20), unit: "pages", streak: 2},
		{title: "Ship the side project", goalType: "longTerm", progressType: "milestones", deadline: &deadline,
			milestones: []string{"Design", "Prototype", "Beta", "Launch"}, doneStones: 2},
		{title: "Learn Spanish", goalType: "longTerm", progressType: "percentage", percent: 35},
	}

	for _, s := range seeds {
		id := uuid.New().String()
		var deadlineEpoch *int64
		if s.deadline != nil {
			e := s.deadline.Unix()
			deadlineEpoch = &e
		}
		_, err := db.Exec(
			`INSERT INTO goals (id, title, goal_type, progress_type, target_value, current_value,
			     unit, percent_complete, deadline, current_streak, longest_streak, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, s.title, s.goalType, s.progressType, s.target, s.current,
			s.unit, s.percent, deadlineEpoch, s.streak, s.streak, now.AddDate(0, -1, 0).Unix(),
		)
		if err != nil {
			return fmt.Errorf("inserting %q: %w", s.title, err)
		}

		for i, title := range s.milestones {
			done := i < s.doneStones
			var completedAt *int64
			if done {
				e := now.AddDate(0, 0, -(len(s.milestones) - i)).Unix()
				completedAt = &e
			}
			_, err := db.Exec(
				"INSERT INTO milestones (id, goal_id, title, completed, completed_at, sort_order) VALUES (?, ?, ?, ?, ?, ?)",
				uuid.New().String(), id, title, done, completedAt, i,
			)
			if err != nil {
				return fmt.Errorf("inserting milestone %q: %w", title, err)
			}
		}

		if completeDaily && s.goalType == "daily" {
			n := 1
			if s.target != nil {
				n = int(*s.target)
			}
			for i := 0; i < n; i++ {
				_, err := db.Exec(
					"INSERT INTO completions (goal_id, completed_at) VALUES (?, ?)",
					id, now.Add(-time.Duration(i)*time.Minute).Unix(),
				)
				if err != nil {
					return fmt.Errorf("inserting completion: %w", err)
				}
			}
			if _, err := db.Exec("UPDATE goals SET last_completed_at = ?, current_value = 1 WHERE id = ?", now.Unix(), id); err != nil {
				return fmt.Errorf("marking %q complete: %w", s.title, err)
			}
		}
	}

	fmt.Printf("seeded %d goals into %s\n", len(seeds), path)
	return nil
}
