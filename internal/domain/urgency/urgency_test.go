package urgency_test

import (
	"testing"
	"time"

	"github.com/okian/glance/internal/domain/model"
	"github.com/okian/glance/internal/domain/urgency"
	. "github.com/smartystreets/goconvey/convey"
)

func target(v float64) *float64 { return &v }

func at(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 0, 0, 0, time.Local)
}

func TestScore_Bounds(t *testing.T) {
	Convey("Given a variety of goals and instants", t, func() {
		deadline := at(12).AddDate(0, 1, 0)
		goals := []model.Goal{
			{GoalType: model.GoalTypeDaily, ProgressType: model.ProgressCompletion, CurrentStreak: 90},
			{GoalType: model.GoalTypeDaily, ProgressType: model.ProgressNumeric, TargetValue: target(8)},
			{GoalType: model.GoalTypeLongTerm, ProgressType: model.ProgressPercentage, PercentComplete: 20,
				Deadline: &deadline, CreatedAt: at(12).AddDate(0, -1, 0)},
			{GoalType: model.GoalTypeLongTerm, ProgressType: model.ProgressPercentage, PercentComplete: 80},
		}

		Convey("Scores always stay inside [0,1]", func() {
			for _, g := range goals {
				for _, hour := range []int{0, 6, 12, 21, 23} {
					s := urgency.Score(&g, at(hour))
					So(s, ShouldBeGreaterThanOrEqualTo, 0)
					So(s, ShouldBeLessThanOrEqualTo, 1)
				}
			}
		})

		Convey("A completed goal always scores zero", func() {
			done := model.Goal{GoalType: model.GoalTypeLongTerm, ProgressType: model.ProgressPercentage, PercentComplete: 100}
			So(urgency.Score(&done, at(12)), ShouldEqual, 0)

			doneDaily := model.Goal{GoalType: model.GoalTypeDaily, ProgressType: model.ProgressCompletion, CurrentValue: 1}
			So(urgency.Score(&doneDaily, at(21)), ShouldEqual, 0)
		})

		Convey("A nil goal scores zero", func() {
			So(urgency.Score(nil, at(12)), ShouldEqual, 0)
		})
	})
}

func TestScore_DailyNumericMonotonic(t *testing.T) {
	Convey("Given a daily numeric goal with fixed time and streak", t, func() {
		now := at(14)
		build := func(completions int) *model.Goal {
			done := make([]time.Time, completions)
			for i := range done {
				done[i] = now.Add(-time.Duration(i+1) * time.Minute)
			}
			return &model.Goal{
				GoalType:         model.GoalTypeDaily,
				ProgressType:     model.ProgressNumeric,
				TargetValue:      target(5),
				TodayCompletions: done,
				CurrentStreak:    10,
			}
		}

		Convey("Urgency never increases as completions approach the target", func() {
			prev := 2.0
			for c := 0; c <= 5; c++ {
				s := urgency.Score(build(c), now)
				So(s, ShouldBeLessThanOrEqualTo, prev)
				prev = s
			}

			Convey("And it reaches its minimum once the target is met", func() {
				atTarget := urgency.Score(build(5), now)
				for c := 0; c < 5; c++ {
					So(urgency.Score(build(c), now), ShouldBeGreaterThanOrEqualTo, atTarget)
				}
			})
		})
	})
}

func TestScore_DailyEveningStreak(t *testing.T) {
	Convey("Given an incomplete daily goal with a 5-day streak at 21:00", t, func() {
		g := &model.Goal{
			GoalType:      model.GoalTypeDaily,
			ProgressType:  model.ProgressCompletion,
			CurrentStreak: 5,
		}
		s := urgency.Score(g, at(21))

		Convey("Then urgency lands strictly above the worried threshold", func() {
			// progress 1*0.5 + time (15h/16h)*0.3 + streak (5/30)*0.2
			So(s, ShouldBeGreaterThan, 0.6)
			So(s, ShouldAlmostEqual, 0.5+0.9375*0.3+(5.0/30.0)*0.2, 1e-9)
		})
	})
}

func TestScore_LongTerm(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

	Convey("Given long-term goals", t, func() {
		Convey("An overdue incomplete goal scores exactly 1.0 regardless of progress", func() {
			deadline := time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local)
			for _, pct := range []float64{0, 40, 99} {
				g := &model.Goal{
					GoalType:        model.GoalTypeLongTerm,
					ProgressType:    model.ProgressPercentage,
					PercentComplete: pct,
					Deadline:        &deadline,
					CreatedAt:       created,
				}
				So(urgency.Score(g, deadline.AddDate(0, 0, 7)), ShouldEqual, 1.0)
			}
		})

		Convey("An undated goal stays below the undated ceiling", func() {
			g := &model.Goal{GoalType: model.GoalTypeLongTerm, ProgressType: model.ProgressPercentage}
			So(urgency.Score(g, at(12)), ShouldBeLessThanOrEqualTo, 0.3)

			Convey("And shrinks as progress grows", func() {
				g.PercentComplete = 90
				So(urgency.Score(g, at(12)), ShouldAlmostEqual, 0.1*0.3, 1e-9)
			})
		})

		Convey("A dated goal blends deadline pressure and progress deficit", func() {
			deadline := created.AddDate(0, 0, 10)
			now := created.AddDate(0, 0, 5) // halfway
			g := &model.Goal{
				GoalType:        model.GoalTypeLongTerm,
				ProgressType:    model.ProgressPercentage,
				PercentComplete: 10,
				Deadline:        &deadline,
				CreatedAt:       created,
			}
			// deadlineFactor 0.5, deficit 0.4
			So(urgency.Score(g, now), ShouldAlmostEqual, 0.5*0.6+0.4*0.4, 1e-9)
		})

		Convey("A non-positive total duration is treated as full deadline pressure", func() {
			deadline := created
			g := &model.Goal{
				GoalType:     model.GoalTypeLongTerm,
				ProgressType: model.ProgressPercentage,
				Deadline:     &deadline,
				CreatedAt:    created,
			}
			// now == deadline is not after it, so the guard path applies.
			So(urgency.Score(g, created), ShouldAlmostEqual, 1.0*0.6+1.0*0.4, 1e-9)
		})
	})
}

func TestMostUrgent(t *testing.T) {
	now := at(14)

	Convey("Given a set of goals", t, func() {
		deadline := now.AddDate(0, 0, 1)
		goals := []model.Goal{
			{ID: "calm", GoalType: model.GoalTypeLongTerm, ProgressType: model.ProgressPercentage, PercentComplete: 50},
			{ID: "hot", GoalType: model.GoalTypeLongTerm, ProgressType: model.ProgressPercentage,
				Deadline: &deadline, CreatedAt: now.AddDate(0, -1, 0)},
			{ID: "done", GoalType: model.GoalTypeLongTerm, ProgressType: model.ProgressPercentage, PercentComplete: 100},
		}

		Convey("The most urgent incomplete goal wins", func() {
			got := urgency.MostUrgent(goals, now)
			So(got, ShouldNotBeNil)
			So(got.ID, ShouldEqual, "hot")
		})

		Convey("Completed goals are excluded even when alone", func() {
			got := urgency.MostUrgent(goals[2:], now)
			So(got, ShouldBeNil)
		})

		Convey("An empty set yields nil", func() {
			So(urgency.MostUrgent(nil, now), ShouldBeNil)
		})
	})

	Convey("Given two goals with exactly equal urgency", t, func() {
		twin := model.Goal{GoalType: model.GoalTypeLongTerm, ProgressType: model.ProgressPercentage, PercentComplete: 40}
		first, second := twin, twin
		first.ID = "first"
		second.ID = "second"

		Convey("The earliest-encountered goal is kept on ties", func() {
			got := urgency.MostUrgent([]model.Goal{first, second}, now)
			So(got, ShouldNotBeNil)
			So(got.ID, ShouldEqual, "first")

			Convey("And order determines the winner, not any other property", func() {
				got := urgency.MostUrgent([]model.Goal{second, first}, now)
				So(got.ID, ShouldEqual, "second")
			})
		})
	})
}

func TestLevelOf(t *testing.T) {
	Convey("Given the documented thresholds", t, func() {
		So(urgency.LevelOf(0), ShouldEqual, urgency.LevelLow)
		So(urgency.LevelOf(0.34), ShouldEqual, urgency.LevelLow)
		So(urgency.LevelOf(0.35), ShouldEqual, urgency.LevelMedium)
		So(urgency.LevelOf(0.59), ShouldEqual, urgency.LevelMedium)
		So(urgency.LevelOf(0.6), ShouldEqual, urgency.LevelHigh)
		So(urgency.LevelOf(0.84), ShouldEqual, urgency.LevelHigh)
		So(urgency.LevelOf(0.85), ShouldEqual, urgency.LevelCritical)
		So(urgency.LevelOf(1), ShouldEqual, urgency.LevelCritical)
	})
}
