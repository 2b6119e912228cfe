// Package stats computes derived temporal aggregates over the in-memory
// completion log. All functions are pure: they take the collections and a
// reference today and never touch storage. Counts are small, so everything
// is recomputed on demand.
package stats

import (
	"time"

	"github.com/jmorrow/cognitrack/internal/constants"
	"github.com/jmorrow/cognitrack/internal/models"
)

// DayStat is one bar of the weekly completion histogram.
type DayStat struct {
	Day       string `json:"day"`  // three-letter weekday label
	Date      string `json:"date"` // YYYY-MM-DD
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Streak walks backward day-by-day from today, up to a year, counting
// consecutive completed days. Today is exempt: an incomplete today neither
// counts nor breaks the streak. Any gap strictly before today ends the walk.
// A habit that has never been completed yields 0.
func Streak(completions []models.HabitCompletion, habitID string, today time.Time) int {
	completed := make(map[string]bool)
	for _, c := range completions {
		if c.HabitID == habitID && c.Completed {
			completed[c.Date] = true
		}
	}

	streak := 0
	for i := 0; i < constants.StreakLookbackDays; i++ {
		date := today.AddDate(0, 0, -i).Format(constants.DateFormat)
		if completed[date] {
			streak++
		} else if i > 0 {
			break
		}
	}
	return streak
}

// BestStreak returns the longest current streak across all habits, 0 when
// no habits exist.
func BestStreak(habits []models.Habit, completions []models.HabitCompletion, today time.Time) int {
	best := 0
	for _, h := range habits {
		if s := Streak(completions, h.ID, today); s > best {
			best = s
		}
	}
	return best
}

// WeeklyCompletionData returns one entry per day for the last 7 calendar
// days, oldest first, ending today. Total is the habit count at evaluation
// time, not a historical snapshot.
func WeeklyCompletionData(habits []models.Habit, completions []models.HabitCompletion, today time.Time) []DayStat {
	completedByDate := make(map[string]int)
	for _, c := range completions {
		if c.Completed {
			completedByDate[c.Date]++
		}
	}

	week := make([]DayStat, 0, constants.WeeklyWindowDays)
	for i := constants.WeeklyWindowDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		date := d.Format(constants.DateFormat)
		week = append(week, DayStat{
			Day:       d.Weekday().String()[:3],
			Date:      date,
			Completed: completedByDate[date],
			Total:     len(habits),
		})
	}
	return week
}
