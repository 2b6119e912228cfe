// Package sample provides the bundled default dataset used when the local
// cache has never been written.
package sample

import (
	"time"

	"github.com/jmorrow/cognitrack/internal/constants"
	"github.com/jmorrow/cognitrack/internal/models"
)

// Habits returns the default habit set, created relative to today.
func Habits(today time.Time) []models.Habit {
	created := today.AddDate(0, 0, -6).Format(constants.DateFormat)
	return []models.Habit{
		{ID: "h1", Name: "Morning Workout", Color: models.ColorEmerald, CreatedAt: created},
		{ID: "h2", Name: "Read 20 Mins", Color: models.ColorBlue, CreatedAt: created},
		{ID: "h3", Name: "Meditate", Color: models.ColorViolet, CreatedAt: created},
		{ID: "h4", Name: "Drink 2L Water", Color: models.ColorCyan, CreatedAt: created},
		{ID: "h5", Name: "Code for 1 Hour", Color: models.ColorAmber, CreatedAt: created},
	}
}

// Completions returns a 7-day completion history for the default habits,
// ending today.
func Completions(today time.Time) []models.HabitCompletion {
	day := func(ago int) string {
		return today.AddDate(0, 0, -ago).Format(constants.DateFormat)
	}

	// One row per habit per day, patterned so streaks and the weekly
	// histogram have something to show on first run.
	pattern := map[int][]bool{
		6: {true, true, true, true, true},
		5: {true, false, true, true, true},
		4: {false, false, false, true, true},
		3: {true, true, false, true, true},
		2: {true, true, true, false, false},
		1: {false, true, false, true, true},
		0: {true, false, true, true, false},
	}

	ids := []string{"h1", "h2", "h3", "h4", "h5"}
	var completions []models.HabitCompletion
	for ago := 6; ago >= 0; ago-- {
		for i, id := range ids {
			completions = append(completions, models.HabitCompletion{
				HabitID:   id,
				Date:      day(ago),
				Completed: pattern[ago][i],
			})
		}
	}
	return completions
}
