// Package cache implements the durable local key-value store that survives
// process restarts. It is the only source of truth in local-only mode and a
// passive offline mirror while remote-subscribed.
package cache

import (
	"errors"

	"github.com/jmorrow/cognitrack/internal/models"
)

// ErrNotLoaded is returned when a store is used before Init or Load.
var ErrNotLoaded = errors.New("cache not loaded")

// Store is the local cache provider interface. The boolean results
// distinguish a key that has never been written from one holding an empty
// value, so the bundled sample dataset is only used on a true first run.
type Store interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	Habits() ([]models.Habit, bool, error)
	SaveHabits([]models.Habit) error

	// Completions
	Completions() ([]models.HabitCompletion, bool, error)
	SaveCompletions([]models.HabitCompletion) error

	// Planner slots
	Slots() (models.SlotMap, error)
	SaveSlots(models.SlotMap) error

	// Insight-service credential (fallback when the OS keyring is unavailable)
	APIKey() (string, bool, error)
	SaveAPIKey(key string) error
	DeleteAPIKey() error

	// Utils
	Path() string
}
