// Package remote defines the per-user document store the sync engine
// mirrors into. Collections are flat: one document per habit keyed by habit
// id, one document per completion keyed by {habitId}_{date}, and a singular
// profile document per user.
package remote

import (
	"context"

	"github.com/jmorrow/cognitrack/internal/models"
)

// Batch is an atomic multi-write: either every operation commits or none
// does. Deletes are applied after puts.
type Batch struct {
	PutHabits            []models.Habit
	PutCompletions       []models.HabitCompletion
	DeleteHabitIDs       []string
	DeleteCompletionKeys []string
}

// Empty reports whether the batch contains no operations.
func (b Batch) Empty() bool {
	return len(b.PutHabits) == 0 && len(b.PutCompletions) == 0 &&
		len(b.DeleteHabitIDs) == 0 && len(b.DeleteCompletionKeys) == 0
}

// Store is a per-user remote document store. All operations are scoped to a
// user id; a store is only reachable while a user identity is present.
type Store interface {
	// Habits
	ListHabits(ctx context.Context, uid string) ([]models.Habit, error)
	PutHabit(ctx context.Context, uid string, habit models.Habit) error
	DeleteHabit(ctx context.Context, uid, habitID string) error

	// Completions
	ListCompletions(ctx context.Context, uid string) ([]models.HabitCompletion, error)
	PutCompletion(ctx context.Context, uid string, completion models.HabitCompletion) error
	DeleteCompletion(ctx context.Context, uid, key string) error

	// WriteBatch commits the batch atomically.
	WriteBatch(ctx context.Context, uid string, batch Batch) error

	// Subscribe opens live snapshot feeds for the user's habits and
	// completions. Every pushed snapshot is a full-collection replacement.
	// The subscription stays open until Close is called or ctx is done.
	Subscribe(ctx context.Context, uid string) (*Subscription, error)

	// Profile document
	UpsertProfile(ctx context.Context, profile models.Profile) error
	GetProfile(ctx context.Context, uid string) (models.Profile, bool, error)

	Close() error
}
