package sync

import (
	"context"
	"fmt"

	"github.com/jmorrow/cognitrack/internal/logger"
	"github.com/jmorrow/cognitrack/internal/models"
	"github.com/jmorrow/cognitrack/internal/remote"
)

// Migrator performs the one-shot copy of locally cached data into a newly
// authenticated user's remote collections. It runs once per transition into
// an authenticated session and only writes when the remote habit collection
// is empty; a non-empty collection means the remote is already authoritative.
type Migrator struct {
	remote remote.Store
}

func NewMigrator(remoteStore remote.Store) *Migrator {
	return &Migrator{remote: remoteStore}
}

// Run migrates the given local data for uid. Returns true when a migration
// was actually performed, false when the remote already had data. The copy
// is a single atomic batch: a failed commit leaves the remote untouched and
// the error is surfaced so the session stays non-subscribed.
func (m *Migrator) Run(ctx context.Context, uid string, habits []models.Habit, completions []models.HabitCompletion) (bool, error) {
	existing, err := m.remote.ListHabits(ctx, uid)
	if err != nil {
		return false, fmt.Errorf("failed to enumerate remote habits: %w", err)
	}
	if len(existing) > 0 {
		logger.Debug("Remote collection already populated, skipping migration", "uid", uid, "habits", len(existing))
		return false, nil
	}

	batch := remote.Batch{
		PutHabits:      habits,
		PutCompletions: completions,
	}
	if batch.Empty() {
		logger.Debug("Nothing to migrate", "uid", uid)
		return false, nil
	}

	if err := m.remote.WriteBatch(ctx, uid, batch); err != nil {
		return false, fmt.Errorf("failed to commit migration batch: %w", err)
	}

	logger.Info("Migrated local data to remote store",
		"uid", uid, "habits", len(habits), "completions", len(completions))
	return true, nil
}
