// Package postgres is the production remote.Store backend. Documents live
// in per-collection tables keyed by (uid, document key), batches commit in
// a single transaction, and live subscriptions ride PostgreSQL
// LISTEN/NOTIFY: writers notify a per-user channel and subscribers answer
// each notification with a full-collection re-read.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jmorrow/cognitrack/internal/logger"
	"github.com/jmorrow/cognitrack/internal/models"
	"github.com/jmorrow/cognitrack/internal/remote"
)

const (
	notifyHabits      = "habits"
	notifyCompletions = "completions"

	listenMinReconnect = time.Second
	listenMaxReconnect = 30 * time.Second
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		uid          TEXT PRIMARY KEY,
		email        TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		photo_url    TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS habits (
		uid        TEXT NOT NULL,
		id         TEXT NOT NULL,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL,
		icon       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		PRIMARY KEY (uid, id)
	)`,
	`CREATE TABLE IF NOT EXISTS completions (
		uid       TEXT NOT NULL,
		key       TEXT NOT NULL,
		habit_id  TEXT NOT NULL,
		day       TEXT NOT NULL,
		completed BOOLEAN NOT NULL,
		PRIMARY KEY (uid, key)
	)`,
}

type Store struct {
	connStr string
	db      *sql.DB
}

func New(connStr string) *Store {
	return &Store{connStr: connStr}
}

// Init opens the connection and ensures the document tables exist.
func (s *Store) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ListHabits(ctx context.Context, uid string) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, color, icon, created_at
		FROM habits WHERE uid = $1 ORDER BY id`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		var h models.Habit
		if err := rows.Scan(&h.ID, &h.Name, &h.Color, &h.Icon, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) PutHabit(ctx context.Context, uid string, habit models.Habit) error {
	return s.inTx(ctx, uid, notifyHabits, func(tx *sql.Tx) error {
		return putHabit(ctx, tx, uid, habit)
	})
}

func (s *Store) DeleteHabit(ctx context.Context, uid, habitID string) error {
	return s.inTx(ctx, uid, notifyHabits, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM habits WHERE uid = $1 AND id = $2", uid, habitID)
		return err
	})
}

func (s *Store) ListCompletions(ctx context.Context, uid string) ([]models.HabitCompletion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT habit_id, day, completed
		FROM completions WHERE uid = $1 ORDER BY key`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	completions := []models.HabitCompletion{}
	for rows.Next() {
		var c models.HabitCompletion
		if err := rows.Scan(&c.HabitID, &c.Date, &c.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func (s *Store) PutCompletion(ctx context.Context, uid string, completion models.HabitCompletion) error {
	return s.inTx(ctx, uid, notifyCompletions, func(tx *sql.Tx) error {
		return putCompletion(ctx, tx, uid, completion)
	})
}

func (s *Store) DeleteCompletion(ctx context.Context, uid, key string) error {
	return s.inTx(ctx, uid, notifyCompletions, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM completions WHERE uid = $1 AND key = $2", uid, key)
		return err
	})
}

// WriteBatch commits every operation in one transaction.
func (s *Store) WriteBatch(ctx context.Context, uid string, batch remote.Batch) error {
	if batch.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, h := range batch.PutHabits {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("batch rejected: %w", err)
		}
		if err := putHabit(ctx, tx, uid, h); err != nil {
			return err
		}
	}
	for _, c := range batch.PutCompletions {
		if err := putCompletion(ctx, tx, uid, c); err != nil {
			return err
		}
	}
	for _, id := range batch.DeleteHabitIDs {
		if _, err := tx.ExecContext(ctx, "DELETE FROM habits WHERE uid = $1 AND id = $2", uid, id); err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
	}
	for _, key := range batch.DeleteCompletionKeys {
		if _, err := tx.ExecContext(ctx, "DELETE FROM completions WHERE uid = $1 AND key = $2", uid, key); err != nil {
			return fmt.Errorf("failed to delete completion: %w", err)
		}
	}

	if len(batch.PutHabits) > 0 || len(batch.DeleteHabitIDs) > 0 {
		if err := notify(ctx, tx, uid, notifyHabits); err != nil {
			return err
		}
	}
	if len(batch.PutCompletions) > 0 || len(batch.DeleteCompletionKeys) > 0 {
		if err := notify(ctx, tx, uid, notifyCompletions); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (s *Store) UpsertProfile(ctx context.Context, profile models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (uid, email, display_name, photo_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			photo_url = EXCLUDED.photo_url`,
		profile.UID, profile.Email, profile.DisplayName, profile.PhotoURL, profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, uid string) (models.Profile, bool, error) {
	var p models.Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT uid, email, display_name, photo_url, created_at
		FROM profiles WHERE uid = $1`, uid).
		Scan(&p.UID, &p.Email, &p.DisplayName, &p.PhotoURL, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, true, nil
}

// Subscribe listens on the user's notification channel and answers every
// notification with a fresh full-collection read. pq's listener reconnects
// on its own; after a reconnect both collections are re-read because
// notifications may have been missed.
func (s *Store) Subscribe(ctx context.Context, uid string) (*remote.Subscription, error) {
	listener := pq.NewListener(s.connStr, listenMinReconnect, listenMaxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("Remote listener event", "event", ev, "error", err)
		}
	})
	if err := listener.Listen(channelFor(uid)); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen for changes: %w", err)
	}

	sub := remote.NewSubscription(func() {
		if err := listener.Close(); err != nil {
			logger.Warn("Failed to close remote listener", "error", err)
		}
	})

	push := func(collection string) {
		switch collection {
		case notifyHabits:
			habits, err := s.ListHabits(ctx, uid)
			if err != nil {
				logger.Error("Failed to read habit snapshot", "error", err)
				return
			}
			sub.PushHabits(habits)
		case notifyCompletions:
			completions, err := s.ListCompletions(ctx, uid)
			if err != nil {
				logger.Error("Failed to read completion snapshot", "error", err)
				return
			}
			sub.PushCompletions(completions)
		}
	}

	go func() {
		// Initial snapshots before any notification arrives
		push(notifyHabits)
		push(notifyCompletions)

		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case n, ok := <-listener.Notify:
				if !ok {
					sub.Close()
					return
				}
				if n == nil {
					// Connection re-established; re-read everything
					push(notifyHabits)
					push(notifyCompletions)
					continue
				}
				push(n.Extra)
			}
		}
	}()

	return sub, nil
}

func (s *Store) inTx(ctx context.Context, uid, collection string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return fmt.Errorf("failed to write %s: %w", collection, err)
	}
	if err := notify(ctx, tx, uid, collection); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func putHabit(ctx context.Context, tx *sql.Tx, uid string, h models.Habit) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO habits (uid, id, name, color, icon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uid, id) DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color,
			icon = EXCLUDED.icon,
			created_at = EXCLUDED.created_at`,
		uid, h.ID, h.Name, string(h.Color), h.Icon, h.CreatedAt)
	return err
}

func putCompletion(ctx context.Context, tx *sql.Tx, uid string, c models.HabitCompletion) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO completions (uid, key, habit_id, day, completed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid, key) DO UPDATE SET completed = EXCLUDED.completed`,
		uid, c.Key(), c.HabitID, c.Date, c.Completed)
	return err
}

// notify queues a channel notification that fires when the surrounding
// transaction commits.
func notify(ctx context.Context, tx *sql.Tx, uid, collection string) error {
	if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", channelFor(uid), collection); err != nil {
		return fmt.Errorf("failed to notify %s change: %w", collection, err)
	}
	return nil
}

func channelFor(uid string) string {
	return "cognitrack_" + uid
}
