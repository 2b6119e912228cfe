// Package memstore is an in-memory remote.Store used by tests and for
// offline development. It implements the same document contract as the
// Postgres backend, including atomic batches and live snapshot pushes.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jmorrow/cognitrack/internal/models"
	"github.com/jmorrow/cognitrack/internal/remote"
)

type Store struct {
	mu          sync.Mutex
	habits      map[string]map[string]models.Habit           // uid -> habit id -> habit
	completions map[string]map[string]models.HabitCompletion // uid -> doc key -> completion
	profiles    map[string]models.Profile
	subs        map[string][]*remote.Subscription
	closed      bool
}

func New() *Store {
	return &Store{
		habits:      make(map[string]map[string]models.Habit),
		completions: make(map[string]map[string]models.HabitCompletion),
		profiles:    make(map[string]models.Profile),
		subs:        make(map[string][]*remote.Subscription),
	}
}

func (s *Store) ListHabits(_ context.Context, uid string) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.habitSnapshot(uid), nil
}

func (s *Store) PutHabit(_ context.Context, uid string, habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.habits[uid] == nil {
		s.habits[uid] = make(map[string]models.Habit)
	}
	s.habits[uid][habit.ID] = habit
	s.notifyHabits(uid)
	return nil
}

func (s *Store) DeleteHabit(_ context.Context, uid, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.habits[uid], habitID)
	s.notifyHabits(uid)
	return nil
}

func (s *Store) ListCompletions(_ context.Context, uid string) ([]models.HabitCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completionSnapshot(uid), nil
}

func (s *Store) PutCompletion(_ context.Context, uid string, completion models.HabitCompletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completions[uid] == nil {
		s.completions[uid] = make(map[string]models.HabitCompletion)
	}
	s.completions[uid][completion.Key()] = completion
	s.notifyCompletions(uid)
	return nil
}

func (s *Store) DeleteCompletion(_ context.Context, uid, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.completions[uid], key)
	s.notifyCompletions(uid)
	return nil
}

func (s *Store) WriteBatch(_ context.Context, uid string, batch remote.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything up front so the commit is all-or-nothing.
	for _, h := range batch.PutHabits {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("batch rejected: %w", err)
		}
	}

	if s.habits[uid] == nil {
		s.habits[uid] = make(map[string]models.Habit)
	}
	if s.completions[uid] == nil {
		s.completions[uid] = make(map[string]models.HabitCompletion)
	}

	for _, h := range batch.PutHabits {
		s.habits[uid][h.ID] = h
	}
	for _, c := range batch.PutCompletions {
		s.completions[uid][c.Key()] = c
	}
	for _, id := range batch.DeleteHabitIDs {
		delete(s.habits[uid], id)
	}
	for _, key := range batch.DeleteCompletionKeys {
		delete(s.completions[uid], key)
	}

	if len(batch.PutHabits) > 0 || len(batch.DeleteHabitIDs) > 0 {
		s.notifyHabits(uid)
	}
	if len(batch.PutCompletions) > 0 || len(batch.DeleteCompletionKeys) > 0 {
		s.notifyCompletions(uid)
	}
	return nil
}

func (s *Store) Subscribe(ctx context.Context, uid string) (*remote.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	var sub *remote.Subscription
	sub = remote.NewSubscription(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subs[uid]
		for i, candidate := range subs {
			if candidate == sub {
				s.subs[uid] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	})
	s.subs[uid] = append(s.subs[uid], sub)

	// Initial snapshots so the subscriber starts from current state
	sub.PushHabits(s.habitSnapshot(uid))
	sub.PushCompletions(s.completionSnapshot(uid))

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Close()
		}()
	}
	return sub, nil
}

func (s *Store) UpsertProfile(_ context.Context, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UID] = profile
	return nil
}

func (s *Store) GetProfile(_ context.Context, uid string) (models.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	return p, ok, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	var all []*remote.Subscription
	for _, subs := range s.subs {
		all = append(all, subs...)
	}
	s.subs = make(map[string][]*remote.Subscription)
	s.closed = true
	s.mu.Unlock()

	for _, sub := range all {
		sub.Close()
	}
	return nil
}

// habitSnapshot returns the user's habits sorted by document key.
// Callers must hold s.mu.
func (s *Store) habitSnapshot(uid string) []models.Habit {
	habits := make([]models.Habit, 0, len(s.habits[uid]))
	for _, h := range s.habits[uid] {
		habits = append(habits, h)
	}
	sort.Slice(habits, func(i, j int) bool { return habits[i].ID < habits[j].ID })
	return habits
}

// completionSnapshot returns the user's completions sorted by document key.
// Callers must hold s.mu.
func (s *Store) completionSnapshot(uid string) []models.HabitCompletion {
	completions := make([]models.HabitCompletion, 0, len(s.completions[uid]))
	for _, c := range s.completions[uid] {
		completions = append(completions, c)
	}
	sort.Slice(completions, func(i, j int) bool { return completions[i].Key() < completions[j].Key() })
	return completions
}

func (s *Store) notifyHabits(uid string) {
	snapshot := s.habitSnapshot(uid)
	for _, sub := range s.subs[uid] {
		sub.PushHabits(snapshot)
	}
}

func (s *Store) notifyCompletions(uid string) {
	snapshot := s.completionSnapshot(uid)
	for _, sub := range s.subs[uid] {
		sub.PushCompletions(snapshot)
	}
}
