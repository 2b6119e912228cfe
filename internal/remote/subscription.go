package remote

import (
	"sync"

	"github.com/jmorrow/cognitrack/internal/models"
)

// Subscription delivers full-collection snapshots. Channels are buffered to
// one pending snapshot; a newer snapshot replaces an undelivered older one,
// which is safe because snapshots are idempotent full replacements.
type Subscription struct {
	Habits      chan []models.Habit
	Completions chan []models.HabitCompletion

	mu      sync.Mutex
	closed  bool
	onClose func()
}

// NewSubscription creates a subscription. onClose runs exactly once when the
// subscription is closed and may be nil.
func NewSubscription(onClose func()) *Subscription {
	return &Subscription{
		Habits:      make(chan []models.Habit, 1),
		Completions: make(chan []models.HabitCompletion, 1),
		onClose:     onClose,
	}
}

// PushHabits publishes a habit snapshot, dropping any undelivered older one.
// Pushing after Close is a no-op.
func (s *Subscription) PushHabits(habits []models.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.Habits:
	default:
	}
	s.Habits <- habits
}

// PushCompletions publishes a completion snapshot, dropping any undelivered
// older one. Pushing after Close is a no-op.
func (s *Subscription) PushCompletions(completions []models.HabitCompletion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.Completions:
	default:
	}
	s.Completions <- completions
}

// Close tears the subscription down synchronously and unconditionally.
// Both channels are closed so consumers unblock.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	onClose := s.onClose
	close(s.Habits)
	close(s.Completions)
	s.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}
