// Package sync owns the authoritative in-memory habit and completion
// collections for a running session. It reconciles the local cache with the
// per-user remote store: local-only until a user signs in, then a one-shot
// migration followed by live remote subscriptions.
//
// Every mutation and every remote snapshot is applied by a single run-loop
// goroutine. Public methods hand closures to that loop, which keeps the
// collections single-writer without locks.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/jmorrow/cognitrack/internal/cache"
	"github.com/jmorrow/cognitrack/internal/logger"
	"github.com/jmorrow/cognitrack/internal/models"
	"github.com/jmorrow/cognitrack/internal/remote"
	"github.com/jmorrow/cognitrack/internal/sample"
	"github.com/jmorrow/cognitrack/internal/stats"
)

// State is the engine's position in the session-identity state machine.
type State int

const (
	// StateLocalOnly means no user: the cache is the only persistence.
	StateLocalOnly State = iota
	// StateMigrating is the transient state while the one-shot local-to-remote
	// migration runs.
	StateMigrating
	// StateSubscribed means an authenticated user with live remote
	// subscriptions; the cache is a passive offline mirror.
	StateSubscribed
)

func (s State) String() string {
	switch s {
	case StateLocalOnly:
		return "local-only"
	case StateMigrating:
		return "migrating"
	case StateSubscribed:
		return "remote-subscribed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's notion of now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine is the client-side synchronization engine. Construct with New,
// call Start before use and Stop when done.
type Engine struct {
	cache  cache.Store
	remote remote.Store
	now    func() time.Time

	ops  chan func()
	quit chan struct{}

	loopWG  gosync.WaitGroup
	writeWG gosync.WaitGroup // in-flight fire-and-forget remote writes

	ctx    context.Context
	cancel context.CancelFunc

	// Everything below is owned by the run loop.
	state       State
	user        *models.User
	session     int // generation fence for stale listeners
	habits      []models.Habit
	completions []models.HabitCompletion
	sub         *remote.Subscription
}

// New creates an engine over the given collaborators. The remote store may
// be nil, in which case the engine stays local-only forever.
func New(cacheStore cache.Store, remoteStore remote.Store, opts ...Option) *Engine {
	e := &Engine{
		cache:  cacheStore,
		remote: remoteStore,
		now:    time.Now,
		ops:    make(chan func()),
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start loads the last-known state from the cache (or the bundled sample
// dataset on a true first run) and starts the run loop.
func (e *Engine) Start() error {
	habits, found, err := e.cache.Habits()
	if err != nil {
		return fmt.Errorf("failed to load cached habits: %w", err)
	}
	if !found {
		habits = sample.Habits(e.now())
	}
	completions, found, err := e.cache.Completions()
	if err != nil {
		return fmt.Errorf("failed to load cached completions: %w", err)
	}
	if !found {
		completions = sample.Completions(e.now())
	}

	e.habits = habits
	e.completions = completions
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.loopWG.Add(1)
	go e.run()
	return nil
}

// Stop tears down subscriptions, stops the run loop, and waits for in-flight
// remote writes to settle.
func (e *Engine) Stop() {
	e.do(func() {
		e.teardown()
	})
	close(e.quit)
	e.cancel()
	e.loopWG.Wait()
	e.writeWG.Wait()
}

// Flush blocks until every fire-and-forget remote write issued so far has
// completed or failed.
func (e *Engine) Flush() {
	e.writeWG.Wait()
}

func (e *Engine) run() {
	defer e.loopWG.Done()
	for {
		select {
		case fn := <-e.ops:
			fn()
		case <-e.quit:
			return
		}
	}
}

// do runs fn on the run loop and waits for it.
func (e *Engine) do(fn func()) {
	done := make(chan struct{})
	select {
	case e.ops <- func() { defer close(done); fn() }:
		<-done
	case <-e.quit:
	}
}

// submit runs fn on the run loop without waiting. Used by snapshot
// forwarders, which must never block engine shutdown.
func (e *Engine) submit(fn func()) {
	select {
	case e.ops <- fn:
	case <-e.quit:
	}
}

// State reports the current session state.
func (e *Engine) State() State {
	var s State
	e.do(func() { s = e.state })
	return s
}

// User returns the current session identity, nil in local-only mode.
func (e *Engine) User() *models.User {
	var u *models.User
	e.do(func() {
		if e.user != nil {
			copied := *e.user
			u = &copied
		}
	})
	return u
}

// Habits returns a copy of the in-memory habit collection.
func (e *Engine) Habits() []models.Habit {
	var habits []models.Habit
	e.do(func() {
		habits = append([]models.Habit(nil), e.habits...)
	})
	return habits
}

// Completions returns a copy of the in-memory completion collection.
func (e *Engine) Completions() []models.HabitCompletion {
	var completions []models.HabitCompletion
	e.do(func() {
		completions = append([]models.HabitCompletion(nil), e.completions...)
	})
	return completions
}

// ToggleCompletion flips the completion record for (habitID, date), creating
// it as completed when absent. The in-memory update is optimistic; the
// remote write is best-effort and never rolled back.
func (e *Engine) ToggleCompletion(habitID, date string) models.HabitCompletion {
	var rec models.HabitCompletion
	e.do(func() {
		found := false
		for i := range e.completions {
			if e.completions[i].HabitID == habitID && e.completions[i].Date == date {
				e.completions[i].Completed = !e.completions[i].Completed
				rec = e.completions[i]
				found = true
				break
			}
		}
		if !found {
			rec = models.HabitCompletion{HabitID: habitID, Date: date, Completed: true}
			e.completions = append(e.completions, rec)
		}

		e.persistLocal()
		if e.state == StateSubscribed {
			uid := e.user.UID
			payload := rec // captured at call time
			e.asyncWrite("completion write", func(ctx context.Context) error {
				return e.remote.PutCompletion(ctx, uid, payload)
			})
		}
	})
	return rec
}

// AddHabit creates a habit and appends it to the collection.
func (e *Engine) AddHabit(name string, color models.Color, icon string) (models.Habit, error) {
	habit, err := models.NewHabit(name, color, icon, e.now())
	if err != nil {
		return models.Habit{}, err
	}

	e.do(func() {
		e.habits = append(e.habits, habit)
		e.persistLocal()
		if e.state == StateSubscribed {
			uid := e.user.UID
			payload := habit
			e.asyncWrite("habit write", func(ctx context.Context) error {
				return e.remote.PutHabit(ctx, uid, payload)
			})
		}
	})
	return habit, nil
}

// DeleteHabit removes the habit and every completion referencing it, and
// prunes planner slots pointing at it. Remotely, the habit document is
// deleted first, then the completion collection is enumerated and matching
// documents batch-deleted; a completion written concurrently with the scan
// can be missed, which is an accepted eventual-consistency gap.
func (e *Engine) DeleteHabit(habitID string) {
	e.do(func() {
		habits := e.habits[:0]
		for _, h := range e.habits {
			if h.ID != habitID {
				habits = append(habits, h)
			}
		}
		e.habits = habits

		completions := e.completions[:0]
		for _, c := range e.completions {
			if c.HabitID != habitID {
				completions = append(completions, c)
			}
		}
		e.completions = completions

		e.pruneSlots(habitID)
		e.persistLocal()

		if e.state == StateSubscribed {
			uid := e.user.UID
			e.asyncWrite("habit delete", func(ctx context.Context) error {
				if err := e.remote.DeleteHabit(ctx, uid, habitID); err != nil {
					return err
				}
				all, err := e.remote.ListCompletions(ctx, uid)
				if err != nil {
					return err
				}
				batch := remote.Batch{}
				for _, c := range all {
					if c.HabitID == habitID {
						batch.DeleteCompletionKeys = append(batch.DeleteCompletionKeys, c.Key())
					}
				}
				if batch.Empty() {
					return nil
				}
				return e.remote.WriteBatch(ctx, uid, batch)
			})
		}
	})
}

// SignIn transitions the engine into an authenticated session: run the
// one-shot migration, then open live subscriptions. On migration failure the
// engine stays local-only and the error is returned to the caller; there is
// no automatic retry.
func (e *Engine) SignIn(ctx context.Context, user models.User) error {
	if e.remote == nil {
		return fmt.Errorf("no remote store configured")
	}

	var (
		habits      []models.Habit
		completions []models.HabitCompletion
		already     bool
	)
	e.do(func() {
		if e.user != nil {
			already = true
			return
		}
		e.state = StateMigrating
		e.user = &user
		habits = append([]models.Habit(nil), e.habits...)
		completions = append([]models.HabitCompletion(nil), e.completions...)
	})
	if already {
		return fmt.Errorf("already signed in")
	}

	migrator := NewMigrator(e.remote)
	if _, err := migrator.Run(ctx, user.UID, habits, completions); err != nil {
		e.do(func() {
			e.state = StateLocalOnly
			e.user = nil
		})
		return fmt.Errorf("failed to migrate local data: %w", err)
	}

	sub, err := e.remote.Subscribe(e.ctx, user.UID)
	if err != nil {
		e.do(func() {
			e.state = StateLocalOnly
			e.user = nil
		})
		return fmt.Errorf("failed to subscribe to remote changes: %w", err)
	}

	e.do(func() {
		e.session++
		e.sub = sub
		e.state = StateSubscribed
		e.forward(sub, e.session)
	})
	logger.Info("Session subscribed to remote store", "uid", user.UID)
	return nil
}

// SignOut tears down the subscriptions and returns to local-only mode.
// In-memory state is left as-is: the last known remote snapshot keeps
// serving until the next cache load.
func (e *Engine) SignOut() {
	e.do(func() {
		e.teardown()
		e.user = nil
		e.state = StateLocalOnly
	})
}

// Streak returns the habit's current streak length.
func (e *Engine) Streak(habitID string) int {
	return stats.Streak(e.Completions(), habitID, e.now())
}

// BestStreak returns the longest current streak across all habits.
func (e *Engine) BestStreak() int {
	return stats.BestStreak(e.Habits(), e.Completions(), e.now())
}

// WeeklyCompletionData returns the 7-day completion histogram ending today.
func (e *Engine) WeeklyCompletionData() []stats.DayStat {
	return stats.WeeklyCompletionData(e.Habits(), e.Completions(), e.now())
}

// forward spawns the snapshot forwarders for a subscription. Each applied
// snapshot fully replaces the corresponding collection and is mirrored into
// the cache. The session fence drops snapshots from a torn-down session.
// Callers must be on the run loop.
func (e *Engine) forward(sub *remote.Subscription, session int) {
	go func() {
		for habits := range sub.Habits {
			snapshot := habits
			e.submit(func() {
				if e.session != session {
					return
				}
				e.habits = snapshot
				if err := e.cache.SaveHabits(snapshot); err != nil {
					logger.Error("Failed to mirror habit snapshot to cache", "error", err)
				}
			})
		}
	}()
	go func() {
		for completions := range sub.Completions {
			snapshot := completions
			e.submit(func() {
				if e.session != session {
					return
				}
				e.completions = snapshot
				if err := e.cache.SaveCompletions(snapshot); err != nil {
					logger.Error("Failed to mirror completion snapshot to cache", "error", err)
				}
			})
		}
	}()
}

// teardown closes the live subscription if any. Callers must be on the run
// loop. Incrementing the session fences out any snapshot still in flight.
func (e *Engine) teardown() {
	e.session++
	if e.sub != nil {
		e.sub.Close()
		e.sub = nil
	}
}

// persistLocal writes the collections through to the cache. While
// remote-subscribed the cache is instead mirrored from snapshots, so
// write-through is skipped.
func (e *Engine) persistLocal() {
	if e.state == StateSubscribed {
		return
	}
	if err := e.cache.SaveHabits(e.habits); err != nil {
		logger.Error("Failed to persist habits to cache", "error", err)
	}
	if err := e.cache.SaveCompletions(e.completions); err != nil {
		logger.Error("Failed to persist completions to cache", "error", err)
	}
}

// pruneSlots drops planner assignments referencing a deleted habit.
func (e *Engine) pruneSlots(habitID string) {
	slots, err := e.cache.Slots()
	if err != nil {
		logger.Error("Failed to load planner slots for pruning", "error", err)
		return
	}
	if pruned := slots.PruneHabit(habitID); pruned > 0 {
		if err := e.cache.SaveSlots(slots); err != nil {
			logger.Error("Failed to persist pruned planner slots", "error", err)
		}
	}
}

// asyncWrite runs a remote write in the background. Failures are logged,
// never surfaced, and never roll back the optimistic local change.
func (e *Engine) asyncWrite(what string, fn func(ctx context.Context) error) {
	e.writeWG.Add(1)
	go func() {
		defer e.writeWG.Done()
		if err := fn(e.ctx); err != nil {
			logger.Error("Best-effort remote write failed", "op", what, "error", err)
		}
	}()
}
