package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/jmorrow/cognitrack/internal/models"
	"github.com/jmorrow/cognitrack/internal/remote"
)

const uid = "user-1"

func habit(id, name string) models.Habit {
	return models.Habit{ID: id, Name: name, Color: models.ColorBlue, CreatedAt: "2026-08-01"}
}

func TestPutAndListHabits(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.PutHabit(ctx, uid, habit("b1", "Stretch")); err != nil {
		t.Fatalf("PutHabit failed: %v", err)
	}
	if err := store.PutHabit(ctx, uid, habit("a1", "Journal")); err != nil {
		t.Fatalf("PutHabit failed: %v", err)
	}

	habits, err := store.ListHabits(ctx, uid)
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("ListHabits returned %d habits, want 2", len(habits))
	}
	// Deterministic order by document key
	if habits[0].ID != "a1" || habits[1].ID != "b1" {
		t.Errorf("habits out of order: %v", habits)
	}

	// Other users see nothing
	other, err := store.ListHabits(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("user-2 sees %d habits, want 0", len(other))
	}
}

func TestWriteBatchIsAllOrNothing(t *testing.T) {
	store := New()
	ctx := context.Background()

	batch := remote.Batch{
		PutHabits: []models.Habit{
			habit("a1", "Journal"),
			{ID: "bad_id", Name: "Broken", Color: models.ColorBlue, CreatedAt: "2026-08-01"},
		},
		PutCompletions: []models.HabitCompletion{{HabitID: "a1", Date: "2026-08-30", Completed: true}},
	}
	if err := store.WriteBatch(ctx, uid, batch); err == nil {
		t.Fatal("WriteBatch should reject a habit id containing the key separator")
	}

	habits, _ := store.ListHabits(ctx, uid)
	completions, _ := store.ListCompletions(ctx, uid)
	if len(habits) != 0 || len(completions) != 0 {
		t.Errorf("rejected batch left partial writes: habits=%v completions=%v", habits, completions)
	}
}

func TestSubscribeDeliversInitialAndLiveSnapshots(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.PutHabit(ctx, uid, habit("a1", "Journal")); err != nil {
		t.Fatalf("PutHabit failed: %v", err)
	}

	sub, err := store.Subscribe(ctx, uid)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	initial := recvHabits(t, sub)
	if len(initial) != 1 || initial[0].ID != "a1" {
		t.Errorf("initial snapshot = %v, want the existing habit", initial)
	}

	if err := store.PutHabit(ctx, uid, habit("b1", "Stretch")); err != nil {
		t.Fatalf("PutHabit failed: %v", err)
	}
	updated := recvHabits(t, sub)
	if len(updated) != 2 {
		t.Errorf("live snapshot has %d habits, want 2", len(updated))
	}
}

func TestSnapshotCoalescing(t *testing.T) {
	store := New()
	ctx := context.Background()

	sub, err := store.Subscribe(ctx, uid)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()
	recvHabits(t, sub) // drain initial

	// Burst of writes while the consumer is not reading; only the latest
	// snapshot must survive
	for _, id := range []string{"a1", "b1", "c1"} {
		if err := store.PutHabit(ctx, uid, habit(id, "Habit "+id)); err != nil {
			t.Fatalf("PutHabit failed: %v", err)
		}
	}

	latest := recvHabits(t, sub)
	if len(latest) != 3 {
		t.Errorf("coalesced snapshot has %d habits, want 3", len(latest))
	}
}

func TestCloseUnblocksSubscribers(t *testing.T) {
	store := New()
	sub, err := store.Subscribe(context.Background(), uid)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	recvHabits(t, sub)

	sub.Close()

	select {
	case _, ok := <-sub.Habits:
		if ok {
			t.Error("expected habit channel to be closed")
		}
	case <-time.After(time.Second):
		t.Error("habit channel not closed after Close")
	}

	// A write after close must not panic or resurrect the subscription
	if err := store.PutHabit(context.Background(), uid, habit("a1", "Journal")); err != nil {
		t.Fatalf("PutHabit failed: %v", err)
	}
}

func TestProfileUpsert(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, found, _ := store.GetProfile(ctx, uid); found {
		t.Error("GetProfile found a profile before upsert")
	}

	p := models.Profile{UID: uid, Email: "u@example.com", DisplayName: "U", CreatedAt: "2026-08-31"}
	if err := store.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	got, found, err := store.GetProfile(ctx, uid)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if !found || got != p {
		t.Errorf("GetProfile = (%+v, %v), want (%+v, true)", got, found, p)
	}
}

func recvHabits(t *testing.T, sub *remote.Subscription) []models.Habit {
	t.Helper()
	select {
	case habits := <-sub.Habits:
		return habits
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for habit snapshot")
		return nil
	}
}
