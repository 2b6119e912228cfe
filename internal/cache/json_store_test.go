package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jmorrow/cognitrack/internal/models"
)

func setupJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	store := NewJSONStore(filepath.Join(t.TempDir(), "cognitrack.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	return store
}

func testHabits() []models.Habit {
	return []models.Habit{
		{ID: "a1", Name: "Morning Workout", Color: models.ColorEmerald, CreatedAt: "2026-08-01"},
		{ID: "a2", Name: "Read 20 Mins", Color: models.ColorBlue, Icon: "book", CreatedAt: "2026-08-02"},
		{ID: "a3", Name: "Meditate", Color: models.ColorViolet, CreatedAt: "2026-08-03"},
	}
}

func TestJSONStoreHabitsRoundTrip(t *testing.T) {
	store := setupJSONStore(t)

	want := testHabits()
	if err := store.SaveHabits(want); err != nil {
		t.Fatalf("SaveHabits failed: %v", err)
	}

	// Re-open from disk to prove durability, not just in-memory state
	reopened := NewJSONStore(store.Path())
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, found, err := reopened.Habits()
	if err != nil {
		t.Fatalf("Habits failed: %v", err)
	}
	if !found {
		t.Fatal("Habits() found = false, want true after save")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("habit round trip mismatch:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestJSONStoreDistinguishesEmptyFromUnset(t *testing.T) {
	store := setupJSONStore(t)

	_, found, err := store.Habits()
	if err != nil {
		t.Fatalf("Habits failed: %v", err)
	}
	if found {
		t.Error("Habits() found = true for a never-written key")
	}

	// An explicitly saved empty list is not the same as an unset key
	if err := store.SaveHabits(nil); err != nil {
		t.Fatalf("SaveHabits failed: %v", err)
	}
	got, found, err := store.Habits()
	if err != nil {
		t.Fatalf("Habits failed: %v", err)
	}
	if !found {
		t.Error("Habits() found = false after saving an empty list")
	}
	if len(got) != 0 {
		t.Errorf("Habits() = %v, want empty", got)
	}
}

func TestJSONStoreCorruptedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cognitrack.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0600); err != nil {
		t.Fatalf("failed to write corrupted file: %v", err)
	}

	store := NewJSONStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load should fall back on corrupted data, got error: %v", err)
	}

	_, found, err := store.Habits()
	if err != nil {
		t.Fatalf("Habits failed: %v", err)
	}
	if found {
		t.Error("corrupted cache should present as an empty data set")
	}
}

func TestJSONStoreCompletionsRoundTrip(t *testing.T) {
	store := setupJSONStore(t)

	want := []models.HabitCompletion{
		{HabitID: "a1", Date: "2026-08-29", Completed: true},
		{HabitID: "a1", Date: "2026-08-30", Completed: false},
		{HabitID: "a2", Date: "2026-08-30", Completed: true},
	}
	if err := store.SaveCompletions(want); err != nil {
		t.Fatalf("SaveCompletions failed: %v", err)
	}

	got, found, err := store.Completions()
	if err != nil {
		t.Fatalf("Completions failed: %v", err)
	}
	if !found {
		t.Fatal("Completions() found = false, want true after save")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("completion round trip mismatch:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestJSONStoreSlotsRoundTrip(t *testing.T) {
	store := setupJSONStore(t)

	slots := make(models.SlotMap)
	slots.Assign("2026-08-31", "07:00", "a1")
	slots.Assign("2026-08-31", "12:30", "a2")
	if err := store.SaveSlots(slots); err != nil {
		t.Fatalf("SaveSlots failed: %v", err)
	}

	got, err := store.Slots()
	if err != nil {
		t.Fatalf("Slots failed: %v", err)
	}
	if !reflect.DeepEqual(got, slots) {
		t.Errorf("slot round trip mismatch:\n got: %+v\nwant: %+v", got, slots)
	}
}

func TestJSONStoreAPIKey(t *testing.T) {
	store := setupJSONStore(t)

	if _, found, _ := store.APIKey(); found {
		t.Error("APIKey() found = true before save")
	}

	if err := store.SaveAPIKey("sk-test-123"); err != nil {
		t.Fatalf("SaveAPIKey failed: %v", err)
	}
	key, found, err := store.APIKey()
	if err != nil {
		t.Fatalf("APIKey failed: %v", err)
	}
	if !found || key != "sk-test-123" {
		t.Errorf("APIKey() = (%q, %v), want (sk-test-123, true)", key, found)
	}

	if err := store.DeleteAPIKey(); err != nil {
		t.Fatalf("DeleteAPIKey failed: %v", err)
	}
	if _, found, _ := store.APIKey(); found {
		t.Error("APIKey() found = true after delete")
	}
}
