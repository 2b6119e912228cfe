package insight

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/jmorrow/cognitrack/internal/cache"
	"github.com/jmorrow/cognitrack/internal/keyring"
	"github.com/jmorrow/cognitrack/internal/models"
)

var testToday = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func TestBuildPayloadWindow(t *testing.T) {
	habits := []models.Habit{
		{ID: "h1", Name: "Meditate"},
		{ID: "h2", Name: "Read"},
	}
	completions := []models.HabitCompletion{
		{HabitID: "h1", Date: "2026-08-31", Completed: true},  // today
		{HabitID: "h2", Date: "2026-08-25", Completed: true},  // window edge
		{HabitID: "h1", Date: "2026-08-24", Completed: true},  // too old
		{HabitID: "h2", Date: "2026-09-01", Completed: true},  // future
		{HabitID: "gone", Date: "2026-08-30", Completed: false},
	}

	data := buildPayload(habits, completions, testToday)

	if len(data.Habits) != 2 {
		t.Fatalf("payload has %d habits, want 2", len(data.Habits))
	}
	if len(data.Completions) != 3 {
		t.Fatalf("payload has %d completions, want 3: %+v", len(data.Completions), data.Completions)
	}
	for _, c := range data.Completions {
		if c.Date < "2026-08-25" || c.Date > "2026-08-31" {
			t.Errorf("completion on %s is outside the 7-day window", c.Date)
		}
	}
	if data.Completions[0].HabitName != "Meditate" {
		t.Errorf("habit id was not swapped for its name: %+v", data.Completions[0])
	}
	if data.Completions[2].HabitName != "Unknown" {
		t.Errorf("orphaned completion name = %q, want Unknown", data.Completions[2].HabitName)
	}
}

func TestBuildPromptContainsData(t *testing.T) {
	habits := []models.Habit{{ID: "h1", Name: "Meditate"}}
	prompt := buildPrompt(habits, nil, testToday)

	for _, want := range []string{"Meditate", "summary", "patterns", "tips", "valid JSON"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestParseResponse(t *testing.T) {
	valid := `{"summary": "Great week!", "patterns": ["p1", "p2"], "tips": ["t1", "t2"]}`

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"plain json", valid, false},
		{"fenced json", "```json\n" + valid + "\n```", false},
		{"bare fences", "```\n" + valid + "\n```", false},
		{"surrounding whitespace", "\n\n  " + valid + "  \n", false},
		{"not json", "I had trouble analyzing that.", true},
		{"empty", "", true},
		{"missing summary", `{"patterns": [], "tips": []}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseResponse(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Error("parseResponse should have failed")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseResponse failed: %v", err)
			}
			if resp.Summary != "Great week!" || len(resp.Patterns) != 2 || len(resp.Tips) != 2 {
				t.Errorf("unexpected response: %+v", resp)
			}
		})
	}
}

func setupCache(t *testing.T) cache.Store {
	t.Helper()
	store := cache.NewJSONStore(filepath.Join(t.TempDir(), "cognitrack.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init cache: %v", err)
	}
	return store
}

func TestResolveKeyPrefersKeyring(t *testing.T) {
	gokeyring.MockInit()
	store := setupCache(t)

	if err := store.SaveAPIKey("cache-key"); err != nil {
		t.Fatalf("SaveAPIKey failed: %v", err)
	}
	if err := keyring.SetInsightKey("ring-key"); err != nil {
		t.Fatalf("SetInsightKey failed: %v", err)
	}
	t.Cleanup(func() { keyring.DeleteInsightKey() })

	key, err := ResolveKey(store)
	if err != nil {
		t.Fatalf("ResolveKey failed: %v", err)
	}
	if key != "ring-key" {
		t.Errorf("ResolveKey = %q, want ring-key", key)
	}
}

func TestResolveKeyFallsBackToCache(t *testing.T) {
	gokeyring.MockInit()
	store := setupCache(t)

	if err := store.SaveAPIKey("cache-key"); err != nil {
		t.Fatalf("SaveAPIKey failed: %v", err)
	}

	key, err := ResolveKey(store)
	if err != nil {
		t.Fatalf("ResolveKey failed: %v", err)
	}
	if key != "cache-key" {
		t.Errorf("ResolveKey = %q, want cache-key", key)
	}
}

func TestResolveKeyMissing(t *testing.T) {
	gokeyring.MockInit()
	store := setupCache(t)

	if _, err := ResolveKey(store); !errors.Is(err, ErrNoCredential) {
		t.Errorf("ResolveKey error = %v, want ErrNoCredential", err)
	}
}

func TestStoreAndClearKey(t *testing.T) {
	gokeyring.MockInit()
	store := setupCache(t)

	if err := StoreKey(store, "k-1"); err != nil {
		t.Fatalf("StoreKey failed: %v", err)
	}
	key, err := ResolveKey(store)
	if err != nil || key != "k-1" {
		t.Fatalf("ResolveKey after store = (%q, %v)", key, err)
	}

	if err := ClearKey(store); err != nil {
		t.Fatalf("ClearKey failed: %v", err)
	}
	if _, err := ResolveKey(store); !errors.Is(err, ErrNoCredential) {
		t.Errorf("ResolveKey after clear = %v, want ErrNoCredential", err)
	}
}
