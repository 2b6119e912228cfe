package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testToday = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func TestNewHabit(t *testing.T) {
	habit, err := NewHabit("  Morning Run  ", ColorEmerald, "dumbbell", testToday)
	if err != nil {
		t.Fatalf("NewHabit failed: %v", err)
	}
	if habit.Name != "Morning Run" {
		t.Errorf("name = %q, want trimmed %q", habit.Name, "Morning Run")
	}
	if habit.CreatedAt != "2026-08-31" {
		t.Errorf("createdAt = %q, want 2026-08-31", habit.CreatedAt)
	}
	if habit.ID == "" || strings.Contains(habit.ID, "_") {
		t.Errorf("id = %q, want non-empty uuid without underscores", habit.ID)
	}
}

func TestHabitValidate(t *testing.T) {
	valid := Habit{ID: "abc", Name: "Read", Color: ColorBlue, CreatedAt: "2026-08-31"}

	tests := []struct {
		name    string
		mutate  func(h Habit) Habit
		wantErr error
	}{
		{"valid", func(h Habit) Habit { return h }, nil},
		{"empty id", func(h Habit) Habit { h.ID = ""; return h }, ErrInvalidHabitID},
		{"underscore in id", func(h Habit) Habit { h.ID = "a_b"; return h }, ErrInvalidHabitID},
		{"empty name", func(h Habit) Habit { h.Name = ""; return h }, ErrEmptyHabitName},
		{"unknown color", func(h Habit) Habit { h.Color = "plaid"; return h }, ErrInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompletionKey(t *testing.T) {
	c := HabitCompletion{HabitID: "h1", Date: "2026-08-31", Completed: true}
	if c.Key() != "h1_2026-08-31" {
		t.Errorf("Key() = %q, want h1_2026-08-31", c.Key())
	}
	if CompletionKey("h1", "2026-08-31") != c.Key() {
		t.Error("CompletionKey and Key disagree")
	}
}

func TestPaletteColorsValid(t *testing.T) {
	for _, c := range Palette() {
		if !c.Valid() {
			t.Errorf("palette color %q reports invalid", c)
		}
	}
	if Color("chartreuse").Valid() {
		t.Error("non-palette color reports valid")
	}
}

func TestSlotMap(t *testing.T) {
	m := make(SlotMap)
	m.Assign("2026-08-31", "07:00", "h1")
	m.Assign("2026-08-31", "09:00", "h2")
	m.Assign("2026-09-01", "07:00", "h1")

	t.Run("clear drops empty days", func(t *testing.T) {
		m.Clear("2026-09-01", "07:00")
		if _, ok := m["2026-09-01"]; ok {
			t.Error("day with no slots should be removed")
		}
	})

	t.Run("prune removes only the deleted habit", func(t *testing.T) {
		if pruned := m.PruneHabit("h1"); pruned != 1 {
			t.Errorf("PruneHabit = %d, want 1", pruned)
		}
		if m["2026-08-31"]["09:00"] != "h2" {
			t.Error("unrelated slot was pruned")
		}
		if _, ok := m["2026-08-31"]["07:00"]; ok {
			t.Error("slot for deleted habit survived")
		}
	})
}
